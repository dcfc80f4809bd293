package auth

import (
	"time"

	"github.com/angelmondragon/pos-backend/pkg/enums"
)

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

// RegisterResponse reports the role assigned to the new account.
type RegisterResponse struct {
	Message string         `json:"message"`
	Role    enums.UserRole `json:"role"`
}

// LoginRequest carries credentials. Password may be a temporary password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned to the client after a successful login.
type LoginResponse struct {
	Role  enums.UserRole `json:"role"`
	Name  string         `json:"name"`
	Token string         `json:"token"`

	ExpiresAt time.Time `json:"-"`
}

// TempPasswordRequest asks for a short-lived login credential.
type TempPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// TempPasswordResponse only carries the password itself for admin accounts.
type TempPasswordResponse struct {
	Message      string `json:"message"`
	TempPassword string `json:"tempPassword,omitempty"`
	Note         string `json:"note,omitempty"`
}
