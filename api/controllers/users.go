package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/pos-backend/api/responses"
	"github.com/angelmondragon/pos-backend/api/validators"
	"github.com/angelmondragon/pos-backend/internal/users"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

type adminUpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin seller"`
	Password *string `json:"password"`
}

func (r adminUpdateUserRequest) toInput() users.AdminUpdateInput {
	input := users.AdminUpdateInput{Name: r.Name, Email: r.Email, Password: r.Password}
	if r.Role != nil {
		role := enums.UserRole(*r.Role)
		input.Role = &role
	}
	return input
}

type updateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,strongpassword"`
}

// usersHandler threads the caller id and optional path id into each users call.
func usersHandler(logg *logger.Logger, withID bool, fn func(w http.ResponseWriter, r *http.Request, caller, id uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var id uuid.UUID
		if withID {
			if id, err = pathID(r, "id"); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if err := fn(w, r, caller, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}

func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return usersHandler(logg, false, func(w http.ResponseWriter, r *http.Request, caller, _ uuid.UUID) error {
		list, err := svc.List(r.Context(), caller)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, list)
		return nil
	})
}

func UsersGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return usersHandler(logg, true, func(w http.ResponseWriter, r *http.Request, caller, id uuid.UUID) error {
		user, err := svc.Get(r.Context(), caller, id)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, user)
		return nil
	})
}

func UsersAdminUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return usersHandler(logg, true, func(w http.ResponseWriter, r *http.Request, caller, id uuid.UUID) error {
		var body adminUpdateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		user, err := svc.AdminUpdate(r.Context(), caller, id, body.toInput())
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, map[string]any{"message": "user updated", "user": user})
		return nil
	})
}

func UsersAdminDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return usersHandler(logg, true, func(w http.ResponseWriter, r *http.Request, caller, id uuid.UUID) error {
		if err := svc.AdminDelete(r.Context(), caller, id); err != nil {
			return err
		}
		responses.WriteMessage(w, http.StatusOK, "user deleted")
		return nil
	})
}

func UsersMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return usersHandler(logg, false, func(w http.ResponseWriter, r *http.Request, caller, _ uuid.UUID) error {
		user, err := svc.Me(r.Context(), caller)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, user)
		return nil
	})
}

func UsersGetProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return usersHandler(logg, true, func(w http.ResponseWriter, r *http.Request, caller, id uuid.UUID) error {
		user, err := svc.GetProfile(r.Context(), caller, id)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, user)
		return nil
	})
}

func UsersUpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return usersHandler(logg, true, func(w http.ResponseWriter, r *http.Request, caller, id uuid.UUID) error {
		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		user, err := svc.UpdateProfile(r.Context(), caller, id, users.ProfileUpdateInput{
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, map[string]any{"message": "profile updated", "user": user})
		return nil
	})
}

func UsersDeleteProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return usersHandler(logg, true, func(w http.ResponseWriter, r *http.Request, caller, id uuid.UUID) error {
		if err := svc.DeleteProfile(r.Context(), caller, id); err != nil {
			return err
		}
		responses.WriteMessage(w, http.StatusOK, "profile deleted")
		return nil
	})
}
