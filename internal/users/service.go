package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db"
	"github.com/angelmondragon/pos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/logger"
	"github.com/angelmondragon/pos-backend/pkg/security"
)

// Service covers admin account management and self-service profile edits.
type Service interface {
	List(ctx context.Context, callerID uuid.UUID) ([]UserDTO, error)
	Get(ctx context.Context, callerID, id uuid.UUID) (*UserDTO, error)
	AdminUpdate(ctx context.Context, callerID, id uuid.UUID, input AdminUpdateInput) (*UserDTO, error)
	AdminDelete(ctx context.Context, callerID, id uuid.UUID) error

	Me(ctx context.Context, callerID uuid.UUID) (*UserDTO, error)
	GetProfile(ctx context.Context, callerID, id uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, callerID, id uuid.UUID, input ProfileUpdateInput) (*UserDTO, error)
	DeleteProfile(ctx context.Context, callerID, id uuid.UUID) error
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListExcept(ctx context.Context, excludeID uuid.UUID) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type sessionRevoker interface {
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           userRepository
	Sessions       sessionRevoker
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	repo     userRepository
	sessions sessionRevoker
	pwCfg    config.PasswordConfig
	logg     *logger.Logger
}

// NewService constructs the users service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session revoker required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		pwCfg:    params.PasswordConfig,
		logg:     params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, callerID uuid.UUID) ([]UserDTO, error) {
	rows, err := s.repo.ListExcept(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, callerID, id uuid.UUID) (*UserDTO, error) {
	if callerID == id {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "use your profile to view your own account")
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) AdminUpdate(ctx context.Context, callerID, id uuid.UUID, input AdminUpdateInput) (*UserDTO, error) {
	if input.Password != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords cannot be changed through user management")
	}
	if callerID == id {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "use your profile to edit your own account")
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid role %q", *input.Role)
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyIdentity(ctx, user, input.Name, input.Email); err != nil {
		return nil, err
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) AdminDelete(ctx context.Context, callerID, id uuid.UUID) error {
	if callerID == id {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you cannot delete your own account from user management")
	}
	return s.delete(ctx, id)
}

func (s *service) Me(ctx context.Context, callerID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) GetProfile(ctx context.Context, callerID, id uuid.UUID) (*UserDTO, error) {
	if callerID != id {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only view your own profile")
	}
	return s.Me(ctx, callerID)
}

func (s *service) UpdateProfile(ctx context.Context, callerID, id uuid.UUID, input ProfileUpdateInput) (*UserDTO, error) {
	if callerID != id {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only edit your own profile")
	}
	if input.Password != nil {
		if err := security.ValidatePasswordPolicy(*input.Password); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyIdentity(ctx, user, input.Name, input.Email); err != nil {
		return nil, err
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.pwCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) DeleteProfile(ctx context.Context, callerID, id uuid.UUID) error {
	if callerID != id {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you can only delete your own profile")
	}
	return s.delete(ctx, id)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) applyIdentity(ctx context.Context, user *models.User, name, email *string) error {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = trimmed
	}
	if email != nil {
		normalized := NormalizeEmail(*email)
		if normalized == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		if normalized != user.Email {
			existing, err := s.repo.FindByEmail(ctx, normalized)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
			}
			if existing != nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
			}
		}
		user.Email = normalized
	}
	return nil
}

func (s *service) save(ctx context.Context, user *models.User) error {
	if err := s.repo.Save(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "ux_users_email") {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save user")
	}
	return nil
}

func (s *service) delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "user has recorded sales and cannot be deleted")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err := s.sessions.RevokeUser(ctx, id); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to revoke sessions for deleted user")
	}
	return nil
}
