package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/sangkips/masterstock-api/pkg/utils"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListUsers returns every user in creation order
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.List(ctx)
}

// AddUserInput represents the input for creating a user
type AddUserInput struct {
	Username     string
	Password     string
	IsSuperAdmin bool
}

// AddUser creates a user account
func (s *UserService) AddUser(ctx context.Context, input *AddUserInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, apperror.NewValidationMessage("please fill in all fields")
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Username already taken")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     username,
		Password:     hashedPassword,
		IsSuperAdmin: input.IsSuperAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user added", zap.String("username", user.Username), zap.Bool("super_admin", user.IsSuperAdmin))
	return user, nil
}

// DeleteUser removes a user. Users cannot delete their own account.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return apperror.NewBadRequestError("You cannot delete your own account")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("username", user.Username))
	return nil
}

// SeedUser describes an account created at start-up.
type SeedUser struct {
	Username     string
	Password     string
	IsSuperAdmin bool
}

// EnsureUsers creates the given accounts unless a user with the same
// username already exists.
func (s *UserService) EnsureUsers(ctx context.Context, seeds []SeedUser) error {
	for _, seed := range seeds {
		existing, err := s.userRepo.GetByUsername(ctx, seed.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := s.AddUser(ctx, &AddUserInput{
			Username:     seed.Username,
			Password:     seed.Password,
			IsSuperAdmin: seed.IsSuperAdmin,
		}); err != nil {
			return err
		}
	}
	return nil
}
