package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/sangkips/masterstock-api/pkg/utils"
	"go.uber.org/zap"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		s.logger.Info("login rejected", zap.String("username", input.Username))
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Roles())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return apperror.ErrPasswordMismatch
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.ErrWrongPassword
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("username", user.Username))
	return nil
}

// ResetSuperAdminPassword replaces the password of every super admin and
// returns how many accounts were updated.
func (s *AuthService) ResetSuperAdminPassword(ctx context.Context, newPassword, confirmPassword string) (int, error) {
	if newPassword != confirmPassword {
		return 0, apperror.ErrPasswordMismatch
	}
	if newPassword == "" {
		return 0, apperror.NewValidationMessage("password is required")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return 0, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range users {
		if !users[i].IsSuperAdmin {
			continue
		}
		users[i].Password = hashedPassword
		if err := s.userRepo.Update(ctx, &users[i]); err != nil {
			return updated, err
		}
		updated++
	}

	s.logger.Info("super admin password reset", zap.Int("accounts", updated))
	return updated, nil
}
