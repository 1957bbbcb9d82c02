package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"backend/apperrors"
	"backend/models"
	"backend/repository"
	"backend/utils"
)

// AuthService handles registration, login and the authenticated user's
// own profile. Tokens are stateless: signature and expiry are the only
// validity checks anywhere in the stack.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
}

func NewAuthService(users repository.UserRepository, jwtSecret []byte) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret}
}

// AuthResult pairs a freshly minted bearer token with the user it names.
type AuthResult struct {
	Token string
	User  *models.User
}

// Register creates an account and signs the user in. Emails are folded to
// lower case before compare and store, so uniqueness is case-insensitive.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperrors.ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	goals := models.DefaultDailyGoals()
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DailyGoals:   &goals,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Unique-index race between the existence check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, err
	}

	token, err := utils.GenerateJWT(user.ID, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same error so account existence is not enumerable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// GetSelf returns the authenticated user's profile.
func (s *AuthService) GetSelf(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateGoals overwrites the dailyGoals sub-object. No other user field
// is mutable through this path.
func (s *AuthService) UpdateGoals(ctx context.Context, userID string, goals models.DailyGoals) (*models.User, error) {
	user, err := s.GetSelf(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.DailyGoals = &goals
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
