package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "miplata/internal/errors"
	"miplata/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user
func (s *userService) CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:        email,
		Password:     string(hashedPassword),
		AuthProvider: models.AuthProviderLocal,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	if user.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks a password sign-in. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials so callers cannot test for
// registered addresses.
func (s *userService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.AuthProvider == models.AuthProviderGoogle {
		return nil, apperrors.ErrProviderMismatch
	}
	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now
	return user, nil
}

// FindOrCreateGoogleUser signs in a Google account, registering it on first
// use. An email already registered with a password is refused.
func (s *userService) FindOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error) {
	if !profile.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrOAuthFailed, "provider returned no email")
	}

	db := s.db.WithContext(ctx)
	now := time.Now()
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:        email,
			AuthProvider: models.AuthProviderGoogle,
			FirstName:    profile.GivenName,
			LastName:     profile.FamilyName,
			IsActive:     true,
			LastLoginAt:  &now,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &user, nil
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.AuthProvider != models.AuthProviderGoogle {
		return nil, apperrors.ErrProviderMismatch
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserNotFound
	}
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now
	return &user, nil
}

// StoreSessionTokenHash records the hash of the token issued at sign-in.
func (s *userService) StoreSessionTokenHash(ctx context.Context, userID, tokenHash string) error {
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("session_token_hash", tokenHash).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ClearSession revokes the current session token.
func (s *userService) ClearSession(ctx context.Context, userID string) error {
	return s.StoreSessionTokenHash(ctx, userID, "")
}

// ValidateSession reports ErrSessionExpired unless tokenHash is the hash of
// the user's current session token.
func (s *userService) ValidateSession(ctx context.Context, userID, tokenHash string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrSessionExpired
		}
		return err
	}
	if !user.IsActive || user.SessionTokenHash == "" || user.SessionTokenHash != tokenHash {
		return apperrors.ErrSessionExpired
	}
	return nil
}
