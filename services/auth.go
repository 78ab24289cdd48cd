package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-service/models"
	"marketplace-service/repository"
	"marketplace-service/utils"
)

const minPasswordLength = 8

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

type AuthService struct {
	tx     repository.Transactor
	users  repository.UserRepository
	tokens repository.ResetTokenRepository
	mailer Mailer
	cfg    AuthConfig
	now    func() time.Time
}

func NewAuthService(tx repository.Transactor, users repository.UserRepository, tokens repository.ResetTokenRepository, mailer Mailer, cfg AuthConfig) *AuthService {
	return &AuthService{tx: tx, users: users, tokens: tokens, mailer: mailer, cfg: cfg, now: time.Now}
}

type Registration struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	Role            string
	FirstName       string
	LastName        string
	PhoneNumber     string
	Address         string
}

func checkPassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return models.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if password != confirm {
		return models.Invalid("password_confirm", "passwords do not match")
	}
	return nil
}

func checkProfile(email, phone string) error {
	if err := checkVar("email", email, "required,email,max=254", "enter a valid email address"); err != nil {
		return err
	}
	return checkVar("phone_number", phone, "max=15", "must be at most 15 characters")
}

// Register creates the account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in Registration) (*models.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := checkVar("username", in.Username, "min=3,max=150", "must be between 3 and 150 characters"); err != nil {
		return nil, "", err
	}
	if err := checkProfile(in.Email, in.PhoneNumber); err != nil {
		return nil, "", err
	}
	if err := checkPassword(in.Password, in.PasswordConfirm); err != nil {
		return nil, "", err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, "", err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Role:         role,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Address:      strings.TrimSpace(in.Address),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByUsername(ctx, user.Username); err == nil {
			return models.Invalid("username", "a user with that username already exists")
		}
		if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
			return models.Invalid("email", "a user with that email already exists")
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.Invalid("username", "username or email already in use")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// UpdateProfile changes the editable profile fields. Username and role are fixed.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, in models.ProfileUpdate) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := checkProfile(in.Email, in.PhoneNumber); err != nil {
		return nil, err
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if other, err := s.users.GetByEmail(ctx, in.Email); err == nil && other.ID != userID {
		return nil, models.Invalid("email", "a user with that email already exists")
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = in.Email
	user.PhoneNumber = in.PhoneNumber
	user.Address = strings.TrimSpace(in.Address)
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.Invalid("email", "a user with that email already exists")
		}
		return nil, notFound(err, "user")
	}
	return user, nil
}

// RequestReset issues a single-use reset token and mails it to the user.
func (s *AuthService) RequestReset(ctx context.Context, email string) (*models.PasswordResetToken, error) {
	email = strings.TrimSpace(email)
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.Invalid("email", "no user is registered with this email address")
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     newID(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}

	sendMail(ctx, s.mailer, user.Email, "Password reset",
		fmt.Sprintf("Hello %s,\n\nUse this token to reset your password: %s\nIt expires at %s.\n",
			user.Username, token.Token, token.ExpiresAt.Format(time.RFC1123)))
	return token, nil
}

// ConsumeReset sets a new password and burns the token.
func (s *AuthService) ConsumeReset(ctx context.Context, token, password, confirm string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.tokens.GetByToken(ctx, strings.TrimSpace(token))
		if errors.Is(err, repository.ErrNotFound) {
			return models.ErrInvalidToken
		}
		if err != nil {
			return err
		}
		if !t.IsValid(s.now()) {
			return models.ErrInvalidToken
		}
		if err := checkPassword(password, confirm); err != nil {
			return err
		}

		hash, err := utils.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.users.UpdatePassword(ctx, t.UserID, hash); err != nil {
			return notFound(err, "user")
		}
		return s.tokens.MarkUsed(ctx, t.ID)
	})
}
