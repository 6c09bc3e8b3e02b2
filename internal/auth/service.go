package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-marketplace/internal/config"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type DBLayer interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// ResetMailer delivers the password-reset link. Dispatch is fire-and-forget;
// the service never fails a reset request over mail transport errors.
type ResetMailer interface {
	SendPasswordReset(email, link string) error
}

type Service struct {
	DB     DBLayer
	Tokens *ResetTokenStore
	Mailer ResetMailer
	Cfg    config.AuthConfig
	Logger *logger.Logger
}

func NewService(db DBLayer, tokens *ResetTokenStore, mailer ResetMailer, cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{DB: db, Tokens: tokens, Mailer: mailer, Cfg: cfg, Logger: log}
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Email == "" {
		return nil, errors.New("email is required")
	}
	role := req.Role
	if role == "" {
		role = models.RoleBuyer
	}
	if role != models.RoleBuyer && role != models.RoleSeller {
		return nil, fmt.Errorf("cannot self-register with role %q", role)
	}

	if existing, err := s.DB.GetUserByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := IssueToken(s.Cfg.JWTSecret, user.UserID, user.Role, s.Cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.LoginResponse{Token: token, User: *user}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.DB.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req models.RegisterRequest) (*models.User, error) {
	user, err := s.DB.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if err := s.DB.UpdateProfile(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// RequestPasswordReset issues a single-use token and mails the reset link.
// Always returns nil for unknown emails so the endpoint cannot be used to
// probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.DB.GetUserByEmail(ctx, email)
	if err != nil || user == nil {
		return nil
	}

	token, err := s.Tokens.Issue(ctx, user.UserID)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	link := fmt.Sprintf("%s?token=%s", s.Cfg.ResetLinkBase, token)
	go func() {
		if err := s.Mailer.SendPasswordReset(user.Email, link); err != nil {
			s.Logger.Error("MAIL", fmt.Sprintf("Password reset dispatch failed for %s: %v", user.Email, err))
		}
	}()
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.Tokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.DB.UpdatePasswordHash(ctx, userID, hash)
}
