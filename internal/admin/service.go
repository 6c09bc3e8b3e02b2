package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrCodeTaken         = errors.New("promotion code already in use")
	ErrInvalidRole       = errors.New("unknown role")
)

type DBLayer interface {
	ListUsers(ctx context.Context, role string) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserRole(ctx context.Context, id, role string) error
	DeleteUser(ctx context.Context, id string) error
	CreatePromotion(ctx context.Context, promo models.Promotion) error
	GetPromotionByID(ctx context.Context, id string) (*models.Promotion, error)
	GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, promo models.Promotion) error
	DeletePromotion(ctx context.Context, id string) error
	ListPromotions(ctx context.Context) ([]models.Promotion, error)
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// ListUsers returns users with password hashes stripped at the model layer.
func (s *Service) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	if role != "" && !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	return s.DB.ListUsers(ctx, role)
}

func (s *Service) UpdateUserRole(ctx context.Context, userID, role string) (*models.User, error) {
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	user, err := s.DB.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.DB.UpdateUserRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	user.Role = role
	s.Logger.Info("ADMIN", fmt.Sprintf("User %s role changed to %s", userID, role))
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.DB.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return ErrUserNotFound
	}
	if err := s.DB.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.Logger.Info("ADMIN", fmt.Sprintf("User %s deleted", userID))
	return nil
}

func validatePromotion(req models.PromotionRequest) error {
	if req.Code == "" {
		return errors.New("promotion code is required")
	}
	if req.Percent < 0 || req.Percent > 100 {
		return errors.New("percent must be between 0 and 100")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return errors.New("ends_at must be after starts_at")
	}
	return nil
}

func (s *Service) CreatePromotion(ctx context.Context, req models.PromotionRequest) (*models.Promotion, error) {
	if err := validatePromotion(req); err != nil {
		return nil, err
	}
	if existing, err := s.DB.GetPromotionByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, ErrCodeTaken
	}

	promo := models.Promotion{
		PromotionID: uuid.NewString(),
		Code:        req.Code,
		Percent:     req.Percent,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Active:      req.Active,
		CreatedAt:   time.Now(),
	}
	if err := s.DB.CreatePromotion(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	return &promo, nil
}

func (s *Service) UpdatePromotion(ctx context.Context, promoID string, req models.PromotionRequest) (*models.Promotion, error) {
	if err := validatePromotion(req); err != nil {
		return nil, err
	}

	promo, err := s.DB.GetPromotionByID(ctx, promoID)
	if err != nil || promo == nil {
		return nil, ErrPromotionNotFound
	}
	if other, err := s.DB.GetPromotionByCode(ctx, req.Code); err == nil && other != nil && other.PromotionID != promoID {
		return nil, ErrCodeTaken
	}

	promo.Code = req.Code
	promo.Percent = req.Percent
	promo.StartsAt = req.StartsAt
	promo.EndsAt = req.EndsAt
	promo.Active = req.Active
	if err := s.DB.UpdatePromotion(ctx, *promo); err != nil {
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}
	return promo, nil
}

// TogglePromotion flips the active flag.
func (s *Service) TogglePromotion(ctx context.Context, promoID string) (*models.Promotion, error) {
	promo, err := s.DB.GetPromotionByID(ctx, promoID)
	if err != nil || promo == nil {
		return nil, ErrPromotionNotFound
	}

	promo.Active = !promo.Active
	if err := s.DB.UpdatePromotion(ctx, *promo); err != nil {
		return nil, fmt.Errorf("failed to toggle promotion: %w", err)
	}
	return promo, nil
}

func (s *Service) DeletePromotion(ctx context.Context, promoID string) error {
	promo, err := s.DB.GetPromotionByID(ctx, promoID)
	if err != nil || promo == nil {
		return ErrPromotionNotFound
	}
	return s.DB.DeletePromotion(ctx, promoID)
}

func (s *Service) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	return s.DB.ListPromotions(ctx)
}
