package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/order"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNotPayable      = errors.New("order is not awaiting payment")
	ErrIntentNotPaid   = errors.New("payment intent is not settled")
)

type DBLayer interface {
	CreatePayment(ctx context.Context, payment models.Payment) error
	GetPaymentByOrder(ctx context.Context, orderID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status, providerRef string) error
}

// OrderGateway is the slice of the order component payments touch.
type OrderGateway interface {
	GetBuyerOrder(ctx context.Context, buyerID, orderID string) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*models.Order, error)
}

type Service struct {
	DB     DBLayer
	Orders OrderGateway
	Stripe *client.API
	Logger *logger.Logger
}

func NewService(db DBLayer, orders OrderGateway, secretKey string, log *logger.Logger) *Service {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Service{DB: db, Orders: orders, Stripe: sc, Logger: log}
}

// CreatePayment opens a stripe payment intent for a buyer's unpaid order and
// records the pending payment row.
func (s *Service) CreatePayment(ctx context.Context, buyerID string, req models.CreatePaymentRequest) (*models.Payment, string, error) {
	ord, err := s.Orders.GetBuyerOrder(ctx, buyerID, req.OrderID)
	if err != nil {
		return nil, "", err
	}
	if ord.Status != order.StatusPendingPayment || ord.IsPaid {
		return nil, "", ErrNotPayable
	}

	intent, err := s.Stripe.PaymentIntents.New(&stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(ord.TotalPrice * 100)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Metadata: map[string]string{"order_id": ord.OrderID, "order_number": ord.OrderNumber},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	payment := models.Payment{
		PaymentID:   uuid.NewString(),
		OrderID:     ord.OrderID,
		ProviderRef: intent.ID,
		Amount:      ord.TotalPrice,
		Status:      models.PaymentPending,
		CreatedAt:   time.Now(),
	}
	if err := s.DB.CreatePayment(ctx, payment); err != nil {
		return nil, "", fmt.Errorf("failed to record payment: %w", err)
	}

	s.Logger.Info("PAYMENT", fmt.Sprintf("Intent %s opened for order %s", intent.ID, ord.OrderNumber))
	return &payment, intent.ClientSecret, nil
}

// ConfirmPayment verifies the intent with stripe, marks the payment succeeded
// and moves the order out of Pending_Payment.
func (s *Service) ConfirmPayment(ctx context.Context, buyerID string, req models.ConfirmPaymentRequest) (*models.Order, error) {
	if _, err := s.Orders.GetBuyerOrder(ctx, buyerID, req.OrderID); err != nil {
		return nil, err
	}

	payment, err := s.DB.GetPaymentByOrder(ctx, req.OrderID)
	if err != nil || payment == nil {
		return nil, ErrPaymentNotFound
	}

	intent, err := s.Stripe.PaymentIntents.Get(req.PaymentIntent, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, ErrIntentNotPaid
	}

	if err := s.DB.UpdatePaymentStatus(ctx, payment.PaymentID, models.PaymentSucceeded, intent.ID); err != nil {
		return nil, fmt.Errorf("failed to settle payment: %w", err)
	}

	ord, err := s.Orders.MarkPaid(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("PAYMENT", fmt.Sprintf("Order %s paid via intent %s", ord.OrderNumber, intent.ID))
	return ord, nil
}
