package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-marketplace/internal/config"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrConflict          = errors.New("order was modified concurrently")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotRepayable      = errors.New("order is not awaiting payment")
)

// publishTimeout bounds the post-commit event publish so a hung broker cannot
// stall the request that triggered it.
const publishTimeout = 5 * time.Second

type DBLayer interface {
	// CreateOrdersWithItems persists every order and line in one transaction;
	// a failure on any row leaves nothing behind.
	CreateOrdersWithItems(ctx context.Context, orders []models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderWithItems(ctx context.Context, id string) (*models.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID, statusFilter string) ([]models.Order, error)
	ListAllOrders(ctx context.Context, statusFilter string) ([]models.Order, error)
	// UpdateOrderStatus applies the mutation only when the stored status still
	// equals expectedStatus; reports false when another writer got there first.
	UpdateOrderStatus(ctx context.Context, order models.Order, expectedStatus string) (bool, error)
	ReserveStock(ctx context.Context, productID string, qty int) (bool, error)
	ReleaseStock(ctx context.Context, productID string, qty int) error
	GetUserEmail(ctx context.Context, userID string) (string, error)
}

// CartStore is the slice of the cart component checkout needs.
type CartStore interface {
	ListItems(ctx context.Context, userID string) ([]models.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

// Publisher pushes order events onto the message queue. Failures are logged
// and discarded; they never affect the mutation that triggered them.
type Publisher interface {
	PublishJSON(ctx context.Context, topic string, key string, payload interface{}) error
}

// RepayStager parks an order's lines for a one-shot checkout retry.
type RepayStager interface {
	Stage(ctx context.Context, userID string, items []models.CartItem) error
}

type OrderService struct {
	DB     DBLayer
	Cart   CartStore
	Repay  RepayStager
	Queue  Publisher
	Topics config.TopicConfig
	Policy config.OrderConfig
	Logger *logger.Logger
}

func NewOrderService(db DBLayer, cart CartStore, repay RepayStager, queue Publisher, topics config.TopicConfig, policy config.OrderConfig, log *logger.Logger) *OrderService {
	return &OrderService{DB: db, Cart: cart, Repay: repay, Queue: queue, Topics: topics, Policy: policy, Logger: log}
}

// newOrderNumber builds the human-readable identifier, e.g. MKT-3F2A9C01.
func newOrderNumber() string {
	return "MKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Checkout snapshots the buyer's cart into one order per seller. Item prices
// come from the cart lines, never from the live catalog. Stock is reserved
// with a conditional decrement, then every seller's order lands in a single
// transaction; any failure releases what was already taken and aborts the
// whole checkout with nothing persisted.
func (s *OrderService) Checkout(ctx context.Context, buyerID string, req models.CheckoutRequest) ([]models.Order, error) {
	if req.ShippingAddress == "" {
		return nil, errors.New("shipping address is required")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cod"
	}

	items, err := s.Cart.ListItems(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	bySeller := make(map[string][]models.CartItem)
	for _, item := range items {
		bySeller[item.SellerID] = append(bySeller[item.SellerID], item)
	}

	type reservation struct {
		productID string
		qty       int
	}
	var reserved []reservation
	release := func() {
		for _, r := range reserved {
			if err := s.DB.ReleaseStock(ctx, r.productID, r.qty); err != nil {
				s.Logger.Error("ORDER", fmt.Sprintf("Failed to release stock for product %s: %v", r.productID, err))
			}
		}
	}

	var orders []models.Order
	var allItems []models.OrderItem
	for sellerID, lines := range bySeller {
		order := models.Order{
			OrderID:         uuid.NewString(),
			OrderNumber:     newOrderNumber(),
			BuyerID:         buyerID,
			SellerID:        sellerID,
			Status:          StatusPendingPayment,
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.ShippingAddress,
			Note:            req.Note,
			CreatedAt:       time.Now(),
		}

		for _, line := range lines {
			if line.Quantity < 1 {
				release()
				return nil, fmt.Errorf("invalid quantity for product %s", line.ProductID)
			}
			ok, err := s.DB.ReserveStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				release()
				return nil, fmt.Errorf("stock reservation failed: %w", err)
			}
			if !ok {
				release()
				return nil, fmt.Errorf("%w: product %s", ErrInsufficientStock, line.ProductID)
			}
			reserved = append(reserved, reservation{line.ProductID, line.Quantity})

			order.Items = append(order.Items, models.OrderItem{
				OrderItemID: uuid.NewString(),
				OrderID:     order.OrderID,
				ProductID:   line.ProductID,
				ProductName: line.Name,
				Image:       line.Image,
				VariantID:   line.VariantID,
				Quantity:    line.Quantity,
				Price:       line.UnitPrice,
			})
			order.TotalPrice += line.UnitPrice * float64(line.Quantity)
		}

		orders = append(orders, order)
		allItems = append(allItems, order.Items...)
	}

	// One transaction for every seller's order. Either the whole checkout
	// lands or none of it does, so a failed insert never strands a committed
	// sibling order whose stock is about to be released.
	if err := s.DB.CreateOrdersWithItems(ctx, orders, allItems); err != nil {
		release()
		return nil, fmt.Errorf("failed to create orders: %w", err)
	}

	for _, order := range orders {
		s.Logger.LogOrder("CREATE", order.OrderNumber, fmt.Sprintf("buyer=%s seller=%s total=%.2f", buyerID, order.SellerID, order.TotalPrice))
		s.publishEvent(s.Topics.OrderCreated, order)
	}

	if err := s.Cart.Clear(ctx, buyerID); err != nil {
		s.Logger.Error("ORDER", fmt.Sprintf("Failed to clear cart for buyer %s: %v", buyerID, err))
	}
	return orders, nil
}

// GetBuyerOrder returns an order only when the caller is its buyer.
func (s *OrderService) GetBuyerOrder(ctx context.Context, buyerID, orderID string) (*models.Order, error) {
	order, err := s.DB.GetOrderWithItems(ctx, orderID)
	if err != nil || order == nil {
		return nil, ErrNotFound
	}
	if order.BuyerID != buyerID {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *OrderService) ListBuyerOrders(ctx context.Context, buyerID string) ([]models.Order, error) {
	return s.DB.ListOrdersByBuyer(ctx, buyerID)
}

// GetSellerOrder hides existence from non-owning sellers: a cross-seller read
// comes back as not-found, never as forbidden.
func (s *OrderService) GetSellerOrder(ctx context.Context, sellerID, orderID string) (*models.Order, error) {
	order, err := s.DB.GetOrderWithItems(ctx, orderID)
	if err != nil || order == nil {
		return nil, ErrNotFound
	}
	if order.SellerID != sellerID {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *OrderService) ListSellerOrders(ctx context.Context, sellerID, statusFilter string) ([]models.Order, error) {
	if statusFilter != "" && !IsValidStatus(statusFilter) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, statusFilter)
	}
	return s.DB.ListOrdersBySeller(ctx, sellerID, statusFilter)
}

func (s *OrderService) ListAllOrders(ctx context.Context, statusFilter string) ([]models.Order, error) {
	if statusFilter != "" && !IsValidStatus(statusFilter) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, statusFilter)
	}
	return s.DB.ListAllOrders(ctx, statusFilter)
}

// UpdateStatus drives the state machine. actorID must own the order unless
// adminOverride is set; ownership failures read as not-found. The status
// write is conditional on the status the actor saw, so two racing updates
// cannot silently overwrite each other.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID string, req models.StatusUpdateRequest, adminOverride bool) (*models.Order, error) {
	if !IsValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	order, err := s.DB.GetOrderByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, ErrNotFound
	}
	if !adminOverride && order.SellerID != actorID {
		return nil, ErrNotFound
	}

	if err := ValidateTransition(order.Status, req.Status); err != nil {
		return nil, err
	}

	expected := order.Status
	order.Status = req.Status
	if req.SellerNote != "" {
		order.SellerNote = req.SellerNote
	}
	if req.EstimatedDelivery != nil {
		order.EstimatedDelivery = req.EstimatedDelivery
	}

	switch req.Status {
	case StatusDelivered:
		if s.Policy.DeliveredImpliesPaid && !order.IsPaid {
			now := time.Now()
			order.IsPaid = true
			order.PaidAt = &now
		}
	case StatusCancelled:
		order.CancelReason = req.CancelReason
		if order.CancelReason == "" {
			order.CancelReason = "unspecified"
		}
	}

	applied, err := s.DB.UpdateOrderStatus(ctx, *order, expected)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	if !applied {
		return nil, ErrConflict
	}

	s.Logger.LogOrder("STATUS", order.OrderNumber, fmt.Sprintf("%s -> %s", expected, order.Status))
	s.publishEvent(s.Topics.OrderStatus, *order)
	return order, nil
}

// publishEvent resolves the buyer's contact and pushes the event onto the
// queue. Best effort: any failure is logged and dropped, and the whole publish
// runs under its own deadline since the triggering mutation is already
// committed.
func (s *OrderService) publishEvent(topic string, order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	email, err := s.DB.GetUserEmail(ctx, order.BuyerID)
	if err != nil {
		s.Logger.Warn("ORDER", fmt.Sprintf("Could not resolve buyer contact for order %s: %v", order.OrderNumber, err))
	}

	event := models.OrderStatusEvent{
		OrderID:    order.OrderID,
		Status:     order.Status,
		BuyerEmail: email,
		Order:      order,
	}
	if err := s.Queue.PublishJSON(ctx, topic, order.OrderID, event); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Publish error (%s) for order %s: %v", topic, order.OrderNumber, err))
	}
}

// RepayOrder stages a pending unpaid order's lines so the checkout page can
// pick them up exactly once. Ownership failures read as not-found, like every
// other buyer lookup.
func (s *OrderService) RepayOrder(ctx context.Context, buyerID, orderID string) error {
	order, err := s.GetBuyerOrder(ctx, buyerID, orderID)
	if err != nil {
		return err
	}
	if order.Status != StatusPendingPayment || order.IsPaid {
		return ErrNotRepayable
	}

	now := time.Now()
	lines := make([]models.CartItem, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, models.CartItem{
			ItemID:    uuid.NewString(),
			UserID:    buyerID,
			ProductID: item.ProductID,
			SellerID:  order.SellerID,
			Name:      item.ProductName,
			Image:     item.Image,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.Price * float64(item.Quantity),
			AddedAt:   now,
		})
	}

	if err := s.Repay.Stage(ctx, buyerID, lines); err != nil {
		return fmt.Errorf("failed to stage repay cart for order %s: %w", orderID, err)
	}
	s.Logger.LogOrder("REPAY", order.OrderNumber, fmt.Sprintf("staged %d lines for buyer %s", len(lines), buyerID))
	return nil
}

// MarkPaid records payment confirmation and, for orders still awaiting
// payment, advances them to Waiting_Approval.
func (s *OrderService) MarkPaid(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, ErrNotFound
	}
	if order.IsPaid {
		return order, nil
	}

	expected := order.Status
	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	if order.Status == StatusPendingPayment {
		order.Status = StatusWaitingApproval
	}

	applied, err := s.DB.UpdateOrderStatus(ctx, *order, expected)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
	}
	if !applied {
		return nil, ErrConflict
	}

	s.Logger.LogOrder("PAID", order.OrderNumber, "payment confirmed")
	s.publishEvent(s.Topics.OrderStatus, *order)
	return order, nil
}
