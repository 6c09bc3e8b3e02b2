package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ms-marketplace/internal/config"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateOrdersWithItems(ctx context.Context, orders []models.Order, items []models.OrderItem) error {
	args := m.Called(ctx, orders, items)
	return args.Error(0)
}

func (m *MockDBLayer) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrderWithItems(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) ListOrdersBySeller(ctx context.Context, sellerID, statusFilter string) ([]models.Order, error) {
	args := m.Called(ctx, sellerID, statusFilter)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) ListAllOrders(ctx context.Context, statusFilter string) ([]models.Order, error) {
	args := m.Called(ctx, statusFilter)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) UpdateOrderStatus(ctx context.Context, ord models.Order, expectedStatus string) (bool, error) {
	args := m.Called(ctx, ord, expectedStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ReserveStock(ctx context.Context, productID string, qty int) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ReleaseStock(ctx context.Context, productID string, qty int) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *MockDBLayer) GetUserEmail(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) ListItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartStore) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, topic string, key string, payload interface{}) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

type MockRepayStager struct {
	mock.Mock
}

func (m *MockRepayStager) Stage(ctx context.Context, userID string, items []models.CartItem) error {
	args := m.Called(ctx, userID, items)
	return args.Error(0)
}

func testTopics() config.TopicConfig {
	return config.TopicConfig{
		OrderCreated: "marketly.order.created",
		OrderStatus:  "marketly.order.status",
	}
}

func newTestService(db *MockDBLayer, cart *MockCartStore, queue *MockPublisher, deliveredImpliesPaid bool) *order.OrderService {
	return order.NewOrderService(db, cart, new(MockRepayStager), queue, testTopics(),
		config.OrderConfig{DeliveredImpliesPaid: deliveredImpliesPaid}, logger.NewLogger())
}

func TestUpdateStatusRejectsUnknownLabel(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	_, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: "shipped"}, false)

	assert.ErrorIs(t, err, order.ErrInvalidStatus)
	db.AssertNotCalled(t, "GetOrderByID", mock.Anything, mock.Anything)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", Status: order.StatusPendingPayment}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)

	_, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusShipped}, false)

	assert.ErrorIs(t, err, order.ErrIllegalTransition)
	db.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusRejectsSameState(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", Status: order.StatusProcessing}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)

	_, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusProcessing}, false)

	assert.ErrorIs(t, err, order.ErrIllegalTransition)
}

func TestUpdateStatusRejectsLeavingTerminalState(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	for _, terminal := range []string{order.StatusDelivered, order.StatusCancelled} {
		stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", Status: terminal}
		db.ExpectedCalls = nil
		db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)

		_, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
			models.StatusUpdateRequest{Status: order.StatusCancelled}, false)
		assert.ErrorIs(t, err, order.ErrIllegalTransition, "from %s", terminal)
	}
}

func TestUpdateStatusHidesOtherSellersOrders(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", Status: order.StatusWaitingApproval}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)

	_, err := svc.UpdateStatus(context.Background(), "seller-2", "order-1",
		models.StatusUpdateRequest{Status: order.StatusProcessing}, false)

	// Existence stays hidden: not-found, never forbidden.
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestGetSellerOrderHidesOtherSellersOrders(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", Status: order.StatusProcessing}
	db.On("GetOrderWithItems", mock.Anything, "order-1").Return(stored, nil)

	_, err := svc.GetSellerOrder(context.Background(), "seller-2", "order-1")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestDeliveredMarksOrderPaid(t *testing.T) {
	db := new(MockDBLayer)
	queue := new(MockPublisher)
	svc := newTestService(db, new(MockCartStore), queue, true)

	stored := &models.Order{OrderID: "order-1", OrderNumber: "MKT-AB12CD34", SellerID: "seller-1",
		BuyerID: "buyer-1", Status: order.StatusShipped}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)
	db.On("UpdateOrderStatus", mock.Anything, mock.Anything, order.StatusShipped).Return(true, nil)
	db.On("GetUserEmail", mock.Anything, "buyer-1").Return("buyer@example.com", nil)
	queue.On("PublishJSON", mock.Anything, "marketly.order.status", "order-1", mock.Anything).Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusDelivered}, false)

	assert.NoError(t, err)
	assert.True(t, updated.IsPaid)
	assert.NotNil(t, updated.PaidAt)
}

func TestDeliveredLeavesPaidAloneWhenPolicyDisabled(t *testing.T) {
	db := new(MockDBLayer)
	queue := new(MockPublisher)
	svc := newTestService(db, new(MockCartStore), queue, false)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", BuyerID: "buyer-1",
		Status: order.StatusShipped}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)
	db.On("UpdateOrderStatus", mock.Anything, mock.Anything, order.StatusShipped).Return(true, nil)
	db.On("GetUserEmail", mock.Anything, "buyer-1").Return("buyer@example.com", nil)
	queue.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusDelivered}, false)

	assert.NoError(t, err)
	assert.False(t, updated.IsPaid)
	assert.Nil(t, updated.PaidAt)
}

func TestCancellationDefaultsReason(t *testing.T) {
	db := new(MockDBLayer)
	queue := new(MockPublisher)
	svc := newTestService(db, new(MockCartStore), queue, true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", BuyerID: "buyer-1",
		Status: order.StatusWaitingApproval}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)
	db.On("UpdateOrderStatus", mock.Anything, mock.Anything, order.StatusWaitingApproval).Return(true, nil)
	db.On("GetUserEmail", mock.Anything, "buyer-1").Return("buyer@example.com", nil)
	queue.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusCancelled}, false)

	assert.NoError(t, err)
	assert.Equal(t, "unspecified", updated.CancelReason)
}

func TestCancellationKeepsProvidedReason(t *testing.T) {
	db := new(MockDBLayer)
	queue := new(MockPublisher)
	svc := newTestService(db, new(MockCartStore), queue, true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", BuyerID: "buyer-1",
		Status: order.StatusPendingPayment}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)
	db.On("UpdateOrderStatus", mock.Anything, mock.Anything, order.StatusPendingPayment).Return(true, nil)
	db.On("GetUserEmail", mock.Anything, "buyer-1").Return("buyer@example.com", nil)
	queue.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusCancelled, CancelReason: "out of stock"}, false)

	assert.NoError(t, err)
	assert.Equal(t, "out of stock", updated.CancelReason)
}

func TestUpdateStatusConflictsOnConcurrentWrite(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", Status: order.StatusWaitingApproval}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)
	// Another writer moved the order between read and write.
	db.On("UpdateOrderStatus", mock.Anything, mock.Anything, order.StatusWaitingApproval).Return(false, nil)

	_, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusProcessing}, false)

	assert.ErrorIs(t, err, order.ErrConflict)
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	db := new(MockDBLayer)
	queue := new(MockPublisher)
	svc := newTestService(db, new(MockCartStore), queue, true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", BuyerID: "buyer-1",
		Status: order.StatusWaitingApproval}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)
	db.On("UpdateOrderStatus", mock.Anything, mock.Anything, order.StatusWaitingApproval).Return(true, nil)
	db.On("GetUserEmail", mock.Anything, "buyer-1").Return("buyer@example.com", nil)
	queue.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	updated, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusProcessing}, false)

	assert.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, updated.Status)
}

func TestAdminOverrideStillHonorsStateMachine(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", Status: order.StatusPendingPayment}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)

	// Ownership is bypassed but Pending_Payment -> Delivered is still illegal.
	_, err := svc.UpdateStatus(context.Background(), "admin-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusDelivered}, true)
	assert.ErrorIs(t, err, order.ErrIllegalTransition)
}

func TestCheckoutSplitsCartBySeller(t *testing.T) {
	db := new(MockDBLayer)
	cart := new(MockCartStore)
	queue := new(MockPublisher)
	svc := newTestService(db, cart, queue, true)

	items := []models.CartItem{
		{ItemID: "i1", UserID: "buyer-1", ProductID: "p1", SellerID: "seller-1", Quantity: 2, UnitPrice: 10},
		{ItemID: "i2", UserID: "buyer-1", ProductID: "p2", SellerID: "seller-2", Quantity: 1, UnitPrice: 40},
	}
	cart.On("ListItems", mock.Anything, "buyer-1").Return(items, nil)
	cart.On("Clear", mock.Anything, "buyer-1").Return(nil)
	db.On("ReserveStock", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	// Both sellers' orders go down in one call.
	db.On("CreateOrdersWithItems", mock.Anything, mock.MatchedBy(func(orders []models.Order) bool {
		return len(orders) == 2
	}), mock.Anything).Return(nil)
	db.On("GetUserEmail", mock.Anything, "buyer-1").Return("buyer@example.com", nil)
	queue.On("PublishJSON", mock.Anything, "marketly.order.created", mock.Anything, mock.Anything).Return(nil)

	orders, err := svc.Checkout(context.Background(), "buyer-1",
		models.CheckoutRequest{ShippingAddress: "42 Main St"})

	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	total := orders[0].TotalPrice + orders[1].TotalPrice
	assert.InDelta(t, 60.0, total, 0.001)
	for _, ord := range orders {
		assert.Equal(t, order.StatusPendingPayment, ord.Status)
		assert.NotEmpty(t, ord.OrderNumber)
	}
	cart.AssertCalled(t, "Clear", mock.Anything, "buyer-1")
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	db := new(MockDBLayer)
	cart := new(MockCartStore)
	svc := newTestService(db, cart, new(MockPublisher), true)

	cart.On("ListItems", mock.Anything, "buyer-1").Return([]models.CartItem{}, nil)

	_, err := svc.Checkout(context.Background(), "buyer-1",
		models.CheckoutRequest{ShippingAddress: "42 Main St"})
	assert.ErrorIs(t, err, order.ErrEmptyCart)
}

func TestCheckoutReleasesStockOnOversell(t *testing.T) {
	db := new(MockDBLayer)
	cart := new(MockCartStore)
	svc := newTestService(db, cart, new(MockPublisher), true)

	items := []models.CartItem{
		{ItemID: "i1", UserID: "buyer-1", ProductID: "p1", SellerID: "seller-1", Quantity: 1, UnitPrice: 10},
		{ItemID: "i2", UserID: "buyer-1", ProductID: "p2", SellerID: "seller-1", Quantity: 5, UnitPrice: 8},
	}
	cart.On("ListItems", mock.Anything, "buyer-1").Return(items, nil)
	db.On("ReserveStock", mock.Anything, "p1", 1).Return(true, nil)
	db.On("ReserveStock", mock.Anything, "p2", 5).Return(false, nil)
	db.On("ReleaseStock", mock.Anything, "p1", 1).Return(nil)

	_, err := svc.Checkout(context.Background(), "buyer-1",
		models.CheckoutRequest{ShippingAddress: "42 Main St"})

	assert.ErrorIs(t, err, order.ErrInsufficientStock)
	db.AssertCalled(t, "ReleaseStock", mock.Anything, "p1", 1)
	cart.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCheckoutPersistsNothingWhenOrderInsertFails(t *testing.T) {
	db := new(MockDBLayer)
	cart := new(MockCartStore)
	queue := new(MockPublisher)
	svc := newTestService(db, cart, queue, true)

	items := []models.CartItem{
		{ItemID: "i1", UserID: "buyer-1", ProductID: "p1", SellerID: "seller-1", Quantity: 2, UnitPrice: 10},
		{ItemID: "i2", UserID: "buyer-1", ProductID: "p2", SellerID: "seller-2", Quantity: 3, UnitPrice: 8},
	}
	cart.On("ListItems", mock.Anything, "buyer-1").Return(items, nil)
	db.On("ReserveStock", mock.Anything, "p1", 2).Return(true, nil)
	db.On("ReserveStock", mock.Anything, "p2", 3).Return(true, nil)
	db.On("CreateOrdersWithItems", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	db.On("ReleaseStock", mock.Anything, "p1", 2).Return(nil)
	db.On("ReleaseStock", mock.Anything, "p2", 3).Return(nil)

	_, err := svc.Checkout(context.Background(), "buyer-1",
		models.CheckoutRequest{ShippingAddress: "42 Main St"})

	// A failed write strands no sibling order: one transaction carried both
	// sellers, every reservation goes back, the cart stays intact and nothing
	// is announced.
	assert.Error(t, err)
	db.AssertNumberOfCalls(t, "CreateOrdersWithItems", 1)
	db.AssertCalled(t, "ReleaseStock", mock.Anything, "p1", 2)
	db.AssertCalled(t, "ReleaseStock", mock.Anything, "p2", 3)
	cart.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	queue.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRepayOrderStagesPendingUnpaidLines(t *testing.T) {
	db := new(MockDBLayer)
	stager := new(MockRepayStager)
	svc := order.NewOrderService(db, new(MockCartStore), stager, new(MockPublisher), testTopics(),
		config.OrderConfig{DeliveredImpliesPaid: true}, logger.NewLogger())

	stored := &models.Order{OrderID: "order-1", OrderNumber: "MKT-AB12CD34", BuyerID: "buyer-1",
		SellerID: "seller-1", Status: order.StatusPendingPayment,
		Items: []models.OrderItem{
			{OrderItemID: "oi1", OrderID: "order-1", ProductID: "p1", ProductName: "Tote", Quantity: 2, Price: 24.90},
		}}
	db.On("GetOrderWithItems", mock.Anything, "order-1").Return(stored, nil)

	var staged []models.CartItem
	stager.On("Stage", mock.Anything, "buyer-1", mock.Anything).Run(func(args mock.Arguments) {
		staged = args.Get(2).([]models.CartItem)
	}).Return(nil)

	err := svc.RepayOrder(context.Background(), "buyer-1", "order-1")

	assert.NoError(t, err)
	assert.Len(t, staged, 1)
	assert.Equal(t, "p1", staged[0].ProductID)
	assert.Equal(t, "buyer-1", staged[0].UserID)
	assert.Equal(t, 2, staged[0].Quantity)
	assert.InDelta(t, 49.80, staged[0].LineTotal, 0.001)
}

func TestRepayOrderRejectsPaidOrAdvancedOrders(t *testing.T) {
	db := new(MockDBLayer)
	stager := new(MockRepayStager)
	svc := order.NewOrderService(db, new(MockCartStore), stager, new(MockPublisher), testTopics(),
		config.OrderConfig{DeliveredImpliesPaid: true}, logger.NewLogger())

	now := time.Now()
	for _, stored := range []*models.Order{
		{OrderID: "order-1", BuyerID: "buyer-1", Status: order.StatusPendingPayment, IsPaid: true, PaidAt: &now},
		{OrderID: "order-1", BuyerID: "buyer-1", Status: order.StatusProcessing},
	} {
		db.ExpectedCalls = nil
		db.On("GetOrderWithItems", mock.Anything, "order-1").Return(stored, nil)

		err := svc.RepayOrder(context.Background(), "buyer-1", "order-1")
		assert.ErrorIs(t, err, order.ErrNotRepayable, "status=%s paid=%v", stored.Status, stored.IsPaid)
	}
	stager.AssertNotCalled(t, "Stage", mock.Anything, mock.Anything, mock.Anything)
}

func TestRepayOrderHidesOtherBuyersOrders(t *testing.T) {
	db := new(MockDBLayer)
	stager := new(MockRepayStager)
	svc := order.NewOrderService(db, new(MockCartStore), stager, new(MockPublisher), testTopics(),
		config.OrderConfig{DeliveredImpliesPaid: true}, logger.NewLogger())

	stored := &models.Order{OrderID: "order-1", BuyerID: "buyer-1", Status: order.StatusPendingPayment}
	db.On("GetOrderWithItems", mock.Anything, "order-1").Return(stored, nil)

	err := svc.RepayOrder(context.Background(), "buyer-2", "order-1")

	assert.ErrorIs(t, err, order.ErrNotFound)
	stager.AssertNotCalled(t, "Stage", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusPublishCarriesDeadline(t *testing.T) {
	db := new(MockDBLayer)
	queue := new(MockPublisher)
	svc := newTestService(db, new(MockCartStore), queue, true)

	stored := &models.Order{OrderID: "order-1", SellerID: "seller-1", BuyerID: "buyer-1",
		Status: order.StatusWaitingApproval}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)
	db.On("UpdateOrderStatus", mock.Anything, mock.Anything, order.StatusWaitingApproval).Return(true, nil)
	db.On("GetUserEmail", mock.Anything, "buyer-1").Return("buyer@example.com", nil)

	var hasDeadline bool
	queue.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			_, hasDeadline = args.Get(0).(context.Context).Deadline()
		}).Return(nil)

	_, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusProcessing}, false)

	assert.NoError(t, err)
	// A hung broker must not hold the finished request open indefinitely.
	assert.True(t, hasDeadline)
}

// Full buyer-visible lifecycle: placed, paid, approved, shipped, delivered.
func TestOrderLifecycleHappyPath(t *testing.T) {
	db := new(MockDBLayer)
	queue := new(MockPublisher)
	svc := newTestService(db, new(MockCartStore), queue, true)

	current := &models.Order{OrderID: "order-1", OrderNumber: "MKT-11223344",
		BuyerID: "buyer-1", SellerID: "seller-1", Status: order.StatusPendingPayment}

	db.On("GetOrderByID", mock.Anything, "order-1").Return(current, nil)
	db.On("UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	db.On("GetUserEmail", mock.Anything, "buyer-1").Return("buyer@example.com", nil)
	queue.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	paid, err := svc.MarkPaid(context.Background(), "order-1")
	assert.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, order.StatusWaitingApproval, paid.Status)

	for _, next := range []string{order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		updated, err := svc.UpdateStatus(context.Background(), "seller-1", "order-1",
			models.StatusUpdateRequest{Status: next}, false)
		assert.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	// Terminal: nothing moves a delivered order.
	_, err = svc.UpdateStatus(context.Background(), "seller-1", "order-1",
		models.StatusUpdateRequest{Status: order.StatusCancelled}, false)
	assert.ErrorIs(t, err, order.ErrIllegalTransition)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	db := new(MockDBLayer)
	svc := newTestService(db, new(MockCartStore), new(MockPublisher), true)

	now := time.Now()
	stored := &models.Order{OrderID: "order-1", Status: order.StatusWaitingApproval,
		IsPaid: true, PaidAt: &now}
	db.On("GetOrderByID", mock.Anything, "order-1").Return(stored, nil)

	ord, err := svc.MarkPaid(context.Background(), "order-1")
	assert.NoError(t, err)
	assert.True(t, ord.IsPaid)
	db.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}
