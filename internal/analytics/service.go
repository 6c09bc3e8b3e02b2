package analytics

import (
	"context"
	"fmt"
	"time"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/order"
)

type DBLayer interface {
	CountUsersByRole(ctx context.Context, role string) (int, error)
	CountProducts(ctx context.Context) (int, error)
	CountOrders(ctx context.Context) (int, error)
	SumRevenueByStatus(ctx context.Context, status string) (float64, error)
	SellerRevenue(ctx context.Context, from, to *time.Time) ([]SellerRevenueRow, error)
	PaidOrdersSince(ctx context.Context, since time.Time) ([]models.Order, error)
	CountSellerOrders(ctx context.Context, sellerID string) (int, error)
	CountSellerOrdersByStatus(ctx context.Context, sellerID, status string) (int, error)
	SellerPaidOrdersSince(ctx context.Context, sellerID string, since time.Time) ([]models.Order, error)
}

// DashboardSummary is the admin landing view. Revenue counts Delivered orders
// only; anything earlier in the lifecycle can still fall through.
type DashboardSummary struct {
	Buyers   int     `json:"buyers"`
	Sellers  int     `json:"sellers"`
	Products int     `json:"products"`
	Orders   int     `json:"orders"`
	Revenue  float64 `json:"revenue"`
}

type SellerRevenueRow struct {
	SellerID   string  `json:"seller_id"`
	SellerName string  `json:"seller_name"`
	Revenue    float64 `json:"revenue"`
	OrderCount int     `json:"order_count"`
}

// SellerStats is the per-seller dashboard. The windowed figures use real
// today / week / month boundaries in the server's local time.
type SellerStats struct {
	TotalOrders     int         `json:"total_orders"`
	WaitingApproval int         `json:"waiting_approval"`
	RevenueToday    float64     `json:"revenue_today"`
	RevenueWeek     float64     `json:"revenue_week"`
	RevenueMonth    float64     `json:"revenue_month"`
	WeeklyRevenue   [7]float64  `json:"weekly_revenue"`
	MonthlyRevenue  [12]float64 `json:"monthly_revenue"`
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log, now: time.Now}
}

func (s *Service) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{}
	var err error

	if summary.Buyers, err = s.DB.CountUsersByRole(ctx, models.RoleBuyer); err != nil {
		return nil, fmt.Errorf("failed to count buyers: %w", err)
	}
	if summary.Sellers, err = s.DB.CountUsersByRole(ctx, models.RoleSeller); err != nil {
		return nil, fmt.Errorf("failed to count sellers: %w", err)
	}
	if summary.Products, err = s.DB.CountProducts(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if summary.Orders, err = s.DB.CountOrders(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if summary.Revenue, err = s.DB.SumRevenueByStatus(ctx, order.StatusDelivered); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return summary, nil
}

// SellerRevenueReport groups paid revenue per seller over an optional [from,to)
// range. Either bound may be nil.
func (s *Service) SellerRevenueReport(ctx context.Context, from, to *time.Time) ([]SellerRevenueRow, error) {
	return s.DB.SellerRevenue(ctx, from, to)
}

// weekStart returns local Sunday 00:00 for the week containing t.
func weekStart(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// paidAt picks the revenue timestamp for an order.
func paidAt(o models.Order) time.Time {
	if o.PaidAt != nil {
		return *o.PaidAt
	}
	return o.CreatedAt
}

// WeeklyRevenue buckets this week's paid orders into a fixed 7-slot array
// indexed by weekday, Sunday first. Days without orders stay zero.
func (s *Service) WeeklyRevenue(ctx context.Context) ([7]float64, error) {
	var buckets [7]float64

	start := weekStart(s.now())
	orders, err := s.DB.PaidOrdersSince(ctx, start)
	if err != nil {
		return buckets, fmt.Errorf("failed to load paid orders: %w", err)
	}
	for _, o := range orders {
		ts := paidAt(o)
		if ts.Before(start) {
			continue
		}
		buckets[int(ts.Weekday())] += o.TotalPrice
	}
	return buckets, nil
}

func (s *Service) SellerStats(ctx context.Context, sellerID string) (*SellerStats, error) {
	stats := &SellerStats{}
	var err error

	if stats.TotalOrders, err = s.DB.CountSellerOrders(ctx, sellerID); err != nil {
		return nil, fmt.Errorf("failed to count seller orders: %w", err)
	}
	if stats.WaitingApproval, err = s.DB.CountSellerOrdersByStatus(ctx, sellerID, order.StatusWaitingApproval); err != nil {
		return nil, fmt.Errorf("failed to count waiting orders: %w", err)
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	wkStart := weekStart(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	// One pass over this year's paid orders covers every window.
	orders, err := s.DB.SellerPaidOrdersSince(ctx, sellerID, yearStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller paid orders: %w", err)
	}
	for _, o := range orders {
		ts := paidAt(o)
		if !ts.Before(dayStart) {
			stats.RevenueToday += o.TotalPrice
		}
		if !ts.Before(wkStart) {
			stats.RevenueWeek += o.TotalPrice
			stats.WeeklyRevenue[int(ts.Weekday())] += o.TotalPrice
		}
		if !ts.Before(monthStart) {
			stats.RevenueMonth += o.TotalPrice
		}
		stats.MonthlyRevenue[int(ts.Month())-1] += o.TotalPrice
	}
	return stats, nil
}
