package service

import (
	"context"
	"fmt"
	"time"

	"jewelry-backoffice/internal/util"

	"go.uber.org/zap"
)

// DashboardCacheKey is where the cached summary lives
const DashboardCacheKey = "dashboard:summary"

// DashboardSummary is the back-office landing page snapshot
type DashboardSummary struct {
	TotalCustomers   int       `json:"total_customers"`
	OrdersToday      int       `json:"total_orders_today"`
	LowStockProducts int       `json:"low_stock_products"`
	LowStockAlerts   []string  `json:"low_stock_alerts"`
	Threshold        int       `json:"low_stock_threshold"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// DashboardService computes the summary, caching it when a cache is configured
type DashboardService struct {
	repo      Repository
	cache     Cache
	ttl       time.Duration
	threshold int
	now       func() time.Time
	logger    *zap.Logger
}

// NewDashboardService creates a dashboard service. cache may be nil.
func NewDashboardService(repo Repository, cache Cache, threshold int, ttl time.Duration) *DashboardService {
	return &DashboardService{
		repo:      repo,
		cache:     cache,
		ttl:       ttl,
		threshold: threshold,
		now:       time.Now,
		logger:    util.GetLogger(),
	}
}

// Summary returns the current dashboard counters
func (d *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Summary")
	defer span.End()

	if d.cache != nil && d.ttl > 0 {
		var cached DashboardSummary
		hit, err := d.cache.GetJSON(ctx, DashboardCacheKey, &cached)
		if err != nil {
			d.logger.Warn("Dashboard cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	customers, err := d.repo.CountCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	ordersToday, err := d.repo.CountOrdersOn(ctx, d.now())
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	lowStock, err := d.repo.CountLowStock(ctx, d.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}

	summary := &DashboardSummary{
		TotalCustomers:   customers,
		OrdersToday:      ordersToday,
		LowStockProducts: lowStock,
		LowStockAlerts:   []string{},
		Threshold:        d.threshold,
		GeneratedAt:      d.now(),
	}

	if d.cache != nil {
		alerts, err := d.cache.LowStockSKUs(ctx)
		if err != nil {
			d.logger.Warn("Failed to read low stock alerts", zap.Error(err))
		} else if alerts != nil {
			summary.LowStockAlerts = alerts
		}

		if d.ttl > 0 {
			if err := d.cache.SetJSON(ctx, DashboardCacheKey, summary, d.ttl); err != nil {
				d.logger.Warn("Dashboard cache write failed", zap.Error(err))
			}
		}
	}

	return summary, nil
}
