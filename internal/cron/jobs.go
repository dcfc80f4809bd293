package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

const (
	defaultEventRetentionDays = 90
	defaultLowStockThreshold  = 5
	lowStockLogLimit          = 20
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type tempPasswordStore interface {
	ClearExpiredTempPasswords(ctx context.Context, now time.Time) (int64, error)
}

type tempPasswordExpiryJob struct {
	logg  *logger.Logger
	users tempPasswordStore
	now   func() time.Time
}

// NewTempPasswordExpiryJob clears temporary credentials whose expiry has passed.
func NewTempPasswordExpiryJob(logg *logger.Logger, users tempPasswordStore) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &tempPasswordExpiryJob{logg: logg, users: users, now: time.Now}, nil
}

func (j *tempPasswordExpiryJob) Name() string { return "temp-password-expiry" }

func (j *tempPasswordExpiryJob) Run(ctx context.Context) error {
	cleared, err := j.users.ClearExpiredTempPasswords(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("clear expired temp passwords: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "rows_updated", cleared), "expired temp passwords cleared")
	return nil
}

type saleEventPruner interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// SaleEventRetentionJobParams configures journal pruning.
type SaleEventRetentionJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Events        saleEventPruner
	RetentionDays int
}

type saleEventRetentionJob struct {
	logg      *logger.Logger
	db        txRunner
	events    saleEventPruner
	retention int
	now       func() time.Time
}

func NewSaleEventRetentionJob(params SaleEventRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("sale event repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultEventRetentionDays
	}
	return &saleEventRetentionJob{
		logg:      params.Logger,
		db:        params.DB,
		events:    params.Events,
		retention: retention,
		now:       time.Now,
	}, nil
}

func (j *saleEventRetentionJob) Name() string { return "sale-event-retention" }

func (j *saleEventRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.events.DeleteOlderThan(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("sale event retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "sale event retention cleanup complete")
	return nil
}

type lowStockLister interface {
	ListLowStock(ctx context.Context, threshold int) ([]models.Product, error)
}

type lowStockGauge interface {
	SetLowStockProducts(count int)
}

type lowStockScanJob struct {
	logg      *logger.Logger
	products  lowStockLister
	gauge     lowStockGauge
	threshold int
}

// NewLowStockScanJob reports how many products sit at or below threshold.
// A nil gauge only logs.
func NewLowStockScanJob(logg *logger.Logger, products lowStockLister, gauge lowStockGauge, threshold int) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}
	return &lowStockScanJob{logg: logg, products: products, gauge: gauge, threshold: threshold}, nil
}

func (j *lowStockScanJob) Name() string { return "low-stock-scan" }

func (j *lowStockScanJob) Run(ctx context.Context) error {
	rows, err := j.products.ListLowStock(ctx, j.threshold)
	if err != nil {
		return fmt.Errorf("list low stock products: %w", err)
	}
	if j.gauge != nil {
		j.gauge.SetLowStockProducts(len(rows))
	}
	if len(rows) == 0 {
		return nil
	}

	names := make([]string, 0, min(len(rows), lowStockLogLimit))
	for _, p := range rows {
		if len(names) == lowStockLogLimit {
			break
		}
		names = append(names, fmt.Sprintf("%s(%d)", p.Name, p.Stock))
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"threshold": j.threshold,
		"count":     len(rows),
		"products":  strings.Join(names, ", "),
	})
	j.logg.Warn(logCtx, "products at or below low stock threshold")
	return nil
}
