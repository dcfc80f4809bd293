package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
)

const (
	dailyWindowDays   = 30
	monthlyWindowDays = 365
	topProductsLimit  = 10
)

// PeriodTotal is one bucket of a daily or monthly report.
type PeriodTotal struct {
	Date  string          `json:"date,omitempty"`
	Month string          `json:"month,omitempty"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type SellerTotal struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type ProductTotal struct {
	Name         string          `json:"name"`
	QuantitySold int64           `json:"quantitySold"`
	Total        decimal.Decimal `json:"total"`
}

type IncomeTotal struct {
	Total decimal.Decimal `json:"total"`
}

// Service exposes admin sales reports.
type Service interface {
	DailySales(ctx context.Context) ([]PeriodTotal, error)
	MonthlySales(ctx context.Context) ([]PeriodTotal, error)
	SellerSales(ctx context.Context) ([]SellerTotal, error)
	TopProducts(ctx context.Context) ([]ProductTotal, error)
	TotalIncome(ctx context.Context) (*IncomeTotal, error)
}

type reportRepository interface {
	SaleTotalsSince(ctx context.Context, since time.Time) ([]SaleTotalRow, error)
	SellerTotals(ctx context.Context) ([]SellerTotalRow, error)
	TopProducts(ctx context.Context, limit int) ([]ProductTotalRow, error)
	TotalIncome(ctx context.Context) (decimal.Decimal, error)
}

type service struct {
	repo reportRepository
	now  func() time.Time
}

// NewService builds the reports service. now defaults to the UTC wall clock.
func NewService(repo reportRepository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) DailySales(ctx context.Context) ([]PeriodTotal, error) {
	buckets, err := s.bucketed(ctx, dailyWindowDays, "2006-01-02")
	if err != nil {
		return nil, err
	}
	out := make([]PeriodTotal, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, PeriodTotal{Date: b.key, Total: b.total, Count: b.count})
	}
	return out, nil
}

func (s *service) MonthlySales(ctx context.Context) ([]PeriodTotal, error) {
	buckets, err := s.bucketed(ctx, monthlyWindowDays, "2006-01")
	if err != nil {
		return nil, err
	}
	out := make([]PeriodTotal, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, PeriodTotal{Month: b.key, Total: b.total, Count: b.count})
	}
	return out, nil
}

type bucket struct {
	key   string
	total decimal.Decimal
	count int
}

// bucketed groups sales in the trailing window by their UTC layout key, ascending.
func (s *service) bucketed(ctx context.Context, days int, layout string) ([]bucket, error) {
	since := s.now().AddDate(0, 0, -days)
	rows, err := s.repo.SaleTotalsSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale totals")
	}

	index := map[string]int{}
	var out []bucket
	for _, row := range rows {
		key := row.CreatedAt.UTC().Format(layout)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, bucket{key: key, total: decimal.Zero})
		}
		out[i].total = out[i].total.Add(row.Total)
		out[i].count++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, nil
}

func (s *service) SellerSales(ctx context.Context) ([]SellerTotal, error) {
	rows, err := s.repo.SellerTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate seller totals")
	}
	out := make([]SellerTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, SellerTotal(row))
	}
	return out, nil
}

func (s *service) TopProducts(ctx context.Context) ([]ProductTotal, error) {
	rows, err := s.repo.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate top products")
	}
	out := make([]ProductTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProductTotal(row))
	}
	return out, nil
}

func (s *service) TotalIncome(ctx context.Context) (*IncomeTotal, error) {
	total, err := s.repo.TotalIncome(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum income")
	}
	return &IncomeTotal{Total: total}, nil
}
