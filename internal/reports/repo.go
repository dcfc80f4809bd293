package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleTotalRow is one sale reduced to what the period reports need.
type SaleTotalRow struct {
	CreatedAt time.Time
	Total     decimal.Decimal
}

// SellerTotalRow aggregates sales per seller.
type SellerTotalRow struct {
	Name  string
	Email string
	Total decimal.Decimal
	Count int64
}

// ProductTotalRow aggregates sold quantities per product.
type ProductTotalRow struct {
	Name         string
	QuantitySold int64
	Total        decimal.Decimal
}

const sellerTotalsQuery = `
SELECT u.name AS name,
       u.email AS email,
       COALESCE(SUM(s.total), 0) AS total,
       COUNT(s.id) AS count
FROM sales s
JOIN users u ON u.id = s.seller_id
GROUP BY u.id, u.name, u.email
ORDER BY total DESC, u.name ASC
`

const topProductsQuery = `
SELECT COALESCE(MAX(p.name), MAX(si.name)) AS name,
       SUM(si.quantity) AS quantity_sold,
       COALESCE(SUM(si.subtotal), 0) AS total
FROM sale_items si
LEFT JOIN products p ON p.id = si.product_id
GROUP BY si.product_id
ORDER BY quantity_sold DESC, name ASC
LIMIT ?
`

// Repository runs read-only aggregations over the sale ledger.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaleTotalsSince returns (created_at, total) for sales created at or after since.
func (r *Repository) SaleTotalsSince(ctx context.Context, since time.Time) ([]SaleTotalRow, error) {
	var rows []SaleTotalRow
	err := r.db.WithContext(ctx).
		Table("sales").
		Select("created_at, total").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) SellerTotals(ctx context.Context) ([]SellerTotalRow, error) {
	var rows []SellerTotalRow
	err := r.db.WithContext(ctx).Raw(sellerTotalsQuery).Scan(&rows).Error
	return rows, err
}

func (r *Repository) TopProducts(ctx context.Context, limit int) ([]ProductTotalRow, error) {
	var rows []ProductTotalRow
	err := r.db.WithContext(ctx).Raw(topProductsQuery, limit).Scan(&rows).Error
	return rows, err
}

func (r *Repository) TotalIncome(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("sales").
		Select("COALESCE(SUM(total), 0) AS total").
		Scan(&row).Error
	return row.Total, err
}
