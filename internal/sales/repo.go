package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
)

// Repository persists sales and their line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// List returns every sale with seller and items, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// FindByID loads one sale with seller and items. gorm.ErrRecordNotFound is returned when missing.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Items", orderedItems).
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindRecentBySeller returns the seller's sales created at or after since, with items.
func (r *Repository) FindRecentBySeller(ctx context.Context, sellerID uuid.UUID, since time.Time) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("seller_id = ? AND created_at >= ?", sellerID, since).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Create inserts the sale together with its items.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Omit("Seller").Create(sale).Error
}

// Save writes the sale header only; items are managed through ReplaceItems.
func (r *Repository) Save(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(sale).Error
}

// ReplaceItems swaps the sale's line items for items.
func (r *Repository) ReplaceItems(ctx context.Context, saleID uuid.UUID, items []models.SaleItem) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].SaleID = saleID
	}
	return conn.Create(&items).Error
}

// Delete removes the sale and its items and reports whether the sale existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
		return false, err
	}
	result := conn.Delete(&models.Sale{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
