package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
)

// Alert flags a product whose live stock is at or below the low stock threshold.
type Alert struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Message   string    `json:"message"`
}

type productLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// alertsForItems emits one alert per line item whose product is low. Products
// deleted since booking are skipped.
func alertsForItems(ctx context.Context, products productLookup, items []models.SaleItem, threshold int) ([]Alert, error) {
	if len(items) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	live, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products for alerts")
	}

	var alerts []Alert
	for _, item := range items {
		product, ok := live[item.ProductID]
		if !ok {
			continue
		}
		if product.Stock <= threshold {
			alerts = append(alerts, newAlert(product))
		}
	}
	return alerts, nil
}

func newAlert(product models.Product) Alert {
	return Alert{
		ProductID: product.ID,
		Name:      product.Name,
		Stock:     product.Stock,
		Message:   fmt.Sprintf("Low stock: %s has %d units left", product.Name, product.Stock),
	}
}
