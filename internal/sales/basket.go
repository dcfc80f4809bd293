package sales

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
)

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type stockWriter interface {
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
}

// priceLines checks existence and stock for each requested line and snapshots
// name and unit price. Items keep the request order through Position.
func priceLines(ctx context.Context, products productReader, lines []LineInput) ([]models.SaleItem, decimal.Decimal, error) {
	items := make([]models.SaleItem, 0, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		product, err := products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", line.ProductID)
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if line.Quantity > product.Stock {
			return nil, decimal.Zero, insufficientStock(product.ID, product.Name, line.Quantity, product.Stock)
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)
		items = append(items, models.SaleItem{
			ProductID: product.ID,
			Position:  i,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
			Subtotal:  subtotal,
		})
	}
	return items, total, nil
}

func insufficientStock(productID uuid.UUID, name string, requested, available int) error {
	return pkgerrors.Newf(pkgerrors.CodeInsufficientStock, "insufficient stock for %s", name).
		WithDetails(map[string]any{
			"productId": productID,
			"requested": requested,
			"available": available,
		})
}

// reserveStock applies the conditional decrement for every item. A guard miss
// means a concurrent booking consumed the stock after priceLines read it.
func reserveStock(ctx context.Context, products stockWriter, items []models.SaleItem) error {
	for _, item := range items {
		ok, err := products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !ok {
			return pkgerrors.Newf(pkgerrors.CodeInsufficientStock, "insufficient stock for %s", item.Name).
				WithDetails(map[string]any{"productId": item.ProductID, "requested": item.Quantity})
		}
	}
	return nil
}

type basketLine struct {
	productID string
	quantity  int
}

func normalizeBasket(items []models.SaleItem) []basketLine {
	out := make([]basketLine, 0, len(items))
	for _, item := range items {
		out = append(out, basketLine{productID: item.ProductID.String(), quantity: item.Quantity})
	}
	sortBasket(out)
	return out
}

func sortBasket(lines []basketLine) {
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].productID != lines[j].productID {
			return lines[i].productID < lines[j].productID
		}
		return lines[i].quantity < lines[j].quantity
	})
}

// sameBasket compares two item lists ignoring order.
func sameBasket(a, b []models.SaleItem) bool {
	if len(a) != len(b) {
		return false
	}
	left, right := normalizeBasket(a), normalizeBasket(b)
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}

// findDuplicate returns the first candidate with the same total and basket.
func findDuplicate(candidates []models.Sale, total decimal.Decimal, items []models.SaleItem) *models.Sale {
	for i := range candidates {
		if !candidates[i].Total.Equal(total) {
			continue
		}
		if sameBasket(candidates[i].Items, items) {
			return &candidates[i]
		}
	}
	return nil
}

// basketFingerprint identifies a requested basket independent of line order.
func basketFingerprint(lines []LineInput) string {
	normalized := make([]basketLine, 0, len(lines))
	for _, line := range lines {
		normalized = append(normalized, basketLine{productID: line.ProductID.String(), quantity: line.Quantity})
	}
	sortBasket(normalized)

	var b strings.Builder
	for _, line := range normalized {
		b.WriteString(line.productID)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(line.quantity))
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
