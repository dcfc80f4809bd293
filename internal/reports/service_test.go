package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/enums"
)

type ledger struct {
	t    *testing.T
	conn *gorm.DB
}

func (l ledger) user(name, email string) uuid.UUID {
	l.t.Helper()
	u := &models.User{Name: name, Email: email, PasswordHash: "h", Role: enums.UserRoleSeller}
	require.NoError(l.t, l.conn.Create(u).Error)
	return u.ID
}

func (l ledger) product(name string) uuid.UUID {
	l.t.Helper()
	p := &models.Product{Name: name, Category: "c", Price: decimal.NewFromInt(1), Stock: 100}
	require.NoError(l.t, l.conn.Create(p).Error)
	return p.ID
}

func (l ledger) sale(seller uuid.UUID, at time.Time, lines map[uuid.UUID][2]int64) {
	l.t.Helper()
	sale := &models.Sale{
		SellerID:      seller,
		PaymentMethod: enums.PaymentMethodCash,
		Status:        enums.SaleStatusCompleted,
		CreatedAt:     at,
		UpdatedAt:     at,
		Total:         decimal.Zero,
	}
	pos := 0
	for productID, qp := range lines {
		subtotal := decimal.NewFromInt(qp[0] * qp[1])
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID: productID,
			Position:  pos,
			Name:      "snapshot",
			Quantity:  int(qp[0]),
			Price:     decimal.NewFromInt(qp[1]),
			Subtotal:  subtotal,
		})
		sale.Total = sale.Total.Add(subtotal)
		pos++
	}
	require.NoError(l.t, l.conn.Omit("Seller").Create(sale).Error)
}

func newReportService(t *testing.T, now time.Time) (Service, ledger) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), func() time.Time { return now })
	require.NoError(t, err)
	return svc, ledger{t: t, conn: conn}
}

func TestPeriodReports(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, l := newReportService(t, now)
	ctx := context.Background()
	seller := l.user("Sam", "sam@shop.com")
	p := l.product("Pen")

	l.sale(seller, now.Add(-1*time.Hour), map[uuid.UUID][2]int64{p: {2, 5}})
	l.sale(seller, now.Add(-2*time.Hour), map[uuid.UUID][2]int64{p: {1, 5}})
	l.sale(seller, now.AddDate(0, 0, -3), map[uuid.UUID][2]int64{p: {1, 7}})
	l.sale(seller, now.AddDate(0, 0, -60), map[uuid.UUID][2]int64{p: {1, 100}})
	l.sale(seller, now.AddDate(-2, 0, 0), map[uuid.UUID][2]int64{p: {1, 1000}})

	daily, err := svc.DailySales(ctx)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "2026-03-12", daily[0].Date)
	assert.True(t, daily[0].Total.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "2026-03-15", daily[1].Date)
	assert.True(t, daily[1].Total.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 2, daily[1].Count)

	monthly, err := svc.MonthlySales(ctx)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2026-01", monthly[0].Month)
	assert.True(t, monthly[0].Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "2026-03", monthly[1].Month)
	assert.Equal(t, 3, monthly[1].Count)
}

func TestSellerAndProductReports(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, l := newReportService(t, now)
	ctx := context.Background()
	ana := l.user("Ana", "ana@shop.com")
	bob := l.user("Bob", "bob@shop.com")
	pen := l.product("Pen")
	ink := l.product("Ink")

	l.sale(ana, now, map[uuid.UUID][2]int64{pen: {5, 2}})
	l.sale(bob, now, map[uuid.UUID][2]int64{ink: {1, 50}, pen: {1, 2}})

	sellers, err := svc.SellerSales(ctx)
	require.NoError(t, err)
	require.Len(t, sellers, 2)
	assert.Equal(t, "Bob", sellers[0].Name)
	assert.True(t, sellers[0].Total.Equal(decimal.NewFromInt(52)))
	assert.Equal(t, int64(1), sellers[0].Count)
	assert.Equal(t, "ana@shop.com", sellers[1].Email)

	top, err := svc.TopProducts(ctx)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Pen", top[0].Name)
	assert.Equal(t, int64(6), top[0].QuantitySold)
	assert.True(t, top[0].Total.Equal(decimal.NewFromInt(12)))

	income, err := svc.TotalIncome(ctx)
	require.NoError(t, err)
	assert.True(t, income.Total.Equal(decimal.NewFromInt(62)))
}

func TestTotalIncomeEmptyLedger(t *testing.T) {
	svc, _ := newReportService(t, time.Now().UTC())
	income, err := svc.TotalIncome(context.Background())
	require.NoError(t, err)
	assert.True(t, income.Total.IsZero())

	daily, err := svc.DailySales(context.Background())
	require.NoError(t, err)
	assert.Empty(t, daily)
}
