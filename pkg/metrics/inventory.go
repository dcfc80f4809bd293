package metrics

import "github.com/prometheus/client_golang/prometheus"

// InventoryMetrics publishes the result of the low-stock scan. Register it only
// in the process that runs the scan.
type InventoryMetrics struct {
	lowStockProducts prometheus.Gauge
}

func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "low_stock_products",
		Help:      "Products at or below the low stock threshold at the last scan.",
	})
	reg.MustRegister(lowStock)
	return &InventoryMetrics{lowStockProducts: lowStock}
}

// SetLowStockProducts publishes the latest low stock count.
func (m *InventoryMetrics) SetLowStockProducts(count int) {
	if m == nil || m.lowStockProducts == nil {
		return
	}
	m.lowStockProducts.Set(float64(count))
}
