package metrics

import "github.com/prometheus/client_golang/prometheus"

// SaleMetrics tracks sale workflow outcomes.
type SaleMetrics struct {
	created  prometheus.Counter
	rejected *prometheus.CounterVec
}

// Rejection reasons recorded by IncRejected.
const (
	RejectDuplicate         = "duplicate"
	RejectInsufficientStock = "insufficient_stock"
	RejectValidation        = "validation"
)

// NewSaleMetrics registers sale metrics on reg. A nil registerer yields a no-op recorder.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "sales_created_total",
		Help:      "Sales recorded successfully.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "sales_rejected_total",
		Help:      "Sale submissions rejected before commit.",
	}, []string{"reason"})
	reg.MustRegister(created, rejected)
	return &SaleMetrics{created: created, rejected: rejected}
}

// IncCreated counts a committed sale.
func (m *SaleMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncRejected counts a rejected submission by reason.
func (m *SaleMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
