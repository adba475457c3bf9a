package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EquityMetrics tracks marketplace activity for operators and dashboards.
type EquityMetrics struct {
	businessesRegistered prometheus.Counter
	businessesListed     prometheus.Counter
	sharesSold           *prometheus.CounterVec
	proceeds             *prometheus.CounterVec
	instructionFailures  *prometheus.CounterVec
}

var (
	equityOnce     sync.Once
	equityRegistry *EquityMetrics
)

// Equity returns the process-wide equity metrics registry.
func Equity() *EquityMetrics {
	equityOnce.Do(func() {
		equityRegistry = &EquityMetrics{
			businessesRegistered: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "equity_businesses_registered_total",
				Help: "Count of newly registered businesses.",
			}),
			businessesListed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "equity_businesses_listed_total",
				Help: "Count of businesses listed on the marketplace.",
			}),
			sharesSold: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "equity_shares_sold_total",
				Help: "Shares sold by purchase path (vault or offering).",
			}, []string{"path"}),
			proceeds: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "equity_sale_proceeds_total",
				Help: "Native currency collected from share sales by path.",
			}, []string{"path"}),
			instructionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "equity_instruction_failures_total",
				Help: "Rejected equity instructions by entry point.",
			}, []string{"op"}),
		}
		prometheus.MustRegister(
			equityRegistry.businessesRegistered,
			equityRegistry.businessesListed,
			equityRegistry.sharesSold,
			equityRegistry.proceeds,
			equityRegistry.instructionFailures,
		)
	})
	return equityRegistry
}

// Handler exposes the process metrics in prometheus text format.
func Handler() http.Handler {
	Equity()
	return promhttp.Handler()
}

// BusinessRegistered records a successful first-time registration.
func (m *EquityMetrics) BusinessRegistered() {
	if m == nil {
		return
	}
	m.businessesRegistered.Inc()
}

// BusinessListed records a successful listing.
func (m *EquityMetrics) BusinessListed() {
	if m == nil {
		return
	}
	m.businessesListed.Inc()
}

// SharesSold records a settled purchase on the given path.
func (m *EquityMetrics) SharesSold(path string, amount uint64, cost uint64) {
	if m == nil {
		return
	}
	m.sharesSold.WithLabelValues(path).Add(float64(amount))
	m.proceeds.WithLabelValues(path).Add(float64(cost))
}

// InstructionFailed records a rejected instruction for the given entry point.
func (m *EquityMetrics) InstructionFailed(op string) {
	if m == nil {
		return
	}
	m.instructionFailures.WithLabelValues(op).Inc()
}
