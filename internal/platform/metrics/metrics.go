package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "trustledger/pkg/domain-errors"
)

// Metrics holds the Prometheus metrics for ledger operations. Construct it
// once in main; promauto registers on the default registry.
type Metrics struct {
	Operations *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustledger_operations_total",
			Help: "Ledger operations by name and outcome",
		}, []string{"operation", "outcome"}),
	}
}

// Observe records one operation attempt. The outcome label is "ok" for
// success, the domain error code name for coded failures, and "error" for
// infrastructure failures.
func (m *Metrics) Observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if code, ok := dErrors.CodeOf(err); ok {
			outcome = code.String()
		}
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}
