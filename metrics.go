package balancer

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds prometheus collectors describing balancers activity.
// A single Metrics may be shared by many balancers. Values of balancers using
// the same strategy are summed up: the nodes gauge holds the number of nodes
// registered across all of them.
type Metrics struct {
	selections *prometheus.CounterVec
	empty      *prometheus.CounterVec
	nodes      *prometheus.GaugeVec
}

// NewMetrics creates collectors within given namespace and registers them
// with reg. If reg is nil, collectors are not registered.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "balancer",
			Name:      "selections_total",
			Help:      "Number of times a node was selected.",
		}, []string{"strategy", "node"}),
		empty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "balancer",
			Name:      "empty_selections_total",
			Help:      "Number of selections which found no available node.",
		}, []string{"strategy"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "balancer",
			Name:      "nodes",
			Help:      "Number of nodes registered in balancers.",
		}, []string{"strategy"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.selections, m.empty, m.nodes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("balancer: register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) selected(s Strategy, id any) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(s.String(), fmt.Sprint(id)).Inc()
}

func (m *Metrics) missed(s Strategy) {
	if m == nil {
		return
	}
	m.empty.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) addNodes(s Strategy, delta int) {
	if m == nil {
		return
	}
	m.nodes.WithLabelValues(s.String()).Add(float64(delta))
}
