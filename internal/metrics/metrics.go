// Package metrics exposes node counters to Prometheus. Counters are resolved
// on the control path so that the data path only performs atomic adds.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "alohaspa"

// Metrics holds the counter families shared by all nodes of a process.
type Metrics struct {
	cycles    *prometheus.CounterVec
	underruns *prometheus.CounterVec
	invalid   *prometheus.CounterVec
	formats   *prometheus.CounterVec
}

// New creates the counter families and registers them with reg, which may
// be nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "node",
			Name:      "process_cycles_total",
			Help:      "Process cycles run by a node.",
		}, []string{"node"}),
		underruns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "output_underruns_total",
			Help:      "Cycles in which an output had no free buffer and its data was dropped.",
		}, []string{"node", "port"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "invalid_buffers_total",
			Help:      "Cycles in which an input area named a nonexistent buffer.",
		}, []string{"node", "port"}),
		formats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "format_changes_total",
			Help:      "Formats committed on a port.",
		}, []string{"node", "direction"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.cycles, m.underruns, m.invalid, m.formats} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Node returns the counters of one node instance. A nil Metrics yields
// counters that are not exported anywhere.
func (m *Metrics) Node(name string) *NodeMetrics {
	if m == nil {
		m, _ = New(nil)
	}
	return &NodeMetrics{m: m, name: name, Cycles: m.cycles.WithLabelValues(name)}
}

// NodeMetrics are the counters of a single node.
type NodeMetrics struct {
	m    *Metrics
	name string

	Cycles prometheus.Counter
}

// Underruns returns the underrun counter of an output port.
func (n *NodeMetrics) Underruns(port string) prometheus.Counter {
	return n.m.underruns.WithLabelValues(n.name, port)
}

// InvalidBuffers returns the invalid-buffer counter of an input port.
func (n *NodeMetrics) InvalidBuffers(port string) prometheus.Counter {
	return n.m.invalid.WithLabelValues(n.name, port)
}

// FormatChanges returns the format commit counter for a direction.
func (n *NodeMetrics) FormatChanges(direction string) prometheus.Counter {
	return n.m.formats.WithLabelValues(n.name, direction)
}

// Forget drops the series of a node, e.g. when it is cleared.
func (n *NodeMetrics) Forget() {
	n.m.cycles.DeleteLabelValues(n.name)
	n.m.underruns.DeletePartialMatch(prometheus.Labels{"node": n.name})
	n.m.invalid.DeletePartialMatch(prometheus.Labels{"node": n.name})
	n.m.formats.DeletePartialMatch(prometheus.Labels{"node": n.name})
}
