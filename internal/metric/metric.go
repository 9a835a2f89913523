// Package metric holds the Prometheus collectors for command, storage and
// pipeline activity.
//
// Each Metrics owns its registry; nothing is registered on the global
// default registry. A nil *Metrics is valid and records nothing.
package metric

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Label values for FilterEvaluations.
const (
	FilterSQL    = "sql"
	FilterMemory = "memory"
)

// Metrics groups the collectors.
type Metrics struct {
	registry *prometheus.Registry

	// CommandsTotal counts commands by kind (put|get) and status (ok|error).
	CommandsTotal *prometheus.CounterVec
	// CommandDuration is the latency of commands by kind.
	CommandDuration *prometheus.HistogramVec
	// NodesWritten counts nodes stored by put.
	NodesWritten prometheus.Counter
	// ItemsTotal counts get results by status (ok|error).
	ItemsTotal *prometheus.CounterVec
	// FilterEvaluations counts where stages by evaluation path (sql|memory).
	FilterEvaluations *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ahghee_commands_total",
				Help: "Total number of commands executed",
			},
			[]string{"kind", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ahghee_command_duration_seconds",
				Help:    "Command latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		NodesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ahghee_nodes_written_total",
				Help: "Total number of nodes written",
			},
		),
		ItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ahghee_items_total",
				Help: "Total number of get results by status",
			},
			[]string{"status"},
		),
		FilterEvaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ahghee_filter_evaluations_total",
				Help: "Total number of where stages by evaluation path",
			},
			[]string{"path"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveCommand records one finished command.
func (m *Metrics) ObserveCommand(kind string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(kind, status(err)).Inc()
	m.CommandDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// AddNodes records n written nodes.
func (m *Metrics) AddNodes(n int) {
	if m == nil {
		return
	}
	m.NodesWritten.Add(float64(n))
}

// ObserveItem records one get result.
func (m *Metrics) ObserveItem(err error) {
	if m == nil {
		return
	}
	m.ItemsTotal.WithLabelValues(status(err)).Inc()
}

// ObserveFilter records which path evaluated a where stage.
func (m *Metrics) ObserveFilter(path string) {
	if m == nil {
		return
	}
	m.FilterEvaluations.WithLabelValues(path).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// WriteSummary prints one line per counter series, sorted by name, e.g.
//
//	ahghee_commands_total{kind="get",status="ok"} 3
//
// Histograms print their sample count as <name>_count.
func (m *Metrics) WriteSummary(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, fam := range families {
		for _, series := range fam.GetMetric() {
			labels := labelString(series.GetLabel())
			switch fam.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, fmt.Sprintf("%s%s %g", fam.GetName(), labels, series.GetCounter().GetValue()))
			case dto.MetricType_HISTOGRAM:
				lines = append(lines, fmt.Sprintf("%s_count%s %d", fam.GetName(), labels, series.GetHistogram().GetSampleCount()))
			}
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	s := "{"
	for i, l := range labels {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return s + "}"
}
