package diag

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names:
//   - phonebook_op_total{comp,stage,result}
//   - phonebook_error_total{comp,code}
//   - phonebook_op_duration_ms{comp,stage}
//   - phonebook_rows_total{kind}  kind=input|contact|merged|invalid_phone
//
// Nothing is served over the network; WriteTextfile exports a snapshot for
// node_exporter's textfile collector.
var (
	registry = prometheus.NewRegistry()

	opTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phonebook",
		Name:      "op_total",
		Help:      "Pipeline stage operations by result.",
	}, []string{"comp", "stage", "result"})

	errorTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phonebook",
		Name:      "error_total",
		Help:      "Pipeline errors by class.",
	}, []string{"comp", "code"})

	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "phonebook",
		Name:      "op_duration_ms",
		Help:      "Stage duration in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"comp", "stage"})

	rowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phonebook",
		Name:      "rows_total",
		Help:      "Rows seen by kind.",
	}, []string{"kind"})
)

func init() {
	registry.MustRegister(opTotal, errorTotal, opDuration, rowsTotal)
}

// IncOp counts an operation (result=success|error).
func IncOp(comp, stage, result string) {
	opTotal.WithLabelValues(comp, stage, result).Inc()
}

// IncError counts an error by class.
func IncError(comp, code string) {
	errorTotal.WithLabelValues(comp, code).Inc()
}

// ObserveDuration records a stage duration in milliseconds.
func ObserveDuration(comp, stage string, durMS int64) {
	opDuration.WithLabelValues(comp, stage).Observe(float64(durMS))
}

// AddRows adds n to the rows counter of kind.
func AddRows(kind string, n int) {
	if n <= 0 {
		return
	}
	rowsTotal.WithLabelValues(kind).Add(float64(n))
}

// Gatherer exposes the process registry.
func Gatherer() prometheus.Gatherer { return registry }

// WriteTextfile writes the registry in text exposition format to path (atomic rename),
// creating the parent directory when missing.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, registry)
}
