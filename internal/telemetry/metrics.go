package telemetry

import (
	"bytes"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics is the process-wide instrument set. Every component records
// against the same Metrics value, obtained once via InitMetrics and
// retrieved thereafter via GlobalMetrics.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	BytesUploaded     *prometheus.CounterVec
	BytesDownloaded   *prometheus.CounterVec
	FilesUploaded     *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	TransferRateKbps  *prometheus.HistogramVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// InitMetrics builds the instrument set against a dedicated registry
// (never the global default registry, so a library consumer embedding
// s3cli never collides with its own metrics). Instrument names omit the
// "s3cli" namespace: the service name already appears in OTel resource
// attributes, and double-prefixing would repeat it.
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		reg := prometheus.NewRegistry()
		globalMetrics = &Metrics{
			registry: reg,
			OperationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
				Name: "operations_total",
				Help: "Total number of CLI operations by command and status",
			}, []string{"command", "status"}),
			OperationDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "operation_duration_seconds",
				Help:    "Duration of CLI operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			}, []string{"command"}),
			BytesUploaded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
				Name: "bytes_uploaded_total",
				Help: "Total bytes uploaded to a bucket",
			}, []string{"bucket"}),
			BytesDownloaded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
				Name: "bytes_downloaded_total",
				Help: "Total bytes downloaded from a bucket",
			}, []string{"bucket"}),
			FilesUploaded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
				Name: "files_uploaded_total",
				Help: "Total files uploaded to a bucket",
			}, []string{"bucket"}),
			ErrorsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total errors by taxonomy kind",
			}, []string{"kind"}),
			TransferRateKbps: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "transfer_rate_kbps",
				Help:    "Observed transfer rate in KB/s by command",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			}, []string{"command"}),
		}
	})
	return globalMetrics
}

// GlobalMetrics returns the process-wide instrument set, initializing it
// on first use so callers never need a nil check.
func GlobalMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// ObserveOperation records one command invocation's outcome and duration.
func (m *Metrics) ObserveOperation(command, status string, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(command, status).Inc()
	m.OperationDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// ObserveUpload records a completed upload's byte count and resulting
// transfer rate.
func (m *Metrics) ObserveUpload(command, bucket string, bytes uint64, duration time.Duration) {
	m.BytesUploaded.WithLabelValues(bucket).Add(float64(bytes))
	m.FilesUploaded.WithLabelValues(bucket).Inc()
	m.observeRate(command, bytes, duration)
}

// ObserveDownload records a completed download's byte count and resulting
// transfer rate.
func (m *Metrics) ObserveDownload(command, bucket string, bytes uint64, duration time.Duration) {
	m.BytesDownloaded.WithLabelValues(bucket).Add(float64(bytes))
	m.observeRate(command, bytes, duration)
}

func (m *Metrics) observeRate(command string, bytesMoved uint64, duration time.Duration) {
	if duration <= 0 {
		return
	}
	kbps := (float64(bytesMoved) / 1024) / duration.Seconds()
	m.TransferRateKbps.WithLabelValues(command).Observe(kbps)
}

// ObserveError records one item-level failure by taxonomy kind.
func (m *Metrics) ObserveError(kind string) {
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// Flush gathers every instrument's current value and renders it as
// Prometheus text exposition format. A sub-second CLI process has no
// scrape window, so this is called synchronously in the exit path
// instead of being exposed over HTTP, mirroring how the trace pipeline's
// Shutdown forces a synchronous drain rather than waiting on a passive
// exporter.
func (m *Metrics) Flush() (string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
