package gositemapgenerator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a Generator reports to. A nil *Metrics records nothing.
type Metrics struct {
	Items        prometheus.Counter
	Documents    *prometheus.CounterVec
	BytesWritten prometheus.Counter
	WriteErrors  prometheus.Counter
}

// NewMetrics registers the generator collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Items: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitemap_generator_items_total",
			Help: "Total number of <url> entries written",
		}),
		Documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitemap_generator_documents_total",
			Help: "Total number of finalized documents by root element",
		}, []string{"kind"}),
		BytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitemap_generator_bytes_written_total",
			Help: "Total bytes of finalized documents",
		}),
		WriteErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitemap_generator_write_errors_total",
			Help: "Total number of failed document writes",
		}),
	}
}

func (m *Metrics) observeItem() {
	if m == nil {
		return
	}
	m.Items.Inc()
}

func (m *Metrics) observeDocument(kind string, size int64) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(kind).Inc()
	m.BytesWritten.Add(float64(size))
}

func (m *Metrics) observeWriteError() {
	if m == nil {
		return
	}
	m.WriteErrors.Inc()
}
