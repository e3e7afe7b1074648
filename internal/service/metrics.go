package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the ingestion pipeline counters. A nil *Metrics is valid and
// records nothing, which keeps test wiring small.
type Metrics struct {
	uploadsTotal    *prometheus.CounterVec
	enrichmentTotal *prometheus.CounterVec
}

// NewMetrics registers the ingestion counters on the given registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_uploads_total",
				Help: "Total number of asset uploads by final status.",
			},
			[]string{"status"},
		),
		enrichmentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_enrichment_total",
				Help: "Total number of metadata enrichment attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}

	if err := reg.Register(m.uploadsTotal); err != nil {
		return nil, err
	}
	if err := reg.Register(m.enrichmentTotal); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) recordUpload(status string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) recordEnrichment(outcome string) {
	if m == nil {
		return
	}
	m.enrichmentTotal.WithLabelValues(outcome).Inc()
}
