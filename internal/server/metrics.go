package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/atikulmunna/grokline/internal/model"
)

// metrics holds process-wide counters. Per-request totals live in each
// request's own aggregator.Stats.
type metrics struct {
	lines *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grokline",
			Name:      "lines_total",
			Help:      "Lines run through the extractor, by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.lines)
	return m
}

func (m *metrics) observe(o model.Outcome) {
	if o.Matched() {
		m.lines.WithLabelValues("parsed").Inc()
		return
	}
	m.lines.WithLabelValues("failed").Inc()
}
