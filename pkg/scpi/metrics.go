package scpi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts transport traffic.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Errors        *prometheus.CounterVec
	BytesReceived prometheus.Counter
	QueryDuration prometheus.Histogram
}

// NewMetrics creates the transport metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scpi_requests_total",
				Help: "SCPI requests sent to the instrument",
			},
			[]string{"kind"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scpi_errors_total",
				Help: "SCPI requests that failed",
			},
			[]string{"kind"},
		),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scpi_bytes_received_total",
			Help: "Reply bytes received from the instrument",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scpi_query_duration_seconds",
			Help:    "Round trip time of SCPI queries",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.Errors, m.BytesReceived, m.QueryDuration)
	}
	return m
}

type instrumented struct {
	t Transport
	m *Metrics
}

// Instrument wraps t so that every request is recorded in m.
func Instrument(t Transport, m *Metrics) Transport {
	if m == nil {
		return t
	}
	return &instrumented{t: t, m: m}
}

func (i *instrumented) Write(cmd string) error {
	i.m.Requests.WithLabelValues("write").Inc()
	err := i.t.Write(cmd)
	if err != nil {
		i.m.Errors.WithLabelValues("write").Inc()
	}
	return err
}

func (i *instrumented) Query(cmd string) ([]byte, error) {
	i.m.Requests.WithLabelValues("query").Inc()
	start := time.Now()
	reply, err := i.t.Query(cmd)
	i.m.QueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		i.m.Errors.WithLabelValues("query").Inc()
		return nil, err
	}
	i.m.BytesReceived.Add(float64(len(reply)))
	return reply, nil
}

func (i *instrumented) Close() error {
	return i.t.Close()
}
