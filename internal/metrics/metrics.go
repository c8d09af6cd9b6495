// Package metrics expone los colectores Prometheus del backend del asistente.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK     = "ok"
	OutcomeError  = "error"
	OutcomeMissed = "missed"
)

// Metrics agrupa los colectores de turnos, herramientas y streaming.
type Metrics struct {
	ChatTurnsTotal    *prometheus.CounterVec
	ToolCallsTotal    *prometheus.CounterVec
	StreamBytesTotal  prometheus.Counter
	ChatDuration      prometheus.Histogram
	ChatTurnsInFlight prometheus.Gauge
}

// New registra los colectores en reg; con reg nil usa un registro propio.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		ChatTurnsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_chat_turns_total",
				Help: "Total number of assistant turns by outcome",
			},
			[]string{"outcome"},
		),
		ToolCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_tool_calls_total",
				Help: "Total number of tool invocations by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		StreamBytesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "assistant_stream_bytes_total",
			Help: "Total bytes streamed to chat clients",
		}),
		ChatDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_chat_duration_seconds",
			Help:    "Duration of assistant turns in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ChatTurnsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "assistant_chat_turns_in_flight",
			Help: "Number of assistant turns currently streaming",
		}),
	}
}

// RecordTurn registra el resultado y la duracion de un turno.
func (m *Metrics) RecordTurn(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.ChatTurnsTotal.WithLabelValues(outcome).Inc()
	m.ChatDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) RecordToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) AddStreamBytes(n int) {
	if m == nil {
		return
	}
	m.StreamBytesTotal.Add(float64(n))
}

func (m *Metrics) TurnStarted() {
	if m == nil {
		return
	}
	m.ChatTurnsInFlight.Inc()
}

func (m *Metrics) TurnFinished() {
	if m == nil {
		return
	}
	m.ChatTurnsInFlight.Dec()
}
