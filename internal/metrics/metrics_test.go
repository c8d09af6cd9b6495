package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TurnStarted()
	if got := testutil.ToFloat64(m.ChatTurnsInFlight); got != 1 {
		t.Fatalf("expected 1 turn in flight, got %v", got)
	}
	m.AddStreamBytes(42)
	m.RecordToolCall("navigateToPage", OutcomeMissed)
	m.RecordTurn(OutcomeOK, time.Now().Add(-time.Second))
	m.TurnFinished()

	if got := testutil.ToFloat64(m.ChatTurnsInFlight); got != 0 {
		t.Fatalf("expected no turns in flight, got %v", got)
	}
	if got := testutil.ToFloat64(m.StreamBytesTotal); got != 42 {
		t.Fatalf("expected 42 bytes, got %v", got)
	}
	if got := testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("navigateToPage", OutcomeMissed)); got != 1 {
		t.Fatalf("expected 1 missed call, got %v", got)
	}
	if got := testutil.ToFloat64(m.ChatTurnsTotal.WithLabelValues(OutcomeOK)); got != 1 {
		t.Fatalf("expected 1 ok turn, got %v", got)
	}
	if n := testutil.CollectAndCount(m.ChatDuration); n != 1 {
		t.Fatalf("expected duration histogram collected, got %d", n)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.TurnStarted()
	m.AddStreamBytes(10)
	m.RecordToolCall("getSitemap", OutcomeOK)
	m.RecordTurn(OutcomeError, time.Now())
	m.TurnFinished()
}
