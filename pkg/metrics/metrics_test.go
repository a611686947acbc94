package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	if m.namespace != "fleetbench" {
		t.Errorf("expected namespace fleetbench, got %s", m.namespace)
	}
	if m.subsystem != "run" {
		t.Errorf("expected subsystem run, got %s", m.subsystem)
	}
	if !m.enabled {
		t.Error("expected metrics to be enabled by default")
	}
}

func TestManagerOptions(t *testing.T) {
	m := NewManager(
		WithPrometheusRegistry(prometheus.NewRegistry()),
		WithNamespace("custom"),
		WithSubsystem("bench"),
		WithHistogramBuckets([]float64{1, 10, 100}),
		WithMetricsEnabled(false),
	)

	if m.namespace != "custom" {
		t.Errorf("expected namespace custom, got %s", m.namespace)
	}
	if m.subsystem != "bench" {
		t.Errorf("expected subsystem bench, got %s", m.subsystem)
	}
	if len(m.histogramBuckets) != 3 {
		t.Errorf("expected 3 buckets, got %d", len(m.histogramBuckets))
	}
	if m.enabled {
		t.Error("expected metrics to be disabled")
	}
}

func TestRecordOperation(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	// Must not panic regardless of outcome shape
	m.RecordOperation(12.5, true, "")
	m.RecordOperation(250.0, false, "connection")
	m.RecordOperation(3.0, false, "data")
	m.UpdateThroughput(42.0)
	m.UpdateWorkerCount(10)
	m.UpdatePoolStats(5, 3, 8)
}

func TestRecordOperationDisabled(t *testing.T) {
	m := NewManager(
		WithPrometheusRegistry(prometheus.NewRegistry()),
		WithMetricsEnabled(false),
	)

	m.RecordOperation(12.5, true, "")
	m.UpdateThroughput(42.0)
	m.UpdateWorkerCount(10)
	m.UpdatePoolStats(0, 0, 0)
}

func TestGlobalHelpers(t *testing.T) {
	RecordOperation(5.0, true, "")
	RecordOperation(7.0, false, "connection")
	UpdateThroughput(100.0)
	UpdateWorkerCount(50)
	UpdatePoolStats(10, 40, 50)
}

func TestHandler(t *testing.T) {
	RecordOperation(5.0, true, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty metrics exposition")
	}
}
