package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestCollectorRecords(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))

	c.RecordMutation("cart", "set")
	c.RecordMutation("cart", "set")
	c.RecordMutation("cart", "dispatch")
	c.RecordQueued("cart")
	c.RecordPass("cart", 2, 3, 5*time.Millisecond)
	c.SetObservers("cart", 5)
	c.RecordConfigError("cart", "S001")

	if got := metricCounterValue(t, c.mutations.WithLabelValues("cart", "set")); got != 2 {
		t.Errorf("mutations(set) = %v, want 2", got)
	}
	if got := metricCounterValue(t, c.mutations.WithLabelValues("cart", "dispatch")); got != 1 {
		t.Errorf("mutations(dispatch) = %v, want 1", got)
	}
	if got := metricCounterValue(t, c.queued.WithLabelValues("cart")); got != 1 {
		t.Errorf("queued = %v, want 1", got)
	}
	if got := metricCounterValue(t, c.notifications.WithLabelValues("cart")); got != 2 {
		t.Errorf("notifications = %v, want 2", got)
	}
	if got := metricCounterValue(t, c.skipped.WithLabelValues("cart")); got != 3 {
		t.Errorf("skipped = %v, want 3", got)
	}
	if got := metricGaugeValue(t, c.observers.WithLabelValues("cart")); got != 5 {
		t.Errorf("observers = %v, want 5", got)
	}
	if got := metricHistogramCount(t, c.passDuration.WithLabelValues("cart")); got != 1 {
		t.Errorf("pass duration samples = %v, want 1", got)
	}
	if got := metricCounterValue(t, c.configErrors.WithLabelValues("cart", "S001")); got != 1 {
		t.Errorf("config errors = %v, want 1", got)
	}
}

func TestCollectorNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg), WithNamespace("app"), WithSubsystem("state"))
	c.RecordMutation("s", "set")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "app_state_mutations_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected app_state_mutations_total to be registered")
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector

	// Should not panic
	c.RecordMutation("s", "set")
	c.RecordQueued("s")
	c.RecordPass("s", 1, 1, time.Millisecond)
	c.SetObservers("s", 1)
	c.RecordConfigError("s", "S001")
}
