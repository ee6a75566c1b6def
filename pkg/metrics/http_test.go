package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveRequestRecordsSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("/api/v1/cart", "POST", "201", 25*time.Millisecond)
	m.ObserveRequest("/api/v1/cart", "POST", "201", 30*time.Millisecond)
	m.ObserveRequest("", "GET", "200", time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	counter := findFamily(families, "http_requests_total")
	if counter == nil {
		t.Fatal("expected http_requests_total family")
	}

	var cartHits float64
	var unknownSeen bool
	for _, metric := range counter.GetMetric() {
		labels := labelMap(metric)
		if labels["route"] == "/api/v1/cart" {
			cartHits = metric.GetCounter().GetValue()
		}
		if labels["route"] == "unknown" {
			unknownSeen = true
		}
	}
	if cartHits != 2 {
		t.Fatalf("expected 2 cart requests, got %v", cartHits)
	}
	if !unknownSeen {
		t.Fatal("empty route should be normalized to unknown")
	}

	if findFamily(families, "http_request_duration_seconds") == nil {
		t.Fatal("expected duration family")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("/x", "GET", "200", time.Second)
	m.IncInFlight()
	m.DecInFlight()

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("/x", "GET", "200", time.Second)
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func labelMap(metric *dto.Metric) map[string]string {
	out := map[string]string{}
	for _, pair := range metric.GetLabel() {
		out[pair.GetName()] = pair.GetValue()
	}
	return out
}
