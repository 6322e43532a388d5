package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%v): %v", labels, err)
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func newGroupCache(t *testing.T, group string, size int, onEvict EvictCallback) Cache {
	t.Helper()
	c, err := New("memory", ProviderConfig{Size: size, TTL: time.Hour, Group: group, OnEvict: onEvict})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestInstrumentedCache_CountsRequests(t *testing.T) {
	c := newGroupCache(t, "videos-requests", 10, nil)

	hits := counterValue(t, RequestsTotal, "videos-requests", "hit")
	misses := counterValue(t, RequestsTotal, "videos-requests", "miss")

	c.Set("dQw4w9WgXcQ", []byte(`{"id":"dQw4w9WgXcQ"}`))
	_, _ = c.Get("dQw4w9WgXcQ")
	_, _ = c.Get("dQw4w9WgXcQ")
	_, _ = c.Get("absent")

	if got := counterValue(t, RequestsTotal, "videos-requests", "hit") - hits; got != 2 {
		t.Errorf("Expected 2 hits, got %.0f", got)
	}
	if got := counterValue(t, RequestsTotal, "videos-requests", "miss") - misses; got != 1 {
		t.Errorf("Expected 1 miss, got %.0f", got)
	}
}

func TestInstrumentedCache_CountsEvictions(t *testing.T) {
	var evicted []string
	c := newGroupCache(t, "caption_lists-evictions", 2, func(key string, _ []byte) {
		evicted = append(evicted, key)
	})
	before := counterValue(t, EvictionsTotal, "caption_lists-evictions")

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3"))

	if got := counterValue(t, EvictionsTotal, "caption_lists-evictions") - before; got != 1 {
		t.Errorf("Expected 1 eviction, got %.0f", got)
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected caller callback for 'a', got %v", evicted)
	}
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, group string) (float64, bool) {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "metadata_cache_entries" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "group" && lp.GetValue() == group {
					return m.GetGauge().GetValue(), true
				}
			}
		}
	}
	return 0, false
}

func TestInstrumentedCache_EntriesGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	orig := gaugeReg
	gaugeReg = reg
	t.Cleanup(func() { gaugeReg = orig })

	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour, Group: "videos-entries"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if v, ok := gaugeValue(t, reg, "videos-entries"); !ok || v != 0 {
		t.Fatalf("Expected gauge at 0, got %.0f (registered %v)", v, ok)
	}
	c.Set("x", []byte("1"))
	c.Set("y", []byte("2"))
	if v, _ := gaugeValue(t, reg, "videos-entries"); v != 2 {
		t.Errorf("Expected gauge at 2, got %.0f", v)
	}

	_ = c.Close()
	if _, ok := gaugeValue(t, reg, "videos-entries"); ok {
		t.Error("Expected gauge to be unregistered after Close")
	}
}

func TestInstrumentedCache_SameGroupTakesOverGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	orig := gaugeReg
	gaugeReg = reg
	t.Cleanup(func() { gaugeReg = orig })

	first := newGroupCache(t, "videos-takeover", 10, nil)
	first.Set("old", []byte("1"))
	second := newGroupCache(t, "videos-takeover", 10, nil)
	second.Set("a", []byte("1"))
	second.Set("b", []byte("2"))

	if v, _ := gaugeValue(t, reg, "videos-takeover"); v != 2 {
		t.Errorf("Expected the newest cache to report 2 entries, got %.0f", v)
	}
}
