package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getHistogramCount(h prometheus.Histogram) uint64 {
	var m dto.Metric
	if err := h.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetrics_CaptionExportsTotal(t *testing.T) {
	tests := []struct {
		format string
		status string
	}{
		{"srt", "success"},
		{"vtt", "error"},
		{"txt", "success"},
	}

	for _, tt := range tests {
		t.Run(tt.format+"_"+tt.status, func(t *testing.T) {
			before := getCounterVecValue(CaptionExportsTotal, tt.format, tt.status)
			CaptionExportsTotal.WithLabelValues(tt.format, tt.status).Inc()
			after := getCounterVecValue(CaptionExportsTotal, tt.format, tt.status)

			if after != before+1 {
				t.Errorf("Expected counter to increment by 1, got diff %.0f", after-before)
			}
		})
	}
}

func TestMetrics_TimedTextSkippedEntriesTotal(t *testing.T) {
	before := getCounterValue(TimedTextSkippedEntriesTotal)
	TimedTextSkippedEntriesTotal.Add(3)
	after := getCounterValue(TimedTextSkippedEntriesTotal)

	if after != before+3 {
		t.Errorf("Expected skipped entries to increase by 3, got diff %.0f", after-before)
	}
}

func TestMetrics_BatchItemsTotal(t *testing.T) {
	before := getCounterVecValue(BatchItemsTotal, "Error")
	BatchItemsTotal.WithLabelValues("Error").Inc()
	after := getCounterVecValue(BatchItemsTotal, "Error")

	if after != before+1 {
		t.Errorf("Expected error items to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_BatchDurationSeconds(t *testing.T) {
	before := getHistogramCount(BatchDurationSeconds)
	BatchDurationSeconds.Observe(1.5)
	after := getHistogramCount(BatchDurationSeconds)

	if after != before+1 {
		t.Errorf("Expected one more observation, got diff %d", after-before)
	}
}

func TestMetrics_NewHTTPServer(t *testing.T) {
	tests := []struct {
		name    string
		address string
		port    int
		want    string
	}{
		{name: "configured port", address: "localhost", port: 9191, want: "localhost:9191"},
		{name: "default port", address: "0.0.0.0", port: 0, want: "0.0.0.0:9090"},
		{name: "ipv6 address", address: "::1", port: 9090, want: "[::1]:9090"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewHTTPServer(tt.address, tt.port)
			if srv.Addr != tt.want {
				t.Errorf("Expected address %q, got %q", tt.want, srv.Addr)
			}
			if srv.ReadHeaderTimeout == 0 {
				t.Error("Expected a read header timeout")
			}
		})
	}
}

func TestMetrics_NewHTTPServer_Routes(t *testing.T) {
	CaptionExportsTotal.WithLabelValues("srt", "success").Inc()
	handler := NewHTTPServer("localhost", 0).Handler

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "caption_exports_total") {
		t.Error("Expected caption_exports_total in the exposition")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 from /healthz, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST /metrics, got %d", rec.Code)
	}
}
