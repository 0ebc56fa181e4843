package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.FrameFetched()
	m.FrameFetched()
	m.Accepted("apple")
	m.Accepted("apple")
	m.Accepted("orange")
	m.Dropped(DropBelowFloor)
	m.Dropped(DropUnmonitored)
	m.LogLineWritten()
	m.Fault("acquisition")
	m.SetRunning(true)
	m.ObserveCycle(40 * time.Millisecond)

	if got := testutil.ToFloat64(m.FramesFetched); got != 2 {
		t.Errorf("FramesFetched = %v, expected 2", got)
	}
	if got := testutil.ToFloat64(m.DetectionsAccepted.WithLabelValues("apple")); got != 2 {
		t.Errorf("apple accepted = %v, expected 2", got)
	}
	if got := testutil.ToFloat64(m.DetectionsDropped.WithLabelValues(DropUnmonitored)); got != 1 {
		t.Errorf("unmonitored dropped = %v, expected 1", got)
	}
	if got := testutil.ToFloat64(m.Faults.WithLabelValues("acquisition")); got != 1 {
		t.Errorf("acquisition faults = %v, expected 1", got)
	}
	if got := testutil.ToFloat64(m.Running); got != 1 {
		t.Errorf("Running = %v, expected 1", got)
	}

	m.SetRunning(false)
	if got := testutil.ToFloat64(m.Running); got != 0 {
		t.Errorf("Running = %v, expected 0", got)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	m.FrameFetched()
	m.Accepted("apple")
	m.Dropped(DropBelowFloor)
	m.LogLineWritten()
	m.Fault("model")
	m.ObserveCycle(time.Second)
	m.SetRunning(true)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Accepted("banana")

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `camwatch_detections_accepted_total{category="banana"} 1`) {
		t.Errorf("Metrics output missing banana counter:\n%s", body)
	}
}
