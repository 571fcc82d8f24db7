package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	workflowStartedTotal   atomic.Uint64
	workflowCompletedTotal atomic.Uint64
	workflowFailed         = newLabeledCounter()
	wipeRunsTotal          atomic.Uint64
	wipeDeleteFailures     atomic.Uint64
	rateLimited            = newLabeledCounter()

	workflowDuration = newHistogram([]float64{250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000})
)

// IncWorkflowStarted counts an upload workflow run.
func IncWorkflowStarted() {
	workflowStartedTotal.Add(1)
}

// IncWorkflowCompleted counts a workflow that reached Done.
func IncWorkflowCompleted() {
	workflowCompletedTotal.Add(1)
}

// IncWorkflowFailed counts a workflow that failed in the given state.
func IncWorkflowFailed(state string) {
	workflowFailed.Inc(state)
}

// ObserveWorkflowDurationMs records a workflow duration in milliseconds.
func ObserveWorkflowDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	workflowDuration.Observe(value)
}

// IncWipeRun counts a completed wipe.
func IncWipeRun() {
	wipeRunsTotal.Add(1)
}

// AddWipeDeleteFailures counts files a wipe could not delete.
func AddWipeDeleteFailures(n int) {
	if n > 0 {
		wipeDeleteFailures.Add(uint64(n))
	}
}

// IncRateLimited counts a request rejected by the limiter for group.
func IncRateLimited(group string) {
	rateLimited.Inc(group)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_workflow_started_total", "Upload workflows started", workflowStartedTotal.Load())
	writeCounter(&buf, "resume_workflow_completed_total", "Upload workflows completed", workflowCompletedTotal.Load())
	writeLabeledCounter(&buf, "resume_workflow_failed_total", "Upload workflows failed by state", "state", workflowFailed.Snapshot())
	writeHistogram(&buf, "resume_workflow_duration_ms", "Upload workflow duration in milliseconds", workflowDuration.Snapshot())
	writeCounter(&buf, "wipe_runs_total", "Data wipes executed", wipeRunsTotal.Load())
	writeCounter(&buf, "wipe_file_delete_failures_total", "Files a wipe failed to delete", wipeDeleteFailures.Load())
	writeLabeledCounter(&buf, "http_rate_limited_total", "Requests rejected by the rate limiter", "group", rateLimited.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[label]++
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound contains it; counts
// are made cumulative at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
