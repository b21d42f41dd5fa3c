// Package monitoring records per-verb timings for pipeline runs.
package monitoring

import (
	"sync"
	"time"
)

// OperationMetrics represents performance metrics for a single verb application.
type OperationMetrics struct {
	Operation  string        `json:"operation"`
	Step       int           `json:"step"`
	Duration   time.Duration `json:"duration"`
	RowsIn     int           `json:"rows_in"`
	RowsOut    int           `json:"rows_out"`
	ColumnsOut int           `json:"columns_out"`
	Failed     bool          `json:"failed"`
}

// Result describes the table produced by a recorded operation.
type Result struct {
	Rows    int
	Columns int
}

// MetricsCollector collects and stores performance metrics for verb applications.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []OperationMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]OperationMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// RecordOperation executes fn and, when enabled, records its duration and
// the shape of the table it produced. Failures are recorded too.
func (mc *MetricsCollector) RecordOperation(operation string, step, rowsIn int, fn func() (Result, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	start := time.Now()
	res, err := fn()

	m := OperationMetrics{
		Operation:  operation,
		Step:       step,
		Duration:   time.Since(start),
		RowsIn:     rowsIn,
		RowsOut:    res.Rows,
		ColumnsOut: res.Columns,
		Failed:     err != nil,
	}

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, m)
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []OperationMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]OperationMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	var totalDuration time.Duration
	failures := 0
	operationCounts := make(map[string]int)

	for _, metric := range mc.metrics {
		totalDuration += metric.Duration
		operationCounts[metric.Operation]++
		if metric.Failed {
			failures++
		}
	}

	return MetricsSummary{
		TotalOperations: len(mc.metrics),
		TotalDuration:   totalDuration,
		Failures:        failures,
		OperationCounts: operationCounts,
		AverageDuration: totalDuration / time.Duration(len(mc.metrics)),
	}
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalOperations int            `json:"total_operations"`
	TotalDuration   time.Duration  `json:"total_duration"`
	Failures        int            `json:"failures"`
	OperationCounts map[string]int `json:"operation_counts"`
	AverageDuration time.Duration  `json:"average_duration"`
}

var (
	globalCollector = NewMetricsCollector(false)
)

// Global returns the process-wide collector used by pipelines.
func Global() *MetricsCollector {
	return globalCollector
}
