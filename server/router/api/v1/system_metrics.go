package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oratio/oratio/server/internal/observability"
)

// MetricsOverviewResponse is the scheduling metrics overview.
type MetricsOverviewResponse struct {
	TotalRequests int64                        `json:"total_requests"`
	SuccessRate   float64                      `json:"success_rate"`
	P50LatencyMs  int64                        `json:"p50_latency_ms"`
	P95LatencyMs  int64                        `json:"p95_latency_ms"`
	ErrorCount    int64                        `json:"error_count"`
	Operations    map[string]OperationsMetrics `json:"operations"`
}

// OperationsMetrics is the per-operation slice of the overview.
type OperationsMetrics struct {
	Executions     int64 `json:"executions"`
	Errors         int64 `json:"errors"`
	AvgLatencyMs   int64 `json:"avg_latency_ms"`
	RecordsWritten int64 `json:"records_written"`
}

// GetMetricsOverview returns counters and latency percentiles for the
// scheduling operations since process start.
// GET /api/v1/system/metrics/overview
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snapshot := observability.GlobalMetrics().Snapshot()

	ops := make(map[string]OperationsMetrics, len(snapshot.Ops))
	for op, om := range snapshot.Ops {
		ops[op] = OperationsMetrics{
			Executions:     om.ExecutionCount,
			Errors:         om.ErrorCount,
			AvgLatencyMs:   om.AverageDuration,
			RecordsWritten: om.RecordsWritten,
		}
	}

	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalRequests: snapshot.RequestTotal,
		SuccessRate:   snapshot.SuccessRate(),
		P50LatencyMs:  snapshot.P50LatencyMs,
		P95LatencyMs:  snapshot.P95LatencyMs,
		ErrorCount:    snapshot.RequestFailed,
		Operations:    ops,
	})
}
