package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/meridian-logistics/meridian/internal/flow"
	"github.com/meridian-logistics/meridian/internal/ingest"
	"github.com/meridian-logistics/meridian/internal/observability"
	"github.com/meridian-logistics/meridian/internal/report"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeIngestFiles loads vendor workbooks and replaces their records.
	TaskTypeIngestFiles = "ingest:files"
	// TaskTypeReportRefresh recomputes the monthly report tables.
	TaskTypeReportRefresh = "report:refresh"
)

// IngestFilesPayload names the workbooks to load.
type IngestFilesPayload struct {
	Sources []IngestSource `json:"sources"`
}

// IngestSource is one vendor workbook.
type IngestSource struct {
	Vendor string `json:"vendor"`
	Path   string `json:"path"`
}

// ReportRefreshPayload carries the batch identity of a refresh run.
type ReportRefreshPayload struct {
	BatchID string `json:"batch_id"`
}

// NewIngestFilesTask constructs an Asynq task.
func NewIngestFilesTask(payload IngestFilesPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeIngestFiles, data), nil
}

// NewReportRefreshTask constructs an Asynq task.
func NewReportRefreshTask(payload ReportRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReportRefresh, data), nil
}

// IngestFilesHandler returns the handler processing TaskTypeIngestFiles.
// After a successful ingest it chains a report refresh so the tables follow
// the new data.
func IngestFilesHandler(svc *ingest.Service, client *Client, metrics *observability.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IngestFilesPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		sources := make([]ingest.Source, 0, len(payload.Sources))
		for _, src := range payload.Sources {
			sources = append(sources, ingest.Source{Vendor: flow.Vendor(src.Vendor), Path: src.Path})
		}
		result, err := svc.IngestFiles(ctx, sources)
		if err != nil {
			logger.Error("ingest job failed", slog.Any("error", err))
			return err
		}
		for code, n := range result.Stats.ByCode {
			metrics.ObserveFlowCode(strconv.Itoa(int(code)), n)
		}
		for vendor, n := range result.ByVendor {
			metrics.ObserveIngest(string(vendor), n)
		}
		if client != nil {
			if _, err := client.EnqueueReportRefresh(ctx, result.BatchID); err != nil {
				logger.Warn("chain report refresh", slog.Any("error", err), slog.String("batch", result.BatchID))
			}
		}
		return nil
	}
}

// ReportRefreshHandler returns the handler processing TaskTypeReportRefresh.
func ReportRefreshHandler(svc *report.Service, metrics *observability.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReportRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.BatchID == "" {
			payload.BatchID = uuid.NewString()
		}
		snapshot, err := svc.Refresh(ctx, payload.BatchID)
		if err != nil {
			logger.Error("report refresh failed", slog.Any("error", err), slog.String("batch", payload.BatchID))
			return err
		}
		metrics.ObserveReportRefresh()
		logger.Info("report refresh complete",
			slog.String("batch", snapshot.BatchID),
			slog.Int("records", snapshot.RecordsIn),
			slog.Int("unknown", snapshot.UnknownIn))
		return nil
	}
}
