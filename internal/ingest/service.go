package ingest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meridian-logistics/meridian/internal/flow"
)

// RecordStore persists annotated records for a vendor.
type RecordStore interface {
	ReplaceVendor(ctx context.Context, vendor flow.Vendor, records []flow.Record) error
}

// BatchResult summarises one ingest run.
type BatchResult struct {
	BatchID  string
	Records  int
	Issues   int
	ByVendor map[flow.Vendor]int
	Stats    flow.Stats
}

// Service runs the ingest pipeline: load workbooks, parse rows, annotate,
// persist.
type Service struct {
	parser *Parser
	cfg    flow.Config
	store  RecordStore
	logger *slog.Logger
}

// NewService builds Service.
func NewService(cfg flow.Config, store RecordStore, logger *slog.Logger) *Service {
	return &Service{parser: NewParser(cfg), cfg: cfg, store: store, logger: logger}
}

// IngestFiles loads and persists every source. Per-row problems degrade to
// logged issues; only structural failures (unreadable workbook, storage
// errors) abort the run.
func (s *Service) IngestFiles(ctx context.Context, sources []Source) (BatchResult, error) {
	sheets, err := LoadSources(ctx, sources)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{BatchID: uuid.NewString(), ByVendor: make(map[flow.Vendor]int)}
	for _, sheet := range sheets {
		records, rowIssues := s.parser.ParseRows(sheet.Vendor, sheet.Headers, sheet.Rows)
		for _, issue := range rowIssues {
			s.logger.Warn("ingest row degraded",
				slog.String("vendor", string(sheet.Vendor)),
				slog.Int("row", issue.Row),
				slog.String("case", issue.CaseNo),
				slog.String("column", issue.Column),
				slog.String("detail", issue.Detail))
		}

		annotated, stats, flowIssues := flow.Annotate(records, s.cfg, s.logger)
		if err := s.store.ReplaceVendor(ctx, sheet.Vendor, annotated); err != nil {
			return BatchResult{}, err
		}

		result.Records += stats.Total
		result.ByVendor[sheet.Vendor] += stats.Total
		result.Issues += len(rowIssues) + len(flowIssues)
		result.Stats.Total += stats.Total
		result.Stats.Unknown += stats.Unknown
		if result.Stats.ByCode == nil {
			result.Stats.ByCode = make(map[flow.FlowCode]int)
		}
		for code, n := range stats.ByCode {
			result.Stats.ByCode[code] += n
		}
	}

	s.logger.Info("ingest batch complete",
		slog.String("batch", result.BatchID),
		slog.Int("records", result.Records),
		slog.Int("issues", result.Issues))
	return result, nil
}
