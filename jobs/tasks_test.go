package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-logistics/meridian/internal/flow"
	"github.com/meridian-logistics/meridian/internal/observability"
	"github.com/meridian-logistics/meridian/internal/report"
)

type staticSource struct {
	records []flow.Record
}

func (s *staticSource) ListAnnotated(context.Context) ([]flow.Record, error) {
	return s.records, nil
}

type snapshotRepo struct {
	saved []report.Snapshot
}

func (r *snapshotRepo) SaveSnapshot(_ context.Context, snap report.Snapshot) (int64, error) {
	r.saved = append(r.saved, snap)
	return int64(len(r.saved)), nil
}

func (r *snapshotRepo) LatestSnapshot(context.Context) (report.Snapshot, error) {
	if len(r.saved) == 0 {
		return report.Snapshot{}, nil
	}
	return r.saved[len(r.saved)-1], nil
}

func newReportService(t *testing.T, repo *snapshotRepo) *report.Service {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	in := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records, _, _ := flow.Annotate([]flow.Record{{
		CaseNo:                "HE-1",
		Vendor:                flow.VendorHitachi,
		PackageQuantity:       2,
		CurrentStatusLocation: "DSV Indoor",
		WarehouseDates:        map[string]time.Time{"DSV Indoor": in},
	}}, flow.DefaultConfig(), slog.Default())

	return report.NewService(
		&staticSource{records: records},
		repo,
		report.NewCache(client, time.Minute),
		flow.DefaultConfig(),
		report.Options{},
		slog.Default(),
	)
}

func TestReportRefreshHandler(t *testing.T) {
	repo := &snapshotRepo{}
	svc := newReportService(t, repo)
	metrics := observability.NewMetrics()

	handler := ReportRefreshHandler(svc, metrics, slog.Default())

	task, err := NewReportRefreshTask(ReportRefreshPayload{BatchID: "batch-1"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	require.Len(t, repo.saved, 1)
	require.Equal(t, "batch-1", repo.saved[0].BatchID)
	require.Equal(t, 1, repo.saved[0].RecordsIn)
}

func TestReportRefreshHandlerMintsBatchID(t *testing.T) {
	repo := &snapshotRepo{}
	svc := newReportService(t, repo)

	handler := ReportRefreshHandler(svc, observability.NewMetrics(), slog.Default())
	task, err := NewReportRefreshTask(ReportRefreshPayload{})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	require.Len(t, repo.saved, 1)
	require.NotEmpty(t, repo.saved[0].BatchID)
}
