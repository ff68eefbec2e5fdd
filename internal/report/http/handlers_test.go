package http

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-logistics/meridian/internal/report"
	"github.com/meridian-logistics/meridian/internal/shared"
)

type stubService struct {
	warehouse report.WarehouseTable
	site      report.SiteTable
	snap      report.Snapshot
	err       error
}

func (s *stubService) WarehouseTable(ctx context.Context, from, to shared.Month) (report.WarehouseTable, error) {
	return s.warehouse, s.err
}

func (s *stubService) SiteTable(ctx context.Context, from, to shared.Month) (report.SiteTable, error) {
	return s.site, s.err
}

func (s *stubService) Latest(ctx context.Context) (report.Snapshot, error) {
	return s.snap, s.err
}

type stubRefresher struct {
	id string
}

func (s *stubRefresher) EnqueueRefresh(ctx context.Context) (string, error) {
	return s.id, nil
}

func newTestHandler(svc Service) *Handler {
	return NewHandler(slog.Default(), svc, &stubRefresher{id: "batch-9"})
}

func mount(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/reports", h.MountRoutes)
	return r
}

func sampleWarehouseTable() report.WarehouseTable {
	return report.WarehouseTable{
		Months: []string{"2024-06"},
		Rows: []report.WarehouseRow{{
			Warehouse: "DSV Indoor", Month: "2024-06",
			Inbound: 3, EndingStock: 3,
			OccupiedSqm: decimal.New(25, -2),
		}},
	}
}

func TestWarehouseJSON(t *testing.T) {
	h := newTestHandler(&stubService{warehouse: sampleWarehouseTable()})
	rec := httptest.NewRecorder()
	mount(h).ServeHTTP(rec, httptest.NewRequest("GET", "/reports/warehouse?from=2024-06&to=2024-06", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	require.Contains(t, rec.Body.String(), `"DSV Indoor"`)
}

func TestWarehouseCSV(t *testing.T) {
	h := newTestHandler(&stubService{warehouse: sampleWarehouseTable()})
	rec := httptest.NewRecorder()
	mount(h).ServeHTTP(rec, httptest.NewRequest("GET", "/reports/warehouse?format=csv", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Body.String(), "DSV Indoor,2024-06")
}

func TestWarehouseRejectsBadMonth(t *testing.T) {
	h := newTestHandler(&stubService{})
	rec := httptest.NewRecorder()
	mount(h).ServeHTTP(rec, httptest.NewRequest("GET", "/reports/warehouse?from=junk&to=2024-06", nil))
	require.Equal(t, 400, rec.Code)
}

func TestWarehouseRejectsHalfRange(t *testing.T) {
	h := newTestHandler(&stubService{})
	rec := httptest.NewRecorder()
	mount(h).ServeHTTP(rec, httptest.NewRequest("GET", "/reports/warehouse?from=2024-06", nil))
	require.Equal(t, 400, rec.Code)
}

func TestLatestNotFound(t *testing.T) {
	h := newTestHandler(&stubService{err: shared.ErrNotFound})
	rec := httptest.NewRecorder()
	mount(h).ServeHTTP(rec, httptest.NewRequest("GET", "/reports/latest", nil))
	require.Equal(t, 404, rec.Code)
}

func TestRefreshAccepted(t *testing.T) {
	h := newTestHandler(&stubService{})
	rec := httptest.NewRecorder()
	mount(h).ServeHTTP(rec, httptest.NewRequest("POST", "/reports/refresh", nil))
	require.Equal(t, 202, rec.Code)
	require.Contains(t, rec.Body.String(), "batch-9")
}

func TestEmptyRecordSetMapsTo422(t *testing.T) {
	h := newTestHandler(&stubService{err: report.ErrEmptyRecordSet})
	rec := httptest.NewRecorder()
	mount(h).ServeHTTP(rec, httptest.NewRequest("GET", "/reports/site?from=2024-01&to=2024-02", nil))
	require.Equal(t, 422, rec.Code)
}
