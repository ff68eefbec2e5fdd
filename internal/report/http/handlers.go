package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/meridian-logistics/meridian/internal/platform/httpx"
	"github.com/meridian-logistics/meridian/internal/report"
	"github.com/meridian-logistics/meridian/internal/report/export"
	"github.com/meridian-logistics/meridian/internal/shared"
)

// Service exposes the report reads the handlers need.
type Service interface {
	WarehouseTable(ctx context.Context, from, to shared.Month) (report.WarehouseTable, error)
	SiteTable(ctx context.Context, from, to shared.Month) (report.SiteTable, error)
	Latest(ctx context.Context) (report.Snapshot, error)
}

// Refresher enqueues a background report refresh.
type Refresher interface {
	EnqueueRefresh(ctx context.Context) (string, error)
}

// Handler serves the monthly report API.
type Handler struct {
	logger    *slog.Logger
	service   Service
	refresher Refresher
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service Service, refresher Refresher) *Handler {
	return &Handler{logger: logger, service: service, refresher: refresher}
}

// Warehouse serves the Month × Warehouse table as JSON or CSV.
func (h *Handler) Warehouse(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.monthRange(w, r)
	if !ok {
		return
	}
	table, err := h.service.WarehouseTable(r.Context(), from, to)
	if err != nil {
		h.fail(w, "load warehouse table", err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="warehouse_monthly.csv"`)
		if err := export.WriteWarehouseCSV(w, table); err != nil {
			h.logger.Error("write warehouse csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, table)
}

// Site serves the Month × Site table as JSON or CSV.
func (h *Handler) Site(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.monthRange(w, r)
	if !ok {
		return
	}
	table, err := h.service.SiteTable(r.Context(), from, to)
	if err != nil {
		h.fail(w, "load site table", err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="site_monthly.csv"`)
		if err := export.WriteSiteCSV(w, table); err != nil {
			h.logger.Error("write site csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, table)
}

// Latest serves the last persisted snapshot.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Latest(r.Context())
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "No snapshot", "no report refresh has completed yet")
		return
	}
	if err != nil {
		h.fail(w, "load snapshot", err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

// Refresh enqueues a background recomputation.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, err := h.refresher.EnqueueRefresh(r.Context())
	if err != nil {
		h.fail(w, "enqueue refresh", err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"batch_id": id})
}

func (h *Handler) monthRange(w http.ResponseWriter, r *http.Request) (shared.Month, shared.Month, bool) {
	var from, to shared.Month
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		parsed, err := shared.ParseMonth(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid month", "from must be YYYY-MM")
			return from, to, false
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := shared.ParseMonth(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid month", "to must be YYYY-MM")
			return from, to, false
		}
		to = parsed
	}
	if from.IsZero() != to.IsZero() {
		httpx.Problem(w, http.StatusBadRequest, "Invalid range", "from and to must be provided together")
		return from, to, false
	}
	if !from.IsZero() && to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid range", "to precedes from")
		return from, to, false
	}
	return from, to, true
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action, slog.Any("error", err))
	if errors.Is(err, report.ErrEmptyRecordSet) || errors.Is(err, report.ErrNoMonths) {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Report unavailable", err.Error())
		return
	}
	httpx.Problem(w, http.StatusInternalServerError, "Internal error", "report computation failed")
}
