package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/meridian-logistics/meridian/internal/flow"
)

type memoryStore struct {
	byVendor map[flow.Vendor][]flow.Record
}

func (s *memoryStore) ReplaceVendor(ctx context.Context, vendor flow.Vendor, records []flow.Record) error {
	if s.byVendor == nil {
		s.byVendor = make(map[flow.Vendor][]flow.Record)
	}
	s.byVendor[vendor] = records
	return nil
}

func writeWorkbook(t *testing.T, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadWorkbook(t *testing.T) {
	path := writeWorkbook(t, "hitachi.xlsx", [][]any{
		{"Case No.", "Pkg", "DSV Indoor"},
		{"HE-1", "2", "2024-06-01"},
	})
	headers, rows, err := LoadWorkbook(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Case No.", "Pkg", "DSV Indoor"}, headers)
	require.Len(t, rows, 1)
	require.Equal(t, "HE-1", rows[0][0])
}

func TestIngestFilesEndToEnd(t *testing.T) {
	hitachi := writeWorkbook(t, "hitachi.xlsx", [][]any{
		{"Case No.", "Pkg", "Status_Location", "DSV Indoor"},
		{"HE-1", "3", "DSV Indoor", "2024-06-01"},
	})
	simense := writeWorkbook(t, "simense.xlsx", [][]any{
		{"Case No.", "Pkg", "Status_Location", "MIR"},
		{"SI-1", "1", "MIR", "2024-03-15"},
	})

	store := &memoryStore{}
	svc := NewService(flow.DefaultConfig(), store, slog.Default())
	result, err := svc.IngestFiles(context.Background(), []Source{
		{Vendor: flow.VendorHitachi, Path: hitachi},
		{Vendor: flow.VendorSimense, Path: simense},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.BatchID)
	require.Equal(t, 2, result.Records)

	he := store.byVendor[flow.VendorHitachi]
	require.Len(t, he, 1)
	require.Equal(t, flow.CodeWarehouseStocked, he[0].FlowCode)

	si := store.byVendor[flow.VendorSimense]
	require.Len(t, si, 1)
	require.Equal(t, flow.CodeSiteDirect, si[0].FlowCode)
}

func TestIngestFilesMissingWorkbook(t *testing.T) {
	svc := NewService(flow.DefaultConfig(), &memoryStore{}, slog.Default())
	_, err := svc.IngestFiles(context.Background(), []Source{
		{Vendor: flow.VendorHitachi, Path: "/nonexistent.xlsx"},
	})
	require.Error(t, err)
}
