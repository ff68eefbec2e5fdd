package ingest

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-logistics/meridian/internal/flow"
)

// Source names one vendor workbook on disk.
type Source struct {
	Vendor flow.Vendor
	Path   string
}

// Sheet is the raw content of one loaded workbook.
type Sheet struct {
	Vendor  flow.Vendor
	Headers []string
	Rows    [][]string
}

// LoadWorkbook reads the first sheet of an XLSX file. The first row is taken
// as the header row.
func LoadWorkbook(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("ingest: workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("ingest: workbook %s sheet %s is empty", path, sheets[0])
	}
	return rows[0], rows[1:], nil
}

// LoadSources reads all vendor workbooks concurrently. Results keep the order
// of sources.
func LoadSources(ctx context.Context, sources []Source) ([]Sheet, error) {
	sheets := make([]Sheet, len(sources))
	g, _ := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			headers, rows, err := LoadWorkbook(src.Path)
			if err != nil {
				return err
			}
			sheets[i] = Sheet{Vendor: src.Vendor, Headers: headers, Rows: rows}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}
