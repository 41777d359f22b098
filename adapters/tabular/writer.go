package tabular

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"jurisnet/domain/features"
	"jurisnet/domain/run"
	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/ports"

	"github.com/xuri/excelize/v2"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const sheetName = "features"

// Writer writes feature tables into a directory, one file per table. Columns are the
// entity, the year (entity-year tables only) and the sorted union of variable names;
// a variable a row lacks is left blank.
type Writer struct {
	dir    string
	format string
	logger *logging.Logger
}

var (
	_ ports.FeatureWriter  = (*Writer)(nil)
	_ ports.ManifestWriter = (*Writer)(nil)
)

// ManifestFile is the name of the run manifest inside the output directory.
const ManifestFile = "run_manifest.json"

// NewWriter returns a writer for format ("csv" or "xlsx").
func NewWriter(dir, format string, logger *logging.Logger) (*Writer, error) {
	if format != FormatCSV && format != FormatXLSX {
		return nil, errors.ConfigInvalid(fmt.Sprintf("unknown output format %q", format))
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Writer{dir: dir, format: format, logger: logger}, nil
}

// Path returns the file a table called name is written to.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+"."+w.format)
}

// WriteTable writes an entity-year table in insertion order.
func (w *Writer) WriteTable(ctx context.Context, name, entity string, table *features.Table) error {
	columns := table.Columns()
	header := append([]string{entity, "year"}, columns...)

	keys := table.Keys()
	rows := make([][]any, 0, len(keys))
	for _, k := range keys {
		row, _ := table.Get(k.Entity, k.Year)
		rows = append(rows, cells([]any{k.Entity, k.Year}, columns, row))
	}
	return w.write(ctx, name, header, rows)
}

// WriteNodeTable writes a per-entity table ordered by entity id.
func (w *Writer) WriteNodeTable(ctx context.Context, name, entity string, table *features.NodeTable) error {
	columns := table.Columns()
	header := append([]string{entity}, columns...)

	entities := table.Entities()
	rows := make([][]any, 0, len(entities))
	for _, id := range entities {
		row, _ := table.Get(id)
		rows = append(rows, cells([]any{id}, columns, row))
	}
	return w.write(ctx, name, header, rows)
}

func cells(prefix []any, columns []string, row features.Row) []any {
	out := append(make([]any, 0, len(prefix)+len(columns)), prefix...)
	for _, c := range columns {
		if v, ok := row[c]; ok {
			out = append(out, v.Interface())
		} else {
			out = append(out, nil)
		}
	}
	return out
}

// WriteManifest writes m as indented JSON, replacing the previous run's manifest.
func (w *Writer) WriteManifest(ctx context.Context, m *run.Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode run manifest")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.StorageError("failed to create "+w.dir, err)
	}
	path := filepath.Join(w.dir, ManifestFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.StorageError("failed to write "+path, err)
	}
	w.logger.Debug("wrote run manifest %s", path)
	return nil
}

func (w *Writer) write(ctx context.Context, name string, header []string, rows [][]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.StorageError("failed to create "+w.dir, err)
	}

	path := w.Path(name)
	var err error
	switch w.format {
	case FormatXLSX:
		err = writeXLSX(path, header, rows)
	default:
		err = writeCSV(path, header, rows)
	}
	if err != nil {
		return errors.StorageError("failed to write "+path, err)
	}
	w.logger.Info("wrote %s (%d rows, %d columns)", path, len(rows), len(header))
	return nil
}

func writeCSV(path string, header []string, rows [][]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatCell(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprint(cell)
}

func writeXLSX(path string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}
