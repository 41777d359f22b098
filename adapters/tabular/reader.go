// Package tabular reads the structured source tables and writes feature tables, as
// CSV or as Excel workbooks.
package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/ports"

	"github.com/xuri/excelize/v2"
)

// Data is a parsed table: trimmed headers plus one record per data row.
type Data struct {
	Headers []string
	Rows    []ports.Record
}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *logging.Logger
}

// NewDataReader picks the format from the file extension; anything but .csv is read
// as a workbook.
func NewDataReader(filePath string, logger *logging.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = logging.Default
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*Data, error) {
	r.logger.Debug("reading %s file %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the first sheet of a workbook
func (r *DataReader) readExcelData() (*Data, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.StorageError("failed to open Excel file", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput(r.filePath + " has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.StorageError("failed to read "+sheets[0], err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*Data, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.StorageError("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read CSV file %s: %v", r.filePath, err))
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows converts raw string rows into records keyed by header
func (r *DataReader) processRows(rows [][]string) (*Data, error) {
	if len(rows) == 0 {
		return nil, errors.InvalidInput(r.filePath + " has no header row")
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]ports.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rowData := make(ports.Record, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &Data{Headers: headers, Rows: dataRows}, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Source implements ports.TableSource over DataReader.
type Source struct {
	logger *logging.Logger
}

var _ ports.TableSource = (*Source)(nil)

// NewSource returns a table source that logs through logger.
func NewSource(logger *logging.Logger) *Source {
	return &Source{logger: logger}
}

// ReadRecords reads every data row of the table at path.
func (s *Source) ReadRecords(ctx context.Context, path string) ([]ports.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := NewDataReader(path, s.logger).ReadData()
	if err != nil {
		return nil, err
	}
	return data.Rows, nil
}
