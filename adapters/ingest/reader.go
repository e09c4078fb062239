// Package ingest is the tabular collaborator layer: it turns CSV/Excel files
// into aligned numeric columns for the estimation core, failing before the
// core ever sees ragged or non-numeric data.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"estiscan/domain/core"
	"estiscan/domain/estimate"
	"estiscan/internal/errors"
	"estiscan/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files into variables
type DataReader struct{}

// NewDataReader creates a new data reader
func NewDataReader() *DataReader {
	return &DataReader{}
}

// Read loads the file, coerces every fully-numeric column into a variable,
// and profiles each column. Columns with any non-numeric cell are dropped;
// blank cells are rejected because the core allows no missing values.
func (r *DataReader) Read(path string) (map[core.VariableKey]estimate.Variable, []ports.ColumnProfile, error) {
	rows, err := r.readRows(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, errors.IngestError(fmt.Sprintf("%s has no data rows", path))
	}

	header := rows[0]
	vars := make(map[core.VariableKey]estimate.Variable)
	profiles := make([]ports.ColumnProfile, 0, len(header))

	for c, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		values, ok := r.coerceColumn(rows[1:], c)
		if !ok {
			continue
		}

		key := core.VariableKey(name)
		vars[key] = estimate.NewVariable(key, values)
		profiles = append(profiles, profileColumn(key, values))
	}

	if len(vars) == 0 {
		return nil, nil, errors.IngestError(fmt.Sprintf("%s contains no numeric columns", path))
	}
	return vars, profiles, nil
}

// readRows loads raw string cells from a CSV or xlsx file
func (r *DataReader) readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open CSV file")
		}
		defer f.Close()

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse CSV file")
		}
		return rows, nil

	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open Excel file")
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.IngestError("Excel file has no sheets")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, errors.Wrap(err, "failed to read Excel sheet")
		}
		return rows, nil

	default:
		return nil, errors.IngestError(fmt.Sprintf("unsupported file type: %s", path))
	}
}

// coerceColumn parses column c of the data rows; ok is false when the column
// is not fully numeric.
func (r *DataReader) coerceColumn(rows [][]string, c int) ([]float64, bool) {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if c >= len(row) {
			return nil, false
		}
		cell := strings.TrimSpace(row[c])
		if cell == "" {
			return nil, false
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

var _ ports.DatasetReaderPort = (*DataReader)(nil)
