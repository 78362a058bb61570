package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ADanMan/datarails-open/internal/model"
)

// ReadCSV parses a UTF-8 CSV stream with a header row into normalized facts.
func ReadCSV(r io.Reader) ([]model.Fact, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	facts, rowErrs, err := normalizeRegion(records[0], records[1:])
	if err != nil {
		return nil, err
	}
	if len(rowErrs) > 0 {
		return nil, &BatchError{Rows: rowErrs}
	}
	return facts, nil
}

// ReadFile parses a dataset file, dispatching on its extension.
// Sheet and table selectors only apply to workbooks.
func ReadFile(path string, sheets, tables []string) ([]model.Fact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadWorkbook(f, sheets, tables)
	default:
		return nil, fmt.Errorf("unsupported file type %q: only CSV and XLSX are supported", filepath.Ext(path))
	}
}
