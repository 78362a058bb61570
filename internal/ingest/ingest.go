// Package ingest parses raw tabular input (CSV or workbook regions) into
// validated facts. Loads are all-or-nothing: a file with any invalid row
// is rejected whole so partial imports never reach the warehouse.
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ADanMan/datarails-open/internal/model"
)

// Recognized columns, matched case-insensitively. The first four are
// required; currency and metadata are optional. Unrecognized columns
// are ignored.
var requiredColumns = []string{"period", "department", "account", "value"}

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// SchemaError reports required columns missing from a region's header.
// It is raised before any data row is read.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// RowError reports a single data row that failed validation.
type RowError struct {
	Row    int // 1-based data row index within its region
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// BatchError aggregates every row failure found in one load.
type BatchError struct {
	Rows []RowError
}

func (e *BatchError) Error() string {
	if len(e.Rows) == 1 {
		return fmt.Sprintf("batch rejected: %s", e.Rows[0].Error())
	}
	return fmt.Sprintf("batch rejected: %d invalid rows (first: %s)",
		len(e.Rows), e.Rows[0].Error())
}

// header maps recognized column names to their cell positions.
type header map[string]int

func parseHeader(cells []string) (header, error) {
	h := make(header)
	for i, cell := range cells {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch name {
		case "period", "department", "account", "value", "currency", "metadata":
			if _, seen := h[name]; !seen {
				h[name] = i
			}
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return h, nil
}

func (h header) cell(cells []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// normalizeRow converts one raw data row into a Fact. Scenario and source
// are left empty; the load operation attaches them.
func (h header) normalizeRow(cells []string, row int) (model.Fact, *RowError) {
	period := strings.TrimSpace(h.cell(cells, "period"))
	if !periodPattern.MatchString(period) {
		return model.Fact{}, &RowError{Row: row, Reason: fmt.Sprintf("period %q is not in YYYY-MM form", period)}
	}

	department := strings.TrimSpace(h.cell(cells, "department"))
	if department == "" {
		return model.Fact{}, &RowError{Row: row, Reason: "department is empty"}
	}

	account := strings.TrimSpace(h.cell(cells, "account"))
	if account == "" {
		return model.Fact{}, &RowError{Row: row, Reason: "account is empty"}
	}

	// Spreadsheet exports often carry thousands separators.
	raw := strings.TrimSpace(strings.ReplaceAll(h.cell(cells, "value"), ",", ""))
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.Fact{}, &RowError{Row: row, Reason: fmt.Sprintf("value %q is not numeric", raw)}
	}

	currency := strings.TrimSpace(h.cell(cells, "currency"))
	if currency == "" {
		currency = "USD"
	}

	return model.Fact{
		Period:     period,
		Department: department,
		Account:    account,
		Value:      value,
		Currency:   currency,
		Metadata:   strings.TrimSpace(h.cell(cells, "metadata")),
	}, nil
}

// normalizeRegion validates a region's header, then converts every
// non-blank data row, collecting row failures for batch rejection.
func normalizeRegion(headerCells []string, dataRows [][]string) ([]model.Fact, []RowError, error) {
	h, err := parseHeader(headerCells)
	if err != nil {
		return nil, nil, err
	}

	var (
		facts   []model.Fact
		rowErrs []RowError
		row     int
	)
	for _, cells := range dataRows {
		if isBlank(cells) {
			continue
		}
		row++
		fact, rerr := h.normalizeRow(cells, row)
		if rerr != nil {
			rowErrs = append(rowErrs, *rerr)
			continue
		}
		facts = append(facts, fact)
	}
	return facts, rowErrs, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
