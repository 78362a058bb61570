package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestReadCSVNormalizesRows(t *testing.T) {
	csv := strings.Join([]string{
		"Period,Department,Account,Value,Currency,Metadata",
		"2024-01,Sales,Revenue,\"1,000.50\",EUR,q1 numbers",
		"2024-02,Ops,Cost,-200,,",
	}, "\n")

	facts, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}

	first := facts[0]
	if first.Period != "2024-01" || first.Department != "Sales" || first.Account != "Revenue" {
		t.Fatalf("first fact key = (%s, %s, %s)", first.Period, first.Department, first.Account)
	}
	if first.Value != 1000.50 {
		t.Fatalf("first fact value = %v, want 1000.50 (comma separator stripped)", first.Value)
	}
	if first.Currency != "EUR" {
		t.Fatalf("first fact currency = %q, want EUR", first.Currency)
	}
	if first.Metadata != "q1 numbers" {
		t.Fatalf("first fact metadata = %q", first.Metadata)
	}

	second := facts[1]
	if second.Value != -200 {
		t.Fatalf("second fact value = %v, want -200", second.Value)
	}
	if second.Currency != "USD" {
		t.Fatalf("missing currency should default to USD, got %q", second.Currency)
	}
	if second.Metadata != "" {
		t.Fatalf("missing metadata should default to empty, got %q", second.Metadata)
	}
}

func TestReadCSVHeaderCaseInsensitive(t *testing.T) {
	csv := "PERIOD,dePARTment,ACCOUNT,value\n2024-03,IT,Hardware,42\n"

	facts, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	if facts[0].Department != "IT" {
		t.Fatalf("department casing should be preserved, got %q", facts[0].Department)
	}
}

func TestReadCSVMissingColumnIsSchemaError(t *testing.T) {
	csv := "period,department,value\n2024-01,Sales,100\n"

	_, err := ReadCSV(strings.NewReader(csv))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != "account" {
		t.Fatalf("missing columns = %v, want [account]", schemaErr.Missing)
	}
}

func TestReadCSVBadRowsRejectWholeBatch(t *testing.T) {
	csv := strings.Join([]string{
		"period,department,account,value",
		"2024-01,Sales,Revenue,100",
		"January 2024,Sales,Revenue,100",
		"2024-02,Ops,Cost,not-a-number",
	}, "\n")

	_, err := ReadCSV(strings.NewReader(csv))
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("want BatchError, got %v", err)
	}
	if len(batchErr.Rows) != 2 {
		t.Fatalf("got %d row errors, want 2", len(batchErr.Rows))
	}
	if batchErr.Rows[0].Row != 2 {
		t.Fatalf("first row error at row %d, want 2", batchErr.Rows[0].Row)
	}
	if batchErr.Rows[1].Row != 3 {
		t.Fatalf("second row error at row %d, want 3", batchErr.Rows[1].Row)
	}
}

func TestReadCSVRejectsPeriodVariants(t *testing.T) {
	for _, period := range []string{"2024-13", "2024-00", "2024/01", "24-01", "2024-1", "2024-01-15"} {
		csv := "period,department,account,value\n" + period + ",Sales,Revenue,1\n"
		_, err := ReadCSV(strings.NewReader(csv))
		var batchErr *BatchError
		if !errors.As(err, &batchErr) {
			t.Fatalf("period %q: want BatchError, got %v", period, err)
		}
	}
}

func TestReadCSVSkipsBlankRows(t *testing.T) {
	csv := "period,department,account,value\n2024-01,Sales,Revenue,100\n,,,\n2024-02,Sales,Revenue,110\n"

	facts, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2 (blank row skipped)", len(facts))
	}
}

func TestReadCSVIgnoresExtraColumns(t *testing.T) {
	csv := "period,department,account,value,region\n2024-01,Sales,Revenue,100,EMEA\n"

	facts, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	facts, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty input should not error, got %v", err)
	}
	if len(facts) != 0 {
		t.Fatalf("got %d facts, want 0", len(facts))
	}
}

func TestFactsCarryNoScenario(t *testing.T) {
	csv := "period,department,account,value\n2024-01,Sales,Revenue,100\n"

	facts, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if facts[0].Scenario != "" || facts[0].Source != "" {
		t.Fatalf("normalizer must not attach scenario/source, got (%q, %q)",
			facts[0].Scenario, facts[0].Source)
	}
}
