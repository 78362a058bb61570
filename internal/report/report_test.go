package report

import (
	"math"
	"testing"

	"github.com/ADanMan/datarails-open/internal/model"
)

func fact(scenario, period, dept, account string, value float64) model.Fact {
	return model.Fact{
		Scenario:   scenario,
		Period:     period,
		Department: dept,
		Account:    account,
		Value:      value,
	}
}

func TestSummarizeGroupsAndSums(t *testing.T) {
	facts := []model.Fact{
		fact("actual", "2024-01", "Sales", "Revenue", 1000),
		fact("actual", "2024-01", "Sales", "Returns", -50),
		fact("actual", "2024-01", "Ops", "Cost", -200),
		fact("actual", "2024-02", "Sales", "Revenue", 1100),
	}

	rows := Summarize(facts)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	want := []model.ReportRow{
		{Period: "2024-01", Department: "Ops", Total: -200},
		{Period: "2024-01", Department: "Sales", Total: 950},
		{Period: "2024-02", Department: "Sales", Total: 1100},
	}
	for i, w := range want {
		if rows[i] != w {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], w)
		}
	}
}

func TestSummarizeDepartmentCaseInsensitive(t *testing.T) {
	facts := []model.Fact{
		fact("actual", "2024-01", "Sales", "Revenue", 100),
		fact("actual", "2024-01", "SALES", "Revenue", 200),
		fact("actual", "2024-01", "sales", "Returns", -10),
	}

	rows := Summarize(facts)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (casing variants merged)", len(rows))
	}
	if rows[0].Department != "Sales" {
		t.Fatalf("label = %q, want first-seen casing Sales", rows[0].Department)
	}
	if rows[0].Total != 290 {
		t.Fatalf("total = %v, want 290", rows[0].Total)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if rows := Summarize(nil); len(rows) != 0 {
		t.Fatalf("got %d rows for empty input", len(rows))
	}
}

func TestVarianceJoinsBothSides(t *testing.T) {
	facts := []model.Fact{
		fact("actual", "2024-01", "Sales", "Revenue", 1000),
		fact("actual", "2024-01", "Ops", "Cost", -200),
		fact("budget", "2024-01", "Sales", "Revenue", 900),
	}

	rows := Variance(facts, "actual", "budget")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	ops := rows[0]
	if ops.Department != "Ops" || ops.Account != "Cost" {
		t.Fatalf("first row = %+v, want Ops/Cost (sorted before Sales)", ops)
	}
	if ops.Actual != -200 || ops.Budget != 0 || ops.Variance != -200 {
		t.Fatalf("ops row = %+v", ops)
	}
	if ops.VariancePct != nil {
		t.Fatalf("ops pct = %v, want nil when budget is zero", *ops.VariancePct)
	}

	sales := rows[1]
	if sales.Actual != 1000 || sales.Budget != 900 || sales.Variance != 100 {
		t.Fatalf("sales row = %+v", sales)
	}
	if sales.VariancePct == nil {
		t.Fatal("sales pct missing")
	}
	if got := *sales.VariancePct; math.Abs(got-100.0/900.0) > 1e-12 {
		t.Fatalf("sales pct = %v, want %v", got, 100.0/900.0)
	}
}

func TestVarianceBudgetOnlyKey(t *testing.T) {
	facts := []model.Fact{
		fact("budget", "2024-01", "Sales", "Revenue", 500),
	}

	rows := Variance(facts, "actual", "budget")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Actual != 0 || row.Budget != 500 || row.Variance != -500 {
		t.Fatalf("row = %+v", row)
	}
	if row.VariancePct == nil || *row.VariancePct != -1 {
		t.Fatalf("pct = %v, want -1", row.VariancePct)
	}
}

func TestVarianceJoinCaseInsensitive(t *testing.T) {
	facts := []model.Fact{
		fact("actual", "2024-01", "Sales", "REVENUE", 1000),
		fact("budget", "2024-01", "SALES", "Revenue", 900),
	}

	rows := Variance(facts, "actual", "budget")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (keys join case-insensitively)", len(rows))
	}
	if rows[0].Department != "Sales" || rows[0].Account != "REVENUE" {
		t.Fatalf("labels = %q/%q, want first-seen casing", rows[0].Department, rows[0].Account)
	}
	if rows[0].Variance != 100 {
		t.Fatalf("variance = %v, want 100", rows[0].Variance)
	}
}

func TestVarianceAggregatesDuplicateKeys(t *testing.T) {
	facts := []model.Fact{
		fact("actual", "2024-01", "Sales", "Revenue", 600),
		fact("actual", "2024-01", "Sales", "Revenue", 400),
		fact("budget", "2024-01", "Sales", "Revenue", 900),
	}

	rows := Variance(facts, "actual", "budget")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Actual != 1000 {
		t.Fatalf("actual = %v, want 1000 (duplicates summed)", rows[0].Actual)
	}
}

func TestVarianceOrdering(t *testing.T) {
	facts := []model.Fact{
		fact("actual", "2024-02", "Sales", "Revenue", 1),
		fact("actual", "2024-01", "sales", "Revenue", 1),
		fact("actual", "2024-01", "Ops", "Travel", 1),
		fact("actual", "2024-01", "Ops", "cost", 1),
	}

	rows := Variance(facts, "actual", "budget")
	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.Period+"/"+r.Department+"/"+r.Account)
	}
	want := []string{
		"2024-01/Ops/cost",
		"2024-01/Ops/Travel",
		"2024-01/sales/Revenue",
		"2024-02/Sales/Revenue",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}
