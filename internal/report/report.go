// Package report derives analytical views from warehouse facts: per-period
// departmental summaries and actual-vs-budget variance.
package report

import (
	"sort"
	"strings"

	"github.com/ADanMan/datarails-open/internal/model"
)

// Summarize groups facts by (period, department) and sums their values.
// Departments compare case-insensitively; the first-seen casing becomes the
// display label for its group. Rows are ordered by period ascending, then
// department. An empty input yields an empty result.
func Summarize(facts []model.Fact) []model.ReportRow {
	type groupKey struct {
		period     string
		department string
	}

	groups := make(map[groupKey]*model.ReportRow)
	for _, f := range facts {
		k := groupKey{f.Period, strings.ToLower(f.Department)}
		row, ok := groups[k]
		if !ok {
			row = &model.ReportRow{Period: f.Period, Department: f.Department}
			groups[k] = row
		}
		row.Total += f.Value
	}

	rows := make([]model.ReportRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period < rows[j].Period
		}
		return strings.ToLower(rows[i].Department) < strings.ToLower(rows[j].Department)
	})
	return rows
}

// Variance joins two scenarios on (period, department, account) and computes
// actual minus budget per key. The join is a full outer join: a key present
// on only one side still appears, with the other side at zero, so coverage
// gaps surface in the output. VariancePct is nil when the budget side is
// zero. Rows are ordered by period, then department, then account
// (case-insensitive).
func Variance(facts []model.Fact, actualScenario, budgetScenario string) []model.VarianceRow {
	type joinKey struct {
		period     string
		department string
		account    string
	}

	rows := make(map[joinKey]*model.VarianceRow)
	for _, f := range facts {
		k := joinKey{f.Period, strings.ToLower(f.Department), strings.ToLower(f.Account)}
		row, ok := rows[k]
		if !ok {
			row = &model.VarianceRow{
				Period:     f.Period,
				Department: f.Department,
				Account:    f.Account,
			}
			rows[k] = row
		}
		switch f.Scenario {
		case actualScenario:
			row.Actual += f.Value
		case budgetScenario:
			row.Budget += f.Value
		}
	}

	out := make([]model.VarianceRow, 0, len(rows))
	for _, row := range rows {
		row.Variance = row.Actual - row.Budget
		if row.Budget != 0 {
			pct := row.Variance / row.Budget
			row.VariancePct = &pct
		}
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		di, dj := strings.ToLower(out[i].Department), strings.ToLower(out[j].Department)
		if di != dj {
			return di < dj
		}
		return strings.ToLower(out[i].Account) < strings.ToLower(out[j].Account)
	})
	return out
}
