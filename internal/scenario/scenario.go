// Package scenario builds derived "what-if" scenarios by applying a
// percentage adjustment to an existing scenario's facts.
package scenario

import (
	"fmt"
	"math"
	"strings"

	"github.com/ADanMan/datarails-open/internal/model"
	"github.com/ADanMan/datarails-open/internal/warehouse"
)

// SourceTag is the synthetic source tag attached to persisted facts built
// from the named scenario, keeping rebuilds idempotent per source scenario.
func SourceTag(sourceScenario string) string {
	return "scenario:" + sourceScenario
}

// ValidationError reports malformed build parameters, detected before any
// data is read.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Adjustment scales matching facts by (1 + PercentageChange). Department
// and account filters match case-insensitively and are ANDed; an empty
// filter matches everything.
type Adjustment struct {
	Department       string
	Account          string
	PercentageChange float64
}

// Validate rejects malformed adjustment parameters before any data is read.
func (a Adjustment) Validate() error {
	if math.IsNaN(a.PercentageChange) || math.IsInf(a.PercentageChange, 0) {
		return &ValidationError{Reason: fmt.Sprintf("percentage change must be a finite number, got %v", a.PercentageChange)}
	}
	return nil
}

// Matches reports whether the adjustment applies to the given fact.
func (a Adjustment) Matches(f model.Fact) bool {
	if a.Department != "" && !strings.EqualFold(f.Department, a.Department) {
		return false
	}
	if a.Account != "" && !strings.EqualFold(f.Account, a.Account) {
		return false
	}
	return true
}

// Apply carries every source fact into the output in order. Facts matching
// the adjustment have their value scaled; the rest pass through unchanged.
// Negative values scale proportionally including sign, so increasing a cost
// line makes it more negative.
func Apply(facts []model.Fact, adj Adjustment) []model.Fact {
	out := make([]model.Fact, 0, len(facts))
	for _, f := range facts {
		if adj.Matches(f) {
			f.Value *= 1 + adj.PercentageChange
		}
		out = append(out, f)
	}
	return out
}

// Result holds a built scenario and how many rows were persisted.
type Result struct {
	Rows      []model.Fact
	Persisted int
}

// Build reads the source scenario, applies the adjustment, tags the result
// with the target scenario, and persists it when asked. Persistence and the
// returned row set are independent: persist=false still returns the rows.
// An empty source scenario yields a valid empty result.
func Build(st *warehouse.Store, sourceScenario, targetScenario string, adj Adjustment, persist bool) (Result, error) {
	if err := adj.Validate(); err != nil {
		return Result{}, err
	}
	if targetScenario == "" {
		return Result{}, &ValidationError{Reason: "target scenario name must not be empty"}
	}

	base, err := st.Read(sourceScenario, warehouse.Filters{})
	if err != nil {
		return Result{}, err
	}

	rows := Apply(base, adj)
	tag := SourceTag(sourceScenario)
	for i := range rows {
		rows[i].Scenario = targetScenario
		rows[i].Source = tag
	}

	res := Result{Rows: rows}
	if persist {
		n, err := st.Write(rows, targetScenario, tag)
		if err != nil {
			return Result{}, err
		}
		res.Persisted = n
	}
	return res, nil
}
