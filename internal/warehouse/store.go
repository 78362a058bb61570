// Package warehouse provides the SQLite-backed fact store, partitioned by
// scenario and source.
package warehouse

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ADanMan/datarails-open/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is the single shared mutable resource of the system. Writes
// serialize through SQLite transactions; reads never block other reads.
type Store struct {
	db *sql.DB
}

// Open opens or creates the warehouse database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating database dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Filters restricts reads to a department and/or account, each matched
// case-insensitively. Zero values mean no restriction.
type Filters struct {
	Department string
	Account    string
}

// Write replaces all facts previously loaded under (scenario, source) with
// the given batch, in a single transaction. Repeated loads of the same
// scenario+source pair are idempotent with respect to the latest one; an
// empty batch still clears that source's prior rows.
func (s *Store) Write(facts []model.Fact, scenario, source string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		"DELETE FROM financial_facts WHERE scenario = ? AND source = ?",
		scenario, source,
	); err != nil {
		return 0, fmt.Errorf("clearing prior load: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO financial_facts
		(source, scenario, period, department, account, value, currency, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range facts {
		if _, err := stmt.Exec(
			source, scenario, f.Period, f.Department, f.Account,
			f.Value, f.Currency, f.Metadata,
		); err != nil {
			return 0, fmt.Errorf("inserting fact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing write: %w", err)
	}
	return len(facts), nil
}

// Read returns all facts for a scenario in insertion order, optionally
// restricted by filters.
func (s *Store) Read(scenario string, f Filters) ([]model.Fact, error) {
	query := `SELECT source, scenario, period, department, account, value, currency, IFNULL(metadata, '')
		FROM financial_facts WHERE scenario = ?`
	args := []any{scenario}

	if f.Department != "" {
		query += " AND lower(department) = lower(?)"
		args = append(args, f.Department)
	}
	if f.Account != "" {
		query += " AND lower(account) = lower(?)"
		args = append(args, f.Account)
	}
	query += " ORDER BY id"

	return s.queryFacts(query, args...)
}

// ReadAll returns every fact in the warehouse, across all scenarios,
// in insertion order.
func (s *Store) ReadAll() ([]model.Fact, error) {
	return s.queryFacts(`SELECT source, scenario, period, department, account, value, currency, IFNULL(metadata, '')
		FROM financial_facts ORDER BY id`)
}

// ReadPair returns all facts belonging to either scenario, in insertion
// order. Used by the variance analyzer to fetch both sides in one query.
func (s *Store) ReadPair(a, b string) ([]model.Fact, error) {
	return s.queryFacts(`SELECT source, scenario, period, department, account, value, currency, IFNULL(metadata, '')
		FROM financial_facts WHERE scenario IN (?, ?) ORDER BY id`, a, b)
}

func (s *Store) queryFacts(query string, args ...any) ([]model.Fact, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var facts []model.Fact
	for rows.Next() {
		var f model.Fact
		if err := rows.Scan(&f.Source, &f.Scenario, &f.Period, &f.Department,
			&f.Account, &f.Value, &f.Currency, &f.Metadata); err != nil {
			return nil, fmt.Errorf("scanning fact: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading facts: %w", err)
	}
	return facts, nil
}

// ListScenarios returns the distinct scenario tags currently present,
// sorted ascending.
func (s *Store) ListScenarios() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT scenario FROM financial_facts ORDER BY scenario")
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scenarios []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning scenario: %w", err)
		}
		scenarios = append(scenarios, name)
	}
	return scenarios, rows.Err()
}

// DeleteScenario removes every fact for a scenario, regardless of source.
func (s *Store) DeleteScenario(scenario string) error {
	if _, err := s.db.Exec("DELETE FROM financial_facts WHERE scenario = ?", scenario); err != nil {
		return fmt.Errorf("deleting scenario: %w", err)
	}
	return nil
}
