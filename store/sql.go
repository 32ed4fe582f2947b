package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/lib/pq"

	"github.com/syntpump/syntext/grammar"
)

// DefaultTable is the table read when none is configured.
const DefaultTable = "grammar_rules"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL is a rule store backed by a Postgres table with the columns
// id, result, left_cat, right_cat and agreement.
type SQL struct {
	db    *sql.DB
	table string
}

// NewSQL wraps an open database handle.
func NewSQL(db *sql.DB, table string) (*SQL, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQL{db: db, table: table}, nil
}

// OpenSQL connects to Postgres using a lib/pq connection string.
func OpenSQL(dsn, table string) (*SQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s, err := NewSQL(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) quoted() string {
	return pq.QuoteIdentifier(s.table)
}

// EnsureSchema creates the rule table if it does not exist.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id SERIAL PRIMARY KEY,
	result VARCHAR NOT NULL,
	left_cat VARCHAR NOT NULL,
	right_cat VARCHAR NOT NULL,
	agreement VARCHAR NOT NULL DEFAULT 'none'
)`, s.quoted()))
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// LoadRules implements grammar.Store.
func (s *SQL) LoadRules() ([]grammar.Rule, error) {
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT result, left_cat, right_cat, agreement FROM %s ORDER BY id", s.quoted()))
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	return scanRules(rows)
}

// SaveRules appends rules in a single transaction, keeping their order.
func (s *SQL) SaveRules(ctx context.Context, rules []grammar.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (result, left_cat, right_cat, agreement) VALUES ($1, $2, $3, $4)", s.quoted()))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rules {
		if _, err := stmt.ExecContext(ctx, r.Result, r.Left, r.Right, r.Agreement.String()); err != nil {
			return fmt.Errorf("insert rule %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQL) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

func scanRules(rows rowScanner) ([]grammar.Rule, error) {
	defer rows.Close()

	var rules []grammar.Rule
	for rows.Next() {
		var (
			r         grammar.Rule
			agreement sql.NullString
		)
		if err := rows.Scan(&r.Result, &r.Left, &r.Right, &agreement); err != nil {
			return nil, fmt.Errorf("scan rule %d: %w", len(rules), err)
		}
		a, err := grammar.ParseAgreement(agreement.String)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", len(rules), err)
		}
		r.Agreement = a
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return rules, nil
}
