package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"loan-approval/domain"
)

const createDecisionsTable = `CREATE TABLE IF NOT EXISTS loan_decisions (
	id               UUID PRIMARY KEY,
	full_name        TEXT NOT NULL,
	no_of_dependents INTEGER NOT NULL,
	education        TEXT NOT NULL,
	self_employed    TEXT NOT NULL,
	income_annum     DOUBLE PRECISION NOT NULL,
	loan_amount      BIGINT NOT NULL,
	loan_term        INTEGER NOT NULL,
	cibil_score      INTEGER NOT NULL,
	probability      DOUBLE PRECISION NOT NULL,
	approved         BOOLEAN NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
)`

const insertDecision = `INSERT INTO loan_decisions
	(id, full_name, no_of_dependents, education, self_employed, income_annum, loan_amount, loan_term, cibil_score, probability, approved, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// DecisionRepositoryPostgres writes decisions to the loan_decisions table.
type DecisionRepositoryPostgres struct {
	db *sql.DB
}

// OpenPostgres opens a lib/pq connection pool.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

func NewDecisionRepositoryPostgres(db *sql.DB) *DecisionRepositoryPostgres {
	return &DecisionRepositoryPostgres{db: db}
}

// EnsureSchema creates the table when missing.
func (r *DecisionRepositoryPostgres) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createDecisionsTable); err != nil {
		return fmt.Errorf("create loan_decisions: %w", err)
	}
	return nil
}

func (r *DecisionRepositoryPostgres) Save(ctx context.Context, d domain.DecisionRecord) error {
	_, err := r.db.ExecContext(ctx, insertDecision,
		d.ID,
		d.FullName,
		d.Record.NoOfDependents,
		d.Record.Education,
		d.Record.SelfEmployed,
		d.Record.IncomeAnnum,
		d.Record.LoanAmount,
		d.Record.LoanTerm,
		d.Record.CibilScore,
		d.Probability,
		d.Approved,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert decision %s: %w", d.ID, err)
	}
	return nil
}

func (r *DecisionRepositoryPostgres) Close() error {
	return r.db.Close()
}
