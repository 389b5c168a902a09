package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medch24/planpei/internal/exam"
	"github.com/medch24/planpei/internal/plan"
)

const dbTimeout = 5 * time.Second

// PostgresStore persists records as JSONB documents.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables when they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS unit_plans (
			id         TEXT PRIMARY KEY,
			subject    TEXT NOT NULL,
			grade      TEXT NOT NULL,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS unit_plans_subject_grade ON unit_plans (subject, grade);

		CREATE TABLE IF NOT EXISTS exams (
			id         TEXT PRIMARY KEY,
			subject    TEXT NOT NULL,
			grade      TEXT NOT NULL,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS exams_subject_grade ON exams (subject, grade);
	`)
	if err != nil {
		return fmt.Errorf("migrating store schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SavePlan(ctx context.Context, p *plan.UnitPlan) error {
	if !p.Saveable() {
		return ErrNotSaveable
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding plan %s: %w", p.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = s.pool.Exec(ctx, `
		INSERT INTO unit_plans (id, subject, grade, doc, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE
		SET subject = $2, grade = $3, doc = $4, updated_at = now()
	`, p.ID, p.Subject, p.GradeLevel, doc)
	if err != nil {
		return fmt.Errorf("saving plan %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*plan.UnitPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM unit_plans WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading plan %s: %w", id, err)
	}

	var p plan.UnitPlan
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", id, err)
	}
	return &p, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, subject, grade string) ([]*plan.UnitPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT doc FROM unit_plans
		WHERE ($1 = '' OR subject = $1) AND ($2 = '' OR grade = $2)
		ORDER BY updated_at
	`, subject, grade)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var out []*plan.UnitPlan
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		var p plan.UnitPlan
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("decoding plan: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeletePlan(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM unit_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveExam(ctx context.Context, e *exam.Exam) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding exam %s: %w", e.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = s.pool.Exec(ctx, `
		INSERT INTO exams (id, subject, grade, doc, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE
		SET subject = $2, grade = $3, doc = $4, updated_at = now()
	`, e.ID, e.Subject, e.Grade, doc)
	if err != nil {
		return fmt.Errorf("saving exam %s: %w", e.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetExam(ctx context.Context, id string) (*exam.Exam, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM exams WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading exam %s: %w", id, err)
	}

	var e exam.Exam
	if err := json.Unmarshal(doc, &e); err != nil {
		return nil, fmt.Errorf("decoding exam %s: %w", id, err)
	}
	return &e, nil
}

func (s *PostgresStore) ListExams(ctx context.Context, subject, grade string) ([]*exam.Exam, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT doc FROM exams
		WHERE ($1 = '' OR subject = $1) AND ($2 = '' OR grade = $2)
		ORDER BY updated_at
	`, subject, grade)
	if err != nil {
		return nil, fmt.Errorf("listing exams: %w", err)
	}
	defer rows.Close()

	var out []*exam.Exam
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning exam: %w", err)
		}
		var e exam.Exam
		if err := json.Unmarshal(doc, &e); err != nil {
			return nil, fmt.Errorf("decoding exam: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteExam(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting exam %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
