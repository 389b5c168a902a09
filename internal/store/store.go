// Package store persists unit plans and exams, keyed by subject and grade.
package store

import (
	"context"
	"errors"

	"github.com/medch24/planpei/internal/exam"
	"github.com/medch24/planpei/internal/plan"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrNotSaveable is returned when a plan lacks the minimum criterion
// objectives required for persistence.
var ErrNotSaveable = errors.New("store: plan is missing criterion objectives")

// PlanStore persists unit plans.
type PlanStore interface {
	SavePlan(ctx context.Context, p *plan.UnitPlan) error
	GetPlan(ctx context.Context, id string) (*plan.UnitPlan, error)
	ListPlans(ctx context.Context, subject, grade string) ([]*plan.UnitPlan, error)
	DeletePlan(ctx context.Context, id string) error
}

// ExamStore persists exams.
type ExamStore interface {
	SaveExam(ctx context.Context, e *exam.Exam) error
	GetExam(ctx context.Context, id string) (*exam.Exam, error)
	ListExams(ctx context.Context, subject, grade string) ([]*exam.Exam, error)
	DeleteExam(ctx context.Context, id string) error
}

// Store bundles both record kinds behind one implementation.
type Store interface {
	PlanStore
	ExamStore
}
