package store

import (
	"context"
	"sync"

	"github.com/medch24/planpei/internal/exam"
	"github.com/medch24/planpei/internal/plan"
)

// MemoryStore keeps records in process memory. It backs tests and
// single-instance deployments that run without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]plan.UnitPlan
	exams map[string]exam.Exam
	// order preserves insertion order for listings.
	planOrder []string
	examOrder []string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plans: map[string]plan.UnitPlan{},
		exams: map[string]exam.Exam{},
	}
}

func (s *MemoryStore) SavePlan(_ context.Context, p *plan.UnitPlan) error {
	if !p.Saveable() {
		return ErrNotSaveable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.plans[p.ID]; !exists {
		s.planOrder = append(s.planOrder, p.ID)
	}
	s.plans[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPlan(_ context.Context, id string) (*plan.UnitPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListPlans(_ context.Context, subject, grade string) ([]*plan.UnitPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*plan.UnitPlan
	for _, id := range s.planOrder {
		p := s.plans[id]
		if matches(p.Subject, subject) && matches(p.GradeLevel, grade) {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeletePlan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[id]; !ok {
		return ErrNotFound
	}
	delete(s.plans, id)
	s.planOrder = remove(s.planOrder, id)
	return nil
}

func (s *MemoryStore) SaveExam(_ context.Context, e *exam.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.exams[e.ID]; !exists {
		s.examOrder = append(s.examOrder, e.ID)
	}
	s.exams[e.ID] = *e
	return nil
}

func (s *MemoryStore) GetExam(_ context.Context, id string) (*exam.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) ListExams(_ context.Context, subject, grade string) ([]*exam.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*exam.Exam
	for _, id := range s.examOrder {
		e := s.exams[id]
		if matches(e.Subject, subject) && matches(e.Grade, grade) {
			ce := e
			out = append(out, &ce)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteExam(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exams[id]; !ok {
		return ErrNotFound
	}
	delete(s.exams, id)
	s.examOrder = remove(s.examOrder, id)
	return nil
}

// matches treats an empty filter as a wildcard.
func matches(value, filter string) bool {
	return filter == "" || value == filter
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
