package store

import (
	"context"
	"errors"
	"testing"

	"github.com/medch24/planpei/internal/exam"
	"github.com/medch24/planpei/internal/plan"
)

func saveablePlan(id, subject, grade string) *plan.UnitPlan {
	return &plan.UnitPlan{
		ID: id, Title: "T " + id, Subject: subject, GradeLevel: grade,
		Objectives: []string{"Critère A: ...", "Critère B: ..."},
	}
}

func TestMemoryStore_PlanLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := saveablePlan("p1", "Sciences", "PEI 3")
	if err := s.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan() error = %v", err)
	}

	got, err := s.GetPlan(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPlan() error = %v", err)
	}
	if got.Title != p.Title {
		t.Errorf("GetPlan().Title = %q", got.Title)
	}

	// Mutating the returned record must not affect the stored copy.
	got.Title = "changed"
	again, _ := s.GetPlan(ctx, "p1")
	if again.Title == "changed" {
		t.Error("store handed out a shared record")
	}

	if err := s.DeletePlan(ctx, "p1"); err != nil {
		t.Fatalf("DeletePlan() error = %v", err)
	}
	if _, err := s.GetPlan(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPlan() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.DeletePlan(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double DeletePlan() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_SavePlan_RejectsUnsaveable(t *testing.T) {
	s := NewMemoryStore()
	p := saveablePlan("p1", "Sciences", "PEI 3")
	p.Objectives = p.Objectives[:1]

	if err := s.SavePlan(context.Background(), p); !errors.Is(err, ErrNotSaveable) {
		t.Errorf("SavePlan() error = %v, want ErrNotSaveable", err)
	}
}

func TestMemoryStore_ListPlans_FiltersAndOrders(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, p := range []*plan.UnitPlan{
		saveablePlan("p1", "Sciences", "PEI 3"),
		saveablePlan("p2", "Mathématiques", "PEI 3"),
		saveablePlan("p3", "Sciences", "PEI 2"),
	} {
		if err := s.SavePlan(ctx, p); err != nil {
			t.Fatalf("SavePlan(%s) error = %v", p.ID, err)
		}
	}

	got, err := s.ListPlans(ctx, "Sciences", "PEI 3")
	if err != nil {
		t.Fatalf("ListPlans() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("ListPlans(Sciences, PEI 3) = %v", got)
	}

	all, _ := s.ListPlans(ctx, "", "")
	if len(all) != 3 || all[0].ID != "p1" || all[2].ID != "p3" {
		t.Errorf("ListPlans(all) lost insertion order: %v", all)
	}
}

func TestMemoryStore_ExamLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	e := &exam.Exam{ID: "e1", Subject: "Sciences", Grade: "PEI 3", TotalPoints: 30}
	if err := s.SaveExam(ctx, e); err != nil {
		t.Fatalf("SaveExam() error = %v", err)
	}

	got, err := s.GetExam(ctx, "e1")
	if err != nil {
		t.Fatalf("GetExam() error = %v", err)
	}
	if got.TotalPoints != 30 {
		t.Errorf("GetExam().TotalPoints = %d", got.TotalPoints)
	}

	list, _ := s.ListExams(ctx, "Sciences", "")
	if len(list) != 1 {
		t.Errorf("ListExams() = %d records", len(list))
	}

	if err := s.DeleteExam(ctx, "e1"); err != nil {
		t.Fatalf("DeleteExam() error = %v", err)
	}
	if _, err := s.GetExam(ctx, "e1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExam() after delete error = %v, want ErrNotFound", err)
	}
}
