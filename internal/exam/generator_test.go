package exam

import (
	"context"
	"strings"
	"testing"

	"github.com/medch24/planpei/internal/ai"
)

const examPayload = `{
	"title": "Examen de Sciences",
	"questions": [
		{"type": "QCM", "title": "Q1", "points": 10, "options": ["A", "B"], "correctAnswer": "A"},
		{"type": "Problème", "title": "Q2", "points": 15, "answer": "Corrigé", "isDifferentiation": true}
	]
}`

func TestGenerator_Generate(t *testing.T) {
	mock := ai.NewMockProvider(examPayload)
	g := NewGenerator(mock, nil)

	e, err := g.Generate(context.Background(), Request{
		Subject: "Sciences", Grade: "PEI 3", Semester: "Semestre 1", ClassName: "PEI 3A",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if e.PointsSum() != DefaultTotalPoints {
		t.Errorf("PointsSum() = %d, want %d", e.PointsSum(), DefaultTotalPoints)
	}
	if !mock.LastRequest.JSONMode {
		t.Error("Generate() must request JSON mode")
	}
	if !strings.Contains(mock.LastRequest.Messages[0].Content, "concepteur d'examens") {
		t.Error("French subject must get the French system instruction")
	}
}

func TestGenerator_Generate_NoQuestions(t *testing.T) {
	mock := ai.NewMockProvider(`{"title": "Vide"}`)
	g := NewGenerator(mock, nil)

	if _, err := g.Generate(context.Background(), Request{Subject: "Sciences", Grade: "PEI 1"}); err == nil {
		t.Fatal("Generate() error = nil, want error for empty question list")
	}
}

func TestGenerator_Generate_EnglishSubject(t *testing.T) {
	mock := ai.NewMockProvider(examPayload)
	g := NewGenerator(mock, nil)

	if _, err := g.Generate(context.Background(), Request{Subject: "Acquisition de langues (Anglais)", Grade: "PEI 2"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(mock.LastRequest.Messages[0].Content, "exam designer") {
		t.Error("English subject must get the English system instruction")
	}
}

func TestGenerator_GenerateSemesterPair(t *testing.T) {
	mock := ai.NewMockProvider(examPayload)
	g := NewGenerator(mock, nil)

	first, second, err := g.GenerateSemesterPair(context.Background(), Request{Subject: "Sciences", Grade: "PEI 3"})
	if err != nil {
		t.Fatalf("GenerateSemesterPair() error = %v", err)
	}
	if first.Semester != "Semestre 1" || second.Semester != "Semestre 2" {
		t.Errorf("semesters = %q, %q", first.Semester, second.Semester)
	}
}

func TestIsEnglishExam(t *testing.T) {
	if !IsEnglishExam("Acquisition de langues (Anglais)") {
		t.Error("IsEnglishExam() = false for English acquisition")
	}
	if IsEnglishExam("Mathématiques") {
		t.Error("IsEnglishExam() = true for Mathématiques")
	}
}

func TestGenerator_Generate_ViaRouter(t *testing.T) {
	router := ai.NewRouter()
	router.Register("mock", ai.NewMockProvider(examPayload))
	g := NewGenerator(router, nil)

	e, err := g.Generate(context.Background(), Request{Subject: "Sciences", Grade: "PEI 3", Semester: "Semestre 1"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if e.PointsSum() != DefaultTotalPoints {
		t.Errorf("PointsSum() = %d, want %d", e.PointsSum(), DefaultTotalPoints)
	}
}
