package plan

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalize_Defaults(t *testing.T) {
	p := Normalize(map[string]any{}, "Mathématiques", "PEI 3")

	if p.ID == "" {
		t.Error("Normalize() left ID empty")
	}
	if p.Title != "Nouvelle Unité" {
		t.Errorf("Title = %q, want %q", p.Title, "Nouvelle Unité")
	}
	if p.Duration != "10 heures" {
		t.Errorf("Duration = %q, want %q", p.Duration, "10 heures")
	}
	if p.Subject != "Mathématiques" || p.GradeLevel != "PEI 3" {
		t.Errorf("context fields = %q/%q, want request values", p.Subject, p.GradeLevel)
	}
	if p.RelatedConcepts == nil || p.Objectives == nil || p.ATLSkills == nil {
		t.Error("array fields must default to empty slices, not nil")
	}
	if p.Assessments == nil {
		t.Error("Assessments must default to empty slice, not nil")
	}
}

func TestNormalize_CanonicalWinsOverAlias(t *testing.T) {
	raw := map[string]any{
		"title": "Fonctions affines",
		"titre": "Les fonctions",
	}
	p := Normalize(raw, "Mathématiques", "PEI 4")
	if p.Title != "Fonctions affines" {
		t.Errorf("Title = %q, want canonical key to win", p.Title)
	}
}

func TestNormalize_AliasUsedWhenCanonicalAbsent(t *testing.T) {
	raw := map[string]any{
		"titre":            "Les fonctions",
		"concept_cle":      "Relations",
		"contexte_mondial": "Identités et relations",
		"enonce_recherche": "Les relations se modélisent.",
		"questions_recherche": map[string]any{
			"factuelles":    []any{"Qu'est-ce qu'une fonction ?"},
			"conceptuelles": []any{"Comment modéliser ?"},
			"debat":         []any{"Tout est-il modélisable ?"},
		},
		"objectifs": []any{"Critère A: connaître", "Critère C: communiquer"},
		"reflexion": map[string]any{"avant": "a", "pendant": "p", "apres": "x"},
	}
	p := Normalize(raw, "Mathématiques", "PEI 4")

	if p.Title != "Les fonctions" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.KeyConcept != "Relations" {
		t.Errorf("KeyConcept = %q", p.KeyConcept)
	}
	if len(p.InquiryQuestions.Factual) != 1 || len(p.InquiryQuestions.Debatable) != 1 {
		t.Errorf("InquiryQuestions = %+v", p.InquiryQuestions)
	}
	if p.Reflection.After != "x" {
		t.Errorf("Reflection.After = %q", p.Reflection.After)
	}
	if got := p.CriterionLetters(); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("CriterionLetters() = %v", got)
	}
}

func TestNormalize_WrongShapeSkipped(t *testing.T) {
	raw := map[string]any{
		"title":           42,
		"titre":           "Titre de repli",
		"objectives":      "pas un tableau",
		"relatedConcepts": map[string]any{"a": 1},
	}
	p := Normalize(raw, "Sciences", "PEI 2")
	if p.Title != "Titre de repli" {
		t.Errorf("Title = %q, want alias after mistyped canonical", p.Title)
	}
	if len(p.Objectives) != 0 {
		t.Errorf("Objectives = %v, want non-array never wrapped", p.Objectives)
	}
	if len(p.RelatedConcepts) != 0 {
		t.Errorf("RelatedConcepts = %v, want empty", p.RelatedConcepts)
	}
}

func TestNormalize_AssessmentDefaults(t *testing.T) {
	raw := map[string]any{
		"assessments": []any{map[string]any{"critere": "b"}},
	}
	p := Normalize(raw, "Sciences", "PEI 1")
	if len(p.Assessments) != 1 {
		t.Fatalf("Assessments = %d, want 1", len(p.Assessments))
	}
	a := p.Assessments[0]
	if a.Criterion != "B" {
		t.Errorf("Criterion = %q, want upper-cased B", a.Criterion)
	}
	if a.CriterionName != "Recherche" || a.MaxPoints != 8 {
		t.Errorf("defaults = %q/%d, want the catalogue name for criterion B", a.CriterionName, a.MaxPoints)
	}
	if len(a.Strands) != 3 {
		t.Errorf("Strands = %v, want 3 placeholders", a.Strands)
	}
	if len(a.RubricRows) != 4 || a.RubricRows[3].Level != "7-8" {
		t.Errorf("RubricRows = %v", a.RubricRows)
	}
	if len(a.Exercises) != 1 || a.Exercises[0].Title != "Exercice" {
		t.Errorf("Exercises = %v", a.Exercises)
	}
}

func TestNormalize_LegacySingleAssessment(t *testing.T) {
	raw := map[string]any{
		"assessmentData": map[string]any{
			"criterion": "D",
			"maxPoints": "8",
		},
	}
	p := Normalize(raw, "Sciences", "PEI 1")
	if len(p.Assessments) != 1 || p.Assessments[0].Criterion != "D" {
		t.Fatalf("Assessments = %+v", p.Assessments)
	}
	if p.Assessments[0].MaxPoints != 8 {
		t.Errorf("MaxPoints = %d, want digit string coerced", p.Assessments[0].MaxPoints)
	}
}

func TestNormalize_BilingualSubject(t *testing.T) {
	raw := map[string]any{
		"title":         "Le corps en mouvement",
		"title_ar":      "الجسم في حركة",
		"objectifs":     []any{"Critère A: ...", "Critère B: ..."},
		"objectives_ar": []any{"المعيار أ", "المعيار ب"},
	}
	p := Normalize(raw, "Éducation physique et à la santé", "PEI 2")
	if p.Arabic.Title != "الجسم في حركة" {
		t.Errorf("Arabic.Title = %q", p.Arabic.Title)
	}
	if len(p.Arabic.Objectives) != 2 {
		t.Errorf("Arabic.Objectives = %v", p.Arabic.Objectives)
	}

	mono := Normalize(raw, "Mathématiques", "PEI 2")
	if mono.Arabic.Title != "" {
		t.Errorf("non-bilingual subject got Arabic fields: %+v", mono.Arabic)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := map[string]any{
		"titre":     "Arts visuels au quotidien",
		"titre_ar":  "الفنون البصرية",
		"objectifs": []any{"Critère A: créer", "Critère D: réagir"},
		"assessments": []any{map[string]any{
			"criterion": "A",
			"maxPoints": float64(8),
		}},
	}
	first := Normalize(raw, "Arts", "PEI 3")

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var round map[string]any
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	second := Normalize(round, "Arts", "PEI 3")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-normalization changed the record:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestNormalizeJSON_GarbageNeverPanics(t *testing.T) {
	inputs := []string{
		"", "{}", "null", "not json at all", `[1,2,3]`, `{"assessments": [1, "x"]}`,
	}
	for _, in := range inputs {
		p := NormalizeJSON([]byte(in), "Sciences", "PEI 1")
		if p.Title == "" {
			t.Errorf("NormalizeJSON(%q) produced empty title", in)
		}
	}
}

func TestSaveable(t *testing.T) {
	p := UnitPlan{Objectives: []string{"Critère A: ..."}}
	if p.Saveable() {
		t.Error("Saveable() = true with a single objective")
	}
	p.Objectives = append(p.Objectives, "Critère B: ...")
	if !p.Saveable() {
		t.Error("Saveable() = false with two objectives")
	}
}

func TestNormalize_AssessmentCriterionNameFromCatalogue(t *testing.T) {
	raw := map[string]any{"assessments": []any{
		map[string]any{"critere": "d"},
		map[string]any{"critere": "a", "nom_critere": "Nom fourni"},
	}}
	p := Normalize(raw, "Sciences", "PEI 1")
	if got := p.Assessments[0].CriterionName; got != "Pensée critique" {
		t.Errorf("CriterionName = %q, want the catalogue name for criterion D", got)
	}
	if got := p.Assessments[1].CriterionName; got != "Nom fourni" {
		t.Errorf("CriterionName = %q, want the provided name kept", got)
	}
}
