package export

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/medch24/planpei/internal/docx"
	"github.com/medch24/planpei/internal/exam"
	"github.com/medch24/planpei/internal/plan"
)

// testTemplate builds a minimal Word package whose document body is the
// given XML.
func testTemplate(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	doc := `<?xml version="1.0"?><w:document xmlns:w="x"><w:body>` + bodyXML + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func renderedDocument(t *testing.T, pkg []byte) string {
	t.Helper()
	c, err := docx.Open(pkg)
	if err != nil {
		t.Fatalf("Open(rendered) error = %v", err)
	}
	return c.Document()
}

func samplePlan() *plan.UnitPlan {
	return &plan.UnitPlan{
		ID:                 "p1",
		Title:              "Les fractions",
		Subject:            "Mathématiques",
		GradeLevel:         "PEI 2",
		TeacherName:        "M. Alaoui",
		Duration:           "10 heures",
		KeyConcept:         "Relations",
		RelatedConcepts:    []string{"Modèles", "Quantité"},
		GlobalContext:      "Identités et relations",
		StatementOfInquiry: `La fraction \frac{1}{2} modélise un partage.`,
		InquiryQuestions: plan.InquiryQuestions{
			Factual: []string{"Qu'est-ce qu'une fraction ?"},
		},
		Objectives: []string{"Critère A: connaître", "Critère C: communiquer"},
		Assessments: []plan.Assessment{
			{
				Criterion:     "A",
				CriterionName: "Connaissances",
				MaxPoints:     8,
				Strands:       []string{"i. Aspect 1", "ii. Aspect 2"},
				RubricRows:    []plan.RubricRow{{Level: "1-2", Descriptor: "débutant"}},
				Exercises:     []plan.Exercise{{Title: "Exercice", Content: "Calculer {x}", CriterionReference: "Critère A - i"}},
			},
			{
				Criterion:     "C",
				CriterionName: "Communication",
				MaxPoints:     8,
				Strands:       []string{"i. Aspect 1"},
				RubricRows:    []plan.RubricRow{{Level: "1-2", Descriptor: "débutant"}},
				Exercises:     []plan.Exercise{{Title: "Exercice", Content: "Expliquer", CriterionReference: "Critère C - i"}},
			},
		},
	}
}

func TestPlanTags_NormalizesAndEscapes(t *testing.T) {
	tags := PlanTags(samplePlan())

	soi, _ := tags["enonce_de_recherche"].(string)
	if !strings.Contains(soi, "(1)/(2)") && !strings.Contains(soi, "1/2") {
		t.Errorf("enonce_de_recherche = %q, want flattened fraction", soi)
	}
	if strings.ContainsAny(soi, "{}") {
		t.Errorf("enonce_de_recherche = %q, want braces neutralized", soi)
	}
	if got := tags["questions_factuelles"]; got != "Qu'est-ce qu'une fraction ?" {
		t.Errorf("questions_factuelles = %q", got)
	}
}

func TestPlanTags_NonBilingualOmitsArabicKeys(t *testing.T) {
	tags := PlanTags(samplePlan())
	for key := range tags {
		if strings.HasSuffix(key, "_ar") {
			t.Errorf("non-bilingual subject produced Arabic tag %q", key)
		}
	}
}

func TestPlanTags_BilingualAddsArabicKeys(t *testing.T) {
	p := samplePlan()
	p.Subject = "Arts"
	p.Arabic.Title = "الكسور"
	tags := PlanTags(p)

	if got := tags["titre_unite_ar"]; got != "الكسور" {
		t.Errorf("titre_unite_ar = %q", got)
	}
	if _, ok := tags["reflexion_apres_ar"]; !ok {
		t.Error("bilingual tag set must be complete even for empty fields")
	}
}

func TestExporter_PlanDocument(t *testing.T) {
	tpl := testTemplate(t, `<w:p><w:r><w:t>{titre_unite} - {tag_inconnu}</w:t></w:r></w:p>`)
	x := NewExporter(nil)

	pkg, err := x.PlanDocument(tpl, samplePlan())
	if err != nil {
		t.Fatalf("PlanDocument() error = %v", err)
	}
	doc := renderedDocument(t, pkg)
	if !strings.Contains(doc, "Les fractions") {
		t.Error("document lacks the plan title")
	}
	if strings.Contains(doc, "{titre_unite}") {
		t.Error("tag left unrendered")
	}
}

func TestExporter_PlanDocument_CorruptTemplate(t *testing.T) {
	x := NewExporter(nil)
	if _, err := x.PlanDocument([]byte("junk"), samplePlan()); err == nil {
		t.Fatal("PlanDocument() error = nil for corrupt template")
	}
}

func TestExporter_AssessmentDocument(t *testing.T) {
	tpl := testTemplate(t, `<w:p><w:r><w:t>Critère {critere} / {max} {#rubriques}[{niveau}: {descripteur}]{/rubriques}{#exercices}({numero}. {titre}){/exercices}</w:t></w:r></w:p>`)
	x := NewExporter(nil)
	p := samplePlan()

	pkg, err := x.AssessmentDocument(tpl, p, &p.Assessments[0])
	if err != nil {
		t.Fatalf("AssessmentDocument() error = %v", err)
	}
	doc := renderedDocument(t, pkg)
	for _, want := range []string{"Critère A / 8", "[1-2: débutant]", "(1. Exercice)"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document lacks %q", want)
		}
	}
}

func sampleExam() *exam.Exam {
	return &exam.Exam{
		Title: "Examen de Sciences", Subject: "Sciences", Grade: "PEI 3",
		Semester: "Semestre 1", ClassName: "PEI 3A", Duration: "2 heures",
		Style: "Standard", TotalPoints: 30,
		Questions: []exam.Question{
			{Type: exam.TypeQCM, Section: "Partie A", Title: "Choisir", Points: 10,
				Options: []string{"Oui", "Non"}, CorrectAnswer: "Oui"},
			{Type: exam.TypeTrueFalse, Section: "Partie A", Title: "Juger", Points: 8,
				Statements: []exam.Statement{{Statement: "La Terre est plate", IsTrue: false}}},
			{Type: exam.TypeProblem, Section: "Partie B", Title: "Résoudre", Points: 12,
				Content: "Calculer l'aire.", Answer: "12 cm²", IsDifferentiation: true},
		},
	}
}

func TestExporter_ExamDocument(t *testing.T) {
	x := NewExporter(nil)
	pkg, err := x.ExamDocument(sampleExam(), false)
	if err != nil {
		t.Fatalf("ExamDocument() error = %v", err)
	}
	doc := renderedDocument(t, pkg)
	for _, want := range []string{
		schoolBanner, "Partie A", "Partie B",
		"Question 1. Choisir (10 pts)", "☐ A. Oui", "☐ Vrai", "Question de différenciation",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("student paper lacks %q", want)
		}
	}
	if strings.Contains(doc, "Corrigé") {
		t.Error("student paper must not carry corrections")
	}
}

func TestExporter_ExamDocument_AnswerKeySuperset(t *testing.T) {
	x := NewExporter(nil)
	key, err := x.ExamDocument(sampleExam(), true)
	if err != nil {
		t.Fatalf("ExamDocument(answers) error = %v", err)
	}
	doc := renderedDocument(t, key)
	for _, want := range []string{
		// Superscripts flatten to caret notation before printing.
		"CORRECTION", "☐ A. Oui", "Corrigé : Oui", "Corrigé : 12 cm^2", "La Terre est plate : Faux",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("answer key lacks %q", want)
		}
	}
}

func TestExporter_AssessmentArchive(t *testing.T) {
	tpl := testTemplate(t, `<w:p><w:r><w:t>Critère {critere}</w:t></w:r></w:p>`)
	x := NewExporter(nil)
	p := samplePlan()

	memberNames := func() []string {
		b, err := x.AssessmentArchive(tpl, p)
		if err != nil {
			t.Fatalf("AssessmentArchive() error = %v", err)
		}
		zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		var names []string
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		return names
	}

	first := memberNames()
	second := memberNames()

	if len(first) != 3 {
		t.Fatalf("archive has %d members, want 2 documents + overview: %v", len(first), first)
	}
	wantDoc := "Evaluations_Les_fractions/Eval_Critere_A_Les_fractions.docx"
	if first[0] != wantDoc {
		t.Errorf("member[0] = %q, want %q", first[0], wantDoc)
	}
	if first[2] != "Evaluations_Les_fractions/Apercu.xlsx" {
		t.Errorf("member[2] = %q", first[2])
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("member names differ across exports: %q vs %q", first[i], second[i])
		}
	}
}

func TestExporter_AssessmentArchive_NoPartialOutput(t *testing.T) {
	x := NewExporter(nil)
	p := samplePlan()
	if _, err := x.AssessmentArchive([]byte("junk"), p); err == nil {
		t.Fatal("AssessmentArchive() error = nil for corrupt template")
	}
	p.Assessments = nil
	tpl := testTemplate(t, `<w:p/>`)
	if _, err := x.AssessmentArchive(tpl, p); err == nil {
		t.Fatal("AssessmentArchive() error = nil for plan without assessments")
	}
}

func TestExporter_ConsolidatedDocument(t *testing.T) {
	x := NewExporter(nil)
	p1 := samplePlan()
	p2 := samplePlan()
	p2.Title = "Les volcans"
	p2.Subject = "Sciences"

	pkg, err := x.ConsolidatedDocument([]*plan.UnitPlan{p1, p2}, "PEI 2")
	if err != nil {
		t.Fatalf("ConsolidatedDocument() error = %v", err)
	}
	doc := renderedDocument(t, pkg)
	for _, want := range []string{"Plans d'unités - PEI 2", "Mathématiques", "Sciences", "Les fractions", "Les volcans", "A, C"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document lacks %q", want)
		}
	}
	// Subjects are emitted alphabetically.
	if strings.Index(doc, "Mathématiques") > strings.Index(doc, "Les volcans") {
		t.Error("subject sections out of order")
	}
}

func TestFilenames(t *testing.T) {
	tests := []struct{ got, want string }{
		{PlanFilename("Les fractions / décimaux"), "Plan_Unite_Les_fractions_décimaux.docx"},
		{ExamFilename("Sciences", "PEI 3", "Semestre 1"), "Examen_Sciences_PEI_3_Semestre_1.docx"},
		{CorrectionFilename("Sciences", "PEI 3", "Semestre 1"), "CORRECTION_Examen_Sciences_PEI_3_Semestre_1.docx"},
		{ArchiveFilename("Unité!"), "Evaluations_Unité.zip"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("filename = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestAssessmentFilename_TruncatesTitle(t *testing.T) {
	long := strings.Repeat("a", 40)
	got := AssessmentFilename("B", long)
	want := "Eval_Critere_B_" + strings.Repeat("a", maxNameFragment) + ".docx"
	if got != want {
		t.Errorf("AssessmentFilename() = %q, want %q", got, want)
	}
}

func TestExporter_AssessmentDocument_BrokenLoopFails(t *testing.T) {
	tpl := testTemplate(t, `<w:p><w:r><w:t>{#exercices}{titre}{/rubriques}</w:t></w:r></w:p>`)
	x := NewExporter(nil)
	p := samplePlan()

	if _, err := x.AssessmentDocument(tpl, p, &p.Assessments[0]); err == nil {
		t.Fatal("AssessmentDocument() error = nil, want failure on a broken loop")
	}
}

func TestAssessmentTags_BilingualAddsArabicSet(t *testing.T) {
	p := samplePlan()
	p.Subject = "Arts"
	p.Arabic.Title = "الكسور"
	a := &p.Assessments[0]
	a.Arabic.CriterionName = "المعرفة والفهم"
	a.Arabic.Strands = []string{"الجانب الأول"}

	tags := AssessmentTags(p, a)
	if tags["nom_critere_ar"] != "المعرفة والفهم" {
		t.Errorf("nom_critere_ar = %v", tags["nom_critere_ar"])
	}
	if tags["unite_ar"] != "الكسور" {
		t.Errorf("unite_ar = %v", tags["unite_ar"])
	}
	aspects, ok := tags["aspects_ar"].([]map[string]any)
	if !ok || len(aspects) != 1 || aspects[0]["text"] != "الجانب الأول" {
		t.Errorf("aspects_ar = %v", tags["aspects_ar"])
	}
}

func TestAssessmentTags_NonBilingualOmitsArabicSet(t *testing.T) {
	p := samplePlan()
	tags := AssessmentTags(p, &p.Assessments[0])
	for key := range tags {
		if strings.HasSuffix(key, "_ar") {
			t.Errorf("unexpected Arabic tag %q for %s", key, p.Subject)
		}
	}
}

func TestExporter_ExamDocument_AnswerSpaceByType(t *testing.T) {
	dotted := strings.Repeat(".", 90)
	tests := []struct {
		qType     string
		wantLines int
	}{
		{exam.TypeFillBlanks, 2},
		{exam.TypeMatch, 4},
		{exam.TypeDefinitions, 3},
	}
	for _, tt := range tests {
		t.Run(tt.qType, func(t *testing.T) {
			x := NewExporter(nil)
			doc, err := x.ExamDocument(&exam.Exam{
				Subject: "Sciences", Semester: "Semestre 1", TotalPoints: 5,
				Questions: []exam.Question{{Type: tt.qType, Title: "Q1", Points: 5, Content: "Compléter."}},
			}, false)
			if err != nil {
				t.Fatalf("ExamDocument() error = %v", err)
			}
			if got := strings.Count(renderedDocument(t, doc), dotted); got != tt.wantLines {
				t.Errorf("answer lines = %d, want %d", got, tt.wantLines)
			}
		})
	}
}

func TestExporter_ExamDocument_Resources(t *testing.T) {
	x := NewExporter(nil)
	doc, err := x.ExamDocument(&exam.Exam{
		Subject: "Sciences", Semester: "Semestre 1", TotalPoints: 5,
		Resources: []exam.Resource{
			{Title: "Texte d'appui", Type: "text", Content: "Un extrait à lire."},
			{Title: "Carte", Type: "image", ImageDescription: "Carte du relief"},
		},
		Questions: []exam.Question{{
			Type: exam.TypeLongAnswer, Title: "Q1", Points: 5,
			Resource: &exam.Resource{Title: "Tableau de données", Type: "table", Content: "A | B"},
		}},
	}, false)
	if err != nil {
		t.Fatalf("ExamDocument() error = %v", err)
	}
	rendered := renderedDocument(t, doc)
	for _, want := range []string{
		"RESSOURCES GÉNÉRALES",
		"Ressource 1 : Texte d'appui",
		"Un extrait à lire.",
		"[Insérer Image : Carte du relief]",
		"Ressource : Tableau de données",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("document lacks %q", want)
		}
	}
}
