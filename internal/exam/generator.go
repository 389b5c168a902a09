package exam

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medch24/planpei/internal/ai"
)

// Generator produces exams through an AI provider and repairs the output
// into canonical records.
type Generator struct {
	provider ai.Completer
	logger   *slog.Logger
}

// NewGenerator builds an exam generator over the given provider chain.
func NewGenerator(provider ai.Completer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, logger: logger}
}

const systemInstructionExam = `Tu es un concepteur d'examens expérimenté pour les écoles internationales.
Tu produis des examens complets, équilibrés et imprimables tels quels.
Règles impératives :
- Le total des points vaut exactement le total demandé.
- Exactement une question est marquée "isDifferentiation": true (question de différenciation, plus accessible).
- Chaque question a un champ "points" strictement positif.
- Les types autorisés sont : QCM, Vrai-Faux, Textes à trous, Légender, Relier par flèche, Définitions, Analyse de documents, Réponse longue, Problème.
- Chaque question porte un champ "answer" avec le corrigé.
Réponds UNIQUEMENT avec un objet JSON valide, sans texte avant ni après.`

const systemInstructionExamEN = `You are an experienced exam designer for international schools.
You produce complete, balanced exams ready to print.
Hard rules:
- Question points sum exactly to the requested total.
- Exactly one question carries "isDifferentiation": true.
- Every question has a strictly positive "points" field.
- Allowed types: QCM, Vrai-Faux, Textes à trous, Légender, Relier par flèche, Définitions, Analyse de documents, Réponse longue, Problème.
- Every question carries an "answer" field with the correction.
Respond ONLY with a valid JSON object, no surrounding text.`

// StyleFor maps a grade label to the exam style its national milestone
// demands: Brevet style for 3ème, Bac style for 1ère and Terminale,
// Standard otherwise.
func StyleFor(grade string) string {
	g := strings.ToLower(grade)
	switch {
	case strings.Contains(g, "3ème") || strings.Contains(g, "3eme"):
		return "Brevet"
	case strings.Contains(g, "1ère") || strings.Contains(g, "1ere") || strings.Contains(g, "terminale"):
		return "Bac"
	default:
		return "Standard"
	}
}

// IsEnglishExam reports whether the exam must be written in English.
func IsEnglishExam(subject string) bool {
	return strings.Contains(strings.ToLower(subject), "anglais")
}

// Request describes one exam to generate.
type Request struct {
	Subject     string
	Grade       string
	Semester    string
	TeacherName string
	ClassName   string
	Difficulty  string
	TotalPoints int
	// Chapters is the free-text syllabus extract the exam must cover.
	Chapters string
}

// Generate asks the provider for one exam and returns the normalized record.
func (g *Generator) Generate(ctx context.Context, req Request) (Exam, error) {
	if req.TotalPoints <= 0 {
		req.TotalPoints = DefaultTotalPoints
	}

	sys := systemInstructionExam
	if IsEnglishExam(req.Subject) {
		sys = systemInstructionExamEN
	}

	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: sys},
			{Role: "user", Content: g.prompt(req)},
		},
		JSONMode:    true,
		Temperature: 0.7,
		Task:        ai.TaskExamGeneration,
	})
	if err != nil {
		return Exam{}, fmt.Errorf("generate exam: %w", err)
	}

	e := NormalizeJSON([]byte(ai.ExtractJSON(resp.Content)), Context{
		Subject:     req.Subject,
		Grade:       req.Grade,
		Semester:    req.Semester,
		TeacherName: req.TeacherName,
		ClassName:   req.ClassName,
		TotalPoints: req.TotalPoints,
	})
	if len(e.Questions) == 0 {
		return Exam{}, fmt.Errorf("generate exam: payload contained no questions")
	}
	if sum := e.PointsSum(); sum != e.TotalPoints {
		// correctPointSum guarantees this; a mismatch here is a bug.
		return Exam{}, fmt.Errorf("generate exam: corrected sum %d != total %d", sum, e.TotalPoints)
	}
	return e, nil
}

// GenerateSemesterPair produces the two semester exams for a subject and
// grade in one call, sequentially so the second prompt can avoid reusing the
// first exam's questions.
func (g *Generator) GenerateSemesterPair(ctx context.Context, req Request) (Exam, Exam, error) {
	req.Semester = "Semestre 1"
	first, err := g.Generate(ctx, req)
	if err != nil {
		return Exam{}, Exam{}, fmt.Errorf("semester 1: %w", err)
	}

	req.Semester = "Semestre 2"
	second, err := g.Generate(ctx, req)
	if err != nil {
		return Exam{}, Exam{}, fmt.Errorf("semester 2: %w", err)
	}
	return first, second, nil
}

func (g *Generator) prompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Génère un examen de %s pour la classe %s (%s), style %s, difficulté %s.
Total des points : %d.
`, req.Subject, req.Grade, req.Semester, StyleFor(req.Grade), defaultIfEmpty(req.Difficulty, "Moyen"), req.TotalPoints)
	if req.Chapters != "" {
		fmt.Fprintf(&b, "Programme à couvrir :\n%s\n", req.Chapters)
	}
	b.WriteString(`Le JSON doit contenir : title, duration, difficulty, et questions : un tableau où
chaque question a id, section, type, title, content, points, answer, et selon le type :
options et correctAnswer (QCM), statements [{statement, isTrue}] (Vrai-Faux),
expectedLines (Réponse longue, Analyse de documents, Problème).
La dernière question porte "isDifferentiation": true.`)
	return b.String()
}

func defaultIfEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
