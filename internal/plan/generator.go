package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medch24/planpei/internal/ai"
	"github.com/medch24/planpei/internal/reference"
)

// Generator produces unit plans through an AI provider and repairs the
// output into canonical records.
type Generator struct {
	provider ai.Completer
	ref      *reference.Data
	logger   *slog.Logger
}

// NewGenerator builds a plan generator over the given provider chain.
func NewGenerator(provider ai.Completer, ref *reference.Data, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, ref: ref, logger: logger}
}

const systemInstructionFR = `Tu es un expert en pédagogie du Programme d'éducation intermédiaire (PEI) de l'IB.
Tu produis des plans d'unité complets, rigoureux et directement exploitables par un enseignant.
Réponds UNIQUEMENT avec un objet JSON valide, sans texte avant ni après, sans bloc de code.
Tout le contenu pédagogique est rédigé en français.`

const systemInstructionEN = `You are an expert in IB Middle Years Programme (MYP) pedagogy.
You produce complete, rigorous unit plans ready for classroom use.
Respond ONLY with a valid JSON object, no surrounding text, no code fences.
All pedagogical content is written in English.`

const systemInstructionBilingual = systemInstructionFR + `
Cette matière est enseignée en français ET en arabe : pour chaque champ textuel,
ajoute un champ homonyme suffixé "_ar" contenant la traduction arabe.`

// systemInstructionFor picks the prompt matching the subject's working
// language.
func systemInstructionFor(subject string) string {
	switch LanguageFor(subject) {
	case LangEnglish:
		return systemInstructionEN
	case LangBilingual:
		return systemInstructionBilingual
	default:
		return systemInstructionFR
	}
}

// GeneratePlan asks the provider for one full unit plan and returns the
// normalized record. The returned plan is always complete; generation
// failures surface as errors, malformed content does not.
func (g *Generator) GeneratePlan(ctx context.Context, subject, grade, chapters string) (UnitPlan, error) {
	prompt := g.planPrompt(subject, grade, chapters)

	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemInstructionFor(subject)},
			{Role: "user", Content: prompt},
		},
		JSONMode:    true,
		Temperature: 0.7,
		Task:        ai.TaskPlanGeneration,
	})
	if err != nil {
		return UnitPlan{}, fmt.Errorf("generate plan: %w", err)
	}

	payload := ai.ExtractJSON(resp.Content)
	if findings, err := ValidateShape([]byte(payload)); err == nil && len(findings) > 0 {
		g.logger.Warn("plan payload deviates from requested shape",
			"subject", subject, "grade", grade, "findings", strings.Join(findings, "; "))
	}

	p := NormalizeJSON([]byte(payload), subject, grade)
	p.Chapters = firstString(p.Chapters, chapters)
	return p, nil
}

// GenerateCourse asks for a whole year of units (four to six) built from the
// given chapter list and normalizes each one.
func (g *Generator) GenerateCourse(ctx context.Context, subject, grade, chapters string) ([]UnitPlan, error) {
	prompt := fmt.Sprintf(`Découpe le programme suivant de %s (%s) en 4 à 6 unités PEI cohérentes.
Programme :
%s

Réponds avec un tableau JSON où chaque élément est un plan d'unité complet au format demandé, et rien d'autre.
%s`, subject, grade, chapters, g.referenceBlock(subject))

	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemInstructionFor(subject)},
			{Role: "user", Content: prompt},
		},
		JSONMode:    true,
		Temperature: 0.7,
		Task:        ai.TaskPlanGeneration,
	})
	if err != nil {
		return nil, fmt.Errorf("generate course: %w", err)
	}

	payload := ai.ExtractJSON(resp.Content)
	var items []map[string]any
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		// Some models return a single object even when asked for an array.
		var one map[string]any
		if err2 := json.Unmarshal([]byte(payload), &one); err2 != nil {
			return nil, fmt.Errorf("generate course: decode payload: %w", err)
		}
		items = []map[string]any{one}
	}

	plans := make([]UnitPlan, 0, len(items))
	for _, it := range items {
		plans = append(plans, Normalize(it, subject, grade))
	}
	return plans, nil
}

// SuggestStatement asks for a single statement of inquiry tying the given
// concepts and context together.
func (g *Generator) SuggestStatement(ctx context.Context, subject, keyConcept string, relatedConcepts []string, globalContext string) (string, error) {
	prompt := fmt.Sprintf(`Rédige un énoncé de recherche PEI pour la matière %s,
reliant le concept clé "%s", les concepts connexes "%s" et le contexte mondial "%s".
Réponds avec un objet JSON {"statementOfInquiry": "..."} et rien d'autre.`,
		subject, keyConcept, strings.Join(relatedConcepts, ", "), globalContext)

	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemInstructionFor(subject)},
			{Role: "user", Content: prompt},
		},
		JSONMode:    true,
		Temperature: 0.8,
		Task:        ai.TaskSuggestion,
	})
	if err != nil {
		return "", fmt.Errorf("suggest statement: %w", err)
	}

	var out struct {
		StatementOfInquiry string `json:"statementOfInquiry"`
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSON(resp.Content)), &out); err != nil {
		return "", fmt.Errorf("suggest statement: decode payload: %w", err)
	}
	if out.StatementOfInquiry == "" {
		return "", fmt.Errorf("suggest statement: empty payload")
	}
	return out.StatementOfInquiry, nil
}

// SuggestInquiryQuestions asks for the three kinds of inquiry questions for
// an existing statement of inquiry.
func (g *Generator) SuggestInquiryQuestions(ctx context.Context, subject, statement string) (InquiryQuestions, error) {
	prompt := fmt.Sprintf(`Pour l'énoncé de recherche suivant en %s :
"%s"
propose 2 questions factuelles, 2 questions conceptuelles et 1 question invitant au débat.
Réponds avec un objet JSON {"factual": [...], "conceptual": [...], "debatable": [...]} et rien d'autre.`,
		subject, statement)

	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemInstructionFor(subject)},
			{Role: "user", Content: prompt},
		},
		JSONMode:    true,
		Temperature: 0.8,
		Task:        ai.TaskSuggestion,
	})
	if err != nil {
		return InquiryQuestions{}, fmt.Errorf("suggest inquiry questions: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(ai.ExtractJSON(resp.Content)), &raw); err != nil {
		return InquiryQuestions{}, fmt.Errorf("suggest inquiry questions: decode payload: %w", err)
	}
	return InquiryQuestions{
		Factual:    pickStrings(raw, "factual", "factuelles"),
		Conceptual: pickStrings(raw, "conceptual", "conceptuelles"),
		Debatable:  pickStrings(raw, "debatable", "debat"),
	}, nil
}

func (g *Generator) planPrompt(subject, grade, chapters string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Génère un plan d'unité PEI complet pour la matière %s, niveau %s.
Chapitres à couvrir :
%s

Le JSON doit contenir : title, duration, keyConcept, relatedConcepts, globalContext,
statementOfInquiry, inquiryQuestions {factual, conceptual, debatable}, objectives
(au moins 2 objectifs spécifiques, chacun préfixé par la lettre de son critère, ex. "Critère A: ..."),
atlSkills, content, learningExperiences, summativeAssessment, formativeAssessment,
differentiation, resources, reflection {prior, during, after},
et assessments : un objet par critère évalué avec criterion, criterionName, maxPoints,
strands (un par aspect évalué), rubricRows (niveaux 1-2, 3-4, 5-6, 7-8 avec descripteurs),
et exercises (un exercice par aspect, avec title, content et criterionReference).
`, subject, grade, chapters)
	b.WriteString(g.referenceBlock(subject))
	return b.String()
}

// referenceBlock constrains generation to the official MYP catalogue so that
// concepts and contexts come back exactly as published.
func (g *Generator) referenceBlock(subject string) string {
	if g.ref == nil {
		return ""
	}
	return fmt.Sprintf(`
Choisis le concept clé parmi : %s.
Choisis les concepts connexes parmi : %s.
Choisis le contexte mondial parmi : %s.`,
		strings.Join(g.ref.KeyConcepts, ", "),
		strings.Join(g.ref.RelatedConceptsFor(subject), ", "),
		strings.Join(g.ref.GlobalContexts, ", "))
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
