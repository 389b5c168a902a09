package export

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medch24/planpei/internal/docx"
	"github.com/medch24/planpei/internal/mathtext"
	"github.com/medch24/planpei/internal/plan"
)

// Exporter renders records into documents.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter builds an Exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// clean prepares user or AI text for insertion into a document: math and
// table notation flattened, then brace delimiters neutralized so content can
// never be re-parsed as a template tag.
func clean(s string) string {
	return docx.EscapeDelims(mathtext.Normalize(s))
}

func cleanJoin(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			continue
		}
		cleaned = append(cleaned, clean(it))
	}
	return strings.Join(cleaned, "\n")
}

// PlanTags maps a unit plan onto the template tag set. Bilingual subjects
// get the full "_ar" tag set on top; other subjects omit those keys
// entirely, matching the monolingual templates.
func PlanTags(p *plan.UnitPlan) map[string]any {
	tags := map[string]any{
		"enseignant":              clean(p.TeacherName),
		"groupe_matiere":          clean(p.Subject),
		"annee_pei":               clean(p.GradeLevel),
		"titre_unite":             clean(p.Title),
		"duree":                   clean(p.Duration),
		"chapitres":               clean(p.Chapters),
		"concept_cle":             clean(p.KeyConcept),
		"concepts_connexes":       cleanJoin(p.RelatedConcepts),
		"contexte_mondial":        clean(p.GlobalContext),
		"enonce_de_recherche":     clean(p.StatementOfInquiry),
		"questions_factuelles":    cleanJoin(p.InquiryQuestions.Factual),
		"questions_conceptuelles": cleanJoin(p.InquiryQuestions.Conceptual),
		"questions_debat":         cleanJoin(p.InquiryQuestions.Debatable),
		"objectifs_specifiques":   cleanJoin(p.Objectives),
		"approches_apprentissage": cleanJoin(p.ATLSkills),
		"contenu":                 clean(p.Content),
		"processus_apprentissage": clean(p.LearningExperiences),
		"evaluation_sommative":    clean(p.SummativeAssessment),
		"evaluation_formative":    clean(p.FormativeAssessment),
		"differenciation":         clean(p.Differentiation),
		"ressources":              clean(p.Resources),
		"reflexion_avant":         clean(p.Reflection.Prior),
		"reflexion_pendant":       clean(p.Reflection.During),
		"reflexion_apres":         clean(p.Reflection.After),
	}

	if plan.IsBilingual(p.Subject) {
		ar := p.Arabic
		tags["titre_unite_ar"] = clean(ar.Title)
		tags["duree_ar"] = clean(ar.Duration)
		tags["chapitres_ar"] = clean(ar.Chapters)
		tags["concept_cle_ar"] = clean(ar.KeyConcept)
		tags["concepts_connexes_ar"] = cleanJoin(ar.RelatedConcepts)
		tags["contexte_mondial_ar"] = clean(ar.GlobalContext)
		tags["enonce_de_recherche_ar"] = clean(ar.StatementOfInquiry)
		tags["questions_factuelles_ar"] = cleanJoin(ar.Factual)
		tags["questions_conceptuelles_ar"] = cleanJoin(ar.Conceptual)
		tags["questions_debat_ar"] = cleanJoin(ar.Debatable)
		tags["objectifs_specifiques_ar"] = cleanJoin(ar.Objectives)
		tags["approches_apprentissage_ar"] = cleanJoin(ar.ATLSkills)
		tags["contenu_ar"] = clean(ar.Content)
		tags["processus_apprentissage_ar"] = clean(ar.LearningExperiences)
		tags["evaluation_sommative_ar"] = clean(ar.SummativeAssessment)
		tags["evaluation_formative_ar"] = clean(ar.FormativeAssessment)
		tags["differenciation_ar"] = clean(ar.Differentiation)
		tags["ressources_ar"] = clean(ar.Resources)
		tags["reflexion_avant_ar"] = clean(ar.ReflectionPrior)
		tags["reflexion_pendant_ar"] = clean(ar.ReflectionDuring)
		tags["reflexion_apres_ar"] = clean(ar.ReflectionAfter)
	}
	return tags
}

// PlanDocument renders a unit plan into the given template. A template
// whose tag set is wider than the record still renders, with the gaps
// logged and left blank.
func (x *Exporter) PlanDocument(template []byte, p *plan.UnitPlan) ([]byte, error) {
	return x.renderTemplate(template, PlanTags(p), "plan", p.Title)
}

func (x *Exporter) renderTemplate(template []byte, tags map[string]any, kind, label string) ([]byte, error) {
	c, err := docx.Open(template)
	if err != nil {
		return nil, fmt.Errorf("%s template: %w", kind, err)
	}

	rendered, err := docx.Render(c.Document(), tags)
	if err != nil {
		var te *docx.TagError
		if !errors.As(err, &te) {
			return nil, fmt.Errorf("rendering %s %q: %w", kind, label, err)
		}
		x.logger.Warn("template tags left unresolved",
			"kind", kind, "document", label, "tags", strings.Join(te.Missing, ", "))
	}

	c.SetDocument(docx.ForceLeftToRight(rendered))
	b, err := c.Bytes()
	if err != nil {
		return nil, fmt.Errorf("packaging %s %q: %w", kind, label, err)
	}
	return b, nil
}
