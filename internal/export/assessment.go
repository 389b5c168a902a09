package export

import (
	"strconv"

	"github.com/medch24/planpei/internal/plan"
)

// AssessmentTags maps one criterion assessment onto the assessment template
// tag set. The plan supplies the header context, the assessment the body.
func AssessmentTags(p *plan.UnitPlan, a *plan.Assessment) map[string]any {
	aspects := make([]map[string]any, 0, len(a.Strands))
	for _, s := range a.Strands {
		aspects = append(aspects, map[string]any{"text": clean(s)})
	}

	rubriques := make([]map[string]any, 0, len(a.RubricRows))
	for _, r := range a.RubricRows {
		rubriques = append(rubriques, map[string]any{
			"niveau":      clean(r.Level),
			"descripteur": clean(r.Descriptor),
		})
	}

	exercices := make([]map[string]any, 0, len(a.Exercises))
	for i, e := range a.Exercises {
		exercices = append(exercices, map[string]any{
			"numero":  strconv.Itoa(i + 1),
			"titre":   clean(e.Title),
			"contenu": clean(e.Content),
			"ref":     clean(e.CriterionReference),
		})
	}

	tags := map[string]any{
		"classe":                  clean(p.GradeLevel),
		"matiere":                 clean(p.Subject),
		"unite":                   clean(p.Title),
		"enonce_de_recherche":     clean(p.StatementOfInquiry),
		"enonce":                  clean(p.StatementOfInquiry),
		"enseignant":              clean(p.TeacherName),
		"critere":                 clean(a.Criterion),
		"lettre_critere":          clean(a.Criterion),
		"nom_critere":             clean(a.CriterionName),
		"nom_objectif_specifique": clean(a.CriterionName),
		"max":                     strconv.Itoa(a.MaxPoints),
		"aspects":                 aspects,
		"rubriques":               rubriques,
		"exercices":               exercices,
	}

	if plan.IsBilingual(p.Subject) {
		aspectsAr := make([]map[string]any, 0, len(a.Arabic.Strands))
		for _, s := range a.Arabic.Strands {
			aspectsAr = append(aspectsAr, map[string]any{"text": clean(s)})
		}
		tags["unite_ar"] = clean(p.Arabic.Title)
		tags["enonce_ar"] = clean(p.Arabic.StatementOfInquiry)
		tags["enonce_de_recherche_ar"] = clean(p.Arabic.StatementOfInquiry)
		tags["nom_critere_ar"] = clean(a.Arabic.CriterionName)
		tags["nom_objectif_specifique_ar"] = clean(a.Arabic.CriterionName)
		tags["aspects_ar"] = aspectsAr
	}
	return tags
}

// AssessmentDocument renders one criterion assessment into the given
// template.
func (x *Exporter) AssessmentDocument(template []byte, p *plan.UnitPlan, a *plan.Assessment) ([]byte, error) {
	return x.renderTemplate(template, AssessmentTags(p, a), "assessment", p.Title+" critère "+a.Criterion)
}
