package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medch24/planpei/internal/docx"
	"github.com/medch24/planpei/internal/plan"
)

// ConsolidatedDocument synthesizes a grade-wide overview: one section per
// subject, one card per unit plan, built without a template.
func (x *Exporter) ConsolidatedDocument(plans []*plan.UnitPlan, grade string) ([]byte, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("consolidated export: no plans for %q", grade)
	}

	bySubject := map[string][]*plan.UnitPlan{}
	for _, p := range plans {
		bySubject[p.Subject] = append(bySubject[p.Subject], p)
	}
	subjects := make([]string, 0, len(bySubject))
	for s := range bySubject {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	b := docx.NewBuilder()
	b.Paragraph(schoolBanner, docx.Format{Bold: true, Align: "center", Size: 14, SpaceAfter: 120})
	b.Paragraph("Plans d'unités - "+grade, docx.Format{Bold: true, Align: "center", Size: 13, SpaceAfter: 240})

	for _, subject := range subjects {
		b.Paragraph(subject, docx.Format{Bold: true, Size: 12, Shading: "D9E2F3", SpaceBefore: 240, SpaceAfter: 120})
		for _, p := range bySubject[subject] {
			x.writePlanCard(b, p)
		}
	}

	return b.Bytes()
}

func (x *Exporter) writePlanCard(b *docx.Builder, p *plan.UnitPlan) {
	b.Paragraph(clean(p.Title), docx.Format{Bold: true, Size: 11, SpaceBefore: 120, SpaceAfter: 40})

	rows := [][]string{
		{"Énoncé de recherche", clean(p.StatementOfInquiry)},
		{"Concept clé", clean(p.KeyConcept)},
		{"Concepts connexes", clean(strings.Join(p.RelatedConcepts, ", "))},
		{"Contexte mondial", clean(p.GlobalContext)},
		{"Durée", clean(p.Duration)},
	}
	if letters := p.CriterionLetters(); len(letters) > 0 {
		rows = append(rows, []string{"Critères évalués", strings.Join(letters, ", ")})
	}
	b.Table(rows, []int{2600, 7000}, false)
}
