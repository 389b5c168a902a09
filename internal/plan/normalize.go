package plan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/medch24/planpei/internal/reference"
)

// Normalization is total and idempotent: any map in, a fully-populated
// UnitPlan out, and re-normalizing a canonical record changes nothing.
// Each field is resolved by a rule: candidate source keys in priority order
// (canonical English key first, then localized aliases), a shape check, and
// a fixed default. A key that is present but of the wrong shape is skipped,
// never coerced into the field; in particular a non-array value never gets
// wrapped into a one-element array.

// Default values for fields the source leaves empty.
const (
	defaultTitle     = "Nouvelle Unité"
	defaultDuration  = "10 heures"
	defaultCriterion = "A"
	defaultMaxPoints = 8
)

// catalogue supplies the criterion display names used as defaults. The
// embedded reference data cannot fail to parse; a failure would surface in
// the reference package's own tests.
var catalogue = sync.OnceValue(func() *reference.Data {
	d, err := reference.Load("")
	if err != nil {
		return &reference.Data{}
	}
	return d
})

// stringRule resolves one scalar text field of the plan.
type stringRule struct {
	keys  []string
	def   string
	set   func(*UnitPlan, string)
	setAr func(*PlanTranslation, string)
}

// listRule resolves one string-array field of the plan.
type listRule struct {
	keys  []string
	set   func(*UnitPlan, []string)
	setAr func(*PlanTranslation, []string)
}

var planStringRules = []stringRule{
	{
		keys:  []string{"title", "titre", "titre_unite"},
		def:   defaultTitle,
		set:   func(p *UnitPlan, v string) { p.Title = v },
		setAr: func(a *PlanTranslation, v string) { a.Title = v },
	},
	{
		keys: []string{"teacherName", "enseignant", "nom_enseignant"},
		set:  func(p *UnitPlan, v string) { p.TeacherName = v },
	},
	{
		keys:  []string{"duration", "duree"},
		def:   defaultDuration,
		set:   func(p *UnitPlan, v string) { p.Duration = v },
		setAr: func(a *PlanTranslation, v string) { a.Duration = v },
	},
	{
		keys:  []string{"chapters", "chapitres", "lessons"},
		set:   func(p *UnitPlan, v string) { p.Chapters = v },
		setAr: func(a *PlanTranslation, v string) { a.Chapters = v },
	},
	{
		keys:  []string{"keyConcept", "concept_cle"},
		set:   func(p *UnitPlan, v string) { p.KeyConcept = v },
		setAr: func(a *PlanTranslation, v string) { a.KeyConcept = v },
	},
	{
		keys:  []string{"globalContext", "contexte_mondial"},
		set:   func(p *UnitPlan, v string) { p.GlobalContext = v },
		setAr: func(a *PlanTranslation, v string) { a.GlobalContext = v },
	},
	{
		keys:  []string{"statementOfInquiry", "enonce_recherche", "enonce_de_recherche"},
		set:   func(p *UnitPlan, v string) { p.StatementOfInquiry = v },
		setAr: func(a *PlanTranslation, v string) { a.StatementOfInquiry = v },
	},
	{
		keys:  []string{"content", "contenu"},
		set:   func(p *UnitPlan, v string) { p.Content = v },
		setAr: func(a *PlanTranslation, v string) { a.Content = v },
	},
	{
		keys:  []string{"learningExperiences", "activites_apprentissage", "processus_apprentissage"},
		set:   func(p *UnitPlan, v string) { p.LearningExperiences = v },
		setAr: func(a *PlanTranslation, v string) { a.LearningExperiences = v },
	},
	{
		keys:  []string{"summativeAssessment", "evaluation_sommative"},
		set:   func(p *UnitPlan, v string) { p.SummativeAssessment = v },
		setAr: func(a *PlanTranslation, v string) { a.SummativeAssessment = v },
	},
	{
		keys:  []string{"formativeAssessment", "evaluation_formative"},
		set:   func(p *UnitPlan, v string) { p.FormativeAssessment = v },
		setAr: func(a *PlanTranslation, v string) { a.FormativeAssessment = v },
	},
	{
		keys:  []string{"differentiation", "differenciation"},
		set:   func(p *UnitPlan, v string) { p.Differentiation = v },
		setAr: func(a *PlanTranslation, v string) { a.Differentiation = v },
	},
	{
		keys:  []string{"resources", "ressources"},
		set:   func(p *UnitPlan, v string) { p.Resources = v },
		setAr: func(a *PlanTranslation, v string) { a.Resources = v },
	},
}

var planListRules = []listRule{
	{
		keys:  []string{"relatedConcepts", "concepts_connexes"},
		set:   func(p *UnitPlan, v []string) { p.RelatedConcepts = v },
		setAr: func(a *PlanTranslation, v []string) { a.RelatedConcepts = v },
	},
	{
		keys:  []string{"objectives", "objectifs"},
		set:   func(p *UnitPlan, v []string) { p.Objectives = v },
		setAr: func(a *PlanTranslation, v []string) { a.Objectives = v },
	},
	{
		keys:  []string{"atlSkills", "approches_apprentissage"},
		set:   func(p *UnitPlan, v []string) { p.ATLSkills = v },
		setAr: func(a *PlanTranslation, v []string) { a.ATLSkills = v },
	},
}

// Normalize builds the canonical UnitPlan from an arbitrary decoded JSON
// object. The subject and grade of the requesting context always win over
// whatever the source claims.
func Normalize(raw map[string]any, subject, grade string) UnitPlan {
	if raw == nil {
		raw = map[string]any{}
	}
	var p UnitPlan

	p.ID = pickString(raw, "", "id")
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Subject = subject
	p.GradeLevel = grade

	bilingual := IsBilingual(subject)
	// Arabic values live either under nested "arabic" (canonical records) or
	// as top-level "_ar"-suffixed keys (generator output).
	arSrc := pickMap(raw, "arabic")

	for _, r := range planStringRules {
		r.set(&p, pickString(raw, r.def, r.keys...))
		if bilingual && r.setAr != nil {
			v := pickString(arSrc, "", r.keys...)
			if v == "" {
				v = pickString(raw, "", arKeys(r.keys)...)
			}
			r.setAr(&p.Arabic, v)
		}
	}
	for _, r := range planListRules {
		r.set(&p, pickStrings(raw, r.keys...))
		if bilingual && r.setAr != nil {
			v := pickStrings(arSrc, r.keys...)
			if len(v) == 0 {
				v = pickStrings(raw, arKeys(r.keys)...)
			}
			r.setAr(&p.Arabic, v)
		}
	}

	iq := pickMap(raw, "inquiryQuestions", "questions_recherche")
	p.InquiryQuestions = InquiryQuestions{
		Factual:    pickStrings(iq, "factual", "factuelles"),
		Conceptual: pickStrings(iq, "conceptual", "conceptuelles"),
		Debatable:  pickStrings(iq, "debatable", "debat"),
	}

	refl := pickMap(raw, "reflection", "reflexion")
	p.Reflection = Reflection{
		Prior:  pickString(refl, "", "prior", "avant"),
		During: pickString(refl, "", "during", "pendant"),
		After:  pickString(refl, "", "after", "apres"),
	}

	if bilingual {
		iqAr := pickMap(raw, "inquiryQuestions_ar", "questions_recherche_ar")
		p.Arabic.Factual = firstNonEmpty(pickStrings(arSrc, "factual"), pickStrings(iqAr, "factual", "factuelles"))
		p.Arabic.Conceptual = firstNonEmpty(pickStrings(arSrc, "conceptual"), pickStrings(iqAr, "conceptual", "conceptuelles"))
		p.Arabic.Debatable = firstNonEmpty(pickStrings(arSrc, "debatable"), pickStrings(iqAr, "debatable", "debat"))

		reflAr := pickMap(raw, "reflection_ar", "reflexion_ar")
		p.Arabic.ReflectionPrior = pickString(arSrc, pickString(reflAr, "", "prior", "avant"), "reflectionPrior")
		p.Arabic.ReflectionDuring = pickString(arSrc, pickString(reflAr, "", "during", "pendant"), "reflectionDuring")
		p.Arabic.ReflectionAfter = pickString(arSrc, pickString(reflAr, "", "after", "apres"), "reflectionAfter")
	}

	p.Assessments = normalizeAssessments(raw, bilingual)

	return p
}

// NormalizeJSON decodes and normalizes in one step. Undecodable input yields
// the all-defaults plan rather than an error; the caller already validated
// extraction upstream.
func NormalizeJSON(data []byte, subject, grade string) UnitPlan {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
	}
	return Normalize(raw, subject, grade)
}

// normalizeAssessments accepts either a list of assessment objects or the
// legacy single-object form, and normalizes each element.
func normalizeAssessments(raw map[string]any, bilingual bool) []Assessment {
	var items []any
	for _, k := range []string{"assessments", "evaluations", "donnees_evaluation"} {
		switch v := raw[k].(type) {
		case []any:
			items = v
		case map[string]any:
			items = []any{v}
		}
		if items != nil {
			break
		}
	}
	if items == nil {
		if v, ok := raw["assessmentData"].(map[string]any); ok {
			items = []any{v}
		}
	}

	out := make([]Assessment, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, normalizeAssessment(m, bilingual))
	}
	return out
}

func normalizeAssessment(m map[string]any, bilingual bool) Assessment {
	a := Assessment{
		Criterion:     pickString(m, defaultCriterion, "criterion", "critere", "lettre_critere"),
		CriterionName: pickString(m, "", "criterionName", "nom_critere"),
		MaxPoints:     pickInt(m, defaultMaxPoints, "maxPoints", "points_max", "max"),
	}
	a.Criterion = strings.ToUpper(strings.TrimSpace(a.Criterion))
	if a.CriterionName == "" {
		a.CriterionName = catalogue().CriterionName(a.Criterion)
	}

	a.Strands = pickStrings(m, "strands", "aspects", "objectifs_specifiques")
	if len(a.Strands) == 0 {
		a.Strands = []string{"i. Aspect 1", "ii. Aspect 2", "iii. Aspect 3"}
	}

	a.RubricRows = normalizeRubric(m)
	a.Exercises = normalizeExercises(m)

	if bilingual {
		arSrc := pickMap(m, "arabic")
		a.Arabic.CriterionName = pickString(arSrc,
			pickString(m, "", "criterionName_ar", "nom_critere_ar"), "criterionName")
		a.Arabic.Strands = firstNonEmpty(pickStrings(arSrc, "strands"),
			pickStrings(m, "strands_ar", "aspects_ar"))
	}
	return a
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

func normalizeRubric(m map[string]any) []RubricRow {
	items, _ := firstList(m, "rubricRows", "rubric", "rubriques", "grille")
	rows := make([]RubricRow, 0, len(items))
	for _, it := range items {
		rm, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, RubricRow{
			Level:      pickString(rm, "", "level", "niveau"),
			Descriptor: pickString(rm, "", "descriptor", "descripteur", "description"),
		})
	}
	if len(rows) == 0 {
		for _, band := range []string{"1-2", "3-4", "5-6", "7-8"} {
			rows = append(rows, RubricRow{Level: band, Descriptor: "L'élève est capable de..."})
		}
	}
	return rows
}

func normalizeExercises(m map[string]any) []Exercise {
	items, _ := firstList(m, "exercises", "exercices")
	out := make([]Exercise, 0, len(items))
	for _, it := range items {
		em, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Exercise{
			Title:              pickString(em, "Exercice", "title", "titre"),
			Content:            pickString(em, "", "content", "contenu", "enonce"),
			CriterionReference: pickString(em, "", "criterionReference", "ref", "reference_critere"),
		})
	}
	if len(out) == 0 {
		out = append(out, Exercise{
			Title:              "Exercice",
			Content:            "Énoncé de l'exercice à compléter.",
			CriterionReference: "Critère A - i",
		})
	}
	return out
}

// arKeys derives the Arabic alias keys for a rule by suffixing each
// candidate key.
func arKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "_ar"
	}
	return out
}

// pickString returns the value of the first candidate key holding a
// non-empty string, or the default.
func pickString(m map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return def
}

// pickStrings returns the first candidate key holding an array, with scalar
// elements stringified and non-scalar elements dropped. A present non-array
// value is skipped, never wrapped. Absence yields the empty slice.
func pickStrings(m map[string]any, keys ...string) []string {
	items, ok := firstList(m, keys...)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			out = append(out, fmt.Sprintf("%t", v))
		}
	}
	return out
}

// pickInt coerces the first numeric-looking candidate, accepting JSON
// numbers and digit strings.
func pickInt(m map[string]any, def int, keys ...string) int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return def
}

// pickMap returns the first candidate key holding an object, or an empty map.
func pickMap(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if mm, ok := m[k].(map[string]any); ok {
			return mm
		}
	}
	return map[string]any{}
}

func firstList(m map[string]any, keys ...string) ([]any, bool) {
	for _, k := range keys {
		if l, ok := m[k].([]any); ok {
			return l, true
		}
	}
	return nil, false
}
