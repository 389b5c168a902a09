// Package plan holds the canonical MYP unit-plan records and the
// normalization that produces them from AI output or manual edits.
package plan

import (
	"regexp"
	"strings"
)

// UnitPlan is the canonical, always-complete unit-plan record. Every field is
// defined after normalization; consumers never see missing substructure.
type UnitPlan struct {
	ID          string `json:"id"`
	TeacherName string `json:"teacherName"`
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	GradeLevel  string `json:"gradeLevel"`
	Duration    string `json:"duration"`
	Chapters    string `json:"chapters"`

	KeyConcept         string           `json:"keyConcept"`
	RelatedConcepts    []string         `json:"relatedConcepts"`
	GlobalContext      string           `json:"globalContext"`
	StatementOfInquiry string           `json:"statementOfInquiry"`
	InquiryQuestions   InquiryQuestions `json:"inquiryQuestions"`

	Objectives          []string `json:"objectives"`
	ATLSkills           []string `json:"atlSkills"`
	Content             string   `json:"content"`
	LearningExperiences string   `json:"learningExperiences"`

	SummativeAssessment string `json:"summativeAssessment"`
	FormativeAssessment string `json:"formativeAssessment"`
	Differentiation     string `json:"differentiation"`

	Resources  string     `json:"resources"`
	Reflection Reflection `json:"reflection"`

	Assessments []Assessment `json:"assessments"`

	// Arabic carries the secondary-language version for bilingual subjects
	// (Arts, EPS). It is zero-valued for every other subject.
	Arabic PlanTranslation `json:"arabic,omitempty"`
}

// InquiryQuestions groups the three MYP inquiry question kinds.
type InquiryQuestions struct {
	Factual    []string `json:"factual"`
	Conceptual []string `json:"conceptual"`
	Debatable  []string `json:"debatable"`
}

// Reflection holds the three reflection stages of a unit plan.
type Reflection struct {
	Prior  string `json:"prior"`
	During string `json:"during"`
	After  string `json:"after"`
}

// PlanTranslation is the Arabic rendition of the translatable plan fields.
type PlanTranslation struct {
	Title               string   `json:"title"`
	Duration            string   `json:"duration"`
	Chapters            string   `json:"chapters"`
	KeyConcept          string   `json:"keyConcept"`
	RelatedConcepts     []string `json:"relatedConcepts"`
	GlobalContext       string   `json:"globalContext"`
	StatementOfInquiry  string   `json:"statementOfInquiry"`
	Factual             []string `json:"factual"`
	Conceptual          []string `json:"conceptual"`
	Debatable           []string `json:"debatable"`
	Objectives          []string `json:"objectives"`
	ATLSkills           []string `json:"atlSkills"`
	Content             string   `json:"content"`
	LearningExperiences string   `json:"learningExperiences"`
	SummativeAssessment string   `json:"summativeAssessment"`
	FormativeAssessment string   `json:"formativeAssessment"`
	Differentiation     string   `json:"differentiation"`
	Resources           string   `json:"resources"`
	ReflectionPrior     string   `json:"reflectionPrior"`
	ReflectionDuring    string   `json:"reflectionDuring"`
	ReflectionAfter     string   `json:"reflectionAfter"`
}

// Assessment is one criterion-referenced assessment owned by a unit plan.
type Assessment struct {
	Criterion     string `json:"criterion"`
	CriterionName string `json:"criterionName"`
	MaxPoints     int    `json:"maxPoints"`

	Strands    []string    `json:"strands"`
	RubricRows []RubricRow `json:"rubricRows"`
	Exercises  []Exercise  `json:"exercises"`

	Arabic AssessmentTranslation `json:"arabic,omitempty"`
}

// RubricRow is one achievement band of an assessment rubric.
type RubricRow struct {
	Level      string `json:"level"`
	Descriptor string `json:"descriptor"`
}

// Exercise is one task inside a criterion assessment. One exercise per strand
// is the instruction given to the generator; it is advisory and normalization
// does not pad or truncate to enforce it.
type Exercise struct {
	Title              string `json:"title"`
	Content            string `json:"content"`
	CriterionReference string `json:"criterionReference"`
}

// AssessmentTranslation is the Arabic rendition of an assessment.
type AssessmentTranslation struct {
	CriterionName string   `json:"criterionName"`
	Strands       []string `json:"strands"`
}

// minObjectives is the lower bound on criterion objectives before a plan is
// considered saveable.
const minObjectives = 2

// Saveable reports whether the plan carries enough criterion objectives to
// be persisted.
func (p *UnitPlan) Saveable() bool {
	return len(p.Objectives) >= minObjectives
}

var criterionLetterRe = regexp.MustCompile(`(?i)crit(?:ère|erion|ere)\s+([A-D])\b`)

// CriterionLetters returns the unique criterion letters covered by the plan,
// in A-D order: from its assessments when present, otherwise parsed
// heuristically from the objective texts.
func (p *UnitPlan) CriterionLetters() []string {
	seen := map[string]bool{}
	for _, a := range p.Assessments {
		if a.Criterion != "" {
			seen[strings.ToUpper(a.Criterion)] = true
		}
	}
	if len(seen) == 0 {
		for _, obj := range p.Objectives {
			for _, m := range criterionLetterRe.FindAllStringSubmatch(obj, -1) {
				seen[strings.ToUpper(m[1])] = true
			}
		}
	}
	var letters []string
	for _, l := range []string{"A", "B", "C", "D"} {
		if seen[l] {
			letters = append(letters, l)
		}
	}
	return letters
}
