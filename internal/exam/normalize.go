package exam

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Normalization guarantees three invariants on every exam that leaves this
// package: question points sum exactly to the expected total, exactly one
// question is marked as the differentiation question, and every question has
// a positive point value. A point-sum discrepancy is absorbed into a single
// designated question rather than spread across the paper, so the other
// point values stay exactly as generated.

const defaultQuestionPoints = 2

// Context carries the request-side fields that always win over whatever the
// generated payload claims.
type Context struct {
	Subject     string
	Grade       string
	Semester    string
	TeacherName string
	ClassName   string
	TotalPoints int
}

// Normalize builds the canonical Exam from an arbitrary decoded JSON object.
func Normalize(raw map[string]any, rc Context) Exam {
	if raw == nil {
		raw = map[string]any{}
	}
	if rc.TotalPoints <= 0 {
		rc.TotalPoints = DefaultTotalPoints
	}

	e := Exam{
		ID:          getString(raw, "", "id"),
		Title:       getString(raw, "Examen de "+rc.Subject, "title", "titre"),
		Subject:     rc.Subject,
		Grade:       rc.Grade,
		Semester:    rc.Semester,
		TeacherName: rc.TeacherName,
		ClassName:   rc.ClassName,
		Duration:    getString(raw, "2 heures", "duration", "duree"),
		Difficulty:  getString(raw, "Moyen", "difficulty", "difficulte"),
		Style:       getString(raw, StyleFor(rc.Grade), "style"),
		TotalPoints: rc.TotalPoints,
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	e.Resources = normalizeResources(raw)

	items, _ := firstList(raw, "questions")
	e.Questions = make([]Question, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		e.Questions = append(e.Questions, normalizeQuestion(m, i))
	}

	markDifferentiation(e.Questions)
	correctPointSum(e.Questions, e.TotalPoints)
	return e
}

// NormalizeJSON decodes and normalizes in one step; undecodable input yields
// an exam with no questions.
func NormalizeJSON(data []byte, rc Context) Exam {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
	}
	return Normalize(raw, rc)
}

func normalizeQuestion(m map[string]any, index int) Question {
	q := Question{
		ID:            getString(m, "", "id"),
		Section:       getString(m, "", "section"),
		Type:          getString(m, TypeLongAnswer, "type"),
		Title:         getString(m, "Question "+strconv.Itoa(index+1), "title", "titre"),
		Content:       getString(m, "", "content", "contenu", "enonce"),
		Points:        getInt(m, defaultQuestionPoints, "points"),
		CorrectAnswer: getString(m, "", "correctAnswer", "bonne_reponse"),
		ExpectedLines: getInt(m, 0, "expectedLines", "lignes_attendues"),
		Answer:        getString(m, "", "answer", "reponse", "correction"),
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if !knownTypes[q.Type] {
		q.Type = TypeLongAnswer
	}
	if q.Points <= 0 {
		q.Points = defaultQuestionPoints
	}

	q.Options = getStrings(m, "options", "choix")
	q.Statements = normalizeStatements(m)
	q.Resource = questionResource(m)

	if v, ok := m["pointsPerStatement"].(float64); ok && v > 0 {
		q.PointsPerStatement = v
	} else if q.Type == TypeTrueFalse && len(q.Statements) > 0 {
		q.PointsPerStatement = float64(q.Points) / float64(len(q.Statements))
	}

	if b, ok := m["isDifferentiation"].(bool); ok {
		q.IsDifferentiation = b
	}
	return q
}

func normalizeResources(raw map[string]any) []Resource {
	items, _ := firstList(raw, "resources", "ressources")
	out := make([]Resource, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if r := resourceFrom(m); r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func questionResource(m map[string]any) *Resource {
	rm, ok := m["resource"].(map[string]any)
	if !ok {
		if rm, ok = m["ressource"].(map[string]any); !ok {
			return nil
		}
	}
	return resourceFrom(rm)
}

// resourceFrom builds a Resource, dropping entries with no usable content.
func resourceFrom(m map[string]any) *Resource {
	r := Resource{
		Title:            getString(m, "", "title", "titre"),
		Type:             strings.ToLower(getString(m, "text", "type")),
		Content:          getString(m, "", "content", "contenu"),
		ImageDescription: getString(m, "", "imageDescription", "description_image"),
	}
	if r.Title == "" && r.Content == "" && r.ImageDescription == "" {
		return nil
	}
	return &r
}

func normalizeStatements(m map[string]any) []Statement {
	items, _ := firstList(m, "statements", "affirmations")
	out := make([]Statement, 0, len(items))
	for _, it := range items {
		sm, ok := it.(map[string]any)
		if !ok {
			if s, ok := it.(string); ok {
				out = append(out, Statement{Statement: s})
			}
			continue
		}
		st := Statement{Statement: getString(sm, "", "statement", "affirmation", "texte")}
		if b, ok := sm["isTrue"].(bool); ok {
			st.IsTrue = b
		} else if b, ok := sm["vrai"].(bool); ok {
			st.IsTrue = b
		}
		out = append(out, st)
	}
	return out
}

// markDifferentiation leaves exactly one question flagged: the first flagged
// one wins, and when none is flagged the last question takes the role.
func markDifferentiation(qs []Question) {
	if len(qs) == 0 {
		return
	}
	found := -1
	for i := range qs {
		if qs[i].IsDifferentiation {
			if found == -1 {
				found = i
			} else {
				qs[i].IsDifferentiation = false
			}
		}
	}
	if found == -1 {
		qs[len(qs)-1].IsDifferentiation = true
	}
}

// correctPointSum absorbs the whole discrepancy between the generated sum
// and the expected total into one designated question: the last long-form
// question when one exists, otherwise the last question. When the absorption
// would drive the designated question below one point, it is clamped there
// and the remainder is taken from the other questions, last to first.
func correctPointSum(qs []Question, total int) {
	if len(qs) == 0 {
		return
	}
	sum := 0
	for i := range qs {
		sum += qs[i].Points
	}
	delta := total - sum
	if delta == 0 {
		return
	}

	target := len(qs) - 1
	for i := len(qs) - 1; i >= 0; i-- {
		if qs[i].Type == TypeProblem || qs[i].Type == TypeLongAnswer {
			target = i
			break
		}
	}

	qs[target].Points += delta
	if qs[target].Points < 1 {
		deficit := 1 - qs[target].Points
		qs[target].Points = 1
		for i := len(qs) - 1; i >= 0 && deficit > 0; i-- {
			if i == target {
				continue
			}
			take := qs[i].Points - 1
			if take > deficit {
				take = deficit
			}
			qs[i].Points -= take
			deficit -= take
		}
	}
}

func getString(m map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return def
}

func getInt(m map[string]any, def int, keys ...string) int {
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

func getStrings(m map[string]any, keys ...string) []string {
	items, ok := firstList(m, keys...)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstList(m map[string]any, keys ...string) ([]any, bool) {
	for _, k := range keys {
		if l, ok := m[k].([]any); ok {
			return l, true
		}
	}
	return nil, false
}
