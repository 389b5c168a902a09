package export

import (
	"fmt"
	"strings"

	"github.com/medch24/planpei/internal/docx"
	"github.com/medch24/planpei/internal/exam"
)

const schoolBanner = "LES ÉCOLES INTERNATIONALES AL KAWTHAR"

const answerColor = "C00000"

// defaultAnswerLines gives each written question type its answer space when
// the generator did not say how many lines to leave.
var defaultAnswerLines = map[string]int{
	exam.TypeLongAnswer:  6,
	exam.TypeDocAnalysis: 8,
	exam.TypeProblem:     10,
	exam.TypeDefinitions: 3,
	exam.TypeLabel:       4,
	exam.TypeFillBlanks:  2,
}

// ExamDocument synthesizes a printable exam. With withAnswers set, the same
// layout is produced with the correction appended in red after each
// question, so the answer key is a strict superset of the student paper.
func (x *Exporter) ExamDocument(e *exam.Exam, withAnswers bool) ([]byte, error) {
	b := docx.NewBuilder()

	b.Paragraph(schoolBanner, docx.Format{Bold: true, Align: "center", Size: 14, SpaceAfter: 120})
	title := fmt.Sprintf("Examen de %s - %s", e.Subject, e.Semester)
	if withAnswers {
		title = "CORRECTION - " + title
	}
	b.Paragraph(title, docx.Format{Bold: true, Align: "center", Size: 13, SpaceAfter: 180})

	b.Table([][]string{
		{"Matière", e.Subject, "Classe", firstNonBlank(e.ClassName, e.Grade)},
		{"Durée", e.Duration, "Enseignant(e)", e.TeacherName},
		{"Style", e.Style, "Note", fmt.Sprintf("............ / %d", e.TotalPoints)},
	}, []int{1700, 3100, 1700, 3100}, false)

	b.Paragraph("Nom et prénom : ..................................................    Date : ....................",
		docx.Format{SpaceBefore: 120, SpaceAfter: 240})

	if len(e.Resources) > 0 {
		b.Paragraph("RESSOURCES GÉNÉRALES", docx.Format{Bold: true, Size: 12, Shading: "FDE9D9", SpaceBefore: 200, SpaceAfter: 120})
		for i, r := range e.Resources {
			b.Paragraph(fmt.Sprintf("Ressource %d : %s", i+1, clean(r.Title)), docx.Format{Bold: true, SpaceAfter: 40})
			if body := resourceBody(r); body != "" {
				b.Paragraph(clean(body), docx.Format{SpaceAfter: 120})
			}
		}
	}

	section := ""
	for i, q := range e.Questions {
		if q.Section != "" && q.Section != section {
			section = q.Section
			b.Paragraph(clean(section), docx.Format{Bold: true, Size: 12, Shading: "D9E2F3", SpaceBefore: 200, SpaceAfter: 120})
		}
		x.writeQuestion(b, i+1, q, withAnswers)
	}

	return b.Bytes()
}

func (x *Exporter) writeQuestion(b *docx.Builder, number int, q exam.Question, withAnswers bool) {
	heading := fmt.Sprintf("Question %d. %s (%d pts)", number, clean(q.Title), q.Points)
	if q.IsDifferentiation {
		heading += "  ★"
	}
	b.Paragraph(heading, docx.Format{Bold: true, SpaceBefore: 160, SpaceAfter: 80})
	if q.IsDifferentiation {
		b.Paragraph("Question de différenciation", docx.Format{Italic: true, Color: "595959", SpaceAfter: 80})
	}
	if q.Content != "" {
		b.Paragraph(clean(q.Content), docx.Format{SpaceAfter: 80})
	}
	if q.Resource != nil {
		if q.Resource.Title != "" {
			b.Paragraph("Ressource : "+clean(q.Resource.Title), docx.Format{Italic: true, Color: "595959", SpaceAfter: 40})
		}
		if body := resourceBody(*q.Resource); body != "" {
			b.Paragraph(clean(body), docx.Format{SpaceAfter: 80})
		}
	}

	switch q.Type {
	case exam.TypeQCM:
		for i, opt := range q.Options {
			b.Paragraph(fmt.Sprintf("☐ %c. %s", 'A'+i, clean(opt)), docx.Format{SpaceAfter: 40})
		}
	case exam.TypeTrueFalse:
		for _, st := range q.Statements {
			b.Paragraph(clean(st.Statement), docx.Format{SpaceAfter: 20})
			b.Paragraph("☐ Vrai        ☐ Faux", docx.Format{SpaceAfter: 60})
		}
	default:
		lines := q.ExpectedLines
		if lines <= 0 {
			lines = defaultAnswerLines[q.Type]
		}
		if lines <= 0 {
			lines = 4
		}
		b.DottedLines(lines)
	}

	if withAnswers {
		b.Paragraph("Corrigé : "+clean(answerText(q)), docx.Format{Bold: true, Color: answerColor, SpaceBefore: 60, SpaceAfter: 120})
	}
}

// resourceBody flattens a resource into printable text; image and graph
// resources become an insertion placeholder.
func resourceBody(r exam.Resource) string {
	switch r.Type {
	case "image":
		return "[Insérer Image : " + firstNonBlank(r.ImageDescription, r.Title) + "]"
	case "graph", "graphique":
		return "[Insérer Graphique : " + firstNonBlank(r.ImageDescription, r.Content, r.Title) + "]"
	default:
		return r.Content
	}
}

// answerText flattens a question's correction into one string.
func answerText(q exam.Question) string {
	if q.Answer != "" {
		return q.Answer
	}
	if q.CorrectAnswer != "" {
		return q.CorrectAnswer
	}
	if len(q.Statements) > 0 {
		parts := make([]string, 0, len(q.Statements))
		for _, st := range q.Statements {
			verdict := "Faux"
			if st.IsTrue {
				verdict = "Vrai"
			}
			parts = append(parts, fmt.Sprintf("%s : %s", st.Statement, verdict))
		}
		return strings.Join(parts, "\n")
	}
	return "Voir barème."
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
