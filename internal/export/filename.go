// Package export turns canonical plan and exam records into finished Word
// documents, worksheets and archives.
package export

import (
	"fmt"
	"strings"
	"unicode"
)

// maxNameFragment bounds the free-text part of an archive member name.
const maxNameFragment = 20

// sanitizeName rewrites free text into a safe file-name fragment: every run
// of non-alphanumeric characters becomes a single underscore. The same input
// always yields the same name, so re-exported batches keep identical member
// names.
func sanitizeName(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// PlanFilename names an exported unit-plan document.
func PlanFilename(title string) string {
	return fmt.Sprintf("Plan_Unite_%s.docx", sanitizeName(title))
}

// ExamFilename names an exported exam document.
func ExamFilename(subject, grade, semester string) string {
	return fmt.Sprintf("Examen_%s_%s_%s.docx",
		sanitizeName(subject), sanitizeName(grade), sanitizeName(semester))
}

// CorrectionFilename names the answer-key variant of an exam document.
func CorrectionFilename(subject, grade, semester string) string {
	return "CORRECTION_" + ExamFilename(subject, grade, semester)
}

// AssessmentFilename names one criterion assessment inside an archive.
func AssessmentFilename(criterion, title string) string {
	return fmt.Sprintf("Eval_Critere_%s_%s.docx",
		sanitizeName(criterion), truncate(sanitizeName(title), maxNameFragment))
}

// ArchiveFolder names the folder holding a plan's assessments inside the
// batch archive.
func ArchiveFolder(title string) string {
	return "Evaluations_" + sanitizeName(title)
}

// ArchiveFilename names the batch archive itself.
func ArchiveFilename(title string) string {
	return "Evaluations_" + sanitizeName(title) + ".zip"
}
