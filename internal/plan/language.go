package plan

import "strings"

// Lang is the primary working language of a subject's documents.
type Lang int

const (
	// LangFrench covers the default French-medium subjects.
	LangFrench Lang = iota
	// LangEnglish covers Language Acquisition (English) subjects.
	LangEnglish
	// LangBilingual covers subjects taught in both French and Arabic.
	LangBilingual
)

// IsLanguageAcquisition reports whether the subject is the English language
// acquisition course, which gets English prompts and documents.
func IsLanguageAcquisition(subject string) bool {
	s := strings.ToLower(subject)
	return strings.Contains(s, "acquisition") && strings.Contains(s, "langue")
}

// IsBilingual reports whether the subject is taught bilingually
// (French and Arabic): the Arts and physical education courses.
func IsBilingual(subject string) bool {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "arts"), strings.Contains(s, "art"):
		return true
	case strings.Contains(s, "éducation physique"), strings.Contains(s, "education physique"):
		return true
	case strings.Contains(s, "eps"), strings.Contains(s, "santé"), strings.Contains(s, "sante"):
		return true
	}
	return false
}

// LanguageFor returns the working language for a subject.
func LanguageFor(subject string) Lang {
	switch {
	case IsLanguageAcquisition(subject):
		return LangEnglish
	case IsBilingual(subject):
		return LangBilingual
	default:
		return LangFrench
	}
}
