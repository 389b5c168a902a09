// Package reference loads the MYP reference data (key concepts, global
// contexts, subject list, criterion names) used to seed prompts and to fill
// normalization defaults.
package reference

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed myp.yaml
var defaultData []byte

// Data holds the MYP reference catalogue.
type Data struct {
	KeyConcepts         []string          `yaml:"key_concepts"`
	RelatedConceptsMath []string          `yaml:"related_concepts_math"`
	RelatedConcepts     []string          `yaml:"related_concepts"`
	GlobalContexts      []string          `yaml:"global_contexts"`
	Subjects            []string          `yaml:"subjects"`
	CriterionNames      map[string]string `yaml:"criterion_names"`
}

// Load reads reference data from path, or the embedded catalogue when path
// is empty.
func Load(path string) (*Data, error) {
	raw := defaultData
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading reference data: %w", err)
		}
		raw = b
	}

	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parsing reference data: %w", err)
	}
	if len(d.Subjects) == 0 {
		return nil, fmt.Errorf("reference data has no subjects")
	}

	slog.Info("reference data loaded",
		"subjects", len(d.Subjects),
		"key_concepts", len(d.KeyConcepts),
		"global_contexts", len(d.GlobalContexts),
	)
	return &d, nil
}

// CriterionName returns the display name for a criterion letter, with a
// generic fallback for unknown letters.
func (d *Data) CriterionName(letter string) string {
	if name, ok := d.CriterionNames[strings.ToUpper(letter)]; ok {
		return name
	}
	return "Critère " + strings.ToUpper(letter)
}

// RelatedConceptsFor returns the related-concept list for a subject; math
// gets its own catalogue.
func (d *Data) RelatedConceptsFor(subject string) []string {
	if strings.Contains(strings.ToLower(subject), "math") {
		return d.RelatedConceptsMath
	}
	return d.RelatedConcepts
}

// HasSubject reports whether the subject appears in the catalogue,
// case-insensitively.
func (d *Data) HasSubject(subject string) bool {
	for _, s := range d.Subjects {
		if strings.EqualFold(s, subject) {
			return true
		}
	}
	return false
}
