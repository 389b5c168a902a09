package plan

import (
	"encoding/json"
	"errors"

	"github.com/xeipuuv/gojsonschema"
)

var errInvalidJSON = errors.New("plan: payload is not valid JSON")

// planSchema describes the shape the generator is asked for. Validation is
// advisory: findings are logged by the caller, never used to reject input,
// since normalization repairs every deviation anyway.
const planSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"duration": {"type": "string"},
		"keyConcept": {"type": "string"},
		"relatedConcepts": {"type": "array", "items": {"type": "string"}},
		"globalContext": {"type": "string"},
		"statementOfInquiry": {"type": "string"},
		"inquiryQuestions": {
			"type": "object",
			"properties": {
				"factual": {"type": "array", "items": {"type": "string"}},
				"conceptual": {"type": "array", "items": {"type": "string"}},
				"debatable": {"type": "array", "items": {"type": "string"}}
			}
		},
		"objectives": {"type": "array", "items": {"type": "string"}},
		"atlSkills": {"type": "array", "items": {"type": "string"}},
		"content": {"type": "string"},
		"assessments": {"type": "array", "items": {"type": "object"}}
	},
	"required": ["title", "statementOfInquiry", "objectives"]
}`

var compiledPlanSchema = gojsonschema.NewStringLoader(planSchema)

// ValidateShape checks raw generator output against the requested plan shape
// and returns human-readable findings. An empty slice means the payload
// already matches; a non-nil error means the payload was not an object at all.
func ValidateShape(data []byte) ([]string, error) {
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}
	result, err := gojsonschema.Validate(compiledPlanSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, err
	}
	var findings []string
	for _, issue := range result.Errors() {
		findings = append(findings, issue.String())
	}
	return findings, nil
}
