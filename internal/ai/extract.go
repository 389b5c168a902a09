package ai

import (
	"encoding/json"
	"strings"
)

// EmptyJSON is the sentinel returned when no parseable JSON value can be
// found in the model output. It always parses as an empty object.
const EmptyJSON = "{}"

// ExtractJSON pulls a JSON value out of raw model output. The text may be
// wrapped in fenced blocks and surrounded by commentary. It never fails:
// callers always receive a parseable value, possibly the empty-object
// sentinel.
//
// Matching is positional: the first '{' or '[' decides the container type and
// the last matching closer ends the window. A closer character inside a JSON
// string value before the true end can therefore truncate the match; this is
// a known limitation, not silently worked around.
func ExtractJSON(text string) string {
	if text == "" {
		return EmptyJSON
	}

	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	firstCurly := strings.IndexByte(clean, '{')
	firstSquare := strings.IndexByte(clean, '[')

	start, end := -1, -1
	switch {
	case firstCurly != -1 && (firstSquare == -1 || firstCurly < firstSquare):
		start = firstCurly
		end = strings.LastIndexByte(clean, '}')
	case firstSquare != -1:
		start = firstSquare
		end = strings.LastIndexByte(clean, ']')
	}

	if start == -1 || end <= start {
		return EmptyJSON
	}

	extracted := clean[start : end+1]
	if !json.Valid([]byte(extracted)) {
		return EmptyJSON
	}
	return extracted
}
