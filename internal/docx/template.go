package docx

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// TagError lists the template tags that had no value. Rendering still
// completes, with the unresolved tags replaced by empty text, so the caller
// can decide whether a partial document is acceptable.
type TagError struct {
	Missing []string
}

func (e *TagError) Error() string {
	return fmt.Sprintf("docx: unresolved tags: %s", strings.Join(e.Missing, ", "))
}

// Word splits typed text across runs, so a tag authored as {titre} can be
// stored as {ti</w:t>...<w:t>tre}. mergeSplitTags collapses such spans back
// into a contiguous tag before rendering.
const maxTagLen = 120

func mergeSplitTags(xml string) string {
	var out strings.Builder
	out.Grow(len(xml))
	i := 0
	for i < len(xml) {
		ch := xml[i]
		if ch != '{' {
			out.WriteByte(ch)
			i++
			continue
		}
		// Scan ahead for the closing brace, tolerating XML islands between
		// the tag characters.
		j := i + 1
		var name strings.Builder
		var islands bool
		closed := false
		for j < len(xml) && name.Len() <= maxTagLen {
			if xml[j] == '<' {
				end := strings.IndexByte(xml[j:], '>')
				if end == -1 {
					break
				}
				islands = true
				j += end + 1
				continue
			}
			if xml[j] == '}' {
				closed = true
				j++
				break
			}
			if xml[j] == '{' {
				break
			}
			name.WriteByte(xml[j])
			j++
		}
		if !closed {
			out.WriteByte(ch)
			i++
			continue
		}
		if islands {
			out.WriteString("{" + name.String() + "}")
		} else {
			out.WriteString(xml[i:j])
		}
		i = j
	}
	return out.String()
}

var loopRe = regexp.MustCompile(`(?s)\{#([^{}]+)\}(.*?)\{/([^{}]+)\}`)
var tagRe = regexp.MustCompile(`\{([^{}#/]+)\}`)

// Render substitutes tags in document XML. Scalar values resolve {name};
// slice values resolve {#name}...{/name} blocks, repeating the body once
// per element with the element's fields in scope. Tags without a value
// render empty and are reported through a *TagError alongside the output.
// A loop whose open and close names disagree is a broken template, not a
// data gap: it fails with a plain error instead of a *TagError.
func Render(xml string, data map[string]any) (string, error) {
	xml = mergeSplitTags(xml)

	missing := map[string]bool{}
	var mismatched []string

	xml = loopRe.ReplaceAllStringFunc(xml, func(m string) string {
		parts := loopRe.FindStringSubmatch(m)
		openName, body, closeName := strings.TrimSpace(parts[1]), parts[2], strings.TrimSpace(parts[3])
		if openName != closeName {
			mismatched = append(mismatched, fmt.Sprintf("{#%s}...{/%s}", openName, closeName))
			return ""
		}
		items, ok := loopItems(data[openName])
		if !ok {
			if _, present := data[openName]; !present {
				missing[openName] = true
			}
			return ""
		}
		var out strings.Builder
		for _, item := range items {
			rendered, err := Render(body, item)
			if err != nil {
				var te *TagError
				if errors.As(err, &te) {
					for _, t := range te.Missing {
						missing[t] = true
					}
				} else {
					mismatched = append(mismatched, err.Error())
				}
			}
			out.WriteString(rendered)
		}
		return out.String()
	})

	if len(mismatched) > 0 {
		return xml, fmt.Errorf("docx: mismatched loop tags: %s", strings.Join(mismatched, "; "))
	}

	xml = tagRe.ReplaceAllStringFunc(xml, func(m string) string {
		name := strings.TrimSpace(m[1 : len(m)-1])
		v, ok := data[name]
		if !ok {
			missing[name] = true
			return ""
		}
		return encodeText(stringify(v))
	})

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return xml, &TagError{Missing: names}
	}
	return xml, nil
}

// loopItems accepts []map[string]any or []string loop data.
func loopItems(v any) ([]map[string]any, bool) {
	switch items := v.(type) {
	case []map[string]any:
		return items, true
	case []string:
		out := make([]map[string]any, len(items))
		for i, s := range items {
			out[i] = map[string]any{"text": s}
		}
		return out, true
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// encodeText XML-escapes a value and turns newlines into Word line breaks.
func encodeText(s string) string {
	s = escapeXML(s)
	return strings.ReplaceAll(s, "\n", `</w:t><w:br/><w:t xml:space="preserve">`)
}

// escapeXML escapes the characters that matter inside a text node.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}

// EscapeDelims rewrites literal braces in user content into brackets so the
// content can never be parsed as a template tag.
func EscapeDelims(s string) string {
	s = strings.ReplaceAll(s, "{", "[")
	return strings.ReplaceAll(s, "}", "]")
}
