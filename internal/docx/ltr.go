package docx

import "regexp"

var (
	bidiRe = regexp.MustCompile(`<w:bidi(?:\s[^>]*)?/>`)
	rtlRe  = regexp.MustCompile(`<w:rtl(?:\s[^>]*)?/>`)
)

// ForceLeftToRight rewrites every paragraph and run direction marker to
// left-to-right. Templates re-exported from Arabic-locale editors carry
// right-to-left flags that flip the French layout; forcing them off keeps
// the document stable regardless of where the template was last saved.
func ForceLeftToRight(xml string) string {
	xml = bidiRe.ReplaceAllString(xml, `<w:bidi w:val="0"/>`)
	xml = rtlRe.ReplaceAllString(xml, `<w:rtl w:val="0"/>`)
	return xml
}
