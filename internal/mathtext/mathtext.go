// Package mathtext flattens AI-generated math notation and table markup into
// plain text that renders safely in a Word run. The passes are ordered and
// each is idempotent: running Normalize twice yields the same output.
package mathtext

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxFracDepth bounds the fraction rewrite loop. Nested frac{}{} cannot be
// matched in one shot by a non-recursive pattern, so the innermost form is
// rewritten repeatedly up to this depth.
const maxFracDepth = 4

var (
	fracRe         = regexp.MustCompile(`\\?frac\{([^{}]*)\}\{([^{}]*)\}`)
	simpleParenRe  = regexp.MustCompile(`\(([A-Za-z0-9.,]+)\)/\(([A-Za-z0-9.,]+)\)`)
	sqrtBraceRe    = regexp.MustCompile(`\\?sqrt\{([^{}]*)\}`)
	sqrtBareRe     = regexp.MustCompile(`\\?sqrt +([A-Za-z0-9]+)`)
	braceExpRe     = regexp.MustCompile(`\^\{([^{}]+)\}`)
	superscriptRe  = regexp.MustCompile(`([A-Za-z0-9)])([⁰¹²³⁴⁵⁶⁷⁸⁹]+)`)
	rootDigitsRe   = regexp.MustCompile(`√(\d+(?:[.,]\d+)?)`)
	rootGroupRe    = regexp.MustCompile(`√\(([^()]*)\)`)
	inlineDollarRe = regexp.MustCompile(`\$([^$\n]+)\$`)
	inlineParenRe  = regexp.MustCompile(`\\\(([^\n]*?)\\\)`)
	inlineBrackRe  = regexp.MustCompile(`\\\[([^\n]*?)\\\]`)
	backslashCmdRe = regexp.MustCompile(`\\([A-Za-z])`)
	pipeRowRe      = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	sepCellRe      = regexp.MustCompile(`^:?-{2,}:?$`)
)

var superscriptDigits = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
}

// symbolMacros maps LaTeX-style command names to their Unicode glyphs.
// Longer names come first so that e.g. \neq is not consumed by \ne's prefix.
var symbolMacros = []struct{ name, glyph string }{
	{`\mathbb{R}`, "ℝ"}, {`\mathbb{N}`, "ℕ"}, {`\mathbb{Z}`, "ℤ"}, {`\mathbb{Q}`, "ℚ"},
	{`\approx`, "≈"}, {`\notin`, "∉"}, {`\forall`, "∀"}, {`\exists`, "∃"},
	{`\infty`, "∞"}, {`\times`, "×"}, {`\cdot`, "·"},
	{`\alpha`, "α"}, {`\beta`, "β"}, {`\gamma`, "γ"}, {`\delta`, "δ"},
	{`\theta`, "θ"}, {`\lambda`, "λ"}, {`\sigma`, "σ"}, {`\omega`, "ω"},
	{`\Delta`, "Δ"}, {`\Omega`, "Ω"},
	{`\neq`, "≠"}, {`\leq`, "≤"}, {`\geq`, "≥"},
	{`\div`, "÷"}, {`\pm`, "±"}, {`\deg`, "°"},
	{`\ne`, "≠"}, {`\le`, "≤"}, {`\ge`, "≥"},
	{`\in`, "∈"}, {`\pi`, "π"}, {`\mu`, "μ"},
}

// Normalize applies the full pass sequence. It is safe on arbitrary input and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = flattenFractions(text)
	text = flattenRoots(text)
	text = flattenExponents(text)
	text = flattenRootGlyphs(text)
	text = mapSymbolMacros(text)
	text = stripMathDelimiters(text)
	text = stripBackslashCommands(text)
	text = flattenHTMLTables(text)
	text = flattenMarkdownTables(text)
	return text
}

// flattenFractions rewrites frac{a}{b} to (a)/(b), innermost first, then
// simplifies single-token numerators and denominators to a/b.
func flattenFractions(text string) string {
	for range maxFracDepth {
		if !fracRe.MatchString(text) {
			break
		}
		text = fracRe.ReplaceAllString(text, "($1)/($2)")
	}
	return simpleParenRe.ReplaceAllString(text, "$1/$2")
}

func flattenRoots(text string) string {
	text = sqrtBraceRe.ReplaceAllString(text, "sqrt($1)")
	return sqrtBareRe.ReplaceAllString(text, "sqrt($1)")
}

// flattenExponents converts ^{n} to ^n and Unicode superscript runs attached
// to an alphanumeric or closing paren to caret notation (x² -> x^2).
func flattenExponents(text string) string {
	text = braceExpRe.ReplaceAllString(text, "^$1")
	return superscriptRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := superscriptRe.FindStringSubmatch(m)
		var b strings.Builder
		b.WriteString(sub[1])
		b.WriteByte('^')
		for _, r := range sub[2] {
			b.WriteRune(superscriptDigits[r])
		}
		return b.String()
	})
}

func flattenRootGlyphs(text string) string {
	text = rootDigitsRe.ReplaceAllString(text, "sqrt($1)")
	return rootGroupRe.ReplaceAllString(text, "sqrt($1)")
}

func mapSymbolMacros(text string) string {
	if !strings.ContainsRune(text, '\\') {
		return text
	}
	for _, m := range symbolMacros {
		text = strings.ReplaceAll(text, m.name, m.glyph)
	}
	return text
}

// stripMathDelimiters removes $...$, \(...\) and \[...\] around single-line
// expressions, keeping the inner text.
func stripMathDelimiters(text string) string {
	text = inlineDollarRe.ReplaceAllString(text, "$1")
	text = inlineParenRe.ReplaceAllString(text, "$1")
	return inlineBrackRe.ReplaceAllString(text, "$1")
}

// stripBackslashCommands drops the backslash from any remaining escaped
// command so no raw LaTeX escapes survive into the document.
func stripBackslashCommands(text string) string {
	return backslashCmdRe.ReplaceAllString(text, "$1")
}

// flattenMarkdownTables converts consecutive pipe-table lines into plain
// pipe-separated rows with a dashed separator after the header row. The
// Markdown alignment row (|---|---|) is skipped.
func flattenMarkdownTables(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	i := 0
	for i < len(lines) {
		if !pipeRowRe.MatchString(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}
		start := i
		for i < len(lines) && pipeRowRe.MatchString(lines[i]) {
			i++
		}
		out = append(out, plainRows(lines[start:i])...)
	}
	return strings.Join(out, "\n")
}

// plainRows renders one block of pipe-table lines in the plain row format
// shared with the HTML table pass.
func plainRows(block []string) []string {
	var rows [][]string
	for _, line := range block {
		cells := splitPipeRow(line)
		if len(cells) == 0 || isSeparatorRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return renderRows(rows)
}

func renderRows(rows [][]string) []string {
	var out []string
	for i, cells := range rows {
		out = append(out, strings.Join(cells, " | "))
		if i == 0 && len(rows) > 1 {
			dashes := make([]string, len(cells))
			for j := range dashes {
				dashes[j] = "---"
			}
			out = append(out, strings.Join(dashes, " | "))
		}
	}
	return out
}

func splitPipeRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			continue
		}
		if !sepCellRe.MatchString(c) {
			return false
		}
	}
	return true
}
