package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Builder assembles a Word document from scratch, paragraph by paragraph,
// for documents that have no template counterpart.
type Builder struct {
	body strings.Builder
}

// Format controls the look of a paragraph built through the Builder.
type Format struct {
	Bold      bool
	Italic    bool
	Underline bool
	// Size is the font size in points; zero keeps the document default.
	Size int
	// Color is an RRGGBB hex value; empty keeps the default.
	Color string
	// Align is one of "left", "center", "right", "both"; empty means left.
	Align string
	// SpaceBefore and SpaceAfter are in twentieths of a point.
	SpaceBefore int
	SpaceAfter  int
	// Shading fills the paragraph background with an RRGGBB hex value.
	Shading string
}

// NewBuilder creates an empty document builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Paragraph appends one paragraph. Newlines in text become line breaks
// inside the same paragraph.
func (b *Builder) Paragraph(text string, f Format) *Builder {
	b.body.WriteString(paragraphXML(text, f))
	return b
}

// Empty appends an empty spacer paragraph.
func (b *Builder) Empty() *Builder {
	return b.Paragraph("", Format{})
}

// Table appends a bordered table. Every row must have the same number of
// cells; widths are in twentieths of a point and apply per column.
func (b *Builder) Table(rows [][]string, widths []int, headerBold bool) *Builder {
	b.body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
		`</w:tblBorders></w:tblPr>`)
	for ri, row := range rows {
		b.body.WriteString("<w:tr>")
		for ci, cell := range row {
			b.body.WriteString("<w:tc><w:tcPr>")
			if ci < len(widths) {
				fmt.Fprintf(&b.body, `<w:tcW w:w="%d" w:type="dxa"/>`, widths[ci])
			}
			b.body.WriteString("</w:tcPr>")
			f := Format{}
			if headerBold && ri == 0 {
				f.Bold = true
			}
			b.body.WriteString(paragraphXML(cell, f))
			b.body.WriteString("</w:tc>")
		}
		b.body.WriteString("</w:tr>")
	}
	b.body.WriteString("</w:tbl>")
	// Word requires a paragraph after a table.
	return b.Empty()
}

// DottedLines appends n dotted answer lines.
func (b *Builder) DottedLines(n int) *Builder {
	for i := 0; i < n; i++ {
		b.Paragraph(strings.Repeat(".", 90), Format{Color: "808080", SpaceAfter: 60})
	}
	return b
}

// Bytes assembles the finished Word package.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name, data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{documentPath, documentHeader + b.body.String() + documentFooter},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.data)); err != nil {
			return nil, fmt.Errorf("building %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

func paragraphXML(text string, f Format) string {
	var p strings.Builder
	p.WriteString("<w:p><w:pPr>")
	if f.Align != "" {
		fmt.Fprintf(&p, `<w:jc w:val="%s"/>`, f.Align)
	}
	if f.SpaceBefore > 0 || f.SpaceAfter > 0 {
		fmt.Fprintf(&p, `<w:spacing w:before="%d" w:after="%d"/>`, f.SpaceBefore, f.SpaceAfter)
	}
	if f.Shading != "" {
		fmt.Fprintf(&p, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, f.Shading)
	}
	p.WriteString(`<w:bidi w:val="0"/></w:pPr>`)

	rpr := runProps(f)
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			p.WriteString(`<w:r><w:br/></w:r>`)
		}
		if line == "" {
			continue
		}
		fmt.Fprintf(&p, `<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`, rpr, escapeXML(line))
	}
	p.WriteString("</w:p>")
	return p.String()
}

func runProps(f Format) string {
	var r strings.Builder
	r.WriteString("<w:rPr>")
	if f.Bold {
		r.WriteString("<w:b/>")
	}
	if f.Italic {
		r.WriteString("<w:i/>")
	}
	if f.Underline {
		r.WriteString(`<w:u w:val="single"/>`)
	}
	if f.Size > 0 {
		fmt.Fprintf(&r, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, f.Size*2, f.Size*2)
	}
	if f.Color != "" {
		fmt.Fprintf(&r, `<w:color w:val="%s"/>`, f.Color)
	}
	r.WriteString(`<w:rtl w:val="0"/></w:rPr>`)
	return r.String()
}

const wNamespace = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wNamespace + `><w:body>`

const documentFooter = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
	`<w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134"/>` +
	`</w:sectPr></w:body></w:document>`

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles ` + wNamespace + `>
<w:docDefaults><w:rPrDefault><w:rPr>
<w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial"/>
<w:sz w:val="22"/><w:szCs w:val="22"/>
</w:rPr></w:rPrDefault></w:docDefaults>
</w:styles>`
