package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/medch24/planpei/internal/docx"
	"github.com/medch24/planpei/internal/plan"
)

const overviewSheet = "Aperçu"

// AssessmentArchive renders every assessment of a plan into one zip archive,
// with an overview worksheet alongside the documents. The template is
// validated once up front and any element failure aborts the whole batch,
// so a returned archive is always complete.
func (x *Exporter) AssessmentArchive(template []byte, p *plan.UnitPlan) ([]byte, error) {
	if len(p.Assessments) == 0 {
		return nil, fmt.Errorf("archive %q: plan has no assessments", p.Title)
	}
	if _, err := docx.Open(template); err != nil {
		return nil, fmt.Errorf("archive %q: %w", p.Title, err)
	}

	folder := ArchiveFolder(p.Title)

	type member struct {
		name string
		data []byte
	}
	members := make([]member, 0, len(p.Assessments)+1)

	for i := range p.Assessments {
		a := &p.Assessments[i]
		doc, err := x.AssessmentDocument(template, p, a)
		if err != nil {
			return nil, fmt.Errorf("archive %q: criterion %s: %w", p.Title, a.Criterion, err)
		}
		members = append(members, member{
			name: folder + "/" + AssessmentFilename(a.Criterion, p.Title),
			data: doc,
		})
	}

	overview, err := x.overviewWorkbook(p)
	if err != nil {
		return nil, fmt.Errorf("archive %q: overview: %w", p.Title, err)
	}
	members = append(members, member{name: folder + "/Apercu.xlsx", data: overview})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			return nil, fmt.Errorf("archive %q: adding %s: %w", p.Title, m.name, err)
		}
		if _, err := w.Write(m.data); err != nil {
			return nil, fmt.Errorf("archive %q: writing %s: %w", p.Title, m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive %q: closing: %w", p.Title, err)
	}

	x.logger.Info("assessment archive built",
		"plan", p.Title, "assessments", len(p.Assessments), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// overviewWorkbook summarizes the plan's assessments in one worksheet.
func (x *Exporter) overviewWorkbook(p *plan.UnitPlan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, err
	}

	headers := []string{"Critère", "Nom du critère", "Points max", "Aspects évalués", "Exercices"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(overviewSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, a := range p.Assessments {
		values := []any{
			a.Criterion,
			a.CriterionName,
			a.MaxPoints,
			strings.Join(a.Strands, "\n"),
			len(a.Exercises),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(overviewSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
