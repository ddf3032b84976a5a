package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/content-gap/internal/model"
)

// Sheet names in the exported workbook.
const (
	SheetAllKeywords    = "All Keywords"
	SheetCommonKeywords = "Common Keywords"
	SheetMatrix         = "Matrix"
	SheetCoverage       = "Coverage"
	SheetSkipped        = "Skipped"
)

// NewWorkbook builds a workbook holding every table of the analysis.
// The Skipped sheet is only added when competitors were skipped.
func NewWorkbook(a *model.Analysis) (*xlsx.File, error) {
	if a == nil {
		return nil, eris.New("report: nil analysis")
	}

	f := xlsx.NewFile()
	domains := append([]string{a.PrimaryDomain}, a.Competitors...)

	if err := addKeywordSheet(f, SheetAllKeywords, a.AllKeywords, domains); err != nil {
		return nil, err
	}
	if err := addKeywordSheet(f, SheetCommonKeywords, a.CommonKeywords, []string{a.PrimaryDomain}); err != nil {
		return nil, err
	}

	matrix, err := f.AddSheet(SheetMatrix)
	if err != nil {
		return nil, eris.Wrapf(err, "report: add sheet %s", SheetMatrix)
	}
	addStrings(matrix.AddRow(), append([]string{""}, a.Matrix.Domains...)...)
	for i, d := range a.Matrix.Domains {
		row := matrix.AddRow()
		row.AddCell().SetString(d)
		for _, n := range a.Matrix.Counts[i] {
			row.AddCell().SetInt(n)
		}
	}

	coverage, err := f.AddSheet(SheetCoverage)
	if err != nil {
		return nil, eris.Wrapf(err, "report: add sheet %s", SheetCoverage)
	}
	addStrings(coverage.AddRow(), "domain", "records", "distinct_keywords", "total_traffic")
	for _, c := range a.Coverage {
		row := coverage.AddRow()
		row.AddCell().SetString(c.Domain)
		row.AddCell().SetInt(c.Records)
		row.AddCell().SetInt(c.DistinctKeywords)
		row.AddCell().SetFloat(c.TotalTraffic)
	}

	if len(a.Skipped) > 0 {
		skipped, err := f.AddSheet(SheetSkipped)
		if err != nil {
			return nil, eris.Wrapf(err, "report: add sheet %s", SheetSkipped)
		}
		addStrings(skipped.AddRow(), "domain", "reason", "error")
		for _, s := range a.Skipped {
			addStrings(skipped.AddRow(), s.Domain, string(s.Reason), s.Error)
		}
	}

	return f, nil
}

// WriteWorkbook saves the analysis workbook to path.
func WriteWorkbook(a *model.Analysis, path string) error {
	f, err := NewWorkbook(a)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func addKeywordSheet(f *xlsx.File, name string, records []model.KeywordRecord, domains []string) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "report: add sheet %s", name)
	}

	addStrings(sheet.AddRow(), KeywordHeaders(domains)...)
	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Keyword)
		row.AddCell().SetInt(int(r.SearchVolume))
		row.AddCell().SetFloat(r.KeywordDifficulty)
		row.AddCell().SetFloat(r.CPC)
		row.AddCell().SetString(r.LastUpdated)
		for _, d := range domains {
			addOptional(row, r.PositionByDomain, d)
			addOptional(row, r.TrafficByDomain, d)
		}
	}
	return nil
}

func addOptional(row *xlsx.Row, m map[string]float64, key string) {
	cell := row.AddCell()
	if v, ok := m[key]; ok {
		cell.SetFloat(v)
	}
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
