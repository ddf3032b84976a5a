package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sells-group/content-gap/internal/model"
)

// Options controls console output.
type Options struct {
	// Limit caps the rows printed per keyword table. Zero prints all rows.
	Limit int
}

// KeywordHeaders returns the column headers used for keyword tables.
func KeywordHeaders(domains []string) []string {
	headers := []string{"keyword", "search_volume", "keyword_difficulty", "cpc", "last_updated"}
	for _, d := range domains {
		headers = append(headers, d+"_position", d+"_traffic")
	}
	return headers
}

func keywordCells(r model.KeywordRecord, domains []string) []string {
	cells := []string{
		r.Keyword,
		strconv.FormatInt(r.SearchVolume, 10),
		formatFloat(r.KeywordDifficulty),
		formatFloat(r.CPC),
		r.LastUpdated,
	}
	for _, d := range domains {
		cells = append(cells, optional(r.PositionByDomain, d), optional(r.TrafficByDomain, d))
	}
	return cells
}

func optional(m map[string]float64, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return formatFloat(v)
}

// WriteKeywords prints records with a position and traffic column pair for
// each of domains. Records without a value for a domain show a blank cell.
func WriteKeywords(w io.Writer, records []model.KeywordRecord, domains []string, limit int) error {
	shown := records
	if limit > 0 && len(records) > limit {
		shown = records[:limit]
	}

	right := []bool{false, true, true, true, false}
	for range domains {
		right = append(right, true, true)
	}

	t := table{headers: KeywordHeaders(domains), right: right}
	for _, r := range shown {
		t.rows = append(t.rows, keywordCells(r, domains))
	}
	if err := t.write(w); err != nil {
		return err
	}

	if rest := len(records) - len(shown); rest > 0 {
		_, err := fmt.Fprintf(w, "... %d more rows\n", rest)
		return err
	}
	return nil
}

// WriteMatrix prints the intersection matrix with domains as row and column labels.
func WriteMatrix(w io.Writer, m model.IntersectionMatrix) error {
	t := table{
		headers: append([]string{""}, m.Domains...),
		right:   []bool{false},
	}
	for range m.Domains {
		t.right = append(t.right, true)
	}
	for i, d := range m.Domains {
		row := []string{d}
		for _, n := range m.Counts[i] {
			row = append(row, strconv.Itoa(n))
		}
		t.rows = append(t.rows, row)
	}
	return t.write(w)
}

// WriteCoverage prints one row per fetched domain.
func WriteCoverage(w io.Writer, coverage []model.DomainCoverage) error {
	t := table{
		headers: []string{"domain", "records", "distinct_keywords", "total_traffic"},
		right:   []bool{false, true, true, true},
	}
	for _, c := range coverage {
		t.rows = append(t.rows, []string{
			c.Domain,
			strconv.Itoa(c.Records),
			strconv.Itoa(c.DistinctKeywords),
			formatFloat(c.TotalTraffic),
		})
	}
	return t.write(w)
}

// WriteSummary prints keyword totals and any skipped competitors.
func WriteSummary(w io.Writer, a *model.Analysis) error {
	ew := &errWriter{w: w}
	ew.printf("Total keywords analyzed: %d\n", len(a.AllKeywords))
	ew.printf("Common keywords found: %d\n", len(a.CommonKeywords))
	for _, s := range a.Skipped {
		if s.Error != "" {
			ew.printf("Skipped %s (%s): %s\n", s.Domain, s.Reason, s.Error)
		} else {
			ew.printf("Skipped %s (%s)\n", s.Domain, s.Reason)
		}
	}
	return ew.err
}

// WriteAnalysis prints coverage, the matrix, the common keywords and the summary.
func WriteAnalysis(w io.Writer, a *model.Analysis, opts Options) error {
	sections := []struct {
		title string
		write func() error
	}{
		{"Coverage", func() error { return WriteCoverage(w, a.Coverage) }},
		{"Common Keywords Matrix (count of common keywords between domains)", func() error { return WriteMatrix(w, a.Matrix) }},
		{"Common Keywords", func() error {
			return WriteKeywords(w, a.CommonKeywords, []string{a.PrimaryDomain}, opts.Limit)
		}},
	}

	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "%s:\n", s.title); err != nil {
			return err
		}
		if err := s.write(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return WriteSummary(w, a)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// WriteAudits prints one row per stored audit.
func WriteAudits(w io.Writer, audits []model.Audit) error {
	t := table{headers: []string{"id", "audit_id", "your_domain", "competitors", "product", "created_at"}}
	for _, a := range audits {
		t.rows = append(t.rows, []string{
			a.ID,
			a.AuditID,
			a.YourDomain,
			a.CompetitorDomains,
			a.Product,
			a.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}
	return t.write(w)
}
