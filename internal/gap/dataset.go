package gap

import (
	"encoding/json"

	"github.com/sells-group/content-gap/internal/model"
)

// BuildDataset normalizes items in order and tags them with domain. Keywords
// are normalized so the dataset can be compared with others. domains is the
// context whose per-domain position and traffic fields are populated.
func BuildDataset(domain string, items []json.RawMessage, domains []string) model.DomainDataset {
	ds := model.DomainDataset{
		Domain:  domain,
		Records: make([]model.KeywordRecord, 0, len(items)),
	}
	for _, raw := range items {
		rec := Normalize(raw, domains)
		rec.Keyword = NormalizeKeyword(rec.Keyword)
		ds.Records = append(ds.Records, rec)
	}
	return ds
}

// CommonKeywords returns the records of primary whose keyword also appears in
// competitor. Duplicate primary records are kept.
func CommonKeywords(primary, competitor model.DomainDataset) []model.KeywordRecord {
	set := competitor.KeywordSet()
	var out []model.KeywordRecord
	for _, r := range primary.Records {
		if _, ok := set[r.Keyword]; ok {
			out = append(out, r)
		}
	}
	return out
}
