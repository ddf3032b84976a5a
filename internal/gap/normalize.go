// Package gap turns provider keyword payloads into per-domain datasets and
// computes keyword overlap between a primary domain and its competitors.
package gap

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sells-group/content-gap/internal/model"
)

// Provider item paths.
const (
	pathKeyword       = "keyword_data.keyword"
	pathSearchVolume  = "keyword_data.keyword_info.search_volume"
	pathCPC           = "keyword_data.keyword_info.cpc"
	pathLastUpdated   = "keyword_data.keyword_info.last_updated_time"
	pathDifficulty    = "keyword_data.keyword_properties.keyword_difficulty"
	pathRank          = "keyword_data.avg_backlinks_info.rank"
	pathRankTopLevel  = "avg_backlinks_info.rank"
	pathTrafficSerpET = "ranked_serp_element.serp_item.etv"
)

// NormalizeKeyword lowercases and trims a keyword so it can be compared
// across domains.
func NormalizeKeyword(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// item reads typed values from a raw provider item. Any missing segment,
// null, or wrongly typed leaf yields the caller's default.
type item struct {
	root gjson.Result
}

func parseItem(raw json.RawMessage) item {
	if !gjson.ValidBytes(raw) {
		return item{}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return item{}
	}
	return item{root: root}
}

func (it item) str(path, def string) string {
	r := it.root.Get(path)
	if r.Type != gjson.String {
		return def
	}
	return r.Str
}

func (it item) num(path string, def float64) float64 {
	r := it.root.Get(path)
	if r.Type != gjson.Number {
		return def
	}
	return r.Num
}

func (it item) count(path string) int64 {
	r := it.root.Get(path)
	if r.Type != gjson.Number {
		return 0
	}
	n := r.Int()
	if n < 0 {
		return 0
	}
	return n
}

// Normalize converts one provider item into a KeywordRecord. It never fails:
// malformed or partial items degrade to defaults.
//
// Every domain in domains receives the position and traffic values of this
// single item.
func Normalize(raw json.RawMessage, domains []string) model.KeywordRecord {
	it := parseItem(raw)

	rec := model.KeywordRecord{
		Keyword:           it.str(pathKeyword, model.NotAvailable),
		SearchVolume:      it.count(pathSearchVolume),
		KeywordDifficulty: it.num(pathDifficulty, 0),
		CPC:               it.num(pathCPC, 0),
		LastUpdated:       it.str(pathLastUpdated, model.NotAvailable),
		PositionByDomain:  make(map[string]float64, len(domains)),
		TrafficByDomain:   make(map[string]float64, len(domains)),
	}

	position := it.num(pathRank, it.num(pathRankTopLevel, 0))
	traffic := it.num(pathTrafficSerpET, 0)
	for _, d := range domains {
		rec.PositionByDomain[d] = position
		rec.TrafficByDomain[d] = traffic
	}

	return rec
}
