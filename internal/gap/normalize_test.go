package gap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/content-gap/internal/model"
)

const fullItem = `{
	"keyword_data": {
		"keyword": "Running Shoes",
		"keyword_info": {"search_volume": 12100, "cpc": 1.42, "last_updated_time": "2024-05-01 10:00:00 +00:00"},
		"keyword_properties": {"keyword_difficulty": 63},
		"avg_backlinks_info": {"rank": 212.5}
	},
	"ranked_serp_element": {"serp_item": {"etv": 845.3}}
}`

func TestNormalize_FullItem(t *testing.T) {
	t.Parallel()

	rec := Normalize(json.RawMessage(fullItem), []string{"acme.com"})

	assert.Equal(t, "Running Shoes", rec.Keyword)
	assert.Equal(t, int64(12100), rec.SearchVolume)
	assert.InDelta(t, 1.42, rec.CPC, 0.0001)
	assert.InDelta(t, 63, rec.KeywordDifficulty, 0.0001)
	assert.Equal(t, "2024-05-01 10:00:00 +00:00", rec.LastUpdated)
	assert.Equal(t, map[string]float64{"acme.com": 212.5}, rec.PositionByDomain)
	assert.Equal(t, map[string]float64{"acme.com": 845.3}, rec.TrafficByDomain)
}

func TestNormalize_MissingKeywordInfo(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"keyword_data": {"keyword": "trail socks", "keyword_properties": {"keyword_difficulty": 12}}}`)
	rec := Normalize(raw, []string{"acme.com"})

	assert.Equal(t, "trail socks", rec.Keyword)
	assert.Equal(t, int64(0), rec.SearchVolume)
	assert.Zero(t, rec.CPC)
	assert.Equal(t, model.NotAvailable, rec.LastUpdated)
	assert.InDelta(t, 12, rec.KeywordDifficulty, 0.0001)
	assert.Zero(t, rec.PositionByDomain["acme.com"])
	assert.Zero(t, rec.TrafficByDomain["acme.com"])
}

func TestNormalize_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"keyword_data not object", `{"keyword_data": "oops"}`},
		{"keyword_data null", `{"keyword_data": null}`},
		{"array", `[1, 2, 3]`},
		{"string", `"keyword"`},
		{"number", `42`},
		{"invalid json", `{"keyword_data": {`},
		{"empty", ``},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := Normalize(json.RawMessage(tt.raw), []string{"a.com", "b.com"})
			assert.Equal(t, model.NotAvailable, rec.Keyword)
			assert.Equal(t, int64(0), rec.SearchVolume)
			assert.Zero(t, rec.CPC)
			assert.Zero(t, rec.KeywordDifficulty)
			assert.Equal(t, model.NotAvailable, rec.LastUpdated)
			assert.Equal(t, map[string]float64{"a.com": 0, "b.com": 0}, rec.PositionByDomain)
			assert.Equal(t, map[string]float64{"a.com": 0, "b.com": 0}, rec.TrafficByDomain)
		})
	}
}

func TestNormalize_NullAndMistypedLeaves(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{
		"keyword_data": {
			"keyword": 17,
			"keyword_info": {"search_volume": -5, "cpc": null, "last_updated_time": null},
			"keyword_properties": {"keyword_difficulty": "hard"},
			"avg_backlinks_info": null
		},
		"ranked_serp_element": {"serp_item": null}
	}`)
	rec := Normalize(raw, []string{"acme.com"})

	assert.Equal(t, model.NotAvailable, rec.Keyword)
	assert.Equal(t, int64(0), rec.SearchVolume)
	assert.Zero(t, rec.CPC)
	assert.Equal(t, model.NotAvailable, rec.LastUpdated)
	assert.Zero(t, rec.KeywordDifficulty)
	assert.Zero(t, rec.PositionByDomain["acme.com"])
	assert.Zero(t, rec.TrafficByDomain["acme.com"])
}

func TestNormalize_TopLevelBacklinkRank(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"keyword_data": {"keyword": "x"}, "avg_backlinks_info": {"rank": 40}}`)
	rec := Normalize(raw, []string{"acme.com"})
	assert.InDelta(t, 40, rec.PositionByDomain["acme.com"], 0.0001)
}

func TestNormalize_EveryContextDomainGetsItemValues(t *testing.T) {
	t.Parallel()

	domains := []string{"ahrefs.com", "semrush.com", "seranking.com"}
	rec := Normalize(json.RawMessage(fullItem), domains)

	assert.Len(t, rec.PositionByDomain, 3)
	assert.Len(t, rec.TrafficByDomain, 3)
	for _, d := range domains {
		assert.InDelta(t, 212.5, rec.PositionByDomain[d], 0.0001)
		assert.InDelta(t, 845.3, rec.TrafficByDomain[d], 0.0001)
	}
}

func TestNormalize_NoContext(t *testing.T) {
	t.Parallel()

	rec := Normalize(json.RawMessage(fullItem), nil)
	assert.Empty(t, rec.PositionByDomain)
	assert.Empty(t, rec.TrafficByDomain)
}

func TestNormalizeKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Running Shoes ", "running shoes"},
		{"  TRAIL socks\t", "trail socks"},
		{"already clean", "already clean"},
		{"", ""},
		{"   ", ""},
		{"N/A", "n/a"},
		{"Ünïcödé Wörds", "ünïcödé wörds"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got := NormalizeKeyword(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeKeyword(got), "normalization must be idempotent")
		})
	}
}
