package dataforseo

import "encoding/json"

// Provider status codes. Errors are reported in-band with HTTP 200.
const (
	StatusOK              = 20000
	StatusNoSearchResults = 40102
)

// RankedKeywordsRequest is one task of a ranked_keywords/live call.
type RankedKeywordsRequest struct {
	Target                 string `json:"target"`
	LocationCode           int    `json:"location_code"`
	LanguageCode           string `json:"language_code"`
	IgnoreSynonyms         bool   `json:"ignore_synonyms"`
	IncludeClickstreamData bool   `json:"include_clickstream_data"`
	Limit                  int    `json:"limit"`
}

// RequestDefaults fills unset request fields.
type RequestDefaults struct {
	LocationCode           int
	LanguageCode           string
	IgnoreSynonyms         bool
	IncludeClickstreamData bool
	Limit                  int
}

// DefaultRequestDefaults targets US English with a 200 keyword limit.
func DefaultRequestDefaults() RequestDefaults {
	return RequestDefaults{
		LocationCode: 2840,
		LanguageCode: "en",
		Limit:        200,
	}
}

func (d RequestDefaults) apply(req RankedKeywordsRequest) RankedKeywordsRequest {
	if req.LocationCode == 0 {
		req.LocationCode = d.LocationCode
	}
	if req.LanguageCode == "" {
		req.LanguageCode = d.LanguageCode
	}
	if req.Limit == 0 {
		req.Limit = d.Limit
	}
	req.IgnoreSynonyms = req.IgnoreSynonyms || d.IgnoreSynonyms
	req.IncludeClickstreamData = req.IncludeClickstreamData || d.IncludeClickstreamData
	return req
}

// RankedKeywordsResponse is the provider envelope.
type RankedKeywordsResponse struct {
	StatusCode    int     `json:"status_code"`
	StatusMessage string  `json:"status_message"`
	Cost          float64 `json:"cost"`
	TasksCount    int     `json:"tasks_count"`
	TasksError    int     `json:"tasks_error"`
	Tasks         []Task  `json:"tasks"`
}

// Task is one task result inside the envelope.
type Task struct {
	ID            string       `json:"id"`
	StatusCode    int          `json:"status_code"`
	StatusMessage string       `json:"status_message"`
	Cost          float64      `json:"cost"`
	Result        []TaskResult `json:"result"`
}

// TaskResult carries the ranked keyword items for a target. Items are kept
// raw; their shape varies and is interpreted by the gap normalizer.
type TaskResult struct {
	Target     string            `json:"target"`
	TotalCount int64             `json:"total_count"`
	ItemsCount int               `json:"items_count"`
	Items      []json.RawMessage `json:"items"`
}

// Items returns tasks[0].result[0].items, or nil when any level is missing.
func (r *RankedKeywordsResponse) Items() []json.RawMessage {
	if r == nil || len(r.Tasks) == 0 || len(r.Tasks[0].Result) == 0 {
		return nil
	}
	return r.Tasks[0].Result[0].Items
}
