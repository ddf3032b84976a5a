package gap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// rawItems builds provider items carrying only a keyword and an etv.
func rawItems(t *testing.T, keywords ...string) []json.RawMessage {
	t.Helper()
	items := make([]json.RawMessage, 0, len(keywords))
	for _, kw := range keywords {
		b, err := json.Marshal(map[string]any{
			"keyword_data": map[string]any{
				"keyword": kw,
				"keyword_info": map[string]any{
					"search_volume":     1000,
					"cpc":               0.5,
					"last_updated_time": "2024-05-01",
				},
			},
			"ranked_serp_element": map[string]any{
				"serp_item": map[string]any{"etv": 10.0},
			},
		})
		require.NoError(t, err)
		items = append(items, b)
	}
	return items
}
