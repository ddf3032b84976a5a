package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-gap/internal/config"
	"github.com/sells-group/content-gap/internal/gap"
	"github.com/sells-group/content-gap/internal/store"
)

// rawItem builds a minimal ranked keyword item.
func rawItem(keyword string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"keyword_data":{"keyword":%q,"keyword_info":{"search_volume":100,"cpc":1.5}},"ranked_serp_element":{"serp_item":{"etv":4}}}`,
		keyword,
	))
}

// stubAnalyzer returns an analyzer whose fetcher serves data[domain].
// Domains mapped to nil have no keywords; missing domains fail.
func stubAnalyzer(data map[string][]string) *gap.Analyzer {
	return gap.NewAnalyzer(gap.FetchFunc(func(_ context.Context, domain string) ([]json.RawMessage, error) {
		keywords, ok := data[domain]
		if !ok {
			return nil, fmt.Errorf("upstream unavailable for %s", domain)
		}
		items := make([]json.RawMessage, 0, len(keywords))
		for _, k := range keywords {
			items = append(items, rawItem(k))
		}
		return items, nil
	}))
}

// useSQLiteConfig points the global config at a temp SQLite database.
func useSQLiteConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		},
	}
	t.Cleanup(func() { cfg = prev })
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	useSQLiteConfig(t)
	st, err := openStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}
