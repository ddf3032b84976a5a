package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sells-group/content-gap/internal/gap"
	"github.com/sells-group/content-gap/internal/metrics"
	"github.com/sells-group/content-gap/internal/model"
	"github.com/sells-group/content-gap/internal/resilience"
	"github.com/sells-group/content-gap/pkg/dataforseo"
)

// analyzer runs a content gap analysis.
type analyzer interface {
	Analyze(ctx context.Context, primary string, competitors []string) (*model.Analysis, error)
}

// analysisEnv holds the provider client and the analyzer built on it.
type analysisEnv struct {
	Client   dataforseo.Client
	Analyzer *gap.Analyzer
}

// initAnalysis builds the provider client and analyzer from cfg. When reg is
// non-nil, fetch and analysis metrics and the provider cost are registered.
func initAnalysis(reg prometheus.Registerer) (*analysisEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := dataforseo.NewClient(cfg.DataForSEO.Login, cfg.DataForSEO.Password, clientOptions()...)

	opts := []gap.Option{
		gap.WithConcurrency(cfg.Analysis.MaxConcurrentFetches),
		gap.WithFetchTimeout(time.Duration(cfg.Analysis.FetchTimeoutSecs) * time.Second),
	}
	if reg != nil {
		obs, err := metrics.NewObserver(reg)
		if err != nil {
			return nil, err
		}
		if err := metrics.RegisterCost(reg, client.Cost); err != nil {
			return nil, err
		}
		opts = append(opts, gap.WithObserver(obs))
	}

	return &analysisEnv{
		Client:   client,
		Analyzer: gap.NewAnalyzer(client, opts...),
	}, nil
}

func clientOptions() []dataforseo.Option {
	dc := cfg.DataForSEO

	breakerCfg := resilience.FromCircuitConfig(cfg.Circuit.FailureThreshold, cfg.Circuit.ResetTimeoutSecs)
	breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("dataforseo: circuit state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	opts := []dataforseo.Option{
		dataforseo.WithRateLimit(dc.RateLimit),
		dataforseo.WithRetry(resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs)),
		dataforseo.WithCircuitBreaker(resilience.NewCircuitBreaker(breakerCfg)),
		dataforseo.WithDefaults(dataforseo.RequestDefaults{
			LocationCode:           dc.LocationCode,
			LanguageCode:           dc.LanguageCode,
			IgnoreSynonyms:         dc.IgnoreSynonyms,
			IncludeClickstreamData: dc.IncludeClickstreamData,
			Limit:                  dc.Limit,
		}),
	}
	if dc.BaseURL != "" {
		opts = append(opts, dataforseo.WithBaseURL(dc.BaseURL))
	}
	if dc.TimeoutSecs > 0 {
		opts = append(opts, dataforseo.WithHTTPClient(&http.Client{
			Timeout: time.Duration(dc.TimeoutSecs) * time.Second,
		}))
	}
	return opts
}
