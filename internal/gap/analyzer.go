package gap

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/content-gap/internal/model"
)

const (
	defaultConcurrency  = 4
	defaultFetchTimeout = 60 * time.Second
)

// Fetcher returns the raw ranked-keyword items for a domain. An error means
// the fetch could not complete; an empty slice with a nil error means the
// domain genuinely has no ranked keywords.
type Fetcher interface {
	FetchItems(ctx context.Context, domain string) ([]json.RawMessage, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context, domain string) ([]json.RawMessage, error)

// FetchItems calls f.
func (f FetchFunc) FetchItems(ctx context.Context, domain string) ([]json.RawMessage, error) {
	return f(ctx, domain)
}

// Observer is notified of fetch and analysis outcomes.
type Observer interface {
	ObserveFetch(domain, outcome string, elapsed time.Duration)
	ObserveAnalysis(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, string, time.Duration) {}
func (nopObserver) ObserveAnalysis(string, time.Duration)      {}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConcurrency bounds the number of competitor fetches in flight.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithFetchTimeout bounds each domain fetch independently.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.fetchTimeout = d
		}
	}
}

// WithObserver sets the outcome observer.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) {
		if o != nil {
			a.observer = o
		}
	}
}

// Analyzer runs content gap analyses against a Fetcher.
type Analyzer struct {
	fetcher      Fetcher
	concurrency  int
	fetchTimeout time.Duration
	observer     Observer
	now          func() time.Time
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(fetcher Fetcher, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:      fetcher,
		concurrency:  defaultConcurrency,
		fetchTimeout: defaultFetchTimeout,
		observer:     nopObserver{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// fetchResult is the outcome of fetching and building one domain.
type fetchResult struct {
	dataset model.DomainDataset
	reason  model.SkipReason
	err     error
}

func (r fetchResult) ok() bool {
	return r.reason == "" && r.dataset.Len() > 0
}

// Analyze compares primary against competitors. It fails only when the
// primary domain yields no data or ctx is cancelled; competitors that fail
// or return nothing are listed in Analysis.Skipped.
func (a *Analyzer) Analyze(ctx context.Context, primary string, competitors []string) (*model.Analysis, error) {
	start := a.now()

	primary = strings.TrimSpace(primary)
	if primary == "" {
		a.observer.ObserveAnalysis("invalid", time.Since(start))
		return nil, eris.Wrap(ErrInvalidTarget, "gap: primary domain is required")
	}
	competitors = cleanCompetitors(primary, competitors)

	log := zap.L().With(zap.String("primary", primary))
	log.Info("starting content gap analysis", zap.Strings("competitors", competitors))

	base := a.fetch(ctx, primary, []string{primary})
	if !base.ok() {
		if ctx.Err() != nil {
			a.observer.ObserveAnalysis("cancelled", time.Since(start))
			return nil, eris.Wrap(ctx.Err(), "gap: analysis cancelled")
		}
		a.observer.ObserveAnalysis("no_primary_data", time.Since(start))
		if base.err != nil {
			return nil, eris.Wrapf(ErrNoDataForPrimaryDomain, "gap: %s: %s", primary, base.err.Error())
		}
		return nil, eris.Wrapf(ErrNoDataForPrimaryDomain, "gap: %s", primary)
	}
	log.Info("primary keywords retrieved", zap.Int("records", base.dataset.Len()))

	// Results are indexed by input position so the join order never depends
	// on completion order.
	results := make([]fetchResult, len(competitors))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, c := range competitors {
		i, c := i, c
		g.Go(func() error {
			results[i] = a.fetch(ctx, c, competitors)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		a.observer.ObserveAnalysis("cancelled", time.Since(start))
		return nil, eris.Wrap(ctx.Err(), "gap: analysis cancelled")
	}

	analysis := &model.Analysis{
		PrimaryDomain: primary,
		Competitors:   competitors,
		GeneratedAt:   a.now().UTC(),
	}

	datasets := []model.DomainDataset{base.dataset}
	for i, c := range competitors {
		r := results[i]
		if !r.ok() {
			skip := model.SkippedCompetitor{Domain: c, Reason: r.reason}
			if r.err != nil {
				skip.Error = r.err.Error()
			}
			analysis.Skipped = append(analysis.Skipped, skip)
			log.Warn("skipping competitor",
				zap.String("competitor", c),
				zap.String("reason", string(r.reason)),
				zap.Error(r.err),
			)
			continue
		}
		datasets = append(datasets, r.dataset)
		analysis.CommonKeywords = append(analysis.CommonKeywords, CommonKeywords(base.dataset, r.dataset)...)
	}

	for _, ds := range datasets {
		analysis.AllKeywords = append(analysis.AllKeywords, ds.Records...)
		analysis.Coverage = append(analysis.Coverage, model.DomainCoverage{
			Domain:           ds.Domain,
			Records:          ds.Len(),
			DistinctKeywords: len(ds.KeywordSet()),
			TotalTraffic:     ds.TotalTraffic(),
		})
	}
	analysis.Matrix = BuildMatrix(datasets)

	a.observer.ObserveAnalysis("ok", time.Since(start))
	log.Info("content gap analysis complete",
		zap.Int("total_keywords", len(analysis.AllKeywords)),
		zap.Int("common_keywords", len(analysis.CommonKeywords)),
		zap.Int("skipped", len(analysis.Skipped)),
	)

	return analysis, nil
}

// fetch retrieves and builds one domain's dataset under its own timeout.
func (a *Analyzer) fetch(ctx context.Context, domain string, scope []string) fetchResult {
	fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	start := time.Now()
	items, err := a.fetcher.FetchItems(fctx, domain)

	var res fetchResult
	switch {
	case err != nil:
		res = fetchResult{reason: skipReason(fctx, err), err: err}
	case len(items) == 0:
		res = fetchResult{reason: model.SkipReasonNoData}
	default:
		res = fetchResult{dataset: BuildDataset(domain, items, scope)}
	}

	outcome := "ok"
	if res.reason != "" {
		outcome = string(res.reason)
	}
	a.observer.ObserveFetch(domain, outcome, time.Since(start))

	return res
}

// cleanCompetitors drops blanks, duplicates and the primary itself, keeping
// first-occurrence order.
func cleanCompetitors(primary string, competitors []string) []string {
	seen := map[string]bool{primary: true}
	out := make([]string, 0, len(competitors))
	for _, c := range competitors {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			if c != "" {
				zap.L().Warn("ignoring duplicate competitor", zap.String("competitor", c))
			}
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
