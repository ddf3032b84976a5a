package model

import "time"

// SkipReason explains why a competitor is missing from an analysis.
type SkipReason string

const (
	SkipReasonNoData      SkipReason = "no_data"
	SkipReasonFetchFailed SkipReason = "fetch_failed"
	SkipReasonTimeout     SkipReason = "timeout"
)

// SkippedCompetitor records a competitor excluded from the matrix and common keywords.
type SkippedCompetitor struct {
	Domain string     `json:"domain"`
	Reason SkipReason `json:"reason"`
	Error  string     `json:"error,omitempty"`
}

// DomainCoverage summarises one fetched domain.
type DomainCoverage struct {
	Domain           string  `json:"domain"`
	Records          int     `json:"records"`
	DistinctKeywords int     `json:"distinct_keywords"`
	TotalTraffic     float64 `json:"total_traffic"`
}

// Analysis is the outcome of a content gap run.
type Analysis struct {
	PrimaryDomain  string              `json:"primary_domain"`
	Competitors    []string            `json:"competitors"`
	AllKeywords    []KeywordRecord     `json:"all_keywords"`
	CommonKeywords []KeywordRecord     `json:"common_keywords"`
	Matrix         IntersectionMatrix  `json:"matrix"`
	Coverage       []DomainCoverage    `json:"coverage"`
	Skipped        []SkippedCompetitor `json:"skipped,omitempty"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// Targets names the domains to compare. It is the shape of a targets file.
type Targets struct {
	Domain      string   `yaml:"domain" json:"domain"`
	Competitors []string `yaml:"competitors" json:"competitors"`
}
