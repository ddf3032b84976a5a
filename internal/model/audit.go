package model

import "time"

// Audit is a persisted analysis, keyed by (ID, UserID).
type Audit struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	AuditID           string    `json:"audit_id"`
	Product           string    `json:"product"`
	ContentGap        string    `json:"content_gap"`
	KeywordTrends     string    `json:"keyword_trends"`
	YourDomain        string    `json:"your_domain"`
	CompetitorDomains string    `json:"competitor_domains"`
	CreatedAt         time.Time `json:"created_at"`
}
