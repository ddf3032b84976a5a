package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/content-gap/internal/model"
)

// ErrNotFound is returned when an audit does not exist for the given key.
var ErrNotFound = eris.New("store: audit not found")

// ErrInvalidAudit is returned when an upsert is missing its user.
var ErrInvalidAudit = eris.New("store: user id is required")

// ErrInvalidKey is returned when keyword rows are saved without a full key.
var ErrInvalidKey = eris.New("store: audit id and user id are required")

// defaultListLimit caps ListAudits when no limit is given.
const defaultListLimit = 50

// AuditInput is the data written by UpsertAudit.
type AuditInput struct {
	ID          string
	UserID      string
	Product     string
	Primary     string
	Competitors []string
	Analysis    *model.Analysis
}

// AuditKey is the primary key of an audit row.
type AuditKey struct {
	ID     string
	UserID string
}

// UpsertResult describes the row written by UpsertAudit.
type UpsertResult struct {
	// Key is the resolved row key, including a generated ID.
	Key AuditKey
	// Identifier is the generated audit identifier for a new row, or the
	// row ID when an existing row was updated.
	Identifier string
	Created    bool
}

// Store defines the persistence interface for content gap audits.
type Store interface {
	// UpsertAudit updates the content gap and product of an existing
	// (ID, UserID) row, or inserts a new row.
	UpsertAudit(ctx context.Context, in AuditInput) (UpsertResult, error)
	GetAudit(ctx context.Context, id, userID string) (*model.Audit, error)
	ListAudits(ctx context.Context, userID string, limit int) ([]model.Audit, error)

	// SaveKeywords replaces the flattened keyword rows stored for key.
	SaveKeywords(ctx context.Context, key AuditKey, records []model.KeywordRecord) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

var newUUID = uuid.NewString

// NewAuditID builds the human-readable identifier stored with a new audit.
func NewAuditID(primary string, competitors []string) string {
	return "Competitor Audit_" + primary + " & " + strings.Join(competitors, ", ") + "_" + newUUID()
}

// auditRow is the normalized write shared by both backends.
type auditRow struct {
	id                string
	userID            string
	auditID           string
	product           string
	contentGap        []byte
	yourDomain        string
	competitorDomains string
	createdAt         time.Time
}

func (r auditRow) key() AuditKey {
	return AuditKey{ID: r.id, UserID: r.userID}
}

// result builds the UpsertResult for a row that was inserted or updated.
func (r auditRow) result(created bool) UpsertResult {
	res := UpsertResult{Key: r.key(), Identifier: r.id, Created: created}
	if created {
		res.Identifier = r.auditID
	}
	return res
}

func prepareAudit(in AuditInput, now time.Time) (auditRow, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return auditRow{}, ErrInvalidAudit
	}
	id := in.ID
	if id == "" {
		id = newUUID()
	}

	payload, err := json.Marshal(in.Analysis)
	if err != nil {
		return auditRow{}, eris.Wrap(err, "store: marshal content gap")
	}

	return auditRow{
		id:                id,
		userID:            in.UserID,
		auditID:           NewAuditID(in.Primary, in.Competitors),
		product:           in.Product,
		contentGap:        payload,
		yourDomain:        in.Primary,
		competitorDomains: strings.Join(in.Competitors, ", "),
		createdAt:         now.UTC(),
	}, nil
}

var keywordKeyColumns = []string{"id", "user_id"}

var keywordColumns = []string{
	"id", "user_id", "ordinal", "keyword", "search_volume", "keyword_difficulty",
	"cpc", "last_updated", "position_by_domain", "traffic_by_domain",
}

// keywordRows flattens records into rows matching keywordColumns.
func keywordRows(key AuditKey, records []model.KeywordRecord) ([][]any, error) {
	if key.ID == "" || key.UserID == "" {
		return nil, ErrInvalidKey
	}
	rows := make([][]any, 0, len(records))
	for i, r := range records {
		positions, err := json.Marshal(r.PositionByDomain)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal positions")
		}
		traffic, err := json.Marshal(r.TrafficByDomain)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal traffic")
		}
		rows = append(rows, []any{
			key.ID, key.UserID, i, r.Keyword, r.SearchVolume, r.KeywordDifficulty,
			r.CPC, r.LastUpdated, string(positions), string(traffic),
		})
	}
	return rows, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAudit(row scannable) (*model.Audit, error) {
	var a model.Audit
	var contentGap []byte
	if err := row.Scan(&a.ID, &a.UserID, &a.AuditID, &a.Product, &contentGap,
		&a.KeywordTrends, &a.YourDomain, &a.CompetitorDomains, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ContentGap = string(contentGap)
	return &a, nil
}
