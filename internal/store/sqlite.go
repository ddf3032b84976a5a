package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/content-gap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS audits (
	id                 TEXT NOT NULL,
	user_id            TEXT NOT NULL,
	audit_id           TEXT NOT NULL,
	product            TEXT NOT NULL DEFAULT '',
	content_gap        TEXT NOT NULL,
	keyword_trends     TEXT NOT NULL DEFAULT '',
	your_domain        TEXT NOT NULL,
	competitor_domains TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_audits_user_created ON audits(user_id, created_at);

CREATE TABLE IF NOT EXISTS audit_keywords (
	id                 TEXT NOT NULL,
	user_id            TEXT NOT NULL,
	ordinal            INTEGER NOT NULL,
	keyword            TEXT NOT NULL,
	search_volume      INTEGER NOT NULL DEFAULT 0,
	keyword_difficulty REAL NOT NULL DEFAULT 0,
	cpc                REAL NOT NULL DEFAULT 0,
	last_updated       TEXT NOT NULL DEFAULT 'N/A',
	position_by_domain TEXT NOT NULL DEFAULT '{}',
	traffic_by_domain  TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (id, user_id, ordinal)
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertAudit inserts first so the transaction takes the write lock on its
// first statement, then updates when the key already existed.
func (s *SQLiteStore) UpsertAudit(ctx context.Context, in AuditInput) (UpsertResult, error) {
	row, err := prepareAudit(in, s.now())
	if err != nil {
		return UpsertResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpsertResult{}, eris.Wrap(err, "sqlite: upsert audit: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`INSERT INTO audits (`+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id, user_id) DO NOTHING`,
		row.id, row.userID, row.auditID, row.product, string(row.contentGap), "",
		row.yourDomain, row.competitorDomains, row.createdAt,
	)
	if err != nil {
		return UpsertResult{}, eris.Wrapf(err, "sqlite: insert audit %s", row.id)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return UpsertResult{}, eris.Wrapf(err, "sqlite: insert audit %s", row.id)
	}

	if inserted == 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE audits SET content_gap = ?, product = ? WHERE id = ? AND user_id = ?`,
			string(row.contentGap), row.product, row.id, row.userID,
		)
		if err != nil {
			return UpsertResult{}, eris.Wrapf(err, "sqlite: update audit %s", row.id)
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertResult{}, eris.Wrap(err, "sqlite: upsert audit: commit tx")
	}
	return row.result(inserted > 0), nil
}

func (s *SQLiteStore) GetAudit(ctx context.Context, id, userID string) (*model.Audit, error) {
	a, err := scanAudit(s.db.QueryRowContext(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE id = ? AND user_id = ?`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get audit %s", id)
	}
	return a, nil
}

func (s *SQLiteStore) ListAudits(ctx context.Context, userID string, limit int) ([]model.Audit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audits")
	}
	defer rows.Close() //nolint:errcheck

	var audits []model.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audit")
		}
		audits = append(audits, *a)
	}
	return audits, eris.Wrap(rows.Err(), "sqlite: iterate audits")
}

func (s *SQLiteStore) SaveKeywords(ctx context.Context, key AuditKey, records []model.KeywordRecord) (int64, error) {
	rows, err := keywordRows(key, records)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: save keywords: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_keywords WHERE id = ? AND user_id = ?`, key.ID, key.UserID); err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear keywords for %s", key.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO audit_keywords (`+strings.Join(keywordColumns, ", ")+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare keyword insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert keyword for %s", key.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: save keywords: commit tx")
	}
	return int64(len(rows)), nil
}
