package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/content-gap/internal/db"
	"github.com/sells-group/content-gap/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	now     func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, now: time.Now}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS audits (
	id                 TEXT NOT NULL,
	user_id            TEXT NOT NULL,
	audit_id           TEXT NOT NULL,
	product            TEXT NOT NULL DEFAULT '',
	content_gap        JSONB NOT NULL,
	keyword_trends     TEXT NOT NULL DEFAULT '',
	your_domain        TEXT NOT NULL,
	competitor_domains TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_audits_user_created ON audits(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS audit_keywords (
	id                 TEXT NOT NULL,
	user_id            TEXT NOT NULL,
	ordinal            INTEGER NOT NULL,
	keyword            TEXT NOT NULL,
	search_volume      BIGINT NOT NULL DEFAULT 0,
	keyword_difficulty DOUBLE PRECISION NOT NULL DEFAULT 0,
	cpc                DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_updated       TEXT NOT NULL DEFAULT 'N/A',
	position_by_domain JSONB NOT NULL DEFAULT '{}',
	traffic_by_domain  JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (id, user_id, ordinal)
);
`

const auditColumns = `id, user_id, audit_id, product, content_gap, keyword_trends, your_domain, competitor_domains, created_at`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// UpsertAudit writes the audit in one statement. xmax is zero only on rows
// the statement inserted, which tells an insert from a conflict update.
func (s *PostgresStore) UpsertAudit(ctx context.Context, in AuditInput) (UpsertResult, error) {
	row, err := prepareAudit(in, s.clock())
	if err != nil {
		return UpsertResult{}, err
	}

	var created bool
	err = s.pool.QueryRow(ctx,
		`INSERT INTO audits (`+auditColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id, user_id) DO UPDATE SET content_gap = EXCLUDED.content_gap, product = EXCLUDED.product
		 RETURNING (xmax = 0)`,
		row.id, row.userID, row.auditID, row.product, row.contentGap, "",
		row.yourDomain, row.competitorDomains, row.createdAt,
	).Scan(&created)
	if err != nil {
		return UpsertResult{}, eris.Wrapf(err, "postgres: upsert audit %s", row.id)
	}
	return row.result(created), nil
}

func (s *PostgresStore) GetAudit(ctx context.Context, id, userID string) (*model.Audit, error) {
	a, err := scanAudit(s.pool.QueryRow(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get audit %s", id)
	}
	return a, nil
}

func (s *PostgresStore) ListAudits(ctx context.Context, userID string, limit int) ([]model.Audit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audits")
	}
	defer rows.Close()

	var audits []model.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit")
		}
		audits = append(audits, *a)
	}
	return audits, eris.Wrap(rows.Err(), "postgres: iterate audits")
}

func (s *PostgresStore) SaveKeywords(ctx context.Context, key AuditKey, records []model.KeywordRecord) (int64, error) {
	rows, err := keywordRows(key, records)
	if err != nil {
		return 0, err
	}
	n, err := db.ReplaceRows(ctx, s.pool, db.ReplaceConfig{
		Table:   "audit_keywords",
		KeyCols: keywordKeyColumns,
		Columns: keywordColumns,
	}, []any{key.ID, key.UserID}, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save keywords for %s", key.ID)
	}
	return n, nil
}
