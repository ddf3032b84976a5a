package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/content-gap/internal/model"
	"github.com/sells-group/content-gap/internal/store"
)

// initStore opens the configured audit store. Callers own Close and Migrate.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "content-gap.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("postgres store requires a database url (GAP_STORE_DATABASE_URL)")
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens and migrates the configured store.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// saveRequest identifies the audit row an analysis is written to.
type saveRequest struct {
	ID      string
	UserID  string
	Product string
}

// saveAnalysis upserts the audit and replaces the keyword rows stored under
// its row key.
func saveAnalysis(ctx context.Context, st store.Store, req saveRequest, a *model.Analysis) (store.UpsertResult, error) {
	res, err := st.UpsertAudit(ctx, store.AuditInput{
		ID:          req.ID,
		UserID:      req.UserID,
		Product:     req.Product,
		Primary:     a.PrimaryDomain,
		Competitors: a.Competitors,
		Analysis:    a,
	})
	if err != nil {
		return store.UpsertResult{}, eris.Wrap(err, "save audit")
	}
	if _, err := st.SaveKeywords(ctx, res.Key, a.AllKeywords); err != nil {
		return res, eris.Wrap(err, "save audit keywords")
	}
	return res, nil
}
