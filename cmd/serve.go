package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/content-gap/internal/gap"
	"github.com/sells-group/content-gap/internal/model"
	"github.com/sells-group/content-gap/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the content gap HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		env, err := initAnalysis(reg)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(&api{analyzer: env.Analyzer, store: st, gatherer: reg}, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// api holds the dependencies of the HTTP handlers.
type api struct {
	analyzer analyzer
	store    store.Store
	gatherer prometheus.Gatherer
}

func newRouter(a *api, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", a.handleAnalyze)
		r.Get("/audits/{userID}", a.handleListAudits)
		r.Get("/audits/{userID}/{id}", a.handleGetAudit)
	})

	return r
}

type analyzeRequest struct {
	Domain      string   `json:"domain"`
	Competitors []string `json:"competitors"`
	ID          string   `json:"id,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
	Product     string   `json:"product,omitempty"`
}

type analyzeResponse struct {
	*model.Analysis
	RecordID   string `json:"id,omitempty"`
	AuditID    string `json:"audit_id,omitempty"`
	AuditError string `json:"audit_error,omitempty"`
}

func (a *api) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	analysis, err := a.analyzer.Analyze(r.Context(), req.Domain, req.Competitors)
	switch {
	case errors.Is(err, gap.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, gap.ErrNoDataForPrimaryDomain):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		zap.L().Error("analyze request failed", zap.String("domain", req.Domain), zap.Error(err))
		writeError(w, http.StatusBadGateway, "analysis failed")
		return
	}

	resp := analyzeResponse{Analysis: analysis}
	if req.UserID != "" && a.store != nil {
		res, err := saveAnalysis(r.Context(), a.store, saveRequest{
			ID:      req.ID,
			UserID:  req.UserID,
			Product: req.Product,
		}, analysis)
		resp.RecordID = res.Key.ID
		resp.AuditID = res.Identifier
		if err != nil {
			zap.L().Error("persist analysis failed", zap.String("domain", req.Domain), zap.Error(err))
			resp.AuditError = err.Error()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *api) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}

	audit, err := a.store.GetAudit(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	if err != nil {
		zap.L().Error("get audit failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get audit failed")
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (a *api) handleListAudits(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	audits, err := a.store.ListAudits(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		zap.L().Error("list audits failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list audits failed")
		return
	}
	if audits == nil {
		audits = []model.Audit{}
	}
	writeJSON(w, http.StatusOK, audits)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
