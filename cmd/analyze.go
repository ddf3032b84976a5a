package main

import (
	"context"
	"encoding/json"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/content-gap/internal/model"
	"github.com/sells-group/content-gap/internal/report"
	"github.com/sells-group/content-gap/internal/store"
)

// analyzeOptions are the resolved inputs of the analyze command.
type analyzeOptions struct {
	Targets  model.Targets
	Format   string
	Limit    int
	XLSXPath string
	Save     *saveRequest // nil when the result is not persisted
}

var (
	analyzeDomain      string
	analyzeCompetitors []string
	analyzeTargetsFile string
	analyzeFormat      string
	analyzeLimit       int
	analyzeXLSX        string
	analyzeSave        bool
	analyzeID          string
	analyzeUserID      string
	analyzeProduct     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a content gap analysis for a domain against its competitors",
	Example: `  content-gap analyze --domain dataforseo.com --competitors ahrefs.com,semrush.com
  content-gap analyze --targets targets.yaml --format json --xlsx gap.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		targets, err := resolveTargets(analyzeTargetsFile, analyzeDomain, analyzeCompetitors)
		if err != nil {
			return err
		}
		opts := analyzeOptions{
			Targets:  targets,
			Format:   analyzeFormat,
			Limit:    analyzeLimit,
			XLSXPath: analyzeXLSX,
		}
		if err := validateFormat(opts.Format); err != nil {
			return err
		}

		var st store.Store
		if analyzeSave {
			if analyzeUserID == "" {
				return eris.New("--user-id is required with --save")
			}
			opts.Save = &saveRequest{ID: analyzeID, UserID: analyzeUserID, Product: analyzeProduct}
			st, err = openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		env, err := initAnalysis(nil)
		if err != nil {
			return err
		}

		_, err = runAnalyze(ctx, cmd.OutOrStdout(), env.Analyzer, st, opts)
		zap.L().Info("dataforseo: session cost", zap.Float64("cost", env.Client.Cost()))
		return err
	},
}

func validateFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return eris.Errorf("unsupported format %q (want table or json)", format)
	}
}

// runAnalyze runs the analysis, writes it to w, exports and persists it as
// requested. A persistence failure is returned after the result is written.
func runAnalyze(ctx context.Context, w io.Writer, az analyzer, st store.Store, opts analyzeOptions) (*model.Analysis, error) {
	log := zap.L().With(zap.String("domain", opts.Targets.Domain))

	a, err := az.Analyze(ctx, opts.Targets.Domain, opts.Targets.Competitors)
	if err != nil {
		return nil, eris.Wrap(err, "analyze")
	}

	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			return a, eris.Wrap(err, "encode analysis")
		}
	default:
		if err := report.WriteAnalysis(w, a, report.Options{Limit: opts.Limit}); err != nil {
			return a, eris.Wrap(err, "write analysis")
		}
	}

	if opts.XLSXPath != "" {
		if err := report.WriteWorkbook(a, opts.XLSXPath); err != nil {
			return a, err
		}
		log.Info("workbook written", zap.String("path", opts.XLSXPath))
	}

	if opts.Save != nil && st != nil {
		res, err := saveAnalysis(ctx, st, *opts.Save, a)
		if err != nil {
			log.Error("persist analysis failed", zap.Error(err))
			return a, err
		}
		log.Info("analysis saved",
			zap.String("id", res.Key.ID),
			zap.String("audit_id", res.Identifier),
			zap.Bool("created", res.Created),
		)
	}

	return a, nil
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeDomain, "domain", "d", "", "primary domain to analyze")
	f.StringSliceVarP(&analyzeCompetitors, "competitors", "c", nil, "competitor domains (comma-separated)")
	f.StringVar(&analyzeTargetsFile, "targets", "", "YAML file with domain and competitors")
	f.StringVar(&analyzeFormat, "format", "table", "output format: table or json")
	f.IntVar(&analyzeLimit, "limit", 20, "max keyword rows printed per table (0 = all)")
	f.StringVar(&analyzeXLSX, "xlsx", "", "write the analysis to an XLSX workbook at this path")
	f.BoolVar(&analyzeSave, "save", false, "persist the analysis as an audit")
	f.StringVar(&analyzeID, "id", "", "audit record id to create or update (default: generated)")
	f.StringVar(&analyzeUserID, "user-id", "", "owner of the audit record")
	f.StringVar(&analyzeProduct, "product", "", "product the audit belongs to")
	rootCmd.AddCommand(analyzeCmd)
}
