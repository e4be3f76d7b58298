package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahrav/go-fairaudit/infrastructure/cache"
	"github.com/ahrav/go-fairaudit/infrastructure/dataset"
	"github.com/ahrav/go-fairaudit/infrastructure/middleware"
	"github.com/ahrav/go-fairaudit/infrastructure/report"
	"github.com/ahrav/go-fairaudit/internal/application"
	"github.com/ahrav/go-fairaudit/internal/domain"
)

type auditOptions struct {
	inputs          []string
	inputFormat     string
	configPath      string
	tolerance       float64
	format          string
	metrics         []string
	normalizeGroups bool
	predColumn      string
	labelColumn     string
	groupColumn     string
	metricsOut      string
}

func newAuditCommand(ro *rootOptions) *cobra.Command {
	o := &auditOptions{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit one or more datasets of predictions, labels, and groups",
		Example: `  fairaudit audit --input loans.csv
  fairaudit audit --input q1.json --input q2.json --tolerance 0.05 --format markdown
  fairaudit audit --input scores.csv --group-column gender --metrics equal_opportunity`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd, ro.logger, o)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&o.inputs, "input", "i", nil, "dataset file (csv or json); repeat to audit several")
	flags.StringVar(&o.inputFormat, "input-format", "", "force the input format (csv|json); default detects by extension")
	flags.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	flags.Float64VarP(&o.tolerance, "tolerance", "t", domain.DefaultTolerance, "maximum disparity a metric may show and still pass, in (0, 1]")
	flags.StringVarP(&o.format, "format", "f", "text", "report format (json|markdown|text)")
	flags.StringSliceVar(&o.metrics, "metrics", nil, "only render these metrics (names or aliases)")
	flags.BoolVar(&o.normalizeGroups, "normalize-groups", false, "case-fold group labels before auditing")
	flags.StringVar(&o.predColumn, "prediction-column", dataset.DefaultPredictionColumn, "CSV column holding predictions")
	flags.StringVar(&o.labelColumn, "label-column", dataset.DefaultLabelColumn, "CSV column holding ground-truth labels")
	flags.StringVar(&o.groupColumn, "group-column", dataset.DefaultGroupColumn, "CSV column holding the sensitive attribute")
	flags.StringVar(&o.metricsOut, "metrics-out", "", "write Prometheus metrics in text format to this file")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAudit(cmd *cobra.Command, logger *zap.Logger, o *auditOptions) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd, o)
	if err != nil {
		return cliError{code: exitError, err: err}
	}
	renderOpts, err := renderOptions(cfg.Render.Metrics)
	if err != nil {
		return cliError{code: exitError, err: err}
	}

	reg := prometheus.NewRegistry()
	metrics := middleware.NewPrometheusMetrics(reg)

	svcOpts := []application.Option{
		application.WithLogger(logger),
		application.WithObserver(middleware.NewOTelAuditObserver(metrics)),
	}
	if cfg.Cache.Size > 0 {
		store, err := cache.NewLRUStore(cfg.Cache.Size, metrics)
		if err != nil {
			return cliError{code: exitError, err: err}
		}
		svcOpts = append(svcOpts, application.WithCache(store))
	}
	svc, err := application.NewAuditService(cfg, svcOpts...)
	if err != nil {
		return cliError{code: exitError, err: err}
	}

	loader := dataset.NewLoader(o.inputFormat)
	loader.CSV.PredictionColumn = o.predColumn
	loader.CSV.LabelColumn = o.labelColumn
	loader.CSV.GroupColumn = o.groupColumn

	datasets := make([]domain.Dataset, 0, len(o.inputs))
	for _, path := range o.inputs {
		ds, err := loader.Load(ctx, path)
		if err != nil {
			return cliError{code: exitError, err: err}
		}
		logger.Debug("dataset loaded", zap.String("path", path), zap.String("dataset", ds.Name), zap.Int("subjects", ds.Len()))
		datasets = append(datasets, ds)
	}

	results, err := svc.AuditBatch(ctx, datasets)
	if err != nil {
		return cliError{code: exitError, err: err}
	}

	out := cmd.OutOrStdout()
	rejected, unfair := 0, 0
	for _, r := range results {
		if r.Err != nil {
			rejected++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Dataset, r.Err)
			continue
		}
		env := report.NewEnvelope(r.Dataset, r.Report)
		report.LogSummary(logger, env)
		if err := report.Render(out, cfg.Render.Format, env, renderOpts); err != nil {
			return cliError{code: exitError, err: err}
		}
		if !r.Report.Passed {
			unfair++
		}
	}

	if o.metricsOut != "" {
		if err := prometheus.WriteToTextfile(o.metricsOut, reg); err != nil {
			return cliError{code: exitError, err: fmt.Errorf("failed to write metrics: %w", err)}
		}
	}

	switch {
	case rejected > 0:
		return cliError{code: exitError, err: fmt.Errorf("%d of %d datasets rejected", rejected, len(results))}
	case unfair > 0:
		return cliError{code: exitUnfair, err: fmt.Errorf("%d of %d datasets exceed tolerance %.4f", unfair, len(results), cfg.Tolerance)}
	}
	return nil
}

// resolveConfig loads the configuration file, if any, and applies flags the
// user set explicitly on top of it.
func resolveConfig(cmd *cobra.Command, o *auditOptions) (application.Config, error) {
	cfg := application.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = application.LoadConfig(o.configPath); err != nil {
			return application.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("tolerance") {
		cfg.Tolerance = o.tolerance
	}
	if flags.Changed("format") {
		cfg.Render.Format = o.format
	}
	if flags.Changed("metrics") {
		cfg.Render.Metrics = o.metrics
	}
	if flags.Changed("normalize-groups") {
		cfg.NormalizeGroups = o.normalizeGroups
	}

	if err := application.ValidateConfig(cfg); err != nil {
		return application.Config{}, err
	}
	return cfg, nil
}

// renderOptions resolves metric names and aliases to the names used in
// reports.
func renderOptions(names []string) (report.Options, error) {
	registry := application.NewMetricRegistry()
	var opts report.Options
	for _, name := range names {
		d, err := registry.Resolve(name)
		if err != nil {
			return report.Options{}, err
		}
		opts.Metrics = append(opts.Metrics, d.Name)
	}
	return opts, nil
}
