package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	seoform "github.com/goliatone/go-seoform"
	"github.com/goliatone/go-seoform/internal/store/sqlite"
	"github.com/goliatone/go-seoform/pkg/config"
	"github.com/goliatone/go-seoform/pkg/metrics"
)

const defaultDBPath = "seoform.db"

type app struct {
	dbPath     string
	configPath string
	debug      bool

	logger   *zap.Logger
	prompter Prompter
	registry *prometheus.Registry
	metrics  *metrics.Collector
}

func newApp() *app {
	registry := prometheus.NewRegistry()
	collector, err := metrics.New(registry)
	if err != nil {
		panic(err)
	}
	return &app{
		logger:   zap.NewNop(),
		prompter: surveyPrompter{},
		registry: registry,
		metrics:  collector,
	}
}

// NewRootCommand wires the subcommands around a.
func NewRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "seoform",
		Short: "Manage the real-time SEO field and project its form settings",
		Long: `seoform attaches the real-time SEO field to entity bundles and projects the
analysis widget settings into exported form trees.

Example:
  seoform attach node article
  seoform project --form article_form.json --entity article.json`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if a.debug {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logMetrics()
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.dbPath, "db", defaultDBPath, "SQLite database holding field definitions")
	flags.StringVar(&a.configPath, "config", "", "fields configuration document (JSON or YAML)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newAttachCommand(a),
		newDetachCommand(a),
		newStatusCommand(a),
		newProjectCommand(a),
	)
	return root
}

func (a *app) openStore() (*sqlite.Store, error) {
	store, err := seoform.OpenSQLiteStore(a.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.logger.Debug("opened field store", zap.String("path", store.Path()))
	return store, nil
}

func (a *app) loadConfig() (config.Document, error) {
	doc, err := seoform.LoadConfigFile(a.configPath)
	if err != nil {
		return config.Document{}, fmt.Errorf("load config: %w", err)
	}
	return doc, nil
}

// logMetrics reports the counters recorded by the command at debug level.
func (a *app) logMetrics() {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			attrs := []zap.Field{zap.String("metric", family.GetName())}
			for _, label := range metric.GetLabel() {
				attrs = append(attrs, zap.String(label.GetName(), label.GetValue()))
			}
			attrs = append(attrs, zap.Float64("value", metric.GetCounter().GetValue()))
			a.logger.Debug("operation count", attrs...)
		}
	}
}
