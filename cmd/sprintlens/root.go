package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprintlens/internal/config"
	"sprintlens/internal/diagnose"
	"sprintlens/internal/format"
	"sprintlens/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	markdown   bool
}

// app is the process state prepared before any subcommand runs.
var app struct {
	cfg        config.Config
	classifier *diagnose.Classifier
}

var rootCmd = &cobra.Command{
	Use:   "sprintlens",
	Short: "Summarize and trend uploaded test-run reports",
	Long: `sprintlens reads mochawesome-style JSON test reports, flattens their
suite trees, diagnoses failures against a rule table and aggregates the
results per dashboard query or per sprint.

Settings come from --config, else $SPRINTLENS_CONFIG, else built-in defaults.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to a YAML or JSON config file")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json (default from config)")
	f.BoolVar(&rootFlags.markdown, "markdown", false, "Render tables as Markdown")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func prepare(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(rootFlags.configPath)
	if err != nil {
		return err
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		cfg.LogFormat = rootFlags.logFormat
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())

	classifier := diagnose.Default()
	if cfg.RulesPath != "" {
		if classifier, err = diagnose.LoadFile(cfg.RulesPath); err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		logging.New("cli").Debug("loaded rule table", "path", cfg.RulesPath, "rules", len(classifier.Rules()))
	}

	app.cfg = cfg
	app.classifier = classifier
	return nil
}

func tableMode() format.Mode {
	return format.ModeFor(rootFlags.markdown)
}
