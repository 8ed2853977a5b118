// Package main provides the resume_screener CLI: batch scoring, the HTTP API
// server and account administration.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/logger"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/similarity"
)

// app carries what every subcommand shares once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgPath string
	cfg     *config.Config
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:   "resume_screener",
		Short: "Rank résumés against a job description",
		Long: `Resume Screener scores résumés (PDF, DOCX, text) against a job description using
TF-IDF or embedding similarity, matched skills and years of experience, and ranks them.

Configuration is read from --config (or resume_screener.yaml in the working directory),
then SCREENER_* environment variables, then flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "Path to a YAML or JSON config file")
	pf.Bool("debug", false, "Enable debug logging")
	pf.Bool("log-json", false, "Log as JSON")
	pf.String("database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL; SQLite is used when empty)")
	pf.String("sqlite", config.DefaultSQLitePath, "SQLite database path used when no PostgreSQL URL is set")
	pf.String("strategy", similarity.NameTFIDF, "Similarity strategy: tfidf or embedding")
	pf.String("scheme", string(ranking.SchemeAdditive), "Scoring scheme: additive or normalized")
	pf.String("skills-file", "", "YAML skill vocabulary file (a skills: list of phrases)")
	pf.String("embedding-provider", "", "Embedding provider: gemini or openai")
	pf.String("embedding-model", "", "Embedding model (defaults to the provider's model)")

	cmd.AddCommand(
		newAnalyzeCmd(a),
		newServeCmd(a),
		newUserCmd(a),
		newExportCmd(a),
		newRunsCmd(a),
	)
	return cmd
}

// setup loads configuration with this command's flags bound and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.NewWithOutput(cfg.LogJSON, cfg.Debug, "stderr")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = log
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
