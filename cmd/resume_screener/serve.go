package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server exposing registration, login, résumé analysis and run history.

JWT_SECRET (or auth.jwt_secret) is required.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().Int("port", config.DefaultPort, "Port to listen on")
	cmd.Flags().Bool("jd-browser", false, "Render job_url pages in headless Chrome when the plain fetch finds too little text")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	analyzer, release, err := a.newAnalyzer(ctx, store, nil)
	if err != nil {
		return err
	}
	defer release()

	srv, err := server.New(server.Options{
		Config:   a.cfg,
		Store:    store,
		Analyzer: analyzer,
		Logger:   a.log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
