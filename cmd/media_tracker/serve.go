package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/fetch"
	"github.com/jonathan/media-workflow/internal/server"
	"github.com/jonathan/media-workflow/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local REST API server",
	Long:  `Start an HTTP server that exposes the tracker commands, analysis and export as REST endpoints.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, appOptions{tracker: true, gateway: true})
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	limits := a.cfg.Server.RateLimit

	srv := server.New(server.Config{
		Port:            port,
		RateLimit:       ratelimit.NewConfig(!limits.Disabled, limits.DefaultPerMinute, limits.AnalyzePerHour, limits.Whitelist),
		Logger:          a.logger,
		FetchOptions:    fetch.DefaultOptions(),
		AnalysisTimeout: a.cfg.Analysis.Timeout,
	}, a.tracker, a.gateway)

	return srv.Start(ctx)
}
