package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/filterdeck/filterdeck/internal/client"
	"github.com/filterdeck/filterdeck/internal/config"
	"github.com/filterdeck/filterdeck/internal/handlers"
	"github.com/filterdeck/filterdeck/internal/logging"
	"github.com/filterdeck/filterdeck/internal/server"
	"github.com/filterdeck/filterdeck/internal/service"
	"github.com/filterdeck/filterdeck/internal/suggest"
)

const version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the filterdeck HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "override listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("filterdeck"))
	logging.SetDefault(logger)

	slog.Info("Starting filterdeck service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	if addr != "" {
		listenAddr = addr
	}

	// The search backend is optional: without it the service still edits,
	// compiles and previews filters.
	var osClient *client.OpenSearchClient
	var suggester suggest.Suggester
	var catalog suggest.Catalog
	if cfg.OpenSearch.URL != "" {
		osClient, err = client.New(cfg.OpenSearch)
		if err != nil {
			return fmt.Errorf("connect opensearch: %w", err)
		}
		slog.Info("Connected to OpenSearch", slog.String("url", cfg.OpenSearch.URL))
		suggester = suggest.New(osClient, logger.Logger)
		catalog = osClient
	} else {
		slog.Info("Search backend disabled")
	}

	svc := service.New(version, osClient, suggester, catalog)
	h := handlers.New(svc)

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      server.NewRouter(h, cfg.CORS),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("filterdeck service listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCtx.Done()
	log.Println("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	return nil
}
