package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-scorer/internal/config"
	"github.com/jonathan/cv-scorer/internal/db"
	"github.com/jonathan/cv-scorer/internal/evaluation"
	"github.com/jonathan/cv-scorer/internal/jobs"
	"github.com/jonathan/cv-scorer/internal/llm"
	"github.com/jonathan/cv-scorer/internal/queue"
	"github.com/jonathan/cv-scorer/internal/rubric"
	"github.com/jonathan/cv-scorer/internal/scoring"
	"github.com/jonathan/cv-scorer/internal/server"
)

var (
	serveConfigPath string
	serveListenAddr string
	serveWorkers    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring service",
	Long:  `Start the HTTP API, the dispatcher workers and the reconciliation sweep.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Dispatcher worker count (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if serveListenAddr != "" {
		cfg.ListenAddr = serveListenAddr
	}
	if serveWorkers > 0 {
		cfg.Workers = serveWorkers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	q := queue.NewMemory()
	jobService := jobs.NewService(database, q)

	orchestrator := evaluation.NewOrchestrator(
		rubric.NewBuilder(client),
		scoring.NewScorer(client, cfg.SectionConcurrency),
	)

	registry := jobs.NewRegistry()
	if err := registry.Register(evaluation.NewScoreCVHandler(orchestrator, database, database)); err != nil {
		return err
	}

	dispatcher := jobs.NewDispatcher(database, q, registry, cfg.Workers)
	srv := server.New(server.Config{ListenAddr: cfg.ListenAddr}, jobService, database)

	reconcileEvery := time.Duration(cfg.ReconcileSeconds) * time.Second

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gCtx)
	})
	g.Go(func() error {
		jobService.StartReconciler(gCtx, reconcileEvery, reconcileEvery)
		return nil
	})
	g.Go(func() error {
		return srv.Start(gCtx)
	})

	return g.Wait()
}
