package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"txflow/internal/catalog"
	"txflow/internal/config"
	"txflow/internal/pipeline"
	"txflow/internal/storage"
	"txflow/internal/storage/postgres"
)

func runBuild(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBuild(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output dir is required")
	}

	info, err := os.Stat(cfg.In)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	catalogs, err := catalog.Load(cfg.Catalogs...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := []storage.Storage{storage.NewGraphFileStorage(cfg.Out)}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}

	var flows storage.FlowSink
	if cfg.FlowsOut != "" {
		flows = storage.NewJsonlStorage(cfg.FlowsOut)
	}

	p := pipeline.New(pipeline.Config{
		Catalogs:        catalogs,
		KeepZeroAddress: cfg.KeepZeroAddress,
		Concurrency:     cfg.Concurrency,
	}, sinks, flows, logger)

	logger.Info("build start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.Int("catalogs", len(catalogs)),
		zap.String("flows_out", cfg.FlowsOut),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("keep_zero_address", cfg.KeepZeroAddress),
	)

	if !info.IsDir() {
		_, err := p.RunFile(ctx, cfg.In)
		return err
	}

	results, err := p.RunDir(ctx, cfg.In)
	var nodes, edges, empty int
	for _, r := range results {
		nodes += len(r.Graph.Nodes)
		edges += len(r.Graph.Edges)
		if r.Graph.Empty() {
			empty++
		}
	}
	logger.Info("build complete",
		zap.Int("graphs", len(results)),
		zap.Int("empty", empty),
		zap.Int("nodes", nodes),
		zap.Int("edges", edges),
	)
	return err
}
