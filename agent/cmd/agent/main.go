package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/seawise/seawise/agent/internal/compute"
	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/agent/internal/security"
	"github.com/seawise/seawise/agent/internal/shipper"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	logLevel := flag.String("log-level", "info", "log level: debug | info | warn | error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Secrets referenced by *_env config keys may live in a local .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env", "err", err)
	}

	slog.Info("seawise-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"server_endpoint", cfg.Agent.ServerEndpoint,
		"vessels", len(cfg.Agent.Vessels),
		"sample_interval", cfg.Agent.SampleInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ship := shipper.New(cfg.Agent)
	f := newFleet(compute.NewEngine(), &security.Checker{}, ship)
	f.reload(cfg.Agent.Vessels)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := config.Watch(gctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded", "vessels", len(updated.Agent.Vessels))
			f.reload(updated.Agent.Vessels)
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
		return nil
	})

	g.Go(func() error {
		ship.Run(gctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Agent.SampleInterval)
		defer ticker.Stop()
		f.sample(gctx, time.Now())
		for {
			select {
			case <-gctx.Done():
				return nil
			case t := <-ticker.C:
				f.sample(gctx, t)
			}
		}
	})

	_ = g.Wait()
	slog.Info("seawise-agent shutting down", "unsent", ship.Pending())
}
