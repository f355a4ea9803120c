package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/seawise/seawise/pkg/wire"
	"github.com/seawise/seawise/server/internal/alerts"
	"github.com/seawise/seawise/server/internal/api"
	"github.com/seawise/seawise/server/internal/auth"
	"github.com/seawise/seawise/server/internal/config"
	"github.com/seawise/seawise/server/internal/history"
	"github.com/seawise/seawise/server/internal/receiver"
	"github.com/seawise/seawise/server/internal/store"
	"github.com/seawise/seawise/server/internal/ws"
)

// broadcastInterval is how often the WebSocket hub pushes the fleet snapshot.
const broadcastInterval = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve dashboard static files from this directory; leave empty to disable")
	logLevel := flag.String("log-level", "info", "log level: debug | info | warn | error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env", "err", err)
	}

	slog.Info("seawise-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	srv := cfg.Server
	slog.Info("config loaded",
		"grpc_port", srv.GRPCPort,
		"http_port", srv.HTTPPort,
		"auth_mode", srv.Auth.Mode,
		"snapshot_ttl", srv.Snapshot.TTL,
		"history", srv.Storage.Enabled(),
		"alert_rules", len(srv.Alerts.Rules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, srv, *uiDir); err != nil {
		slog.Error("seawise-server failed", "err", err)
		os.Exit(1)
	}
	slog.Info("seawise-server stopped")
}

// run wires the store, history, alerts, gRPC receiver and HTTP surface and
// blocks until ctx is cancelled or a listener fails.
func run(ctx context.Context, cfg config.ServerConfig, uiDir string) error {
	alertEngine, err := alerts.New(cfg.Alerts)
	if err != nil {
		return err
	}
	defer alertEngine.Wait()

	st := store.New(cfg.Snapshot.TTL)

	// Interfaces stay nil when storage is disabled; a typed nil would not.
	var (
		recorder receiver.Recorder
		reader   api.HistoryReader
		hist     *history.History
	)
	if cfg.Storage.Enabled() {
		hist, err = history.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer hist.Close() //nolint:errcheck
		recorder, reader = hist, hist
		slog.Info("prediction history enabled", "path", cfg.Storage.Path, "retention", cfg.Storage.Retention)
	}

	key := cfg.Auth.Key()
	if cfg.Auth.Mode == "apikey" && key == "" {
		slog.Warn("auth mode is apikey but no key is set; requests are not checked", "key_env", cfg.Auth.KeyEnv)
	}
	header := cfg.Auth.EffectiveHeader()

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(auth.APIKeyInterceptor(cfg.Auth.Mode, header, key)))
	wire.RegisterPredictionServiceServer(grpcSrv, receiver.New(st, recorder, alertEngine))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc :%d: %w", cfg.GRPCPort, err)
	}

	apiHandler := api.New(st, alertEngine, reader)
	hub := ws.New(apiHandler, broadcastInterval)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHTTPHandler(apiHandler, hub, uiDir, cfg.Auth.Mode, header, key),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		st.Run(gctx)
		return nil
	})
	if hist != nil {
		g.Go(func() error {
			hist.RunRetention(gctx, cfg.Storage.Retention)
			return nil
		})
	}
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("gRPC receiver listening", "port", cfg.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("seawise-server shutting down")
		grpcSrv.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
