// Package main is the entry point of the overland logistics daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/c74oyo/overland-logistics/internal/config"
	"github.com/c74oyo/overland-logistics/internal/ipc"
	"github.com/c74oyo/overland-logistics/internal/sim"
	"github.com/c74oyo/overland-logistics/internal/store"
	"github.com/c74oyo/overland-logistics/internal/transport"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to configuration JSON file")
	fresh := flag.Bool("fresh", false, "ignore the stored world and start from the world file")
	flag.Parse()

	if *showVersion {
		fmt.Printf("logisticsd %s (commit=%s, built=%s)\n", version, commit, date)
		os.Exit(0)
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	// Resolve config path: --config flag > LOGI_CONFIG env > config.json next to exe or in cwd.
	path := *configPath
	if path == "" {
		path = os.Getenv("LOGI_CONFIG")
	}
	if path == "" {
		path = discoverConfig()
	}
	if path == "" {
		fatal("no config found. Place config.json next to the exe, use --config <path>, or set LOGI_CONFIG.")
	}

	cfg, err := config.Load(path)
	if err != nil {
		fatal(fmt.Sprintf("load config: %v", err))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	worldFile := cfg.WorldFile
	if !filepath.IsAbs(worldFile) {
		worldFile = filepath.Join(filepath.Dir(path), worldFile)
	}
	world, err := config.LoadWorld(worldFile)
	if err != nil {
		fatal(fmt.Sprintf("load world: %v", err))
	}

	db, dialect, err := store.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		fatal(fmt.Sprintf("open database: %v", err))
	}
	ws := store.NewWorldStore(db, dialect)
	defer ws.Close()

	runner := sim.NewRunner(world, ws, logger, sim.RunnerConfig{
		TickInterval:     cfg.TickInterval(),
		TimeScale:        cfg.TimeScale,
		AutosaveInterval: cfg.AutosaveInterval(),
		Transport:        cfg.Transport,
		Options:          transport.Options{ReputationPerDelivery: cfg.Transport.ReputationPerDelivery},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*fresh {
		restored, err := runner.Restore(ctx)
		if err != nil {
			fatal(fmt.Sprintf("restore world: %v", err))
		}
		if !restored {
			logger.Info("no stored world, starting from world file", "world_file", worldFile)
		}
	}

	hub := ipc.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)
	runner.OnEvents(hub.Publish)

	handler := &ipc.Handler{Runner: runner, Store: ws}
	srv := ipc.NewServer(handler, hub, cfg.ListenAddr)

	runner.Start(ctx)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")

		runner.Stop()
		if err := runner.Save(context.Background()); err != nil {
			logger.Error("final save", "err", err)
		}
		stopHub()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "err", err)
		}
	}()

	logger.Info("overland logistics engine listening",
		"addr", cfg.ListenAddr,
		"db_driver", cfg.DBDriver,
		"database", dialect.String(),
	)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(fmt.Sprintf("server error: %v", err))
	}
}

// discoverConfig looks for config.json next to the executable, then in the cwd.
func discoverConfig() string {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if _, err := os.Stat("config.json"); err == nil {
		return "config.json"
	}
	return ""
}

func fatal(msg string) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", msg)
	os.Exit(1)
}
