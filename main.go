package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talkincode/warehouse/config"
	"github.com/talkincode/warehouse/internal/api"
	"github.com/talkincode/warehouse/internal/app"
	"github.com/talkincode/warehouse/internal/webserver"
	"go.uber.org/zap"
)

var (
	h           = flag.Bool("h", false, "help usage")
	conffile    = flag.String("c", "", "config yaml file")
	debug       = flag.Bool("debug", false, "debug mode")
	printConfig = flag.Bool("printconfig", false, "print config and exit")
	initDB      = flag.Bool("initdb", false, "seed demo products and exit")
)

func main() {
	flag.Parse()

	if *h {
		flag.Usage()
		return
	}

	cfg := config.MustLoadConfig(*conffile)
	if *debug {
		cfg.System.Debug = true
		cfg.Logger.Mode = "development"
	}

	if *printConfig {
		out, err := cfg.Dump()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(string(out))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *initDB {
		cfg.Database.Seed = false
	}

	application := app.NewApplication(cfg)
	if err := application.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		application.Release(context.Background())
		os.Exit(1)
	}

	if *initDB {
		n, err := application.SeedProducts(ctx)
		application.Release(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("seeded %d products\n", n)
		return
	}

	srv := webserver.NewServer(cfg)
	api.Register(srv, api.NewHandler(
		application.Store(),
		application.Tokens(),
		application.Bus(),
		api.Options{LegacyMode: cfg.Web.LegacyMode, OpTimeout: cfg.Database.OpTimeout},
	))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zap.L().Error("web server stopped", zap.String("namespace", "main"), zap.Error(err))
		}
	case <-ctx.Done():
		zap.L().Info("shutting down", zap.String("namespace", "main"))
	}

	timeout := cfg.Web.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("web server shutdown", zap.String("namespace", "main"), zap.Error(err))
	}
	application.Release(shutdownCtx)
}
