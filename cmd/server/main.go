// Package main - Entry point for the standalone analysis API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"synergism-calc/adapters/storage"
	"synergism-calc/api"
	"synergism-calc/internal/config"
	"synergism-calc/internal/logging"
	"synergism-calc/internal/version"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "config file")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	if err := run(*cfgPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	if addr == "" {
		addr = cfg.Server.Address
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, storage.Backend(cfg.History.Backend), cfg.History.Location())
	if err != nil {
		return err
	}
	defer store.Close()

	logging.Info("starting synergism-calc server",
		zap.String("version", version.String()),
		zap.String("addr", addr),
		zap.String("history", cfg.History.Backend))
	return api.NewServer(version.String(), cfg.Server, api.WithStore(store)).ListenAndServe(ctx, addr)
}
