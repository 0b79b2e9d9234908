package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ystepanoff/nfcgate"
	"github.com/ystepanoff/nfcgate/config"
)

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "path to the TOML config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Shutdown signal received: %s", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("nfcgate: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := nfcgate.LoadConfig(configPath)
	if err != nil {
		return err
	}

	gate, err := nfcgate.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := gate.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	// Without a reader there is nothing to do; report once and exit.
	if err := gate.Start(); err != nil {
		return err
	}

	return gate.Run(ctx)
}
