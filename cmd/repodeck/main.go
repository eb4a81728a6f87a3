package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"repodeck/internal/config"
	"repodeck/internal/github"
	"repodeck/internal/logging"
	"repodeck/internal/storage"
	"repodeck/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logging.Open(filepath.Dir(configPath), cfg.LogLevel)
	if err != nil {
		fmt.Printf("failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := github.NewClient(github.WithToken(cfg.Token()))

	repos, err := store.FetchAll(cfg.Username)
	if err != nil {
		fmt.Printf("failed to load cached repositories: %v\n", err)
		os.Exit(1)
	}
	if len(repos) == 0 && cfg.Username != "" {
		log.Info("cache empty, fetching", "username", cfg.Username)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		repos, err = client.FetchPublicRepositories(ctx, cfg.Username)
		cancel()
		if err != nil {
			fmt.Printf("failed to fetch repositories for %s: %v\n", cfg.Username, err)
			os.Exit(1)
		}
		if err := store.ReplaceAll(cfg.Username, repos); err != nil {
			log.Warn("cache update failed", "error", err.Error())
		}
	}

	if err := ui.Run(store, client, cfg, log, repos); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
