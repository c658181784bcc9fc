package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garnizeh/vagas/internal/config"
	"github.com/garnizeh/vagas/internal/db"
)

// Replaces the configured database with a backup. Stop the server first.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	src := flag.String("from", "", "Backup file to restore")
	flag.Parse()

	if *src == "" {
		fmt.Fprintln(os.Stderr, "-from is required")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stat(*src); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	backup, err := db.New(ctx, *src, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer backup.Close()

	var check string
	if err := backup.QueryRow(ctx, `PRAGMA integrity_check`).Scan(&check); err != nil || check != "ok" {
		fmt.Fprintf(os.Stderr, "Restore error: backup failed integrity check (%s, %v)\n", check, err)
		os.Exit(1)
	}

	tmp := cfg.DatabasePath + ".restore"
	_ = os.Remove(tmp)
	if _, err := backup.Exec(ctx, `VACUUM INTO ?`, tmp); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(cfg.DatabasePath + suffix)
	}
	if err := os.Rename(tmp, cfg.DatabasePath); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database %s restored from %s.\n", cfg.DatabasePath, *src)
}
