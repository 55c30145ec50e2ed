package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/personal-ledger/ledger-backend/internal/common"
	"github.com/personal-ledger/ledger-backend/internal/ingest"
	"github.com/personal-ledger/ledger-backend/internal/repository"
	"github.com/personal-ledger/ledger-backend/internal/telemetry"
)

// ledger-import loads one or more bulk category documents into the store.
// Documents are named as arguments, or discovered under --dir.
func main() {
	dir := flag.String("dir", "", "import every JSON document under this directory")
	flag.Parse()

	documents := flag.Args()
	if *dir != "" {
		found, err := collectDocuments(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: scanning %s: %v\n", *dir, err)
			os.Exit(1)
		}
		documents = append(documents, found...)
	}
	if len(documents) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ledger-import [--dir DIR] [FILE ...]")
		fmt.Fprintln(os.Stderr, "Error: no import documents given")
		os.Exit(1)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := telemetry.Init(telemetry.Config{
		Level: cfg.Server.LogLevel,
		JSON:  cfg.Server.LogJSON,
	})

	ctx := context.Background()

	db, err := repository.Open(ctx, repository.Config{
		Engine:           cfg.Database.Engine,
		Path:             cfg.Database.Path,
		URL:              cfg.Database.URL,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)

	// Importing into a fresh store is a supported bootstrap path.
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	svc := ingest.NewService(repository.NewCategoryRepository(db, logger), logger)

	imported := 0
	failures := 0
	for _, path := range documents {
		count, err := importDocument(ctx, svc, path)
		if err != nil {
			logger.Error("import failed", "path", path, "error", err)
			failures++
			continue
		}
		logger.Info("document imported", "path", path, "count", count)
		imported += count
	}

	fmt.Printf("Import complete!\n")
	fmt.Printf("- Documents processed: %d\n", len(documents))
	fmt.Printf("- Categories imported: %d\n", imported)
	fmt.Printf("- Failures: %d\n", failures)

	if failures > 0 {
		os.Exit(1)
	}
}

func importDocument(ctx context.Context, svc *ingest.Service, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()
	return svc.ImportJSON(ctx, f)
}

func collectDocuments(root string) ([]string, error) {
	var documents []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && ingest.IsImportDocument(path) {
			documents = append(documents, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return documents, nil
}
