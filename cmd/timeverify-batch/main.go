// timeverify-batch processes a directory of DOCX timesheet documents and
// writes the XLSX report, no server required.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/entity"
	"github.com/preevind/timeverify/internal/jobstore"
	"github.com/preevind/timeverify/internal/orchestrator"
	"github.com/preevind/timeverify/internal/report"
	"github.com/preevind/timeverify/internal/vision/anthropic"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of DOCX files to process (required)")
		out     = flag.String("out", "", "output XLSX path (defaults to <dir>/../timesheets.xlsx)")
		workers = flag.Int("workers", 0, "worker pool size override")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "timesheets.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Jobs.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	docs, err := loadDocuments(*dir)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		printError("Error: no DOCX files in %s\n", *dir)
		os.Exit(1)
	}

	ctx := context.Background()

	store := jobstore.New(logger)
	orch := orchestrator.New(store, anthropic.NewClient(cfg.Vision, logger),
		logger,
		orchestrator.WithWorkers(cfg.Jobs.Workers),
		orchestrator.WithTaskTimeout(cfg.Jobs.TaskTimeout),
	)

	jobID, err := orch.Submit(ctx, docs, filepath.Base(*dir))
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	job := waitForCompletion(orch, jobID, logger)

	data, err := report.NewGenerator(logger).Generate(job)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		printError("Error: write %s: %v\n", *out, err)
		os.Exit(1)
	}

	orch.Shutdown(ctx)
	store.Stop()

	fmt.Printf("wrote %s: %d entries, %d failed documents\n", *out, len(job.Entries), len(job.FileErrors))
	if len(job.FileErrors) > 0 {
		os.Exit(2)
	}
}

func loadDocuments(dir string) ([]entity.DocumentRef, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var docs []entity.DocumentRef
	for _, item := range items {
		if item.IsDir() || !constants.IsAllowedDocument(item.Name()) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, item.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", item.Name(), err)
		}
		docs = append(docs, entity.DocumentRef{Name: item.Name(), Content: content})
	}
	return docs, nil
}

func waitForCompletion(orch *orchestrator.Orchestrator, jobID uuid.UUID, logger *slog.Logger) entity.Job {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		job, err := orch.Status(jobID)
		if err != nil {
			printError("Error: job disappeared: %v\n", err)
			os.Exit(1)
		}
		logger.Info("batch.progress", "processed", job.Processed, "total", job.Total, "entries", len(job.Entries))
		if job.Status.Terminal() {
			return job
		}
	}
	return entity.Job{}
}
