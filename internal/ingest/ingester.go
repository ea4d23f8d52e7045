package ingest

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/docradar/docradar/internal/config"
	"github.com/docradar/docradar/internal/graph"
	"github.com/docradar/docradar/pkg/models"
)

// Result is returned after an ingest run completes.
type Result struct {
	IngestID       int64
	DocumentsFound int
	Warnings       []string
	Error          error
}

// Ingester walks repository trees and loads their files into the document store.
type Ingester struct {
	store  graph.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an Ingester.
func New(store graph.Store, cfg *config.Config, logger *slog.Logger) *Ingester {
	return &Ingester{store: store, cfg: cfg, logger: logger}
}

// RunSync ingests the repository rooted at root under the given ID, replacing
// previously ingested documents so the store reflects the current tree.
func (i *Ingester) RunSync(ctx context.Context, repositoryID, root string) Result {
	ingestID, _ := i.store.RecordIngest(ctx, graph.IngestRun{
		RepositoryID: repositoryID,
		Root:         root,
		StartedAt:    time.Now(),
		Status:       "running",
	})

	docs, warnings, err := i.collect(ctx, repositoryID, root)
	if err != nil {
		_ = i.store.UpdateIngest(ctx, ingestID, "failed", 0)
		return Result{IngestID: ingestID, Error: err}
	}

	// Full replace: stale documents would otherwise linger as ghost nodes.
	if err := i.store.DeleteRepository(ctx, repositoryID); err != nil {
		_ = i.store.UpdateIngest(ctx, ingestID, "failed", 0)
		return Result{IngestID: ingestID, Error: fmt.Errorf("clearing repository: %w", err)}
	}

	for _, d := range docs {
		if err := i.store.UpsertDocument(ctx, d); err != nil {
			i.logger.Warn("failed to store document", "path", d.Path, "error", err)
		}
	}

	_ = i.store.UpdateIngest(ctx, ingestID, "completed", len(docs))

	return Result{
		IngestID:       ingestID,
		DocumentsFound: len(docs),
		Warnings:       warnings,
	}
}

// collect walks the tree and returns the documents to store. Files matched by
// .gitignore or the configured exclude list are skipped, as are binary files
// and files over the configured size limit.
func (i *Ingester) collect(ctx context.Context, repositoryID, root string) ([]models.Document, []string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("reading root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root %q is not a directory", root)
	}

	var ignorer *gitignore.GitIgnore
	if gi, err := gitignore.CompileIgnoreFile(filepath.Join(absRoot, ".gitignore")); err == nil {
		ignorer = gi
	}

	excluded := make(map[string]bool, len(i.cfg.Ingest.Exclude))
	for _, name := range i.cfg.Ingest.Exclude {
		excluded[name] = true
	}

	var docs []models.Document
	var warnings []string

	walkErr := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", p, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if excluded[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		if excluded[d.Name()] || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if ignorer != nil && ignorer.MatchesPath(rel) {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > i.cfg.Ingest.MaxFileSize {
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("reading %s: %v", rel, err))
			return nil
		}
		if isBinary(content) {
			return nil
		}

		docs = append(docs, models.Document{
			ID:           documentID(repositoryID, rel),
			RepositoryID: repositoryID,
			Path:         rel,
			Content:      string(content),
		})
		return nil
	})
	if walkErr != nil {
		return nil, warnings, walkErr
	}

	return docs, warnings, nil
}

// documentID derives a stable document identifier from repository and path.
func documentID(repositoryID, path string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(repositoryID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(path))
	return fmt.Sprintf("%016x", h.Sum64())
}

// isBinary reports whether content looks like binary data (NUL byte in the
// first 8 KB).
func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
