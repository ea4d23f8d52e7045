package graph

import (
	"context"
	"time"

	"github.com/docradar/docradar/pkg/models"
)

// DocumentSource supplies the complete current document set for a repository.
// The engine assumes no pagination: one call returns everything.
type DocumentSource interface {
	// ListDocuments returns all documents for the repository, ordered by path.
	ListDocuments(ctx context.Context, repositoryID string) ([]models.Document, error)
}

// SnapshotStore persists the latest built graph per repository. It is a
// best-effort cache port: the engine swallows its failures.
type SnapshotStore interface {
	// SaveSnapshot upserts the snapshot for its repository.
	SaveSnapshot(ctx context.Context, snap models.GraphSnapshot) error

	// GetSnapshot returns the stored snapshot, or nil if none exists.
	GetSnapshot(ctx context.Context, repositoryID string) (*models.GraphSnapshot, error)
}

// Store is the full persistence surface backing the engine, the ingest
// pipeline, and the HTTP API.
type Store interface {
	DocumentSource
	SnapshotStore

	// Init creates the schema if it doesn't exist.
	Init(ctx context.Context) error

	// Close closes the store.
	Close() error

	// UpsertDocument inserts or updates a document keyed by (repository, path).
	UpsertDocument(ctx context.Context, doc models.Document) error

	// DeleteDocument removes a single document.
	DeleteDocument(ctx context.Context, repositoryID, path string) error

	// DeleteRepository removes a repository's documents and snapshot.
	DeleteRepository(ctx context.Context, repositoryID string) error

	// ListRepositories returns the known repository IDs.
	ListRepositories(ctx context.Context) ([]string, error)

	// DocumentCount returns the number of documents for a repository.
	DocumentCount(ctx context.Context, repositoryID string) (int, error)

	// RecordIngest records an ingest run and returns its ID.
	RecordIngest(ctx context.Context, run IngestRun) (int64, error)

	// UpdateIngest finalizes an ingest run.
	UpdateIngest(ctx context.Context, id int64, status string, documentsFound int) error

	// ListIngests returns the most recent ingest runs, up to limit.
	ListIngests(ctx context.Context, limit int) ([]IngestRun, error)
}

// IngestRun is one pass of loading a repository's files into the store.
type IngestRun struct {
	ID             int64      `json:"id"`
	RepositoryID   string     `json:"repository_id"`
	Root           string     `json:"root"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	DocumentsFound int        `json:"documents_found"`
	Status         string     `json:"status"`
}
