package graph

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docradar/docradar/pkg/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id            TEXT PRIMARY KEY,
    repository_id TEXT NOT NULL,
    path          TEXT NOT NULL,
    content       TEXT NOT NULL DEFAULT '',
    ingested_at   DATETIME NOT NULL,
    UNIQUE(repository_id, path)
);

CREATE INDEX IF NOT EXISTS idx_documents_repo ON documents(repository_id);

CREATE TABLE IF NOT EXISTS snapshots (
    repository_id TEXT PRIMARY KEY,
    node_count    INTEGER NOT NULL,
    edge_count    INTEGER NOT NULL,
    graph_data    TEXT NOT NULL,
    built_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS ingests (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    repository_id   TEXT NOT NULL,
    root            TEXT NOT NULL,
    started_at      DATETIME NOT NULL,
    finished_at     DATETIME,
    documents_found INTEGER DEFAULT 0,
    status          TEXT DEFAULT 'running'
);
`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Init creates the database schema if it doesn't exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertDocument inserts or updates a document keyed by (repository, path).
func (s *SQLiteStore) UpsertDocument(ctx context.Context, doc models.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, repository_id, path, content, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, path) DO UPDATE SET
			content = excluded.content,
			ingested_at = excluded.ingested_at
	`, doc.ID, doc.RepositoryID, doc.Path, doc.Content, time.Now().Format(time.RFC3339))
	return err
}

// ListDocuments returns all documents for a repository, ordered by path.
func (s *SQLiteStore) ListDocuments(ctx context.Context, repositoryID string) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repository_id, path, content FROM documents
		WHERE repository_id = ? ORDER BY path
	`, repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.RepositoryID, &d.Path, &d.Content); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a single document.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, repositoryID, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE repository_id = ? AND path = ?`, repositoryID, path)
	return err
}

// DeleteRepository removes a repository's documents and snapshot.
func (s *SQLiteStore) DeleteRepository(ctx context.Context, repositoryID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE repository_id = ?`, repositoryID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE repository_id = ?`, repositoryID)
	return err
}

// ListRepositories returns the known repository IDs.
func (s *SQLiteStore) ListRepositories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT repository_id FROM documents ORDER BY repository_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	var repos []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// DocumentCount returns the number of documents for a repository.
func (s *SQLiteStore) DocumentCount(ctx context.Context, repositoryID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE repository_id = ?`, repositoryID).Scan(&count)
	return count, err
}

// SaveSnapshot upserts the latest built graph for a repository. Concurrent
// rebuilds race to overwrite; last writer wins, which is acceptable for a cache.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap models.GraphSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (repository_id, node_count, edge_count, graph_data, built_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(repository_id) DO UPDATE SET
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			graph_data = excluded.graph_data,
			built_at = excluded.built_at
	`, snap.RepositoryID, snap.NodeCount, snap.EdgeCount, snap.GraphData, snap.BuiltAt.Format(time.RFC3339))
	return err
}

// GetSnapshot returns the stored snapshot, or nil if none exists.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, repositoryID string) (*models.GraphSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT repository_id, node_count, edge_count, graph_data, built_at
		FROM snapshots WHERE repository_id = ?
	`, repositoryID)

	var snap models.GraphSnapshot
	var builtAt string
	err := row.Scan(&snap.RepositoryID, &snap.NodeCount, &snap.EdgeCount, &snap.GraphData, &builtAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	snap.BuiltAt, _ = time.Parse(time.RFC3339, builtAt)
	return &snap, nil
}

// RecordIngest inserts a new ingest run record and returns its ID.
func (s *SQLiteStore) RecordIngest(ctx context.Context, run IngestRun) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ingests (repository_id, root, started_at, status) VALUES (?, ?, ?, ?)
	`, run.RepositoryID, run.Root, run.StartedAt.Format(time.RFC3339), run.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateIngest updates an ingest run with its final status and document count.
func (s *SQLiteStore) UpdateIngest(ctx context.Context, id int64, status string, documentsFound int) error {
	now := time.Now().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		UPDATE ingests SET status = ?, documents_found = ?, finished_at = ? WHERE id = ?
	`, status, documentsFound, now, id)
	return err
}

// ListIngests returns the most recent ingest runs, up to limit.
func (s *SQLiteStore) ListIngests(ctx context.Context, limit int) ([]IngestRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repository_id, root, started_at, finished_at, documents_found, status
		FROM ingests ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	var runs []IngestRun
	for rows.Next() {
		var run IngestRun
		var finishedAt sql.NullString
		var startedAt string
		if err := rows.Scan(&run.ID, &run.RepositoryID, &run.Root, &startedAt, &finishedAt, &run.DocumentsFound, &run.Status); err != nil {
			return nil, err
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if finishedAt.Valid {
			t, _ := time.Parse(time.RFC3339, finishedAt.String)
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
