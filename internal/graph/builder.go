package graph

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/docradar/docradar/pkg/models"
)

// Edge weights by provenance. Imports are the strongest signal, explicit
// annotations next, plain textual references weakest.
const (
	weightImports    = 1.0
	weightDocuments  = 0.9
	weightReferences = 0.8
)

// Engine builds documentation dependency graphs and answers blast-radius,
// broken-reference, and export queries over them. It is stateless across
// invocations: every operation performs a full rebuild from the current
// document set.
type Engine struct {
	docs      DocumentSource
	snapshots SnapshotStore
	mirror    *Mirror
	logger    *slog.Logger
}

// NewEngine creates an Engine. snapshots and mirror may be nil, in which case
// builds are not persisted or mirrored.
func NewEngine(docs DocumentSource, snapshots SnapshotStore, mirror *Mirror, logger *slog.Logger) *Engine {
	return &Engine{
		docs:      docs,
		snapshots: snapshots,
		mirror:    mirror,
		logger:    logger,
	}
}

// Build constructs the full graph for a repository from its current document
// set. The snapshot upsert is best-effort: a persistence failure is logged
// and the built graph is still returned.
func (e *Engine) Build(ctx context.Context, repositoryID string) (*models.Graph, error) {
	docs, err := e.docs.ListDocuments(ctx, repositoryID)
	if err != nil {
		return nil, err
	}

	g := buildGraph(repositoryID, docs)

	if e.snapshots != nil {
		if err := e.persist(ctx, g); err != nil {
			e.logger.Warn("failed to persist graph snapshot", "repositoryID", repositoryID, "error", err)
		}
	}
	if e.mirror != nil {
		if err := e.mirror.Push(ctx, g); err != nil {
			e.logger.Warn("failed to mirror graph", "repositoryID", repositoryID, "error", err)
		}
	}

	return g, nil
}

// buildGraph is the pure construction pass: nodes from documents, then
// import/reference edges, then a second pass for explicit annotations.
// Cycles are legal; construction is a linear pass, not a traversal.
func buildGraph(repositoryID string, docs []models.Document) *models.Graph {
	g := &models.Graph{
		RepositoryID: repositoryID,
		Nodes:        []models.GraphNode{},
		Edges:        []models.GraphEdge{},
	}

	idByPath := make(map[string]string, len(docs))
	orderedPaths := make([]string, 0, len(docs))

	for _, d := range docs {
		g.Nodes = append(g.Nodes, models.GraphNode{
			ID:    d.ID,
			Kind:  Classify(d.Path),
			Path:  d.Path,
			Label: pathLabel(d.Path),
		})
		idByPath[d.Path] = d.ID
		orderedPaths = append(orderedPaths, d.Path)
	}

	for _, d := range docs {
		refs := Extract(d.Path, d.Content)

		for _, imp := range refs.Imports {
			if targetID, ok := matchImport(idByPath, imp.Resolved); ok {
				g.Edges = append(g.Edges, models.GraphEdge{
					Source: d.ID,
					Target: targetID,
					Kind:   models.EdgeImports,
					Weight: weightImports,
				})
			}
		}

		for _, ref := range refs.DocRefs {
			// References may be written without a leading path segment,
			// so fall back to a suffix match over all known paths.
			if target, ok := matchPath(idByPath, orderedPaths, ref.Resolved); ok && target != d.ID {
				g.Edges = append(g.Edges, models.GraphEdge{
					Source: d.ID,
					Target: target,
					Kind:   models.EdgeReferences,
					Weight: weightReferences,
				})
			}
		}
	}

	// Second pass: explicit documents/describes/covers annotations.
	for _, d := range docs {
		for _, ann := range ExtractAnnotations(d.Path, d.Content) {
			target, ok := idByPath[ann.Target]
			if !ok {
				target, ok = matchPath(idByPath, orderedPaths, ann.Resolved)
			}
			if ok && target != d.ID {
				g.Edges = append(g.Edges, models.GraphEdge{
					Source: d.ID,
					Target: target,
					Kind:   models.EdgeDocuments,
					Weight: weightDocuments,
				})
			}
		}
	}

	g.Metadata = models.GraphMetadata{
		BuiltAt:   time.Now(),
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
	}

	return g
}

// importExts are the extensions tried when an import specifier omits one, as
// JS/TS specifiers conventionally do.
var importExts = []string{"", ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// matchImport finds the node for a resolved import specifier, trying the path
// as written and then with each conventional extension appended.
func matchImport(idByPath map[string]string, resolved string) (string, bool) {
	if resolved == "" {
		return "", false
	}
	for _, ext := range importExts {
		if id, ok := idByPath[resolved+ext]; ok {
			return id, true
		}
	}
	return "", false
}

// matchPath finds the node for a resolved reference: exact path first, then
// the first known path (in document order) that ends with the reference at a
// segment boundary.
func matchPath(idByPath map[string]string, orderedPaths []string, resolved string) (string, bool) {
	if resolved == "" {
		return "", false
	}
	if id, ok := idByPath[resolved]; ok {
		return id, true
	}
	for _, p := range orderedPaths {
		if strings.HasSuffix(p, "/"+resolved) {
			return idByPath[p], true
		}
	}
	return "", false
}

func pathLabel(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func (e *Engine) persist(ctx context.Context, g *models.Graph) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return e.snapshots.SaveSnapshot(ctx, models.GraphSnapshot{
		RepositoryID: g.RepositoryID,
		NodeCount:    g.Metadata.NodeCount,
		EdgeCount:    g.Metadata.EdgeCount,
		GraphData:    string(data),
		BuiltAt:      g.Metadata.BuiltAt,
	})
}
