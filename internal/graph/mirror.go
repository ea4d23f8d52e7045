package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docradar/docradar/pkg/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Mirror pushes built graphs into Memgraph for ad-hoc Cypher exploration.
// The mirror is a secondary cache: callers treat Push failures as warnings,
// never as build failures.
type Mirror struct {
	driver   neo4j.DriverWithContext
	sessions sessionFactory
	logger   *slog.Logger
}

// NewMirror connects to Memgraph and verifies connectivity.
func NewMirror(ctx context.Context, uri, username, password string, logger *slog.Logger) (*Mirror, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating memgraph driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to memgraph: %w", err)
	}
	return &Mirror{
		driver:   driver,
		sessions: newNeo4jSessionFactory(driver),
		logger:   logger,
	}, nil
}

// Push replaces the repository's subgraph in Memgraph with the given build.
// Since each build is a full snapshot, the mirror clears before re-inserting.
func (m *Mirror) Push(ctx context.Context, g *models.Graph) error {
	session := m.sessions(ctx)
	defer session.Close(ctx) //nolint:errcheck // best-effort cleanup

	_, err := session.Run(ctx,
		`MATCH (n:Artifact {repository: $repo}) DETACH DELETE n`,
		map[string]any{"repo": g.RepositoryID})
	if err != nil {
		return fmt.Errorf("clearing mirror: %w", err)
	}

	for _, cypher := range []string{
		"CREATE INDEX ON :Artifact(id)",
		"CREATE INDEX ON :Artifact(repository)",
	} {
		if _, err := session.Run(ctx, cypher, nil); err != nil {
			m.logger.Warn("creating mirror index (may already exist)", "error", err)
		}
	}

	const batchSize = 500

	for i := 0; i < len(g.Nodes); i += batchSize {
		end := min(i+batchSize, len(g.Nodes))
		params := make([]map[string]any, 0, end-i)
		for _, n := range g.Nodes[i:end] {
			params = append(params, map[string]any{
				"id":    n.ID,
				"kind":  string(n.Kind),
				"path":  n.Path,
				"label": n.Label,
			})
		}
		_, err := session.Run(ctx, `
			UNWIND $nodes AS node
			MERGE (n:Artifact {id: node.id})
			SET n.kind = node.kind,
			    n.path = node.path,
			    n.label = node.label,
			    n.repository = $repo
		`, map[string]any{"nodes": params, "repo": g.RepositoryID})
		if err != nil {
			return fmt.Errorf("mirroring nodes: %w", err)
		}
	}

	for i := 0; i < len(g.Edges); i += batchSize {
		end := min(i+batchSize, len(g.Edges))
		params := make([]map[string]any, 0, end-i)
		for _, e := range g.Edges[i:end] {
			params = append(params, map[string]any{
				"source": e.Source,
				"target": e.Target,
				"kind":   string(e.Kind),
				"weight": e.Weight,
			})
		}
		_, err := session.Run(ctx, `
			UNWIND $edges AS edge
			MATCH (from:Artifact {id: edge.source})
			MATCH (to:Artifact {id: edge.target})
			MERGE (from)-[r:REFERS {kind: edge.kind}]->(to)
			SET r.weight = edge.weight
		`, map[string]any{"edges": params})
		if err != nil {
			return fmt.Errorf("mirroring edges: %w", err)
		}
	}

	m.logger.Info("graph mirrored",
		"repositoryID", g.RepositoryID,
		"nodes", g.Metadata.NodeCount,
		"edges", g.Metadata.EdgeCount)
	return nil
}

// Close releases the driver.
func (m *Mirror) Close(ctx context.Context) error {
	return m.driver.Close(ctx)
}
