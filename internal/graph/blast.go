package graph

import (
	"context"
	"fmt"

	"github.com/docradar/docradar/pkg/models"
)

// Traversal and confidence constants. Direct impact sits deliberately just
// under certainty since even direct relationships are heuristically detected.
// Transitive confidence decays with depth but never drops below a floor that
// still signals "worth reviewing".
const (
	maxTraversalDepth = 4
	directConfidence  = 0.95
	decayBase         = 0.9
	decayStep         = 0.15
	confidenceFloor   = 0.3
)

// ComputeBlastRadius rebuilds the repository graph and reports every doc
// affected, directly or transitively, by the given changed files. Changed
// paths that match no node are ignored.
func (e *Engine) ComputeBlastRadius(ctx context.Context, repositoryID string, changedFiles []string) (*models.BlastRadius, error) {
	g, err := e.Build(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	return blastRadius(g, changedFiles), nil
}

// blastRadius performs the reverse-adjacency propagation over a built graph.
func blastRadius(g *models.Graph, changedFiles []string) *models.BlastRadius {
	nodeByID := make(map[string]models.GraphNode, len(g.Nodes))
	idByPath := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeByID[n.ID] = n
		idByPath[n.Path] = n.ID
	}

	// Reverse adjacency: who points at me.
	reverse := make(map[string][]models.GraphEdge)
	for _, e := range g.Edges {
		reverse[e.Target] = append(reverse[e.Target], e)
	}

	var changedIDs []string
	changed := make(map[string]bool)
	for _, p := range changedFiles {
		if id, ok := idByPath[p]; ok && !changed[id] {
			changed[id] = true
			changedIDs = append(changedIDs, id)
		}
	}

	result := &models.BlastRadius{
		ChangedFiles: changedFiles,
		AffectedDocs: []models.AffectedDoc{},
	}

	// Direct impact: reverse-neighbors of changed nodes that are docs.
	visited := make(map[string]bool)
	for id := range changed {
		visited[id] = true
	}

	var frontier []string
	for _, id := range changedIDs {
		for _, edge := range reverse[id] {
			src := edge.Source
			if visited[src] {
				continue
			}
			visited[src] = true
			frontier = append(frontier, src)

			n := nodeByID[src]
			if n.Kind != models.KindDoc {
				continue
			}
			result.AffectedDocs = append(result.AffectedDocs, models.AffectedDoc{
				Path:       n.Path,
				ImpactType: models.ImpactDirect,
				Reason:     fmt.Sprintf("Directly %s changed file", edge.Kind),
				Confidence: directConfidence,
			})
		}
	}

	// Transitive impact: bounded BFS outward along the same reverse direction.
	// Non-doc nodes are traversed through but never reported. The visited set
	// guarantees termination even with cycles.
	for depth := 2; depth <= maxTraversalDepth; depth++ {
		var next []string
		for _, id := range frontier {
			for _, edge := range reverse[id] {
				src := edge.Source
				if visited[src] {
					continue
				}
				visited[src] = true
				next = append(next, src)

				n := nodeByID[src]
				if n.Kind != models.KindDoc {
					continue
				}
				result.AffectedDocs = append(result.AffectedDocs, models.AffectedDoc{
					Path:       n.Path,
					ImpactType: models.ImpactTransitive,
					Reason:     fmt.Sprintf("Transitively affected (depth %d)", depth),
					Confidence: decayConfidence(depth),
				})
			}
		}
		frontier = next
	}

	for _, d := range result.AffectedDocs {
		result.TotalImpact += d.Confidence
	}

	return result
}

func decayConfidence(depth int) float64 {
	c := decayBase - float64(depth)*decayStep
	if c < confidenceFloor {
		return confidenceFloor
	}
	return c
}
