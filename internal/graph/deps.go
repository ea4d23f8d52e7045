package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/docradar/docradar/pkg/models"
)

// ErrNodeNotFound is returned when a dependency query names a path with no
// corresponding node in the built graph.
var ErrNodeNotFound = errors.New("node not found")

// NodeDependencies rebuilds the graph and returns the direct neighbors of the
// node at nodePath in both directions: what it points at and what points at it.
func (e *Engine) NodeDependencies(ctx context.Context, repositoryID, nodePath string) (*models.NodeDependencies, error) {
	g, err := e.Build(ctx, repositoryID)
	if err != nil {
		return nil, err
	}

	nodeByID := make(map[string]models.GraphNode, len(g.Nodes))
	var nodeID string
	for _, n := range g.Nodes {
		nodeByID[n.ID] = n
		if n.Path == nodePath {
			nodeID = n.ID
		}
	}
	if nodeID == "" {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, nodePath)
	}

	deps := &models.NodeDependencies{
		DependsOn:  []models.GraphNode{},
		DependedBy: []models.GraphNode{},
	}

	seenOut := make(map[string]bool)
	seenIn := make(map[string]bool)
	for _, edge := range g.Edges {
		if edge.Source == nodeID && !seenOut[edge.Target] {
			seenOut[edge.Target] = true
			deps.DependsOn = append(deps.DependsOn, nodeByID[edge.Target])
		}
		if edge.Target == nodeID && !seenIn[edge.Source] {
			seenIn[edge.Source] = true
			deps.DependedBy = append(deps.DependedBy, nodeByID[edge.Source])
		}
	}

	return deps, nil
}
