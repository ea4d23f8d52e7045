package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docradar/docradar/pkg/models"
)

// Export formats.
const (
	FormatDOT       = "dot"
	FormatCytoscape = "cytoscape"
	FormatJSON      = "json"
)

// Export rebuilds the graph and serializes it in the requested format.
// Export is a pure serialization of whatever Build produced: no pruning,
// no simplification. An empty or unknown format defaults to json.
func (e *Engine) Export(ctx context.Context, repositoryID, format string) (*models.Export, error) {
	g, err := e.Build(ctx, repositoryID)
	if err != nil {
		return nil, err
	}

	var content string
	switch format {
	case FormatDOT:
		content = exportDOT(g)
	case FormatCytoscape:
		content, err = exportCytoscape(g)
	default:
		format = FormatJSON
		var b []byte
		b, err = json.MarshalIndent(g, "", "  ")
		content = string(b)
	}
	if err != nil {
		return nil, err
	}

	return &models.Export{
		Format:    format,
		Content:   content,
		NodeCount: g.Metadata.NodeCount,
		EdgeCount: g.Metadata.EdgeCount,
	}, nil
}

func exportDOT(g *models.Graph) string {
	var b strings.Builder
	b.WriteString("digraph docradar {\n")
	b.WriteString("  rankdir=LR;\n\n")

	for _, n := range g.Nodes {
		shape := "note"
		if n.Kind == models.KindCode {
			shape = "box"
		}
		b.WriteString(fmt.Sprintf("  %q [label=%q, shape=%s];\n", n.ID, n.Label, shape))
	}

	b.WriteString("\n")

	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", e.Source, e.Target, e.Kind))
	}

	b.WriteString("}\n")
	return b.String()
}

// cytoscapeElement wraps node or edge attributes the way Cytoscape.js expects.
type cytoscapeElement struct {
	Data map[string]string `json:"data"`
}

func exportCytoscape(g *models.Graph) (string, error) {
	nodes := make([]cytoscapeElement, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, cytoscapeElement{Data: map[string]string{
			"id":    n.ID,
			"label": n.Label,
			"type":  string(n.Kind),
		}})
	}

	edges := make([]cytoscapeElement, 0, len(g.Edges))
	for i, e := range g.Edges {
		edges = append(edges, cytoscapeElement{Data: map[string]string{
			"id":     fmt.Sprintf("e%d", i),
			"source": e.Source,
			"target": e.Target,
			"type":   string(e.Kind),
		}})
	}

	out, err := json.MarshalIndent(map[string][]cytoscapeElement{
		"nodes": nodes,
		"edges": edges,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
