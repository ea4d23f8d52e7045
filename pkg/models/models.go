package models

import "time"

// NodeKind classifies a repository artifact in the documentation graph.
type NodeKind string

// Node kind constants, derived purely from the file extension.
const (
	KindCode   NodeKind = "code"
	KindDoc    NodeKind = "doc"
	KindConfig NodeKind = "config"
)

// EdgeKind represents the kind of relationship between two artifacts.
type EdgeKind string

// Edge kind constants for relationships between artifacts.
const (
	EdgeImports    EdgeKind = "imports"
	EdgeReferences EdgeKind = "references"
	EdgeDocuments  EdgeKind = "documents"
	EdgeDependsOn  EdgeKind = "depends-on"
)

// ImpactType distinguishes directly affected docs from transitively reached ones.
type ImpactType string

// Impact type constants.
const (
	ImpactDirect     ImpactType = "direct"
	ImpactTransitive ImpactType = "transitive"
)

// GraphNode is one artifact in a graph snapshot. ID is stable per build and
// unique within the snapshot; Path is the repository-relative file path and
// the join key used by all downstream lookups.
type GraphNode struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Path  string   `json:"path"`
	Label string   `json:"label"`
}

// GraphEdge is a directed relationship from the referencing artifact to the
// referenced one. Weight is a provenance-strength indicator in (0, 1], not a
// probability; it is preserved for export fidelity.
type GraphEdge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Weight float64  `json:"weight"`
}

// GraphMetadata summarizes one build.
type GraphMetadata struct {
	BuiltAt   time.Time `json:"built_at"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
}

// Graph is the complete, immutable result of one build. Refreshing means
// discarding it and building a new one, never patching in place.
type Graph struct {
	RepositoryID string        `json:"repository_id"`
	Nodes        []GraphNode   `json:"nodes"`
	Edges        []GraphEdge   `json:"edges"`
	Metadata     GraphMetadata `json:"metadata"`
}

// AffectedDoc is one documentation artifact inside a blast radius.
// Confidence is in [0.3, 0.95] by construction.
type AffectedDoc struct {
	Path       string     `json:"path"`
	ImpactType ImpactType `json:"impact_type"`
	Reason     string     `json:"reason"`
	Confidence float64    `json:"confidence"`
}

// BlastRadius is the set of docs affected by a set of changed files.
// TotalImpact is the sum of all confidences, a triage heuristic rather
// than a probability mass.
type BlastRadius struct {
	ChangedFiles []string      `json:"changed_files"`
	AffectedDocs []AffectedDoc `json:"affected_docs"`
	TotalImpact  float64       `json:"total_impact"`
}

// BrokenReference is a relative link or import target that does not resolve
// to any known artifact.
type BrokenReference struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
}

// NodeDependencies lists a node's direct neighbors in both directions.
type NodeDependencies struct {
	DependsOn  []GraphNode `json:"depends_on"`
	DependedBy []GraphNode `json:"depended_by"`
}

// Document is one raw artifact as supplied by the document store.
type Document struct {
	ID           string `json:"id"`
	RepositoryID string `json:"repository_id"`
	Path         string `json:"path"`
	Content      string `json:"content"`
}

// GraphSnapshot is the persisted form of one build, one row per repository.
// It is a rebuildable cache, not a source of truth.
type GraphSnapshot struct {
	RepositoryID string    `json:"repository_id"`
	NodeCount    int       `json:"node_count"`
	EdgeCount    int       `json:"edge_count"`
	GraphData    string    `json:"graph_data"`
	BuiltAt      time.Time `json:"built_at"`
}

// Export is the serialized form of a graph in one of the supported formats.
type Export struct {
	Format    string `json:"format"`
	Content   string `json:"content"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}
