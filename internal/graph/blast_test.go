package graph

import (
	"context"
	"math"
	"testing"

	"github.com/docradar/docradar/pkg/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBlastRadius_CodeChangeWithNoDocImporters(t *testing.T) {
	g := buildGraph("r1", scenarioDocs("r1"))

	r := blastRadius(g, []string{"src/y.ts"})
	if len(r.AffectedDocs) != 0 {
		t.Errorf("affected = %v, want none (only code imports y)", r.AffectedDocs)
	}
	if r.TotalImpact != 0 {
		t.Errorf("TotalImpact = %v, want 0", r.TotalImpact)
	}
}

func TestBlastRadius_DirectImpact(t *testing.T) {
	g := buildGraph("r1", scenarioDocs("r1"))

	r := blastRadius(g, []string{"docs/b.md"})
	if len(r.AffectedDocs) != 1 {
		t.Fatalf("affected = %d, want 1", len(r.AffectedDocs))
	}
	d := r.AffectedDocs[0]
	if d.Path != "docs/a.md" {
		t.Errorf("path = %s, want docs/a.md", d.Path)
	}
	if d.ImpactType != models.ImpactDirect {
		t.Errorf("impact = %s, want direct", d.ImpactType)
	}
	if !almostEqual(d.Confidence, 0.95) {
		t.Errorf("confidence = %v, want 0.95", d.Confidence)
	}
	if !almostEqual(r.TotalImpact, 0.95) {
		t.Errorf("TotalImpact = %v, want 0.95", r.TotalImpact)
	}
}

// chainDocs builds d1 <- d2 <- d3 <- d4 <- d5 <- d6, where each later doc
// references its predecessor.
func chainDocs(repo string) []models.Document {
	return []models.Document{
		makeDoc(repo, "docs/d1.md", ""),
		makeDoc(repo, "docs/d2.md", "[d1](./d1.md)"),
		makeDoc(repo, "docs/d3.md", "[d2](./d2.md)"),
		makeDoc(repo, "docs/d4.md", "[d3](./d3.md)"),
		makeDoc(repo, "docs/d5.md", "[d4](./d4.md)"),
		makeDoc(repo, "docs/d6.md", "[d5](./d5.md)"),
	}
}

func TestBlastRadius_ConfidenceDecay(t *testing.T) {
	g := buildGraph("r1", chainDocs("r1"))

	r := blastRadius(g, []string{"docs/d1.md"})

	want := map[string]float64{
		"docs/d2.md": 0.95, // direct
		"docs/d3.md": 0.6,  // depth 2
		"docs/d4.md": 0.45, // depth 3
		"docs/d5.md": 0.3,  // depth 4, the floor
	}
	if len(r.AffectedDocs) != len(want) {
		t.Fatalf("affected = %d, want %d (d6 is beyond the hop limit)", len(r.AffectedDocs), len(want))
	}
	for _, d := range r.AffectedDocs {
		wc, ok := want[d.Path]
		if !ok {
			t.Errorf("unexpected affected doc %s", d.Path)
			continue
		}
		if !almostEqual(d.Confidence, wc) {
			t.Errorf("%s confidence = %v, want %v", d.Path, d.Confidence, wc)
		}
		if d.Confidence < 0.3 || d.Confidence > 0.95 {
			t.Errorf("%s confidence %v out of [0.3, 0.95]", d.Path, d.Confidence)
		}
	}

	total := 0.95 + 0.6 + 0.45 + 0.3
	if !almostEqual(r.TotalImpact, total) {
		t.Errorf("TotalImpact = %v, want %v", r.TotalImpact, total)
	}
}

func TestBlastRadius_TraversesThroughCodeNodes(t *testing.T) {
	// doc -> code -> changed code: the intermediate code node propagates
	// reachability but is never reported.
	docs := []models.Document{
		makeDoc("r1", "src/core.ts", ""),
		makeDoc("r1", "src/api.ts", "import {core} from './core'"),
		makeDoc("r1", "docs/api.md", "documents `src/api.ts`"),
	}
	g := buildGraph("r1", docs)

	r := blastRadius(g, []string{"src/core.ts"})
	if len(r.AffectedDocs) != 1 {
		t.Fatalf("affected = %d, want 1", len(r.AffectedDocs))
	}
	d := r.AffectedDocs[0]
	if d.Path != "docs/api.md" {
		t.Errorf("path = %s, want docs/api.md", d.Path)
	}
	if d.ImpactType != models.ImpactTransitive {
		t.Errorf("impact = %s, want transitive", d.ImpactType)
	}
	if !almostEqual(d.Confidence, 0.6) {
		t.Errorf("confidence = %v, want 0.6 (depth 2)", d.Confidence)
	}
}

func TestBlastRadius_CycleSafety(t *testing.T) {
	docs := []models.Document{
		makeDoc("r1", "docs/a.md", "[b](./b.md)"),
		makeDoc("r1", "docs/b.md", "[a](./a.md)"),
	}
	g := buildGraph("r1", docs)

	r := blastRadius(g, []string{"docs/a.md"})
	for _, d := range r.AffectedDocs {
		if d.Path == "docs/a.md" {
			t.Error("changed file must not be reported as affected")
		}
	}
	if len(r.AffectedDocs) != 1 {
		t.Errorf("affected = %d, want 1 (just docs/b.md)", len(r.AffectedDocs))
	}
}

func TestBlastRadius_NoDoubleCounting(t *testing.T) {
	// Two paths lead from the changed file to the same doc.
	docs := []models.Document{
		makeDoc("r1", "src/z.ts", ""),
		makeDoc("r1", "docs/z.md", "documents `src/z.ts`\n@see ../src/z.ts"),
	}
	g := buildGraph("r1", docs)

	r := blastRadius(g, []string{"src/z.ts"})
	if len(r.AffectedDocs) != 1 {
		t.Errorf("affected = %d, want 1 despite multiple edges", len(r.AffectedDocs))
	}
}

func TestBlastRadius_UnknownChangedFilesIgnored(t *testing.T) {
	g := buildGraph("r1", scenarioDocs("r1"))

	r := blastRadius(g, []string{"does/not/exist.ts", "docs/b.md"})
	if len(r.AffectedDocs) != 1 {
		t.Errorf("affected = %d, want 1 (unknown path ignored)", len(r.AffectedDocs))
	}
	if len(r.ChangedFiles) != 2 {
		t.Errorf("ChangedFiles must echo the input, got %v", r.ChangedFiles)
	}
}

func TestComputeBlastRadius_StoreBacked(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, scenarioDocs("r1"))
	engine := NewEngine(store, store, nil, discardLogger())

	r, err := engine.ComputeBlastRadius(context.Background(), "r1", []string{"docs/b.md"})
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(r.TotalImpact, 0.95) {
		t.Errorf("TotalImpact = %v, want 0.95", r.TotalImpact)
	}
}
