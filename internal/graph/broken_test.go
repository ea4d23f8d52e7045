package graph

import (
	"context"
	"testing"

	"github.com/docradar/docradar/pkg/models"
)

func TestDetectBrokenReferences(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, []models.Document{
		makeDoc("r1", "docs/guide.md", "[ok](./api.md)\n[gone](./missing.md)\n[ext](https://example.com/page)\nsee UserService for details"),
		makeDoc("r1", "docs/api.md", ""),
		makeDoc("r1", "src/x.ts", "import {y} from './y'\nimport {z} from './gone'"),
		makeDoc("r1", "src/y.ts", ""),
	})
	engine := NewEngine(store, nil, nil, discardLogger())

	broken, err := engine.DetectBrokenReferences(context.Background(), "r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(broken) != 2 {
		t.Fatalf("broken = %d, want 2: %v", len(broken), broken)
	}

	byTarget := make(map[string]models.BrokenReference)
	for _, b := range broken {
		byTarget[b.Target] = b
	}

	ref, ok := byTarget["./missing.md"]
	if !ok {
		t.Fatal("missing relative link not flagged")
	}
	if ref.Source != "docs/guide.md" || ref.Kind != models.EdgeReferences {
		t.Errorf("got %+v", ref)
	}

	imp, ok := byTarget["./gone"]
	if !ok {
		t.Fatal("unresolved import not flagged")
	}
	if imp.Source != "src/x.ts" || imp.Kind != models.EdgeImports {
		t.Errorf("got %+v", imp)
	}
}

func TestDetectBrokenReferences_BareWordsNotFlagged(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, []models.Document{
		makeDoc("r1", "docs/a.md", "@see UserService\n[page](other.md)"),
	})
	engine := NewEngine(store, nil, nil, discardLogger())

	broken, err := engine.DetectBrokenReferences(context.Background(), "r1")
	if err != nil {
		t.Fatal(err)
	}
	// Neither target starts with ./ or ../, so neither is flagged even
	// though both are unresolvable.
	if len(broken) != 0 {
		t.Errorf("broken = %v, want none", broken)
	}
}

func TestDetectBrokenReferences_CleanRepository(t *testing.T) {
	store := newTestStore(t)
	seedDocuments(t, store, scenarioDocs("r1"))
	engine := NewEngine(store, nil, nil, discardLogger())

	broken, err := engine.DetectBrokenReferences(context.Background(), "r1")
	if err != nil {
		t.Fatal(err)
	}
	if broken == nil {
		t.Fatal("result must be non-nil even when empty")
	}
	if len(broken) != 0 {
		t.Errorf("broken = %v, want none", broken)
	}
}
