package graph

import (
	"context"
	"strings"

	"github.com/docradar/docradar/pkg/models"
)

// DetectBrokenReferences re-scans every document and flags references that do
// not resolve to any known artifact. Only explicitly relative doc references
// are flagged; bare words and anchors are assumed external or intra-document.
func (e *Engine) DetectBrokenReferences(ctx context.Context, repositoryID string) ([]models.BrokenReference, error) {
	docs, err := e.docs.ListDocuments(ctx, repositoryID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(docs))
	for _, d := range docs {
		known[d.Path] = true
	}

	broken := []models.BrokenReference{}
	for _, d := range docs {
		refs := Extract(d.Path, d.Content)

		for _, imp := range refs.Imports {
			if !importKnown(known, imp.Resolved) {
				broken = append(broken, models.BrokenReference{
					Source: d.Path,
					Target: imp.Target,
					Kind:   models.EdgeImports,
				})
			}
		}

		for _, ref := range refs.DocRefs {
			if !strings.HasPrefix(ref.Target, "./") && !strings.HasPrefix(ref.Target, "../") {
				continue
			}
			if !known[ref.Resolved] {
				broken = append(broken, models.BrokenReference{
					Source: d.Path,
					Target: ref.Target,
					Kind:   models.EdgeReferences,
				})
			}
		}
	}

	return broken, nil
}

func importKnown(known map[string]bool, resolved string) bool {
	for _, ext := range importExts {
		if known[resolved+ext] {
			return true
		}
	}
	return false
}
