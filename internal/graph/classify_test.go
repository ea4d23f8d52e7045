package graph

import (
	"testing"

	"github.com/docradar/docradar/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want models.NodeKind
	}{
		{"README.md", models.KindDoc},
		{"docs/guide.mdx", models.KindDoc},
		{"docs/api.rst", models.KindDoc},
		{"NOTES.txt", models.KindDoc},
		{"book/ch1.adoc", models.KindDoc},
		{"package.json", models.KindConfig},
		{"deploy/app.yaml", models.KindConfig},
		{"ci.yml", models.KindConfig},
		{"Cargo.toml", models.KindConfig},
		{"src/index.ts", models.KindCode},
		{"main.go", models.KindCode},
		{"scripts/run.sh", models.KindCode},
		{"Makefile", models.KindCode},
		{"noextension", models.KindCode},
		{"", models.KindCode},
		{"weird.MD", models.KindDoc},
		{"dir.md/file", models.KindCode},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Classify("docs/a.md"); got != models.KindDoc {
			t.Fatalf("run %d: Classify = %s, want doc", i, got)
		}
	}
}
