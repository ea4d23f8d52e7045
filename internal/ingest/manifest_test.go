package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "repos.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadManifest(t *testing.T) {
	p := writeManifest(t, `
repositories:
  - id: frontend
    root: /srv/repos/frontend
  - id: docs
    root: /srv/repos/docs
`)

	m, err := LoadManifest(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Repositories) != 2 {
		t.Fatalf("repositories = %d, want 2", len(m.Repositories))
	}
	if m.Repositories[0].ID != "frontend" || m.Repositories[0].Root != "/srv/repos/frontend" {
		t.Errorf("first entry = %+v", m.Repositories[0])
	}
}

func TestLoadManifest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "repositories: []", "no repositories"},
		{"missing id", "repositories:\n  - root: /srv/x", "id and root are required"},
		{"missing root", "repositories:\n  - id: x", "id and root are required"},
		{"duplicate id", "repositories:\n  - id: x\n    root: /a\n  - id: x\n    root: /b", "repeats repository id"},
		{"bad yaml", "repositories: [", "parsing manifest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadManifest(writeManifest(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadManifest_MissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error")
	}
}
