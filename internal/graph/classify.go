package graph

import (
	"path"
	"strings"

	"github.com/docradar/docradar/pkg/models"
)

// Classify maps a repository-relative path to a node kind based on its
// extension alone. Unknown or missing extensions default to code.
func Classify(p string) models.NodeKind {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	switch ext {
	case "md", "mdx", "rst", "txt", "adoc":
		return models.KindDoc
	case "json", "yaml", "yml", "toml":
		return models.KindConfig
	default:
		return models.KindCode
	}
}
