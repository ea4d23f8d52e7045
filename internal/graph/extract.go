package graph

import (
	"regexp"
	"strings"
)

// Reference is one extracted cross-reference, kept both as written and as
// resolved against the source document's directory.
type Reference struct {
	Target   string
	Resolved string
}

// ExtractResult holds the references pulled from one document.
type ExtractResult struct {
	Imports []Reference
	DocRefs []Reference
}

var (
	importRe    = regexp.MustCompile(`import\s+(?:[\w{}*,\s]+\s+from\s+)?['"]([^'"]+)['"]`)
	requireRe   = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	mdLinkRe    = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)
	annotateRe  = regexp.MustCompile(`@(?:see|link)\s+(\S+)`)
	documentsRe = regexp.MustCompile("(?i)\\b(?:documents|describes|covers)\\b[:\\s]*`([^`]+)`")
)

// Extract scans a document's raw content for import targets and doc
// references. It is a pattern heuristic, not a parser: matches inside fenced
// code blocks are scanned like any other text, and a miss simply yields fewer
// references. It never fails.
func Extract(docPath, content string) ExtractResult {
	var result ExtractResult

	seen := make(map[string]bool)
	for _, re := range []*regexp.Regexp{importRe, requireRe} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			if len(m) < 2 {
				continue
			}
			spec := m[1]
			// Only relative specifiers point inside the indexed artifact
			// set; package names are external.
			if !strings.HasPrefix(spec, ".") || seen[spec] {
				continue
			}
			seen[spec] = true
			result.Imports = append(result.Imports, Reference{
				Target:   spec,
				Resolved: ResolveRelative(docPath, spec),
			})
		}
	}

	seenRef := make(map[string]bool)
	addDocRef := func(target string) {
		if target == "" || seenRef[target] {
			return
		}
		seenRef[target] = true
		result.DocRefs = append(result.DocRefs, Reference{
			Target:   target,
			Resolved: ResolveRelative(docPath, target),
		})
	}

	for _, m := range mdLinkRe.FindAllStringSubmatch(content, -1) {
		if len(m) < 2 {
			continue
		}
		href := m[1]
		if strings.HasPrefix(href, "http") || strings.HasPrefix(href, "#") {
			continue
		}
		if i := strings.Index(href, "#"); i >= 0 {
			href = href[:i]
		}
		addDocRef(href)
	}

	for _, m := range annotateRe.FindAllStringSubmatch(content, -1) {
		if len(m) < 2 {
			continue
		}
		addDocRef(m[1])
	}

	return result
}

// ExtractAnnotations returns the targets of explicit documents/describes/covers
// annotations, resolved against the document's directory. These let a doc
// author declare an intentional link the import and link heuristics would miss.
func ExtractAnnotations(docPath, content string) []Reference {
	var refs []Reference
	seen := make(map[string]bool)
	for _, m := range documentsRe.FindAllStringSubmatch(content, -1) {
		if len(m) < 2 || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		refs = append(refs, Reference{
			Target:   m[1],
			Resolved: ResolveRelative(docPath, m[1]),
		})
	}
	return refs
}

// ResolveRelative resolves rel against the directory containing base, purely
// on the repository's virtual path namespace (no filesystem access). The last
// segment of base is treated as a filename when it contains a dot.
func ResolveRelative(base, rel string) string {
	segments := []string{}
	for _, s := range strings.Split(base, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) > 0 && strings.Contains(segments[len(segments)-1], ".") {
		segments = segments[:len(segments)-1]
	}

	for _, s := range strings.Split(rel, "/") {
		switch s {
		case "", ".":
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, s)
		}
	}

	return strings.Join(segments, "/")
}
