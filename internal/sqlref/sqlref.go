// Package sqlref extracts qualified object references from raw SQL text.
// It is deliberately shallow: no SQL grammar, just a scan over quote-delimited
// spans. References must be fully qualified (dot-separated) and delimited by
// matching double quotes or backticks, which most warehouses support.
package sqlref

import (
	"regexp"
	"sort"
	"strings"
)

// qualifiedName matches a fully-qualified object name: two or more
// dot-separated identifier segments.
var qualifiedName = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)+$`)

// ExtractReferences scans SQL text for quoted, fully-qualified object names
// and returns them deduplicated and sorted. A quoted span counts as a
// reference only if it contains at least one dot and every segment is a
// plain identifier; everything else (string literals, single identifiers,
// unterminated quotes) is silently skipped.
func ExtractReferences(text string) []string {
	seen := make(map[string]struct{})

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '"' && c != '`' {
			continue
		}

		// Find the matching closing delimiter.
		end := strings.IndexByte(text[i+1:], c)
		if end < 0 {
			// Unterminated quote: stray character in a comment or
			// literal. Skip it and keep scanning.
			continue
		}

		candidate := text[i+1 : i+1+end]
		if qualifiedName.MatchString(candidate) {
			seen[candidate] = struct{}{}
		}
		i += end + 1
	}

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
