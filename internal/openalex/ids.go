package openalex

import "strings"

// Roster cells contain author ids in whatever form people pasted them:
// a bare token, the canonical web URL, or the API URL.
var idPrefixes = []string{
	"https://openalex.org/",
	"http://openalex.org/",
	"https://api.openalex.org/authors/",
	"http://api.openalex.org/authors/",
}

// NormalizeAuthorID reduces any pasted form to the bare token. Pure and
// idempotent; blank input yields "". No validation happens here, callers
// check the shape with IsAuthorID before querying.
func NormalizeAuthorID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, prefix := range idPrefixes {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSpace(s)
}

// IsAuthorID reports whether id has the author-id shape: "A" followed by
// digits. Tokens that fail this never reach the API.
func IsAuthorID(id string) bool {
	if len(id) < 2 || id[0] != 'A' {
		return false
	}
	for _, r := range id[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
