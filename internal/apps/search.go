package apps

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

type entrySource []DockEntry

func (s entrySource) String(i int) string { return s[i].Name }
func (s entrySource) Len() int            { return len(s) }

// Search ranks entries by fuzzy match on their names. Names starting with the
// query come first, then higher scores. An empty query returns the first
// maxResults entries unchanged.
func Search(entries []DockEntry, query string, maxResults int) []DockEntry {
	query = strings.TrimSpace(query)
	if maxResults <= 0 {
		maxResults = len(entries)
	}

	if query == "" {
		if len(entries) > maxResults {
			return append([]DockEntry{}, entries[:maxResults]...)
		}
		return append([]DockEntry{}, entries...)
	}

	matches := fuzzy.FindFrom(query, entrySource(entries))

	lowerQuery := strings.ToLower(query)
	sort.SliceStable(matches, func(i, j int) bool {
		iPrefix := strings.HasPrefix(strings.ToLower(matches[i].Str), lowerQuery)
		jPrefix := strings.HasPrefix(strings.ToLower(matches[j].Str), lowerQuery)
		if iPrefix != jPrefix {
			return iPrefix
		}
		return matches[i].Score > matches[j].Score
	})

	results := make([]DockEntry, 0, min(len(matches), maxResults))
	for i := 0; i < len(matches) && i < maxResults; i++ {
		results = append(results, entries[matches[i].Index])
	}
	return results
}
