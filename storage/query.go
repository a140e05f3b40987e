package storage

import (
	"strings"

	"github.com/poiesic/memlane/core"
)

// Matches reports whether item satisfies the query's text, tag and emotion predicates.
// Ownership is not checked here; repositories scope queries to a user before matching.
func (q ItemQuery) Matches(item *core.Item) bool {
	if q.Emotion != "" && !strings.EqualFold(string(item.Emotion), strings.TrimSpace(q.Emotion)) {
		return false
	}

	needle := strings.ToLower(strings.TrimSpace(q.Substring))
	if needle == "" && len(q.AnyTags) == 0 {
		return true
	}

	if needle != "" {
		if strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Summary), needle) {
			return true
		}
		for _, tag := range item.Tags() {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
	}

	for _, want := range q.AnyTags {
		for _, tag := range item.Tags() {
			if strings.EqualFold(tag, want) {
				return true
			}
		}
	}
	return false
}
