package enrichment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/memlane/ai"
)

// TagResponse is a validated tagger answer.
type TagResponse struct {
	Tags    []string
	Emotion string
}

// ParseTagResponse validates a raw tagger answer.
//
// A single surrounding markdown code fence is removed first. The remainder
// must decode as a JSON array of exactly ai.RequestedTags+1 non-blank strings.
// Any other shape returns ErrMalformedTagResponse. The emotion is returned as
// given; checking it against the vocabulary is left to the caller.
func ParseTagResponse(raw string) (TagResponse, error) {
	body := StripCodeFence(raw)

	var items []string
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return TagResponse{}, fmt.Errorf("%w: %w", ErrMalformedTagResponse, err)
	}

	want := ai.RequestedTags + 1
	if len(items) != want {
		return TagResponse{}, fmt.Errorf("%w: expected %d items, got %d", ErrMalformedTagResponse, want, len(items))
	}

	for i, item := range items {
		items[i] = strings.TrimSpace(item)
		if items[i] == "" {
			return TagResponse{}, fmt.Errorf("%w: item %d is blank", ErrMalformedTagResponse, i)
		}
	}

	return TagResponse{
		Tags:    items[:ai.RequestedTags],
		Emotion: items[ai.RequestedTags],
	}, nil
}

// StripCodeFence removes one surrounding ``` fence, with or without a language tag.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// drop the language tag on the opening line, if any
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{\"") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}
