package ai

import "github.com/poiesic/memlane/core"

// EmotionLabels returns the closed emotion vocabulary as plain strings,
// in the order taggers are asked to choose from.
func EmotionLabels() []string {
	labels := make([]string, len(core.Emotions))
	for i, e := range core.Emotions {
		labels[i] = string(e)
	}
	return labels
}

// RequestedTags is the number of topical tags a Tagger is asked for. The emotion
// label follows the tags in the response.
const RequestedTags = 3
