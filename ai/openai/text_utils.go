package openai

import (
	"strings"
	"unicode/utf8"
)

// maxInputRunes caps how much captured text is sent to a generation model.
const maxInputRunes = 12000

// prepareInput collapses runs of whitespace and clips text to maxInputRunes.
func prepareInput(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxInputRunes {
		return s
	}
	return string([]rune(s)[:maxInputRunes])
}
