package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/memlane/ai"
)

const summaryPromptTemplate = `Summarize the captured content given by the user in at most two sentences.

Rules:
- Output ONLY the summary. Do not include any preamble, explanation, greeting, or acknowledgment.
- Write plain prose; no markdown, lists, headings or quotes.
- Stay under %d characters.
- Describe what the content says. Do not add facts that are not in the text.`

const titleHintTemplate = "Title: %s\n\n%s"

const tagPromptTemplate = `Label the captured content given by the user with %d topical tags and one emotion.

Output ONLY a JSON array of exactly %d strings and nothing else: the %d tags first, then the emotion.
Do not include any preamble, explanation, or markdown. Start your response with [ and end it with ].

Rules:
- Tags must be lowercase, one or two words, and describe the subject of the text.
- The emotion must be exactly one of: %s.

Example:
Input: "Congress passed a new bill today. It affects healthcare."
Output:
["congress", "healthcare", "legislation", "neutral"]

Example:
Input: "we finally shipped the release and the whole team went out to celebrate!!"
Output:
["software release", "teamwork", "celebration", "excited"]`

// buildSummaryPrompt creates the summarization system prompt.
func buildSummaryPrompt(maxChars int) string {
	return fmt.Sprintf(summaryPromptTemplate, maxChars)
}

// buildTagPrompt creates the tagging system prompt with the emotion vocabulary embedded.
func buildTagPrompt() string {
	return fmt.Sprintf(tagPromptTemplate,
		ai.RequestedTags,
		ai.RequestedTags+1,
		ai.RequestedTags,
		strings.Join(ai.EmotionLabels(), ", "))
}
