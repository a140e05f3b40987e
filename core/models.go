package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Emotion is a label from the closed set assigned to enriched items.
type Emotion string

const (
	EmotionExcited    Emotion = "excited"
	EmotionHappy      Emotion = "happy"
	EmotionNeutral    Emotion = "neutral"
	EmotionThoughtful Emotion = "thoughtful"
	EmotionReflective Emotion = "reflective"
	EmotionSad        Emotion = "sad"
	EmotionAngry      Emotion = "angry"
	EmotionAnxious    Emotion = "anxious"
	EmotionCurious    Emotion = "curious"
	EmotionSurprised  Emotion = "surprised"
)

// Emotions lists every valid emotion label.
var Emotions = []Emotion{
	EmotionExcited,
	EmotionHappy,
	EmotionNeutral,
	EmotionThoughtful,
	EmotionReflective,
	EmotionSad,
	EmotionAngry,
	EmotionAnxious,
	EmotionCurious,
	EmotionSurprised,
}

// ParseEmotion normalizes a free-form label and reports whether it belongs to the closed set.
func ParseEmotion(label string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range Emotions {
		if e == known {
			return e, true
		}
	}
	return "", false
}

// Content limits shared by every enrichment pass.
const (
	MaxSummaryLength     = 400
	DefaultKeywordLimit  = 8
	DefaultCaptureTitle  = "Untitled capture"
	DefaultCaptureSource = "unknown"
)

// Enrichment is the derived summary, keywords, emotion and sentiment of a piece of text.
// It is a value: each enrichment pass produces a fresh one.
type Enrichment struct {
	Summary        string
	Keywords       []string
	Emotion        Emotion
	SentimentScore float64
}

// Clone returns a copy that shares no memory with e.
func (e Enrichment) Clone() Enrichment {
	e.Keywords = append([]string(nil), e.Keywords...)
	return e
}

// Equal reports whether two enrichments carry identical values.
func (e Enrichment) Equal(other Enrichment) bool {
	if e.Summary != other.Summary || e.Emotion != other.Emotion || e.SentimentScore != other.SentimentScore {
		return false
	}
	if len(e.Keywords) != len(other.Keywords) {
		return false
	}
	for i := range e.Keywords {
		if e.Keywords[i] != other.Keywords[i] {
			return false
		}
	}
	return true
}

// Item is a captured piece of content owned by a user.
// Items are created unprocessed with a quick enrichment and upgraded exactly once
// when the background enrichment job completes.
type Item struct {
	Id              ID
	UserId          ID
	URL             string
	Title           string
	Source          string
	ContentType     string
	Content         string
	Thumbnail       string
	Summary         string
	Keywords        []string // Also the item's tags
	Emotion         Emotion
	SentimentScore  float64
	Processed       bool
	ProcessingError string    // Set when enrichment failed; the quick result is retained
	CreatedAt       time.Time // When the item was captured
	UpdatedAt       time.Time // When the record was last written
}

// Enrichment returns the item's current enrichment.
func (i *Item) Enrichment() Enrichment {
	return Enrichment{
		Summary:        i.Summary,
		Keywords:       append([]string(nil), i.Keywords...),
		Emotion:        i.Emotion,
		SentimentScore: i.SentimentScore,
	}
}

// ApplyEnrichment replaces the item's current enrichment.
func (i *Item) ApplyEnrichment(e Enrichment) {
	i.Summary = e.Summary
	i.Keywords = NormalizeTags(e.Keywords)
	i.Emotion = e.Emotion
	i.SentimentScore = e.SentimentScore
}

// Tags returns the item's tags.
func (i *Item) Tags() []string {
	return i.Keywords
}

// NormalizeTags lowercases, trims and deduplicates tags, preserving first-occurrence order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

// CapturePayload is the raw capture request as received from a client.
type CapturePayload struct {
	URL         string
	Title       string
	Source      string
	ContentType string
	MimeType    string
	Content     string
	Selection   string
	Thumbnail   string
}

// CaptureText is the text an item is enriched from.
func CaptureText(title, content string) string {
	return title + ". " + content
}

// TagCount is a tag with the number of items carrying it.
type TagCount struct {
	Tag   string
	Count int
}

// Insights aggregates a user's captured items.
type Insights struct {
	TotalItems    int
	ByContentType map[string]int
	ByEmotion     map[string]int
	TopTags       []TagCount
}
