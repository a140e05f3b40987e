package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "tag text",
			content:  "healthcare",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("congress")
	id2 := IDFromContent("politics")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		label string
		want  Emotion
		ok    bool
	}{
		{"happy", EmotionHappy, true},
		{"  Excited ", EmotionExcited, true},
		{"REFLECTIVE", EmotionReflective, true},
		{"ecstatic", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseEmotion(tt.label)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseEmotion(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"Congress", " bill ", "congress", "", "Healthcare"})
	want := []string{"congress", "bill", "healthcare"}

	if len(got) != len(want) {
		t.Fatalf("NormalizeTags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeTags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if NormalizeTags(nil) != nil {
		t.Error("NormalizeTags(nil) should be nil")
	}
}

func TestItem_ApplyEnrichment(t *testing.T) {
	item := &Item{UserId: 1}
	e := Enrichment{
		Summary:        "A summary.",
		Keywords:       []string{"Go", "go", "pipelines"},
		Emotion:        EmotionHappy,
		SentimentScore: 0.4,
	}

	item.ApplyEnrichment(e)

	if item.Summary != "A summary." {
		t.Errorf("Summary = %q", item.Summary)
	}
	if len(item.Keywords) != 2 || item.Keywords[0] != "go" || item.Keywords[1] != "pipelines" {
		t.Errorf("Keywords = %v, want [go pipelines]", item.Keywords)
	}

	back := item.Enrichment()
	back.Keywords[0] = "mutated"
	if item.Keywords[0] != "go" {
		t.Error("Enrichment() must not share the keyword slice with the item")
	}
}

func TestEnrichment_Equal(t *testing.T) {
	a := Enrichment{Summary: "s", Keywords: []string{"a", "b"}, Emotion: EmotionNeutral, SentimentScore: 0.1}
	b := a.Clone()

	if !a.Equal(b) {
		t.Error("clone should be equal")
	}

	b.Keywords[1] = "c"
	if a.Equal(b) {
		t.Error("different keywords should not be equal")
	}
	if a.Keywords[1] != "b" {
		t.Error("Clone must copy the keyword slice")
	}
}

func TestCaptureText(t *testing.T) {
	if got := CaptureText("Title", "Body text."); got != "Title. Body text." {
		t.Errorf("CaptureText() = %q", got)
	}
}
