package api

import (
	"time"

	"github.com/poiesic/memlane/core"
)

// CaptureRequest is the body of POST /api/capture.
type CaptureRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	ContentType string `json:"contentType"`
	MimeType    string `json:"mimeType"`
	Content     string `json:"content"`
	Selection   string `json:"selection"`
	Thumbnail   string `json:"thumbnail"`
}

func (r CaptureRequest) payload() core.CapturePayload {
	return core.CapturePayload{
		URL:         r.URL,
		Title:       r.Title,
		Source:      r.Source,
		ContentType: r.ContentType,
		MimeType:    r.MimeType,
		Content:     r.Content,
		Selection:   r.Selection,
		Thumbnail:   r.Thumbnail,
	}
}

// ItemView is the JSON form of an item.
type ItemView struct {
	ID              uint64    `json:"id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Source          string    `json:"source"`
	ContentType     string    `json:"contentType"`
	Content         string    `json:"content"`
	Summary         string    `json:"summary"`
	Keywords        []string  `json:"keywords"`
	Emotion         string    `json:"emotion"`
	SentimentScore  float64   `json:"sentimentScore"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
	Processed       bool      `json:"processed"`
	ProcessingError string    `json:"processingError,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func newItemView(item *core.Item) ItemView {
	keywords := item.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return ItemView{
		ID:              uint64(item.Id),
		URL:             item.URL,
		Title:           item.Title,
		Source:          item.Source,
		ContentType:     item.ContentType,
		Content:         item.Content,
		Summary:         item.Summary,
		Keywords:        keywords,
		Emotion:         string(item.Emotion),
		SentimentScore:  item.SentimentScore,
		Thumbnail:       item.Thumbnail,
		Processed:       item.Processed,
		ProcessingError: item.ProcessingError,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func newItemViews(items []*core.Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, newItemView(item))
	}
	return views
}

type captureResponse struct {
	Item   ItemView `json:"item"`
	Queued bool     `json:"queued"`
}

type itemResponse struct {
	Item ItemView `json:"item"`
}

type searchResponse struct {
	Results      []ItemView `json:"results"`
	SemanticUsed bool       `json:"semanticUsed"`
}

type timelineResponse struct {
	Items []ItemView `json:"items"`
}

type statusResponse struct {
	Pending bool `json:"pending"`
	Count   int  `json:"count"`
}

type tagCountView struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type insightsResponse struct {
	TotalItems    int            `json:"totalItems"`
	ByContentType map[string]int `json:"byContentType"`
	ByEmotion     map[string]int `json:"byEmotion"`
	TopTags       []tagCountView `json:"topTags"`
}

func newInsightsResponse(in *core.Insights) insightsResponse {
	resp := insightsResponse{
		TotalItems:    in.TotalItems,
		ByContentType: in.ByContentType,
		ByEmotion:     in.ByEmotion,
		TopTags:       make([]tagCountView, 0, len(in.TopTags)),
	}
	if resp.ByContentType == nil {
		resp.ByContentType = map[string]int{}
	}
	if resp.ByEmotion == nil {
		resp.ByEmotion = map[string]int{}
	}
	for _, tc := range in.TopTags {
		resp.TopTags = append(resp.TopTags, tagCountView{Tag: tc.Tag, Count: tc.Count})
	}
	return resp
}
