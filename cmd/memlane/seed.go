package main

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/ingestion"
)

var samplePayloads = []core.CapturePayload{
	{Title: "Senate budget vote", URL: "https://www.example-news.com/senate", Content: "The senate passed the budget after a long debate in congress."},
	{Title: "Healthcare bill", URL: "https://news.example.org/health", Content: "Congress is negotiating a healthcare bill that would expand coverage."},
	{Title: "Sourdough at last", URL: "https://blog.example.com/bread", Content: "My sourdough finally rose properly. The crust was wonderful and crisp."},
	{Title: "Pasta night", Content: "We cooked fresh pasta with basil from the garden. A happy evening with friends."},
	{Title: "Launch delayed", URL: "https://space.example.com/launch", Content: "The rocket launch was delayed again because of storms. Frustrating for everyone."},
	{Title: "Trail run", Content: "Ran the ridge trail at dawn. The fog over the valley was beautiful."},
	{Title: "Conference talk", URL: "https://www.youtube.com/watch?v=demo", MimeType: "video/mp4", Content: "A talk about distributed caches and invalidation strategies."},
	{Title: "Tax form", MimeType: "application/pdf", Content: "Quarterly tax form with a reminder that payments are due next week."},
	{Title: "Garden notes", Content: "The tomatoes are ripening and the herbs need more water."},
	{Title: "Museum trip", MimeType: "image/jpeg", Content: "Photos from the modern art museum. Some pieces were strange, others moving."},
}

// linesFromFile returns an iterator over the non-blank lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}, nil
}

// payloadsFromLines turns each line into a capture whose title is its first few words.
func payloadsFromLines(lines iter.Seq[string]) iter.Seq[core.CapturePayload] {
	return func(yield func(core.CapturePayload) bool) {
		for line := range lines {
			words := strings.Fields(line)
			if len(words) > 5 {
				words = words[:5]
			}
			if !yield(core.CapturePayload{Title: strings.Join(words, " "), Content: line}) {
				return
			}
		}
	}
}

func samples() iter.Seq[core.CapturePayload] {
	return func(yield func(core.CapturePayload) bool) {
		for _, p := range samplePayloads {
			if !yield(p) {
				return
			}
		}
	}
}

// seedItems captures every payload and reports how many were queued and rejected.
func seedItems(ctx context.Context, pipeline *ingestion.Pipeline, userID core.ID, source iter.Seq[core.CapturePayload]) (queued, rejected int, err error) {
	for payload := range source {
		_, ok, err := pipeline.Capture(ctx, userID, payload)
		if err != nil {
			return queued, rejected, err
		}
		if ok {
			queued++
		} else {
			rejected++
		}
	}
	return queued, rejected, nil
}

func seedCommand(c *cli.Context) error {
	source := samples()
	if name := c.String("src"); name != "" {
		lines, err := linesFromFile(name)
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		source = payloadsFromLines(lines)
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	ctx := c.Context
	queued, rejected, err := seedItems(ctx, pipeline, core.ID(c.Uint64("user")), source)
	if cerr := pipeline.Close(ctx); cerr != nil && err == nil {
		err = fmt.Errorf("enrichment did not finish: %w", cerr)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Seeded %d items (%d enriched, %d rejected by a full queue)\n", queued+rejected, queued, rejected)
	if rejected > 0 {
		fmt.Fprintln(c.App.Writer, "Run `memlane reenrich` to enrich the rejected items.")
	}
	return nil
}
