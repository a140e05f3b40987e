package reenrich

import (
	"bytes"
	"testing"
	"time"

	"github.com/poiesic/memlane/enrichment"
	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 2)

	tracker.Start()
	tracker.Record(enrichment.Success)
	tracker.Record(enrichment.Success)
	tracker.Record(enrichment.DegradedHeuristic)
	tracker.Record(enrichment.Failed)

	assert.Greater(t, tracker.Elapsed(), time.Duration(0))
	assert.Equal(t, 2, tracker.Count(enrichment.Success))
	assert.Equal(t, 1, tracker.Count(enrichment.DegradedHeuristic))
	assert.Equal(t, 1, tracker.Count(enrichment.Failed))

	output := buf.String()
	assert.Contains(t, output, "4/4")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "2 ok, 1 degraded, 1 failed")
}

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)

	tracker.Start()
	for i := 0; i < 4; i++ {
		tracker.Record(enrichment.Success)
	}
	assert.Empty(t, buf.String(), "no report before the interval")

	tracker.Record(enrichment.Success)
	assert.Contains(t, buf.String(), "5/10")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10)

	tracker.Start()
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "0/0", "should handle zero total")
	assert.Contains(t, output, "\n", "finish should print newline")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Record(enrichment.Success)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
	assert.Zero(t, tracker.Count(enrichment.Success))
}

func TestProgressTracker_RecordBeyondTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1, 1)

	tracker.Start()
	tracker.Record(enrichment.Success)
	tracker.Record(enrichment.Success)
	tracker.Finish()

	assert.NotContains(t, buf.String(), "2/1")
	assert.Equal(t, 2, tracker.Count(enrichment.Success))
}
