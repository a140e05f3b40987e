package reenrich

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/memlane/enrichment"
)

// ProgressTracker tracks and reports progress of a re-enrichment run.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	current        int
	byKind         map[enrichment.Kind]int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
// total: total number of items to process
// reportInterval: report progress every N items
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
		byKind:         make(map[enrichment.Kind]int),
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
	clear(p.byKind)
}

// Record counts one finished item with the given outcome kind.
func (p *ProgressTracker) Record(kind enrichment.Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.byKind[kind]++
	if p.current < p.total {
		p.current++
	}

	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Count returns how many recorded items ended with kind.
func (p *ProgressTracker) Count(kind enrichment.Kind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.byKind[kind]
}

// Finish prints final progress.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.current) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %d ok, %d degraded, %d failed - %.1f items/s",
		p.current, p.total, percentage,
		p.byKind[enrichment.Success], p.byKind[enrichment.DegradedHeuristic], p.byKind[enrichment.Failed],
		rate)
}
