package ingestion

import "errors"

var (
	// ErrItemRepositoryRequired is returned when an item repository is not provided.
	ErrItemRepositoryRequired = errors.New("item repository required")

	// ErrEnricherRequired is returned when an enricher is not provided.
	ErrEnricherRequired = errors.New("enricher required")

	// ErrQueueFull is returned by Submit when the pending-job queue is at capacity.
	ErrQueueFull = errors.New("enrichment queue full")

	// ErrSchedulerClosed is returned by Submit after Close has been called.
	ErrSchedulerClosed = errors.New("scheduler closed")

	// ErrEnrichmentPanicked marks a job whose enricher panicked.
	ErrEnrichmentPanicked = errors.New("enrichment panicked")
)
