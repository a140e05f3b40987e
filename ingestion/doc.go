// Package ingestion captures items and enriches them in the background.
//
// Pipeline.Capture stores each item immediately with a quick heuristic
// enrichment and submits an EnrichmentJob to the Scheduler. The Scheduler runs
// jobs on a bounded ants worker pool behind a bounded queue; when the queue is
// full the job is rejected rather than blocking the caller, and the item is
// marked processed with the rejection recorded as its error.
//
// Each job writes its result exactly once: the enricher's result on success or
// degradation, or the original quick result plus an error text when every
// external service failed or the enricher panicked. Jobs are never retried;
// see package reenrich for operator-driven recovery.
package ingestion
