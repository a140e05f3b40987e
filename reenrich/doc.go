// Package reenrich re-runs enrichment for items that never got a full pass.
//
// Background enrichment is in-memory only: items whose job was lost to a
// restart stay unprocessed, and items whose job hit unreachable models keep
// their quick result with a processing error. The Reenricher finds both kinds,
// runs them through an enricher in batches with bounded concurrency and
// exponential-backoff retries, and writes the new results.
package reenrich
