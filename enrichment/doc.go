// Package enrichment turns raw captured text into a core.Enrichment.
//
// Two Enrichers are provided:
//
//   - Heuristic: the offline tagging.Tagger, always successful
//   - Adapter: calls an ai.Summarizer and an ai.Tagger, falling back to the
//     heuristic value for each piece that fails
//
// Every call returns an Outcome whose Kind tells the caller what happened:
//
//   - Success: every piece came from its preferred source
//   - DegradedHeuristic: at least one piece fell back to the heuristic value
//   - Failed: every external piece failed to reach its model
//
// An unreachable model sets Outcome.Err. A model that answered with the wrong
// shape only adds a reason; it is not an error.
//
// The tag response contract is strict: after removing a surrounding markdown
// code fence the answer must be a JSON array of exactly four strings, three
// tags followed by one emotion label.
package enrichment
