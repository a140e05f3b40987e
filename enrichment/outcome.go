package enrichment

import (
	"context"

	"github.com/poiesic/memlane/core"
)

// Kind classifies how an enrichment pass went.
type Kind int

const (
	Success Kind = iota
	DegradedHeuristic
	Failed
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case DegradedHeuristic:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one enrichment pass.
//
// Result is always usable, even for Failed outcomes, where it holds the
// heuristic fallback. Err is set only when a model could not be reached.
type Outcome struct {
	Kind    Kind
	Result  core.Enrichment
	Reasons []string
	Err     error
}

// Enricher derives an enrichment from text.
// Implementations must be safe for concurrent use and must not panic on any input.
type Enricher interface {
	Enrich(ctx context.Context, text, titleHint string) Outcome
}

// Resolve returns what should be stored for this outcome. A Failed outcome
// keeps fallback; otherwise Result is used. The error text is non-empty only
// when a service could not be reached.
func (o Outcome) Resolve(fallback core.Enrichment) (core.Enrichment, string) {
	if o.Kind == Failed {
		if o.Err != nil {
			return fallback, o.Err.Error()
		}
		return fallback, "enrichment failed"
	}
	if o.Err != nil {
		return o.Result, o.Err.Error()
	}
	return o.Result, ""
}
