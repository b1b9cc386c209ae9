// Package episode runs detection cycles: capture, preprocess,
// recognize, aggregate, decide, dispatch. One episode is one cycle;
// episodes are strictly ordered and never overlap.
package episode

import (
	"time"

	"github.com/google/uuid"

	"github.com/tonypeng1/moomoo/internal/aggregate"
	"github.com/tonypeng1/moomoo/internal/capture"
	"github.com/tonypeng1/moomoo/internal/recognize"
)

// Episode is the record of one full cycle. It is mutated only by the
// controller while the cycle runs and sealed once the decision is
// made; consumers (status server, history) only ever see sealed
// episodes.
type Episode struct {
	ID       uuid.UUID           `json:"id"`
	Started  time.Time           `json:"started"`
	Finished time.Time           `json:"finished"`
	Region   capture.Region      `json:"region"`
	Variants []string            `json:"variants,omitempty"`
	Hits     []recognize.Hit     `json:"hits,omitempty"`
	Findings []aggregate.Finding `json:"findings,omitempty"`
	Alert    bool                `json:"alert"`
	Skipped  bool                `json:"skipped,omitempty"` // region unchanged, recognition not run
	Err      string              `json:"error,omitempty"`   // episode-fatal error, capture stage only
}

// Terms lists the detected terms.
func (e *Episode) Terms() []string {
	return aggregate.Terms(e.Findings)
}

// RawText joins the distinct engine outputs that contributed hits.
func (e *Episode) RawText() string {
	seen := make(map[string]bool)
	var out string
	for _, h := range e.Hits {
		if h.Raw == "" || seen[h.Raw] {
			continue
		}
		seen[h.Raw] = true
		if out != "" {
			out += "\n"
		}
		out += h.Raw
	}
	return out
}
