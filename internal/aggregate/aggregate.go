// Package aggregate merges recognition hits into per-term findings.
// Aggregation is a pure function of the hit set: it keeps no state
// across cycles and is idempotent, so the episode result does not
// depend on variant or recognizer execution order.
package aggregate

import (
	"github.com/tonypeng1/moomoo/internal/recognize"
)

// Method is one contribution to a finding: which recognizer kind saw
// the term on which variant, and with what confidence.
type Method struct {
	Kind       recognize.Kind `json:"kind"`
	Variant    string         `json:"variant"`
	Confidence float64        `json:"confidence"`
}

// Finding is the de-duplicated detection record for one term within
// one episode. Exactly one finding exists per detected term.
type Finding struct {
	Term       string   `json:"term"`
	Confidence float64  `json:"confidence"` // max over contributing hits
	Methods    []Method `json:"methods"`    // in hit production order
}

// Aggregate groups hits by term. A term becomes a finding iff it has
// at least one hit; output order follows first appearance in the hit
// slice.
func Aggregate(hits []recognize.Hit) []Finding {
	var order []string
	byTerm := make(map[string]*Finding)

	for _, h := range hits {
		f, ok := byTerm[h.Term]
		if !ok {
			f = &Finding{Term: h.Term}
			byTerm[h.Term] = f
			order = append(order, h.Term)
		}
		if h.Confidence > f.Confidence {
			f.Confidence = h.Confidence
		}
		f.Methods = append(f.Methods, Method{
			Kind:       h.Kind,
			Variant:    h.Variant,
			Confidence: h.Confidence,
		})
	}

	out := make([]Finding, 0, len(order))
	for _, term := range order {
		out = append(out, *byTerm[term])
	}
	return out
}

// Terms lists the detected terms in finding order.
func Terms(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Term
	}
	return out
}
