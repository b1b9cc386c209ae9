// Package recognize provides pluggable term detection over variants.
// Two kinds of recognizer exist: text-recognition engines that read
// the variant and match terms in the output, and template matchers
// that search a reference glyph image inside the variant. Both feed
// the same aggregation step; adding a third kind must not touch it.
package recognize

import (
	"context"

	"github.com/tonypeng1/moomoo/internal/variant"
)

// Kind identifies the recognition strategy that produced a hit.
type Kind string

const (
	KindText     Kind = "text-recognition"
	KindTemplate Kind = "template-match"
)

// Hit is one positive detection of a term by one recognizer on one
// variant. Immutable once produced. Provenance is carried explicitly
// here rather than reconstructed from artifact filenames.
type Hit struct {
	Term       string  `json:"term"`
	Confidence float64 `json:"confidence"` // [0,1]; 1.0 when the engine exposes no score
	Kind       Kind    `json:"kind"`
	Variant    string  `json:"variant"`
	Raw        string  `json:"raw,omitempty"`   // engine text for text recognizers
	Debug      string  `json:"debug,omitempty"` // path of debug artifact, if written
}

// Recognizer inspects one variant for the target terms. A failed
// invocation returns an error; callers treat it as zero hits for the
// variant, never as a cycle failure.
type Recognizer interface {
	Kind() Kind
	Recognize(ctx context.Context, v variant.Variant, terms []string) ([]Hit, error)
}
