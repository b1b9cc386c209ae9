package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonypeng1/moomoo/internal/recognize"
)

func hit(term string, conf float64, kind recognize.Kind, variant string) recognize.Hit {
	return recognize.Hit{Term: term, Confidence: conf, Kind: kind, Variant: variant}
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]recognize.Hit{}))
}

func TestAggregateOneFindingPerTerm(t *testing.T) {
	hits := []recognize.Hit{
		hit("卖出", 1.0, recognize.KindText, "red-channel"),
		hit("卖出", 0.81, recognize.KindTemplate, "luma"),
		hit("抄底", 1.0, recognize.KindText, "hsv-extract"),
	}

	findings := Aggregate(hits)

	require.Len(t, findings, 2)
	assert.Equal(t, "卖出", findings[0].Term)
	assert.Equal(t, "抄底", findings[1].Term)
}

func TestAggregateMaxConfidence(t *testing.T) {
	hits := []recognize.Hit{
		hit("卖出", 0.75, recognize.KindTemplate, "red-channel"),
		hit("卖出", 0.93, recognize.KindTemplate, "luma"),
		hit("卖出", 0.80, recognize.KindTemplate, "sharpen"),
	}

	findings := Aggregate(hits)

	require.Len(t, findings, 1)
	assert.Equal(t, 0.93, findings[0].Confidence)
}

func TestAggregateProvenanceOrder(t *testing.T) {
	hits := []recognize.Hit{
		hit("卖出", 1.0, recognize.KindText, "red-channel"),
		hit("卖出", 0.85, recognize.KindTemplate, "red-channel"),
		hit("卖出", 1.0, recognize.KindText, "luma"),
	}

	findings := Aggregate(hits)

	require.Len(t, findings, 1)
	require.Len(t, findings[0].Methods, 3)
	assert.Equal(t, Method{Kind: recognize.KindText, Variant: "red-channel", Confidence: 1.0}, findings[0].Methods[0])
	assert.Equal(t, Method{Kind: recognize.KindTemplate, Variant: "red-channel", Confidence: 0.85}, findings[0].Methods[1])
	assert.Equal(t, Method{Kind: recognize.KindText, Variant: "luma", Confidence: 1.0}, findings[0].Methods[2])
}

func TestAggregateMixedKindsOneFinding(t *testing.T) {
	// A finding may originate from both recognizer kinds.
	hits := []recognize.Hit{
		hit("抄底", 0.78, recognize.KindTemplate, "sharpen"),
		hit("抄底", 1.0, recognize.KindText, "luma"),
	}

	findings := Aggregate(hits)

	require.Len(t, findings, 1)
	assert.Equal(t, 1.0, findings[0].Confidence)
	assert.Len(t, findings[0].Methods, 2)
}

func TestAggregateIdempotent(t *testing.T) {
	hits := []recognize.Hit{
		hit("卖出", 1.0, recognize.KindText, "red-channel"),
		hit("抄底", 0.9, recognize.KindTemplate, "luma"),
	}

	assert.Equal(t, Aggregate(hits), Aggregate(hits))
}

func TestAggregateSingleMinimalHit(t *testing.T) {
	// Boundary: one hit at the minimum passing threshold still
	// yields a finding.
	hits := []recognize.Hit{hit("卖出", 0.72, recognize.KindTemplate, "luma")}

	findings := Aggregate(hits)

	require.Len(t, findings, 1)
	assert.Equal(t, 0.72, findings[0].Confidence)
}

func TestTerms(t *testing.T) {
	findings := Aggregate([]recognize.Hit{
		hit("卖出", 1.0, recognize.KindText, "luma"),
		hit("抄底", 1.0, recognize.KindText, "luma"),
	})

	assert.Equal(t, []string{"卖出", "抄底"}, Terms(findings))
}
