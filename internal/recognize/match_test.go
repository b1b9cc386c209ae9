package recognize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTermsExactSubstring(t *testing.T) {
	hits := matchTerms("信号: 卖出 触发", []string{"卖出", "抄底"}, KindText, "luma")

	assert.Len(t, hits, 1)
	assert.Equal(t, "卖出", hits[0].Term)
	assert.Equal(t, 1.0, hits[0].Confidence)
	assert.Equal(t, KindText, hits[0].Kind)
	assert.Equal(t, "luma", hits[0].Variant)
	assert.Equal(t, "信号: 卖出 触发", hits[0].Raw)
}

func TestMatchTermsIgnoresOCRSpacing(t *testing.T) {
	// OCR engines often insert spaces between CJK glyphs.
	hits := matchTerms("卖 出", []string{"卖出"}, KindText, "red-channel")

	assert.Len(t, hits, 1)
}

func TestMatchTermsNoFuzzyMatch(t *testing.T) {
	hits := matchTerms("卖入", []string{"卖出"}, KindText, "luma")

	assert.Empty(t, hits)
}

func TestMatchTermsMultiple(t *testing.T) {
	hits := matchTerms("抄底 and 卖出 both visible", []string{"卖出", "抄底"}, KindText, "hsv-extract")

	assert.Len(t, hits, 2)
	assert.Equal(t, "卖出", hits[0].Term)
	assert.Equal(t, "抄底", hits[1].Term)
}

func TestMatchTermsEmptyOutput(t *testing.T) {
	assert.Empty(t, matchTerms("", []string{"卖出"}, KindText, "luma"))
	assert.Empty(t, matchTerms("text", nil, KindText, "luma"))
	assert.Empty(t, matchTerms("anything", []string{""}, KindText, "luma"))
}
