package recognize

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonypeng1/moomoo/internal/variant"
)

// makeGlyph draws a distinctive high-frequency pattern used as both
// template and planted target.
func makeGlyph(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/2+y/3)%2 == 0 {
				g.Pix[y*g.Stride+x] = 255
			}
		}
	}
	return g
}

// plantGlyph copies the glyph into a larger dark image at (px, py).
func plantGlyph(w, h int, glyph *image.Gray, px, py int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	gb := glyph.Bounds()
	for y := 0; y < gb.Dy(); y++ {
		for x := 0; x < gb.Dx(); x++ {
			out.Pix[(py+y)*out.Stride+px+x] = glyph.Pix[y*glyph.Stride+x]
		}
	}
	return out
}

func writeTemplate(t *testing.T, dir, term string, img *image.Gray) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, term+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func testVariant(img *image.Gray) variant.Variant {
	return variant.Variant{Name: "red-channel", Image: img}
}

func TestSearchScalesFindsPlantedGlyph(t *testing.T) {
	glyph := makeGlyph(16, 12)
	scene := plantGlyph(64, 48, glyph, 20, 10)

	best := searchScales(scene, glyph)

	assert.Greater(t, best.Score, 0.8, "planted glyph should correlate strongly")
	assert.InDelta(t, 20, best.X, 2)
	assert.InDelta(t, 10, best.Y, 2)
	assert.InDelta(t, 1.0, best.Scale, 0.06)
}

func TestSearchScalesRejectsAbsentGlyph(t *testing.T) {
	glyph := makeGlyph(16, 12)
	empty := image.NewGray(image.Rect(0, 0, 64, 48))

	best := searchScales(empty, glyph)

	assert.Less(t, best.Score, 0.5, "flat scene should not match")
}

func TestLibraryMissingTermSkipped(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "卖出", makeGlyph(16, 12))

	lib, err := LoadLibrary(dir, []string{"卖出", "抄底"})
	require.NoError(t, err)

	assert.Equal(t, 1, lib.Len())
	_, ok := lib.Lookup("卖出")
	assert.True(t, ok)
	_, ok = lib.Lookup("抄底")
	assert.False(t, ok)
}

func TestLibraryCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "templates")

	lib, err := LoadLibrary(dir, []string{"卖出"})
	require.NoError(t, err)
	assert.Equal(t, 0, lib.Len())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMatcherSkipsTermsWithoutTemplate(t *testing.T) {
	dir := t.TempDir()
	glyph := makeGlyph(16, 12)
	writeTemplate(t, dir, "卖出", glyph)
	lib, err := LoadLibrary(dir, []string{"卖出", "抄底"})
	require.NoError(t, err)

	m := NewMatcher(lib, 0.72, "")
	scene := plantGlyph(64, 48, glyph, 20, 10)

	hits, err := m.Recognize(context.Background(), testVariant(scene), []string{"卖出", "抄底"})
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "卖出", hits[0].Term)
	assert.Equal(t, KindTemplate, hits[0].Kind)
	assert.Equal(t, "red-channel", hits[0].Variant)
	assert.GreaterOrEqual(t, hits[0].Confidence, 0.72)
}

func TestMatcherThresholdGate(t *testing.T) {
	dir := t.TempDir()
	glyph := makeGlyph(16, 12)
	writeTemplate(t, dir, "卖出", glyph)
	lib, err := LoadLibrary(dir, []string{"卖出"})
	require.NoError(t, err)

	// Threshold above any achievable score: no hits.
	m := NewMatcher(lib, 0.999999, "")
	empty := image.NewGray(image.Rect(0, 0, 64, 48))

	hits, err := m.Recognize(context.Background(), testVariant(empty), []string{"卖出"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMatcherWritesDebugImage(t *testing.T) {
	dir := t.TempDir()
	glyph := makeGlyph(16, 12)
	writeTemplate(t, dir, "卖出", glyph)
	lib, err := LoadLibrary(dir, []string{"卖出"})
	require.NoError(t, err)

	debugDir := filepath.Join(t.TempDir(), "debug")
	m := NewMatcher(lib, 0.72, debugDir)
	scene := plantGlyph(64, 48, glyph, 20, 10)

	hits, err := m.Recognize(context.Background(), testVariant(scene), []string{"卖出"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.NotEmpty(t, hits[0].Debug)

	_, err = os.Stat(hits[0].Debug)
	assert.NoError(t, err)
}

func TestMatcherHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "卖出", makeGlyph(16, 12))
	lib, err := LoadLibrary(dir, []string{"卖出"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMatcher(lib, 0.72, "")
	_, err = m.Recognize(ctx, testVariant(image.NewGray(image.Rect(0, 0, 64, 48))), []string{"卖出"})
	assert.Error(t, err)
}
