package recognize

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tonypeng1/moomoo/internal/variant"
)

// Matcher searches each term's reference template inside a variant
// using multi-scale normalized cross-correlation. Terms without a
// registered template are skipped.
type Matcher struct {
	lib       *Library
	threshold float64
	debugDir  string // empty disables debug overlays
}

// NewMatcher creates a template matcher over a loaded library.
func NewMatcher(lib *Library, threshold float64, debugDir string) *Matcher {
	return &Matcher{lib: lib, threshold: threshold, debugDir: debugDir}
}

func (m *Matcher) Kind() Kind { return KindTemplate }

func (m *Matcher) Recognize(ctx context.Context, v variant.Variant, terms []string) ([]Hit, error) {
	var hits []Hit
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return hits, err
		}
		tpl, ok := m.lib.Lookup(term)
		if !ok {
			continue
		}
		best := searchScales(v.Image, tpl)
		if best.Score < m.threshold {
			slog.Debug("template below threshold", "term", term, "variant", v.Name, "score", best.Score)
			continue
		}
		hit := Hit{
			Term:       term,
			Confidence: clampScore(best.Score),
			Kind:       KindTemplate,
			Variant:    v.Name,
		}
		if m.debugDir != "" {
			if path, err := m.writeDebug(v, term, best); err != nil {
				slog.Warn("debug image write failed", "term", term, "error", err)
			} else {
				hit.Debug = path
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// writeDebug saves the variant with the best-match rectangle drawn in.
func (m *Matcher) writeDebug(v variant.Variant, term string, best BestMatch) (string, error) {
	if err := os.MkdirAll(m.debugDir, 0o755); err != nil {
		return "", err
	}
	b := v.Image.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, v.Image, b.Min, draw.Src)
	drawRect(out, best.X, best.Y, best.W, best.H)

	name := fmt.Sprintf("%s-%s-%d.png", term, v.Name, time.Now().UnixMilli())
	path := filepath.Join(m.debugDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		return "", err
	}
	return path, nil
}

func drawRect(img *image.RGBA, x, y, w, h int) {
	green := color.RGBA{G: 255, A: 255}
	for i := 0; i <= w; i++ {
		setIn(img, x+i, y, green)
		setIn(img, x+i, y+h, green)
	}
	for i := 0; i <= h; i++ {
		setIn(img, x, y+i, green)
		setIn(img, x+w, y+i, green)
	}
}

func setIn(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
