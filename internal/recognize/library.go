package recognize

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg" // template decoders
	_ "image/png"
)

// Library is a file-backed map from term to reference glyph image.
// Templates live at <dir>/<term>.png (or .jpg); a missing file means
// template matching skips that term, it is not an error. Loaded once
// at startup, read-only afterwards.
type Library struct {
	dir       string
	templates map[string]*image.Gray
}

// LoadLibrary creates the directory if needed (failure here is a
// setup error) and loads whatever templates exist for the terms.
func LoadLibrary(dir string, terms []string) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("template library: create %s: %w", dir, err)
	}
	lib := &Library{dir: dir, templates: make(map[string]*image.Gray)}
	for _, term := range terms {
		img, ok := lib.loadTemplate(term)
		if !ok {
			slog.Debug("no template registered", "term", term)
			continue
		}
		lib.templates[term] = img
	}
	slog.Info("template library loaded", "dir", dir, "templates", len(lib.templates))
	return lib, nil
}

func (l *Library) loadTemplate(term string) (*image.Gray, bool) {
	if strings.Contains(term, "..") || strings.ContainsRune(term, filepath.Separator) {
		return nil, false
	}
	for _, ext := range []string{".png", ".jpg"} {
		f, err := os.Open(filepath.Join(l.dir, term+ext))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			slog.Warn("unreadable template", "term", term, "error", err)
			continue
		}
		return toGray(img), true
	}
	return nil, false
}

// Lookup returns the template for a term, if one is registered.
func (l *Library) Lookup(term string) (*image.Gray, bool) {
	img, ok := l.templates[term]
	return img, ok
}

// Len reports how many terms have templates.
func (l *Library) Len() int { return len(l.templates) }

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return out
}
