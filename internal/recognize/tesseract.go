package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os/exec"

	"github.com/tonypeng1/moomoo/internal/variant"
)

// Tesseract runs the tesseract CLI over a variant image and matches
// terms in its output. The CLI exposes no usable per-word score on
// this path, so hits carry confidence 1.0.
type Tesseract struct {
	bin   string
	langs string
}

// NewTesseract verifies the binary is on PATH; a missing engine is a
// setup failure, not something to discover mid-episode.
func NewTesseract(bin, langs string) (*Tesseract, error) {
	if bin == "" {
		bin = "tesseract"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("tesseract not found: %w", err)
	}
	return &Tesseract{bin: bin, langs: langs}, nil
}

func (t *Tesseract) Kind() Kind { return KindText }

func (t *Tesseract) Recognize(ctx context.Context, v variant.Variant, terms []string) ([]Hit, error) {
	var img bytes.Buffer
	if err := png.Encode(&img, v.Image); err != nil {
		return nil, fmt.Errorf("tesseract: encode variant: %w", err)
	}

	// --psm 6: assume a single uniform block of text, which the
	// watched region is after preprocessing.
	cmd := exec.CommandContext(ctx, t.bin, "stdin", "stdout", "-l", t.langs, "--psm", "6")
	cmd.Stdin = &img
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract: %w (%s)", err, stderr.String())
	}

	text := out.String()
	slog.Debug("tesseract output", "variant", v.Name, "text", text)
	return matchTerms(text, terms, KindText, v.Name), nil
}
