// Package variant derives recognition-friendly images from one capture.
// The watched glyphs occupy very few source pixels and sit on a dark,
// noisy background, so every transform upscales substantially before
// thresholding and each targets a different rendering of the signal
// text (hue-isolated, luminance, contrast-recovered).
package variant

import (
	"image"
	"log/slog"

	"github.com/tonypeng1/moomoo/internal/capture"
)

// Variant is one preprocessed derivative of a capture. Immutable once
// produced; Source is provenance only, the episode owns the capture.
type Variant struct {
	Name   string
	Image  *image.Gray
	Source *capture.Capture
}

// Transform derives one variant image from the raw capture.
type Transform interface {
	Name() string
	Apply(src image.Image) (*image.Gray, error)
}

// Options tunes the shared transform parameters.
type Options struct {
	Upscale             int     // resize factor, >= 3
	ThresholdPercentile float64 // brightness percentile kept as foreground
}

func (o Options) withDefaults() Options {
	if o.Upscale < MinUpscale {
		o.Upscale = DefaultUpscale
	}
	if o.ThresholdPercentile <= 0 || o.ThresholdPercentile >= 1 {
		o.ThresholdPercentile = DefaultThresholdPercentile
	}
	return o
}

// Generator runs a fixed transform sequence over captures.
type Generator struct {
	transforms []Transform
}

// NewGenerator creates a generator over the given transforms.
func NewGenerator(transforms ...Transform) *Generator {
	return &Generator{transforms: transforms}
}

// DefaultTransforms returns the standard transform set in log order.
func DefaultTransforms(opts Options) []Transform {
	opts = opts.withDefaults()
	return []Transform{
		&channelTransform{name: "red-channel", channel: 0, opts: opts},
		&channelTransform{name: "green-channel", channel: 1, opts: opts},
		&hsvTransform{bands: DefaultHueBands, satMin: DefaultSatMin, valMin: DefaultValMin, opts: opts},
		&lumaTransform{opts: opts},
		&sharpenTransform{opts: opts},
		&localContrastTransform{opts: opts},
	}
}

// Generate applies every transform to the capture. A failing transform
// is skipped and logged; the result is empty only when all fail.
func (g *Generator) Generate(cap *capture.Capture) []Variant {
	out := make([]Variant, 0, len(g.transforms))
	for _, t := range g.transforms {
		img, err := t.Apply(cap.Image)
		if err != nil {
			slog.Warn("variant transform failed", "transform", t.Name(), "error", err)
			continue
		}
		out = append(out, Variant{Name: t.Name(), Image: img, Source: cap})
	}
	if len(out) == 0 {
		slog.Warn("all variant transforms failed, cycle degraded")
	}
	return out
}
