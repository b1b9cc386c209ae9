package variant

import (
	"errors"
	"image"
)

var errEmptyImage = errors.New("variant: empty source image")

// channelTransform isolates one RGB channel. Signal text is rendered
// monochrome in a known hue, so a single channel carries most of it.
type channelTransform struct {
	name    string
	channel int // 0=red, 1=green, 2=blue
	opts    Options
}

func (t *channelTransform) Name() string { return t.name }

func (t *channelTransform) Apply(src image.Image) (*image.Gray, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, errEmptyImage
	}
	g := grayFromFunc(src, func(r, gr, b uint8) uint8 {
		switch t.channel {
		case 0:
			return r
		case 1:
			return gr
		default:
			return b
		}
	})
	g = upscale(g, t.opts.Upscale)
	return binarize(g, percentileCutoff(g, t.opts.ThresholdPercentile)), nil
}

// hsvTransform keeps pixels inside the configured hue bands and paints
// them white on black. RGB thresholding alone cannot separate
// hue-similar foreground/background pairs, so the mask is computed in
// HSV space like the original color extractor.
type hsvTransform struct {
	bands  []HueBand
	satMin float64
	valMin float64
	opts   Options
}

func (t *hsvTransform) Name() string { return "hsv-extract" }

func (t *hsvTransform) Apply(src image.Image) (*image.Gray, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, errEmptyImage
	}
	mask := grayFromFunc(src, func(r, g, b uint8) uint8 {
		h, s, v := rgbToHSV(r, g, b)
		if s < t.satMin || v < t.valMin {
			return 0
		}
		for _, band := range t.bands {
			if h >= band.Lo && h <= band.Hi {
				return 255
			}
		}
		return 0
	})
	// Close before and after upscaling: once to clean mask noise,
	// once to reconnect strokes the interpolation thinned out.
	mask = closeGaps(mask)
	mask = upscale(mask, t.opts.Upscale)
	mask = closeGaps(mask)
	return binarize(mask, 128), nil
}

// lumaTransform targets light-on-dark or dark-on-light text
// irrespective of hue.
type lumaTransform struct {
	opts Options
}

func (t *lumaTransform) Name() string { return "luma" }

func (t *lumaTransform) Apply(src image.Image) (*image.Gray, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, errEmptyImage
	}
	g := grayFromFunc(src, luma)
	if meanValue(g) > 127 {
		// Light background: flip so text is bright foreground.
		g = invert(g)
	}
	g = upscale(g, t.opts.Upscale)
	return binarize(g, percentileCutoff(g, t.opts.ThresholdPercentile)), nil
}

// sharpenTransform recovers broken strokes of small anti-aliased
// glyphs with an unsharp kernel applied after upscaling. The output
// stays grayscale; recognizers handle soft edges better than a
// sharpened-then-thresholded mask.
type sharpenTransform struct {
	opts Options
}

func (t *sharpenTransform) Name() string { return "sharpen" }

func (t *sharpenTransform) Apply(src image.Image) (*image.Gray, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, errEmptyImage
	}
	g := upscale(grayFromFunc(src, luma), t.opts.Upscale)
	return convolve3x3(g, [9]int{0, -1, 0, -1, 5, -1, 0, -1, 0}), nil
}

// localContrastTransform equalizes contrast per tile so dim glyph
// regions are stretched independently of bright chart elements.
type localContrastTransform struct {
	opts Options
}

func (t *localContrastTransform) Name() string { return "local-contrast" }

func (t *localContrastTransform) Apply(src image.Image) (*image.Gray, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, errEmptyImage
	}
	g := upscale(grayFromFunc(src, luma), t.opts.Upscale)
	b := g.Bounds()
	out := image.NewGray(b)
	for ty := 0; ty < b.Dy(); ty += contrastTileSize {
		for tx := 0; tx < b.Dx(); tx += contrastTileSize {
			stretchTile(g, out, tx, ty)
		}
	}
	return out, nil
}

func stretchTile(g, out *image.Gray, tx, ty int) {
	b := g.Bounds()
	w := min(contrastTileSize, b.Dx()-tx)
	h := min(contrastTileSize, b.Dy()-ty)

	pix := make([]uint8, 0, w*h)
	for y := ty; y < ty+h; y++ {
		pix = append(pix, g.Pix[y*g.Stride+tx:y*g.Stride+tx+w]...)
	}
	lo, hi := stretchRange(pix)
	scale := 255.0 / float64(hi-lo)
	for y := ty; y < ty+h; y++ {
		for x := tx; x < tx+w; x++ {
			v := g.Pix[y*g.Stride+x]
			switch {
			case v <= lo:
				out.Pix[y*out.Stride+x] = 0
			case v >= hi:
				out.Pix[y*out.Stride+x] = 255
			default:
				out.Pix[y*out.Stride+x] = uint8(float64(v-lo) * scale)
			}
		}
	}
}

// luma is the Rec. 601 brightness weighting.
func luma(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

// convolve3x3 applies an integer kernel with clamping.
func convolve3x3(g *image.Gray, k [9]int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := clamp(x+dx, 0, w-1), clamp(y+dy, 0, h-1)
					sum += k[(dy+1)*3+dx+1] * int(g.Pix[ny*g.Stride+nx])
				}
			}
			out.Pix[y*out.Stride+x] = uint8(clamp(sum, 0, 255))
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
