package variant

import (
	"image"
	"image/color"
	"sort"

	"github.com/nfnt/resize"
)

// grayFromFunc builds a grayscale image by mapping each source pixel's
// 8-bit RGB through f.
func grayFromFunc(src image.Image, f func(r, g, b uint8) uint8) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := src.At(x, y).RGBA()
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: f(uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8))})
		}
	}
	return out
}

// upscale enlarges by an integer factor with bilinear interpolation.
func upscale(g *image.Gray, factor int) *image.Gray {
	if factor <= 1 {
		return g
	}
	b := g.Bounds()
	scaled := resize.Resize(uint(b.Dx()*factor), uint(b.Dy()*factor), g, resize.Bilinear)
	if out, ok := scaled.(*image.Gray); ok {
		return out
	}
	out := image.NewGray(scaled.Bounds())
	for y := scaled.Bounds().Min.Y; y < scaled.Bounds().Max.Y; y++ {
		for x := scaled.Bounds().Min.X; x < scaled.Bounds().Max.X; x++ {
			out.Set(x, y, color.GrayModel.Convert(scaled.At(x, y)))
		}
	}
	return out
}

// percentileCutoff returns the brightness value at the given
// percentile of the pixel population.
func percentileCutoff(g *image.Gray, p float64) uint8 {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}
	target := int(p * float64(len(g.Pix)))
	seen := 0
	for v := 0; v < 256; v++ {
		seen += hist[v]
		if seen >= target {
			return uint8(v)
		}
	}
	return 255
}

// binarize maps pixels strictly above cutoff to white, the rest to
// black. Strict comparison keeps a flat background black even when
// the percentile lands on the background value itself.
func binarize(g *image.Gray, cutoff uint8) *image.Gray {
	out := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		if v > cutoff {
			out.Pix[i] = 255
		}
	}
	return out
}

// meanValue is the average pixel brightness.
func meanValue(g *image.Gray) float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	sum := 0
	for _, v := range g.Pix {
		sum += int(v)
	}
	return float64(sum) / float64(len(g.Pix))
}

// invert flips brightness in place on a copy.
func invert(g *image.Gray) *image.Gray {
	out := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

// closeGaps performs one binary morphological closing (3x3 dilation
// then erosion) to bridge broken glyph strokes.
func closeGaps(g *image.Gray) *image.Gray {
	return erode(dilate(g))
}

func dilate(g *image.Gray) *image.Gray {
	return morph(g, func(maxv uint8) uint8 { return maxv }, true)
}

func erode(g *image.Gray) *image.Gray {
	return morph(g, func(minv uint8) uint8 { return minv }, false)
}

func morph(g *image.Gray, pick func(uint8) uint8, dilating bool) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var ext uint8
			if !dilating {
				ext = 255
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					v := g.Pix[ny*g.Stride+nx]
					if dilating && v > ext {
						ext = v
					} else if !dilating && v < ext {
						ext = v
					}
				}
			}
			out.Pix[y*out.Stride+x] = pick(ext)
		}
	}
	return out
}

// rgbToHSV converts 8-bit RGB to hue in degrees and saturation/value
// in [0,1].
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	maxc := maxf(rf, maxf(gf, bf))
	minc := minf(rf, minf(gf, bf))
	v = maxc
	d := maxc - minc
	if maxc > 0 {
		s = d / maxc
	}
	if d == 0 {
		return 0, s, v
	}
	switch maxc {
	case rf:
		h = 60 * ((gf - bf) / d)
	case gf:
		h = 60 * ((bf-rf)/d + 2)
	default:
		h = 60 * ((rf-gf)/d + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// stretchRange linearly maps [lo,hi] onto [0,255], used by the
// local-contrast transform per tile.
func stretchRange(pix []uint8) (lo, hi uint8) {
	if len(pix) == 0 {
		return 0, 255
	}
	sorted := make([]uint8, len(pix))
	copy(sorted, pix)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	// 2nd/98th percentile bounds resist single hot pixels.
	lo = sorted[len(sorted)*2/100]
	hi = sorted[len(sorted)*98/100]
	if hi <= lo {
		return 0, 255
	}
	return lo, hi
}
