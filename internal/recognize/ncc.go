package recognize

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// BestMatch is the strongest correlation found for one template.
type BestMatch struct {
	Score float64
	X, Y  int
	W, H  int
	Scale float64
}

// Multi-scale sweep bounds. The on-screen glyph size drifts with
// display scaling, so the template is tried at a range of sizes.
const (
	scaleMin  = 0.4
	scaleMax  = 1.6
	scaleStep = 0.05
)

// searchScales runs a zero-normalized cross-correlation of the
// template over the image at each scale and returns the best match.
// Correlation runs on gradient-magnitude images so variable glyph
// colors and binarization differences between variant transforms do
// not dominate the score.
func searchScales(img, tpl *image.Gray) BestMatch {
	edges := sobelEdges(img)
	tplEdges := sobelEdges(tpl)

	best := BestMatch{Score: -1}
	w0, h0 := tpl.Bounds().Dx(), tpl.Bounds().Dy()
	for s := scaleMin; s <= scaleMax+1e-9; s += scaleStep {
		tw := int(math.Round(float64(w0) * s))
		th := int(math.Round(float64(h0) * s))
		if tw < 2 || th < 2 || tw >= edges.Bounds().Dx() || th >= edges.Bounds().Dy() {
			continue
		}
		scaled := grayResize(tplEdges, tw, th)
		score, x, y := correlate(edges, scaled)
		if score > best.Score {
			best = BestMatch{Score: score, X: x, Y: y, W: tw, H: th, Scale: s}
		}
	}
	return best
}

// correlate slides tpl over img and returns the best ZNCC score and
// its position. Scores are in [-1,1]; a flat window scores 0.
func correlate(img, tpl *image.Gray) (float64, int, int) {
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	tw, th := tpl.Bounds().Dx(), tpl.Bounds().Dy()
	n := float64(tw * th)

	tplMean, tplVar := meanVariance(tpl.Pix, tpl.Stride, tw, th)
	if tplVar == 0 {
		return 0, 0, 0
	}

	bestScore, bestX, bestY := -1.0, 0, 0
	for oy := 0; oy+th <= ih; oy++ {
		for ox := 0; ox+tw <= iw; ox++ {
			var sum, sumSq, cross float64
			for y := 0; y < th; y++ {
				irow := img.Pix[(oy+y)*img.Stride+ox:]
				trow := tpl.Pix[y*tpl.Stride:]
				for x := 0; x < tw; x++ {
					iv := float64(irow[x])
					sum += iv
					sumSq += iv * iv
					cross += iv * float64(trow[x])
				}
			}
			imgMean := sum / n
			imgVar := sumSq/n - imgMean*imgMean
			if imgVar <= 0 {
				continue
			}
			cov := cross/n - imgMean*tplMean
			score := cov / math.Sqrt(imgVar*tplVar)
			if score > bestScore {
				bestScore, bestX, bestY = score, ox, oy
			}
		}
	}
	return bestScore, bestX, bestY
}

func meanVariance(pix []uint8, stride, w, h int) (mean, variance float64) {
	var sum, sumSq float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(pix[y*stride+x])
			sum += v
			sumSq += v * v
		}
	}
	n := float64(w * h)
	mean = sum / n
	variance = sumSq/n - mean*mean
	return mean, variance
}

// sobelEdges computes gradient magnitude, clamped to 8 bits.
func sobelEdges(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	at := func(x, y int) int {
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		if x >= w {
			x = w - 1
		}
		if y >= h {
			y = h - 1
		}
		return int(g.Pix[y*g.Stride+x])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			m := math.Sqrt(float64(gx*gx + gy*gy))
			if m > 255 {
				m = 255
			}
			out.Pix[y*out.Stride+x] = uint8(m)
		}
	}
	return out
}

func grayResize(g *image.Gray, w, h int) *image.Gray {
	scaled := resize.Resize(uint(w), uint(h), g, resize.Bilinear)
	if out, ok := scaled.(*image.Gray); ok {
		return out
	}
	return toGray(scaled)
}
