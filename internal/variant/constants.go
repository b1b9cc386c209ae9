package variant

// Transform tuning defaults
const (
	MinUpscale                 = 3
	DefaultUpscale             = 4
	DefaultThresholdPercentile = 0.90

	// Minimum saturation/value for a pixel to count as colored
	// foreground in the hsv-extract transform. Tuned for bright
	// signal text on dark chart backgrounds.
	DefaultSatMin = 0.39
	DefaultValMin = 0.39

	// Local-contrast tile edge in post-upscale pixels.
	contrastTileSize = 64
)

// HueBand is a closed hue interval in degrees.
type HueBand struct {
	Lo, Hi float64
}

// DefaultHueBands cover red (split across the hue wrap-around) and
// green, the two colors the watched platform renders signals in.
var DefaultHueBands = []HueBand{
	{Lo: 0, Hi: 20},
	{Lo: 340, Hi: 360},
	{Lo: 80, Hi: 160},
}
