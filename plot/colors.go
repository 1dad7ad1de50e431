package plot

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// set2 is the ColorBrewer Set2 qualitative palette.
var set2 = []drawing.Color{
	drawing.ColorFromHex("66c2a5"),
	drawing.ColorFromHex("fc8d62"),
	drawing.ColorFromHex("8da0cb"),
	drawing.ColorFromHex("e78ac3"),
	drawing.ColorFromHex("a6d854"),
	drawing.ColorFromHex("ffd92f"),
	drawing.ColorFromHex("e5c494"),
	drawing.ColorFromHex("b3b3b3"),
}

func paletteColor(i int) drawing.Color {
	return set2[i%len(set2)]
}

// coolwarm control points, blue through light grey to red.
var coolwarm = []struct {
	at float64
	c  drawing.Color
}{
	{0, drawing.Color{R: 59, G: 76, B: 192, A: 255}},
	{0.25, drawing.Color{R: 141, G: 176, B: 254, A: 255}},
	{0.5, drawing.Color{R: 221, G: 221, B: 221, A: 255}},
	{0.75, drawing.Color{R: 244, G: 154, B: 123, A: 255}},
	{1, drawing.Color{R: 180, G: 4, B: 38, A: 255}},
}

// coolwarmAt maps t in [0,1] onto the diverging colour map.
func coolwarmAt(t float64) drawing.Color {
	t = math.Max(0, math.Min(1, t))
	for i := 1; i < len(coolwarm); i++ {
		lo, hi := coolwarm[i-1], coolwarm[i]
		if t <= hi.at {
			f := (t - lo.at) / (hi.at - lo.at)
			return drawing.Color{
				R: mix(lo.c.R, hi.c.R, f),
				G: mix(lo.c.G, hi.c.G, f),
				B: mix(lo.c.B, hi.c.B, f),
				A: 255,
			}
		}
	}
	return coolwarm[len(coolwarm)-1].c
}

func mix(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// textColorOn picks black or white annotation text for a cell background.
func textColorOn(bg drawing.Color) drawing.Color {
	lum := relativeLuminance(bg)
	if lum > 0.408 {
		return drawing.ColorBlack
	}
	return drawing.ColorWhite
}

func relativeLuminance(c drawing.Color) float64 {
	channel := func(v uint8) float64 {
		x := float64(v) / 255
		if x <= 0.03928 {
			return x / 12.92
		}
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return 0.2126*channel(c.R) + 0.7152*channel(c.G) + 0.0722*channel(c.B)
}
