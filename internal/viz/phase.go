package viz

import (
	"math"

	"github.com/JP-Ellis/desir/internal/ode"
)

// PhasePortrait draws states[i][xc] against states[i][yc] on a braille
// canvas, auto-scaled with a small margin. Consecutive samples are
// joined so sparse adaptive output still reads as a curve.
func PhasePortrait(states []ode.State, xc, yc, width, height int) string {
	c := NewCanvas(width, height)
	if len(states) == 0 {
		return c.String()
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range states {
		if xc >= len(s) || yc >= len(s) {
			continue
		}
		minX, maxX = math.Min(minX, s[xc]), math.Max(maxX, s[xc])
		minY, maxY = math.Min(minY, s[yc]), math.Max(maxY, s[yc])
	}
	if math.IsInf(minX, 1) {
		return c.String()
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	dw, dh := width*2-1, height*4-1
	toDot := func(s ode.State) (int, int) {
		x := int(float64(dw) * 0.04)
		px := x + int((s[xc]-minX)/spanX*float64(dw)*0.92)
		py := dh - int(float64(dh)*0.04) - int((s[yc]-minY)/spanY*float64(dh)*0.92)
		return px, py
	}

	started := false
	prevX, prevY := 0, 0
	for _, s := range states {
		if xc >= len(s) || yc >= len(s) {
			continue
		}
		px, py := toDot(s)
		if started {
			c.Line(prevX, prevY, px, py)
		} else {
			c.Set(px, py)
			started = true
		}
		prevX, prevY = px, py
	}
	return c.String()
}
