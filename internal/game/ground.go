package game

// Ground ratios relative to the window.
const (
	groundHeightRatio = 0.85 // ground line sits at 85% of window height
	groundLoopRatio   = 0.4  // scroll snaps back after 40% of the width
)

// Ground is the looping floor strip. It scrolls left with the game speed
// and wraps once a fixed fraction of the width has slid past, so the
// pattern repeats seamlessly.
type Ground struct {
	y      int
	width  int
	offset float64
	loopW  float64
}

// NewGround creates the ground for a window of the given size.
func NewGround(screenW, screenH int) *Ground {
	return &Ground{
		y:     int(float64(screenH) * groundHeightRatio),
		width: screenW,
		loopW: float64(screenW) * groundLoopRatio,
	}
}

// Y returns the row of the ground line. Anything at or below it collides.
func (g *Ground) Y() int { return g.y }

// Offset returns the current scroll offset in whole cells.
func (g *Ground) Offset() int { return int(g.offset) }

// Update scrolls the ground by the current speed, wrapping at the loop
// boundary.
func (g *Ground) Update(speed float64) {
	g.offset += speed
	if g.offset >= g.loopW {
		g.offset = 0
	}
}

// Reset returns the ground to its origin offset.
func (g *Ground) Reset() {
	g.offset = 0
}
