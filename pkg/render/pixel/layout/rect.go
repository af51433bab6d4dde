package layout

// Rect is an axis-aligned rectangle in frame units.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
