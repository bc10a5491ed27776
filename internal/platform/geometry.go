package platform

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// TopLeft returns the top-left corner as a scene point.
func (r Rect) TopLeft() PointF {
	return PointF{X: float64(r.X), Y: float64(r.Y)}
}

// Intersect returns the overlap of r and o, or an empty Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest rect containing r and o. Empty rects are
// ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x1 := min(r.X, o.X)
	y1 := min(r.Y, o.Y)
	x2 := max(r.X+r.Width, o.X+o.Width)
	y2 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// subtract returns the parts of r not covered by o, as at most four rects.
func (r Rect) subtract(o Rect) []Rect {
	isect := r.Intersect(o)
	if isect.IsEmpty() {
		return []Rect{r}
	}

	var out []Rect
	// Band above the intersection.
	if isect.Y > r.Y {
		out = append(out, Rect{X: r.X, Y: r.Y, Width: r.Width, Height: isect.Y - r.Y})
	}
	// Band below.
	if bottom := isect.Y + isect.Height; bottom < r.Y+r.Height {
		out = append(out, Rect{X: r.X, Y: bottom, Width: r.Width, Height: r.Y + r.Height - bottom})
	}
	// Left and right pieces, limited to the intersection's rows.
	if isect.X > r.X {
		out = append(out, Rect{X: r.X, Y: isect.Y, Width: isect.X - r.X, Height: isect.Height})
	}
	if right := isect.X + isect.Width; right < r.X+r.Width {
		out = append(out, Rect{X: right, Y: isect.Y, Width: r.X + r.Width - right, Height: isect.Height})
	}
	return out
}

// Region is a union of rectangles, e.g. a window's shape.
type Region []Rect

// IsEmpty reports whether the region covers no area.
func (rg Region) IsEmpty() bool {
	for _, r := range rg {
		if !r.IsEmpty() {
			return false
		}
	}
	return true
}

// SubtractFrom returns the area of base not covered by rg.
func (rg Region) SubtractFrom(base Rect) Region {
	remaining := Region{base}
	for _, cut := range rg {
		if cut.IsEmpty() {
			continue
		}
		var next Region
		for _, piece := range remaining {
			next = append(next, piece.subtract(cut)...)
		}
		remaining = next
		if len(remaining) == 0 {
			break
		}
	}
	return remaining
}

// Covers reports whether the region fully covers r.
func (rg Region) Covers(r Rect) bool {
	return rg.SubtractFrom(r).IsEmpty()
}
