package geo

type Box struct {
	TopLeft *Point
	Width   float64
	Height  float64
}

func NewBox(tl *Point, width, height float64) *Box {
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

func (b *Box) Left() float64   { return b.TopLeft.X }
func (b *Box) Right() float64  { return b.TopLeft.X + b.Width }
func (b *Box) Top() float64    { return b.TopLeft.Y }
func (b *Box) Bottom() float64 { return b.TopLeft.Y + b.Height }

func (b *Box) Intersections(s Segment) []*Point {
	pts := []*Point{}

	tl := b.TopLeft
	tr := NewPoint(tl.X+b.Width, tl.Y)
	br := NewPoint(tr.X, tr.Y+b.Height)
	bl := NewPoint(tl.X, br.Y)

	if p := IntersectionPoint(s.Start, s.End, tl, tr); p != nil {
		pts = append(pts, p)
	}
	if p := IntersectionPoint(s.Start, s.End, tr, br); p != nil {
		pts = append(pts, p)
	}
	if p := IntersectionPoint(s.Start, s.End, br, bl); p != nil {
		pts = append(pts, p)
	}
	if p := IntersectionPoint(s.Start, s.End, bl, tl); p != nil {
		pts = append(pts, p)
	}
	return pts
}

// Crossed reports whether s passes through the inside of b.
// A segment that only runs along an edge is not crossing.
func (b *Box) Crossed(s Segment) bool {
	if b.Width <= 0 || b.Height <= 0 {
		return false
	}
	if s.IsHorizontal() {
		y := s.Start.Y
		if y <= b.Top() || y >= b.Bottom() {
			return false
		}
		lo, hi := s.Start.X, s.End.X
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo < b.Right() && hi > b.Left()
	}
	if s.IsVertical() {
		x := s.Start.X
		if x <= b.Left() || x >= b.Right() {
			return false
		}
		lo, hi := s.Start.Y, s.End.Y
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo < b.Bottom() && hi > b.Top()
	}
	return len(b.Intersections(s)) > 0
}
