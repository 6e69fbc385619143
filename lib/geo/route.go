package geo

type Route []*Point

// Segments returns the consecutive segments of the route.
func (route Route) Segments() []Segment {
	var segs []Segment
	for i := 0; i < len(route)-1; i++ {
		segs = append(segs, Segment{Start: route[i], End: route[i+1]})
	}
	return segs
}

// Simplify drops repeated points and interior points that sit on a straight run.
func (route Route) Simplify() Route {
	out := Route{}
	for _, p := range route {
		if len(out) > 0 && out[len(out)-1].Equals(p) {
			continue
		}
		if len(out) >= 2 {
			a, b := out[len(out)-2], out[len(out)-1]
			if (a.X == b.X && b.X == p.X) || (a.Y == b.Y && b.Y == p.Y) {
				out[len(out)-1] = p
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
