package ganttdep

import (
	"oss.terrastruct.com/gantt/lib/geo"
	"oss.terrastruct.com/gantt/lib/svg"
)

const (
	MarkerCircle     = "circle"
	MarkerCircleOpen = "circle-open"
	MarkerArrow      = "arrow"
	MarkerArrowOpen  = "arrow-open"
)

// Markers picks the start and end marker variants. A shared endpoint switches that
// end to the open variant so stacked lines stay distinguishable.
func Markers(c Conflict) (start, end string) {
	start, end = MarkerCircle, MarkerArrow
	if c == ConflictPredecessor || c == ConflictBoth {
		start = MarkerCircleOpen
	}
	if c == ConflictSuccessor || c == ConflictBoth {
		end = MarkerArrowOpen
	}
	return start, end
}

// CirclePath is a circle of radius r centered on p.
func CirclePath(p *geo.Point, r float64, precision int) string {
	pc := svg.NewSVGPathContext(precision)
	pc.StartAt(p.X-r, p.Y)
	pc.A(r, true, true, p.X+r, p.Y)
	pc.A(r, true, true, p.X-r, p.Y)
	pc.Z()
	return pc.PathData()
}

// ArrowPath is a triangle with its tip on the last point of route, pointing along the last segment.
func ArrowPath(route geo.Route, size float64, precision int) string {
	if len(route) < 2 {
		return ""
	}
	tip := route[len(route)-1]
	from := route[len(route)-2]
	dir := from.VectorTo(tip).Unit()
	if dir.Length() == 0 {
		return ""
	}
	back := tip.AddVector(dir.Multiply(-size))
	// perpendicular
	n := geo.NewVector(-dir[1], dir[0]).Multiply(size / 2)

	a := back.AddVector(n)
	b := back.AddVector(n.Multiply(-1))
	pc := svg.NewSVGPathContext(precision)
	pc.StartAt(tip.X, tip.Y)
	pc.L(a.X, a.Y)
	pc.L(b.X, b.Y)
	pc.Z()
	return pc.PathData()
}
