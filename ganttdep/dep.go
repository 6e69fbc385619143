// Package ganttdep computes the connector between two tasks of a dependency.
//
// Routes are computed in logical left to right coordinates, mirrored once for
// right to left charts, then snapped to the half pixel grid.
package ganttdep

import (
	"math"
	"sort"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttshape"
	"oss.terrastruct.com/gantt/lib/geo"
	"oss.terrastruct.com/gantt/lib/svg"
)

// Endpoint is the logical geometry of a connected task in content coordinates.
type Endpoint struct {
	Start  float64
	End    float64
	Top    float64
	Bottom float64
}

func (e Endpoint) Mid() float64 {
	return (e.Top + e.Bottom) / 2
}

func (e Endpoint) Box() *geo.Box {
	return geo.NewBox(geo.NewPoint(e.Start, e.Top), e.End-e.Start, e.Bottom-e.Top)
}

type Params struct {
	Type  ganttdata.DependencyType
	Pred  Endpoint
	Succ  Endpoint
	Style ganttdata.LineStyle

	Flank    float64
	Radius   float64
	GuideGap float64

	// Straight lines run between vertical midpoints when set, between facing top/bottom edges otherwise.
	ThroughMidpoint bool

	// Obstacles are other task boxes, in logical coordinates, the vertical run between the
	// connected rows must not cut through.
	Obstacles []*geo.Box

	Space     ganttshape.Space
	Precision int
}

type Line struct {
	// Route is physical and snapped.
	Route geo.Route
	D     string
	// Guided is set when the route turns along a horizontal guide line in a row gap.
	Guided bool
}

func (l Line) Start() *geo.Point {
	return l.Route[0]
}

func (l Line) End() *geo.Point {
	return l.Route[len(l.Route)-1]
}

func Compute(p Params) Line {
	var route geo.Route
	guided := false
	if p.Style == ganttdata.LineStraight {
		route = straightRoute(p)
	} else {
		route, guided = rectilinearRoute(p)
	}

	physical := make(geo.Route, 0, len(route))
	for _, pt := range route {
		x := p.Space.Left(pt.X, 0)
		physical = append(physical, geo.NewPoint(x, pt.Y).HalfPixel())
	}
	physical = physical.Simplify()

	return Line{
		Route:  physical,
		D:      roundedPath(physical, p.Radius, p.Precision),
		Guided: guided,
	}
}

func predPoint(p Params) *geo.Point {
	if p.Type.PredecessorFinish() {
		return geo.NewPoint(p.Pred.End, p.Pred.Mid())
	}
	return geo.NewPoint(p.Pred.Start, p.Pred.Mid())
}

func succPoint(p Params) *geo.Point {
	if p.Type.SuccessorFinish() {
		return geo.NewPoint(p.Succ.End, p.Succ.Mid())
	}
	return geo.NewPoint(p.Succ.Start, p.Succ.Mid())
}

func straightRoute(p Params) geo.Route {
	p0 := predPoint(p)
	q0 := succPoint(p)
	if !p.ThroughMidpoint {
		switch p0.GetOrientation(q0) {
		case geo.TopLeft, geo.TopRight, geo.Top:
			p0.Y = p.Pred.Bottom
			q0.Y = p.Succ.Top
		case geo.BottomLeft, geo.BottomRight, geo.Bottom:
			p0.Y = p.Pred.Top
			q0.Y = p.Succ.Bottom
		}
	}
	return geo.Route{p0, q0}
}

// vertical is where the successor endpoint sits relative to the predecessor endpoint.
type vertical int

const (
	succLevel vertical = iota
	succBelow
	succAbove
)

func verticalOf(p0, q0 *geo.Point) vertical {
	switch {
	case q0.Y > p0.Y:
		return succBelow
	case q0.Y < p0.Y:
		return succAbove
	default:
		return succLevel
	}
}

// sides is the combination of connection edges.
type sides int

const (
	sidesMixed sides = iota
	sidesBothStart
	sidesBothFinish
)

func sidesOf(t ganttdata.DependencyType) sides {
	switch {
	case t.PredecessorFinish() && t.SuccessorFinish():
		return sidesBothFinish
	case !t.PredecessorFinish() && !t.SuccessorFinish():
		return sidesBothStart
	default:
		return sidesMixed
	}
}

// rectilinearRoute builds the corner sequence for the endpoints' vertical relation and
// connection sides. Every route leaves the predecessor through a flank, turns into the
// row gap along a guide line and enters the successor through a flank from outside:
//
//	level, mixed, flanks facing   straight, no corner
//	level, otherwise              U-turn under the row, 4 corners
//	below/above, any sides        guide in the gap next to the predecessor, 4 corners
//	  with the successor run blocked  second guide next to the successor joined by a
//	                                  vertical channel clear of other tasks, 6 corners
//
// Corners collapse when the two flank columns coincide.
func rectilinearRoute(p Params) (geo.Route, bool) {
	p0 := predPoint(p)
	q0 := succPoint(p)

	predDir := -1.
	if p.Type.PredecessorFinish() {
		predDir = 1
	}
	succSide := -1.
	if p.Type.SuccessorFinish() {
		succSide = 1
	}
	p1x := p0.X + predDir*p.Flank
	q1x := q0.X + succSide*p.Flank

	v := verticalOf(p0, q0)
	if v == succLevel {
		if sidesOf(p.Type) == sidesMixed && predDir*(q0.X-p0.X) >= 0 {
			return geo.Route{p0, q0}, false
		}
		g := math.Max(p.Pred.Bottom, p.Succ.Bottom) + p.GuideGap
		return uTurn(p0, q0, p1x, q1x, g), true
	}

	var g1, g2 float64
	var channel bool
	if v == succBelow {
		g1 = p.Pred.Bottom + p.GuideGap
		g2 = p.Succ.Top - p.GuideGap
		channel = g2 > g1
	} else {
		g1 = p.Pred.Top - p.GuideGap
		g2 = p.Succ.Bottom + p.GuideGap
		channel = g2 < g1
	}

	route := uTurn(p0, q0, p1x, q1x, g1)
	run := geo.Route{geo.NewPoint(q1x, g1), geo.NewPoint(q1x, g2)}
	if !channel || !crossesObstacles(run, p.Obstacles) {
		return route, true
	}
	xm, ok := channelX(p, p1x, q1x, g1, g2)
	if !ok {
		return route, true
	}
	return geo.Route{
		p0,
		geo.NewPoint(p1x, p0.Y),
		geo.NewPoint(p1x, g1),
		geo.NewPoint(xm, g1),
		geo.NewPoint(xm, g2),
		geo.NewPoint(q1x, g2),
		geo.NewPoint(q1x, q0.Y),
		q0,
	}, true
}

// uTurn leaves p0 through its flank, runs along the guide at g and enters q0 through its flank.
func uTurn(p0, q0 *geo.Point, p1x, q1x, g float64) geo.Route {
	return geo.Route{
		p0,
		geo.NewPoint(p1x, p0.Y),
		geo.NewPoint(p1x, g),
		geo.NewPoint(q1x, g),
		geo.NewPoint(q1x, q0.Y),
		q0,
	}
}

// channelX finds the x closest to the successor flank where a vertical run between the
// two guides clears every obstacle. Candidates are the predecessor flank and a flank
// length beside each obstacle.
func channelX(p Params, p1x, q1x, g1, g2 float64) (float64, bool) {
	candidates := []float64{p1x}
	for _, b := range p.Obstacles {
		candidates = append(candidates, b.Left()-p.Flank, b.Right()+p.Flank)
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := math.Abs(candidates[i]-q1x), math.Abs(candidates[j]-q1x)
		if di != dj {
			return di < dj
		}
		return candidates[i] < candidates[j]
	})
	for _, x := range candidates {
		r := geo.Route{
			geo.NewPoint(p1x, g1),
			geo.NewPoint(x, g1),
			geo.NewPoint(x, g2),
			geo.NewPoint(q1x, g2),
		}
		if !crossesObstacles(r.Simplify(), p.Obstacles) {
			return x, true
		}
	}
	return 0, false
}

func crossesObstacles(r geo.Route, obstacles []*geo.Box) bool {
	for _, seg := range r.Segments() {
		for _, b := range obstacles {
			if b.Crossed(seg) {
				return true
			}
		}
	}
	return false
}

// roundedPath joins route with arcs at every corner. A corner radius never exceeds half
// of either adjacent segment.
func roundedPath(route geo.Route, radius float64, precision int) string {
	pc := svg.NewSVGPathContext(precision)
	if len(route) == 0 {
		return ""
	}
	pc.StartAt(route[0].X, route[0].Y)
	for i := 1; i < len(route)-1; i++ {
		prev, curr, next := route[i-1], route[i], route[i+1]
		in := prev.VectorTo(curr)
		out := curr.VectorTo(next)
		r := math.Min(radius, math.Min(in.Length()/2, out.Length()/2))
		if r <= 0 {
			pc.L(curr.X, curr.Y)
			continue
		}
		before := curr.AddVector(in.Unit().Multiply(-r))
		after := curr.AddVector(out.Unit().Multiply(r))
		pc.L(before.X, before.Y)
		pc.A(r, false, in.Cross(out) > 0, after.X, after.Y)
	}
	last := route[len(route)-1]
	pc.L(last.X, last.Y)
	return pc.PathData()
}
