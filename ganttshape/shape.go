// Package ganttshape produces the path data of every task shape.
// Inputs are logical left to right rectangles. Right to left layouts are
// handled once by Space when converting to physical coordinates.
package ganttshape

import (
	"math"

	"oss.terrastruct.com/gantt/lib/geo"
	"oss.terrastruct.com/gantt/lib/svg"
)

const (
	MAIN_TYPE         = "main"
	BASELINE_TYPE     = "baseline"
	PROGRESS_TYPE     = "progress"
	OVERTIME_TYPE     = "overtime"
	DOWNTIME_TYPE     = "downtime"
	ATTRIBUTE_TYPE    = "attribute"
	RESIZE_START_TYPE = "resizeStart"
	RESIZE_END_TYPE   = "resizeEnd"
	SELECT_TYPE       = "select"
	HOVER_TYPE        = "hover"
	FOCUS_TYPE        = "focus"
)

// Space converts logical coordinates into physical ones.
type Space struct {
	Width float64
	RTL   bool
}

// Left is the physical left edge of the logical span [x, x+w].
func (s Space) Left(x, w float64) float64 {
	if s.RTL {
		return s.Width - x - w
	}
	return x
}

// Corners are border radii in logical order: start-top, end-top, end-bottom, start-bottom.
type Corners [4]float64

func UniformCorners(r float64) Corners {
	return Corners{r, r, r, r}
}

func (c Corners) physical(rtl bool) Corners {
	if !rtl {
		return c
	}
	return Corners{c[1], c[0], c[3], c[2]}
}

func (c Corners) zero() bool {
	return c[0] == 0 && c[1] == 0 && c[2] == 0 && c[3] == 0
}

type Params struct {
	Type   string
	X      float64
	Y      float64
	Width  float64
	Height float64

	Corners Corners
	// Summary and Legacy together draw the main shape as a bracket.
	Summary   bool
	Legacy    bool
	Thickness float64

	// HandleWidth sizes the resize handles, RingOffset the selection/hover/focus rings.
	HandleWidth float64
	RingOffset  float64

	Precision int
	Space     Space
}

type generator func(p Params) string

var _typeCmdGeneratorMap map[string]generator

func init() {
	_typeCmdGeneratorMap = map[string]generator{
		MAIN_TYPE:         mainPath,
		BASELINE_TYPE:     barPath,
		PROGRESS_TYPE:     barPath,
		OVERTIME_TYPE:     barPath,
		DOWNTIME_TYPE:     barPath,
		ATTRIBUTE_TYPE:    barPath,
		RESIZE_START_TYPE: resizeStartPath,
		RESIZE_END_TYPE:   resizeEndPath,
		SELECT_TYPE:       ringPath,
		HOVER_TYPE:        ringPath,
		FOCUS_TYPE:        ringPath,
	}
}

// PathData returns the path commands for p. Unknown types produce an empty path.
func PathData(p Params) string {
	gen, ok := _typeCmdGeneratorMap[p.Type]
	if !ok {
		return ""
	}
	return gen(p)
}

// Bounds is the physical bounding box of the shape.
func Bounds(p Params) *geo.Box {
	if p.Width == 0 {
		h := p.Height / 2
		cx := p.Space.Left(p.X, 0)
		return geo.NewBox(geo.NewPoint(cx-h, p.Y), p.Height, p.Height)
	}
	return geo.NewBox(geo.NewPoint(p.Space.Left(p.X, p.Width), p.Y), p.Width, p.Height)
}

func mainPath(p Params) string {
	if p.Width == 0 {
		return diamondPath(p)
	}
	if p.Summary && p.Legacy {
		return summaryPath(p)
	}
	return rectPath(p)
}

func barPath(p Params) string {
	if p.Width == 0 {
		return diamondPath(p)
	}
	return rectPath(p)
}

func resizeStartPath(p Params) string {
	w := math.Min(p.HandleWidth, p.Width)
	p.Width = w
	p.Corners = Corners{p.Corners[0], 0, 0, p.Corners[3]}
	return rectPath(p)
}

func resizeEndPath(p Params) string {
	w := math.Min(p.HandleWidth, p.Width)
	p.X = p.X + p.Width - w
	p.Width = w
	p.Corners = Corners{0, p.Corners[1], p.Corners[2], 0}
	return rectPath(p)
}

func ringPath(p Params) string {
	o := p.RingOffset
	if p.Width == 0 {
		p.Y -= o
		p.Height += 2 * o
		return diamondPath(p)
	}
	p.X -= o
	p.Y -= o
	p.Width += 2 * o
	p.Height += 2 * o
	for i := range p.Corners {
		if p.Corners[i] > 0 {
			p.Corners[i] += o
		}
	}
	return rectPath(p)
}

func rectPath(p Params) string {
	pc := svg.NewSVGPathContext(p.Precision)
	x := p.Space.Left(p.X, p.Width)
	y := p.Y
	w := p.Width
	h := p.Height

	c := p.Corners.physical(p.Space.RTL)
	if c.zero() {
		pc.StartAt(x, y)
		pc.H(x + w)
		pc.V(y + h)
		pc.H(x)
		pc.Z()
		return pc.PathData()
	}

	maxR := math.Min(w, h) / 2
	for i := range c {
		c[i] = geo.Clamp(c[i], 0, maxR)
	}
	tl, tr, br, bl := c[0], c[1], c[2], c[3]

	pc.StartAt(x+tl, y)
	pc.H(x + w - tr)
	if tr > 0 {
		pc.A(tr, false, true, x+w, y+tr)
	}
	pc.V(y + h - br)
	if br > 0 {
		pc.A(br, false, true, x+w-br, y+h)
	}
	pc.H(x + bl)
	if bl > 0 {
		pc.A(bl, false, true, x, y+h-bl)
	}
	pc.V(y + tl)
	if tl > 0 {
		pc.A(tl, false, true, x+tl, y)
	}
	pc.Z()
	return pc.PathData()
}

// diamondPath draws a milestone centered on p.X. The corner radius is applied as an
// offset along each edge from the vertex with the vertex as the curve control point.
func diamondPath(p Params) string {
	pc := svg.NewSVGPathContext(p.Precision)
	half := p.Height / 2
	cx := p.Space.Left(p.X, 0)
	cy := p.Y + half

	top := geo.NewPoint(cx, p.Y)
	right := geo.NewPoint(cx+half, cy)
	bottom := geo.NewPoint(cx, p.Y+p.Height)
	left := geo.NewPoint(cx-half, cy)
	vertices := []*geo.Point{top, right, bottom, left}

	r := geo.Clamp(p.Corners[0], 0, half*math.Sqrt2/2)
	if r == 0 {
		pc.StartAt(top.X, top.Y)
		for _, v := range vertices[1:] {
			pc.L(v.X, v.Y)
		}
		pc.Z()
		return pc.PathData()
	}

	towards := func(from, to *geo.Point) *geo.Point {
		return from.AddVector(from.VectorTo(to).Unit().Multiply(r))
	}
	for i, v := range vertices {
		prev := vertices[(i+len(vertices)-1)%len(vertices)]
		next := vertices[(i+1)%len(vertices)]
		in := towards(v, prev)
		out := towards(v, next)
		if i == 0 {
			pc.StartAt(in.X, in.Y)
		} else {
			pc.L(in.X, in.Y)
		}
		pc.Q(v.X, v.Y, out.X, out.Y)
	}
	pc.Z()
	return pc.PathData()
}

// summaryPath draws a bracket: a top bar of the given thickness with two legs hanging down.
// Spans too narrow for two legs fall back to a plain rectangle.
func summaryPath(p Params) string {
	t := p.Thickness
	if t <= 0 || p.Width < 2*t || p.Height <= t {
		p.Corners = Corners{}
		return rectPath(p)
	}
	pc := svg.NewSVGPathContext(p.Precision)
	x := p.Space.Left(p.X, p.Width)
	y := p.Y
	w := p.Width
	h := p.Height

	pc.StartAt(x, y)
	pc.H(x + w)
	pc.V(y + h)
	pc.H(x + w - t)
	pc.V(y + t)
	pc.H(x + t)
	pc.V(y + h)
	pc.H(x)
	pc.Z()
	return pc.PathData()
}
