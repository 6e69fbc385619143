package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"oss.terrastruct.com/gantt/lib/geo"
)

// FullPrecision keeps every decimal after the 4 digit chop.
const FullPrecision = -1

// SvgPathContext accumulates absolute path commands.
// Straight runs are also recorded as segments so callers can hit test the outline.
type SvgPathContext struct {
	Segments  []geo.Segment
	Commands  []string
	Start     *geo.Point
	Current   *geo.Point
	Precision int
}

func chopPrecision(f float64) float64 {
	return math.Round(f*10000) / 10000
}

func NewSVGPathContext(precision int) *SvgPathContext {
	return &SvgPathContext{Precision: precision}
}

func (c *SvgPathContext) num(f float64) string {
	f = geo.RoundDecimals(chopPrecision(f), c.Precision)
	if f == 0 {
		// avoids "-0"
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *SvgPathContext) point(x, y float64) *geo.Point {
	return geo.NewPoint(
		geo.RoundDecimals(chopPrecision(x), c.Precision),
		geo.RoundDecimals(chopPrecision(y), c.Precision),
	)
}

func (c *SvgPathContext) StartAt(x, y float64) {
	p := c.point(x, y)
	c.Start = p
	c.Commands = append(c.Commands, fmt.Sprintf("M %s %s", c.num(p.X), c.num(p.Y)))
	c.Current = p.Copy()
}

func (c *SvgPathContext) Z() {
	c.Segments = append(c.Segments, geo.Segment{Start: c.Current.Copy(), End: c.Start.Copy()})
	c.Commands = append(c.Commands, "Z")
	c.Current = c.Start.Copy()
}

func (c *SvgPathContext) L(x, y float64) {
	endPoint := c.point(x, y)
	c.Segments = append(c.Segments, geo.Segment{Start: c.Current.Copy(), End: endPoint})
	c.Commands = append(c.Commands, fmt.Sprintf("L %s %s", c.num(endPoint.X), c.num(endPoint.Y)))
	c.Current = endPoint.Copy()
}

func (c *SvgPathContext) H(x float64) {
	endPoint := c.point(x, c.Current.Y)
	c.Segments = append(c.Segments, geo.Segment{Start: c.Current.Copy(), End: endPoint})
	c.Commands = append(c.Commands, fmt.Sprintf("H %s", c.num(endPoint.X)))
	c.Current = endPoint.Copy()
}

func (c *SvgPathContext) V(y float64) {
	endPoint := c.point(c.Current.X, y)
	c.Segments = append(c.Segments, geo.Segment{Start: c.Current.Copy(), End: endPoint})
	c.Commands = append(c.Commands, fmt.Sprintf("V %s", c.num(endPoint.Y)))
	c.Current = endPoint.Copy()
}

// Q draws a quadratic curve through control point (x1, y1).
func (c *SvgPathContext) Q(x1, y1, x, y float64) {
	endPoint := c.point(x, y)
	c.Commands = append(c.Commands, fmt.Sprintf("Q %s %s %s %s", c.num(x1), c.num(y1), c.num(endPoint.X), c.num(endPoint.Y)))
	c.Current = endPoint.Copy()
}

func (c *SvgPathContext) C(x1, y1, x2, y2, x, y float64) {
	endPoint := c.point(x, y)
	c.Commands = append(c.Commands, fmt.Sprintf(
		"C %s %s %s %s %s %s",
		c.num(x1), c.num(y1),
		c.num(x2), c.num(y2),
		c.num(endPoint.X), c.num(endPoint.Y),
	))
	c.Current = endPoint.Copy()
}

// A draws a circular arc of radius r ending at (x, y).
func (c *SvgPathContext) A(r float64, largeArc, sweep bool, x, y float64) {
	endPoint := c.point(x, y)
	c.Commands = append(c.Commands, fmt.Sprintf(
		"A %s %s 0 %d %d %s %s",
		c.num(r), c.num(r),
		flag(largeArc), flag(sweep),
		c.num(endPoint.X), c.num(endPoint.Y),
	))
	c.Current = endPoint.Copy()
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c *SvgPathContext) PathData() string {
	return strings.Join(c.Commands, " ")
}
