package geo

import (
	"fmt"
)

type Segment struct {
	Start *Point
	End   *Point
}

func NewSegment(from, to *Point) *Segment {
	return &Segment{from, to}
}

//nolint:unused
func (s Segment) ToString() string {
	return fmt.Sprintf("%v -> %v", s.Start.ToString(), s.End.ToString())
}

func (segment Segment) IsHorizontal() bool {
	return segment.Start.Y == segment.End.Y
}

func (segment Segment) IsVertical() bool {
	return segment.Start.X == segment.End.X
}
