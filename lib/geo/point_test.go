package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddVector(t *testing.T) {
	start := &Point{1.5, 5.3}
	c := NewVector(-3.5, -2.3)
	p2 := start.AddVector(c)

	if p2.X != -2 || p2.Y != 3 {
		t.Fatalf("Expected resulting point to be (-2, 3), got %+v", p2)
	}
}

func TestVectorTo(t *testing.T) {
	p1 := &Point{1.5, 5.3}
	p2 := &Point{-2, 3}
	c := p1.VectorTo(p2)
	if !c.equals(NewVector(-3.5, -2.3)) {
		t.Fatalf("Expected Vector to be (-3.5, -2.3), got %v", c)
	}

	c = p2.VectorTo(p1)
	if !c.equals(NewVector(3.5, 2.3)) {
		t.Fatalf("Expected Vector to be (3.5, 2.3), got %v", c)
	}
}

func TestGetOrientation(t *testing.T) {
	t.Parallel()

	origin := NewPoint(10, 10)
	assert.Equal(t, TopLeft, origin.GetOrientation(NewPoint(20, 20)))
	assert.Equal(t, BottomRight, origin.GetOrientation(NewPoint(0, 0)))
	assert.Equal(t, Left, origin.GetOrientation(NewPoint(30, 10)))
	assert.Equal(t, Top, origin.GetOrientation(NewPoint(10, 30)))
	assert.Equal(t, NONE, origin.GetOrientation(NewPoint(10, 10)))
}

func TestHalfPixel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Point{10.5, 3.5}, *NewPoint(10.2, 3.9).HalfPixel())
	assert.Equal(t, Point{-1.5, 0.5}, *NewPoint(-1.2, 0).HalfPixel())
}
