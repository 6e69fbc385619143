package geo

import (
	"math"
)

// A N-Dimensional Vector with components (x, y, z, ...) based on the origin
type Vector []float64

// New Vector from components
func NewVector(components ...float64) Vector {
	return components
}

func (a Vector) Add(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]+b[i])
	}
	return c
}

func (a Vector) Minus(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]-b[i])
	}
	return c
}

func (a Vector) Multiply(v float64) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]*v)
	}
	return c
}

func (a Vector) Length() float64 {
	sum := 0.0
	for _, comp := range a {
		sum += comp * comp
	}
	return math.Sqrt(sum)
}

// Creates an unit Vector pointing in the same direction of this Vector
func (a Vector) Unit() Vector {
	l := a.Length()
	if l == 0 {
		return a.Multiply(0)
	}
	return a.Multiply(1 / l)
}

// Cross is the z component of the 2D cross product.
// With screen coordinates (y down) a positive value is a clockwise turn from a to b.
func (a Vector) Cross(b Vector) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

func (a Vector) ToPoint() *Point {
	return &Point{a[0], a[1]}
}
