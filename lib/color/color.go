// Package color computes the derived fills used for task states.
package color

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

const (
	Empty = ""
	None  = "none"
)

func parse(colorString string) (colorful.Color, float64, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return colorful.Color{}, 0, err
	}
	return colorful.Color{R: c.R, G: c.G, B: c.B}, c.A, nil
}

// Darken decreases the HSL lightness of colorString by 10%.
func Darken(colorString string) (string, error) {
	c, _, err := parse(colorString)
	if err != nil {
		return "", err
	}
	h, s, l := c.Hsl()
	return colorful.Hsl(h, s, l-.1).Clamped().Hex(), nil
}

// Dim blends colorString towards background so a de-emphasized task keeps its hue.
// amount 0 returns the original color, 1 the background.
func Dim(colorString, background string, amount float64) (string, error) {
	c, _, err := parse(colorString)
	if err != nil {
		return "", err
	}
	bg, _, err := parse(background)
	if err != nil {
		return "", err
	}
	return c.BlendRgb(bg, amount).Clamped().Hex(), nil
}

func LuminanceCategory(colorString string) (string, error) {
	l, err := Luminance(colorString)
	if err != nil {
		return "", err
	}

	switch {
	case l >= .88:
		return "bright", nil
	case l >= .55:
		return "normal", nil
	case l >= .30:
		return "dark", nil
	default:
		return "darker", nil
	}
}

func Luminance(colorString string) (float64, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return 0, err
	}

	l := float64(
		float64(0.299)*float64(c.R) +
			float64(0.587)*float64(c.G) +
			float64(0.114)*float64(c.B),
	)
	return l, nil
}

// Contrast picks a label color readable on top of fill.
func Contrast(fill string) string {
	cat, err := LuminanceCategory(fill)
	if err != nil {
		return "#0a0f25"
	}
	switch cat {
	case "dark", "darker":
		return "#ffffff"
	default:
		return "#0a0f25"
	}
}
