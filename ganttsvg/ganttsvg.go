// Package ganttsvg writes a scene graph as an SVG document.
package ganttsvg

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/lib/svg"
	"oss.terrastruct.com/gantt/lib/version"
)

type RenderOpts struct {
	// Background fills the whole canvas when set.
	Background string
	// Animate writes pending tweens as SMIL animations. Without it the
	// document shows the start of an in-flight transition.
	Animate bool
}

// Render writes the attached nodes of s. Nodes are written with their current values.
func Render(s *ganttscene.Scene, opts *RenderOpts) ([]byte, error) {
	if opts == nil {
		opts = &RenderOpts{}
	}
	buf := &bytes.Buffer{}
	w := int(math.Ceil(s.Width))
	h := int(math.Ceil(s.Height))
	fmt.Fprintf(buf, `<?xml version="1.0" encoding="utf-8"?><svg xmlns="http://www.w3.org/2000/svg" data-gantt-version="%s" width="%d" height="%d" viewBox="0 0 %d %d">`,
		version.Version, w, h, w, h)
	if opts.Background != "" {
		fmt.Fprintf(buf, `<rect class="background" x="0" y="0" width="%d" height="%d" fill="%s"/>`, w, h, attr(opts.Background))
	}
	for _, c := range s.Root.Children {
		if err := writeNode(buf, c, opts); err != nil {
			return nil, err
		}
	}
	buf.WriteString("</svg>")
	return buf.Bytes(), nil
}

func num(v float64) string {
	return ganttscene.FormatNum(math.Round(v*100) / 100)
}

func attr(s string) string {
	return html.EscapeString(s)
}

func writeCommon(buf *bytes.Buffer, n *ganttscene.Node) {
	if n.ID != "" {
		fmt.Fprintf(buf, ` id="%s"`, attr(n.ID))
	}
	if n.Class != "" {
		fmt.Fprintf(buf, ` class="%s"`, attr(n.Class))
	}
	if n.Opacity != 1 {
		fmt.Fprintf(buf, ` opacity="%s"`, num(n.Opacity))
	}
}

func writePaint(buf *bytes.Buffer, n *ganttscene.Node) {
	if n.Fill != "" {
		fmt.Fprintf(buf, ` fill="%s"`, attr(n.Fill))
	}
	if n.Stroke != "" {
		fmt.Fprintf(buf, ` stroke="%s"`, attr(n.Stroke))
	}
	if n.StrokeWidth != 0 {
		fmt.Fprintf(buf, ` stroke-width="%s"`, num(n.StrokeWidth))
	}
}

func writeNode(buf *bytes.Buffer, n *ganttscene.Node, opts *RenderOpts) error {
	anims := ""
	if opts.Animate {
		anims = animations(n)
	}
	switch n.Kind {
	case ganttscene.KindGroup:
		buf.WriteString("<g")
		writeCommon(buf, n)
		if n.TX != 0 || n.TY != 0 {
			fmt.Fprintf(buf, ` transform="translate(%s %s)"`, num(n.TX), num(n.TY))
		}
		buf.WriteString(">")
		buf.WriteString(anims)
		for _, c := range n.Children {
			if err := writeNode(buf, c, opts); err != nil {
				return err
			}
		}
		buf.WriteString("</g>")
	case ganttscene.KindPath:
		if n.D == "" {
			return nil
		}
		fmt.Fprintf(buf, `<path d="%s"`, attr(n.D))
		writeCommon(buf, n)
		writePaint(buf, n)
		closeElement(buf, "path", anims)
	case ganttscene.KindRect:
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s"`, num(n.X), num(n.Y), num(n.Width), num(n.Height))
		writeCommon(buf, n)
		writePaint(buf, n)
		closeElement(buf, "rect", anims)
	case ganttscene.KindLine:
		fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s"`, num(n.X), num(n.Y), num(n.X2), num(n.Y2))
		writeCommon(buf, n)
		writePaint(buf, n)
		closeElement(buf, "line", anims)
	case ganttscene.KindText:
		if n.Text == "" {
			return nil
		}
		fmt.Fprintf(buf, `<text x="%s" y="%s"`, num(n.X), num(n.Y))
		writeCommon(buf, n)
		if n.Anchor != "" && n.Anchor != "start" {
			fmt.Fprintf(buf, ` text-anchor="%s"`, attr(n.Anchor))
		}
		writePaint(buf, n)
		fmt.Fprintf(buf, ">%s%s</text>", anims, svg.EscapeText(n.Text))
	default:
		return fmt.Errorf("cannot render node %q of kind %q", n.ID, n.Kind)
	}
	return nil
}

func closeElement(buf *bytes.Buffer, tag, anims string) {
	if anims == "" {
		buf.WriteString("/>")
		return
	}
	fmt.Fprintf(buf, ">%s</%s>", anims, tag)
}

func svgAttr(kind ganttscene.Kind, a string) string {
	if kind == ganttscene.KindLine {
		switch a {
		case ganttscene.AttrX:
			return "x1"
		case ganttscene.AttrY:
			return "y1"
		}
	}
	return a
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// animations writes the tweens recorded on n. Translation tweens of both axes
// collapse into one animateTransform.
func animations(n *ganttscene.Node) string {
	if len(n.Animations) == 0 {
		return ""
	}
	var sb strings.Builder
	var tx, ty *ganttscene.Animation
	for i := range n.Animations {
		a := &n.Animations[i]
		switch a.Attr {
		case ganttscene.AttrTX:
			tx = a
			continue
		case ganttscene.AttrTY:
			ty = a
			continue
		}
		fmt.Fprintf(&sb, `<animate attributeName="%s" from="%s" to="%s" begin="%s" dur="%s" fill="freeze"/>`,
			svgAttr(n.Kind, a.Attr), attr(a.From), attr(a.To), ms(a.Begin), ms(a.Dur))
	}
	if tx != nil || ty != nil {
		x0, x1 := num(n.TX), num(n.TX)
		y0, y1 := num(n.TY), num(n.TY)
		var timing *ganttscene.Animation
		if tx != nil {
			x0, x1, timing = tx.From, tx.To, tx
		}
		if ty != nil {
			y0, y1, timing = ty.From, ty.To, ty
		}
		fmt.Fprintf(&sb, `<animateTransform attributeName="transform" type="translate" from="%s %s" to="%s %s" begin="%s" dur="%s" fill="freeze"/>`,
			x0, y0, x1, y1, ms(timing.Begin), ms(timing.Dur))
	}
	return sb.String()
}
