package ganttscene

import "strconv"

// Numeric attributes a tween can drive.
const (
	AttrTX      = "tx"
	AttrTY      = "ty"
	AttrX       = "x"
	AttrY       = "y"
	AttrY2      = "y2"
	AttrWidth   = "width"
	AttrHeight  = "height"
	AttrOpacity = "opacity"
	AttrD       = "d"
)

func (n *Node) Num(attr string) float64 {
	switch attr {
	case AttrTX:
		return n.TX
	case AttrTY:
		return n.TY
	case AttrX:
		return n.X
	case AttrY:
		return n.Y
	case AttrY2:
		return n.Y2
	case AttrWidth:
		return n.Width
	case AttrHeight:
		return n.Height
	case AttrOpacity:
		return n.Opacity
	}
	return 0
}

func (n *Node) SetNum(attr string, v float64) {
	switch attr {
	case AttrTX:
		n.TX = v
	case AttrTY:
		n.TY = v
	case AttrX:
		n.X = v
	case AttrY:
		n.Y = v
	case AttrY2:
		n.Y2 = v
	case AttrWidth:
		n.Width = v
	case AttrHeight:
		n.Height = v
	case AttrOpacity:
		n.Opacity = v
	}
}

// FormatNum formats attribute values the way the SVG writer does.
func FormatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
