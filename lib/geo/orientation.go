package geo

type Orientation int

const (
	TopLeft Orientation = iota
	TopRight
	BottomLeft
	BottomRight

	Top
	Right
	Bottom
	Left

	NONE
)

func (o Orientation) ToString() string {
	switch o {
	case TopLeft:
		return "TopLeft"
	case TopRight:
		return "TopRight"
	case BottomLeft:
		return "BottomLeft"
	case BottomRight:
		return "BottomRight"

	case Top:
		return "Top"
	case Right:
		return "Right"
	case Bottom:
		return "Bottom"
	case Left:
		return "Left"
	default:
		return ""
	}
}
