package ganttlayout

import (
	"math"
	"strings"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttdep"
	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/ganttshape"
	"oss.terrastruct.com/gantt/lib/color"
)

type RowNode struct {
	Group      *ganttscene.Node
	Background *ganttscene.Node
	Gridline   *ganttscene.Node
	Tasks      *ganttscene.Node
	Obj        *RowObj
}

func newRowNode(id string) *RowNode {
	n := &RowNode{
		Group:      ganttscene.NewNode(rowNodeID(id), ganttscene.KindGroup),
		Background: ganttscene.NewNode("", ganttscene.KindRect),
		Gridline:   ganttscene.NewNode("", ganttscene.KindLine),
		Tasks:      ganttscene.NewNode("", ganttscene.KindGroup),
	}
	n.Group.Class = "row"
	n.Background.Class = "row-background"
	n.Gridline.Class = "gridline"
	n.Group.AppendChild(n.Background)
	n.Group.AppendChild(n.Gridline)
	n.Group.AppendChild(n.Tasks)
	return n
}

// partOrder is the paint order of task parts.
var partOrder = []string{
	ganttshape.BASELINE_TYPE,
	ganttshape.MAIN_TYPE,
	ganttshape.OVERTIME_TYPE,
	ganttshape.DOWNTIME_TYPE,
	ganttshape.PROGRESS_TYPE,
	ganttshape.RESIZE_START_TYPE,
	ganttshape.RESIZE_END_TYPE,
	ganttshape.SELECT_TYPE,
}

type TaskNode struct {
	Group *ganttscene.Node
	Label *ganttscene.Node
	Obj   *TaskObj

	parts map[string]*ganttscene.Node

	// Logical geometry of the main shape as last rendered.
	X     float64
	Width float64
}

func newTaskNode(id string) *TaskNode {
	n := &TaskNode{
		Group: ganttscene.NewNode(taskNodeID(id), ganttscene.KindGroup),
		Label: ganttscene.NewNode("", ganttscene.KindText),
		parts: make(map[string]*ganttscene.Node),
	}
	n.Group.Class = "task"
	n.Label.Class = "task-label"
	return n
}

// Part returns the path of a shape type, or nil when the task does not draw it.
func (n *TaskNode) Part(typ string) *ganttscene.Node {
	p := n.parts[typ]
	if p == nil || p.Parent != n.Group {
		return nil
	}
	return p
}

func (n *TaskNode) part(typ string) *ganttscene.Node {
	p, ok := n.parts[typ]
	if !ok {
		p = ganttscene.NewNode("", ganttscene.KindPath)
		p.Class = typ
		n.parts[typ] = p
	}
	return p
}

type DependencyNode struct {
	Group       *ganttscene.Node
	Line        *ganttscene.Node
	StartMarker *ganttscene.Node
	EndMarker   *ganttscene.Node
	Obj         *DependencyObj

	Geometry ganttdep.Line
	Conflict ganttdep.Conflict
}

func newDependencyNode(id string) *DependencyNode {
	n := &DependencyNode{
		Group:       ganttscene.NewNode(depNodeID(id), ganttscene.KindGroup),
		Line:        ganttscene.NewNode("", ganttscene.KindPath),
		StartMarker: ganttscene.NewNode("", ganttscene.KindPath),
		EndMarker:   ganttscene.NewNode("", ganttscene.KindPath),
	}
	n.Group.Class = "dependency"
	n.Line.Class = "dependency-line"
	n.Line.Fill = "none"
	n.Group.AppendChild(n.Line)
	n.Group.AppendChild(n.StartMarker)
	n.Group.AppendChild(n.EndMarker)
	return n
}

func (m *Manager) ensureRowNode(r *RowObj) *RowNode {
	n := m.rowNodes[r.ID]
	if n == nil {
		n = newRowNode(r.ID)
		m.rowNodes[r.ID] = n
		m.fresh.Add(n.Group.ID)
	}
	n.Obj = r
	r.Node = n
	return n
}

// attachRow inserts the row group in index order.
func (m *Manager) attachRow(n *RowNode) {
	if n.Group.Parent == m.rowsGroup {
		return
	}
	i := 0
	for ; i < len(m.rowsGroup.Children); i++ {
		other := m.rowNodeAt(i)
		if other != nil && other.Obj.Index > n.Obj.Index {
			break
		}
	}
	m.rowsGroup.InsertChild(i, n.Group)
}

func (m *Manager) rowNodeAt(i int) *RowNode {
	g := m.rowsGroup.Children[i]
	return m.rowNodes[strings.TrimPrefix(g.ID, "row:")]
}

func (m *Manager) rowFrame(l *Layout, r *RowObj) Frame {
	n := r.Node
	st := m.style
	n.Background.Fill = st.Background
	n.Background.X = 0
	n.Gridline.Stroke = st.GridlineStroke
	n.Gridline.StrokeWidth = st.GridlineWidth
	n.Gridline.X = 0
	n.Gridline.X2 = l.Width
	bottom := r.Height - st.GridlineWidth/2
	return Frame{
		NumChange(n.Group, ganttscene.AttrTY, r.Y),
		NumChange(n.Group, ganttscene.AttrOpacity, 1),
		NumChange(n.Background, ganttscene.AttrWidth, l.Width),
		NumChange(n.Background, ganttscene.AttrHeight, r.Height),
		NumChange(n.Gridline, ganttscene.AttrY, bottom),
		NumChange(n.Gridline, ganttscene.AttrY2, bottom),
	}
}

func (m *Manager) ensureTaskNode(t *TaskObj) *TaskNode {
	n := m.taskNodes[t.ID]
	if n == nil {
		n = newTaskNode(t.ID)
		m.taskNodes[t.ID] = n
		m.fresh.Add(n.Group.ID)
	}
	n.Obj = t
	t.Node = n
	return n
}

func (m *Manager) space(l *Layout) ganttshape.Space {
	return ganttshape.Space{Width: l.Width, RTL: m.rtl()}
}

func (m *Manager) legacy() bool {
	return m.opts == nil || m.opts.Theme != ganttdata.ThemeModern
}

// taskSpan is the logical x and width of a task's main shape.
func (m *Manager) taskSpan(l *Layout, t *TaskObj) (float64, float64) {
	x := l.X(m.axis, t.StartTime)
	if t.Milestone() {
		return x, 0
	}
	return x, l.X(m.axis, t.EndTime) - x
}

func (m *Manager) shape(l *Layout, typ string, x, y, w, h float64, corners ganttshape.Corners) ganttshape.Params {
	return ganttshape.Params{
		Type:        typ,
		X:           x,
		Y:           y,
		Width:       w,
		Height:      h,
		Corners:     corners,
		Thickness:   m.style.SummaryThickness,
		HandleWidth: m.style.ResizeHandleWidth,
		RingOffset:  m.style.RingOffset,
		Legacy:      m.legacy(),
		Precision:   m.precision,
		Space:       m.space(l),
	}
}

// taskFrame lays out every part of t inside its group and returns the final geometry.
func (m *Manager) taskFrame(l *Layout, t *TaskObj) Frame {
	n := t.Node
	st := m.style
	dimmed := m.IsDimmed(t.ID)
	x, w := m.taskSpan(l, t)
	n.X, n.Width = x, w

	f := Frame{NumChange(n.Group, ganttscene.AttrTY, t.Y), NumChange(n.Group, ganttscene.AttrOpacity, 1)}
	var parts []string
	set := func(typ string, p ganttshape.Params, fill string) {
		node := n.part(typ)
		node.Fill = fill
		f = append(f, PathChange(node, ganttshape.PathData(p)))
		parts = append(parts, typ)
	}

	class := "task"
	switch t.Type {
	case ganttdata.TaskMilestone:
		class = "milestone"
	case ganttdata.TaskSummary:
		class = "summary"
	}
	mainFill := m.cache.Fill(class, t.Fill, dimmed)
	main := m.shape(l, ganttshape.MAIN_TYPE, x, 0, w, t.Height, t.Corners())
	main.Summary = t.Type == ganttdata.TaskSummary
	set(ganttshape.MAIN_TYPE, main, mainFill)

	if b := t.Baseline; b != nil {
		bx := l.X(m.axis, b.Start)
		bw := l.X(m.axis, b.End) - bx
		bh := st.BaselineHeight
		if b.Milestone() {
			bw = 0
			bh = 2 * st.BaselineHeight
		}
		p := m.shape(l, ganttshape.BASELINE_TYPE, bx, t.Height+st.BaselineGap, bw, bh, ganttshape.UniformCorners(t.BorderRadius/2))
		set(ganttshape.BASELINE_TYPE, p, m.cache.Fill("baseline", "", dimmed))
	}
	if !t.Milestone() {
		if s := t.Overtime; s != nil && s.End > s.Start {
			ox := l.X(m.axis, s.Start)
			p := m.shape(l, ganttshape.OVERTIME_TYPE, ox, 0, l.X(m.axis, s.End)-ox, t.Height, ganttshape.Corners{})
			set(ganttshape.OVERTIME_TYPE, p, m.cache.Fill("overtime", "", dimmed))
		}
		if s := t.Downtime; s != nil && s.End > s.Start {
			dx := l.X(m.axis, s.Start)
			h := t.Height / 3
			p := m.shape(l, ganttshape.DOWNTIME_TYPE, dx, (t.Height-h)/2, l.X(m.axis, s.End)-dx, h, ganttshape.Corners{})
			set(ganttshape.DOWNTIME_TYPE, p, m.cache.Fill("downtime", "", dimmed))
		}
		if t.Progress >= 0 && w > 0 {
			in := st.ProgressInset
			pw := math.Max(0, w*t.Progress-2*in)
			corners := t.Corners()
			if t.Progress < 1 {
				corners[1], corners[2] = 0, 0
			}
			p := m.shape(l, ganttshape.PROGRESS_TYPE, x+in, in, pw, t.Height-2*in, corners)
			if pw > 0 {
				set(ganttshape.PROGRESS_TYPE, p, m.cache.Fill("progress", "", dimmed))
			}
		}
	}

	if m.selection.Has(t.ID) {
		if !t.Milestone() {
			handle := m.cache.Darker(mainFill)
			set(ganttshape.RESIZE_START_TYPE, m.shape(l, ganttshape.RESIZE_START_TYPE, x, 0, w, t.Height, t.Corners()), handle)
			set(ganttshape.RESIZE_END_TYPE, m.shape(l, ganttshape.RESIZE_END_TYPE, x, 0, w, t.Height, t.Corners()), handle)
		}
		set(ganttshape.SELECT_TYPE, m.shape(l, ganttshape.SELECT_TYPE, x, 0, w, t.Height, t.Corners()), "none")
		n.parts[ganttshape.SELECT_TYPE].Stroke = st.SelectedStroke
		n.parts[ganttshape.SELECT_TYPE].StrokeWidth = 1
	}

	m.arrangeParts(n, parts)
	f = append(f, m.labelFrame(l, t, x, w, mainFill)...)
	return f
}

// arrangeParts keeps only the drawn parts under the group, in paint order.
func (m *Manager) arrangeParts(n *TaskNode, drawn []string) {
	want := make(map[string]bool, len(drawn))
	for _, typ := range drawn {
		want[typ] = true
	}
	n.Group.RemoveChildren()
	for _, typ := range partOrder {
		if want[typ] {
			n.Group.AppendChild(n.parts[typ])
		}
	}
	n.Group.AppendChild(n.Label)
}

// labelFrame places the label after the bar, inside it when the next task or baseline
// milestone leaves no room, and hides it when neither fits.
func (m *Manager) labelFrame(l *Layout, t *TaskObj, x, w float64, fill string) Frame {
	n := t.Node
	st := m.style
	label := n.Label
	label.Text = t.Label
	if t.Label == "" {
		return nil
	}
	textW := m.TextWidth(t.Label)
	end := x + w
	if t.Milestone() {
		end = x + t.Height/2
	}
	lx := end + st.LabelGap
	limit := l.Width
	if next := t.NextAdjacentTaskObj; next != nil {
		limit = math.Min(limit, l.X(m.axis, next.StartTime))
	}
	if next := t.NextBaselineMilestone; next != nil && next.Baseline != nil {
		limit = math.Min(limit, l.X(m.axis, next.Baseline.Start)-st.BaselineHeight)
	}

	anchor := "start"
	label.Fill = st.LabelColor
	switch {
	case lx+textW <= limit:
	case !t.Milestone() && textW+2*st.LabelGap <= w:
		lx = x + st.LabelGap
		label.Fill = color.Contrast(fill)
	default:
		label.Text = ""
		return nil
	}
	if m.rtl() {
		anchor = "end"
	}
	label.Anchor = anchor
	return Frame{
		NumChange(label, ganttscene.AttrX, m.space(l).Left(lx, 0)),
		NumChange(label, ganttscene.AttrY, t.Height/2+st.FontSize/3),
	}
}

// TextWidth estimates the rendered width of s.
func (m *Manager) TextWidth(s string) float64 {
	return float64(len([]rune(s))) * m.style.FontSize * 0.6
}

func (m *Manager) ensureDepNode(d *DependencyObj) *DependencyNode {
	n := m.depNodes[d.ID]
	if n == nil {
		n = newDependencyNode(d.ID)
		m.depNodes[d.ID] = n
		m.fresh.Add(n.Group.ID)
	}
	n.Obj = d
	d.Node = n
	return n
}

func (m *Manager) depFrame(n *DependencyNode, line ganttdep.Line, conflict ganttdep.Conflict) Frame {
	st := m.style
	n.Geometry = line
	n.Conflict = conflict
	startKind, endKind := ganttdep.Markers(conflict)

	n.Line.Stroke = st.DependencyLine
	n.Line.StrokeWidth = 1
	n.StartMarker.Class = startKind
	n.EndMarker.Class = endKind
	for _, mk := range []*ganttscene.Node{n.StartMarker, n.EndMarker} {
		mk.Stroke = st.DependencyLine
		mk.StrokeWidth = 1
		mk.Fill = st.DependencyLine
		if mk.Class == ganttdep.MarkerCircleOpen || mk.Class == ganttdep.MarkerArrowOpen {
			mk.Fill = st.Background
		}
	}
	return Frame{
		NumChange(n.Group, ganttscene.AttrOpacity, 1),
		PathChange(n.Line, line.D),
		PathChange(n.StartMarker, ganttdep.CirclePath(line.Start(), st.DependencyMarkerRadius, m.precision)),
		PathChange(n.EndMarker, ganttdep.ArrowPath(line.Route, st.DependencyArrowSize, m.precision)),
	}
}
