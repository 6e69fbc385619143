// Package ganttlayout owns the positioned representation of a chart and keeps
// the scene graph in sync with it.
//
// A Manager turns options into row, task and dependency objects (CalcLayout),
// decides for a viewport and an action which rows and tasks to add, update or
// remove (RenderViewport) and which dependency lines to draw
// (RenderViewportDependencyLines). Every scene mutation goes through an
// Animator so the same render pass works with and without transitions.
package ganttlayout

import (
	"context"
	"sort"

	"cdr.dev/slog"

	"oss.terrastruct.com/gantt/ganttaxis"
	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/ganttstyle"
	"oss.terrastruct.com/gantt/lib/geo"
	"oss.terrastruct.com/gantt/lib/go2"
	"oss.terrastruct.com/gantt/lib/log"
)

type Config struct {
	Scene *ganttscene.Scene
	Style *ganttstyle.Style
	Cache *ganttstyle.Cache
	Axis  ganttaxis.Axis
	// Animator defaults to Immediate.
	Animator Animator
}

type Manager struct {
	scene    *ganttscene.Scene
	style    *ganttstyle.Style
	cache    *ganttstyle.Cache
	axis     ganttaxis.Axis
	animator Animator

	content   *ganttscene.Node
	rowsGroup *ganttscene.Node
	depsGroup *ganttscene.Node

	opts   *ganttdata.Options
	layout *Layout
	prev   *Layout
	patch  Patch

	rowNodes  map[string]*RowNode
	taskNodes map[string]*TaskNode
	depNodes  map[string]*DependencyNode

	deletedRows  []*RowObj
	deletedTasks []*TaskObj
	deletedDeps  []*DependencyObj

	// rendered maps row ids to the tasks drawn for the viewport.
	rendered     map[string]go2.Set[string]
	lazyRows     go2.Set[string]
	lazyTasks    go2.Set[string]
	renderedDeps go2.Set[string]
	animRows     go2.Set[string]
	// fresh holds nodes created during the current pass. They have no previous geometry to tween from.
	fresh go2.Set[string]

	lastVP    Viewport
	precision int

	selection go2.Set[string]
	// dimmed is nil when nothing is dimmed.
	dimmed go2.Set[string]
	// highlightDeps is the traversed line set, nil outside highlightDependencies mode.
	highlightDeps go2.Set[string]
}

func New(cfg Config) *Manager {
	m := &Manager{
		scene:    cfg.Scene,
		style:    cfg.Style,
		cache:    cfg.Cache,
		axis:     cfg.Axis,
		animator: cfg.Animator,
	}
	if m.style == nil {
		m.style = ganttstyle.Default()
	}
	if m.cache == nil {
		m.cache = ganttstyle.NewCache(m.style)
	}
	if m.axis == nil {
		m.axis = ganttaxis.Linear{}
	}
	if m.animator == nil {
		m.animator = Immediate{}
	}
	if m.scene == nil {
		m.scene = ganttscene.NewScene(0, 0)
	}
	m.content = ganttscene.NewNode("content", ganttscene.KindGroup)
	m.rowsGroup = ganttscene.NewNode("rows", ganttscene.KindGroup)
	m.depsGroup = ganttscene.NewNode("deps", ganttscene.KindGroup)
	m.content.AppendChild(m.rowsGroup)
	m.content.AppendChild(m.depsGroup)
	m.scene.Root.AppendChild(m.content)
	m.Reset()
	return m
}

// Reset forgets every layout and clears the content from the scene.
func (m *Manager) Reset() {
	m.rowsGroup.RemoveChildren()
	m.depsGroup.RemoveChildren()
	m.layout = nil
	m.prev = nil
	m.patch = Patch{}
	m.rowNodes = make(map[string]*RowNode)
	m.taskNodes = make(map[string]*TaskNode)
	m.depNodes = make(map[string]*DependencyNode)
	m.deletedRows = nil
	m.deletedTasks = nil
	m.deletedDeps = nil
	m.resetRendered()
	m.animRows = go2.NewSet[string]()
	m.lastVP = EmptyViewport
	m.selection = go2.NewSet[string]()
	m.dimmed = nil
	m.highlightDeps = nil
}

func (m *Manager) resetRendered() {
	m.rendered = make(map[string]go2.Set[string])
	m.lazyRows = go2.NewSet[string]()
	m.lazyTasks = go2.NewSet[string]()
	m.renderedDeps = go2.NewSet[string]()
	m.fresh = go2.NewSet[string]()
}

func (m *Manager) Scene() *ganttscene.Scene { return m.scene }

// Content is the group translated by the scroll position.
func (m *Manager) Content() *ganttscene.Node { return m.content }

func (m *Manager) Style() *ganttstyle.Style { return m.style }

func (m *Manager) Axis() ganttaxis.Axis { return m.axis }

func (m *Manager) Animator() Animator { return m.animator }

func (m *Manager) SetAnimator(a Animator) {
	if a == nil {
		a = Immediate{}
	}
	m.animator = a
}

func (m *Manager) Layout() *Layout { return m.layout }

// PrevLayout is the layout replaced by the last CalcLayout, Expand or Collapse.
func (m *Manager) PrevLayout() *Layout { return m.prev }

// Patch is the id diff between PrevLayout and Layout.
func (m *Manager) Patch() Patch { return m.patch }

func (m *Manager) LastViewport() Viewport { return m.lastVP }

func (m *Manager) Precision() int { return m.precision }

func (m *Manager) Options() *ganttdata.Options { return m.opts }

// CalcLayout computes the layout for opts from scratch. When a layout already exists
// its scene nodes are carried over to objects with the same id.
func (m *Manager) CalcLayout(ctx context.Context, opts *ganttdata.Options, width float64) {
	m.opts = opts
	next := buildLayout(ctx, opts, m.style, width)
	m.install(ctx, m.layout, next)
}

// Expand shows the children of row id without recomputing other rows.
func (m *Manager) Expand(ctx context.Context, id string) bool {
	row := m.layout.Row(id)
	if row == nil || !row.Expandable || row.Expanded {
		return false
	}
	m.opts.Expanded.Add(id)
	prev := m.layout.copyRows()
	m.layout.expand(ctx, m.style, row)
	m.install(ctx, prev, m.layout)
	return true
}

// Collapse hides the descendants of row id.
func (m *Manager) Collapse(ctx context.Context, id string) bool {
	row := m.layout.Row(id)
	if row == nil || !row.Expanded {
		return false
	}
	m.opts.Expanded.Delete(id)
	prev := m.layout.copyRows()
	m.layout.collapse(ctx, row)
	m.install(ctx, prev, m.layout)
	return true
}

// SetWidth changes the logical content width, as zooming does.
func (m *Manager) SetWidth(w float64) {
	if m.layout != nil {
		m.layout.Width = w
	}
}

func (m *Manager) install(ctx context.Context, prev, next *Layout) {
	m.prev = prev
	m.layout = next
	m.patch = DiffLayouts(prev.Snapshot(), next.Snapshot())

	for _, r := range next.Rows {
		r.RenderState = m.patch.Rows[r.ID]
		if n := m.rowNodes[r.ID]; n != nil {
			r.Node = n
			n.Obj = r
		}
		for _, t := range r.TaskObjs {
			t.RenderState = m.patch.Tasks[t.ID]
			if n := m.taskNodes[t.ID]; n != nil {
				t.Node = n
				n.Obj = t
			}
		}
	}
	for _, d := range next.Deps {
		d.RenderState = m.patch.Deps[d.ID]
		if n := m.depNodes[d.ID]; n != nil {
			d.Node = n
			n.Obj = d
		}
	}

	for _, id := range m.patch.RowsDeleted {
		if r := prev.Row(id); r != nil {
			r.RenderState = StateDelete
			m.deletedRows = append(m.deletedRows, r)
		}
	}
	for _, id := range m.patch.TasksDeleted {
		if t := prev.Task(id); t != nil {
			t.RenderState = StateDelete
			m.deletedTasks = append(m.deletedTasks, t)
		}
	}
	for _, id := range m.patch.DepsDeleted {
		if d := prev.Dependency(id); d != nil {
			d.RenderState = StateDelete
			m.deletedDeps = append(m.deletedDeps, d)
		}
	}
	if m.highlighting() {
		m.applyHighlight()
	}
	log.Debug(ctx, "calculated layout",
		slog.F("rows", len(next.Rows)),
		slog.F("tasks", len(next.Tasks)),
		slog.F("dependencies", len(next.Deps)),
		slog.F("deleted_rows", len(m.patch.RowsDeleted)),
		slog.F("deleted_tasks", len(m.patch.TasksDeleted)),
	)
}

// ResetRenderStates marks every object as existing and forgets deleted objects.
// It is called once the scene matches the layout.
func (m *Manager) ResetRenderStates() {
	if m.layout == nil {
		return
	}
	for _, r := range m.layout.Rows {
		r.RenderState = StateExist
		for _, t := range r.TaskObjs {
			t.RenderState = StateExist
		}
	}
	for _, d := range m.layout.Deps {
		d.RenderState = StateExist
	}
	m.pruneDeleted()
	m.animRows = go2.NewSet[string]()
	m.patch = DiffLayouts(m.layout.Snapshot(), m.layout.Snapshot())
}

// pruneDeleted drops nodes whose objects left the layout.
func (m *Manager) pruneDeleted() {
	for _, r := range m.deletedRows {
		if m.layout.Row(r.ID) == nil {
			if n := m.rowNodes[r.ID]; n != nil {
				n.Group.Remove()
				delete(m.rowNodes, r.ID)
			}
			delete(m.rendered, r.ID)
			m.lazyRows.Delete(r.ID)
		}
		r.Node = nil
	}
	for _, t := range m.deletedTasks {
		if m.layout.Task(t.ID) == nil {
			if n := m.taskNodes[t.ID]; n != nil {
				n.Group.Remove()
				delete(m.taskNodes, t.ID)
			}
			m.lazyTasks.Delete(t.ID)
		}
		t.Node = nil
	}
	for _, d := range m.deletedDeps {
		if m.layout.Dependency(d.ID) == nil {
			if n := m.depNodes[d.ID]; n != nil {
				n.Group.Remove()
				delete(m.depNodes, d.ID)
			}
			m.renderedDeps.Delete(d.ID)
		}
		d.Node = nil
	}
	m.deletedRows = nil
	m.deletedTasks = nil
	m.deletedDeps = nil
}

func (m *Manager) GetRowObjs() []*RowObj {
	if m.layout == nil {
		return []*RowObj{}
	}
	return m.layout.Rows
}

func (m *Manager) GetDependencyObjs() []*DependencyObj {
	if m.layout == nil {
		return []*DependencyObj{}
	}
	return m.layout.Deps
}

func (m *Manager) GetContentHeight() float64 {
	return m.layout.ContentHeight()
}

// Scroll is a physical scroll position and viewport size in pixels.
type Scroll struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// ViewportFor converts a scroll position over l into a viewport.
func (m *Manager) ViewportFor(l *Layout, s Scroll) Viewport {
	if l == nil || len(l.Rows) == 0 {
		return EmptyViewport
	}
	minRow, maxRow, ok := FindRowIndRange(l.Rows, s.Top, s.Top+s.Height)
	if !ok {
		minRow, maxRow = 0, -1
	}
	x0, x1 := s.Left, s.Left+s.Width
	if m.opts != nil && m.opts.Direction == ganttdata.RTL {
		x0, x1 = l.Width-x1, l.Width-x0
	}
	return Viewport{
		MinRowInd:     minRow,
		MaxRowInd:     maxRow,
		ViewStartTime: l.Time(m.axis, x0),
		ViewEndTime:   l.Time(m.axis, x1),
	}
}

// Objects is the result of a bounding box query.
type Objects struct {
	Rows  []*RowObj
	Tasks []*TaskObj
}

// GetLayoutObjectsInBBox returns rows and tasks intersecting the physical content box.
func (m *Manager) GetLayoutObjectsInBBox(box *geo.Box) Objects {
	var out Objects
	l := m.layout
	if l == nil {
		return out
	}
	minRow, maxRow, ok := FindRowIndRange(l.Rows, box.Top(), box.Bottom())
	if !ok {
		return out
	}
	x0, x1 := box.Left(), box.Right()
	if m.rtl() {
		x0, x1 = l.Width-x1, l.Width-x0
	}
	start, end := l.Time(m.axis, x0), l.Time(m.axis, x1)
	for _, r := range l.Rows[minRow : maxRow+1] {
		out.Rows = append(out.Rows, r)
		for _, t := range FindTaskObjsRange(r.TaskObjs, start, end, true, true) {
			top := t.ContentTop()
			if geo.IntervalsOverlap(top, top+t.Height, box.Top(), box.Bottom()) {
				out.Tasks = append(out.Tasks, t)
			}
		}
	}
	return out
}

func (m *Manager) rtl() bool {
	return m.opts != nil && m.opts.Direction == ganttdata.RTL
}

// SetSelection marks tasks as selected. Selected tasks get a ring and resize handles.
func (m *Manager) SetSelection(ids []string) {
	m.selection = go2.NewSet(ids...)
	if m.highlighting() {
		m.applyHighlight()
	}
}

func (m *Manager) highlighting() bool {
	return m.opts != nil && m.opts.SelectionBehavior == ganttdata.SelectionHighlightDependencies
}

func (m *Manager) Selection() []string {
	ids := go2.SortedKeys(m.selection)
	return ids
}

// HighlightTasks dims every task outside ids. A nil set clears dimming.
func (m *Manager) HighlightTasks(ids go2.Set[string]) {
	if ids == nil {
		m.dimmed = nil
		return
	}
	m.dimmed = go2.NewSet[string]()
	if m.layout == nil {
		return
	}
	for id := range m.layout.Tasks {
		if !ids.Has(id) {
			m.dimmed.Add(id)
		}
	}
}

// applyHighlight walks the dependency graph both ways from the selection.
// Tasks not reached are dimmed and only traversed lines are drawn.
func (m *Manager) applyHighlight() {
	if m.layout == nil || !m.highlighting() {
		m.dimmed, m.highlightDeps = nil, nil
		return
	}
	if m.selection.Len() == 0 {
		m.dimmed, m.highlightDeps = nil, go2.NewSet[string]()
		return
	}
	tasks, deps := m.traverse(m.selection)
	m.HighlightTasks(tasks)
	m.highlightDeps = deps
}

func (m *Manager) traverse(from go2.Set[string]) (go2.Set[string], go2.Set[string]) {
	tasks := go2.NewSet[string]()
	deps := go2.NewSet[string]()
	var up, down []*TaskObj
	for _, id := range go2.SortedKeys(from) {
		if t := m.layout.Task(id); t != nil {
			tasks.Add(id)
			up = append(up, t)
			down = append(down, t)
		}
	}
	upSeen := go2.NewSet[string]()
	for len(up) > 0 {
		t := up[0]
		up = up[1:]
		if upSeen.Has(t.ID) {
			continue
		}
		upSeen.Add(t.ID)
		for _, d := range t.PredecessorDepObjs {
			deps.Add(d.ID)
			tasks.Add(d.PredecessorTaskObj.ID)
			up = append(up, d.PredecessorTaskObj)
		}
	}
	downSeen := go2.NewSet[string]()
	for len(down) > 0 {
		t := down[0]
		down = down[1:]
		if downSeen.Has(t.ID) {
			continue
		}
		downSeen.Add(t.ID)
		for _, d := range t.SuccessorDepObjs {
			deps.Add(d.ID)
			tasks.Add(d.SuccessorTaskObj.ID)
			down = append(down, d.SuccessorTaskObj)
		}
	}
	return tasks, deps
}

// SetAnimationRows flags rows that the next animate render must include.
func (m *Manager) SetAnimationRows(ids []string) {
	m.animRows = go2.NewSet(ids...)
}

// IsDimmed reports whether task id is drawn dimmed.
func (m *Manager) IsDimmed(id string) bool {
	return m.dimmed != nil && m.dimmed.Has(id)
}

// RenderedTaskIDs lists the ids of tasks drawn for the viewport, plus lazily drawn ones.
func (m *Manager) RenderedTaskIDs() []string {
	var ids []string
	for id, n := range m.taskNodes {
		if n.Group.IsAttached() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// RenderedRowIDs lists the ids of rows attached to the scene.
func (m *Manager) RenderedRowIDs() []string {
	var ids []string
	for id, n := range m.rowNodes {
		if n.Group.IsAttached() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// RenderedDependencyIDs lists the ids of dependency lines attached to the scene.
func (m *Manager) RenderedDependencyIDs() []string {
	var ids []string
	for id, n := range m.depNodes {
		if n.Group.IsAttached() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
