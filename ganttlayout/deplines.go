package ganttlayout

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttdep"
	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/lib/geo"
	"oss.terrastruct.com/gantt/lib/go2"
	"oss.terrastruct.com/gantt/lib/log"
)

// RenderViewportDependencyLines draws the lines vp needs and removes the rest. With a
// target only the lines attached to it are redrawn, as when it is being dragged.
// Tasks and rows a line needs are drawn lazily when the viewport pass skipped them.
func (m *Manager) RenderViewportDependencyLines(ctx context.Context, vp Viewport, action Action, target *TaskObj) []*DependencyObj {
	l := m.layout
	if l == nil {
		return nil
	}

	var deps []*DependencyObj
	if target != nil {
		if l.Task(target.ID) != target {
			return nil
		}
		deps = append(deps, target.PredecessorDepObjs...)
		deps = append(deps, target.SuccessorDepObjs...)
		if m.highlightDeps != nil {
			deps = go2.Filter(deps, func(d *DependencyObj) bool { return m.highlightDeps.Has(d.ID) })
		}
	} else if !vp.Empty() {
		deps = l.index.crossing(vp.MinRowInd, vp.MaxRowInd, vp.ViewStartTime, vp.ViewEndTime)
		if m.highlightDeps != nil {
			deps = go2.Filter(deps, func(d *DependencyObj) bool { return m.highlightDeps.Has(d.ID) })
		}
	}

	needed := go2.NewSet[string]()
	for _, d := range deps {
		needed.Add(d.ID)
		m.EnsureInDOM(d.PredecessorTaskObj, EnsurePresence)
		m.EnsureInDOM(d.SuccessorTaskObj, EnsurePresence)
	}

	conflicts := ganttdep.Conflicts(m.conflictRefs(deps, target))
	for _, d := range deps {
		m.drawDependency(l, d, conflicts[d.ID])
	}

	if target == nil {
		for _, id := range go2.SortedKeys(m.renderedDeps) {
			if needed.Has(id) {
				continue
			}
			n := m.depNodes[id]
			if n == nil {
				continue
			}
			if action == ActionAnimate {
				m.animator.PreAnimateDependencyLine(n, StateDelete, nil, func() {
					n.Group.Remove()
				})
			} else {
				n.Group.Remove()
			}
		}
		if action == ActionAnimate {
			for _, d := range m.deletedDeps {
				n := m.depNodes[d.ID]
				if n == nil || l.Dependency(d.ID) != nil || !n.Group.IsAttached() {
					continue
				}
				m.animator.PreAnimateDependencyLine(n, StateDelete, nil, func() {
					n.Group.Remove()
				})
			}
		} else {
			m.dropLazy(deps)
		}
		m.renderedDeps = needed
	} else {
		for id := range needed {
			m.renderedDeps.Add(id)
		}
	}

	log.Debug(ctx, "rendered dependency lines", slog.F("count", len(deps)), slog.F("action", action.String()))
	return deps
}

// conflictRefs is the line set conflicts are computed over: the drawn lines, which for a
// targeted redraw includes lines already on screen.
func (m *Manager) conflictRefs(deps []*DependencyObj, target *TaskObj) []ganttdep.Ref {
	set := make(map[string]*DependencyObj)
	for _, d := range deps {
		set[d.ID] = d
	}
	if target != nil {
		for id := range m.renderedDeps {
			if d := m.layout.Dependency(id); d != nil {
				set[id] = d
			}
		}
	}
	refs := make([]ganttdep.Ref, 0, len(set))
	for _, id := range go2.SortedKeys(set) {
		d := set[id]
		refs = append(refs, ganttdep.Ref{
			ID:     d.ID,
			PredID: d.PredecessorTaskObj.ID,
			SuccID: d.SuccessorTaskObj.ID,
			Type:   d.Type,
		})
	}
	return refs
}

func (m *Manager) endpoint(l *Layout, t *TaskObj) ganttdep.Endpoint {
	x, w := m.taskSpan(l, t)
	top := t.ContentTop()
	e := ganttdep.Endpoint{Start: x, End: x + w, Top: top, Bottom: top + t.Height}
	if t.Milestone() {
		e.Start, e.End = x-t.Height/2, x+t.Height/2
	}
	return e
}

// Line computes the geometry of d against the current layout.
func (m *Manager) Line(d *DependencyObj) ganttdep.Line {
	return m.line(m.layout, d)
}

func (m *Manager) line(l *Layout, d *DependencyObj) ganttdep.Line {
	st := m.style
	style := ganttdata.LineRectilinear
	if m.opts != nil {
		style = m.opts.DependencyLineStyle
	}
	return ganttdep.Compute(ganttdep.Params{
		Type:            d.Type,
		Pred:            m.endpoint(l, d.PredecessorTaskObj),
		Succ:            m.endpoint(l, d.SuccessorTaskObj),
		Style:           style,
		Flank:           st.DependencyFlank,
		Radius:          st.DependencyCornerRadius,
		GuideGap:        st.DependencyGuideGap,
		ThroughMidpoint: d.RowObjTop == d.RowObjBottom,
		Obstacles:       m.obstacles(l, d),
		Space:           m.space(l),
		Precision:       m.precision,
	})
}

// obstacles are the other tasks between the two connected rows within the line's time span.
func (m *Manager) obstacles(l *Layout, d *DependencyObj) []*geo.Box {
	var boxes []*geo.Box
	start, end := d.OverallStartTime(), d.OverallEndTime()
	for i := d.RowObjTop.Index; i <= d.RowObjBottom.Index && i < len(l.Rows); i++ {
		for _, t := range FindTaskObjsRange(l.Rows[i].TaskObjs, start, end, false, false) {
			if t == d.PredecessorTaskObj || t == d.SuccessorTaskObj {
				continue
			}
			boxes = append(boxes, m.endpoint(l, t).Box())
		}
	}
	return boxes
}

func (m *Manager) drawDependency(l *Layout, d *DependencyObj, c ganttdep.Conflict) {
	n := m.ensureDepNode(d)
	fresh := m.fresh.Has(n.Group.ID) || !n.Group.IsAttached()
	if !n.Group.IsAttached() {
		m.depsGroup.AppendChild(n.Group)
	}
	f := m.depFrame(n, m.line(l, d), c)
	state := d.RenderState
	if fresh {
		state = StateAdd
	}
	m.animator.PreAnimateDependencyLine(n, state, f, nil)
}

// dropLazy detaches lazily drawn tasks and rows no line needs anymore.
func (m *Manager) dropLazy(deps []*DependencyObj) {
	used := go2.NewSet[string]()
	for _, d := range deps {
		used.Add(d.PredecessorTaskObj.ID)
		used.Add(d.SuccessorTaskObj.ID)
	}
	for _, id := range go2.SortedKeys(m.lazyTasks) {
		if used.Has(id) {
			continue
		}
		m.lazyTasks.Delete(id)
		if n := m.taskNodes[id]; n != nil {
			n.Group.Remove()
		}
	}
	for _, id := range go2.SortedKeys(m.lazyRows) {
		n := m.rowNodes[id]
		if n != nil && len(n.Tasks.Children) > 0 {
			continue
		}
		m.lazyRows.Delete(id)
		if n != nil {
			n.Group.Remove()
		}
	}
}

// EnsureInDOM makes sure obj has an attached node. EnsurePresence draws it lazily: it is
// dropped again once no dependency line needs it. Objects that are no longer part of the
// layout are ignored.
func (m *Manager) EnsureInDOM(obj LayoutObject, intent RenderIntent) bool {
	l := m.layout
	if l == nil {
		return false
	}
	switch o := obj.(type) {
	case *TaskObj:
		if l.Task(o.ID) != o {
			return false
		}
		row := o.RowObj
		if _, ok := m.rendered[row.ID]; !ok {
			if row.Node == nil || !row.Node.Group.IsAttached() {
				m.attachBareRow(l, row)
				if intent == EnsurePresence {
					m.lazyRows.Add(row.ID)
				} else {
					m.rendered[row.ID] = go2.NewSet[string]()
				}
			}
		}
		if set := m.rendered[row.ID]; set != nil && set.Has(o.ID) && o.Node != nil && o.Node.Group.IsAttached() {
			return true
		}
		if intent == EnsurePresence {
			if o.Node != nil && o.Node.Group.IsAttached() {
				return true
			}
			m.lazyTasks.Add(o.ID)
		} else {
			m.lazyTasks.Delete(o.ID)
			if set := m.rendered[row.ID]; set != nil {
				set.Add(o.ID)
			}
		}
		m.drawTask(l, o)
		return true
	case *RowObj:
		if l.Row(o.ID) != o {
			return false
		}
		if o.Node != nil && o.Node.Group.IsAttached() {
			return true
		}
		m.attachBareRow(l, o)
		if intent == EnsurePresence {
			m.lazyRows.Add(o.ID)
		} else if _, ok := m.rendered[o.ID]; !ok {
			m.rendered[o.ID] = go2.NewSet[string]()
		}
		return true
	case *DependencyObj:
		if l.Dependency(o.ID) != o {
			return false
		}
		a := m.EnsureInDOM(o.PredecessorTaskObj, intent)
		b := m.EnsureInDOM(o.SuccessorTaskObj, intent)
		return a && b
	}
	return false
}

// attachBareRow draws a row outside the viewport pass. Tasks left in its group from an
// earlier pass are dropped unless they are lazily drawn.
func (m *Manager) attachBareRow(l *Layout, r *RowObj) {
	n := m.drawRow(l, r)
	for _, c := range append([]*ganttscene.Node(nil), n.Tasks.Children...) {
		if !m.lazyTasks.Has(taskIDOf(c)) {
			c.Remove()
		}
	}
}
