package ganttlayout

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/lib/go2"
	"oss.terrastruct.com/gantt/lib/log"
)

// RenderViewport brings the rows and tasks in the scene in line with vp.
func (m *Manager) RenderViewport(ctx context.Context, vp Viewport, action Action) RenderOperations {
	if m.layout == nil {
		return RenderOperations{}
	}
	m.fresh = go2.NewSet[string]()
	m.prepareViewport(action)
	ops := m.computeViewportRenderOperations(vp, action)
	m.precision = m.style.Precision(m.onScreenCount(vp))
	m.executeViewportRenderOperations(ops, action)
	m.lastVP = vp

	log.Debug(ctx, "rendered viewport",
		slog.F("action", action.String()),
		slog.F("rows_delete", len(ops.RowsDelete)),
		slog.F("rows_add", len(ops.RowsAdd)),
		slog.F("rows_update", len(ops.RowsUpdate)),
		slog.F("precision", m.precision),
	)
	return ops
}

// prepareViewport detaches everything on refresh. Other actions leave the scene alone
// and let the diff decide what to touch.
func (m *Manager) prepareViewport(action Action) {
	if action != ActionRefresh {
		return
	}
	for _, n := range m.rowNodes {
		n.Tasks.RemoveChildren()
		n.Group.Remove()
	}
	for _, n := range m.depNodes {
		n.Group.Remove()
	}
	m.resetRendered()
	m.pruneDeleted()
}

func (m *Manager) onScreenCount(vp Viewport) int {
	count := 0
	m.eachViewportRow(vp, func(r *RowObj) {
		count += len(FindTaskObjsRange(r.TaskObjs, vp.ViewStartTime, vp.ViewEndTime, true, true))
	})
	return count
}

func (m *Manager) eachViewportRow(vp Viewport, fn func(*RowObj)) {
	rows := m.layout.Rows
	for i := go2.Max(vp.MinRowInd, 0); i <= vp.MaxRowInd && i < len(rows); i++ {
		fn(rows[i])
	}
}

func (m *Manager) computeViewportRenderOperations(vp Viewport, action Action) RenderOperations {
	var ops RenderOperations
	switch action {
	case ActionRefresh:
		m.eachViewportRow(vp, func(r *RowObj) {
			ops.RowsAdd = append(ops.RowsAdd, RowOp{RowObj: r, TasksAdd: viewportTasks(r, vp), Intent: FullRender})
		})
	case ActionAnimate:
		seen := go2.NewSet[string]()
		m.eachViewportRow(vp, func(r *RowObj) {
			seen.Add(r.ID)
			ops.RowsAdd = append(ops.RowsAdd, RowOp{RowObj: r, TasksAdd: viewportTasks(r, vp), Intent: FullRender})
		})
		for _, id := range go2.SortedKeys(m.animRows) {
			r := m.layout.Row(id)
			if r == nil || seen.Has(id) {
				continue
			}
			ops.RowsAdd = append(ops.RowsAdd, RowOp{RowObj: r, TasksAdd: viewportTasks(r, vp), Intent: FullRender})
		}
	default:
		m.computeDelta(vp, action, &ops)
	}
	return ops
}

// computeDelta diffs what is drawn against what vp needs, row by row.
func (m *Manager) computeDelta(vp Viewport, action Action, ops *RenderOperations) {
	inView := go2.NewSet[string]()
	m.eachViewportRow(vp, func(r *RowObj) {
		inView.Add(r.ID)
	})
	for _, id := range go2.SortedKeys(m.rendered) {
		if inView.Has(id) {
			continue
		}
		if r := m.layout.Row(id); r != nil {
			ops.RowsDelete = append(ops.RowsDelete, r)
		}
	}

	m.eachViewportRow(vp, func(r *RowObj) {
		want := viewportTasks(r, vp)
		had, ok := m.rendered[r.ID]
		if !ok {
			ops.RowsAdd = append(ops.RowsAdd, RowOp{RowObj: r, TasksAdd: want, Intent: FullRender})
			return
		}
		op := RowOp{RowObj: r, Intent: Reposition}
		if action == ActionScale {
			op.Intent = FullRender
		}
		wantIDs := go2.NewSet[string]()
		for _, t := range want {
			wantIDs.Add(t.ID)
			if had.Has(t.ID) {
				op.TasksUpdate = append(op.TasksUpdate, t)
			} else {
				op.TasksAdd = append(op.TasksAdd, t)
			}
		}
		for _, t := range r.TaskObjs {
			if had.Has(t.ID) && !wantIDs.Has(t.ID) {
				op.TasksDelete = append(op.TasksDelete, t)
			}
		}
		ops.RowsUpdate = append(ops.RowsUpdate, op)
	})
}

func (m *Manager) executeViewportRenderOperations(ops RenderOperations, action Action) {
	for _, r := range ops.RowsDelete {
		m.detachRow(r)
	}
	for _, op := range ops.RowsAdd {
		m.renderRowAdd(op, action)
	}
	for _, op := range ops.RowsUpdate {
		m.renderRowUpdate(op)
	}
	if action == ActionScale {
		m.redrawLazy()
	}
	if action == ActionAnimate {
		m.animateDeleted()
	}
}

// redrawLazy updates the geometry of the rows and tasks drawn only for dependency lines.
// The viewport diff does not cover them.
func (m *Manager) redrawLazy() {
	for _, id := range go2.SortedKeys(m.lazyRows) {
		if r := m.layout.Row(id); r != nil && r.Node != nil && r.Node.Group.IsAttached() {
			m.drawRow(m.layout, r)
		}
	}
	for _, id := range go2.SortedKeys(m.lazyTasks) {
		if t := m.layout.Task(id); t != nil && t.Node != nil && t.Node.Group.IsAttached() {
			m.drawTask(m.layout, t)
		}
	}
}

func (m *Manager) detachRow(r *RowObj) {
	delete(m.rendered, r.ID)
	m.lazyRows.Delete(r.ID)
	n := m.rowNodes[r.ID]
	if n == nil {
		return
	}
	for _, c := range n.Tasks.Children {
		m.lazyTasks.Delete(taskIDOf(c))
	}
	m.animator.PreAnimateRowDelete(n, func() {
		n.Group.Remove()
	})
}

func taskIDOf(n *ganttscene.Node) string {
	if len(n.ID) > len("task:") {
		return n.ID[len("task:"):]
	}
	return ""
}

func (m *Manager) renderRowAdd(op RowOp, action Action) {
	r := op.RowObj
	m.lazyRows.Delete(r.ID)
	n := m.drawRow(m.layout, r)

	had := m.rendered[r.ID]
	keep := go2.NewSet[string]()
	for _, t := range op.TasksAdd {
		keep.Add(t.ID)
	}
	if action != ActionAnimate {
		// a re-added row only shows the tasks the viewport asks for
		for _, c := range append([]*ganttscene.Node(nil), n.Tasks.Children...) {
			id := taskIDOf(c)
			if !keep.Has(id) && !m.lazyTasks.Has(id) {
				c.Remove()
			}
		}
	}
	set := go2.NewSet[string]()
	if action == ActionAnimate && had != nil {
		set = had.Clone()
	}
	for _, t := range op.TasksAdd {
		m.lazyTasks.Delete(t.ID)
		m.drawTask(m.layout, t)
		set.Add(t.ID)
	}
	m.rendered[r.ID] = set
}

func (m *Manager) renderRowUpdate(op RowOp) {
	r := op.RowObj
	set := m.rendered[r.ID]
	if set == nil {
		set = go2.NewSet[string]()
		m.rendered[r.ID] = set
	}
	if op.UpdateRender() {
		m.drawRow(m.layout, r)
	}
	for _, t := range op.TasksDelete {
		set.Delete(t.ID)
		if m.lazyTasks.Has(t.ID) {
			continue
		}
		if n := t.Node; n != nil {
			m.animator.PreAnimateTaskDelete(n, func() {
				n.Group.Remove()
			})
		}
	}
	for _, t := range op.TasksAdd {
		m.lazyTasks.Delete(t.ID)
		m.drawTask(m.layout, t)
		set.Add(t.ID)
	}
	for _, t := range op.TasksUpdate {
		if op.UpdateRender() || t.Node == nil || !t.Node.Group.IsAttached() {
			m.drawTask(m.layout, t)
		}
	}
}

// drawRow creates or updates the row node of r and attaches it.
func (m *Manager) drawRow(l *Layout, r *RowObj) *RowNode {
	n := m.ensureRowNode(r)
	fresh := m.fresh.Has(n.Group.ID) || !n.Group.IsAttached()
	m.attachRow(n)
	f := m.rowFrame(l, r)
	switch {
	case fresh || r.RenderState == StateAdd:
		m.animator.PreAnimateRowAdd(n, f, nil)
	default:
		m.animator.PreAnimateRowExist(n, f, nil)
	}
	return n
}

// drawTask renders t under its row, moving the node first when it changed rows.
func (m *Manager) drawTask(l *Layout, t *TaskObj) *TaskNode {
	n := m.ensureTaskNode(t)
	rowNode := t.RowObj.Node
	if rowNode == nil {
		rowNode = m.drawRow(l, t.RowObj)
	}
	fresh := m.fresh.Has(n.Group.ID) || !n.Group.IsAttached()
	migrated := false
	if n.Group.Parent != rowNode.Tasks {
		if !fresh {
			// keep the absolute position so the move can be tweened
			from := n.Group.Parent
			ty := n.Group.TY
			if from != nil && from.Parent != nil {
				ty += from.Parent.TY
			}
			n.Group.TY = ty - rowNode.Group.TY
			migrated = true
		}
		m.appendTask(rowNode, n)
	}
	f := m.taskFrame(l, t)
	switch {
	case fresh || t.RenderState == StateAdd:
		m.animator.PreAnimateTaskAdd(n, f, nil)
	case migrated || t.RenderState == StateMigrate:
		m.animator.PreAnimateTaskMigrate(n, f, nil)
	default:
		m.animator.PreAnimateTaskExist(n, f, nil)
	}
	return n
}

// appendTask keeps overlay tasks above the others.
func (m *Manager) appendTask(rowNode *RowNode, n *TaskNode) {
	order := rowNode.Obj.RenderOrder()
	pos := make(map[string]int, len(order))
	for i, t := range order {
		pos[t.ID] = i
	}
	mine, ok := pos[n.Obj.ID]
	if !ok {
		rowNode.Tasks.AppendChild(n.Group)
		return
	}
	i := 0
	for ; i < len(rowNode.Tasks.Children); i++ {
		p, ok := pos[taskIDOf(rowNode.Tasks.Children[i])]
		if ok && p > mine {
			break
		}
	}
	rowNode.Tasks.InsertChild(i, n.Group)
}

// animateDeleted fades out deleted objects that are still on screen.
func (m *Manager) animateDeleted() {
	for _, t := range m.deletedTasks {
		n := m.taskNodes[t.ID]
		if n == nil || m.layout.Task(t.ID) != nil || !n.Group.IsAttached() {
			continue
		}
		m.animator.PreAnimateTaskDelete(n, func() {
			n.Group.Remove()
		})
	}
	for _, r := range m.deletedRows {
		n := m.rowNodes[r.ID]
		if n == nil || m.layout.Row(r.ID) != nil || !n.Group.IsAttached() {
			continue
		}
		m.animator.PreAnimateRowDelete(n, func() {
			n.Group.Remove()
		})
	}
}

// EnsureRowsRendered draws rows of l that are not attached yet, without animation, with
// the tasks vp shows. It is used to materialize the initial state of a transition.
func (m *Manager) EnsureRowsRendered(l *Layout, ids []string, vp Viewport) {
	if l == nil {
		return
	}
	saved := m.animator
	m.animator = Immediate{}
	defer func() { m.animator = saved }()

	for _, id := range ids {
		r := l.Row(id)
		if r == nil {
			continue
		}
		if n := m.rowNodes[id]; n != nil && n.Group.IsAttached() {
			continue
		}
		m.drawRow(l, r)
		set := go2.NewSet[string]()
		for _, t := range viewportTasks(r, vp) {
			if t.RowObj.ID != r.ID {
				continue
			}
			m.drawTaskIn(l, r, t)
			set.Add(t.ID)
		}
		if _, ok := m.rendered[id]; !ok {
			m.rendered[id] = set
		}
	}
}

// drawTaskIn renders t under row r of l even if t now belongs to another row.
func (m *Manager) drawTaskIn(l *Layout, r *RowObj, t *TaskObj) {
	n := m.ensureTaskNode(t)
	if n.Group.Parent != r.Node.Tasks {
		r.Node.Tasks.AppendChild(n.Group)
	}
	m.taskFrame(l, t).Apply()
}
