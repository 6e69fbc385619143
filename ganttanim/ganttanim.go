// Package ganttanim plays transitions between two layouts.
//
// The Manager is the Animator the layout renderers talk to. In mode none every
// element snaps to its final state. Otherwise each PreAnimate call registers tweens
// with one shared Parallel group and defers its completion callback until the whole
// group ends, after which the viewport is re-rendered from scratch.
package ganttanim

import (
	"context"
	"time"

	"cdr.dev/slog"

	"oss.terrastruct.com/gantt/ganttlayout"
	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/lib/go2"
	"oss.terrastruct.com/gantt/lib/log"
)

type tweenKey struct {
	node *ganttscene.Node
	attr string
}

type Manager struct {
	lm       *ganttlayout.Manager
	mode     ganttlayout.AnimationMode
	duration time.Duration

	group     *Parallel
	tweens    map[tweenKey]*Tween
	triggered bool
}

var _ ganttlayout.Animator = (*Manager)(nil)

// New creates a Manager and installs it as the animator of lm.
func New(lm *ganttlayout.Manager) *Manager {
	a := &Manager{
		lm:       lm,
		duration: lm.Style().AnimationDuration.Duration,
	}
	lm.SetAnimator(a)
	return a
}

func (a *Manager) Mode() ganttlayout.AnimationMode {
	return a.mode
}

func (a *Manager) GetAnimationMode() ganttlayout.AnimationMode {
	return a.mode
}

func (a *Manager) Duration() time.Duration {
	return a.duration
}

// SetMode starts collecting a new transition. A transition still playing is
// finished first, so callers stop it before installing a new layout.
func (a *Manager) SetMode(mode ganttlayout.AnimationMode) {
	a.Stop()
	a.mode = mode
	a.triggered = false
	a.tweens = make(map[tweenKey]*Tween)
	if mode == ganttlayout.AnimationNone {
		a.group = nil
		return
	}
	a.group = NewParallel(a.duration)
}

// Playing reports whether a triggered transition has not ended yet.
func (a *Manager) Playing() bool {
	return a.triggered && a.group != nil && !a.group.Ended()
}

// Group is the transition being collected or played, nil in mode none.
func (a *Manager) Group() *Parallel {
	return a.group
}

// PrepareForAnimations materializes, without animation, every row the transition
// starts from: rows visible in the old viewport and the destination rows of tasks
// leaving them. Rows visible in the new viewport and the origin rows of tasks
// arriving there are flagged so the animate pass draws them too.
func (a *Manager) PrepareForAnimations(s ganttlayout.Scroll) []string {
	lm := a.lm
	prev, next := lm.PrevLayout(), lm.Layout()
	if prev == nil || next == nil {
		return nil
	}
	patch := lm.Patch()
	oldVP := lm.ViewportFor(prev, s)
	newVP := lm.ViewportFor(next, s)

	ids := go2.NewSet[string]()
	for _, r := range rowsIn(prev, oldVP) {
		ids.Add(r.ID)
		for _, t := range r.TaskObjs {
			if patch.Tasks[t.ID] != ganttlayout.StateMigrate {
				continue
			}
			if nt := next.Task(t.ID); nt != nil {
				ids.Add(nt.RowObj.ID)
			}
		}
	}
	for _, r := range rowsIn(next, newVP) {
		ids.Add(r.ID)
		for _, t := range r.TaskObjs {
			if origin, ok := patch.MigrateOrigin[t.ID]; ok {
				ids.Add(origin)
			}
		}
	}

	sorted := go2.SortedKeys(ids)
	lm.EnsureRowsRendered(prev, sorted, oldVP)
	keep := go2.Filter(sorted, func(id string) bool { return next.Row(id) != nil })
	lm.SetAnimationRows(keep)
	return sorted
}

func rowsIn(l *ganttlayout.Layout, vp ganttlayout.Viewport) []*ganttlayout.RowObj {
	lo := go2.Max(vp.MinRowInd, 0)
	hi := go2.Min(vp.MaxRowInd, len(l.Rows)-1)
	if lo > hi {
		return nil
	}
	return l.Rows[lo : hi+1]
}

// TriggerAnimations starts playing what the render pass registered. Once the group
// ends, render states are reset and vp is rendered again with ActionRefresh, then
// onComplete runs. A transition without tweens ends at once.
func (a *Manager) TriggerAnimations(ctx context.Context, vp ganttlayout.Viewport, onComplete func()) *Parallel {
	p := a.group
	if p == nil {
		p = NewParallel(0)
		a.group = p
	}
	a.triggered = true
	mode := a.mode
	p.OnEnd(func() {
		a.mode = ganttlayout.AnimationNone
		a.tweens = nil
		a.lm.ResetRenderStates()
		a.lm.RenderViewport(ctx, vp, ganttlayout.ActionRefresh)
		a.lm.RenderViewportDependencyLines(ctx, vp, ganttlayout.ActionRefresh, nil)
		log.Debug(ctx, "animation ended", slog.F("mode", mode.String()))
		if onComplete != nil {
			onComplete()
		}
	})
	log.Debug(ctx, "animation started", slog.F("mode", mode.String()), slog.F("tweens", p.Len()))
	if p.Len() == 0 {
		p.End()
	}
	return p
}

// Stop jumps a playing transition to its end.
func (a *Manager) Stop() {
	if a.Playing() {
		a.group.Stop()
	}
}

func (a *Manager) immediate() bool {
	return a.mode == ganttlayout.AnimationNone || a.group == nil || a.group.Ended()
}

func (a *Manager) tween(tw *Tween) {
	k := tweenKey{tw.Node, tw.Attr}
	if prev, ok := a.tweens[k]; ok {
		prev.To, prev.ToD = tw.To, tw.ToD
		if prev.isPath() {
			prev.to, prev.smooth = tw.to, prev.smooth && tw.smooth && compatible(prev.from, tw.to)
		}
		return
	}
	a.tweens[k] = tw
	a.group.Add(tw)
}

func done(f ganttlayout.Frame, onEnd func()) {
	f.Apply()
	if onEnd != nil {
		onEnd()
	}
}

// fadeIn places the element at its final geometry and fades it in.
func (a *Manager) fadeIn(g *ganttscene.Node, f ganttlayout.Frame, onEnd func()) {
	if a.immediate() {
		done(f, onEnd)
		return
	}
	f.Apply()
	a.tween(numTween(g, ganttscene.AttrOpacity, 0, 1))
	a.group.OnEnd(onEnd)
}

func (a *Manager) fadeOut(g *ganttscene.Node, onEnd func()) {
	if a.immediate() {
		done(nil, onEnd)
		return
	}
	a.tween(numTween(g, ganttscene.AttrOpacity, g.Opacity, 0))
	a.group.OnEnd(onEnd)
}

// morph tweens every attribute from its current value to the frame.
func (a *Manager) morph(f ganttlayout.Frame, onEnd func()) {
	if a.immediate() {
		done(f, onEnd)
		return
	}
	for _, c := range f {
		_, pending := a.tweens[tweenKey{c.Node, c.Attr}]
		if c.Attr == ganttscene.AttrD {
			if !pending && (c.Node.D == c.D || c.Node.D == "") {
				c.Apply()
				continue
			}
			a.tween(pathTween(c.Node, c.Node.D, c.D))
			continue
		}
		from := c.Node.Num(c.Attr)
		if !pending && from == c.Num {
			continue
		}
		a.tween(numTween(c.Node, c.Attr, from, c.Num))
	}
	a.group.OnEnd(onEnd)
}

func (a *Manager) PreAnimateRowAdd(n *ganttlayout.RowNode, f ganttlayout.Frame, onEnd func()) {
	a.fadeIn(n.Group, f, onEnd)
}

func (a *Manager) PreAnimateRowExist(n *ganttlayout.RowNode, f ganttlayout.Frame, onEnd func()) {
	a.morph(f, onEnd)
}

func (a *Manager) PreAnimateRowDelete(n *ganttlayout.RowNode, onEnd func()) {
	a.fadeOut(n.Group, onEnd)
}

func (a *Manager) PreAnimateTaskAdd(n *ganttlayout.TaskNode, f ganttlayout.Frame, onEnd func()) {
	a.fadeIn(n.Group, f, onEnd)
}

func (a *Manager) PreAnimateTaskExist(n *ganttlayout.TaskNode, f ganttlayout.Frame, onEnd func()) {
	a.morph(f, onEnd)
}

func (a *Manager) PreAnimateTaskMigrate(n *ganttlayout.TaskNode, f ganttlayout.Frame, onEnd func()) {
	a.morph(f, onEnd)
}

func (a *Manager) PreAnimateTaskDelete(n *ganttlayout.TaskNode, onEnd func()) {
	a.fadeOut(n.Group, onEnd)
}

func (a *Manager) PreAnimateDependencyLine(n *ganttlayout.DependencyNode, state ganttlayout.RenderState, f ganttlayout.Frame, onEnd func()) {
	switch state {
	case ganttlayout.StateAdd:
		a.fadeIn(n.Group, f, onEnd)
	case ganttlayout.StateDelete:
		a.fadeOut(n.Group, onEnd)
	default:
		a.morph(f, onEnd)
	}
}
