package ganttlayout

import (
	"oss.terrastruct.com/gantt/ganttscene"
)

type AnimationMode int

const (
	AnimationNone AnimationMode = iota
	AnimationOnDisplay
	AnimationDataChange
)

func (m AnimationMode) String() string {
	switch m {
	case AnimationOnDisplay:
		return "onDisplay"
	case AnimationDataChange:
		return "dataChange"
	default:
		return "none"
	}
}

// Change is the final value of one attribute. D is used for AttrD, Num otherwise.
type Change struct {
	Node *ganttscene.Node
	Attr string
	Num  float64
	D    string
}

func NumChange(n *ganttscene.Node, attr string, v float64) Change {
	return Change{Node: n, Attr: attr, Num: v}
}

func PathChange(n *ganttscene.Node, d string) Change {
	return Change{Node: n, Attr: ganttscene.AttrD, D: d}
}

// Frame is the final geometry of an element.
type Frame []Change

func (f Frame) Apply() {
	for _, c := range f {
		c.Apply()
	}
}

func (c Change) Apply() {
	if c.Attr == ganttscene.AttrD {
		c.Node.D = c.D
		return
	}
	c.Node.SetNum(c.Attr, c.Num)
}

// Animator receives every element the renderers touch. Implementations either apply
// the frame and call onEnd at once, or tween towards the frame and call onEnd after the
// whole transition ends.
type Animator interface {
	Mode() AnimationMode

	PreAnimateRowAdd(n *RowNode, f Frame, onEnd func())
	PreAnimateRowExist(n *RowNode, f Frame, onEnd func())
	PreAnimateRowDelete(n *RowNode, onEnd func())

	PreAnimateTaskAdd(n *TaskNode, f Frame, onEnd func())
	PreAnimateTaskExist(n *TaskNode, f Frame, onEnd func())
	// PreAnimateTaskMigrate is called after n has been moved under its new row.
	PreAnimateTaskMigrate(n *TaskNode, f Frame, onEnd func())
	PreAnimateTaskDelete(n *TaskNode, onEnd func())

	PreAnimateDependencyLine(n *DependencyNode, state RenderState, f Frame, onEnd func())
}

// Immediate snaps every element to its final state.
type Immediate struct{}

var _ Animator = Immediate{}

func finish(f Frame, onEnd func()) {
	f.Apply()
	if onEnd != nil {
		onEnd()
	}
}

func (Immediate) Mode() AnimationMode { return AnimationNone }

func (Immediate) PreAnimateRowAdd(_ *RowNode, f Frame, onEnd func())   { finish(f, onEnd) }
func (Immediate) PreAnimateRowExist(_ *RowNode, f Frame, onEnd func()) { finish(f, onEnd) }
func (Immediate) PreAnimateRowDelete(_ *RowNode, onEnd func())         { finish(nil, onEnd) }

func (Immediate) PreAnimateTaskAdd(_ *TaskNode, f Frame, onEnd func())     { finish(f, onEnd) }
func (Immediate) PreAnimateTaskExist(_ *TaskNode, f Frame, onEnd func())   { finish(f, onEnd) }
func (Immediate) PreAnimateTaskMigrate(_ *TaskNode, f Frame, onEnd func()) { finish(f, onEnd) }
func (Immediate) PreAnimateTaskDelete(_ *TaskNode, onEnd func())           { finish(nil, onEnd) }

func (Immediate) PreAnimateDependencyLine(_ *DependencyNode, _ RenderState, f Frame, onEnd func()) {
	finish(f, onEnd)
}
