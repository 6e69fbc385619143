package ganttlayout

import (
	"oss.terrastruct.com/gantt/ganttdata"
)

type RenderState int

const (
	StateAdd RenderState = iota
	StateExist
	StateMigrate
	StateDelete
)

func (s RenderState) String() string {
	switch s {
	case StateAdd:
		return "add"
	case StateExist:
		return "exist"
	case StateMigrate:
		return "migrate"
	case StateDelete:
		return "delete"
	}
	return "unknown"
}

type Aggregation int

const (
	AggregationNone Aggregation = iota
	AggregationStart
	AggregationMiddle
	AggregationEnd
	AggregationSolo
)

func (a Aggregation) String() string {
	switch a {
	case AggregationStart:
		return "stackStart"
	case AggregationMiddle:
		return "stackMiddle"
	case AggregationEnd:
		return "stackEnd"
	case AggregationSolo:
		return "stackSolo"
	}
	return ""
}

// TimeSpan is a resolved secondary span in epoch milliseconds.
type TimeSpan struct {
	Start int64
	End   int64
}

func (s TimeSpan) Milestone() bool {
	return s.Start == s.End
}

type RowObj struct {
	ID    string
	Label string
	Index int
	// Y is the top offset in content coordinates.
	Y      float64
	Height float64
	// Levels is the number of stacking levels in use.
	Levels int

	Depth      int
	Expandable bool
	Expanded   bool
	Parent     *RowObj

	// TaskObjs are sorted by StartTime.
	TaskObjs []*TaskObj

	RenderState RenderState
	Node        *RowNode

	raw *ganttdata.Row
}

func (r *RowObj) layoutID() string { return rowNodeID(r.ID) }

// Bottom is the content y of the row's lower edge.
func (r *RowObj) Bottom() float64 {
	return r.Y + r.Height
}

// RenderOrder lists normal tasks first and overlay tasks last so overlays draw on top.
func (r *RowObj) RenderOrder() []*TaskObj {
	out := make([]*TaskObj, 0, len(r.TaskObjs))
	for _, t := range r.TaskObjs {
		if t.OverlapBehavior != ganttdata.OverlapOverlay {
			out = append(out, t)
		}
	}
	for _, t := range r.TaskObjs {
		if t.OverlapBehavior == ganttdata.OverlapOverlay {
			out = append(out, t)
		}
	}
	return out
}

type TaskObj struct {
	ID    string
	Label string
	Type  ganttdata.TaskType

	StartTime int64
	EndTime   int64
	// Overall times cover baseline, overtime and downtime and drive overlap tests.
	OverallStartTime int64
	OverallEndTime   int64

	Baseline *TimeSpan
	Overtime *TimeSpan
	Downtime *TimeSpan
	// Progress is the completed fraction, negative when unset.
	Progress float64

	// Y is the offset within the row.
	Y      float64
	Height float64
	// FootprintHeight includes the baseline drawn under the bar.
	FootprintHeight float64
	Level           int
	RowObj          *RowObj

	PreviousAdjacentTaskObj *TaskObj
	NextAdjacentTaskObj     *TaskObj
	// Nearest tasks of the same level whose baseline is a milestone.
	PreviousBaselineMilestone *TaskObj
	NextBaselineMilestone     *TaskObj

	PredecessorDepObjs []*DependencyObj
	SuccessorDepObjs   []*DependencyObj

	OverlapBehavior ganttdata.OverlapBehavior
	Aggregation     Aggregation
	BorderRadius    float64
	Fill            string

	RenderState RenderState
	Node        *TaskNode

	raw *ganttdata.Task
}

func (t *TaskObj) layoutID() string { return taskNodeID(t.ID) }

func (t *TaskObj) Milestone() bool {
	return t.Type == ganttdata.TaskMilestone
}

// ContentTop is the content y of the bar's top edge.
func (t *TaskObj) ContentTop() float64 {
	return t.RowObj.Y + t.Y
}

type DependencyObj struct {
	ID                 string
	Type               ganttdata.DependencyType
	PredecessorTaskObj *TaskObj
	SuccessorTaskObj   *TaskObj

	// RowObjTop and RowObjBottom are the connected rows with the smaller and larger index.
	RowObjTop    *RowObj
	RowObjBottom *RowObj
	// Chain ordered by RowObjTop.Index.
	NextTopDependencyObj *DependencyObj
	PrevTopDependencyObj *DependencyObj

	RenderState RenderState
	Node        *DependencyNode
}

func (d *DependencyObj) layoutID() string { return depNodeID(d.ID) }

// OverallStartTime and OverallEndTime bound the line horizontally.
func (d *DependencyObj) OverallStartTime() int64 {
	a, b := d.PredecessorTaskObj.OverallStartTime, d.SuccessorTaskObj.OverallStartTime
	if a < b {
		return a
	}
	return b
}

func (d *DependencyObj) OverallEndTime() int64 {
	a, b := d.PredecessorTaskObj.OverallEndTime, d.SuccessorTaskObj.OverallEndTime
	if a > b {
		return a
	}
	return b
}

// LayoutObject is a row, task or dependency object.
type LayoutObject interface {
	layoutID() string
}

// Viewport is the visible row index range and time range.
type Viewport struct {
	MinRowInd     int
	MaxRowInd     int
	ViewStartTime int64
	ViewEndTime   int64
}

func (v Viewport) Empty() bool {
	return v.MinRowInd > v.MaxRowInd
}

func (v Viewport) HasRow(i int) bool {
	return i >= v.MinRowInd && i <= v.MaxRowInd
}

// EmptyViewport contains nothing.
var EmptyViewport = Viewport{MinRowInd: 0, MaxRowInd: -1}

type Action int

const (
	ActionTranslate Action = iota
	ActionScale
	ActionAnimate
	ActionRefresh
)

func (a Action) String() string {
	switch a {
	case ActionTranslate:
		return "translate"
	case ActionScale:
		return "scale"
	case ActionAnimate:
		return "animate"
	case ActionRefresh:
		return "refresh"
	}
	return "unknown"
}

// RenderIntent says how much of a task or row needs rendering.
type RenderIntent int

const (
	// FullRender recomputes geometry.
	FullRender RenderIntent = iota
	// EnsurePresence only makes sure a node exists, as needed by dependency lines.
	EnsurePresence
	// Reposition keeps geometry because only the scroll offset changed.
	Reposition
)

func (i RenderIntent) String() string {
	switch i {
	case FullRender:
		return "full"
	case EnsurePresence:
		return "ensurePresence"
	case Reposition:
		return "reposition"
	}
	return "unknown"
}

type RowOp struct {
	RowObj      *RowObj
	TasksAdd    []*TaskObj
	TasksUpdate []*TaskObj
	TasksDelete []*TaskObj
	Intent      RenderIntent
}

func (op RowOp) UpdateRender() bool {
	return op.Intent == FullRender
}

type RenderOperations struct {
	RowsDelete []*RowObj
	RowsAdd    []RowOp
	RowsUpdate []RowOp
}

func (ops RenderOperations) Empty() bool {
	return len(ops.RowsDelete) == 0 && len(ops.RowsAdd) == 0 && len(ops.RowsUpdate) == 0
}

func rowNodeID(id string) string  { return "row:" + id }
func taskNodeID(id string) string { return "task:" + id }
func depNodeID(id string) string  { return "dep:" + id }
