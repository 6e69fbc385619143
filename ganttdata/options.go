// Package ganttdata holds the raw declarative chart description: rows, tasks,
// dependencies and the chart level options that control layout.
package ganttdata

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions marks configuration errors that turn the whole chart into
// the Invalid Data placeholder.
var ErrInvalidOptions = errors.New("invalid options")

type DependencyType string

const (
	StartStart   DependencyType = "startStart"
	StartFinish  DependencyType = "startFinish"
	FinishStart  DependencyType = "finishStart"
	FinishFinish DependencyType = "finishFinish"
)

func (t DependencyType) Valid() bool {
	switch t {
	case StartStart, StartFinish, FinishStart, FinishFinish:
		return true
	}
	return false
}

// PredecessorFinish reports whether the line leaves the predecessor from its end.
func (t DependencyType) PredecessorFinish() bool {
	return t == FinishStart || t == FinishFinish
}

// SuccessorFinish reports whether the line enters the successor at its end.
func (t DependencyType) SuccessorFinish() bool {
	return t == StartFinish || t == FinishFinish
}

type TaskType string

const (
	TaskNormal    TaskType = "normal"
	TaskMilestone TaskType = "milestone"
	TaskSummary   TaskType = "summary"
	TaskAuto      TaskType = "auto"
)

type OverlapBehavior string

const (
	OverlapAuto    OverlapBehavior = "auto"
	OverlapStack   OverlapBehavior = "stack"
	OverlapStagger OverlapBehavior = "stagger"
	OverlapOverlay OverlapBehavior = "overlay"
)

type SelectionBehavior string

const (
	SelectionNormal                SelectionBehavior = "normal"
	SelectionHighlightDependencies SelectionBehavior = "highlightDependencies"
)

type LineStyle string

const (
	LineRectilinear LineStyle = "rectilinear"
	LineStraight    LineStyle = "straight"
)

type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

type Theme string

const (
	ThemeLegacy Theme = "legacy"
	ThemeModern Theme = "modern"
)

// Span is a secondary time range drawn with a task: baseline, overtime or downtime.
type Span struct {
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
}

type Progress struct {
	// Value is the completed fraction in [0, 1].
	Value float64 `json:"value" yaml:"value"`
}

type Overlap struct {
	Behavior OverlapBehavior `json:"behavior" yaml:"behavior"`
}

type Task struct {
	ID    string   `json:"id" yaml:"id"`
	Label string   `json:"label,omitempty" yaml:"label,omitempty"`
	Start Date     `json:"start" yaml:"start"`
	End   Date     `json:"end" yaml:"end"`
	Type  TaskType `json:"type,omitempty" yaml:"type,omitempty"`

	Baseline *Span     `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Overtime *Span     `json:"overtime,omitempty" yaml:"overtime,omitempty"`
	Downtime *Span     `json:"downtime,omitempty" yaml:"downtime,omitempty"`
	Progress *Progress `json:"progress,omitempty" yaml:"progress,omitempty"`
	Overlap  *Overlap  `json:"overlap,omitempty" yaml:"overlap,omitempty"`

	Height       float64 `json:"height,omitempty" yaml:"height,omitempty"`
	BorderRadius float64 `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
	Fill         string  `json:"fill,omitempty" yaml:"fill,omitempty"`
}

type Row struct {
	ID    string  `json:"id" yaml:"id"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
	Tasks []*Task `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	// Rows are child rows, shown while the row id is in Options.Expanded.
	Rows []*Row `json:"rows,omitempty" yaml:"rows,omitempty"`
}

type Dependency struct {
	ID                string         `json:"id" yaml:"id"`
	PredecessorTaskID string         `json:"predecessorTaskId" yaml:"predecessorTaskId"`
	SuccessorTaskID   string         `json:"successorTaskId" yaml:"successorTaskId"`
	Type              DependencyType `json:"type,omitempty" yaml:"type,omitempty"`
}

type Axis struct {
	Scale string `json:"scale" yaml:"scale"`
}

type Animation struct {
	// OnDisplay and OnDataChange are "auto" or "none".
	OnDisplay    string `json:"onDisplay,omitempty" yaml:"onDisplay,omitempty"`
	OnDataChange string `json:"onDataChange,omitempty" yaml:"onDataChange,omitempty"`
}

type RowDefaults struct {
	// Height fixes every row height when non zero.
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

type TaskDefaults struct {
	Height       float64 `json:"height,omitempty" yaml:"height,omitempty"`
	BorderRadius float64 `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
	Overlap      Overlap `json:"overlap,omitempty" yaml:"overlap,omitempty"`
}

type Options struct {
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
	Axis  Axis `json:"majorAxis" yaml:"majorAxis"`

	Rows         []*Row        `json:"rows" yaml:"rows"`
	Dependencies []*Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Expanded     *KeySet       `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	Selection    []string      `json:"selection,omitempty" yaml:"selection,omitempty"`

	SelectionBehavior   SelectionBehavior `json:"selectionBehavior,omitempty" yaml:"selectionBehavior,omitempty"`
	DependencyLineStyle LineStyle         `json:"dependencyLineStyle,omitempty" yaml:"dependencyLineStyle,omitempty"`
	Direction           Direction         `json:"direction,omitempty" yaml:"direction,omitempty"`
	Theme               Theme             `json:"theme,omitempty" yaml:"theme,omitempty"`
	Animation           Animation         `json:"animation,omitempty" yaml:"animation,omitempty"`
	TaskAggregation     string            `json:"taskAggregation,omitempty" yaml:"taskAggregation,omitempty"`

	RowDefaults  RowDefaults  `json:"rowDefaults,omitempty" yaml:"rowDefaults,omitempty"`
	TaskDefaults TaskDefaults `json:"taskDefaults,omitempty" yaml:"taskDefaults,omitempty"`
}

var scales = map[string]struct{}{
	"seconds": {}, "minutes": {}, "hours": {}, "days": {},
	"weeks": {}, "months": {}, "quarters": {}, "years": {},
}

// ApplyDefaults fills unset enums with their defaults.
func (o *Options) ApplyDefaults() {
	if o.Axis.Scale == "" {
		o.Axis.Scale = "days"
	}
	if o.SelectionBehavior == "" {
		o.SelectionBehavior = SelectionNormal
	}
	if o.DependencyLineStyle == "" {
		o.DependencyLineStyle = LineRectilinear
	}
	if o.Direction == "" {
		o.Direction = LTR
	}
	if o.Theme == "" {
		o.Theme = ThemeLegacy
	}
	if o.Animation.OnDisplay == "" {
		o.Animation.OnDisplay = "none"
	}
	if o.Animation.OnDataChange == "" {
		o.Animation.OnDataChange = "none"
	}
	if o.TaskAggregation == "" {
		o.TaskAggregation = "off"
	}
	if o.TaskDefaults.Overlap.Behavior == "" {
		o.TaskDefaults.Overlap.Behavior = OverlapAuto
	}
	if o.Expanded == nil {
		o.Expanded = NewKeySet()
	}
}

// Validate reports configuration errors wrapped in ErrInvalidOptions.
// Bad row, task or dependency records are not configuration errors.
func (o *Options) Validate() error {
	if _, ok := scales[o.Axis.Scale]; !ok {
		return fmt.Errorf("%w: unknown axis scale %q", ErrInvalidOptions, o.Axis.Scale)
	}
	start, ok := o.Start.Millis()
	if !ok {
		return fmt.Errorf("%w: missing or unparseable chart start %q", ErrInvalidOptions, o.Start.String())
	}
	end, ok := o.End.Millis()
	if !ok {
		return fmt.Errorf("%w: missing or unparseable chart end %q", ErrInvalidOptions, o.End.String())
	}
	if start >= end {
		return fmt.Errorf("%w: chart start %v is not before end %v", ErrInvalidOptions, o.Start, o.End)
	}
	switch o.DependencyLineStyle {
	case LineRectilinear, LineStraight:
	default:
		return fmt.Errorf("%w: unknown dependency line style %q", ErrInvalidOptions, o.DependencyLineStyle)
	}
	switch o.Direction {
	case LTR, RTL:
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidOptions, o.Direction)
	}
	switch o.TaskDefaults.Overlap.Behavior {
	case OverlapAuto, OverlapStack, OverlapStagger, OverlapOverlay:
	default:
		return fmt.Errorf("%w: unknown overlap behavior %q", ErrInvalidOptions, o.TaskDefaults.Overlap.Behavior)
	}
	if o.RowDefaults.Height < 0 || o.TaskDefaults.Height < 0 {
		return fmt.Errorf("%w: negative default height", ErrInvalidOptions)
	}
	return nil
}

// Empty reports whether there is nothing to draw.
func (o *Options) Empty() bool {
	return len(o.Rows) == 0
}

// Clone copies o deeply enough that the copy's rows, tasks and expanded set can be mutated.
// Nil records are left out of the copy.
func (o *Options) Clone() *Options {
	c := *o
	c.Rows = cloneRows(o.Rows)
	c.Dependencies = make([]*Dependency, 0, len(o.Dependencies))
	for _, d := range o.Dependencies {
		if d == nil {
			continue
		}
		d2 := *d
		c.Dependencies = append(c.Dependencies, &d2)
	}
	c.Expanded = o.Expanded.Clone()
	c.Selection = append([]string(nil), o.Selection...)
	return &c
}

func cloneRows(rows []*Row) []*Row {
	if rows == nil {
		return nil
	}
	out := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		r2 := *r
		r2.Tasks = make([]*Task, 0, len(r.Tasks))
		for _, t := range r.Tasks {
			if t == nil {
				continue
			}
			t2 := *t
			r2.Tasks = append(r2.Tasks, &t2)
		}
		r2.Rows = cloneRows(r.Rows)
		out = append(out, &r2)
	}
	return out
}

// FindTask returns the raw task with id along with its row, or nil.
func (o *Options) FindTask(id string) (*Row, *Task) {
	return findTask(o.Rows, id)
}

func findTask(rows []*Row, id string) (*Row, *Task) {
	for _, r := range rows {
		if r == nil {
			continue
		}
		for _, t := range r.Tasks {
			if t != nil && t.ID == id {
				return r, t
			}
		}
		if row, t := findTask(r.Rows, id); t != nil {
			return row, t
		}
	}
	return nil, nil
}
