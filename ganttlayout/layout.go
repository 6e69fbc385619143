package ganttlayout

import (
	"context"
	"sort"

	"cdr.dev/slog"

	"oss.terrastruct.com/gantt/ganttaxis"
	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttstyle"
	"oss.terrastruct.com/gantt/lib/log"
)

// Layout is the positioned form of one set of options.
type Layout struct {
	Rows  []*RowObj
	Tasks map[string]*TaskObj
	Deps  []*DependencyObj

	MinTime int64
	MaxTime int64
	// Width is the logical content width the time range maps onto.
	Width float64

	rowsByID map[string]*RowObj
	depsByID map[string]*DependencyObj
	index    *depIndex
	opts     *ganttdata.Options
}

type builder struct {
	ctx   context.Context
	opts  *ganttdata.Options
	style *ganttstyle.Style

	seenRows  map[string]struct{}
	seenTasks map[string]struct{}
}

func (b *builder) stacker() stacker {
	return stacker{
		padding:       b.style.RowPadding,
		overlapOffset: b.style.OverlapOffset,
		fixedHeight:   b.opts.RowDefaults.Height,
		emptyHeight:   b.style.TaskHeight + 2*b.style.RowPadding,
	}
}

// buildLayout computes a full layout. opts must be valid.
func buildLayout(ctx context.Context, opts *ganttdata.Options, st *ganttstyle.Style, width float64) *Layout {
	minTime, _ := opts.Start.Millis()
	maxTime, _ := opts.End.Millis()
	l := &Layout{
		Tasks:    make(map[string]*TaskObj),
		MinTime:  minTime,
		MaxTime:  maxTime,
		Width:    width,
		rowsByID: make(map[string]*RowObj),
		opts:     opts,
	}
	b := &builder{
		ctx:       ctx,
		opts:      opts,
		style:     st,
		seenRows:  make(map[string]struct{}),
		seenTasks: make(map[string]struct{}),
	}
	l.Rows = b.flatten(opts.Rows, nil, 0)
	l.reindex(0)
	l.relink(ctx)
	return l
}

// flatten turns the row tree into visible rows, descending into expanded rows only.
func (b *builder) flatten(raw []*ganttdata.Row, parent *RowObj, depth int) []*RowObj {
	var out []*RowObj
	for _, r := range raw {
		if r == nil || r.ID == "" {
			log.Debug(b.ctx, "dropping row without id")
			continue
		}
		if _, ok := b.seenRows[r.ID]; ok {
			log.Debug(b.ctx, "dropping duplicate row", slog.F("id", r.ID))
			continue
		}
		b.seenRows[r.ID] = struct{}{}
		row := b.row(r, parent, depth)
		out = append(out, row)
		if row.Expanded {
			out = append(out, b.flatten(r.Rows, row, depth+1)...)
		}
	}
	return out
}

func (b *builder) row(r *ganttdata.Row, parent *RowObj, depth int) *RowObj {
	row := &RowObj{
		ID:          r.ID,
		Label:       r.Label,
		Depth:       depth,
		Expandable:  len(r.Rows) > 0,
		Parent:      parent,
		RenderState: StateAdd,
		raw:         r,
	}
	row.Expanded = row.Expandable && b.opts.Expanded.Has(r.ID)
	for _, rt := range r.Tasks {
		t := b.task(rt)
		if t == nil {
			continue
		}
		t.RowObj = row
		row.TaskObjs = append(row.TaskObjs, t)
	}
	sort.SliceStable(row.TaskObjs, func(i, j int) bool {
		return row.TaskObjs[i].StartTime < row.TaskObjs[j].StartTime
	})
	row.Height = b.stacker().place(row)
	aggregate(row, b.opts.TaskAggregation == "on")
	return row
}

// spanMillis resolves a start/end pair where either end may stand in for the other.
func spanMillis(start, end ganttdata.Date) (int64, int64, bool) {
	if (start.IsSet() && !start.IsValid()) || (end.IsSet() && !end.IsValid()) {
		return 0, 0, false
	}
	s, sok := start.Millis()
	e, eok := end.Millis()
	switch {
	case !sok && !eok:
		return 0, 0, false
	case !sok:
		s = e
	case !eok:
		e = s
	}
	if e < s {
		return 0, 0, false
	}
	return s, e, true
}

// clampSpan keeps a decoration inside the task's own bounds.
func clampSpan(sp *ganttdata.Span, lo, hi int64) *TimeSpan {
	if sp == nil {
		return nil
	}
	s, e, ok := spanMillis(sp.Start, sp.End)
	if !ok {
		return nil
	}
	if s < lo {
		s = lo
	}
	if e > hi {
		e = hi
	}
	if s > e {
		return nil
	}
	return &TimeSpan{Start: s, End: e}
}

func (b *builder) task(rt *ganttdata.Task) *TaskObj {
	if rt == nil || rt.ID == "" {
		log.Debug(b.ctx, "dropping task without id")
		return nil
	}
	if _, ok := b.seenTasks[rt.ID]; ok {
		log.Debug(b.ctx, "dropping duplicate task", slog.F("id", rt.ID))
		return nil
	}
	start, end, ok := spanMillis(rt.Start, rt.End)
	if !ok {
		log.Debug(b.ctx, "dropping task without usable times", slog.F("id", rt.ID))
		return nil
	}
	b.seenTasks[rt.ID] = struct{}{}

	t := &TaskObj{
		ID:          rt.ID,
		Label:       rt.Label,
		Type:        rt.Type,
		StartTime:   start,
		EndTime:     end,
		Progress:    -1,
		Fill:        rt.Fill,
		RenderState: StateAdd,
		raw:         rt,
	}
	if t.Type == "" || t.Type == ganttdata.TaskAuto {
		t.Type = ganttdata.TaskNormal
		if start == end {
			t.Type = ganttdata.TaskMilestone
		}
	}
	if t.Type == ganttdata.TaskMilestone {
		// a milestone is drawn at its start whatever its end says
		t.EndTime = t.StartTime
	}

	if rt.Baseline != nil {
		if s, e, ok := spanMillis(rt.Baseline.Start, rt.Baseline.End); ok {
			t.Baseline = &TimeSpan{Start: s, End: e}
		}
	}
	t.Overtime = clampSpan(rt.Overtime, t.StartTime, t.EndTime)
	t.Downtime = clampSpan(rt.Downtime, t.StartTime, t.EndTime)
	if rt.Progress != nil {
		p := rt.Progress.Value
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		t.Progress = p
	}

	t.OverallStartTime, t.OverallEndTime = t.StartTime, t.EndTime
	if t.Baseline != nil {
		if t.Baseline.Start < t.OverallStartTime {
			t.OverallStartTime = t.Baseline.Start
		}
		if t.Baseline.End > t.OverallEndTime {
			t.OverallEndTime = t.Baseline.End
		}
	}

	st := b.style
	t.Height = rt.Height
	if t.Height <= 0 {
		t.Height = b.opts.TaskDefaults.Height
	}
	if t.Height <= 0 {
		t.Height = st.TaskHeight
	}
	if t.Milestone() && rt.Height <= 0 {
		t.Height = st.MilestoneSize
	}
	t.FootprintHeight = t.Height
	if t.Baseline != nil {
		t.FootprintHeight += st.BaselineGap + st.BaselineHeight
	}

	t.BorderRadius = rt.BorderRadius
	if t.BorderRadius <= 0 {
		t.BorderRadius = b.opts.TaskDefaults.BorderRadius
	}
	if t.BorderRadius <= 0 {
		t.BorderRadius = st.TaskBorderRadius
	}

	behavior := b.opts.TaskDefaults.Overlap.Behavior
	if rt.Overlap != nil && rt.Overlap.Behavior != "" {
		behavior = rt.Overlap.Behavior
	}
	t.OverlapBehavior = ResolveOverlap(behavior, b.opts.RowDefaults.Height)
	return t
}

// reindex renumbers rows from i on and recomputes their offsets.
func (l *Layout) reindex(i int) {
	y := 0.
	if i > 0 {
		y = l.Rows[i-1].Bottom()
	}
	for ; i < len(l.Rows); i++ {
		r := l.Rows[i]
		r.Index = i
		r.Y = y
		y += r.Height
	}
}

// relink rebuilds the id maps and the dependency index.
func (l *Layout) relink(ctx context.Context) {
	l.rowsByID = make(map[string]*RowObj, len(l.Rows))
	l.Tasks = make(map[string]*TaskObj)
	for _, r := range l.Rows {
		l.rowsByID[r.ID] = r
		for _, t := range r.TaskObjs {
			l.Tasks[t.ID] = t
		}
	}
	l.Deps = buildDependencies(ctx, l.opts.Dependencies, l.Tasks)
	l.depsByID = make(map[string]*DependencyObj, len(l.Deps))
	for _, d := range l.Deps {
		l.depsByID[d.ID] = d
	}
	l.index = newDepIndex(l.Deps)
}

func (l *Layout) Row(id string) *RowObj {
	if l == nil {
		return nil
	}
	return l.rowsByID[id]
}

func (l *Layout) Task(id string) *TaskObj {
	if l == nil {
		return nil
	}
	return l.Tasks[id]
}

func (l *Layout) Dependency(id string) *DependencyObj {
	if l == nil {
		return nil
	}
	return l.depsByID[id]
}

// ContentHeight is the bottom of the last row.
func (l *Layout) ContentHeight() float64 {
	if l == nil || len(l.Rows) == 0 {
		return 0
	}
	return l.Rows[len(l.Rows)-1].Bottom()
}

// X maps a time onto the logical content axis.
func (l *Layout) X(axis ganttaxis.Axis, t int64) float64 {
	return axis.DatePosition(l.MinTime, l.MaxTime, t, l.Width)
}

// Time maps a logical x back to a time.
func (l *Layout) Time(axis ganttaxis.Axis, x float64) int64 {
	return axis.PositionDate(l.MinTime, l.MaxTime, x, l.Width)
}

// copyRows snapshots row geometry so an incremental update can be diffed against it.
func (l *Layout) copyRows() *Layout {
	c := &Layout{
		Tasks:    make(map[string]*TaskObj, len(l.Tasks)),
		MinTime:  l.MinTime,
		MaxTime:  l.MaxTime,
		Width:    l.Width,
		rowsByID: make(map[string]*RowObj, len(l.Rows)),
		opts:     l.opts,
	}
	for _, r := range l.Rows {
		r2 := *r
		r2.TaskObjs = append([]*TaskObj(nil), r.TaskObjs...)
		c.Rows = append(c.Rows, &r2)
		c.rowsByID[r2.ID] = &r2
	}
	for id, t := range l.Tasks {
		c.Tasks[id] = t
	}
	c.Deps = append([]*DependencyObj(nil), l.Deps...)
	c.depsByID = make(map[string]*DependencyObj, len(l.Deps))
	for _, d := range c.Deps {
		c.depsByID[d.ID] = d
	}
	return c
}

// expand splices the visible descendants of row in right after it.
func (l *Layout) expand(ctx context.Context, st *ganttstyle.Style, row *RowObj) {
	if !row.Expandable || row.Expanded {
		return
	}
	row.Expanded = true
	b := &builder{
		ctx:       ctx,
		opts:      l.opts,
		style:     st,
		seenRows:  make(map[string]struct{}, len(l.rowsByID)),
		seenTasks: make(map[string]struct{}, len(l.Tasks)),
	}
	for id := range l.rowsByID {
		b.seenRows[id] = struct{}{}
	}
	for id := range l.Tasks {
		b.seenTasks[id] = struct{}{}
	}
	children := b.flatten(row.raw.Rows, row, row.Depth+1)

	i := row.Index + 1
	rows := make([]*RowObj, 0, len(l.Rows)+len(children))
	rows = append(rows, l.Rows[:i]...)
	rows = append(rows, children...)
	rows = append(rows, l.Rows[i:]...)
	l.Rows = rows
	l.reindex(i)
	l.relink(ctx)
}

// collapse removes the contiguous run of descendants following row.
func (l *Layout) collapse(ctx context.Context, row *RowObj) {
	if !row.Expanded {
		return
	}
	row.Expanded = false
	i := row.Index + 1
	j := i
	for j < len(l.Rows) && l.Rows[j].Depth > row.Depth {
		j++
	}
	l.Rows = append(l.Rows[:i], l.Rows[j:]...)
	l.reindex(i)
	l.relink(ctx)
}
