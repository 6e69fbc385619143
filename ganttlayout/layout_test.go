package ganttlayout

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/xrand"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttstyle"
	"oss.terrastruct.com/gantt/lib/log"
)

func task(id string, start, end int64) *ganttdata.Task {
	return &ganttdata.Task{ID: id, Start: ganttdata.NewDate(start), End: ganttdata.NewDate(end)}
}

func row(id string, tasks ...*ganttdata.Task) *ganttdata.Row {
	return &ganttdata.Row{ID: id, Tasks: tasks}
}

func options(rows ...*ganttdata.Row) *ganttdata.Options {
	opts := &ganttdata.Options{
		Start: ganttdata.NewDate(0),
		End:   ganttdata.NewDate(1000),
		Rows:  rows,
	}
	opts.ApplyDefaults()
	return opts
}

func layoutOf(t *testing.T, opts *ganttdata.Options) *Layout {
	ctx := log.WithTB(context.Background(), t, nil)
	return buildLayout(ctx, opts, ganttstyle.Default(), 1000)
}

func TestStaggerAlternates(t *testing.T) {
	t.Parallel()

	st := ganttstyle.Default()
	l := layoutOf(t, options(row("r", task("a", 0, 10), task("b", 5, 15), task("c", 12, 20), task("d", 30, 40))))
	r := l.Rows[0]
	a, b, c, d := l.Task("a"), l.Task("b"), l.Task("c"), l.Task("d")

	assert.Equal(t, ganttdata.OverlapStagger, a.OverlapBehavior)
	assert.Equal(t, st.RowPadding, a.Y)
	assert.Equal(t, st.OverlapOffset, b.Y-a.Y)
	// direction flipped so the next overlapping task goes back up
	assert.Equal(t, a.Y, c.Y)
	// no overlap resets to the baseline
	assert.Equal(t, a.Y, d.Y)
	// the baseline is the upper position, nothing rises above the padding
	for _, x := range []*TaskObj{a, b, c, d} {
		assert.GreaterOrEqual(t, x.Y, st.RowPadding, x.ID)
	}
	assert.Equal(t, b.Y+st.TaskHeight+st.RowPadding, r.Height)
}

func TestStackLevels(t *testing.T) {
	t.Parallel()

	opts := options(row("r", task("a", 0, 10), task("b", 5, 15), task("c", 12, 20)))
	opts.RowDefaults.Height = 30
	l := layoutOf(t, opts)
	st := ganttstyle.Default()
	a, b, c := l.Task("a"), l.Task("b"), l.Task("c")

	assert.Equal(t, ganttdata.OverlapStack, a.OverlapBehavior)
	assert.Equal(t, 0, a.Level)
	assert.Equal(t, 1, b.Level)
	assert.Equal(t, 0, c.Level)
	assert.Equal(t, st.RowPadding, a.Y)
	assert.Equal(t, 2*st.RowPadding+st.TaskHeight, b.Y)
	assert.Equal(t, c, a.NextAdjacentTaskObj)
	assert.Equal(t, a, c.PreviousAdjacentTaskObj)
	assert.Nil(t, b.NextAdjacentTaskObj)
	// content taller than the fixed height wins
	assert.Equal(t, 3*st.RowPadding+2*st.TaskHeight, l.Rows[0].Height)
	assert.Equal(t, 2, l.Rows[0].Levels)
}

func TestFixedHeightKeepsSmallRows(t *testing.T) {
	t.Parallel()

	opts := options(row("r", task("a", 0, 10)), row("s"))
	opts.RowDefaults.Height = 80
	l := layoutOf(t, opts)
	assert.Equal(t, 80., l.Rows[0].Height)
	assert.Equal(t, 80., l.Rows[1].Height)
	assert.Equal(t, 80., l.Rows[1].Y)
	assert.Equal(t, 160., l.ContentHeight())
}

func TestStackInvariant(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		var tasks []*ganttdata.Task
		for j := 0; j < 30; j++ {
			start := rng.Int63n(900)
			tasks = append(tasks, task(xrand.Base64(8), start, start+1+rng.Int63n(100)))
		}
		opts := options(row("r", tasks...))
		opts.TaskDefaults.Overlap.Behavior = ganttdata.OverlapStack
		l := layoutOf(t, opts)

		objs := l.Rows[0].TaskObjs
		require.True(t, sort.SliceIsSorted(objs, func(i, j int) bool { return objs[i].StartTime < objs[j].StartTime }))
		for x := range objs {
			for y := x + 1; y < len(objs); y++ {
				a, b := objs[x], objs[y]
				if a.Level == b.Level {
					assert.False(t, overlaps(a, b), "%s and %s share level %d", a.ID, b.ID, a.Level)
				} else {
					assert.NotEqual(t, a.Y, b.Y)
				}
			}
		}
	}
}

func TestOverlayDrawnLast(t *testing.T) {
	t.Parallel()

	over := task("o", 0, 50)
	over.Overlap = &ganttdata.Overlap{Behavior: ganttdata.OverlapOverlay}
	l := layoutOf(t, options(row("r", over, task("a", 5, 10), task("b", 20, 30))))
	r := l.Rows[0]

	order := r.RenderOrder()
	require.Len(t, order, 3)
	assert.Equal(t, "o", order[2].ID)
	assert.Equal(t, l.Task("a").Y, l.Task("o").Y)
	assert.Nil(t, l.Task("o").NextAdjacentTaskObj)
	assert.Equal(t, l.Task("b"), l.Task("a").NextAdjacentTaskObj)
}

func TestTaskResolution(t *testing.T) {
	t.Parallel()

	onlyStart := &ganttdata.Task{ID: "s", Start: ganttdata.NewDate(100)}
	broken := &ganttdata.Task{ID: "x", Start: ganttdata.ParseDate("not a date"), End: ganttdata.NewDate(5)}
	backwards := task("back", 50, 10)
	decorated := task("d", 100, 200)
	decorated.Baseline = &ganttdata.Span{Start: ganttdata.NewDate(80), End: ganttdata.NewDate(220)}
	decorated.Overtime = &ganttdata.Span{Start: ganttdata.NewDate(150), End: ganttdata.NewDate(400)}
	decorated.Downtime = &ganttdata.Span{Start: ganttdata.NewDate(0), End: ganttdata.NewDate(120)}
	decorated.Progress = &ganttdata.Progress{Value: 1.5}

	l := layoutOf(t, options(row("r", onlyStart, broken, backwards, decorated, task("d", 0, 1))))

	s := l.Task("s")
	require.NotNil(t, s)
	assert.Equal(t, int64(100), s.EndTime)
	assert.Equal(t, ganttdata.TaskMilestone, s.Type)
	assert.Equal(t, ganttstyle.Default().MilestoneSize, s.Height)

	assert.Nil(t, l.Task("x"))
	assert.Nil(t, l.Task("back"))
	assert.Len(t, l.Rows[0].TaskObjs, 2)

	d := l.Task("d")
	assert.Equal(t, int64(100), d.StartTime)
	assert.Equal(t, int64(80), d.OverallStartTime)
	assert.Equal(t, int64(220), d.OverallEndTime)
	assert.Equal(t, &TimeSpan{Start: 150, End: 200}, d.Overtime)
	assert.Equal(t, &TimeSpan{Start: 100, End: 120}, d.Downtime)
	assert.Equal(t, 1., d.Progress)
	st := ganttstyle.Default()
	assert.Equal(t, st.TaskHeight+st.BaselineGap+st.BaselineHeight, d.FootprintHeight)
}

func TestBaselineMilestoneLinks(t *testing.T) {
	t.Parallel()

	a := task("a", 0, 10)
	b := task("b", 20, 30)
	b.Baseline = &ganttdata.Span{Start: ganttdata.NewDate(25), End: ganttdata.NewDate(25)}
	c := task("c", 40, 50)
	l := layoutOf(t, options(row("r", a, b, c)))

	assert.Equal(t, l.Task("b"), l.Task("a").NextBaselineMilestone)
	assert.Equal(t, l.Task("b"), l.Task("c").PreviousBaselineMilestone)
	assert.Nil(t, l.Task("b").NextBaselineMilestone)
	assert.Nil(t, l.Task("a").PreviousBaselineMilestone)
}

func TestAggregation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		agg   string
		tasks []*ganttdata.Task
		exp   []Aggregation
	}{
		{
			name:  "off",
			agg:   "off",
			tasks: []*ganttdata.Task{task("a", 0, 10), task("b", 10, 20)},
			exp:   []Aggregation{AggregationNone, AggregationNone},
		},
		{
			name:  "run",
			agg:   "on",
			tasks: []*ganttdata.Task{task("a", 0, 10), task("b", 10, 20), task("c", 20, 30), task("d", 40, 50)},
			exp:   []Aggregation{AggregationStart, AggregationMiddle, AggregationEnd, AggregationSolo},
		},
		{
			name:  "gap",
			agg:   "on",
			tasks: []*ganttdata.Task{task("a", 0, 10), task("b", 11, 20)},
			exp:   []Aggregation{AggregationSolo, AggregationSolo},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts := options(row("r", tc.tasks...))
			opts.TaskAggregation = tc.agg
			l := layoutOf(t, opts)
			var got []Aggregation
			for _, o := range l.Rows[0].TaskObjs {
				got = append(got, o.Aggregation)
			}
			assert.Equal(t, tc.exp, got)
		})
	}
}

func TestAggregatedCorners(t *testing.T) {
	t.Parallel()

	opts := options(row("r", task("a", 0, 10), task("b", 10, 20), task("c", 20, 30)))
	opts.TaskAggregation = "on"
	l := layoutOf(t, opts)
	r := ganttstyle.Default().TaskBorderRadius

	assert.Equal(t, r, l.Task("a").Corners()[0])
	assert.Equal(t, 0., l.Task("a").Corners()[1])
	assert.Equal(t, 0., l.Task("b").Corners()[0])
	assert.Equal(t, r, l.Task("c").Corners()[2])
	assert.Equal(t, 0., l.Task("c").Corners()[3])
}

func TestDependencyLinking(t *testing.T) {
	t.Parallel()

	opts := options(
		row("r1", task("a", 0, 10), task("b", 20, 30)),
		row("r2", task("c", 40, 50)),
	)
	opts.Dependencies = []*ganttdata.Dependency{
		{ID: "ab", PredecessorTaskID: "a", SuccessorTaskID: "b"},
		{ID: "bc", PredecessorTaskID: "b", SuccessorTaskID: "c", Type: ganttdata.StartStart},
		{ID: "ab", PredecessorTaskID: "a", SuccessorTaskID: "c"},
		{ID: "self", PredecessorTaskID: "a", SuccessorTaskID: "a"},
		{ID: "dangling", PredecessorTaskID: "a", SuccessorTaskID: "zz"},
		{ID: "bad", PredecessorTaskID: "a", SuccessorTaskID: "c", Type: "sideways"},
		{ID: "", PredecessorTaskID: "a", SuccessorTaskID: "c"},
	}
	l := layoutOf(t, opts)

	require.Len(t, l.Deps, 2)
	assert.Equal(t, ganttdata.FinishStart, l.Dependency("ab").Type)
	for _, d := range l.Deps {
		succCount, predCount := 0, 0
		for _, tk := range l.Tasks {
			for _, s := range tk.SuccessorDepObjs {
				if s == d {
					succCount++
					assert.Equal(t, d.PredecessorTaskObj, tk)
				}
			}
			for _, p := range tk.PredecessorDepObjs {
				if p == d {
					predCount++
					assert.Equal(t, d.SuccessorTaskObj, tk)
				}
			}
		}
		assert.Equal(t, 1, succCount, d.ID)
		assert.Equal(t, 1, predCount, d.ID)
	}
	assert.Nil(t, l.Dependency("self"))
	assert.Nil(t, l.Dependency("dangling"))
	assert.Nil(t, l.Dependency("bad"))

	bc := l.Dependency("bc")
	assert.Equal(t, "r1", bc.RowObjTop.ID)
	assert.Equal(t, "r2", bc.RowObjBottom.ID)
}

func TestDependencyCrossing(t *testing.T) {
	t.Parallel()

	var rows []*ganttdata.Row
	for i := 0; i < 6; i++ {
		id := string(rune('a' + i))
		rows = append(rows, row("r"+id, task(id, int64(i*100), int64(i*100+50))))
	}
	opts := options(rows...)
	opts.Dependencies = []*ganttdata.Dependency{
		{ID: "ab", PredecessorTaskID: "a", SuccessorTaskID: "b"},
		{ID: "af", PredecessorTaskID: "a", SuccessorTaskID: "f"},
		{ID: "de", PredecessorTaskID: "d", SuccessorTaskID: "e"},
		{ID: "ec", PredecessorTaskID: "e", SuccessorTaskID: "c"},
	}
	l := layoutOf(t, opts)

	ids := func(deps []*DependencyObj) []string {
		var out []string
		for _, d := range deps {
			out = append(out, d.ID)
		}
		return out
	}
	assert.Equal(t, []string{"af", "de", "ec"}, ids(l.index.crossing(3, 3, 0, 1000)))
	assert.Equal(t, []string{"ab", "af"}, ids(l.index.crossing(0, 0, 0, 1000)))
	assert.Equal(t, []string{"af", "de", "ec"}, ids(l.index.crossing(4, 5, 0, 1000)))
	// time filter
	assert.Equal(t, []string{"af"}, ids(l.index.crossing(3, 4, 460, 540)))
	assert.Empty(t, l.index.crossing(0, 5, 600, 700))

	// every dependency crossing the range, against a scan
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		lo, hi := rng.Intn(6), rng.Intn(6)
		if lo > hi {
			lo, hi = hi, lo
		}
		var exp []string
		for _, d := range l.Deps {
			if d.RowObjTop.Index <= hi && d.RowObjBottom.Index >= lo {
				exp = append(exp, d.ID)
			}
		}
		sort.Strings(exp)
		assert.Equal(t, exp, ids(l.index.crossing(lo, hi, 0, 1000)))
	}
}

func TestFindRowIndRange(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		var rows []*RowObj
		y := 0.
		n := 1 + rng.Intn(40)
		for j := 0; j < n; j++ {
			h := float64(10 + rng.Intn(40))
			rows = append(rows, &RowObj{ID: xrand.Base64(8), Index: j, Y: y, Height: h})
			y += h
		}
		for k := 0; k < 20; k++ {
			yMin := rng.Float64()*y*1.2 - 10
			yMax := yMin + rng.Float64()*200
			lo, hi, ok := FindRowIndRange(rows, yMin, yMax)

			expLo, expHi := -1, -1
			for _, r := range rows {
				if r.Y+r.Height > yMin && r.Y < yMax {
					if expLo == -1 {
						expLo = r.Index
					}
					expHi = r.Index
				}
			}
			if expLo == -1 {
				assert.False(t, ok)
				continue
			}
			require.True(t, ok)
			assert.Equal(t, expLo, lo)
			assert.Equal(t, expHi, hi)
		}
	}
}

func TestFindTaskObjsRange(t *testing.T) {
	t.Parallel()

	tasks := []*TaskObj{
		{ID: "a", OverallStartTime: 0, OverallEndTime: 10},
		{ID: "b", OverallStartTime: 10, OverallEndTime: 20},
		{ID: "c", OverallStartTime: 20, OverallEndTime: 30},
	}
	ids := func(ts []*TaskObj) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(FindTaskObjsRange(tasks, 10, 20, true, true)))
	assert.Equal(t, []string{"b"}, ids(FindTaskObjsRange(tasks, 10, 20, false, false)))
	assert.Equal(t, []string{"b", "c"}, ids(FindTaskObjsRange(tasks, 10, 20, false, true)))
	assert.Empty(t, FindTaskObjsRange(tasks, 31, 40, true, true))
}

func TestFindBufferTaskObjsRange(t *testing.T) {
	t.Parallel()

	opts := options(
		row("chain", task("a", 0, 10), task("b", 20, 30), task("c", 40, 50), task("d", 60, 70), task("e", 80, 90)),
		row("loner", task("x", 0, 10)),
		row("far", task("p", 0, 10), task("q", 20, 30), task("r", 120, 130)),
	)
	l := layoutOf(t, opts)
	ids := func(ts []*TaskObj) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	testCases := []struct {
		name  string
		row   string
		start int64
		end   int64
		exp   []string
	}{
		{"both sides", "chain", 35, 55, []string{"b", "d"}},
		{"inside", "chain", 0, 90, nil},
		{"left of all", "chain", 100, 200, []string{"e"}},
		{"right of all", "chain", -50, -10, []string{"a"}},
		{"loner", "loner", 50, 60, []string{"x"}},
		{"gap", "far", 50, 100, []string{"q", "r"}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := FindBufferTaskObjsRange(l.Row(tc.row).TaskObjs, tc.start, tc.end)
			assert.Equal(t, tc.exp, ids(got))
		})
	}
}

func TestCalcLayoutIdempotent(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	opts := options(
		row("r1", task("a", 0, 100), task("b", 50, 150)),
		row("r2", task("c", 200, 300)),
	)
	opts.Dependencies = []*ganttdata.Dependency{{ID: "ac", PredecessorTaskID: "a", SuccessorTaskID: "c"}}

	m := New(Config{})
	m.CalcLayout(ctx, opts, 1000)
	first := m.Layout()
	m.CalcLayout(ctx, opts, 1000)
	second := m.Layout()

	require.Len(t, second.Rows, len(first.Rows))
	for i, r := range second.Rows {
		assert.Equal(t, first.Rows[i].ID, r.ID)
		assert.Equal(t, first.Rows[i].Y, r.Y)
		assert.Equal(t, first.Rows[i].Height, r.Height)
		assert.Equal(t, StateExist, r.RenderState)
	}
	for id, tk := range second.Tasks {
		old := first.Tasks[id]
		assert.Equal(t, old.Y, tk.Y)
		assert.Equal(t, old.Height, tk.Height)
		assert.Equal(t, adjacentID(old.NextAdjacentTaskObj), adjacentID(tk.NextAdjacentTaskObj))
		assert.Equal(t, adjacentID(old.PreviousAdjacentTaskObj), adjacentID(tk.PreviousAdjacentTaskObj))
		assert.Equal(t, StateExist, tk.RenderState)
	}
	assert.True(t, m.Patch().Empty())
}

func adjacentID(t *TaskObj) string {
	if t == nil {
		return ""
	}
	return t.ID
}

func TestExpandCollapse(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	parent := row("p", task("pt", 0, 100))
	parent.Rows = []*ganttdata.Row{
		row("c1", task("c1t", 10, 20)),
		row("c2", task("c2t", 30, 40)),
	}
	parent.Rows[1].Rows = []*ganttdata.Row{row("g1", task("g1t", 50, 60))}
	opts := options(row("top", task("tt", 0, 10)), parent, row("last", task("lt", 0, 10)))
	opts.Dependencies = []*ganttdata.Dependency{{ID: "d", PredecessorTaskID: "c1t", SuccessorTaskID: "lt"}}

	m := New(Config{})
	m.CalcLayout(ctx, opts, 1000)
	rowIDs := func() []string {
		var out []string
		for _, r := range m.GetRowObjs() {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, []string{"top", "p", "last"}, rowIDs())
	assert.Empty(t, m.GetDependencyObjs())
	assert.True(t, m.Layout().Row("p").Expandable)
	assert.False(t, m.Layout().Row("p").Expanded)

	last := m.Layout().Row("last")
	require.True(t, m.Expand(ctx, "p"))
	assert.Equal(t, []string{"top", "p", "c1", "c2", "last"}, rowIDs())
	assert.True(t, opts.Expanded.Has("p"))
	// rows after the splice are the same objects, renumbered
	assert.Equal(t, last, m.Layout().Row("last"))
	assert.Equal(t, 4, last.Index)
	for i, r := range m.GetRowObjs() {
		assert.Equal(t, i, r.Index)
		if i > 0 {
			prev := m.GetRowObjs()[i-1]
			assert.Equal(t, prev.Y+prev.Height, r.Y)
		}
	}
	assert.Equal(t, 1, m.Layout().Row("c1").Depth)
	assert.Equal(t, StateAdd, m.Patch().Rows["c1"])
	assert.Equal(t, StateExist, m.Patch().Rows["last"])
	require.Len(t, m.GetDependencyObjs(), 1)
	assert.Equal(t, "c1", m.GetDependencyObjs()[0].RowObjTop.ID)

	require.True(t, m.Expand(ctx, "c2"))
	assert.Equal(t, []string{"top", "p", "c1", "c2", "g1", "last"}, rowIDs())
	assert.False(t, m.Expand(ctx, "c2"))

	require.True(t, m.Collapse(ctx, "p"))
	assert.Equal(t, []string{"top", "p", "last"}, rowIDs())
	assert.Equal(t, []string{"c1", "c2", "g1"}, m.Patch().RowsDeleted)
	assert.Equal(t, StateDelete, m.Patch().Tasks["g1t"])
	assert.Equal(t, 2, last.Index)
	assert.Empty(t, m.GetDependencyObjs())

	// grandchild expansion is remembered
	require.True(t, m.Expand(ctx, "p"))
	assert.Equal(t, []string{"top", "p", "c1", "c2", "g1", "last"}, rowIDs())
}
