package ganttdep

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/diff"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttshape"
	"oss.terrastruct.com/gantt/lib/geo"
	"oss.terrastruct.com/gantt/lib/svg"
)

func params(typ ganttdata.DependencyType, pred, succ Endpoint) Params {
	return Params{
		Type:      typ,
		Pred:      pred,
		Succ:      succ,
		Style:     ganttdata.LineRectilinear,
		Flank:     10,
		Radius:    4,
		GuideGap:  6,
		Precision: svg.FullPrecision,
	}
}

func TestFinishStartTouching(t *testing.T) {
	t.Parallel()

	a := Endpoint{Start: 0, End: 100, Top: 4, Bottom: 26}
	b := Endpoint{Start: 100, End: 200, Top: 34, Bottom: 56}
	l := Compute(params(ganttdata.FinishStart, a, b))

	assert.Equal(t, geo.HalfPixel(a.End), l.Start().X)
	assert.Equal(t, geo.HalfPixel(a.Mid()), l.Start().Y)
	assert.Equal(t, geo.HalfPixel(b.Start), l.End().X)
	assert.Equal(t, geo.HalfPixel(b.Mid()), l.End().Y)
	assert.True(t, l.Guided)

	exp := "M 100.5 15.5 L 106.5 15.5 A 4 4 0 0 1 110.5 19.5 L 110.5 28.5 A 4 4 0 0 1 106.5 32.5 " +
		"L 94.5 32.5 A 4 4 0 0 0 90.5 36.5 L 90.5 41.5 A 4 4 0 0 0 94.5 45.5 L 100.5 45.5"
	ds, err := diff.Strings(exp, l.D)
	require.Nil(t, err)
	assert.Equal(t, "", ds)

	conflicts := Conflicts([]Ref{{ID: "d", PredID: "A", SuccID: "B", Type: ganttdata.FinishStart}})
	assert.Equal(t, ConflictNone, conflicts["d"])
}

func TestRoutesBelow(t *testing.T) {
	t.Parallel()

	pred := Endpoint{Start: 0, End: 100, Top: 4, Bottom: 26}
	succ := Endpoint{Start: 150, End: 200, Top: 34, Bottom: 56}

	testCases := []struct {
		typ      ganttdata.DependencyType
		expRoute string
	}{
		{ganttdata.FinishStart, "(100.5, 15.5), (110.5, 15.5), (110.5, 32.5), (140.5, 32.5), (140.5, 45.5), (150.5, 45.5)"},
		{ganttdata.StartStart, "(0.5, 15.5), (-9.5, 15.5), (-9.5, 32.5), (140.5, 32.5), (140.5, 45.5), (150.5, 45.5)"},
		{ganttdata.FinishFinish, "(100.5, 15.5), (110.5, 15.5), (110.5, 32.5), (210.5, 32.5), (210.5, 45.5), (200.5, 45.5)"},
		{ganttdata.StartFinish, "(0.5, 15.5), (-9.5, 15.5), (-9.5, 32.5), (210.5, 32.5), (210.5, 45.5), (200.5, 45.5)"},
	}
	for _, tc := range testCases {
		l := Compute(params(tc.typ, pred, succ))
		assert.Equal(t, tc.expRoute, geo.Points(l.Route).ToString(), string(tc.typ))
		assert.True(t, l.Guided, string(tc.typ))
		for _, s := range l.Route.Segments() {
			assert.True(t, s.IsHorizontal() || s.IsVertical(), string(tc.typ))
		}
	}
}

func TestSuccessorAbove(t *testing.T) {
	t.Parallel()

	pred := Endpoint{Start: 100, End: 200, Top: 34, Bottom: 56}
	succ := Endpoint{Start: 50, End: 80, Top: 4, Bottom: 26}
	l := Compute(params(ganttdata.FinishStart, pred, succ))

	assert.True(t, l.Guided)
	// the guide runs above the predecessor
	assert.Equal(t, "(200.5, 45.5), (210.5, 45.5), (210.5, 28.5), (40.5, 28.5), (40.5, 15.5), (50.5, 15.5)", geo.Points(l.Route).ToString())
}

func TestLevel(t *testing.T) {
	t.Parallel()

	pred := Endpoint{Start: 0, End: 100, Top: 4, Bottom: 26}
	succ := Endpoint{Start: 150, End: 200, Top: 4, Bottom: 26}
	l := Compute(params(ganttdata.FinishStart, pred, succ))
	assert.Equal(t, "M 100.5 15.5 L 150.5 15.5", l.D)
	assert.False(t, l.Guided)

	// same line but the successor end lies behind: route around below
	l = Compute(params(ganttdata.FinishFinish, pred, succ))
	assert.True(t, l.Guided)
	assert.Equal(t, "(100.5, 15.5), (110.5, 15.5), (110.5, 32.5), (210.5, 32.5), (210.5, 15.5), (200.5, 15.5)", geo.Points(l.Route).ToString())
}

func TestObstacle(t *testing.T) {
	t.Parallel()

	pred := Endpoint{Start: 0, End: 100, Top: 4, Bottom: 26}
	succ := Endpoint{Start: 150, End: 200, Top: 64, Bottom: 86}
	p := params(ganttdata.FinishStart, pred, succ)

	l := Compute(p)
	assert.Equal(t, "(100.5, 15.5), (110.5, 15.5), (110.5, 32.5), (140.5, 32.5), (140.5, 75.5), (150.5, 75.5)", geo.Points(l.Route).ToString())

	// a task in the row between blocks the run down the successor flank
	p.Obstacles = []*geo.Box{geo.NewBox(geo.NewPoint(80, 34), 80, 22)}
	l = Compute(p)
	assert.True(t, l.Guided)
	assert.Equal(t, "(100.5, 15.5), (110.5, 15.5), (110.5, 32.5), (170.5, 32.5), (170.5, 58.5), (140.5, 58.5), (140.5, 75.5), (150.5, 75.5)", geo.Points(l.Route).ToString())

	// the nearest clear column is past the second task
	p.Obstacles = append(p.Obstacles, geo.NewBox(geo.NewPoint(165, 34), 30, 22))
	l = Compute(p)
	assert.Equal(t, "(100.5, 15.5), (110.5, 15.5), (110.5, 32.5), (205.5, 32.5), (205.5, 58.5), (140.5, 58.5), (140.5, 75.5), (150.5, 75.5)", geo.Points(l.Route).ToString())
}

func TestArcCount(t *testing.T) {
	t.Parallel()

	top := Endpoint{Start: 100, End: 200, Top: 4, Bottom: 26}
	testCases := []struct {
		name      string
		typ       ganttdata.DependencyType
		pred      Endpoint
		succ      Endpoint
		obstacles []*geo.Box
		exp       int
	}{
		{"level_facing", ganttdata.FinishStart, top, Endpoint{Start: 300, End: 400, Top: 4, Bottom: 26}, nil, 0},
		{"level_behind", ganttdata.FinishStart, top, Endpoint{Start: 0, End: 50, Top: 4, Bottom: 26}, nil, 4},
		{"level_both_start", ganttdata.StartStart, top, Endpoint{Start: 300, End: 400, Top: 4, Bottom: 26}, nil, 4},
		{"level_both_finish", ganttdata.FinishFinish, top, Endpoint{Start: 300, End: 400, Top: 4, Bottom: 26}, nil, 4},
		{"below_forward", ganttdata.FinishStart, top, Endpoint{Start: 300, End: 400, Top: 34, Bottom: 56}, nil, 4},
		{"below_behind", ganttdata.FinishStart, top, Endpoint{Start: 0, End: 50, Top: 34, Bottom: 56}, nil, 4},
		{"below_both_start", ganttdata.StartStart, top, Endpoint{Start: 300, End: 400, Top: 34, Bottom: 56}, nil, 4},
		{"below_both_finish", ganttdata.FinishFinish, top, Endpoint{Start: 0, End: 50, Top: 34, Bottom: 56}, nil, 4},
		{"below_start_finish", ganttdata.StartFinish, top, Endpoint{Start: 0, End: 50, Top: 34, Bottom: 56}, nil, 4},
		{"above_forward", ganttdata.FinishStart, Endpoint{Start: 100, End: 200, Top: 34, Bottom: 56}, Endpoint{Start: 300, End: 400, Top: 4, Bottom: 26}, nil, 4},
		{"above_both_start", ganttdata.StartStart, Endpoint{Start: 100, End: 200, Top: 34, Bottom: 56}, Endpoint{Start: 0, End: 50, Top: 4, Bottom: 26}, nil, 4},
		// the successor flank column is the predecessor's
		{"aligned_flanks", ganttdata.FinishStart, top, Endpoint{Start: 220, End: 300, Top: 34, Bottom: 56}, nil, 2},
		{
			"below_channel", ganttdata.FinishStart, top, Endpoint{Start: 300, End: 400, Top: 64, Bottom: 86},
			[]*geo.Box{geo.NewBox(geo.NewPoint(250, 34), 80, 22)}, 6,
		},
		{
			"above_channel", ganttdata.FinishStart, Endpoint{Start: 100, End: 200, Top: 64, Bottom: 86}, Endpoint{Start: 300, End: 400, Top: 4, Bottom: 26},
			[]*geo.Box{geo.NewBox(geo.NewPoint(250, 34), 80, 22)}, 6,
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := params(tc.typ, tc.pred, tc.succ)
			p.Obstacles = tc.obstacles
			l := Compute(p)
			assert.Equal(t, tc.exp, len(l.Route)-2)
			assert.Equal(t, tc.exp, strings.Count(l.D, "A "))
			for _, s := range l.Route.Segments() {
				assert.True(t, s.IsHorizontal() || s.IsVertical())
			}
		})
	}
}

func TestRTL(t *testing.T) {
	t.Parallel()

	a := Endpoint{Start: 0, End: 100, Top: 4, Bottom: 26}
	b := Endpoint{Start: 100, End: 200, Top: 34, Bottom: 56}
	p := params(ganttdata.FinishStart, a, b)
	p.Space = ganttshape.Space{Width: 300, RTL: true}
	l := Compute(p)

	assert.Equal(t, "(200.5, 15.5), (190.5, 15.5), (190.5, 32.5), (210.5, 32.5), (210.5, 45.5), (200.5, 45.5)", geo.Points(l.Route).ToString())
}

func TestStraight(t *testing.T) {
	t.Parallel()

	pred := Endpoint{Start: 0, End: 100, Top: 4, Bottom: 26}
	succ := Endpoint{Start: 150, End: 200, Top: 34, Bottom: 56}
	p := params(ganttdata.FinishStart, pred, succ)
	p.Style = ganttdata.LineStraight

	assert.Equal(t, "M 100.5 26.5 L 150.5 34.5", Compute(p).D)

	p.ThroughMidpoint = true
	assert.Equal(t, "M 100.5 15.5 L 150.5 45.5", Compute(p).D)

	// successor above
	p.ThroughMidpoint = false
	p.Pred, p.Succ = succ, pred
	p.Type = ganttdata.StartFinish
	assert.Equal(t, "M 150.5 34.5 L 100.5 26.5", Compute(p).D)
}

func TestConflicts(t *testing.T) {
	t.Parallel()

	refs := []Ref{
		{ID: "ab", PredID: "A", SuccID: "B", Type: ganttdata.FinishStart},
		{ID: "ac", PredID: "A", SuccID: "C", Type: ganttdata.FinishStart},
		{ID: "bc", PredID: "B", SuccID: "C", Type: ganttdata.StartStart},
		{ID: "de", PredID: "D", SuccID: "E", Type: ganttdata.FinishFinish},
	}
	c := Conflicts(refs)
	// ab enters B's start, bc leaves B's start
	assert.Equal(t, ConflictBoth, c["ab"])
	assert.Equal(t, ConflictBoth, c["ac"])
	assert.Equal(t, ConflictBoth, c["bc"])
	assert.Equal(t, ConflictNone, c["de"])

	c = Conflicts(refs[3:])
	assert.Equal(t, ConflictNone, c["de"])

	c = Conflicts([]Ref{
		{ID: "x", PredID: "A", SuccID: "B", Type: ganttdata.FinishStart},
		{ID: "y", PredID: "A", SuccID: "C", Type: ganttdata.FinishFinish},
	})
	assert.Equal(t, ConflictPredecessor, c["x"])
	assert.Equal(t, ConflictPredecessor, c["y"])

	c = Conflicts([]Ref{
		{ID: "x", PredID: "A", SuccID: "C", Type: ganttdata.FinishStart},
		{ID: "y", PredID: "B", SuccID: "C", Type: ganttdata.StartStart},
	})
	assert.Equal(t, ConflictSuccessor, c["x"])
	assert.Equal(t, ConflictSuccessor, c["y"])
}

func TestMarkers(t *testing.T) {
	t.Parallel()

	s, e := Markers(ConflictNone)
	assert.Equal(t, MarkerCircle, s)
	assert.Equal(t, MarkerArrow, e)
	s, e = Markers(ConflictBoth)
	assert.Equal(t, MarkerCircleOpen, s)
	assert.Equal(t, MarkerArrowOpen, e)

	arrow := ArrowPath(geo.Route{geo.NewPoint(0, 0), geo.NewPoint(10, 0)}, 4, svg.FullPrecision)
	assert.Equal(t, "M 10 0 L 6 2 L 6 -2 Z", arrow)
	assert.Equal(t, "", ArrowPath(geo.Route{geo.NewPoint(0, 0)}, 4, svg.FullPrecision))

	assert.Equal(t, "M 8 10 A 2 2 0 1 1 12 10 A 2 2 0 1 1 8 10 Z", CirclePath(geo.NewPoint(10, 10), 2, svg.FullPrecision))
}
