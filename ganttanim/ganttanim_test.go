package ganttanim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttlayout"
	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/lib/log"
)

func TestLerpPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		from string
		to   string
		frac float64
		exp  string
		ok   bool
	}{
		{
			name: "lines",
			from: "M 0 0 L 10 0",
			to:   "M 10 10 L 20 10",
			frac: 0.5,
			exp:  "M 5 5 L 15 5",
			ok:   true,
		},
		{
			name: "arc",
			from: "M 0 0 A 2 2 0 0 1 4 4",
			to:   "M 0 0 A 4 4 0 0 1 8 8",
			frac: 0.25,
			exp:  "M 0 0 A 2.5 2.5 0 0 1 5 5",
			ok:   true,
		},
		{
			name: "arc flag flips",
			from: "M 0 0 A 2 2 0 0 1 4 4",
			to:   "M 0 0 A 2 2 0 1 1 4 4",
		},
		{
			name: "different commands",
			from: "M 0 0 L 10 0",
			to:   "M 0 0 H 10",
		},
		{
			name: "extra segment",
			from: "M 0 0 L 10 0",
			to:   "M 0 0 L 10 0 L 10 10",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a, ok := parsePath(tc.from)
			require.True(t, ok)
			b, ok := parsePath(tc.to)
			require.True(t, ok)
			assert.Equal(t, tc.ok, compatible(a, b))
			if tc.ok {
				assert.Equal(t, tc.exp, lerpPath(a, b, tc.frac))
			}
		})
	}
}

func TestParallel(t *testing.T) {
	t.Parallel()

	n := ganttscene.NewNode("n", ganttscene.KindPath)
	n.D = "M 0 0 L 10 0"
	p := NewParallel(100 * time.Millisecond)
	p.Add(numTween(n, ganttscene.AttrTY, 0, 10))
	p.Add(pathTween(n, n.D, "M 0 10 L 10 10"))
	p.Add(pathTween(n, "M 0 10 L 10 10", "M 0 0 H 4"))

	var order []int
	p.OnEnd(func() { order = append(order, 1) })
	p.OnEnd(nil)
	p.OnEnd(func() { order = append(order, 2) })
	assert.Len(t, n.Animations, 3)
	assert.Equal(t, "0", n.Animations[0].From)
	assert.Equal(t, "10", n.Animations[0].To)

	assert.False(t, p.Step(50*time.Millisecond))
	assert.Equal(t, 5.0, n.TY)
	assert.Empty(t, order)
	select {
	case <-p.Done():
		t.Fatal("done before the end")
	default:
	}

	assert.True(t, p.Step(100*time.Millisecond))
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 10.0, n.TY)
	assert.Equal(t, "M 0 0 H 4", n.D)
	assert.Empty(t, n.Animations)
	<-p.Done()

	// ended groups run late registrations at once
	p.OnEnd(func() { order = append(order, 3) })
	assert.Equal(t, []int{1, 2, 3}, order)
	p.Stop()
}

func TestEase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ease(0))
	assert.Equal(t, 0.5, ease(0.5))
	assert.Equal(t, 1.0, ease(1))
	assert.Less(t, ease(0.25), 0.25)
	assert.Greater(t, ease(0.75), 0.75)
}

func task(id string, start, end int64) *ganttdata.Task {
	return &ganttdata.Task{ID: id, Start: ganttdata.NewDate(start), End: ganttdata.NewDate(end)}
}

func row(id string, tasks ...*ganttdata.Task) *ganttdata.Row {
	return &ganttdata.Row{ID: id, Tasks: tasks}
}

func options(rows ...*ganttdata.Row) *ganttdata.Options {
	opts := &ganttdata.Options{Start: ganttdata.NewDate(0), End: ganttdata.NewDate(1000), Rows: rows}
	opts.ApplyDefaults()
	return opts
}

func setup(t *testing.T, opts *ganttdata.Options, vp ganttlayout.Viewport) (context.Context, *ganttlayout.Manager, *Manager) {
	ctx := log.WithTB(context.Background(), t, nil)
	lm := ganttlayout.New(ganttlayout.Config{})
	a := New(lm)
	lm.CalcLayout(ctx, opts, 1000)
	lm.RenderViewport(ctx, vp, ganttlayout.ActionRefresh)
	lm.ResetRenderStates()
	return ctx, lm, a
}

func TestDataChange(t *testing.T) {
	t.Parallel()

	vp := ganttlayout.Viewport{MinRowInd: 0, MaxRowInd: 1, ViewStartTime: 0, ViewEndTime: 1000}
	ctx, lm, a := setup(t, options(
		row("r0", task("stay", 0, 100), task("move", 200, 300), task("gone", 400, 500)),
		row("r1", task("other", 0, 100)),
	), vp)
	goneNode := lm.Layout().Task("gone").Node
	moveNode := lm.Layout().Task("move").Node

	lm.CalcLayout(ctx, options(
		row("r0", task("stay", 0, 150)),
		row("r1", task("other", 0, 100), task("move", 200, 300), task("new", 600, 700)),
	), 1000)
	a.SetMode(ganttlayout.AnimationDataChange)
	a.PrepareForAnimations(ganttlayout.Scroll{Width: 1000, Height: 60})
	lm.RenderViewport(ctx, vp, ganttlayout.ActionAnimate)
	lm.RenderViewportDependencyLines(ctx, vp, ganttlayout.ActionAnimate, nil)

	completed := false
	p := a.TriggerAnimations(ctx, vp, func() { completed = true })
	require.True(t, a.Playing())
	assert.True(t, lm.Scene().HasAnimations())

	newNode := lm.Layout().Task("new").Node
	row1 := lm.Layout().Row("r1")
	assert.True(t, goneNode.Group.IsAttached())
	assert.Equal(t, 1.0, goneNode.Group.Opacity)
	assert.Equal(t, 0.0, newNode.Group.Opacity)
	// the moved task starts where it was on screen
	assert.Equal(t, row1.Node.Tasks, moveNode.Group.Parent)
	assert.Equal(t, lm.Layout().Task("move").Y-row1.Y, moveNode.Group.TY)

	p.Seek(0.5)
	assert.Equal(t, 0.5, newNode.Group.Opacity)
	assert.Equal(t, 0.5, goneNode.Group.Opacity)
	assert.False(t, completed)

	a.Stop()
	assert.True(t, completed)
	assert.False(t, a.Playing())
	assert.Equal(t, ganttlayout.AnimationNone, a.Mode())
	assert.False(t, goneNode.Group.IsAttached())
	assert.Equal(t, 1.0, newNode.Group.Opacity)
	assert.Equal(t, lm.Layout().Task("move").Y, moveNode.Group.TY)
	assert.False(t, lm.Scene().HasAnimations())
	assert.True(t, lm.Patch().Empty())
	assert.Equal(t, []string{"move", "new", "other", "stay"}, lm.RenderedTaskIDs())
}

func TestPrepareMaterializesTransition(t *testing.T) {
	t.Parallel()

	vp := ganttlayout.Viewport{MinRowInd: 0, MaxRowInd: 1, ViewStartTime: 0, ViewEndTime: 1000}
	ctx, lm, a := setup(t, options(
		row("r0", task("a", 0, 100)),
		row("r1", task("m", 200, 300)),
		row("r2", task("c", 0, 100)),
		row("r3", task("d", 0, 100)),
	), vp)
	require.Equal(t, []string{"r0", "r1"}, lm.RenderedRowIDs())

	lm.CalcLayout(ctx, options(
		row("n0", task("x", 0, 100)),
		row("n1", task("y", 0, 100)),
		row("r0", task("a", 0, 100)),
		row("r1"),
		row("r2", task("c", 0, 100)),
		row("r3", task("d", 0, 100), task("m", 200, 300)),
	), 1000)
	a.SetMode(ganttlayout.AnimationDataChange)
	scroll := ganttlayout.Scroll{Width: 1000, Height: 2 * lm.Layout().Rows[0].Height}
	ids := a.PrepareForAnimations(scroll)
	assert.Equal(t, []string{"n0", "n1", "r0", "r1", "r3"}, ids)
	// r3 is off screen at both ends but receives m
	assert.Equal(t, []string{"r0", "r1", "r3"}, lm.RenderedRowIDs())

	newVP := lm.ViewportFor(lm.Layout(), scroll)
	assert.Equal(t, 0, newVP.MinRowInd)
	assert.Equal(t, 1, newVP.MaxRowInd)
	lm.RenderViewport(ctx, newVP, ganttlayout.ActionAnimate)
	assert.Equal(t, []string{"n0", "n1", "r0", "r1", "r3"}, lm.RenderedRowIDs())

	a.TriggerAnimations(ctx, newVP, nil)
	a.Stop()
	assert.Equal(t, []string{"n0", "n1"}, lm.RenderedRowIDs())
	assert.Equal(t, []string{"x", "y"}, lm.RenderedTaskIDs())
}

func TestModeNone(t *testing.T) {
	t.Parallel()

	vp := ganttlayout.Viewport{MinRowInd: 0, MaxRowInd: 0, ViewStartTime: 0, ViewEndTime: 1000}
	ctx, lm, a := setup(t, options(row("r0", task("a", 0, 100))), vp)
	assert.Equal(t, ganttlayout.AnimationNone, a.GetAnimationMode())

	completed := false
	p := a.TriggerAnimations(ctx, vp, func() { completed = true })
	assert.True(t, p.Ended())
	assert.True(t, completed)
	assert.False(t, lm.Scene().HasAnimations())
	assert.Equal(t, []string{"a"}, lm.RenderedTaskIDs())
}

func TestOnDisplayFadesIn(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	lm := ganttlayout.New(ganttlayout.Config{})
	a := New(lm)
	lm.CalcLayout(ctx, options(row("r0", task("a", 0, 100))), 1000)
	vp := ganttlayout.Viewport{MinRowInd: 0, MaxRowInd: 0, ViewStartTime: 0, ViewEndTime: 1000}

	a.SetMode(ganttlayout.AnimationOnDisplay)
	lm.RenderViewport(ctx, vp, ganttlayout.ActionRefresh)
	n := lm.Layout().Task("a").Node
	assert.Equal(t, 0.0, n.Group.Opacity)
	assert.Equal(t, 0.0, lm.Layout().Row("r0").Node.Group.Opacity)

	p := a.TriggerAnimations(ctx, vp, nil)
	assert.Equal(t, 2, p.Len())
	assert.True(t, p.Step(a.Duration()))
	assert.Equal(t, 1.0, n.Group.Opacity)
	assert.Equal(t, []string{"a"}, lm.RenderedTaskIDs())
}
