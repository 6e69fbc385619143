package gantt

import (
	"context"
	"errors"
	"fmt"

	"cdr.dev/slog"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttlayout"
	"oss.terrastruct.com/gantt/lib/log"
)

const (
	// Pointer distance from a viewport edge that scrolls during a drag.
	autoScrollMargin = 20
	autoScrollStep   = 10
)

var (
	ErrNoDrag = errors.New("no drag in progress")
	ErrNoTask = errors.New("no such task")
)

type dragSession struct {
	taskID string
	// Pointer position in viewport pixels.
	originX float64
	x, y    float64
	scroll  ganttlayout.Scroll
}

// BeginDrag starts moving task id with the pointer at x, y in viewport pixels.
func (c *Chart) BeginDrag(ctx context.Context, id string, x, y float64) bool {
	if !c.interactive(ctx, "drag") {
		return false
	}
	t := c.lm.Layout().Task(id)
	if t == nil {
		return false
	}
	c.drag = &dragSession{taskID: id, originX: x, x: x, y: y, scroll: c.scroll}
	c.throttle.Reset()
	c.throttle.Seed(x, y)
	c.lm.EnsureInDOM(t, ganttlayout.FullRender)
	log.Debug(ctx, "drag started", slog.F("task", id))
	return true
}

func (c *Chart) Dragging() bool {
	return c.drag != nil
}

// DragTaskID is the id of the task being dragged, or "".
func (c *Chart) DragTaskID() string {
	if c.drag == nil {
		return ""
	}
	return c.drag.taskID
}

// DragMove records the pointer. Feedback renders on the next frame; moves that do not
// change the position are dropped.
func (c *Chart) DragMove(ctx context.Context, x, y float64) bool {
	d := c.drag
	if d == nil {
		return false
	}
	return c.throttle.Request(x, y, func() {
		d.x, d.y = x, y
		c.dragFeedback(ctx)
	})
}

// DragOffset is the physical distance the task has moved, auto scrolling included.
func (c *Chart) DragOffset() float64 {
	d := c.drag
	if d == nil {
		return 0
	}
	return d.x - d.originX + c.scroll.Left - d.scroll.Left
}

func (c *Chart) dragFeedback(ctx context.Context) {
	d := c.drag
	t := c.lm.Layout().Task(d.taskID)
	if t == nil {
		c.CancelDrag(ctx)
		return
	}
	step := 0.0
	switch {
	case d.x < autoScrollMargin:
		step = -autoScrollStep
	case d.x > c.scroll.Width-autoScrollMargin:
		step = autoScrollStep
	}
	if step != 0 {
		left := c.scroll.Left
		c.scroll.Left += step
		c.clampScroll()
		if c.scroll.Left != left {
			c.translate(ctx)
		}
	}
	c.lm.EnsureInDOM(t, ganttlayout.FullRender)
	t.Node.Group.TX = c.DragOffset()
	c.lm.RenderViewportDependencyLines(ctx, c.Viewport(), ganttlayout.ActionTranslate, t)
}

// CancelDrag puts the task and the viewport back where they were when the drag began.
func (c *Chart) CancelDrag(ctx context.Context) {
	d := c.drag
	if d == nil {
		return
	}
	c.drag = nil
	c.throttle.Reset()
	if t := c.lm.Layout().Task(d.taskID); t != nil && t.Node != nil {
		t.Node.Group.TX = 0
	}
	c.scroll.Left, c.scroll.Top = d.scroll.Left, d.scroll.Top
	c.translate(ctx)
	log.Debug(ctx, "drag cancelled", slog.F("task", d.taskID))
}

// EndDrag reschedules the dragged task by the time it moved and renders the result.
// It returns the new options.
func (c *Chart) EndDrag(ctx context.Context) (_ *ganttdata.Options, err error) {
	defer xdefer.Errorf(&err, "failed to end drag")

	d := c.drag
	if d == nil {
		return nil, ErrNoDrag
	}
	offset := c.DragOffset()
	c.drag = nil
	c.throttle.Reset()

	l := c.lm.Layout()
	t := l.Task(d.taskID)
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoTask, d.taskID)
	}
	if t.Node != nil {
		t.Node.Group.TX = 0
	}
	if offset == 0 {
		return c.opts, nil
	}
	if c.rtl() {
		offset = -offset
	}
	x0 := l.X(c.lm.Axis(), t.StartTime)
	dt := l.Time(c.lm.Axis(), x0+offset) - l.Time(c.lm.Axis(), x0)

	next := c.opts.Clone()
	_, raw := next.FindTask(d.taskID)
	if raw == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoTask, d.taskID)
	}
	shift(&raw.Start, dt)
	shift(&raw.End, dt)
	log.Debug(ctx, "drag committed", slog.F("task", d.taskID), slog.F("shift_ms", dt))
	c.Render(ctx, next)
	return next, nil
}

func shift(d *ganttdata.Date, dt int64) {
	if ms, ok := d.Millis(); ok {
		*d = ganttdata.NewDate(ms + dt)
	}
}
