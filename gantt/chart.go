// Package gantt is the chart component: it owns the options lifecycle, the scroll and
// zoom state and the placeholders, and drives the layout and animation managers.
package gantt

import (
	"context"
	"time"

	"cdr.dev/slog"

	"oss.terrastruct.com/gantt/ganttanim"
	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttlayout"
	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/ganttstyle"
	"oss.terrastruct.com/gantt/lib/go2"
	"oss.terrastruct.com/gantt/lib/log"
)

type Status int

const (
	StatusBlank Status = iota
	StatusContent
	StatusNoData
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusContent:
		return "content"
	case StatusNoData:
		return "noData"
	case StatusInvalid:
		return "invalidData"
	default:
		return "blank"
	}
}

const (
	noDataText  = "No Data"
	invalidText = "Invalid Data"
)

type Config struct {
	Style *ganttstyle.Style
	// Width and Height size the viewport in pixels.
	Width  float64
	Height float64
}

type Chart struct {
	style *ganttstyle.Style
	cache *ganttstyle.Cache
	scene *ganttscene.Scene
	lm    *ganttlayout.Manager
	anim  *ganttanim.Manager

	placeholder *ganttscene.Node

	opts   *ganttdata.Options
	status Status
	err    error

	scroll ganttlayout.Scroll
	zoom   float64
	ops    ganttlayout.RenderOperations

	animStart time.Time
	drag      *dragSession
	throttle  FrameThrottle
}

func New(cfg Config) *Chart {
	st := cfg.Style
	if st == nil {
		st = ganttstyle.Default()
	}
	c := &Chart{
		style: st,
		cache: ganttstyle.NewCache(st),
		scene: ganttscene.NewScene(cfg.Width, cfg.Height),
		zoom:  1,
		scroll: ganttlayout.Scroll{
			Width:  cfg.Width,
			Height: cfg.Height,
		},
	}
	c.lm = ganttlayout.New(ganttlayout.Config{
		Scene: c.scene,
		Style: st,
		Cache: c.cache,
	})
	c.anim = ganttanim.New(c.lm)
	c.placeholder = ganttscene.NewNode("placeholder", ganttscene.KindText)
	c.placeholder.Class = "placeholder"
	c.placeholder.Anchor = "middle"
	c.placeholder.Fill = st.LabelColor
	return c
}

func (c *Chart) Scene() *ganttscene.Scene { return c.scene }

func (c *Chart) Layout() *ganttlayout.Manager { return c.lm }

func (c *Chart) Animation() *ganttanim.Manager { return c.anim }

func (c *Chart) Status() Status { return c.status }

// Err is the validation error behind StatusInvalid.
func (c *Chart) Err() error { return c.err }

// Options are the options of the last render, with defaults applied.
func (c *Chart) Options() *ganttdata.Options { return c.opts }

func (c *Chart) Scroll() ganttlayout.Scroll { return c.scroll }

func (c *Chart) Zoom() float64 { return c.zoom }

// Ops is the result of the last viewport pass.
func (c *Chart) Ops() ganttlayout.RenderOperations { return c.ops }

func (c *Chart) Viewport() ganttlayout.Viewport {
	return c.lm.ViewportFor(c.lm.Layout(), c.scroll)
}

// Playing reports whether a transition is running. Viewport mutations are ignored
// while it does.
func (c *Chart) Playing() bool {
	return c.anim.Playing()
}

// Render replaces the chart options. Configuration errors and empty data turn into
// placeholders and are never returned as errors.
func (c *Chart) Render(ctx context.Context, opts *ganttdata.Options) Status {
	c.FinishAnimation()
	c.cache.Clear()
	c.drag = nil
	c.throttle.Reset()

	if opts == nil {
		opts = &ganttdata.Options{}
	}
	opts = opts.Clone()
	opts.ApplyDefaults()

	if err := opts.Validate(); err != nil {
		log.Warn(ctx, "rendering invalid data placeholder", slog.Error(err))
		c.showPlaceholder(StatusInvalid, invalidText)
		c.opts, c.err = opts, err
		return c.status
	}
	if opts.Empty() {
		log.Debug(ctx, "rendering no data placeholder")
		c.showPlaceholder(StatusNoData, noDataText)
		c.opts, c.err = opts, nil
		return c.status
	}

	first := c.status != StatusContent
	if first {
		c.placeholder.Remove()
		c.lm.Reset()
		c.scroll.Left, c.scroll.Top = 0, 0
	}
	c.opts, c.err = opts, nil
	c.status = StatusContent

	mode := ganttlayout.AnimationNone
	switch {
	case first && opts.Animation.OnDisplay == "auto":
		mode = ganttlayout.AnimationOnDisplay
	case !first && opts.Animation.OnDataChange == "auto":
		mode = ganttlayout.AnimationDataChange
	}

	c.lm.CalcLayout(ctx, opts, c.contentWidth())
	c.lm.SetSelection(opts.Selection)
	c.clampScroll()
	c.render(ctx, mode)
	return c.status
}

func (c *Chart) showPlaceholder(s Status, text string) {
	c.lm.Reset()
	c.status = s
	c.placeholder.Text = text
	c.placeholder.X = c.scroll.Width / 2
	c.placeholder.Y = c.scroll.Height / 2
	c.lm.Content().TX, c.lm.Content().TY = 0, 0
	if c.placeholder.Parent == nil {
		c.scene.Root.AppendChild(c.placeholder)
	}
}

func (c *Chart) contentWidth() float64 {
	return c.scroll.Width * c.zoom
}

// render draws the current viewport, animating with mode.
func (c *Chart) render(ctx context.Context, mode ganttlayout.AnimationMode) {
	c.anim.SetMode(mode)
	vp := c.Viewport()
	if mode == ganttlayout.AnimationDataChange {
		c.anim.PrepareForAnimations(c.scroll)
		c.ops = c.lm.RenderViewport(ctx, vp, ganttlayout.ActionAnimate)
		c.lm.RenderViewportDependencyLines(ctx, vp, ganttlayout.ActionAnimate, nil)
	} else {
		c.ops = c.lm.RenderViewport(ctx, vp, ganttlayout.ActionRefresh)
		c.lm.RenderViewportDependencyLines(ctx, vp, ganttlayout.ActionRefresh, nil)
	}
	c.applyScroll()

	if mode == ganttlayout.AnimationNone {
		c.lm.ResetRenderStates()
		return
	}
	c.animStart = time.Time{}
	c.anim.TriggerAnimations(ctx, vp, nil)
}

func (c *Chart) applyScroll() {
	content := c.lm.Content()
	content.TX = -c.scroll.Left
	content.TY = -c.scroll.Top
}

func (c *Chart) clampScroll() {
	maxLeft := go2.Max(0, c.contentWidth()-c.scroll.Width)
	maxTop := 0.0
	if c.lm.Layout() != nil {
		maxTop = go2.Max(0, c.lm.GetContentHeight()-c.scroll.Height)
	}
	c.scroll.Left = go2.Max(0, go2.Min(c.scroll.Left, maxLeft))
	c.scroll.Top = go2.Max(0, go2.Min(c.scroll.Top, maxTop))
}

// interactive reports whether a viewport mutation may run now.
func (c *Chart) interactive(ctx context.Context, what string) bool {
	if c.status != StatusContent {
		return false
	}
	if c.Playing() {
		log.Debug(ctx, "ignoring input during animation", slog.F("input", what))
		return false
	}
	return true
}

// ScrollBy pans the viewport by dx, dy pixels.
func (c *Chart) ScrollBy(ctx context.Context, dx, dy float64) bool {
	return c.ScrollTo(ctx, c.scroll.Left+dx, c.scroll.Top+dy)
}

func (c *Chart) ScrollTo(ctx context.Context, left, top float64) bool {
	if !c.interactive(ctx, "scroll") {
		return false
	}
	c.scroll.Left, c.scroll.Top = left, top
	c.clampScroll()
	c.translate(ctx)
	return true
}

func (c *Chart) translate(ctx context.Context) {
	vp := c.Viewport()
	c.ops = c.lm.RenderViewport(ctx, vp, ganttlayout.ActionTranslate)
	c.lm.RenderViewportDependencyLines(ctx, vp, ganttlayout.ActionTranslate, nil)
	c.applyScroll()
}

// ZoomBy scales the time axis by factor, keeping the time under anchorX, a viewport
// relative pixel offset, in place. The content never gets narrower than the viewport.
func (c *Chart) ZoomBy(ctx context.Context, factor, anchorX float64) bool {
	if factor <= 0 || !c.interactive(ctx, "zoom") {
		return false
	}
	l := c.lm.Layout()
	oldWidth := c.contentWidth()
	anchor := l.Time(c.lm.Axis(), c.flipX(c.scroll.Left+anchorX, oldWidth))

	c.zoom = go2.Max(1, c.zoom*factor)
	width := c.contentWidth()
	c.lm.SetWidth(width)
	c.scroll.Left = c.flipX(l.X(c.lm.Axis(), anchor), width) - anchorX
	c.clampScroll()

	vp := c.Viewport()
	c.ops = c.lm.RenderViewport(ctx, vp, ganttlayout.ActionScale)
	c.lm.RenderViewportDependencyLines(ctx, vp, ganttlayout.ActionScale, nil)
	c.applyScroll()
	return true
}

func (c *Chart) rtl() bool {
	return c.opts != nil && c.opts.Direction == ganttdata.RTL
}

// flipX converts between physical and logical x. The mapping is its own inverse.
func (c *Chart) flipX(x, width float64) float64 {
	if c.rtl() {
		return width - x
	}
	return x
}

// Resize changes the viewport size. A running transition is finished first.
func (c *Chart) Resize(ctx context.Context, w, h float64) {
	c.FinishAnimation()
	c.scroll.Width, c.scroll.Height = w, h
	c.scene.Width, c.scene.Height = w, h
	if c.status != StatusContent {
		if c.placeholder.Parent != nil {
			c.placeholder.X, c.placeholder.Y = w/2, h/2
		}
		return
	}
	c.lm.SetWidth(c.contentWidth())
	c.clampScroll()
	c.render(ctx, ganttlayout.AnimationNone)
}

// Expand shows the children of row id.
func (c *Chart) Expand(ctx context.Context, id string) bool {
	if !c.interactive(ctx, "expand") {
		return false
	}
	if !c.lm.Expand(ctx, id) {
		return false
	}
	c.afterStructureChange(ctx)
	return true
}

func (c *Chart) Collapse(ctx context.Context, id string) bool {
	if !c.interactive(ctx, "collapse") {
		return false
	}
	if !c.lm.Collapse(ctx, id) {
		return false
	}
	c.afterStructureChange(ctx)
	return true
}

func (c *Chart) afterStructureChange(ctx context.Context) {
	c.clampScroll()
	mode := ganttlayout.AnimationNone
	if c.opts.Animation.OnDataChange == "auto" {
		mode = ganttlayout.AnimationDataChange
	}
	c.render(ctx, mode)
}

// Select replaces the selection and redraws the viewport and its dependency lines.
func (c *Chart) Select(ctx context.Context, ids []string) bool {
	if !c.interactive(ctx, "select") {
		return false
	}
	c.opts.Selection = append([]string(nil), ids...)
	c.lm.SetSelection(ids)
	c.render(ctx, ganttlayout.AnimationNone)
	return true
}

// Frame advances a running transition to now and runs throttled drag feedback.
// Hosts call it once per display frame.
func (c *Chart) Frame(ctx context.Context, now time.Time) {
	if c.Playing() {
		if c.animStart.IsZero() {
			c.animStart = now
		}
		if g := c.anim.Group(); g != nil {
			g.Step(now.Sub(c.animStart))
		}
	}
	c.throttle.Flush()
}

// FinishAnimation jumps a running transition to its end.
func (c *Chart) FinishAnimation() {
	c.anim.Stop()
}
