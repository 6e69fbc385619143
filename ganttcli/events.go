package ganttcli

import (
	"context"
	"fmt"
	"time"
)

// event is a viewport or selection input sent by the watch page.
type event struct {
	Type string `json:"type"`

	DX     float64  `json:"dx,omitempty"`
	DY     float64  `json:"dy,omitempty"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	Factor float64  `json:"factor,omitempty"`
	Width  float64  `json:"width,omitempty"`
	Height float64  `json:"height,omitempty"`
	ID     string   `json:"id,omitempty"`
	IDs    []string `json:"ids,omitempty"`
}

// handleEvent applies ev to the chart. A nil result means nothing changed, which
// includes inputs dropped while a transition plays.
func (w *watcher) handleEvent(ctx context.Context, ev event) (*renderResult, error) {
	w.chartMu.Lock()
	defer w.chartMu.Unlock()

	c := w.chart
	changed := false
	switch ev.Type {
	case "scroll":
		changed = c.ScrollBy(ctx, ev.DX, ev.DY)
	case "zoom":
		changed = c.ZoomBy(ctx, ev.Factor, ev.X)
	case "resize":
		if ev.Width <= 0 || ev.Height <= 0 {
			return nil, fmt.Errorf("invalid size %gx%g", ev.Width, ev.Height)
		}
		c.Resize(ctx, ev.Width, ev.Height)
		changed = true
	case "expand":
		changed = c.Expand(ctx, ev.ID)
	case "collapse":
		changed = c.Collapse(ctx, ev.ID)
	case "select":
		changed = c.Select(ctx, ev.IDs)
	case "dragStart":
		changed = c.BeginDrag(ctx, ev.ID, ev.X, ev.Y)
	case "dragMove":
		if c.DragMove(ctx, ev.X, ev.Y) {
			c.Frame(ctx, time.Now())
			changed = true
		}
	case "dragCancel":
		if c.Dragging() {
			c.CancelDrag(ctx)
			changed = true
		}
	case "dragEnd":
		id := c.DragTaskID()
		opts, err := c.EndDrag(ctx)
		if err != nil {
			return nil, err
		}
		if _, t := opts.FindTask(id); t != nil {
			w.ms.Log.Info.Printf("rescheduled %s to %v - %v", id, t.Start, t.End)
		}
		changed = true
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if !changed {
		return nil, nil
	}
	return w.snapshotLocked(ctx)
}
