package ganttcli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"cdr.dev/slog"

	"oss.terrastruct.com/xdefer"
	"oss.terrastruct.com/xjson"

	"oss.terrastruct.com/gantt/gantt"
	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttlayout"
	"oss.terrastruct.com/gantt/ganttstyle"
	"oss.terrastruct.com/gantt/ganttsvg"
	"oss.terrastruct.com/gantt/lib/log"
	"oss.terrastruct.com/gantt/lib/xmain"
)

const defaultTimeout = time.Minute

type chartOpts struct {
	width      float64
	height     float64
	scrollLeft float64
	scrollTop  float64
	rtl        bool
	depStyle   ganttdata.LineStyle
	style      *ganttstyle.Style
}

// loadOptions reads and parses the chart at inputPath and applies the flag overrides.
func loadOptions(ms *xmain.State, o chartOpts, inputPath string) (_ *ganttdata.Options, err error) {
	defer xdefer.Errorf(&err, "failed to load %s", ms.HumanPath(inputPath))

	b, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}
	opts, err := ganttdata.Parse(inputPath, b)
	if err != nil {
		return nil, err
	}
	if o.rtl {
		opts.Direction = ganttdata.RTL
	}
	if o.depStyle != "" {
		opts.DependencyLineStyle = o.depStyle
	}
	return opts, nil
}

func newChart(o chartOpts) *gantt.Chart {
	return gantt.New(gantt.Config{Style: o.style, Width: o.width, Height: o.height})
}

// renderFile writes the initial viewport of the chart at inputPath as SVG. An onDisplay
// transition is kept in the output as SMIL animations unless an initial scroll is
// requested, which needs the transition finished first.
func renderFile(ctx context.Context, ms *xmain.State, o chartOpts, inputPath, outputPath string) error {
	start := time.Now()
	opts, err := loadOptions(ms, o, inputPath)
	if err != nil {
		return err
	}

	c := newChart(o)
	status := c.Render(ctx, opts)
	switch status {
	case gantt.StatusInvalid:
		ms.Log.Warn.Printf("invalid chart options: %v", c.Err())
	case gantt.StatusNoData:
		ms.Log.Warn.Printf("%s has no rows", ms.HumanPath(inputPath))
	}
	if o.scrollLeft != 0 || o.scrollTop != 0 {
		c.FinishAnimation()
		c.ScrollTo(ctx, o.scrollLeft, o.scrollTop)
	}

	res, err := snapshot(ctx, c, o.style)
	if err != nil {
		return err
	}
	err = ms.WritePath(outputPath, []byte(res.SVG))
	if err != nil {
		return err
	}
	if outputPath != "-" {
		ms.Log.Success.Printf("successfully rendered %s to %s in %s", ms.HumanPath(inputPath), ms.HumanPath(outputPath), time.Since(start))
	}
	return nil
}

type renderResult struct {
	SVG    string          `json:"svg"`
	Status string          `json:"status"`
	Scroll scrollState     `json:"scroll"`
	Ops    json.RawMessage `json:"ops,omitempty"`
	Err    string          `json:"err"`
}

type scrollState struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Zoom   float64 `json:"zoom"`
}

type opsSummary struct {
	Added   []string `json:"added,omitempty"`
	Updated []string `json:"updated,omitempty"`
	Deleted []string `json:"deleted,omitempty"`
}

func summarize(ops ganttlayout.RenderOperations) opsSummary {
	var s opsSummary
	for _, op := range ops.RowsAdd {
		s.Added = append(s.Added, op.RowObj.ID)
	}
	for _, op := range ops.RowsUpdate {
		s.Updated = append(s.Updated, op.RowObj.ID)
	}
	for _, r := range ops.RowsDelete {
		s.Deleted = append(s.Deleted, r.ID)
	}
	sort.Strings(s.Added)
	sort.Strings(s.Updated)
	sort.Strings(s.Deleted)
	return s
}

// snapshot serializes the current scene of c along with the viewport state and the
// row operations of the last render.
func snapshot(ctx context.Context, c *gantt.Chart, st *ganttstyle.Style) (*renderResult, error) {
	svg, err := ganttsvg.Render(c.Scene(), &ganttsvg.RenderOpts{
		Background: st.Background,
		Animate:    c.Playing(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render svg: %w", err)
	}
	s := c.Scroll()
	res := &renderResult{
		SVG:    string(svg),
		Status: c.Status().String(),
		Scroll: scrollState{Left: s.Left, Top: s.Top, Width: s.Width, Height: s.Height, Zoom: c.Zoom()},
		Ops:    json.RawMessage(xjson.MarshalIndent(summarize(c.Ops()))),
	}
	if c.Err() != nil {
		res.Err = c.Err().Error()
	}
	log.Debug(ctx, "snapshot", slog.F("status", res.Status), slog.F("bytes", len(svg)), slog.F("ops", string(res.Ops)))
	return res, nil
}
