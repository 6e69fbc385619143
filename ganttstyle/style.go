// Package ganttstyle holds the numeric and color constants the layout and
// renderers read. Values can be overridden from a TOML file.
package ganttstyle

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"oss.terrastruct.com/xdefer"
)

type Style struct {
	RowPadding     float64 `toml:"row_padding"`
	TaskHeight     float64 `toml:"task_height"`
	MilestoneSize  float64 `toml:"milestone_size"`
	BaselineHeight float64 `toml:"baseline_height"`
	BaselineGap    float64 `toml:"baseline_gap"`
	ProgressInset  float64 `toml:"progress_inset"`
	// OverlapOffset is how far a staggered task is pushed off the row baseline.
	OverlapOffset     float64 `toml:"overlap_offset"`
	GridlineWidth     float64 `toml:"gridline_width"`
	TaskBorderRadius  float64 `toml:"task_border_radius"`
	SummaryThickness  float64 `toml:"summary_thickness"`
	ResizeHandleWidth float64 `toml:"resize_handle_width"`
	RingOffset        float64 `toml:"ring_offset"`
	LabelGap          float64 `toml:"label_gap"`
	FontSize          float64 `toml:"font_size"`

	DependencyFlank        float64 `toml:"dependency_flank"`
	DependencyCornerRadius float64 `toml:"dependency_corner_radius"`
	DependencyGuideGap     float64 `toml:"dependency_guide_gap"`
	DependencyMarkerRadius float64 `toml:"dependency_marker_radius"`
	DependencyArrowSize    float64 `toml:"dependency_arrow_size"`

	AnimationDuration Duration `toml:"animation_duration"`

	Background     string  `toml:"background"`
	GridlineStroke string  `toml:"gridline_stroke"`
	TaskFill       string  `toml:"task_fill"`
	SummaryFill    string  `toml:"summary_fill"`
	MilestoneFill  string  `toml:"milestone_fill"`
	BaselineFill   string  `toml:"baseline_fill"`
	ProgressFill   string  `toml:"progress_fill"`
	OvertimeFill   string  `toml:"overtime_fill"`
	DowntimeFill   string  `toml:"downtime_fill"`
	SelectedStroke string  `toml:"selected_stroke"`
	HoverStroke    string  `toml:"hover_stroke"`
	FocusStroke    string  `toml:"focus_stroke"`
	DependencyLine string  `toml:"dependency_line"`
	LabelColor     string  `toml:"label_color"`
	DimAmount      float64 `toml:"dim_amount"`
	PlaceholderFg  string  `toml:"placeholder_fg"`

	// Task counts on screen above which path coordinates lose precision.
	MediumDensity int `toml:"medium_density"`
	HighDensity   int `toml:"high_density"`
}

// Duration decodes TOML strings like "300ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() *Style {
	return &Style{
		RowPadding:        4,
		TaskHeight:        22,
		MilestoneSize:     16,
		BaselineHeight:    4,
		BaselineGap:       2,
		ProgressInset:     0,
		OverlapOffset:     8,
		GridlineWidth:     1,
		TaskBorderRadius:  2,
		SummaryThickness:  4,
		ResizeHandleWidth: 6,
		RingOffset:        2,
		LabelGap:          6,
		FontSize:          12,

		DependencyFlank:        10,
		DependencyCornerRadius: 4,
		DependencyGuideGap:     6,
		DependencyMarkerRadius: 2.5,
		DependencyArrowSize:    5,

		AnimationDuration: Duration{300 * time.Millisecond},

		Background:     "#ffffff",
		GridlineStroke: "#e4e6ea",
		TaskFill:       "#0d32b2",
		SummaryFill:    "#4a6ff3",
		MilestoneFill:  "#0a0f25",
		BaselineFill:   "#8a91a8",
		ProgressFill:   "#0a0f25",
		OvertimeFill:   "#d2206a",
		DowntimeFill:   "#f7ce4c",
		SelectedStroke: "#0b61d6",
		HoverStroke:    "#676c7e",
		FocusStroke:    "#0a0f25",
		DependencyLine: "#676c7e",
		LabelColor:     "#0a0f25",
		DimAmount:      0.7,
		PlaceholderFg:  "#676c7e",

		MediumDensity: 500,
		HighDensity:   2000,
	}
}

// Load decodes the TOML file at path on top of the defaults.
func Load(path string) (_ *Style, err error) {
	defer xdefer.Errorf(&err, "failed to load style %q", path)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(string(b))
}

func Decode(s string) (*Style, error) {
	st := Default()
	md, err := toml.Decode(s, st)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &UnknownKeyError{Key: undecoded[0].String()}
	}
	return st, nil
}

type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return "unknown style key " + e.Key
}

// Precision is the number of decimals kept in path coordinates for a screen
// showing taskCount tasks. -1 keeps full precision.
func (st *Style) Precision(taskCount int) int {
	switch {
	case taskCount >= st.HighDensity:
		return 0
	case taskCount >= st.MediumDensity:
		return 1
	default:
		return -1
	}
}
