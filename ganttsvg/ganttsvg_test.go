package ganttsvg

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/diff"

	"oss.terrastruct.com/gantt/gantt"
	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/ganttscene"
	"oss.terrastruct.com/gantt/lib/log"
	"oss.terrastruct.com/gantt/lib/version"
)

func header(w, h int) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?><svg xmlns="http://www.w3.org/2000/svg" data-gantt-version="%s" width="%d" height="%d" viewBox="0 0 %d %d">`,
		version.Version, w, h, w, h)
}

func TestRender(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		build func(s *ganttscene.Scene)
		opts  *RenderOpts
		exp   string
	}{
		{
			name:  "empty",
			build: func(s *ganttscene.Scene) {},
			exp:   header(101, 50) + "</svg>",
		},
		{
			name:  "background",
			build: func(s *ganttscene.Scene) {},
			opts:  &RenderOpts{Background: "#fff"},
			exp:   header(101, 50) + `<rect class="background" x="0" y="0" width="101" height="50" fill="#fff"/></svg>`,
		},
		{
			name: "elements",
			build: func(s *ganttscene.Scene) {
				g := ganttscene.NewNode("r0", ganttscene.KindGroup)
				g.Class = "row"
				g.TY = 10
				s.Root.AppendChild(g)

				rect := ganttscene.NewNode("", ganttscene.KindRect)
				rect.X, rect.Y, rect.Width, rect.Height = 1, 2, 3.333, 4
				rect.Fill = "#abc"
				g.AppendChild(rect)

				text := ganttscene.NewNode("", ganttscene.KindText)
				text.X, text.Y = 5, 6
				text.Text = "a<b"
				text.Anchor = "middle"
				text.Opacity = 0.5
				g.AppendChild(text)

				line := ganttscene.NewNode("", ganttscene.KindLine)
				line.X, line.Y, line.X2, line.Y2 = 0, 0, 0, 50
				line.Stroke = "red"
				line.StrokeWidth = 1
				s.Root.AppendChild(line)

				s.Root.AppendChild(ganttscene.NewNode("skipped", ganttscene.KindPath))
			},
			exp: header(101, 50) +
				`<g id="r0" class="row" transform="translate(0 10)">` +
				`<rect x="1" y="2" width="3.33" height="4" fill="#abc"/>` +
				`<text x="5" y="6" opacity="0.5" text-anchor="middle">a&lt;b</text>` +
				`</g>` +
				`<line x1="0" y1="0" x2="0" y2="50" stroke="red" stroke-width="1"/>` +
				`</svg>`,
		},
		{
			name: "animations",
			build: func(s *ganttscene.Scene) {
				g := ganttscene.NewNode("t", ganttscene.KindGroup)
				g.TX = 5
				g.Opacity = 0
				g.Animate(ganttscene.Animation{Attr: ganttscene.AttrTY, From: "0", To: "20", Dur: 300 * time.Millisecond})
				g.Animate(ganttscene.Animation{Attr: ganttscene.AttrOpacity, From: "0", To: "1", Dur: 300 * time.Millisecond})
				s.Root.AppendChild(g)

				p := ganttscene.NewNode("", ganttscene.KindPath)
				p.D = "M 0 0 L 10 0"
				p.Animate(ganttscene.Animation{Attr: ganttscene.AttrD, From: "M 0 0 L 10 0", To: "M 0 0 L 20 0", Begin: 100 * time.Millisecond, Dur: 200 * time.Millisecond})
				g.AppendChild(p)
			},
			opts: &RenderOpts{Animate: true},
			exp: header(101, 50) +
				`<g id="t" opacity="0" transform="translate(5 0)">` +
				`<animate attributeName="opacity" from="0" to="1" begin="0ms" dur="300ms" fill="freeze"/>` +
				`<animateTransform attributeName="transform" type="translate" from="5 0" to="5 20" begin="0ms" dur="300ms" fill="freeze"/>` +
				`<path d="M 0 0 L 10 0">` +
				`<animate attributeName="d" from="M 0 0 L 10 0" to="M 0 0 L 20 0" begin="100ms" dur="200ms" fill="freeze"/>` +
				`</path>` +
				`</g>` +
				`</svg>`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := ganttscene.NewScene(100.4, 50)
			tc.build(s)
			got, err := Render(s, tc.opts)
			if err != nil {
				t.Fatal(err)
			}
			ds, err := diff.Strings(tc.exp, string(got))
			if err != nil {
				t.Fatal(err)
			}
			if ds != "" {
				t.Fatalf("unexpected svg:\n%s", ds)
			}
		})
	}
}

func TestRenderUnknownKind(t *testing.T) {
	t.Parallel()

	s := ganttscene.NewScene(10, 10)
	s.Root.AppendChild(ganttscene.NewNode("x", ganttscene.Kind("circle")))
	_, err := Render(s, nil)
	assert.Error(t, err)
}

func TestRenderChart(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	c := gantt.New(gantt.Config{Width: 800, Height: 200})
	opts := &ganttdata.Options{
		Start:     ganttdata.NewDate(0),
		End:       ganttdata.NewDate(1000),
		Animation: ganttdata.Animation{OnDisplay: "auto"},
		Rows: []*ganttdata.Row{{
			ID:    "r0",
			Label: "Build",
			Tasks: []*ganttdata.Task{{ID: "compile", Start: ganttdata.NewDate(0), End: ganttdata.NewDate(400)}},
		}},
	}
	require.Equal(t, gantt.StatusContent, c.Render(ctx, opts))
	require.True(t, c.Playing())

	still, err := Render(c.Scene(), nil)
	require.NoError(t, err)
	assert.Contains(t, string(still), `id="task:compile"`)
	assert.NotContains(t, string(still), "<animate")

	animated, err := Render(c.Scene(), &RenderOpts{Animate: true})
	require.NoError(t, err)
	assert.Contains(t, string(animated), `<animate attributeName="opacity"`)

	c.FinishAnimation()
	final, err := Render(c.Scene(), &RenderOpts{Animate: true})
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(final), "<animate"))
}
