package ganttdata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in    string
		exp   int64
		valid bool
	}{
		{"0", 0, true},
		{"1700000000000", 1700000000000, true},
		{"1970-01-02", 86400000, true},
		{"1970-01-01T00:00:01Z", 1000, true},
		{"1970-01-01T01:00:00+01:00", 0, true},
		{"1970-01-01T00:01", 60000, true},
		{"next tuesday", 0, false},
	}
	for _, tc := range testCases {
		d := ParseDate(tc.in)
		ms, ok := d.Millis()
		assert.Equal(t, tc.valid, ok, tc.in)
		if tc.valid {
			assert.Equal(t, tc.exp, ms, tc.in)
		}
		assert.True(t, d.IsSet(), tc.in)
	}
	assert.False(t, ParseDate("").IsSet())
}

const jsonChart = `{
	"start": "2024-01-01",
	"end": 1706745600000,
	"majorAxis": {"scale": "weeks"},
	"expanded": ["parent"],
	"rows": [
		{"id": "parent", "tasks": [{"id": "p1", "start": "2024-01-02", "end": "2024-01-05"}],
		 "rows": [{"id": "child", "tasks": [{"id": "c1", "start": "garbage", "end": "2024-01-05"}]}]}
	],
	"dependencies": [{"id": "d1", "predecessorTaskId": "p1", "successorTaskId": "c1"}]
}`

const yamlChart = `
start: 2024-01-01
end: 1706745600000
majorAxis:
  scale: weeks
expanded: [parent]
rows:
  - id: parent
    tasks:
      - id: p1
        start: 2024-01-02
        end: 2024-01-05
    rows:
      - id: child
        tasks:
          - id: c1
            start: garbage
            end: 2024-01-05
dependencies:
  - id: d1
    predecessorTaskId: p1
    successorTaskId: c1
`

func TestParse(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		path string
		in   string
	}{
		{"chart.json", jsonChart},
		{"chart.yaml", yamlChart},
	} {
		tc := tc
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()

			opts, err := Parse(tc.path, []byte(tc.in))
			require.Nil(t, err)
			require.Nil(t, opts.Validate())

			assert.Equal(t, "weeks", opts.Axis.Scale)
			assert.True(t, opts.Expanded.Has("parent"))
			assert.False(t, opts.Expanded.Has("child"))
			assert.Equal(t, LTR, opts.Direction)

			row, task := opts.FindTask("c1")
			require.NotNil(t, task)
			assert.Equal(t, "child", row.ID)
			assert.True(t, task.Start.IsSet())
			assert.False(t, task.Start.IsValid())

			_, task = opts.FindTask("p1")
			ms, ok := task.Start.Millis()
			assert.True(t, ok)
			assert.Equal(t, int64(1704153600000), ms)
		})
	}
}

func TestParseUnknownField(t *testing.T) {
	t.Parallel()

	_, err := ParseJSON([]byte(`{"rows": [], "colour": "red"}`))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "failed to parse chart JSON")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Options {
		o := &Options{Start: NewDate(0), End: NewDate(1000)}
		o.ApplyDefaults()
		return o
	}

	testCases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"bad_scale", func(o *Options) { o.Axis.Scale = "fortnights" }},
		{"no_start", func(o *Options) { o.Start = Date{} }},
		{"bad_end", func(o *Options) { o.End = ParseDate("never") }},
		{"degenerate", func(o *Options) { o.End = o.Start }},
		{"bad_direction", func(o *Options) { o.Direction = "up" }},
		{"bad_overlap", func(o *Options) { o.TaskDefaults.Overlap.Behavior = "pile" }},
	}

	assert.Nil(t, valid().Validate())
	for _, tc := range testCases {
		o := valid()
		tc.mutate(o)
		err := o.Validate()
		assert.True(t, errors.Is(err, ErrInvalidOptions), tc.name)
	}
}

func TestKeySet(t *testing.T) {
	t.Parallel()

	ks := NewKeySet("a")
	ks.Add("b")
	ks.Delete("a")
	assert.False(t, ks.Has("a"))
	assert.True(t, ks.Has("b"))

	all := AllKeys()
	assert.True(t, all.Has("anything"))
	all.Delete("x")
	assert.False(t, all.Has("x"))
	all.Add("x")
	assert.True(t, all.Has("x"))

	var nilSet *KeySet
	assert.False(t, nilSet.Has("a"))
}

func TestClone(t *testing.T) {
	t.Parallel()

	opts, err := ParseJSON([]byte(jsonChart))
	require.Nil(t, err)

	c := opts.Clone()
	c.Rows[0].Tasks[0].ID = "changed"
	c.Expanded.Delete("parent")

	assert.Equal(t, "p1", opts.Rows[0].Tasks[0].ID)
	assert.True(t, opts.Expanded.Has("parent"))
}

func TestCloneSkipsNilRecords(t *testing.T) {
	t.Parallel()

	opts, err := ParseJSON([]byte(`{
		"start": 0, "end": 1000,
		"rows": [null, {"id": "r", "tasks": [null, {"id": "a", "start": 0, "end": 10}], "rows": [null]}],
		"dependencies": [null, {"id": "d", "predecessorTaskId": "a", "successorTaskId": "a"}]
	}`))
	require.Nil(t, err)
	require.Len(t, opts.Rows, 2)

	c := opts.Clone()
	require.Len(t, c.Rows, 1)
	assert.Equal(t, "r", c.Rows[0].ID)
	require.Len(t, c.Rows[0].Tasks, 1)
	assert.Equal(t, "a", c.Rows[0].Tasks[0].ID)
	assert.Empty(t, c.Rows[0].Rows)
	require.Len(t, c.Dependencies, 1)
	assert.Equal(t, "d", c.Dependencies[0].ID)

	_, task := opts.FindTask("a")
	require.NotNil(t, task)
	_, task = opts.FindTask("missing")
	assert.Nil(t, task)
}
