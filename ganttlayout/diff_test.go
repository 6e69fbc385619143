package ganttlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/gantt/lib/go2"
)

func TestDiffLayouts(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		prev  Snapshot
		next  Snapshot
		check func(t *testing.T, p Patch)
	}{
		{
			name: "first layout",
			next: Snapshot{
				Rows:  []string{"r"},
				Tasks: map[string]string{"a": "r"},
				Deps:  go2.NewSet("d"),
			},
			check: func(t *testing.T, p Patch) {
				assert.Equal(t, StateAdd, p.Rows["r"])
				assert.Equal(t, StateAdd, p.Tasks["a"])
				assert.Equal(t, StateAdd, p.Deps["d"])
				assert.False(t, p.Empty())
			},
		},
		{
			name: "unchanged",
			prev: Snapshot{Rows: []string{"r"}, Tasks: map[string]string{"a": "r"}, Deps: go2.NewSet("d")},
			next: Snapshot{Rows: []string{"r"}, Tasks: map[string]string{"a": "r"}, Deps: go2.NewSet("d")},
			check: func(t *testing.T, p Patch) {
				assert.True(t, p.Empty())
				assert.Empty(t, p.TasksDeleted)
			},
		},
		{
			name: "migrate",
			prev: Snapshot{Rows: []string{"r1", "r2"}, Tasks: map[string]string{"a": "r1", "b": "r1"}},
			next: Snapshot{Rows: []string{"r1", "r2"}, Tasks: map[string]string{"a": "r2", "b": "r1"}},
			check: func(t *testing.T, p Patch) {
				assert.Equal(t, StateMigrate, p.Tasks["a"])
				assert.Equal(t, "r1", p.MigrateOrigin["a"])
				assert.Equal(t, StateExist, p.Tasks["b"])
				assert.NotContains(t, p.MigrateOrigin, "b")
			},
		},
		{
			name: "removals",
			prev: Snapshot{
				Rows:  []string{"r3", "r1", "r2"},
				Tasks: map[string]string{"c": "r3", "a": "r1", "b": "r2"},
				Deps:  go2.NewSet("y", "x"),
			},
			next: Snapshot{Rows: []string{"r2"}, Tasks: map[string]string{"b": "r2"}},
			check: func(t *testing.T, p Patch) {
				assert.Equal(t, []string{"r1", "r3"}, p.RowsDeleted)
				assert.Equal(t, []string{"a", "c"}, p.TasksDeleted)
				assert.Equal(t, []string{"x", "y"}, p.DepsDeleted)
				assert.Equal(t, StateDelete, p.Rows["r1"])
				assert.Equal(t, StateExist, p.Rows["r2"])
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tc.check(t, DiffLayouts(tc.prev, tc.next))
		})
	}
}

func TestSnapshotNil(t *testing.T) {
	t.Parallel()

	var l *Layout
	s := l.Snapshot()
	assert.Empty(t, s.Rows)
	assert.NotNil(t, s.Tasks)
	assert.Equal(t, 0, s.Deps.Len())
}
