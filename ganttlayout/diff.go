package ganttlayout

import (
	"sort"

	"oss.terrastruct.com/gantt/lib/go2"
)

// Snapshot is the id structure of a layout.
type Snapshot struct {
	Rows []string
	// Tasks maps task id to row id.
	Tasks map[string]string
	Deps  go2.Set[string]
}

func (l *Layout) Snapshot() Snapshot {
	s := Snapshot{
		Tasks: make(map[string]string),
		Deps:  go2.NewSet[string](),
	}
	if l == nil {
		return s
	}
	for _, r := range l.Rows {
		s.Rows = append(s.Rows, r.ID)
		for _, t := range r.TaskObjs {
			s.Tasks[t.ID] = r.ID
		}
	}
	for _, d := range l.Deps {
		s.Deps.Add(d.ID)
	}
	return s
}

// Patch classifies every id of two layouts.
type Patch struct {
	Rows  map[string]RenderState
	Tasks map[string]RenderState
	Deps  map[string]RenderState
	// MigrateOrigin maps a migrated task to the row it left.
	MigrateOrigin map[string]string

	RowsDeleted  []string
	TasksDeleted []string
	DepsDeleted  []string
}

func (p Patch) Empty() bool {
	for _, m := range []map[string]RenderState{p.Rows, p.Tasks, p.Deps} {
		for _, s := range m {
			if s != StateExist {
				return false
			}
		}
	}
	return true
}

// DiffLayouts compares two layouts by id: removed = prev - next, added = next - prev,
// everything else exists, or migrates when a task changed rows.
func DiffLayouts(prev, next Snapshot) Patch {
	p := Patch{
		Rows:          make(map[string]RenderState),
		Tasks:         make(map[string]RenderState),
		Deps:          make(map[string]RenderState),
		MigrateOrigin: make(map[string]string),
	}

	oldRows := go2.NewSet(prev.Rows...)
	newRows := go2.NewSet(next.Rows...)
	for _, id := range next.Rows {
		if oldRows.Has(id) {
			p.Rows[id] = StateExist
		} else {
			p.Rows[id] = StateAdd
		}
	}
	for _, id := range prev.Rows {
		if !newRows.Has(id) {
			p.Rows[id] = StateDelete
			p.RowsDeleted = append(p.RowsDeleted, id)
		}
	}

	for id, row := range next.Tasks {
		oldRow, ok := prev.Tasks[id]
		switch {
		case !ok:
			p.Tasks[id] = StateAdd
		case oldRow != row:
			p.Tasks[id] = StateMigrate
			p.MigrateOrigin[id] = oldRow
		default:
			p.Tasks[id] = StateExist
		}
	}
	for id := range prev.Tasks {
		if _, ok := next.Tasks[id]; !ok {
			p.Tasks[id] = StateDelete
			p.TasksDeleted = append(p.TasksDeleted, id)
		}
	}

	for id := range next.Deps {
		if prev.Deps.Has(id) {
			p.Deps[id] = StateExist
		} else {
			p.Deps[id] = StateAdd
		}
	}
	for id := range prev.Deps {
		if !next.Deps.Has(id) {
			p.Deps[id] = StateDelete
			p.DepsDeleted = append(p.DepsDeleted, id)
		}
	}

	sort.Strings(p.RowsDeleted)
	sort.Strings(p.TasksDeleted)
	sort.Strings(p.DepsDeleted)
	return p
}
