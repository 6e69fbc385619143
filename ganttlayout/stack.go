package ganttlayout

import (
	"sort"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/lib/go2"
)

// stacker places the tasks of one row. Tasks must already be sorted by StartTime.
type stacker struct {
	padding       float64
	overlapOffset float64
	// fixedHeight is the app configured row height, 0 when rows size to content.
	fixedHeight float64
	emptyHeight float64
}

// ResolveOverlap maps the auto policy to a concrete one.
func ResolveOverlap(b ganttdata.OverlapBehavior, fixedRowHeight float64) ganttdata.OverlapBehavior {
	if b != ganttdata.OverlapAuto && b != "" {
		return b
	}
	if fixedRowHeight > 0 {
		return ganttdata.OverlapStack
	}
	return ganttdata.OverlapStagger
}

func overlaps(a, b *TaskObj) bool {
	return a.OverallStartTime < b.OverallEndTime && b.OverallStartTime < a.OverallEndTime
}

type level struct {
	last   *TaskObj
	height float64
	y      float64
}

// place sets Y, Level and adjacency of every task in row and returns the height the row needs.
func (s stacker) place(row *RowObj) float64 {
	for _, t := range row.TaskObjs {
		t.PreviousAdjacentTaskObj = nil
		t.NextAdjacentTaskObj = nil
		t.PreviousBaselineMilestone = nil
		t.NextBaselineMilestone = nil
		t.Level = 0
	}

	var levels []*level
	levelAt := func(i int) *level {
		for len(levels) <= i {
			levels = append(levels, &level{})
		}
		return levels[i]
	}
	// stagger and stack tasks keep separate adjacency chains
	var staggerLevels [2]level
	var prevStagger *TaskObj
	dir := 1.

	for _, t := range row.TaskObjs {
		switch t.OverlapBehavior {
		case ganttdata.OverlapStack:
			i := 0
			for ; i < len(levels); i++ {
				last := levels[i].last
				if last == nil || last.OverallEndTime <= t.OverallStartTime {
					break
				}
			}
			t.Level = i
			levelAt(i).link(t)
		case ganttdata.OverlapStagger:
			if prevStagger != nil && overlaps(prevStagger, t) {
				t.Y = prevStagger.Y + dir*s.overlapOffset
				dir = -dir
			} else {
				t.Y = 0
				dir = 1
			}
			if t.Y != 0 {
				t.Level = 1
			}
			prevStagger = t
			staggerLevels[t.Level].link(t)
		default:
			// overlay tasks share the top level and take no part in adjacency
			lv := levelAt(0)
			if t.FootprintHeight > lv.height {
				lv.height = t.FootprintHeight
			}
		}
	}

	y := s.padding
	for _, lv := range levels {
		lv.y = y
		y += lv.height + s.padding
	}
	needed := y

	for _, t := range row.TaskObjs {
		if t.OverlapBehavior == ganttdata.OverlapStagger {
			t.Y += s.padding
			if bottom := t.Y + t.FootprintHeight + s.padding; bottom > needed {
				needed = bottom
			}
			continue
		}
		t.Y = levels[t.Level].y
	}
	s.linkBaselineMilestones(row)

	row.Levels = len(levels)
	if staggerLevels[1].last != nil {
		row.Levels = go2.Max(row.Levels, 2)
	} else if staggerLevels[0].last != nil {
		row.Levels = go2.Max(row.Levels, 1)
	}
	if len(row.TaskObjs) == 0 {
		needed = s.emptyHeight
	}
	if s.fixedHeight > needed {
		return s.fixedHeight
	}
	return needed
}

func (lv *level) link(t *TaskObj) {
	if lv.last != nil {
		lv.last.NextAdjacentTaskObj = t
		t.PreviousAdjacentTaskObj = lv.last
	}
	lv.last = t
	if t.FootprintHeight > lv.height {
		lv.height = t.FootprintHeight
	}
}

// linkBaselineMilestones records, per level, the nearest task on either side whose
// baseline is a milestone. Those diamonds can collide with labels.
func (s stacker) linkBaselineMilestones(row *RowObj) {
	byLevel := make(map[int][]*TaskObj)
	for _, t := range row.TaskObjs {
		if t.OverlapBehavior == ganttdata.OverlapOverlay {
			continue
		}
		byLevel[t.Level] = append(byLevel[t.Level], t)
	}
	for _, tasks := range byLevel {
		var last *TaskObj
		for _, t := range tasks {
			t.PreviousBaselineMilestone = last
			if t.Baseline != nil && t.Baseline.Milestone() {
				last = t
			}
		}

		desc := append([]*TaskObj(nil), tasks...)
		sort.SliceStable(desc, func(i, j int) bool {
			return desc[i].EndTime > desc[j].EndTime
		})
		last = nil
		for _, t := range desc {
			t.NextBaselineMilestone = last
			if t.Baseline != nil && t.Baseline.Milestone() {
				last = t
			}
		}
	}
}
