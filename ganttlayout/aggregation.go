package ganttlayout

import "oss.terrastruct.com/gantt/ganttshape"

// aggregate tags runs of abutting tasks on the same level so they render as one merged bar.
// It does not move anything.
func aggregate(row *RowObj, enabled bool) {
	for _, t := range row.TaskObjs {
		t.Aggregation = AggregationNone
	}
	if !enabled {
		return
	}
	for _, t := range row.TaskObjs {
		if t.PreviousAdjacentTaskObj != nil && chained(t.PreviousAdjacentTaskObj, t) {
			continue
		}
		run := []*TaskObj{t}
		for n := t.NextAdjacentTaskObj; n != nil && chained(run[len(run)-1], n); n = n.NextAdjacentTaskObj {
			run = append(run, n)
		}
		if len(run) == 1 {
			t.Aggregation = AggregationSolo
			continue
		}
		for i, r := range run {
			switch i {
			case 0:
				r.Aggregation = AggregationStart
			case len(run) - 1:
				r.Aggregation = AggregationEnd
			default:
				r.Aggregation = AggregationMiddle
			}
		}
	}
	// overlay tasks have no adjacency and stay solo
	for _, t := range row.TaskObjs {
		if t.Aggregation == AggregationNone {
			t.Aggregation = AggregationSolo
		}
	}
}

func chained(a, b *TaskObj) bool {
	return a.EndTime == b.StartTime &&
		a.Height == b.Height &&
		a.BorderRadius == b.BorderRadius &&
		!a.Milestone() && !b.Milestone()
}

// Corners keeps only the outer corners of an aggregated run.
func (t *TaskObj) Corners() ganttshape.Corners {
	r := t.BorderRadius
	switch t.Aggregation {
	case AggregationStart:
		return ganttshape.Corners{r, 0, 0, r}
	case AggregationMiddle:
		return ganttshape.Corners{}
	case AggregationEnd:
		return ganttshape.Corners{0, r, r, 0}
	default:
		return ganttshape.UniformCorners(r)
	}
}
