package ganttlayout

import "sort"

// FindRowIndRange returns the index range of rows with y+height > yMin and y < yMax.
// rows must be contiguous and sorted by Y.
func FindRowIndRange(rows []*RowObj, yMin, yMax float64) (int, int, bool) {
	if len(rows) == 0 || yMin >= yMax {
		return 0, -1, false
	}
	lo := sort.Search(len(rows), func(i int) bool {
		return rows[i].Y+rows[i].Height > yMin
	})
	if lo == len(rows) || rows[lo].Y >= yMax {
		return 0, -1, false
	}
	hi := lo
	for hi+1 < len(rows) && rows[hi+1].Y < yMax {
		hi++
	}
	return lo, hi, true
}

// FindTaskObjsRange returns tasks whose overall span intersects [start, end]. A task
// touching start only counts with inclStart, one touching end only with inclEnd.
func FindTaskObjsRange(tasks []*TaskObj, start, end int64, inclStart, inclEnd bool) []*TaskObj {
	var out []*TaskObj
	for _, t := range tasks {
		if inRange(t, start, end, inclStart, inclEnd) {
			out = append(out, t)
		}
	}
	return out
}

func inRange(t *TaskObj, start, end int64, inclStart, inclEnd bool) bool {
	if t.OverallEndTime < start || (!inclStart && t.OverallEndTime == start && t.OverallStartTime < start) {
		return false
	}
	if t.OverallStartTime > end || (!inclEnd && t.OverallStartTime == end && t.OverallEndTime > end) {
		return false
	}
	return true
}

// FindBufferTaskObjsRange returns tasks outside [viewStart, viewEnd] whose neighbor towards
// the view is not itself outside on the same side. Tasks without neighbors are always buffers.
func FindBufferTaskObjsRange(tasks []*TaskObj, viewStart, viewEnd int64) []*TaskObj {
	var out []*TaskObj
	for _, t := range tasks {
		if isBuffer(t, viewStart, viewEnd) {
			out = append(out, t)
		}
	}
	return out
}

func isBuffer(t *TaskObj, viewStart, viewEnd int64) bool {
	if t.OverallEndTime < viewStart {
		n := t.NextAdjacentTaskObj
		return n == nil || n.OverallEndTime >= viewStart
	}
	if t.OverallStartTime > viewEnd {
		p := t.PreviousAdjacentTaskObj
		return p == nil || p.OverallStartTime <= viewEnd
	}
	return false
}

// viewportTasks is the set a render of row under vp must show: visible tasks plus buffers.
func viewportTasks(row *RowObj, vp Viewport) []*TaskObj {
	var out []*TaskObj
	for _, t := range row.RenderOrder() {
		if inRange(t, vp.ViewStartTime, vp.ViewEndTime, true, true) || isBuffer(t, vp.ViewStartTime, vp.ViewEndTime) {
			out = append(out, t)
		}
	}
	return out
}
