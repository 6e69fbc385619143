package ganttlayout

import (
	"context"
	"sort"

	"cdr.dev/slog"

	"oss.terrastruct.com/gantt/ganttdata"
	"oss.terrastruct.com/gantt/lib/log"
)

// depIndex answers which dependency lines cross a row range.
type depIndex struct {
	all []*DependencyObj
	// byBottom is sorted by RowObjBottom.Index.
	byBottom []*DependencyObj
	// top heads the chain ordered by RowObjTop.Index.
	top *DependencyObj
}

// buildDependencies validates raw records against tasks and links them onto the tasks.
// Invalid records are dropped.
func buildDependencies(ctx context.Context, raw []*ganttdata.Dependency, tasks map[string]*TaskObj) []*DependencyObj {
	for _, t := range tasks {
		t.PredecessorDepObjs = nil
		t.SuccessorDepObjs = nil
	}
	seen := make(map[string]struct{}, len(raw))
	var deps []*DependencyObj
	for _, d := range raw {
		if d == nil || d.ID == "" {
			log.Debug(ctx, "dropping dependency without id")
			continue
		}
		if _, ok := seen[d.ID]; ok {
			log.Debug(ctx, "dropping duplicate dependency", slog.F("id", d.ID))
			continue
		}
		typ := d.Type
		if typ == "" {
			typ = ganttdata.FinishStart
		}
		if !typ.Valid() {
			log.Debug(ctx, "dropping dependency with invalid type", slog.F("id", d.ID), slog.F("type", typ))
			continue
		}
		if d.PredecessorTaskID == d.SuccessorTaskID {
			log.Debug(ctx, "dropping self referencing dependency", slog.F("id", d.ID))
			continue
		}
		pred, ok := tasks[d.PredecessorTaskID]
		if !ok {
			log.Debug(ctx, "dropping dependency with unknown predecessor", slog.F("id", d.ID), slog.F("task", d.PredecessorTaskID))
			continue
		}
		succ, ok := tasks[d.SuccessorTaskID]
		if !ok {
			log.Debug(ctx, "dropping dependency with unknown successor", slog.F("id", d.ID), slog.F("task", d.SuccessorTaskID))
			continue
		}
		seen[d.ID] = struct{}{}
		dep := &DependencyObj{
			ID:                 d.ID,
			Type:               typ,
			PredecessorTaskObj: pred,
			SuccessorTaskObj:   succ,
			RenderState:        StateAdd,
		}
		pred.SuccessorDepObjs = append(pred.SuccessorDepObjs, dep)
		succ.PredecessorDepObjs = append(succ.PredecessorDepObjs, dep)
		deps = append(deps, dep)
	}
	return deps
}

// newDepIndex orders deps by the rows they connect. It must be rebuilt whenever row indices change.
func newDepIndex(deps []*DependencyObj) *depIndex {
	idx := &depIndex{all: deps}
	for _, d := range deps {
		a, b := d.PredecessorTaskObj.RowObj, d.SuccessorTaskObj.RowObj
		if a.Index > b.Index {
			a, b = b, a
		}
		d.RowObjTop, d.RowObjBottom = a, b
		d.NextTopDependencyObj, d.PrevTopDependencyObj = nil, nil
	}

	idx.byBottom = append([]*DependencyObj(nil), deps...)
	sort.SliceStable(idx.byBottom, func(i, j int) bool {
		return idx.byBottom[i].RowObjBottom.Index < idx.byBottom[j].RowObjBottom.Index
	})

	byTop := append([]*DependencyObj(nil), deps...)
	sort.SliceStable(byTop, func(i, j int) bool {
		return byTop[i].RowObjTop.Index < byTop[j].RowObjTop.Index
	})
	for i, d := range byTop {
		if i > 0 {
			d.PrevTopDependencyObj = byTop[i-1]
		}
		if i < len(byTop)-1 {
			d.NextTopDependencyObj = byTop[i+1]
		}
	}
	if len(byTop) > 0 {
		idx.top = byTop[0]
	}
	return idx
}

// crossing returns dependencies whose row span intersects [minRow, maxRow] and whose
// time span intersects [start, end], sorted by id.
func (idx *depIndex) crossing(minRow, maxRow int, start, end int64) []*DependencyObj {
	if idx == nil || len(idx.all) == 0 || minRow > maxRow {
		return nil
	}

	// Lines ending above minRow are out. The rest are those starting at or above maxRow.
	lo := sort.Search(len(idx.byBottom), func(i int) bool {
		return idx.byBottom[i].RowObjBottom.Index >= minRow
	})
	fromBottom := len(idx.byBottom) - lo

	var candidates []*DependencyObj
	countTop := 0
	for d := idx.top; d != nil && d.RowObjTop.Index <= maxRow; d = d.NextTopDependencyObj {
		countTop++
	}
	if fromBottom <= countTop {
		for _, d := range idx.byBottom[lo:] {
			if d.RowObjTop.Index <= maxRow {
				candidates = append(candidates, d)
			}
		}
	} else {
		for d := idx.top; d != nil && d.RowObjTop.Index <= maxRow; d = d.NextTopDependencyObj {
			if d.RowObjBottom.Index >= minRow {
				candidates = append(candidates, d)
			}
		}
	}

	out := candidates[:0]
	for _, d := range candidates {
		if d.OverallStartTime() <= end && d.OverallEndTime() >= start {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
