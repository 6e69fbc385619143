package ganttdep

import "oss.terrastruct.com/gantt/ganttdata"

type Conflict int

const (
	ConflictNone Conflict = iota
	ConflictPredecessor
	ConflictSuccessor
	ConflictBoth
)

func (c Conflict) String() string {
	switch c {
	case ConflictPredecessor:
		return "predecessor"
	case ConflictSuccessor:
		return "successor"
	case ConflictBoth:
		return "both"
	default:
		return "none"
	}
}

// Ref identifies a rendered line for conflict detection.
type Ref struct {
	ID     string
	PredID string
	SuccID string
	Type   ganttdata.DependencyType
}

type edgeKey struct {
	taskID string
	finish bool
}

func (r Ref) predKey() edgeKey {
	return edgeKey{r.PredID, r.Type.PredecessorFinish()}
}

func (r Ref) succKey() edgeKey {
	return edgeKey{r.SuccID, r.Type.SuccessorFinish()}
}

// Conflicts reports, for every line, whether another line of the set meets the same
// task edge at its predecessor end, its successor end or both. A line entering an edge and
// one leaving it conflict as well since their markers share the point.
func Conflicts(refs []Ref) map[string]Conflict {
	counts := make(map[edgeKey]int)
	for _, r := range refs {
		counts[r.predKey()]++
		counts[r.succKey()]++
	}
	out := make(map[string]Conflict, len(refs))
	for _, r := range refs {
		pc := counts[r.predKey()] > 1
		sc := counts[r.succKey()] > 1
		switch {
		case pc && sc:
			out[r.ID] = ConflictBoth
		case pc:
			out[r.ID] = ConflictPredecessor
		case sc:
			out[r.ID] = ConflictSuccessor
		default:
			out[r.ID] = ConflictNone
		}
	}
	return out
}
