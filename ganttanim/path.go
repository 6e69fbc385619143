package ganttanim

import (
	"strconv"
	"strings"

	"oss.terrastruct.com/gantt/lib/geo"
)

// pathShape is a path split into its command skeleton and coordinates.
// Two paths can be tweened when their skeletons are equal.
type pathShape struct {
	skeleton []string
	nums     []float64
}

// parsePath reads the space separated absolute paths lib/svg emits. Arc flags and
// rotation are kept in the skeleton so arcs never flip mid tween.
func parsePath(d string) (pathShape, bool) {
	var p pathShape
	cmd := ""
	arg := 0
	for _, tok := range strings.Fields(d) {
		if len(tok) == 1 && strings.ContainsAny(tok, "MLHVQCAZ") {
			cmd = tok
			arg = 0
			p.skeleton = append(p.skeleton, tok)
			continue
		}
		if cmd == "A" && arg >= 2 && arg <= 4 {
			p.skeleton = append(p.skeleton, tok)
			arg++
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return pathShape{}, false
		}
		p.skeleton = append(p.skeleton, "")
		p.nums = append(p.nums, v)
		arg++
	}
	return p, true
}

func compatible(a, b pathShape) bool {
	if len(a.skeleton) != len(b.skeleton) || len(a.nums) != len(b.nums) {
		return false
	}
	for i := range a.skeleton {
		if a.skeleton[i] != b.skeleton[i] {
			return false
		}
	}
	return true
}

// lerpPath writes the path between a and b at frac.
func lerpPath(a, b pathShape, frac float64) string {
	var sb strings.Builder
	n := 0
	for i, s := range a.skeleton {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if s != "" {
			sb.WriteString(s)
			continue
		}
		v := geo.RoundDecimals(lerp(a.nums[n], b.nums[n], frac), 2)
		if v == 0 {
			v = 0
		}
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		n++
	}
	return sb.String()
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
