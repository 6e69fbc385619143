package ganttanim

import (
	"time"

	"oss.terrastruct.com/gantt/ganttscene"
)

// Tween drives one attribute of one node from From to To.
type Tween struct {
	Node *ganttscene.Node
	Attr string
	From float64
	To   float64

	// Path tweens use FromD/ToD. A path whose command skeleton changed cannot be
	// interpolated and jumps to ToD at the end.
	FromD string
	ToD   string

	from, to pathShape
	smooth   bool
}

func numTween(n *ganttscene.Node, attr string, from, to float64) *Tween {
	return &Tween{Node: n, Attr: attr, From: from, To: to}
}

func pathTween(n *ganttscene.Node, from, to string) *Tween {
	tw := &Tween{Node: n, Attr: ganttscene.AttrD, FromD: from, ToD: to}
	a, ok1 := parsePath(from)
	b, ok2 := parsePath(to)
	if ok1 && ok2 && compatible(a, b) {
		tw.from, tw.to, tw.smooth = a, b, true
	}
	return tw
}

func (tw *Tween) isPath() bool {
	return tw.Attr == ganttscene.AttrD
}

func (tw *Tween) seek(frac float64) {
	if tw.isPath() {
		if tw.smooth {
			tw.Node.D = lerpPath(tw.from, tw.to, frac)
		}
		return
	}
	tw.Node.SetNum(tw.Attr, lerp(tw.From, tw.To, frac))
}

func (tw *Tween) end() {
	if tw.isPath() {
		tw.Node.D = tw.ToD
		return
	}
	tw.Node.SetNum(tw.Attr, tw.To)
}

func (tw *Tween) animation(dur time.Duration) ganttscene.Animation {
	a := ganttscene.Animation{Attr: tw.Attr, Dur: dur}
	if tw.isPath() {
		a.From, a.To = tw.FromD, tw.ToD
	} else {
		a.From, a.To = ganttscene.FormatNum(tw.From), ganttscene.FormatNum(tw.To)
	}
	return a
}

// Parallel is a group of tweens that play together. Completion callbacks run in
// registration order once the whole group ends, never per tween.
//
// A Parallel is not safe for concurrent use.
type Parallel struct {
	Duration time.Duration

	tweens []*Tween
	onEnd  []func()
	done   chan struct{}
	ended  bool
}

func NewParallel(d time.Duration) *Parallel {
	return &Parallel{Duration: d, done: make(chan struct{})}
}

// Add registers tw and moves its node to the start value.
func (p *Parallel) Add(tw *Tween) {
	if p.ended {
		tw.end()
		return
	}
	p.tweens = append(p.tweens, tw)
	if tw.isPath() {
		tw.Node.D = tw.FromD
	} else {
		tw.Node.SetNum(tw.Attr, tw.From)
	}
	tw.Node.Animate(tw.animation(p.Duration))
}

// OnEnd registers fn to run when the group ends. A nil fn is ignored.
func (p *Parallel) OnEnd(fn func()) {
	if fn == nil {
		return
	}
	if p.ended {
		fn()
		return
	}
	p.onEnd = append(p.onEnd, fn)
}

func (p *Parallel) Len() int {
	return len(p.tweens)
}

func (p *Parallel) Tweens() []*Tween {
	return p.tweens
}

// Seek moves every tween to frac of the way through, eased.
func (p *Parallel) Seek(frac float64) {
	if p.ended {
		return
	}
	if frac <= 0 {
		frac = 0
	}
	if frac >= 1 {
		p.End()
		return
	}
	e := ease(frac)
	for _, tw := range p.tweens {
		tw.seek(e)
	}
}

// Step seeks to elapsed and returns whether the group has ended.
func (p *Parallel) Step(elapsed time.Duration) bool {
	if p.Duration <= 0 {
		p.End()
		return true
	}
	p.Seek(float64(elapsed) / float64(p.Duration))
	return p.ended
}

// End applies every final value, then runs the completion callbacks.
func (p *Parallel) End() {
	if p.ended {
		return
	}
	p.ended = true
	for _, tw := range p.tweens {
		tw.end()
		tw.Node.ClearAnimations()
	}
	onEnd := p.onEnd
	p.onEnd = nil
	for _, fn := range onEnd {
		fn()
	}
	close(p.done)
}

// Stop ends the group at once. Playback never resumes.
func (p *Parallel) Stop() {
	p.End()
}

func (p *Parallel) Ended() bool {
	return p.ended
}

// Done is closed once the group has ended.
func (p *Parallel) Done() <-chan struct{} {
	return p.done
}

// ease is a cubic ease in out.
func ease(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
