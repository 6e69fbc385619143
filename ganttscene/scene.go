// Package ganttscene is the retained scene graph the chart renders into.
// It persists between renders and is mutated incrementally, the same way a
// browser DOM would be.
package ganttscene

import (
	"sort"
	"strings"
	"time"
)

type Kind string

const (
	KindGroup Kind = "g"
	KindPath  Kind = "path"
	KindRect  Kind = "rect"
	KindText  Kind = "text"
	KindLine  Kind = "line"
)

// Animation is a tween of one attribute recorded while a transition is in flight.
type Animation struct {
	Attr  string
	From  string
	To    string
	Begin time.Duration
	Dur   time.Duration
}

type Node struct {
	ID    string
	Kind  Kind
	Class string

	// Translation of a group.
	TX float64
	TY float64

	X      float64
	Y      float64
	Width  float64
	Height float64
	X2     float64
	Y2     float64

	D    string
	Text string

	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Anchor      string

	Parent   *Node
	Children []*Node

	Animations []Animation

	scene *Scene
}

func NewNode(id string, kind Kind) *Node {
	return &Node{ID: id, Kind: kind, Opacity: 1}
}

func (n *Node) HasClass(c string) bool {
	for _, f := range strings.Fields(n.Class) {
		if f == c {
			return true
		}
	}
	return false
}

func (n *Node) AddClass(c string) {
	if n.HasClass(c) {
		return
	}
	if n.Class == "" {
		n.Class = c
		return
	}
	n.Class += " " + c
}

func (n *Node) RemoveClass(c string) {
	fields := strings.Fields(n.Class)
	out := fields[:0]
	for _, f := range fields {
		if f != c {
			out = append(out, f)
		}
	}
	n.Class = strings.Join(out, " ")
}

// AppendChild moves c under n, detaching it from its previous parent first.
func (n *Node) AppendChild(c *Node) {
	n.InsertChild(len(n.Children), c)
}

// InsertChild moves c under n at position i.
func (n *Node) InsertChild(i int, c *Node) {
	c.Remove()
	if i < 0 {
		i = 0
	}
	if i > len(n.Children) {
		i = len(n.Children)
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = c
	c.Parent = n
	if n.scene != nil {
		n.scene.register(c)
	}
}

// Remove detaches n from its parent. Removing a detached node is a no-op.
func (n *Node) Remove() {
	p := n.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
	if n.scene != nil {
		n.scene.unregister(n)
	}
}

// RemoveChildren detaches every child of n.
func (n *Node) RemoveChildren() {
	for len(n.Children) > 0 {
		n.Children[len(n.Children)-1].Remove()
	}
}

// IsAttached reports whether n is reachable from a scene root.
func (n *Node) IsAttached() bool {
	return n.scene != nil
}

func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Animate records a tween. The new value is applied by the caller once the transition ends.
func (n *Node) Animate(a Animation) {
	n.Animations = append(n.Animations, a)
}

func (n *Node) ClearAnimations() {
	n.Animations = nil
}

type Scene struct {
	Root   *Node
	Width  float64
	Height float64

	byID map[string]*Node
}

func NewScene(width, height float64) *Scene {
	s := &Scene{
		Width:  width,
		Height: height,
		byID:   make(map[string]*Node),
	}
	s.Root = NewNode("", KindGroup)
	s.Root.scene = s
	return s
}

func (s *Scene) register(n *Node) {
	n.Walk(func(c *Node) bool {
		c.scene = s
		if c.ID != "" {
			s.byID[c.ID] = c
		}
		return true
	})
}

func (s *Scene) unregister(n *Node) {
	n.Walk(func(c *Node) bool {
		c.scene = nil
		if c.ID != "" && s.byID[c.ID] == c {
			delete(s.byID, c.ID)
		}
		return true
	})
}

// Get returns the attached node with id.
func (s *Scene) Get(id string) *Node {
	return s.byID[id]
}

// IDs returns the sorted ids of attached nodes carrying class.
func (s *Scene) IDs(class string) []string {
	var ids []string
	for id, n := range s.byID {
		if n.HasClass(class) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of attached nodes with an id.
func (s *Scene) Len() int {
	return len(s.byID)
}

func (s *Scene) Clear() {
	s.Root.RemoveChildren()
}

// HasAnimations reports whether any attached node has a pending tween.
func (s *Scene) HasAnimations() bool {
	found := false
	s.Root.Walk(func(n *Node) bool {
		if len(n.Animations) > 0 {
			found = true
		}
		return !found
	})
	return found
}
