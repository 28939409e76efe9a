// Package box defines render nodes layout operates on.
package box

import (
	"fmt"

	"blockflow/geom"
)

// Caps is set of capabilities derived from node kind, style and position in
// the tree.
type Caps uint8

const (
	CapBlockLevel Caps = 1 << iota
	CapFloated
	CapTable
	CapCell
	CapInlineBlock
	CapFormattingContext
)

func (c Caps) Has(flag Caps) bool {
	return c&flag != 0
}

// Node is single render node of the layout tree.
type Node struct {
	ID    string
	Tag   string
	Kind  Kind
	Style Style
	Text  string

	Parent   *Node
	Children []*Node

	// Occupied is the area node occupies after layout, margins included.
	Occupied geom.Rect
	// Collapsed holds resolved margins produced by margin collapsing.
	Collapsed MarginOverride
	// Continuation is set for containers continued from previous fragment.
	Continuation *Continuation

	caps      Caps
	capsReady bool
}

func New(kind Kind, id string) *Node {
	return &Node{ID: id, Kind: kind}
}

// Append adds children to the node. Capabilities of children depend on their
// parent and are recalculated on next request.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.Parent = n
		c.capsReady = false
		n.Children = append(n.Children, c)
	}
	return n
}

// Caps returns node capabilities, they are computed once.
func (n *Node) Caps() Caps {
	if n.capsReady {
		return n.caps
	}
	var c Caps
	switch n.Kind {
	case KindBlock, KindRoot:
		c |= CapBlockLevel
	case KindTable:
		c |= CapBlockLevel | CapTable
	case KindCell:
		c |= CapBlockLevel | CapCell
	}
	if n.Style.Float != FloatNone && n.Kind != KindRoot {
		c |= CapFloated
	}
	if c.Has(CapBlockLevel) && n.Parent != nil && n.Parent.Kind == KindLine {
		c |= CapInlineBlock
	}
	if n.establishesFormattingContext(c) {
		c |= CapFormattingContext
	}
	n.caps, n.capsReady = c, true
	return c
}

func (n *Node) establishesFormattingContext(c Caps) bool {
	switch {
	case n.Parent == nil, n.Kind == KindRoot, n.Kind == KindGrid:
		return true
	case c.Has(CapCell), c.Has(CapFloated), c.Has(CapInlineBlock):
		return true
	case n.Style.Overflow != OverflowVisible, n.Style.FlowRoot:
		return true
	case n.Parent.Kind == KindGrid:
		return true
	}
	return false
}

func (n *Node) IsFloated() bool {
	return n != nil && n.Caps().Has(CapFloated)
}

// EffectiveMarginTop returns collapsed top margin when one was produced,
// otherwise declared margin. Percentages are not resolved and count as zero.
func (n *Node) EffectiveMarginTop() float32 {
	if n.Collapsed.HasTop {
		return n.Collapsed.Top
	}
	return n.declared(n.Style.MarginTop)
}

func (n *Node) EffectiveMarginBottom() float32 {
	if n.Collapsed.HasBottom {
		return n.Collapsed.Bottom
	}
	return n.declared(n.Style.MarginBottom)
}

func (n *Node) declared(l Length) float32 {
	if l.Percent || n.Kind == KindCell {
		return 0
	}
	return l.Value
}

// Walk visits node and its descendants in document order. Returning false
// from fn skips descendants of the visited node.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s)", n.Kind, n.ID)
}
