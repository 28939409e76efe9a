package margins

import "fmt"

// Info is collapsing state of a single box during its parent's layout pass.
//
// Before of the first child of a container whose top margin is adjoined is
// the very same accumulator as container's Before, and Before of every
// following child is previous child's OwnAfter. Margins of nested boxes reach
// their ancestors through this sharing.
type Info struct {
	IgnoreOwnMarginTop    bool
	IgnoreOwnMarginBottom bool

	Before   *Collapse
	After    *Collapse
	OwnAfter *Collapse

	SelfCollapsing   bool
	ClearanceApplied bool

	BufferTop        float32
	BufferBottom     float32
	UsedBufferTop    float32
	UsedBufferBottom float32
}

// NewInfo returns state for a box without any collapsing context: nothing is
// ignored and box is self collapsing until proven otherwise.
func NewInfo() *Info {
	return &Info{
		Before:         &Collapse{},
		After:          &Collapse{},
		SelfCollapsing: true,
	}
}

func newChildInfo(ignoreTop, ignoreBottom bool, before, after *Collapse) *Info {
	return &Info{
		IgnoreOwnMarginTop:    ignoreTop,
		IgnoreOwnMarginBottom: ignoreBottom,
		Before:                before,
		After:                 after,
		SelfCollapsing:        true,
	}
}

// Clone returns independent deep copy of the state.
func (i *Info) Clone() *Info {
	c := *i
	c.Before = i.Before.Clone()
	c.After = i.After.Clone()
	c.OwnAfter = i.OwnAfter.Clone()
	return &c
}

func (i *Info) String() string {
	return fmt.Sprintf("before=%s after=%s own-after=%s ignore=%t/%t self-collapsing=%t clearance=%t buffer=%g/%g used=%g/%g",
		i.Before, i.After, i.OwnAfter, i.IgnoreOwnMarginTop, i.IgnoreOwnMarginBottom, i.SelfCollapsing, i.ClearanceApplied,
		i.BufferTop, i.BufferBottom, i.UsedBufferTop, i.UsedBufferBottom)
}

// snapshot preserves state of the Info together with contents of its
// accumulators. Restoring it writes accumulator values back into the same
// accumulators, so sharing with parent and sibling states is kept.
type snapshot struct {
	saved                   *Info
	before, after, ownAfter *Collapse
}

func takeSnapshot(i *Info) *snapshot {
	return &snapshot{saved: i.Clone(), before: i.Before, after: i.After, ownAfter: i.OwnAfter}
}

func (s *snapshot) restoreTo(i *Info) {
	*i = *s.saved
	i.Before = rewind(s.before, s.saved.Before)
	i.After = rewind(s.after, s.saved.After)
	i.OwnAfter = rewind(s.ownAfter, s.saved.OwnAfter)
}

// rewind sets contents of the original accumulator from saved copy.
func rewind(orig, saved *Collapse) *Collapse {
	if orig == nil || saved == nil {
		return orig
	}
	*orig = *saved
	return orig
}
