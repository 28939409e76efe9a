// Package layout places render nodes into an area using simple block flow.
// Vertical margins are collapsed by margins.Handler.
package layout

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/text/width"

	"blockflow/box"
	"blockflow/config"
	"blockflow/geom"
	"blockflow/layout/margins"
)

// Result describes finished layout.
type Result struct {
	Root *box.Node
	// Area layout was performed in.
	Area geom.Rect
	// Overflow lists nodes which could not be placed.
	Overflow []*box.Node
}

// Layouter performs layout of node trees. It is not safe for concurrent use.
type Layouter struct {
	cfg    *config.LayoutConfig
	log    *zap.Logger
	mlog   *zap.Logger
	tracer *margins.Tracer

	overflow []*box.Node
}

func New(cfg *config.LayoutConfig, log *zap.Logger, tracer *margins.Tracer) *Layouter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Layouter{
		cfg:    cfg,
		log:    log.Named("layout"),
		mlog:   log.Named("margins"),
		tracer: tracer,
	}
}

// floatArea is float placed in block formatting context.
type floatArea struct {
	area geom.Rect
	side box.Float
}

// flowContext is block formatting context floats are placed into.
type flowContext struct {
	floats []floatArea
}

// clearance returns distance top of the box has to be moved down to clear
// floats.
func (fc *flowContext) clearance(n *box.Node, top float32) float32 {
	if n.Style.Clear == box.ClearNone {
		return 0
	}
	lowest := top
	for _, f := range fc.floats {
		if n.Style.Clear.Matches(f.side) && f.area.Y < lowest {
			lowest = f.area.Y
		}
	}
	return top - lowest
}

// Layout lays out tree starting with root into area. Previous layout results
// stored in nodes are discarded.
func (l *Layouter) Layout(root *box.Node, area geom.Rect) (*Result, error) {
	if root == nil {
		return nil, errors.New("nothing to layout")
	}
	if area.Width <= 0 || area.Height <= 0 {
		return nil, fmt.Errorf("layout area must not be empty: %s", area)
	}

	root.Walk(func(n *box.Node, _ int) bool {
		n.Occupied = geom.Rect{}
		n.Collapsed.Reset()
		return true
	})
	l.overflow = nil

	l.log.Debug("Layout started", zap.Stringer("root", root), zap.Stringer("area", area), zap.Bool("collapse", l.cfg.CollapseMargins))

	if !l.layoutNode(root, area, nil, &flowContext{}) {
		l.overflow = append(l.overflow, root)
	}

	if len(l.overflow) > 0 {
		l.log.Warn("Some boxes did not fit into layout area", zap.Int("count", len(l.overflow)), zap.Stringer("first", l.overflow[0]))
	}
	return &Result{Root: root, Area: area, Overflow: l.overflow}, nil
}

// layoutNode places node into area. It returns false when node does not fit.
func (l *Layouter) layoutNode(n *box.Node, area geom.Rect, info *margins.Info, fc *flowContext) bool {
	switch {
	case n.Kind == box.KindLine:
		return l.layoutLine(n, area)
	case n.Kind == box.KindGrid:
		return l.layoutBlock(n, area, nil, fc)
	default:
		return l.layoutBlock(n, area, info, fc)
	}
}

func (l *Layouter) layoutBlock(n *box.Node, area geom.Rect, info *margins.Info, fc *flowContext) bool {
	parentBBox := area
	floated := n.IsFloated()

	var h *margins.Handler
	if l.cfg.CollapseMargins && n.Kind != box.KindGrid {
		h = margins.NewHandler(n, info, l.mlog, l.tracer)
	}

	if delta := fc.clearance(n, parentBBox.Top()); delta > 0 {
		if h != nil && !floated {
			h.ApplyClearance(delta)
		} else {
			parentBBox.DecreaseHeight(delta)
		}
	}
	if n.Caps().Has(box.CapFormattingContext) {
		fc = &flowContext{}
	}

	if h != nil {
		h.StartMarginsCollapse(&parentBBox)
	}
	parentBBox.ApplyMargins(n.EffectiveMarginTop(), 0, n.EffectiveMarginBottom(), 0, false)

	width := area.Width
	paddingTop := n.Style.PaddingTop.Resolve(width)
	paddingBottom := n.Style.PaddingBottom.Resolve(width)
	parentBBox.ApplyMargins(n.Style.BorderTop+paddingTop, 0, n.Style.BorderBottom+paddingBottom, 0, false)

	var fixedHeight *float32
	if n.Style.Height != nil {
		hgt := n.Style.Height.Resolve(area.Height)
		fixedHeight = &hgt
		if hgt <= parentBBox.Height {
			delta := parentBBox.Height - hgt
			if h != nil {
				h.ProcessFixedHeightAdjustment(delta)
			}
			parentBBox.MoveUp(delta)
			parentBBox.Height = hgt
		}
	}
	if parentBBox.Height < 0 {
		l.log.Debug("Box does not fit", zap.Stringer("node", n), zap.Stringer("area", area))
		return false
	}

	n.Occupied = geom.NewRect(parentBBox.X, parentBBox.Top(), parentBBox.Width, 0)
	layoutBox := parentBBox

	for i, child := range n.Children {
		var childInfo *margins.Info
		if h != nil {
			childInfo = h.StartChildMarginsHandling(child, &layoutBox)
		}

		if child.IsFloated() {
			if !l.layoutFloat(child, layoutBox, fc) {
				l.overflow = append(l.overflow, child)
			}
			if h != nil {
				h.EndChildMarginsHandling(&layoutBox)
			}
			continue
		}

		if !l.layoutNode(child, layoutBox, childInfo, fc) {
			l.overflow = append(l.overflow, n.Children[i:]...)
			break
		}
		n.Occupied = geom.Union(n.Occupied, child.Occupied)
		if h != nil {
			h.EndChildMarginsHandling(&layoutBox)
		}
		layoutBox.Height = child.Occupied.Y - layoutBox.Y
	}

	if h != nil {
		h.EndMarginsCollapse(&layoutBox)
	}

	top := n.Occupied.Top()
	switch {
	case fixedHeight != nil:
		n.Occupied.Height = *fixedHeight
	case n.Style.MinHeight != nil:
		n.Occupied.Height = max(n.Occupied.Height, n.Style.MinHeight.Resolve(area.Height))
	}
	n.Occupied.Y = top - n.Occupied.Height

	n.Occupied.ApplyMargins(n.Style.BorderTop+paddingTop, 0, n.Style.BorderBottom+paddingBottom, 0, true)
	n.Occupied.ApplyMargins(n.EffectiveMarginTop(), 0, n.EffectiveMarginBottom(), 0, true)

	l.log.Debug("Box placed", zap.Stringer("node", n), zap.Stringer("occupied", n.Occupied),
		zap.Float32("margin-top", n.EffectiveMarginTop()), zap.Float32("margin-bottom", n.EffectiveMarginBottom()))
	return true
}

// layoutFloat places float at the top of the area on its side. Floats are
// not part of the occupied area of their container.
func (l *Layouter) layoutFloat(n *box.Node, area geom.Rect, fc *flowContext) bool {
	w := area.Width
	if n.Style.Width != nil {
		w = n.Style.Width.Resolve(area.Width)
	}
	if w > area.Width || area.Height <= 0 {
		return false
	}
	sub := geom.NewRect(area.X, area.Y, w, area.Height)
	if n.Style.Float == box.FloatRight {
		sub.X = area.Right() - w
	}
	if !l.layoutBlock(n, sub, nil, fc) || n.Occupied.Y < area.Y {
		return false
	}
	fc.floats = append(fc.floats, floatArea{area: n.Occupied, side: n.Style.Float})
	return true
}

// layoutLine places line of text. Inline blocks inside the line are laid
// out side by side, each in its own formatting context.
func (l *Layouter) layoutLine(n *box.Node, area geom.Rect) bool {
	height := float32(l.estimateLines(n.Text, area.Width)) * l.cfg.LineHeight

	x := area.X
	for _, child := range n.Children {
		w := area.Right() - x
		if child.Style.Width != nil {
			w = min(child.Style.Width.Resolve(area.Width), w)
		}
		if w <= 0 || !l.layoutBlock(child, geom.NewRect(x, area.Y, w, area.Height), nil, &flowContext{}) {
			l.overflow = append(l.overflow, child)
			continue
		}
		x = child.Occupied.Right()
		height = max(height, child.Occupied.Height)
	}

	if height > area.Height {
		l.log.Debug("Line does not fit", zap.Stringer("node", n), zap.Float32("height", height), zap.Stringer("area", area))
		return false
	}
	n.Occupied = geom.NewRect(area.X, area.Top()-height, area.Width, height)
	return true
}

// estimateLines returns number of lines text needs in available width.
// Wide East Asian characters count as two.
func (l *Layouter) estimateLines(text string, available float32) int {
	if len(text) == 0 {
		return 0
	}
	var cells int
	for _, r := range text {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			cells += 2
		default:
			cells++
		}
	}
	if available <= 0 {
		return 1
	}
	perLine := max(int(available/l.cfg.CharWidth), 1)
	return max(int(math.Ceil(float64(cells)/float64(perLine))), 1)
}
