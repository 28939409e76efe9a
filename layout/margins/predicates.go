package margins

import (
	"go.uber.org/zap"

	"blockflow/box"
)

func isBlockElement(n *box.Node) bool {
	return n.Caps().Has(box.CapBlockLevel)
}

// firstChildMarginAdjoinedToParent reports whether top margin of the node
// may collapse with top margin of its first in-flow child.
func firstChildMarginAdjoinedToParent(n *box.Node) bool {
	c := n.Caps()
	return !c.Has(box.CapFormattingContext) && !c.Has(box.CapTable) &&
		!hasTopBorder(n) && !hasTopPadding(n)
}

// lastChildMarginAdjoinedToParent reports whether bottom margin of the node
// may collapse with bottom margin of its last in-flow child.
func lastChildMarginAdjoinedToParent(n *box.Node) bool {
	c := n.Caps()
	return !c.Has(box.CapFormattingContext) && !c.Has(box.CapTable) &&
		!hasBottomBorder(n) && !hasBottomPadding(n) && n.Style.Height == nil
}

// marginsCouldBeSelfCollapsing reports whether node structure allows its top
// and bottom margins to collapse through it. Content is checked separately.
func marginsCouldBeSelfCollapsing(n *box.Node) bool {
	c := n.Caps()
	return !c.Has(box.CapTable) && !c.Has(box.CapFloated) &&
		!hasTopBorder(n) && !hasBottomBorder(n) &&
		!hasTopPadding(n) && !hasBottomPadding(n) &&
		!hasPositiveHeight(n) &&
		!c.Has(box.CapInlineBlock)
}

func hasPositiveHeight(n *box.Node) bool {
	h := n.Occupied.Height
	if h == 0 {
		switch {
		case n.Style.MinHeight != nil:
			h = n.Style.MinHeight.Value
		case n.Style.Height != nil:
			h = n.Style.Height.Value
		}
	}
	return h > 0
}

func hasTopBorder(n *box.Node) bool {
	return n.Style.BorderTop > 0
}

func hasBottomBorder(n *box.Node) bool {
	return n.Style.BorderBottom > 0
}

// Percentage paddings are not resolved here, positive one still separates
// margins.
func hasTopPadding(n *box.Node) bool {
	return n.Style.PaddingTop.Value > 0
}

func hasBottomPadding(n *box.Node) bool {
	return n.Style.PaddingBottom.Value > 0
}

// Percentage margins are counted as 0.
func marginTop(n *box.Node) float32 {
	if n.Caps().Has(box.CapCell) || n.Style.MarginTop.Percent {
		return 0
	}
	return n.Style.MarginTop.Value
}

func marginBottom(n *box.Node) float32 {
	if n.Caps().Has(box.CapCell) || n.Style.MarginBottom.Percent {
		return 0
	}
	return n.Style.MarginBottom.Value
}

// reportPercentages logs vertical margins and paddings given in percents,
// once per node.
func reportPercentages(n *box.Node, log *zap.Logger) {
	for _, p := range []struct {
		name string
		l    box.Length
	}{
		{"margin-top", n.Style.MarginTop},
		{"margin-bottom", n.Style.MarginBottom},
		{"padding-top", n.Style.PaddingTop},
		{"padding-bottom", n.Style.PaddingBottom},
	} {
		if p.l.Percent {
			log.Error("Percentage values are not supported for vertical margins and paddings",
				zap.String("node", n.ID), zap.String("property", p.name), zap.Stringer("value", p.l))
		}
	}
}
