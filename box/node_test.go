package box

import "testing"

func TestCaps(t *testing.T) {
	root := New(KindRoot, "root")
	div := New(KindBlock, "div")
	table := New(KindTable, "table")
	cell := New(KindCell, "cell")
	line := New(KindLine, "line")
	span := New(KindBlock, "span")
	grid := New(KindGrid, "grid")
	item := New(KindBlock, "item")
	float := New(KindBlock, "float")
	float.Style.Float = FloatLeft
	hidden := New(KindBlock, "hidden")
	hidden.Style.Overflow = OverflowHidden
	flow := New(KindBlock, "flow")
	flow.Style.FlowRoot = true

	root.Append(div, table, line, grid, float, hidden, flow)
	table.Append(cell)
	line.Append(span)
	grid.Append(item)

	tests := []struct {
		node *Node
		has  Caps
		not  Caps
	}{
		{root, CapBlockLevel | CapFormattingContext, CapFloated | CapInlineBlock},
		{div, CapBlockLevel, CapFormattingContext | CapFloated | CapTable},
		{table, CapBlockLevel | CapTable, CapFormattingContext},
		{cell, CapBlockLevel | CapCell | CapFormattingContext, CapTable},
		{line, 0, CapBlockLevel | CapFormattingContext},
		{span, CapBlockLevel | CapInlineBlock | CapFormattingContext, CapFloated},
		{grid, CapFormattingContext, CapBlockLevel},
		{item, CapBlockLevel | CapFormattingContext, CapInlineBlock},
		{float, CapBlockLevel | CapFloated | CapFormattingContext, 0},
		{hidden, CapFormattingContext, CapFloated},
		{flow, CapFormattingContext, CapFloated},
	}
	for _, tt := range tests {
		t.Run(tt.node.ID, func(t *testing.T) {
			c := tt.node.Caps()
			if c&tt.has != tt.has {
				t.Errorf("caps %08b missing %08b", c, tt.has)
			}
			if c&tt.not != 0 {
				t.Errorf("caps %08b unexpectedly has %08b", c, c&tt.not)
			}
		})
	}
}

func TestCapsRecomputedOnReparent(t *testing.T) {
	span := New(KindBlock, "span")
	if span.Caps().Has(CapInlineBlock) {
		t.Fatal("orphan block must not be inline-block")
	}
	New(KindLine, "line").Append(span)
	if !span.Caps().Has(CapInlineBlock) {
		t.Fatal("block inside line must be inline-block")
	}
}

func TestEffectiveMargins(t *testing.T) {
	n := New(KindBlock, "n")
	n.Style.MarginTop = Pt(12)
	n.Style.MarginBottom = Pct(10)
	if got := n.EffectiveMarginTop(); got != 12 {
		t.Errorf("declared top = %v, want 12", got)
	}
	if got := n.EffectiveMarginBottom(); got != 0 {
		t.Errorf("percent bottom = %v, want 0", got)
	}
	n.Collapsed.SetTop(0)
	n.Collapsed.SetBottom(7)
	if n.EffectiveMarginTop() != 0 || n.EffectiveMarginBottom() != 7 {
		t.Errorf("override not honored: %+v", n.Collapsed)
	}
	n.Collapsed.Reset()
	if n.EffectiveMarginTop() != 12 {
		t.Errorf("reset override not honored")
	}

	c := New(KindCell, "c")
	c.Style.MarginTop = Pt(5)
	if c.EffectiveMarginTop() != 0 {
		t.Errorf("cell margins must be zero")
	}
}

func TestWalk(t *testing.T) {
	root := New(KindRoot, "r").Append(
		New(KindBlock, "a").Append(New(KindLine, "a1")),
		New(KindBlock, "b"),
	)
	var got []string
	root.Walk(func(n *Node, depth int) bool {
		got = append(got, n.ID)
		return n.ID != "a"
	})
	want := []string{"r", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Walk visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Walk visited %v, want %v", got, want)
		}
	}
}
