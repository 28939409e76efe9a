package margins

import (
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"blockflow/box"
	"blockflow/geom"
)

// container returns block with given margins placed into root.
func container(id string, top, bottom float32) (*box.Node, *box.Node) {
	root := box.New(box.KindRoot, "root")
	n := box.New(box.KindBlock, id)
	n.Style.MarginTop = box.Pt(top)
	n.Style.MarginBottom = box.Pt(bottom)
	root.Append(n)
	return root, n
}

func TestStartMarginsCollapseNotAdjoined(t *testing.T) {
	_, c := container("c", 10, 5)
	c.Style.Overflow = box.OverflowHidden

	h := NewHandler(c, nil, zaptest.NewLogger(t), nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)

	if want := geom.NewRect(0, 5, 100, 185); bbox != want {
		t.Errorf("bbox = %v, want %v", bbox, want)
	}
	if !c.Collapsed.HasTop || !c.Collapsed.HasBottom || c.Collapsed.Top != 0 || c.Collapsed.Bottom != 0 {
		t.Errorf("margins must be zeroed during pass, got %+v", c.Collapsed)
	}
}

func TestStartMarginsCollapseAdjoined(t *testing.T) {
	_, c := container("c", 10, 5)

	h := NewHandler(c, nil, zap.NewNop(), nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)

	if want := geom.NewRect(0, 0, 100, 200); bbox != want {
		t.Errorf("bbox = %v, want %v", bbox, want)
	}
	if h.Info().Before.Size() != 10 || h.Info().After.Size() != 5 {
		t.Errorf("unexpected state %s", h.Info())
	}
}

func TestFloatAttemptIsAbandoned(t *testing.T) {
	_, c := container("c", 10, 0)
	float := box.New(box.KindBlock, "float")
	float.Style.Float = box.FloatLeft
	kid := box.New(box.KindBlock, "kid")
	c.Append(float, kid)

	h := NewHandler(c, NewInfo(), zap.NewNop(), nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	c.Occupied = geom.NewRect(0, bbox.Top(), bbox.Width, 0)

	layoutBox := bbox
	if info := h.StartChildMarginsHandling(float, &layoutBox); info != nil {
		t.Fatalf("float must not get collapsing state, got %s", info)
	}
	if layoutBox == bbox {
		t.Fatal("container top margin must be applied for non-block child")
	}
	h.EndChildMarginsHandling(&layoutBox)

	info := h.StartChildMarginsHandling(kid, &layoutBox)
	if layoutBox != bbox {
		t.Errorf("layout box not restored: %v, want %v", layoutBox, bbox)
	}
	if info == nil {
		t.Fatal("block child must get collapsing state")
	}
	if !info.IgnoreOwnMarginTop || !info.IgnoreOwnMarginBottom {
		t.Errorf("first child of adjoined container must ignore both margins: %s", info)
	}
	if info.Before != h.Info().Before {
		t.Error("first child must share container top accumulator")
	}
	if len(h.children) != 1 || h.children[0] != kid {
		t.Errorf("abandoned child still recorded: %v", h.children)
	}
	if h.Info().UsedBufferTop != 0 || h.Info().BufferTop != 0 {
		t.Errorf("state not restored: %s", h.Info())
	}
}

func TestApplyClearance(t *testing.T) {
	_, c := container("c", 4, 0)
	h := NewHandler(c, nil, nil, nil)
	h.ApplyClearance(12)
	if !h.Info().ClearanceApplied || h.Info().Before.Size() != 12 {
		t.Errorf("unexpected state %s", h.Info())
	}
}

func TestProcessFixedHeightAdjustment(t *testing.T) {
	_, c := container("c", 0, 0)
	h := NewHandler(c, nil, nil, nil)
	h.ProcessFixedHeightAdjustment(20)
	if h.Info().BufferTop != 20 || h.Info().BufferBottom != 20 {
		t.Fatalf("unexpected buffers %s", h.Info())
	}
	h.ProcessFixedHeightAdjustment(-50)
	if h.Info().BufferTop != 0 || h.Info().BufferBottom != 0 {
		t.Fatalf("buffers must not be negative %s", h.Info())
	}
}

func TestTopMarginConsumesBufferFirst(t *testing.T) {
	_, c := container("c", 0, 0)
	h := NewHandler(c, nil, nil, nil)
	h.ProcessFixedHeightAdjustment(30)

	b := geom.NewRect(0, 0, 100, 100)
	h.applyTopMargin(&b, 10)
	if b != geom.NewRect(0, -10, 100, 100) {
		t.Errorf("box = %v", b)
	}
	if h.Info().BufferTop != 20 || h.Info().UsedBufferTop != 10 {
		t.Errorf("unexpected state %s", h.Info())
	}

	h.applyTopMargin(&b, 25)
	if b != geom.NewRect(0, -30, 100, 95) {
		t.Errorf("box = %v", b)
	}
	if h.Info().BufferTop != 0 || h.Info().UsedBufferTop != 20 {
		t.Errorf("unexpected state %s", h.Info())
	}
}

func TestBottomMarginConsumesBufferFirst(t *testing.T) {
	_, c := container("c", 0, 0)
	h := NewHandler(c, nil, nil, nil)
	h.Info().BufferBottom = 8

	b := geom.NewRect(0, 0, 100, 100)
	h.applyBottomMargin(&b, 5)
	if b != geom.NewRect(0, 0, 100, 100) || h.Info().BufferBottom != 3 || h.Info().UsedBufferBottom != 5 {
		t.Errorf("box = %v state %s", b, h.Info())
	}
	h.applyBottomMargin(&b, 10)
	if b != geom.NewRect(0, 7, 100, 93) || h.Info().BufferBottom != 0 || h.Info().UsedBufferBottom != 3 {
		t.Errorf("box = %v state %s", b, h.Info())
	}
}

func TestEmptyContainerSelfCollapses(t *testing.T) {
	_, c := container("c", 10, 20)
	h := NewHandler(c, nil, nil, nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	c.Occupied = geom.NewRect(0, bbox.Top(), bbox.Width, 0)

	layoutBox := bbox
	h.EndMarginsCollapse(&layoutBox)

	if !h.Info().SelfCollapsing {
		t.Fatal("empty container must be self collapsing")
	}
	if c.Collapsed.Top != 0 || c.Collapsed.Bottom != 20 {
		t.Errorf("collapsed margins = %+v, want 0/20", c.Collapsed)
	}
	if h.Info().OwnAfter.Size() != 20 {
		t.Errorf("own after = %s", h.Info().OwnAfter)
	}
	if want := geom.NewRect(0, 20, 100, 180); layoutBox != want {
		t.Errorf("layout box = %v, want %v", layoutBox, want)
	}
}

// layoutEmpty runs empty child through its own handler inside parent pass.
func layoutEmpty(h *Handler, kid *box.Node, layoutBox *geom.Rect) {
	info := h.StartChildMarginsHandling(kid, layoutBox)
	kh := NewHandler(kid, info, nil, nil)
	kb := *layoutBox
	kh.StartMarginsCollapse(&kb)
	kid.Occupied = geom.NewRect(kb.X, kb.Top(), kb.Width, 0)
	kh.EndMarginsCollapse(&kb)
	h.EndChildMarginsHandling(layoutBox)
}

func TestContainerOfEmptyChildrenSelfCollapses(t *testing.T) {
	_, c := container("c", 7, 3)
	a, b := box.New(box.KindBlock, "a"), box.New(box.KindBlock, "b")
	c.Append(a, b)

	h := NewHandler(c, nil, nil, nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	c.Occupied = geom.NewRect(0, bbox.Top(), bbox.Width, 0)

	layoutBox := bbox
	layoutEmpty(h, a, &layoutBox)
	layoutEmpty(h, b, &layoutBox)
	h.EndMarginsCollapse(&layoutBox)

	info := h.Info()
	if !info.SelfCollapsing {
		t.Fatalf("container of empty children must be self collapsing: %s", info)
	}
	if info.Before.Size() != 7 || info.After.Size() != 7 {
		t.Errorf("before/after = %s/%s, want 7/7", info.Before, info.After)
	}
	if c.Collapsed.Top != 0 || c.Collapsed.Bottom != 7 {
		t.Errorf("collapsed margins = %+v, want 0/7", c.Collapsed)
	}
}

func TestEmptyContainerWithBorder(t *testing.T) {
	_, c := container("c", 10, 20)
	c.Style.BorderTop = 1
	h := NewHandler(c, nil, nil, nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	if bbox.Top() != 190 {
		t.Fatalf("top margin must be applied at start, box %v", bbox)
	}
	c.Occupied = geom.NewRect(0, bbox.Top(), bbox.Width, 0)

	layoutBox := bbox
	h.EndMarginsCollapse(&layoutBox)
	if h.Info().SelfCollapsing {
		t.Fatal("bordered container must not self collapse")
	}
	if c.Collapsed.Top != 10 || c.Collapsed.Bottom != 20 {
		t.Errorf("collapsed margins = %+v, want 10/20", c.Collapsed)
	}
}

func TestMinHeightPreventsSelfCollapsing(t *testing.T) {
	_, c := container("c", 10, 20)
	mh := box.Pt(5)
	c.Style.MinHeight = &mh
	h := NewHandler(c, nil, nil, nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	c.Occupied = geom.NewRect(0, bbox.Top(), bbox.Width, 0)

	layoutBox := bbox
	h.EndMarginsCollapse(&layoutBox)
	if h.Info().SelfCollapsing {
		t.Fatal("container with min-height must not self collapse")
	}
	// top margin had no content to attach to and is applied late
	if c.Occupied.Top() != 190 {
		t.Errorf("occupied = %v", c.Occupied)
	}
	if c.Collapsed.Top != 10 {
		t.Errorf("collapsed margins = %+v", c.Collapsed)
	}
}

func TestContinuationSavedMarginUpdated(t *testing.T) {
	_, c := container("c", 10, 20)
	c.Continuation = &box.Continuation{MarginBottom: 20, HasMarginBottom: true}
	h := NewHandler(c, nil, nil, nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	if c.Continuation.MarginBottom != 0 {
		t.Errorf("saved bottom margin = %v, want 0", c.Continuation.MarginBottom)
	}
}

func TestPercentMarginReported(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	_, c := container("c", 0, 0)
	c.Style.MarginTop = box.Pct(10)

	h := NewHandler(c, nil, zap.New(core), nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)

	if h.Info().Before.Size() != 0 {
		t.Errorf("percent margin must count as zero, got %s", h.Info().Before)
	}
	if logs.Len() == 0 {
		t.Fatal("percent margin was not reported")
	}
	if !strings.Contains(logs.All()[0].Message, "Percentage") {
		t.Errorf("unexpected message %q", logs.All()[0].Message)
	}
}

func TestPercentPaddingReportedOnce(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	_, c := container("c", 0, 0)
	c.Style.PaddingTop = box.Pct(5)
	c.Style.PaddingBottom = box.Pct(5)
	for _, id := range []string{"a", "b", "d"} {
		c.Append(box.New(box.KindBlock, id))
	}

	h := NewHandler(c, nil, zap.New(core), nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	c.Occupied = geom.NewRect(0, bbox.Top(), bbox.Width, 0)
	layoutBox := bbox
	for _, kid := range c.Children {
		h.StartChildMarginsHandling(kid, &layoutBox)
		kid.Occupied = geom.NewRect(0, layoutBox.Top(), layoutBox.Width, 0)
		h.EndChildMarginsHandling(&layoutBox)
	}
	h.EndMarginsCollapse(&layoutBox)

	if got := logs.FilterField(zap.String("node", "c")).Len(); got != 2 {
		t.Errorf("got %d reports, want one per percentage property", got)
	}
	if h.Info().SelfCollapsing {
		t.Error("positive percentage padding must prevent self collapsing")
	}
}

func TestCellMarginsIgnored(t *testing.T) {
	root := box.New(box.KindRoot, "root")
	table := box.New(box.KindTable, "table")
	cell := box.New(box.KindCell, "cell")
	cell.Style.MarginTop = box.Pt(10)
	root.Append(table.Append(cell))

	h := NewHandler(cell, nil, nil, nil)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	if bbox.Height != 200 || h.Info().Before.Size() != 0 {
		t.Errorf("cell margin was applied: %v %s", bbox, h.Info())
	}
}

func TestTracer(t *testing.T) {
	if NewTracer("").IsEnabled() {
		t.Fatal("tracer without directory must be disabled")
	}
	var nilTracer *Tracer
	nilTracer.Trace("start", box.New(box.KindBlock, "x"), "ignored")
	if nilTracer.Flush() != "" {
		t.Fatal("nil tracer must not flush")
	}

	dir := t.TempDir()
	tr := NewTracer(dir)
	_, c := container("c", 10, 0)
	h := NewHandler(c, nil, nil, tr)
	bbox := geom.NewRect(0, 0, 100, 200)
	h.StartMarginsCollapse(&bbox)
	h.ApplyClearance(3)
	if tr.Len() != 2 {
		t.Fatalf("entries = %d, want 2", tr.Len())
	}

	path := tr.Flush()
	if path == "" {
		t.Fatal("trace was not written")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{tr.Run(), "clearance: 1", "start: 1", "CLEARANCE: block(c)"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("trace does not contain %q:\n%s", want, data)
		}
	}
	if tr.Len() != 0 {
		t.Error("entries were not cleared")
	}
}
