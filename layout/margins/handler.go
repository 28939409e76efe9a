// Package margins implements vertical margin collapsing for block layout.
//
// A container creates Handler for the duration of its children layout pass
// and drives it through the following sequence:
//
//	StartMarginsCollapse(area)
//	for each child:
//	    StartChildMarginsHandling(child, layoutBox)
//	    ... child layout ...
//	    EndChildMarginsHandling(layoutBox)
//	EndMarginsCollapse(layoutBox)
//
// Handler never applies margins to child boxes directly. It adjusts layout
// boxes of the container, moves occupied areas of already placed children and
// records resolved margins in box.Node.Collapsed for the generic layout to
// use.
package margins

import (
	"go.uber.org/zap"

	"blockflow/box"
	"blockflow/geom"
)

// backup is state of the pass before current child layout attempt. It exists
// between the start and the end of child handling only.
type backup struct {
	layoutBox geom.Rect
	info      *snapshot
}

// Handler performs margin collapsing for a single container layout pass.
type Handler struct {
	node   *box.Node
	info   *Info
	log    *zap.Logger
	tracer *Tracer

	childInfo     *Info
	prevChildInfo *Info

	firstNotEmptyKidIndex int
	processedChildrenNum  int
	children              []*box.Node

	saved *backup

	lastKidCollapsedAfterHasClearanceApplied bool
}

// NewHandler creates handler for node layout pass. Info is collapsing state
// given to the node by its parent handler, when nil node starts fresh
// collapsing context.
func NewHandler(node *box.Node, info *Info, log *zap.Logger, tracer *Tracer) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if info == nil {
		info = NewInfo()
	}
	reportPercentages(node, log)
	return &Handler{
		node:   node,
		info:   info,
		log:    log,
		tracer: tracer,
	}
}

// Info returns collapsing state of the container.
func (h *Handler) Info() *Info {
	return h.info
}

// ProcessFixedHeightAdjustment adds space freed by fixed height of the
// container to buffers available for margins.
func (h *Handler) ProcessFixedHeightAdjustment(delta float32) {
	h.info.BufferTop = max(h.info.BufferTop+delta, 0)
	h.info.BufferBottom = max(h.info.BufferBottom+delta, 0)
	h.tracer.Trace("fixed-height", h.node, "delta=%g buffer=%g/%g", delta, h.info.BufferTop, h.info.BufferBottom)
}

// StartChildMarginsHandling prepares layoutBox for the child layout attempt
// and returns collapsing state child must use for its own pass. Nil is
// returned for children which are not block level or are floated.
func (h *Handler) StartChildMarginsHandling(child *box.Node, layoutBox *geom.Rect) *Info {
	if h.saved != nil {
		// previous child was floated or could not be placed
		h.restore(layoutBox)
		h.processedChildrenNum--
		h.children = h.children[:h.processedChildrenNum]
		h.childInfo = nil
	}

	h.children = append(h.children, child)
	childIndex := h.processedChildrenNum
	h.processedChildrenNum++

	childIsBlockElement := !child.IsFloated() && isBlockElement(child)

	h.saved = &backup{layoutBox: *layoutBox, info: takeSnapshot(h.info)}

	h.prepareBoxForLayoutAttempt(layoutBox, childIndex, childIsBlockElement)
	if childIsBlockElement {
		h.childInfo = h.createMarginsInfoForBlockChild(childIndex)
	} else {
		h.childInfo = nil
	}

	h.tracer.Trace("child-start", h.node, "child=%s index=%d block=%t box=%s", child, childIndex, childIsBlockElement, layoutBox)
	return h.childInfo
}

// ApplyClearance records clearance of the container. Clearance separates
// container margins from margins of preceding boxes.
func (h *Handler) ApplyClearance(clearHeightCorrection float32) {
	h.info.ClearanceApplied = true
	h.info.Before.Join(clearHeightCorrection)
	h.tracer.Trace("clearance", h.node, "correction=%g before=%s", clearHeightCorrection, h.info.Before)
}

// EndChildMarginsHandling commits child layout attempt. Occupied area of the
// child has to be final at this point.
func (h *Handler) EndChildMarginsHandling(layoutBox *geom.Rect) {
	childIndex := h.processedChildrenNum - 1
	if childIndex < 0 {
		h.log.Debug("Child margins handling ended without start", zap.String("node", h.node.ID))
		return
	}
	if h.children[childIndex].IsFloated() {
		// floats do not take part in collapsing, saved state will be restored
		// when next child starts
		return
	}

	if h.childInfo != nil {
		if h.firstNotEmptyKidIndex == childIndex && h.childInfo.SelfCollapsing {
			h.firstNotEmptyKidIndex = childIndex + 1
		}
		h.info.SelfCollapsing = h.info.SelfCollapsing && h.childInfo.SelfCollapsing
		h.lastKidCollapsedAfterHasClearanceApplied = h.childInfo.SelfCollapsing && h.childInfo.ClearanceApplied
	} else {
		h.lastKidCollapsedAfterHasClearanceApplied = false
		h.info.SelfCollapsing = false
	}

	if h.prevChildInfo != nil {
		h.fixPrevChildOccupiedArea(childIndex)
		h.updateCollapseBeforeIfPrevKidIsFirstAndSelfCollapsed(h.prevChildInfo.OwnAfter)
	}

	if h.firstNotEmptyKidIndex == childIndex && firstChildMarginAdjoinedToParent(h.node) {
		if !h.info.SelfCollapsing {
			h.getRidOfCollapseArtifactsAtopOccupiedArea()
			if h.childInfo != nil {
				h.processUsedChildBufferSpaceOnTop(layoutBox)
			}
		}
	}

	h.prevChildInfo = h.childInfo
	h.childInfo = nil
	h.saved = nil

	h.tracer.Trace("child-end", h.node, "child=%s first-not-empty=%d occupied=%s %s", h.children[childIndex], h.firstNotEmptyKidIndex, h.node.Occupied, h.info)
}

// StartMarginsCollapse starts container pass: own margins of the container
// join adjoining groups and those which cannot be adjoined to children are
// applied to parentBBox right away.
func (h *Handler) StartMarginsCollapse(parentBBox *geom.Rect) {
	h.info.Before.Join(marginTop(h.node))
	h.info.After.Join(marginBottom(h.node))

	if !firstChildMarginAdjoinedToParent(h.node) {
		h.applyTopMargin(parentBBox, h.info.Before.Size())
	}
	if !lastChildMarginAdjoinedToParent(h.node) {
		h.applyBottomMargin(parentBBox, h.info.After.Size())
	}

	// margins are handled here, generic layout must not apply them
	h.node.Collapsed.SetTop(0)
	h.overrideModelBottomMargin(h.node, 0)

	h.tracer.Trace("start", h.node, "box=%s %s", parentBBox, h.info)
}

// EndMarginsCollapse finishes container pass and resolves container margins.
func (h *Handler) EndMarginsCollapse(layoutBox *geom.Rect) {
	if h.saved != nil {
		h.restore(layoutBox)
	}

	if h.prevChildInfo != nil {
		h.updateCollapseBeforeIfPrevKidIsFirstAndSelfCollapsed(h.prevChildInfo.After)
	}

	couldBeSelfCollapsing := marginsCouldBeSelfCollapsing(h.node) && !h.lastKidCollapsedAfterHasClearanceApplied
	blockHasNoKidsWithContent := h.info.SelfCollapsing
	if firstChildMarginAdjoinedToParent(h.node) && blockHasNoKidsWithContent && !couldBeSelfCollapsing {
		h.addNotYetAppliedTopMargin(layoutBox)
	}
	h.info.SelfCollapsing = h.info.SelfCollapsing && couldBeSelfCollapsing

	if !blockHasNoKidsWithContent && h.lastKidCollapsedAfterHasClearanceApplied {
		h.applySelfCollapsedKidMarginWithClearance(layoutBox)
	}

	lastChildMarginJoinedToParent := h.prevChildInfo != nil && h.prevChildInfo.IgnoreOwnMarginBottom && !h.lastKidCollapsedAfterHasClearanceApplied
	var ownCollapseAfter *Collapse
	if lastChildMarginJoinedToParent && h.prevChildInfo.OwnAfter != nil {
		ownCollapseAfter = h.prevChildInfo.OwnAfter
	} else {
		ownCollapseAfter = &Collapse{}
	}
	ownCollapseAfter.Join(marginBottom(h.node))
	h.info.OwnAfter = ownCollapseAfter

	if h.info.SelfCollapsing {
		if h.prevChildInfo != nil {
			h.info.After = h.prevChildInfo.After
		} else {
			h.info.After.JoinCollapse(h.info.Before)
			h.info.OwnAfter.JoinCollapse(h.info.Before)
		}
		if !h.info.IgnoreOwnMarginBottom && !h.info.IgnoreOwnMarginTop {
			h.overrideModelBottomMargin(h.node, h.info.After.Size())
		}
	} else {
		if !h.info.IgnoreOwnMarginTop {
			h.node.Collapsed.SetTop(h.info.Before.Size())
		}
		if lastChildMarginJoinedToParent {
			h.info.After = h.prevChildInfo.After
		}
		if !h.info.IgnoreOwnMarginBottom {
			h.overrideModelBottomMargin(h.node, h.info.After.Size())
		}
	}

	if lastChildMarginAdjoinedToParent(h.node) && (h.prevChildInfo != nil || blockHasNoKidsWithContent) {
		// the last child was not able to apply container bottom margin, do it
		// here
		h.applyBottomMargin(layoutBox, h.info.After.Size())
	}

	h.tracer.Trace("end", h.node, "box=%s margins=%s %s", layoutBox, formatOverride(h.node), h.info)
}

func (h *Handler) restore(layoutBox *geom.Rect) {
	*layoutBox = h.saved.layoutBox
	h.saved.info.restoreTo(h.info)
	h.saved = nil
	h.tracer.Trace("restore", h.node, "box=%s %s", layoutBox, h.info)
}

func (h *Handler) createMarginsInfoForBlockChild(childIndex int) *Info {
	ignoreChildTopMargin := false
	// always assume that current child might be the last on this area
	ignoreChildBottomMargin := lastChildMarginAdjoinedToParent(h.node)
	if childIndex == h.firstNotEmptyKidIndex {
		ignoreChildTopMargin = firstChildMarginAdjoinedToParent(h.node)
	}

	var childCollapseBefore *Collapse
	if childIndex == 0 {
		if ignoreChildTopMargin {
			childCollapseBefore = h.info.Before
		} else {
			childCollapseBefore = &Collapse{}
		}
	} else {
		var prevCollapseAfter *Collapse
		if h.prevChildInfo != nil {
			prevCollapseAfter = h.prevChildInfo.OwnAfter
		}
		if prevCollapseAfter != nil {
			childCollapseBefore = prevCollapseAfter
		} else {
			childCollapseBefore = &Collapse{}
		}
	}

	var childCollapseAfter *Collapse
	if ignoreChildBottomMargin {
		childCollapseAfter = h.info.After.Clone()
	} else {
		childCollapseAfter = &Collapse{}
	}

	childInfo := newChildInfo(ignoreChildTopMargin, ignoreChildBottomMargin, childCollapseBefore, childCollapseAfter)
	if ignoreChildTopMargin && childIndex == h.firstNotEmptyKidIndex {
		childInfo.BufferTop = h.info.BufferTop
	}
	if ignoreChildBottomMargin {
		childInfo.BufferBottom = h.info.BufferBottom
	}
	return childInfo
}

func (h *Handler) prepareBoxForLayoutAttempt(layoutBox *geom.Rect, childIndex int, childIsBlockElement bool) {
	if h.prevChildInfo != nil {
		prevChildHasAppliedCollapseAfter := !h.prevChildInfo.IgnoreOwnMarginBottom &&
			(!h.prevChildInfo.SelfCollapsing || !h.prevChildInfo.IgnoreOwnMarginTop)
		if prevChildHasAppliedCollapseAfter {
			layoutBox.IncreaseHeight(h.prevChildInfo.After.Size())
		}

		prevChildCanApplyCollapseAfter := !h.prevChildInfo.SelfCollapsing || !h.prevChildInfo.IgnoreOwnMarginTop
		if !childIsBlockElement && prevChildCanApplyCollapseAfter {
			layoutBox.DecreaseHeight(h.prevChildInfo.OwnAfter.Size())
		}
	} else if childIndex > h.firstNotEmptyKidIndex {
		if lastChildMarginAdjoinedToParent(h.node) {
			// restore layout box after inline element
			bottomIndent := h.info.After.Size() - h.info.UsedBufferBottom
			h.info.BufferBottom += h.info.UsedBufferBottom
			h.info.UsedBufferBottom = 0
			layoutBox.MoveDown(bottomIndent)
			layoutBox.IncreaseHeight(bottomIndent)
		}
	}

	if !childIsBlockElement {
		if childIndex == h.firstNotEmptyKidIndex && firstChildMarginAdjoinedToParent(h.node) {
			h.applyTopMargin(layoutBox, h.info.Before.Size())
		}
		// if not adjoined - bottom margin has been already applied on start
		if lastChildMarginAdjoinedToParent(h.node) {
			h.applyBottomMargin(layoutBox, h.info.After.Size())
		}
	}
}

func (h *Handler) updateCollapseBeforeIfPrevKidIsFirstAndSelfCollapsed(collapseAfter *Collapse) {
	if h.prevChildInfo.SelfCollapsing && h.prevChildInfo.IgnoreOwnMarginTop {
		// prev child margins were adjoined to the container top margin
		h.info.Before.JoinCollapse(collapseAfter)
	}
}

func (h *Handler) fixPrevChildOccupiedArea(childIndex int) {
	prevChild := h.children[childIndex-1]
	bbox := &prevChild.Occupied

	prevChildHasAppliedCollapseAfter := !h.prevChildInfo.IgnoreOwnMarginBottom &&
		(!h.prevChildInfo.SelfCollapsing || !h.prevChildInfo.IgnoreOwnMarginTop)
	if prevChildHasAppliedCollapseAfter {
		bottomMargin := h.prevChildInfo.After.Size()
		bbox.DecreaseHeight(bottomMargin)
		bbox.MoveUp(bottomMargin)
		h.overrideModelBottomMargin(prevChild, 0)
	}

	currChildIsBlockElement := isBlockElement(h.children[childIndex])
	prevChildCanApplyCollapseAfter := !h.prevChildInfo.SelfCollapsing || !h.prevChildInfo.IgnoreOwnMarginTop
	if !currChildIsBlockElement && prevChildCanApplyCollapseAfter {
		ownCollapsedMargins := h.prevChildInfo.OwnAfter.Size()
		bbox.IncreaseHeight(ownCollapsedMargins)
		bbox.MoveDown(ownCollapsedMargins)
		h.overrideModelBottomMargin(prevChild, ownCollapsedMargins)
	}

	h.tracer.Trace("fix-prev", h.node, "prev=%s occupied=%s margins=%s", prevChild, *bbox, formatOverride(prevChild))
}

func (h *Handler) addNotYetAppliedTopMargin(layoutBox *geom.Rect) {
	indentTop := h.info.Before.Size()
	h.node.Occupied.MoveDown(indentTop)
	h.applyTopMargin(layoutBox, indentTop)
	h.tracer.Trace("top-late", h.node, "indent=%g occupied=%s", indentTop, h.node.Occupied)
}

func (h *Handler) applySelfCollapsedKidMarginWithClearance(layoutBox *geom.Rect) {
	// self-collapsing kid with clearance is pushed below floats, its margins
	// stay inside container
	clearedKidMarginWithClearance := h.prevChildInfo.OwnAfter.Size()
	h.node.Occupied.IncreaseHeight(clearedKidMarginWithClearance)
	h.node.Occupied.MoveDown(clearedKidMarginWithClearance)
	layoutBox.DecreaseHeight(clearedKidMarginWithClearance)
	h.tracer.Trace("clearance-kid", h.node, "margin=%g occupied=%s", clearedKidMarginWithClearance, h.node.Occupied)
}

func (h *Handler) getRidOfCollapseArtifactsAtopOccupiedArea() {
	h.node.Occupied.DecreaseHeight(h.info.Before.Size())
	h.tracer.Trace("artifacts", h.node, "trimmed=%g occupied=%s", h.info.Before.Size(), h.node.Occupied)
}

func (h *Handler) processUsedChildBufferSpaceOnTop(layoutBox *geom.Rect) {
	childUsedBufferSpaceOnTop := h.childInfo.UsedBufferTop
	if childUsedBufferSpaceOnTop > 0 {
		if childUsedBufferSpaceOnTop > h.info.BufferTop {
			childUsedBufferSpaceOnTop = h.info.BufferTop
		}
		h.info.BufferTop -= childUsedBufferSpaceOnTop
		h.info.UsedBufferTop = childUsedBufferSpaceOnTop
		layoutBox.MoveDown(childUsedBufferSpaceOnTop)
		h.subtractUsedTopBufferFromBottomBuffer(childUsedBufferSpaceOnTop)
		h.tracer.Trace("buffer", h.node, "reclaimed=%g buffer=%g/%g", childUsedBufferSpaceOnTop, h.info.BufferTop, h.info.BufferBottom)
	}
}

func (h *Handler) applyTopMargin(box *geom.Rect, topIndent float32) {
	bufferLeftoversOnTop := h.info.BufferTop - topIndent
	usedTopBuffer := h.info.BufferTop
	if bufferLeftoversOnTop > 0 {
		usedTopBuffer = topIndent
	}
	h.info.UsedBufferTop = usedTopBuffer
	h.subtractUsedTopBufferFromBottomBuffer(usedTopBuffer)

	if bufferLeftoversOnTop >= 0 {
		h.info.BufferTop = bufferLeftoversOnTop
		box.MoveDown(topIndent)
	} else {
		box.MoveDown(h.info.BufferTop)
		h.info.BufferTop = 0
		box.IncreaseHeight(bufferLeftoversOnTop)
	}
}

func (h *Handler) applyBottomMargin(box *geom.Rect, bottomIndent float32) {
	bottomIndentLeftovers := bottomIndent - h.info.BufferBottom
	if bottomIndentLeftovers < 0 {
		h.info.UsedBufferBottom = bottomIndent
		h.info.BufferBottom = -bottomIndentLeftovers
	} else {
		h.info.UsedBufferBottom = h.info.BufferBottom
		h.info.BufferBottom = 0
		box.MoveUp(bottomIndentLeftovers)
		box.DecreaseHeight(bottomIndentLeftovers)
	}
}

func (h *Handler) subtractUsedTopBufferFromBottomBuffer(usedTopBuffer float32) {
	if h.info.BufferTop > h.info.BufferBottom {
		bufferLeftoversOnTop := h.info.BufferTop - usedTopBuffer
		if bufferLeftoversOnTop < h.info.BufferBottom {
			h.info.BufferBottom = max(bufferLeftoversOnTop, 0)
		}
	} else {
		h.info.BufferBottom = max(h.info.BufferBottom-usedTopBuffer, 0)
	}
}

// overrideModelBottomMargin sets resolved bottom margin of the node, keeping
// saved properties of continuous container in sync.
func (h *Handler) overrideModelBottomMargin(n *box.Node, v float32) {
	n.Collapsed.SetBottom(v)
	if n.Continuation != nil {
		n.Continuation.UpdateSavedMarginBottom(v)
	}
}
