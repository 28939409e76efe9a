package box

import (
	"fmt"
	"strconv"
)

// Length is resolved CSS length: either absolute value in points or
// percentage of containing block dimension.
type Length struct {
	Value   float32
	Percent bool
}

func Pt(v float32) Length {
	return Length{Value: v}
}

func Pct(v float32) Length {
	return Length{Value: v, Percent: true}
}

func (l Length) String() string {
	s := strconv.FormatFloat(float64(l.Value), 'f', -1, 32)
	if l.Percent {
		return s + "%"
	}
	return s + "pt"
}

// Resolve converts length to points using base for percentages.
func (l Length) Resolve(base float32) float32 {
	if l.Percent {
		return base * l.Value / 100
	}
	return l.Value
}

// Style keeps resolved properties relevant to vertical block layout.
type Style struct {
	MarginTop     Length
	MarginBottom  Length
	PaddingTop    Length
	PaddingBottom Length
	BorderTop     float32
	BorderBottom  float32

	Width     *Length
	Height    *Length
	MinHeight *Length

	Float    Float
	Clear    Clear
	Overflow Overflow
	FlowRoot bool
}

func (s Style) String() string {
	opt := func(l *Length) string {
		if l == nil {
			return "auto"
		}
		return l.String()
	}
	return fmt.Sprintf("margin=%s/%s padding=%s/%s border=%g/%g height=%s min-height=%s float=%s clear=%s",
		s.MarginTop, s.MarginBottom, s.PaddingTop, s.PaddingBottom, s.BorderTop, s.BorderBottom,
		opt(s.Height), opt(s.MinHeight), s.Float, s.Clear)
}

// MarginOverride is resolved collapsed margin written by margin collapsing
// engine. When side is set it replaces declared margin of the node.
type MarginOverride struct {
	Top, Bottom       float32
	HasTop, HasBottom bool
}

func (m *MarginOverride) SetTop(v float32) {
	m.Top, m.HasTop = v, true
}

func (m *MarginOverride) SetBottom(v float32) {
	m.Bottom, m.HasBottom = v, true
}

func (m *MarginOverride) Reset() {
	*m = MarginOverride{}
}

// Continuation keeps properties saved for continuous (split) container, so
// later fragments start with the same values.
type Continuation struct {
	MarginBottom    float32
	HasMarginBottom bool
}

func (c *Continuation) UpdateSavedMarginBottom(v float32) {
	c.MarginBottom, c.HasMarginBottom = v, true
}
