package document

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"blockflow/box"
	"blockflow/css"
)

// errDisplayNone is returned when element must not produce any box.
var errDisplayNone = errors.New("display none")

var (
	floats = map[string]box.Float{
		"none": box.FloatNone, "left": box.FloatLeft, "right": box.FloatRight,
	}
	clears = map[string]box.Clear{
		"none": box.ClearNone, "left": box.ClearLeft, "right": box.ClearRight, "both": box.ClearBoth,
	}
	overflows = map[string]box.Overflow{
		"visible": box.OverflowVisible, "hidden": box.OverflowHidden, "scroll": box.OverflowScroll, "auto": box.OverflowAuto,
	}
)

// styler converts cascaded declarations into node style. Conversion problems
// are collected, so one bad value does not stop the rest.
type styler struct {
	fontSize float64
	errs     error
}

func (s *styler) fail(prop string, err error) {
	s.errs = multierr.Append(s.errs, fmt.Errorf("%s: %w", prop, err))
}

func (s *styler) length(prop string, v css.Value) (box.Length, bool) {
	pt, percent, err := css.ToPoints(v, s.fontSize)
	if err != nil {
		s.fail(prop, err)
		return box.Length{}, false
	}
	if percent {
		return box.Pct(float32(pt)), true
	}
	return box.Pt(float32(pt)), true
}

func (s *styler) optLength(prop string, v css.Value) *box.Length {
	if v.Keyword == "auto" || v.Keyword == "none" {
		return nil
	}
	if l, ok := s.length(prop, v); ok {
		return &l
	}
	return nil
}

func (s *styler) border(prop string, width, style css.Value, haveWidth, haveStyle bool) float32 {
	switch {
	case haveStyle && (style.Keyword == "none" || style.Keyword == "hidden"):
		return 0
	case !haveWidth && haveStyle:
		return float32(2.25) // medium
	case !haveWidth:
		return 0
	}
	l, ok := s.length(prop, width)
	if !ok {
		return 0
	}
	if l.Percent {
		s.fail(prop, errors.New("percentage border width"))
		return 0
	}
	return l.Value
}

func keyword[T any](s *styler, prop string, v css.Value, values map[string]T) (T, bool) {
	res, ok := values[v.Keyword]
	if !ok {
		s.fail(prop, fmt.Errorf("unsupported value %q", v.Raw))
	}
	return res, ok
}

// applyStyle fills node style from declarations. It returns errDisplayNone
// when element is hidden, any other error is a list of problems with
// individual properties.
func applyStyle(n *box.Node, decl css.Declarations, fontSize float64) error {
	s := &styler{fontSize: fontSize}
	st := &n.Style

	for _, name := range decl.Names() {
		v := decl[name]
		switch name {
		case "display":
			switch v.Keyword {
			case "none":
				return errDisplayNone
			case "flow-root":
				st.FlowRoot = true
			}
		case "margin-top":
			if l, ok := s.length(name, v); ok {
				st.MarginTop = l
			}
		case "margin-bottom":
			if l, ok := s.length(name, v); ok {
				st.MarginBottom = l
			}
		case "padding-top":
			if l, ok := s.length(name, v); ok {
				st.PaddingTop = l
			}
		case "padding-bottom":
			if l, ok := s.length(name, v); ok {
				st.PaddingBottom = l
			}
		case "width":
			st.Width = s.optLength(name, v)
		case "height":
			st.Height = s.optLength(name, v)
		case "min-height":
			st.MinHeight = s.optLength(name, v)
		case "float":
			if f, ok := keyword(s, name, v, floats); ok {
				st.Float = f
			}
		case "clear":
			if c, ok := keyword(s, name, v, clears); ok {
				st.Clear = c
			}
		case "overflow":
			if o, ok := keyword(s, name, v, overflows); ok {
				st.Overflow = o
			}
		}
	}

	tw, htw := decl["border-top-width"]
	ts, hts := decl["border-top-style"]
	st.BorderTop = s.border("border-top-width", tw, ts, htw, hts)
	bw, hbw := decl["border-bottom-width"]
	bs, hbs := decl["border-bottom-style"]
	st.BorderBottom = s.border("border-bottom-width", bw, bs, hbw, hbs)

	return s.errs
}

// isInlineBlock reports whether declarations make element an inline block.
func isInlineBlock(decl css.Declarations) bool {
	return decl["display"].Keyword == "inline-block"
}
