package box

// Kind is closed set of render node varieties layout knows about.
type Kind int

const (
	KindBlock Kind = iota
	KindTable
	KindCell
	KindLine
	KindGrid
	KindRoot
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindTable:
		return "table"
	case KindCell:
		return "cell"
	case KindLine:
		return "line"
	case KindGrid:
		return "grid"
	case KindRoot:
		return "root"
	default:
		return "unknown"
	}
}

// Float side of a floated box.
type Float int

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

func (f Float) String() string {
	switch f {
	case FloatLeft:
		return "left"
	case FloatRight:
		return "right"
	default:
		return "none"
	}
}

// Clear specifies float sides a box must be placed below.
type Clear int

const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearBoth
)

// Matches reports whether float on given side has to be cleared.
func (c Clear) Matches(f Float) bool {
	switch c {
	case ClearBoth:
		return f != FloatNone
	case ClearLeft:
		return f == FloatLeft
	case ClearRight:
		return f == FloatRight
	default:
		return false
	}
}

func (c Clear) String() string {
	switch c {
	case ClearLeft:
		return "left"
	case ClearRight:
		return "right"
	case ClearBoth:
		return "both"
	default:
		return "none"
	}
}

type Overflow int

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

func (o Overflow) String() string {
	switch o {
	case OverflowHidden:
		return "hidden"
	case OverflowScroll:
		return "scroll"
	case OverflowAuto:
		return "auto"
	default:
		return "visible"
	}
}
