package css

// Only vertical sides matter for block flow, horizontal parts of shorthands
// are dropped.

var shorthands = map[string]func([]Value) Declarations{
	"margin":        boxSides("margin-top", "margin-bottom"),
	"padding":       boxSides("padding-top", "padding-bottom"),
	"border-width":  boxSides("border-top-width", "border-bottom-width"),
	"border-style":  boxSides("border-top-style", "border-bottom-style"),
	"border":        border("border-top", "border-bottom"),
	"border-top":    border("border-top"),
	"border-bottom": border("border-bottom"),
}

// boxSides expands 1 to 4 value box shorthand: top is always the first value,
// bottom is the first one for 1 and 2 values and the third otherwise.
func boxSides(top, bottom string) func([]Value) Declarations {
	return func(values []Value) Declarations {
		res := make(Declarations)
		switch len(values) {
		case 1, 2:
			res[top], res[bottom] = values[0], values[0]
		case 3, 4:
			res[top], res[bottom] = values[0], values[2]
		}
		return res
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

var borderWidths = map[string]bool{"thin": true, "medium": true, "thick": true}

// border expands "width style color" shorthand for given sides, color is
// ignored.
func border(sides ...string) func([]Value) Declarations {
	return func(values []Value) Declarations {
		res := make(Declarations)
		for _, v := range values {
			for _, side := range sides {
				switch {
				case v.IsNumeric() || borderWidths[v.Keyword]:
					res[side+"-width"] = v
				case borderStyles[v.Keyword]:
					res[side+"-style"] = v
				}
			}
		}
		return res
	}
}
