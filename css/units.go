package css

import (
	"errors"
	"fmt"
)

// ErrUnsupportedUnit is returned for values which cannot be expressed in
// points.
var ErrUnsupportedUnit = errors.New("unsupported unit")

const pxToPt = 0.75

var keywordPoints = map[string]float64{
	"auto":   0,
	"thin":   1 * pxToPt,
	"medium": 3 * pxToPt,
	"thick":  5 * pxToPt,
}

// ToPoints converts length value to points. Font relative units are resolved
// against fontSize. Percentages are returned as is with percent set, caller
// decides what to resolve them against.
func ToPoints(v Value, fontSize float64) (value float64, percent bool, err error) {
	if v.IsKeyword() {
		if pt, ok := keywordPoints[v.Keyword]; ok {
			return pt, false, nil
		}
		return 0, false, fmt.Errorf("%q: %w", v.Raw, ErrUnsupportedUnit)
	}
	if !v.IsNumeric() {
		return 0, false, fmt.Errorf("%q: %w", v.Raw, ErrUnsupportedUnit)
	}

	switch v.Unit {
	case "%":
		return v.Value, true, nil
	case "pt":
		return v.Value, false, nil
	case "px":
		return v.Value * pxToPt, false, nil
	case "in":
		return v.Value * 72, false, nil
	case "cm":
		return v.Value * 72 / 2.54, false, nil
	case "mm":
		return v.Value * 72 / 25.4, false, nil
	case "pc":
		return v.Value * 12, false, nil
	case "em", "rem":
		return v.Value * fontSize, false, nil
	case "":
		if v.Value == 0 {
			return 0, false, nil
		}
	}
	return 0, false, fmt.Errorf("%q: %w", v.Raw, ErrUnsupportedUnit)
}
