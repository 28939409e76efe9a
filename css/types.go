package css

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2em", "both", "0")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "em", "px", "%", "pt", etc.
	Keyword string  // Keyword if applicable: "auto", "left", "hidden", etc.
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		first := rune(v.Raw[0])
		if unicode.IsDigit(first) || first == '.' || first == '-' || first == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// IsPercent returns true for percentage values.
func (v Value) IsPercent() bool {
	return v.Unit == "%"
}

func (v Value) String() string {
	return v.Raw
}

// Declarations maps longhand property names to values.
type Declarations map[string]Value

// Merge copies all declarations from other overriding existing ones.
func (d Declarations) Merge(other Declarations) {
	for k, v := range other {
		d[k] = v
	}
}

// Names returns sorted property names.
func (d Declarations) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Selector represents a parsed simple CSS selector.
type Selector struct {
	Raw     string // Original selector string
	Element string // Element name (e.g., "p") or empty for class-only and universal
	Class   string // Class name without dot or empty
}

// IsSimple returns true if selector could be matched (element, class,
// element.class or universal).
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.Class != "" || s.Raw == "*"
}

// Specificity returns selector weight for cascade ordering.
func (s Selector) Specificity() int {
	var spec int
	if s.Class != "" {
		spec += 10
	}
	if s.Element != "" {
		spec++
	}
	return spec
}

// Matches reports whether selector applies to element with given tag and
// classes.
func (s Selector) Matches(tag string, classes []string) bool {
	if !s.IsSimple() {
		return false
	}
	if s.Element != "" && !strings.EqualFold(s.Element, tag) {
		return false
	}
	if s.Class != "" && !slices.Contains(classes, s.Class) {
		return false
	}
	return true
}

// Rule represents a single CSS rule (selector + properties).
type Rule struct {
	Selector   Selector
	Properties Declarations
	// Order is position of the rule in the combined cascade.
	Order int
}

// GetProperty returns the value for a property, or empty Value if not found.
func (r Rule) GetProperty(name string) (Value, bool) {
	v, ok := r.Properties[name]
	return v, ok
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Rules    []Rule
	Warnings []string // Warnings for unsupported features
}

// Append adds rules of other stylesheet after rules of s. Appended rules win
// over existing ones of the same specificity.
func (s *Stylesheet) Append(other *Stylesheet) {
	if other == nil {
		return
	}
	for _, r := range other.Rules {
		r.Order = len(s.Rules)
		s.Rules = append(s.Rules, r)
	}
	s.Warnings = append(s.Warnings, other.Warnings...)
}

// RulesBySelector returns all rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, r := range s.Rules {
		if r.Selector.Raw == selector {
			matches = append(matches, r)
		}
	}
	return matches
}

// Match computes cascaded declarations for element: matching rules are
// applied in order of specificity, then source order.
func (s *Stylesheet) Match(tag string, classes []string) Declarations {
	var matched []Rule
	for _, r := range s.Rules {
		if r.Selector.Matches(tag, classes) {
			matched = append(matched, r)
		}
	}
	slices.SortStableFunc(matched, func(a, b Rule) int {
		if d := a.Selector.Specificity() - b.Selector.Specificity(); d != 0 {
			return d
		}
		return a.Order - b.Order
	})

	res := make(Declarations)
	for _, r := range matched {
		res.Merge(r.Properties)
	}
	return res
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Property order within a rule is sorted alphabetically for deterministic output.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, r := range s.Rules {
		if i > 0 {
			n, err := fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err := fmt.Fprintf(w, "%s {\n", r.Selector.Raw)
		total += int64(n)
		if err != nil {
			return total, err
		}
		for _, name := range r.Properties.Names() {
			n, err = fmt.Fprintf(w, "  %s: %s;\n", name, r.Properties[name].Raw)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err = fmt.Fprint(w, "}\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}
