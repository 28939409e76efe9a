package output

import (
	"blockflow/box"
	"blockflow/geom"
	"blockflow/layout"
)

// Rect is serializable rectangle. Y is bottom edge, y axis points up.
type Rect struct {
	X      float32 `yaml:"x" ion:"x"`
	Y      float32 `yaml:"y" ion:"y"`
	Width  float32 `yaml:"width" ion:"width"`
	Height float32 `yaml:"height" ion:"height"`
}

func fromRect(r geom.Rect) Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Box is flat representation of single laid out node.
type Box struct {
	ID     string `yaml:"id" ion:"id"`
	Kind   string `yaml:"kind" ion:"kind"`
	Tag    string `yaml:"tag,omitempty" ion:"tag,omitempty"`
	Parent string `yaml:"parent,omitempty" ion:"parent,omitempty"`
	Depth  int    `yaml:"depth" ion:"depth"`
	// Occupied is margin box of the node.
	Occupied     Rect    `yaml:"occupied" ion:"occupied"`
	MarginTop    float32 `yaml:"margin_top" ion:"margin_top"`
	MarginBottom float32 `yaml:"margin_bottom" ion:"margin_bottom"`
	// Collapsed is true when margin collapsing resolved any of the margins.
	Collapsed bool   `yaml:"collapsed,omitempty" ion:"collapsed,omitempty"`
	Float     string `yaml:"float,omitempty" ion:"float,omitempty"`
	Overflow  bool   `yaml:"overflow,omitempty" ion:"overflow,omitempty"`
	Text      string `yaml:"text,omitempty" ion:"text,omitempty"`
}

// Report is complete serializable layout result.
type Report struct {
	Document string   `yaml:"document" ion:"document"`
	Area     Rect     `yaml:"area" ion:"area"`
	Boxes    []Box    `yaml:"boxes" ion:"boxes"`
	Overflow []string `yaml:"overflow,omitempty" ion:"overflow,omitempty"`
}

// NewReport flattens layout result in document order.
func NewReport(name string, res *layout.Result) *Report {
	rpt := &Report{
		Document: name,
		Area:     fromRect(res.Area),
	}

	overflow := make(map[*box.Node]bool, len(res.Overflow))
	for _, n := range res.Overflow {
		overflow[n] = true
		rpt.Overflow = append(rpt.Overflow, n.ID)
	}

	res.Root.Walk(func(n *box.Node, depth int) bool {
		b := Box{
			ID:           n.ID,
			Kind:         n.Kind.String(),
			Tag:          n.Tag,
			Depth:        depth,
			Occupied:     fromRect(n.Occupied),
			MarginTop:    n.EffectiveMarginTop(),
			MarginBottom: n.EffectiveMarginBottom(),
			Collapsed:    n.Collapsed.HasTop || n.Collapsed.HasBottom,
			Overflow:     overflow[n],
			Text:         n.Text,
		}
		if n.Parent != nil {
			b.Parent = n.Parent.ID
		}
		if n.IsFloated() {
			b.Float = n.Style.Float.String()
		}
		rpt.Boxes = append(rpt.Boxes, b)
		return true
	})
	return rpt
}
