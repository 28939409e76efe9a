package output

import (
	"github.com/beevik/etree"

	"blockflow/box"
	"blockflow/geom"
	"blockflow/layout"
)

const (
	marginFill  = "#f9cc9d"
	borderFill  = "#c3d9f0"
	borderLine  = "#3d85c6"
	lineFill    = "#e6e6e6"
	floatLine   = "#6aa84f"
	overflowMsg = "#cc0000"
)

// svgCanvas converts layout coordinates (y up) into SVG ones (y down).
type svgCanvas struct {
	area geom.Rect
}

func (c *svgCanvas) rect(parent *etree.Element, r geom.Rect, attrs ...string) *etree.Element {
	el := parent.CreateElement("rect")
	el.CreateAttr("x", fmtFloat(r.X-c.area.X))
	el.CreateAttr("y", fmtFloat(c.area.Top()-r.Top()))
	el.CreateAttr("width", fmtFloat(r.Width))
	el.CreateAttr("height", fmtFloat(r.Height))
	for i := 0; i+1 < len(attrs); i += 2 {
		el.CreateAttr(attrs[i], attrs[i+1])
	}
	return el
}

// buildSVG draws every placed box: margin area first, border box on top of
// it. Boxes which were not placed are listed at the bottom as a comment.
func buildSVG(name string, res *layout.Result) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	area := res.Area
	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	svg.CreateAttr("width", fmtFloat(area.Width))
	svg.CreateAttr("height", fmtFloat(area.Height))
	svg.CreateAttr("viewBox", "0 0 "+fmtFloat(area.Width)+" "+fmtFloat(area.Height))
	svg.CreateElement("title").SetText(name)

	c := &svgCanvas{area: area}
	c.rect(svg, area, "fill", "#ffffff")

	res.Root.Walk(func(n *box.Node, _ int) bool {
		occupied := n.Occupied
		if occupied.Width == 0 && occupied.Height == 0 {
			return true
		}
		g := svg.CreateElement("g")
		g.CreateAttr("id", n.ID)
		g.CreateAttr("class", n.Kind.String())

		if n.Kind == box.KindLine {
			c.rect(g, occupied, "fill", lineFill)
			if len(n.Text) > 0 {
				g.CreateElement("desc").SetText(n.Text)
			}
			return true
		}

		mt, mb := n.EffectiveMarginTop(), n.EffectiveMarginBottom()
		if mt != 0 || mb != 0 {
			c.rect(g, occupied, "fill", marginFill, "fill-opacity", "0.5")
		}
		border := occupied
		border.ApplyMargins(mt, 0, mb, 0, false)
		stroke := borderLine
		if n.IsFloated() {
			stroke = floatLine
		}
		c.rect(g, border, "fill", borderFill, "fill-opacity", "0.3", "stroke", stroke, "stroke-width", "0.5")
		return true
	})

	if len(res.Overflow) > 0 {
		var ids string
		for i, n := range res.Overflow {
			if i > 0 {
				ids += " "
			}
			ids += n.ID
		}
		svg.CreateComment("overflow: " + ids)
		c.rect(svg, geom.NewRect(area.X, area.Y, area.Width, 2), "fill", overflowMsg)
	}

	doc.Indent(2)
	return doc
}
