// Package document reads XML box documents and builds render node trees out
// of them.
//
// Document looks like this:
//
//	<document width="400" height="600">
//	  <style>p { margin: 10pt 0 }</style>
//	  <div style="border-top: 1pt solid">
//	    <p>Text goes into anonymous line</p>
//	    <line>explicit line <span style="display: inline-block; width: 20pt">x</span></line>
//	  </div>
//	</document>
package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"blockflow/box"
	"blockflow/config"
	"blockflow/css"
	"blockflow/geom"
)

const rootTag = "document"

var kinds = map[string]box.Kind{
	"div":        box.KindBlock,
	"section":    box.KindBlock,
	"p":          box.KindBlock,
	"blockquote": box.KindBlock,
	"tr":         box.KindBlock,
	"table":      box.KindTable,
	"td":         box.KindCell,
	"grid":       box.KindGrid,
	"line":       box.KindLine,
}

// inlines contribute their text to the line they appear in.
var inlines = map[string]bool{
	"span": true, "a": true, "b": true, "i": true, "em": true, "strong": true, "code": true, "sub": true, "sup": true,
}

// Document is loaded box tree ready for layout.
type Document struct {
	Name string
	Root *box.Node
	// Area is layout area requested by the document or configured page.
	Area geom.Rect
	// Stylesheet is combined stylesheet the tree was styled with.
	Stylesheet *css.Stylesheet
}

// Loader builds box trees. It keeps parsed base stylesheet, so it is cheap
// to use it for many documents. It is not safe for concurrent use.
type Loader struct {
	log      *zap.Logger
	parser   *css.Parser
	base     *css.Stylesheet
	fontSize float64
	page     geom.Rect
	split    *splitter
}

// NewLoader prepares loader. Base stylesheet is built from defaultStyle
// followed by configured external stylesheet if any.
func NewLoader(cfg *config.Config, defaultStyle []byte, log *zap.Logger) (*Loader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{
		log:      log.Named("document"),
		parser:   css.NewParser(log),
		fontSize: float64(cfg.Layout.FontSize),
		page:     geom.NewRect(0, 0, cfg.Layout.PageWidth, cfg.Layout.PageHeight),
	}

	l.base = l.parser.Parse(defaultStyle, "default")
	if path := cfg.Document.StylesheetPath; len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read stylesheet: %w", err)
		}
		l.base.Append(l.parser.Parse(data, path))
	}
	l.reportWarnings(l.base)

	if cfg.Document.SentenceLines {
		l.split = newSplitter(l.log)
	}
	return l, nil
}

func (l *Loader) reportWarnings(sheet *css.Stylesheet) {
	for _, w := range sheet.Warnings {
		l.log.Debug("Stylesheet", zap.String("warning", w))
	}
}

// Load reads document from r. Name is used for diagnostics only.
func (l *Loader) Load(r io.Reader, name string) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: false,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read document %s: %w", name, err)
	}

	el := doc.Root()
	if el == nil {
		return nil, fmt.Errorf("document %s is empty", name)
	}
	if !strings.EqualFold(el.Tag, rootTag) {
		return nil, fmt.Errorf("document %s: unexpected root element <%s>, expected <%s>", name, el.Tag, rootTag)
	}

	area, err := l.area(el)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", name, err)
	}

	b := &builder{
		Loader: l,
		sheet:  &css.Stylesheet{},
		ids:    make(map[string]int),
	}
	b.sheet.Append(l.base)
	for _, st := range el.FindElements("//style") {
		sheet := l.parser.Parse([]byte(st.Text()), name)
		l.reportWarnings(sheet)
		b.sheet.Append(sheet)
	}

	root := b.node(el, rootTag, box.KindRoot, b.cascade(el, rootTag))
	if root == nil {
		return nil, fmt.Errorf("document %s: root element is not displayed", name)
	}
	b.content(el, root)

	l.log.Debug("Document loaded", zap.String("name", name), zap.Stringer("area", area), zap.Int("boxes", b.count))
	return &Document{Name: name, Root: root, Area: area, Stylesheet: b.sheet}, nil
}

// area returns layout area requested by root element attributes, page size
// from configuration is the default.
func (l *Loader) area(el *etree.Element) (geom.Rect, error) {
	area := l.page
	for _, a := range []struct {
		name string
		dst  *float32
	}{{"width", &area.Width}, {"height", &area.Height}} {
		v := el.SelectAttrValue(a.name, "")
		if len(v) == 0 {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "pt"), 32)
		if err != nil || f <= 0 {
			return geom.Rect{}, fmt.Errorf("bad %s attribute %q", a.name, v)
		}
		*a.dst = float32(f)
	}
	return area, nil
}

type builder struct {
	*Loader
	sheet *css.Stylesheet
	ids   map[string]int
	count int
}

func (b *builder) cascade(el *etree.Element, tag string) css.Declarations {
	decl := b.sheet.Match(tag, strings.Fields(el.SelectAttrValue("class", "")))
	if style := el.SelectAttrValue("style", ""); len(style) > 0 {
		decl.Merge(b.parser.ParseInline(style))
	}
	return decl
}

func (b *builder) nextID(tag string) string {
	b.ids[tag]++
	return fmt.Sprintf("%s#%d", tag, b.ids[tag])
}

// node creates styled node for element, nil is returned for elements which
// are not displayed.
func (b *builder) node(el *etree.Element, tag string, kind box.Kind, decl css.Declarations) *box.Node {
	if decl["display"].Keyword == "none" {
		return nil
	}
	id := el.SelectAttrValue("id", "")
	if len(id) == 0 {
		id = b.nextID(tag)
	}
	n := box.New(kind, id)
	n.Tag = tag
	b.count++

	if err := applyStyle(n, decl, b.fontSize); err != nil && !errors.Is(err, errDisplayNone) {
		b.log.Warn("Unsupported style values ignored", zap.Stringer("node", n), zap.Error(err))
	}
	return n
}

func (b *builder) anonymousLine(text string) *box.Node {
	n := box.New(box.KindLine, b.nextID("line"))
	n.Tag = "line"
	n.Text = text
	b.count++
	return n
}

// content builds children of block container n. Text and inline elements
// are gathered into anonymous lines, inline blocks stay in the line they
// appear in.
func (b *builder) content(el *etree.Element, n *box.Node) {
	var (
		text   strings.Builder
		inline []*box.Node
	)
	flush := func() {
		txt := collapseSpace(text.String())
		text.Reset()
		switch {
		case len(txt) == 0 && len(inline) == 0:
		case len(inline) == 0 && b.split != nil:
			for _, s := range b.split.split(txt) {
				n.Append(b.anonymousLine(s))
			}
		default:
			n.Append(b.anonymousLine(txt).Append(inline...))
		}
		inline = nil
	}

	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			text.WriteString(t.Data)
		case *etree.Element:
			tag := strings.ToLower(t.Tag)
			if tag == "style" {
				continue
			}
			if !inlines[tag] {
				flush()
				b.element(t, tag, n)
				continue
			}
			if ib := b.inlineBlock(t, tag); ib != nil {
				inline = append(inline, ib)
				continue
			}
			if b.cascade(t, tag)["display"].Keyword != "none" {
				text.WriteString(textOf(t))
			}
		}
	}
	flush()
}

// inlineBlock builds inline block for element if it has one.
func (b *builder) inlineBlock(el *etree.Element, tag string) *box.Node {
	decl := b.cascade(el, tag)
	if !isInlineBlock(decl) {
		return nil
	}
	n := b.node(el, tag, box.KindBlock, decl)
	if n != nil {
		b.content(el, n)
	}
	return n
}

// element builds block level element and appends it to parent.
func (b *builder) element(el *etree.Element, tag string, parent *box.Node) {
	kind, ok := kinds[tag]
	if !ok {
		b.log.Warn("Unexpected element treated as block", zap.String("tag", el.Tag), zap.Stringer("parent", parent))
		kind = box.KindBlock
	}

	n := b.node(el, tag, kind, b.cascade(el, tag))
	if n == nil {
		return
	}
	parent.Append(n)

	if kind == box.KindLine {
		b.line(el, n)
		return
	}
	b.content(el, n)
}

// line fills explicit line: its text and inline blocks.
func (b *builder) line(el *etree.Element, n *box.Node) {
	var text strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			text.WriteString(t.Data)
		case *etree.Element:
			tag := strings.ToLower(t.Tag)
			if ib := b.inlineBlock(t, tag); ib != nil {
				n.Append(ib)
				continue
			}
			if _, block := kinds[tag]; block {
				b.log.Warn("Block element inside line ignored", zap.String("tag", t.Tag), zap.Stringer("line", n))
				continue
			}
			text.WriteString(textOf(t))
		}
	}
	n.Text = collapseSpace(text.String())
}

// textOf returns all character data of element and its descendants.
func textOf(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			sb.WriteString(textOf(t))
		}
	}
	return sb.String()
}
