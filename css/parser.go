package css

import (
	"bytes"
	"maps"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets and style attributes.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Only simple selectors are kept,
// at-rules are skipped with a warning. The optional source parameter
// identifies what is being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			p.skipAtRuleBlock(parser)
			sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+string(data))
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.AtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+string(data))
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			selectors := p.parseSelectors(data, parser.Values())
			props := p.parseDeclarations(parser)
			for _, s := range selectors {
				sel := p.parseSelector(s, sheet)
				if !sel.IsSimple() {
					continue
				}
				sheet.Rules = append(sheet.Rules, Rule{
					Selector:   sel,
					Properties: maps.Clone(props),
					Order:      len(sheet.Rules),
				})
			}
		}
	}
}

// ParseInline parses content of style attribute.
func (p *Parser) ParseInline(data string) Declarations {
	return p.parseDeclarations(css.NewParser(parse.NewInput(strings.NewReader(data)), true))
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until end of ruleset,
// shorthands are expanded into longhands.
func (p *Parser) parseDeclarations(parser *css.Parser) Declarations {
	props := make(Declarations)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return props

		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			values := stripImportant(parser.Values())
			if len(values) == 0 {
				continue
			}
			if expand, ok := shorthands[name]; ok {
				props.Merge(expand(splitValues(values)))
				continue
			}
			props[name] = parsePropertyValue(values)
		}
	}
}

// stripImportant removes trailing "!important", it has no meaning for us.
func stripImportant(tokens []css.Token) []css.Token {
	for i, t := range tokens {
		if t.TokenType == css.DelimToken && string(t.Data) == "!" {
			return tokens[:i]
		}
	}
	return tokens
}

// splitValues converts every significant token into separate value.
func splitValues(tokens []css.Token) []Value {
	var res []Value
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			continue
		}
		res = append(res, parsePropertyValue([]css.Token{t}))
	}
	return res
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	if len(tokens) == 0 {
		return Value{}
	}

	var raw strings.Builder
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			raw.Write(t.Data)
		} else if raw.Len() > 0 {
			raw.WriteByte(' ')
		}
	}
	val := Value{Raw: strings.TrimSpace(raw.String())}

	if len(tokens) == 1 || (len(tokens) == 2 && tokens[1].TokenType == css.WhitespaceToken) {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		default:
			val.Keyword = val.Raw
		}
		return val
	}

	// functions and multi-value properties are kept raw
	val.Keyword = val.Raw
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

// parseSelector parses a single selector string. Anything but element,
// class, element.class and universal selectors is reported as unsupported.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	if selStr == "*" {
		return sel
	}
	if strings.ContainsAny(selStr, "+~>[:# \t\n*") {
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
		p.log.Debug("Skipping selector", zap.String("selector", selStr))
		return sel
	}

	if element, class, found := strings.Cut(selStr, "."); found {
		if strings.Contains(class, ".") {
			sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
			p.log.Debug("Skipping multi-class selector", zap.String("selector", selStr))
			return sel
		}
		sel.Element, sel.Class = strings.ToLower(element), class
	} else {
		sel.Element = strings.ToLower(selStr)
	}
	return sel
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
