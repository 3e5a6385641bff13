// internal/browser/parser/css.go
package parser

import (
	"strings"

	"github.com/xkilldash9x/stylebox/internal/browser/style"
)

// Parser turns CSS text into style rules. Comma-separated selector lists
// become one rule per selector, each carrying its own specificity. At-rules
// are skipped along with their blocks.
type Parser struct {
	input string
	pos   int
}

func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// ParseRules is a convenience wrapper around NewParser(css).Parse().
func ParseRules(css string) []style.StyleRule {
	return NewParser(css).Parse()
}

// ParseRuleSet parses css into a rule set tagged with origin.
func ParseRuleSet(css string, origin style.Origin) style.RuleSet {
	return style.RuleSet{Origin: origin, Rules: ParseRules(css)}
}

// Parse consumes the whole input. Malformed rules are dropped; parsing
// resumes at the next rule.
func (p *Parser) Parse() []style.StyleRule {
	var rules []style.StyleRule
	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		if p.currentChar() == '@' {
			p.skipAtRule()
			continue
		}
		if p.currentChar() == '}' {
			// Stray closer from malformed input.
			p.consumeChar()
			continue
		}

		selectors := p.parseSelectorList()
		if p.eof() {
			break
		}
		decls := p.parseDeclarations()
		if len(selectors) == 0 || len(decls) == 0 {
			continue
		}
		for _, sel := range selectors {
			rules = append(rules, style.NewStyleRule(sel, decls...))
		}
	}
	return rules
}

// parseSelectorList reads up to the opening brace and splits the prelude on
// top-level commas. Whitespace runs inside a selector collapse to one space.
func (p *Parser) parseSelectorList() []string {
	var selectors []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			selectors = append(selectors, s)
		}
		cur.Reset()
	}

	for !p.eof() {
		ch := p.currentChar()
		switch {
		case ch == '{' && depth == 0:
			flush()
			return selectors
		case p.startsWith("/*"):
			p.skipComment()
			continue
		case ch == '(' || ch == '[':
			depth++
		case (ch == ')' || ch == ']') && depth > 0:
			depth--
		case ch == ',' && depth == 0:
			p.consumeChar()
			flush()
			continue
		}
		cur.WriteByte(ch)
		p.pos++
	}
	return nil
}

// parseDeclarations parses the content within { ... }.
func (p *Parser) parseDeclarations() []style.Declaration {
	p.consumeWhitespace()
	if p.eof() || p.currentChar() != '{' {
		return nil
	}
	p.consumeChar()

	var decls []style.Declaration
	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if p.currentChar() == '}' {
			p.consumeChar()
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}

		prop, val, important := p.parseDeclaration()
		if prop != "" && val != "" {
			decls = append(decls, style.Declaration{
				Property:  strings.ToLower(prop),
				Value:     val,
				Important: important,
			})
		}
	}
	return decls
}

// parseDeclaration parses a single 'property: value;' pair.
func (p *Parser) parseDeclaration() (prop, val string, important bool) {
	if !isValidIdentifierStart(p.currentChar()) {
		p.skipTo(';', '}')
		if !p.eof() && p.currentChar() == ';' {
			p.consumeChar()
		}
		return "", "", false
	}
	prop = p.parseIdentifier()
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ':' {
		p.skipTo(';', '}')
		if !p.eof() && p.currentChar() == ';' {
			p.consumeChar()
		}
		return "", "", false
	}
	p.consumeChar()
	p.consumeWhitespace()

	val = p.parseValue()
	if i := strings.LastIndex(strings.ToLower(val), "!important"); i >= 0 && strings.TrimSpace(val[i+len("!important"):]) == "" {
		important = true
		val = strings.TrimSpace(val[:i])
	}

	p.consumeWhitespace()
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
	return prop, val, important
}

// ParseDeclarations parses a bare declaration block such as a style
// attribute value.
func ParseDeclarations(block string) []style.Declaration {
	p := NewParser("{" + block + "}")
	return p.parseDeclarations()
}

// parseValue reads a CSS value until a delimiter.
func (p *Parser) parseValue() string {
	start := p.pos
	for !p.eof() {
		ch := p.currentChar()
		if ch == ';' || ch == '}' {
			break
		}
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '(' {
			p.consumeChar()
			p.skipBlock('(', ')')
			continue
		}
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

func (p *Parser) consumeWhitespace() {
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
}

func (p *Parser) startsWith(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *Parser) skipComment() {
	p.pos += 2
	end := strings.Index(p.input[p.pos:], "*/")
	if end == -1 {
		p.pos = len(p.input)
		return
	}
	p.pos += end + 2
}

func (p *Parser) skipTo(targets ...byte) {
	for !p.eof() {
		ch := p.currentChar()
		for _, target := range targets {
			if ch == target {
				return
			}
		}
		p.pos++
	}
}

// skipBlock advances past the closer matching an already consumed opener.
func (p *Parser) skipBlock(open, close byte) {
	depth := 1
	for !p.eof() {
		c := p.consumeChar()
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) skipQuotedString(quote byte) {
	p.consumeChar()
	for !p.eof() {
		ch := p.consumeChar()
		if ch == '\\' {
			p.consumeChar()
		} else if ch == quote {
			return
		}
	}
}

func (p *Parser) skipAtRule() {
	p.consumeChar()
	_ = p.parseIdentifier()
	for !p.eof() {
		switch p.currentChar() {
		case '{':
			p.consumeChar()
			p.skipBlock('{', '}')
			return
		case ';':
			p.consumeChar()
			return
		}
		p.pos++
	}
}

func (p *Parser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isValidIdentifierChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isValidIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '-'
}

func isValidIdentifierChar(ch byte) bool {
	return isValidIdentifierStart(ch) || (ch >= '0' && ch <= '9')
}
