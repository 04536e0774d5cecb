package rdf

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode"
)

// DecodeTurtle parses a Turtle document into a graph. Prefix directives are
// bound on the returned graph.
func DecodeTurtle(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	p := &turtleParser{
		input: string(data),
		graph: NewGraph(),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.graph, nil
}

type turtleParser struct {
	input string
	pos   int
	line  int

	base    string
	graph   *Graph
	nextID  int
	started bool
}

func (p *turtleParser) errorf(format string, args ...any) error {
	return fmt.Errorf("turtle: line %d: %s", p.line+1, fmt.Sprintf(format, args...))
}

func (p *turtleParser) parse() error {
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
}

func (p *turtleParser) parseStatement() error {
	if p.hasKeyword("@prefix") || p.hasKeyword("PREFIX") {
		return p.parsePrefix()
	}
	if p.hasKeyword("@base") || p.hasKeyword("BASE") {
		return p.parseBase()
	}
	subject, err := p.parseSubject()
	if err != nil {
		return err
	}
	if err := p.parsePredicateObjectList(subject); err != nil {
		return err
	}
	p.skipWhitespace()
	if !p.consume('.') {
		return p.errorf("expected '.' after triples")
	}
	return nil
}

func (p *turtleParser) parsePrefix() error {
	sparql := !p.hasKeyword("@prefix")
	if sparql {
		p.pos += len("PREFIX")
	} else {
		p.pos += len("@prefix")
	}
	p.skipWhitespace()
	prefix, err := p.readUntil(':')
	if err != nil {
		return p.errorf("bad prefix declaration: %v", err)
	}
	p.skipWhitespace()
	iri, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.graph.Bind(strings.TrimSpace(prefix), Namespace(iri))
	if !sparql {
		p.skipWhitespace()
		if !p.consume('.') {
			return p.errorf("expected '.' after @prefix")
		}
	}
	return nil
}

func (p *turtleParser) parseBase() error {
	if p.hasKeyword("@base") {
		p.pos += len("@base")
	} else {
		p.pos += len("BASE")
	}
	p.skipWhitespace()
	iri, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.base = string(iri)
	if strings.HasPrefix(p.input[p.pos:], ".") || p.peekAfterSpace() == '.' {
		p.skipWhitespace()
		p.consume('.')
	}
	return nil
}

func (p *turtleParser) parseSubject() (Node, error) {
	p.skipWhitespace()
	switch {
	case p.peek() == '<':
		return p.parseIRIRef()
	case strings.HasPrefix(p.input[p.pos:], "_:"):
		return p.parseBlankNodeLabel()
	case p.peek() == '[':
		return p.parseBlankNodePropertyList()
	case p.peek() == '(':
		return p.parseCollection()
	default:
		return p.parsePrefixedName()
	}
}

func (p *turtleParser) parsePredicateObjectList(subject Node) error {
	for {
		p.skipWhitespace()
		predicate, err := p.parsePredicate()
		if err != nil {
			return err
		}
		if err := p.parseObjectList(subject, predicate); err != nil {
			return err
		}
		p.skipWhitespace()
		if !p.consume(';') {
			return nil
		}
		// a trailing ';' before '.' or ']' is legal
		p.skipWhitespace()
		if c := p.peek(); c == '.' || c == ']' || c == ';' {
			for p.consume(';') {
				p.skipWhitespace()
			}
			return nil
		}
	}
}

func (p *turtleParser) parsePredicate() (IRI, error) {
	if p.peek() == 'a' && p.isTermBoundary(p.pos+1) {
		p.pos++
		return RDFType, nil
	}
	var node Node
	var err error
	if p.peek() == '<' {
		node, err = p.parseIRIRef()
	} else {
		node, err = p.parsePrefixedName()
	}
	if err != nil {
		return "", err
	}
	iri, ok := node.(IRI)
	if !ok {
		return "", p.errorf("predicate must be an IRI")
	}
	return iri, nil
}

func (p *turtleParser) parseObjectList(subject Node, predicate IRI) error {
	for {
		object, err := p.parseObject()
		if err != nil {
			return err
		}
		p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: object})
		p.skipWhitespace()
		if !p.consume(',') {
			return nil
		}
	}
}

func (p *turtleParser) parseObject() (Node, error) {
	p.skipWhitespace()
	switch c := p.peek(); {
	case c == '<':
		return p.parseIRIRef()
	case strings.HasPrefix(p.input[p.pos:], "_:"):
		return p.parseBlankNodeLabel()
	case c == '[':
		return p.parseBlankNodePropertyList()
	case c == '(':
		return p.parseCollection()
	case c == '"' || c == '\'':
		return p.parseLiteral()
	case c == '+' || c == '-' || c == '.' || unicode.IsDigit(c):
		return p.parseNumericLiteral()
	case p.hasKeyword("true"):
		p.pos += 4
		return NewTypedLiteral("true", XSD.IRI("boolean")), nil
	case p.hasKeyword("false"):
		p.pos += 5
		return NewTypedLiteral("false", XSD.IRI("boolean")), nil
	default:
		return p.parsePrefixedName()
	}
}

func (p *turtleParser) parseIRIRef() (IRI, error) {
	p.skipWhitespace()
	if !p.consume('<') {
		return "", p.errorf("expected '<'")
	}
	start := p.pos
	for !p.eof() && p.input[p.pos] != '>' {
		if p.input[p.pos] == '\n' {
			return "", p.errorf("unterminated IRI")
		}
		p.pos++
	}
	if p.eof() {
		return "", p.errorf("unterminated IRI")
	}
	raw := unescapeLiteral(p.input[start:p.pos])
	p.pos++
	return p.resolveIRI(raw)
}

func (p *turtleParser) resolveIRI(raw string) (IRI, error) {
	if p.base == "" || strings.Contains(raw, "://") || strings.HasPrefix(raw, "urn:") || strings.HasPrefix(raw, "mailto:") {
		return IRI(raw), nil
	}
	base, err := url.Parse(p.base)
	if err != nil {
		return "", p.errorf("bad base IRI %q: %v", p.base, err)
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", p.errorf("bad IRI %q: %v", raw, err)
	}
	return IRI(base.ResolveReference(ref).String()), nil
}

func (p *turtleParser) parsePrefixedName() (Node, error) {
	start := p.pos
	for !p.eof() {
		c := p.input[p.pos]
		if c == ':' || isPNChar(rune(c)) || c == '.' {
			p.pos++
			continue
		}
		break
	}
	// a trailing '.' terminates the statement, not the name
	for p.pos > start && p.input[p.pos-1] == '.' {
		p.pos--
	}
	name := p.input[start:p.pos]
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return nil, p.errorf("expected prefixed name, got %q", name)
	}
	ns, bound := p.graph.NamespaceFor(prefix)
	if !bound {
		return nil, p.errorf("undefined prefix %q", prefix)
	}
	return ns.IRI(unescapeLocal(local)), nil
}

func (p *turtleParser) parseBlankNodeLabel() (Node, error) {
	p.pos += 2 // "_:"
	start := p.pos
	for !p.eof() && (isPNChar(rune(p.input[p.pos])) || p.input[p.pos] == '.') {
		p.pos++
	}
	for p.pos > start && p.input[p.pos-1] == '.' {
		p.pos--
	}
	if p.pos == start {
		return nil, p.errorf("empty blank node label")
	}
	return BlankNode(p.input[start:p.pos]), nil
}

func (p *turtleParser) parseBlankNodePropertyList() (Node, error) {
	p.consume('[')
	node := p.newBlankNode()
	p.skipWhitespace()
	if p.consume(']') {
		return node, nil
	}
	if err := p.parsePredicateObjectList(node); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if !p.consume(']') {
		return nil, p.errorf("expected ']'")
	}
	return node, nil
}

func (p *turtleParser) parseCollection() (Node, error) {
	p.consume('(')
	var items []Node
	for {
		p.skipWhitespace()
		if p.consume(')') {
			break
		}
		if p.eof() {
			return nil, p.errorf("unterminated collection")
		}
		item, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return RDFNil, nil
	}
	head := p.newBlankNode()
	current := head
	for i, item := range items {
		p.graph.Add(Triple{Subject: current, Predicate: RDFFirst, Object: item})
		if i == len(items)-1 {
			p.graph.Add(Triple{Subject: current, Predicate: RDFRest, Object: RDFNil})
			break
		}
		next := p.newBlankNode()
		p.graph.Add(Triple{Subject: current, Predicate: RDFRest, Object: next})
		current = next
	}
	return head, nil
}

func (p *turtleParser) parseLiteral() (Node, error) {
	value, err := p.parseQuotedString()
	if err != nil {
		return nil, err
	}
	if p.consume('@') {
		start := p.pos
		for !p.eof() {
			c := rune(p.input[p.pos])
			if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '-' {
				p.pos++
				continue
			}
			break
		}
		return NewLangLiteral(value, p.input[start:p.pos]), nil
	}
	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2
		var datatype Node
		var err error
		if p.peek() == '<' {
			datatype, err = p.parseIRIRef()
		} else {
			datatype, err = p.parsePrefixedName()
		}
		if err != nil {
			return nil, err
		}
		dt, ok := datatype.(IRI)
		if !ok {
			return nil, p.errorf("datatype must be an IRI")
		}
		return NewTypedLiteral(value, dt), nil
	}
	return NewLiteral(value), nil
}

func (p *turtleParser) parseQuotedString() (string, error) {
	quote := p.input[p.pos]
	long := strings.HasPrefix(p.input[p.pos:], strings.Repeat(string(quote), 3))
	if long {
		p.pos += 3
		end := strings.Index(p.input[p.pos:], strings.Repeat(string(quote), 3))
		if end < 0 {
			return "", p.errorf("unterminated long string")
		}
		s := p.input[p.pos : p.pos+end]
		p.pos += end + 3
		p.line += strings.Count(s, "\n")
		return unescapeLiteral(s), nil
	}
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return unescapeLiteral(b.String()), nil
		case '\\':
			if p.pos+1 < len(p.input) {
				b.WriteByte(c)
				b.WriteByte(p.input[p.pos+1])
				p.pos += 2
				continue
			}
			return "", p.errorf("dangling escape")
		case '\n':
			return "", p.errorf("unterminated string")
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *turtleParser) parseNumericLiteral() (Node, error) {
	start := p.pos
	if c := p.peek(); c == '+' || c == '-' {
		p.pos++
	}
	seenDot, seenExp := false, false
	for !p.eof() {
		c := p.input[p.pos]
		switch {
		case c >= '0' && c <= '9':
			p.pos++
		case c == '.' && !seenDot && !seenExp:
			// '.' only belongs to the number when a digit follows
			if p.pos+1 >= len(p.input) || p.input[p.pos+1] < '0' || p.input[p.pos+1] > '9' {
				goto done
			}
			seenDot = true
			p.pos++
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			p.pos++
			if !p.eof() && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	text := p.input[start:p.pos]
	if text == "" || text == "+" || text == "-" {
		return nil, p.errorf("malformed numeric literal")
	}
	switch {
	case seenExp:
		return NewTypedLiteral(text, XSD.IRI("double")), nil
	case seenDot:
		return NewTypedLiteral(text, XSD.IRI("decimal")), nil
	default:
		return NewTypedLiteral(text, XSD.IRI("integer")), nil
	}
}

func (p *turtleParser) newBlankNode() BlankNode {
	p.nextID++
	return BlankNode(fmt.Sprintf("gen%d", p.nextID))
}

func (p *turtleParser) skipWhitespace() {
	for !p.eof() {
		c := p.input[p.pos]
		switch c {
		case ' ', '\t', '\r':
			p.pos++
		case '\n':
			p.line++
			p.pos++
		case '#':
			for !p.eof() && p.input[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *turtleParser) peek() rune {
	if p.eof() {
		return 0
	}
	return rune(p.input[p.pos])
}

func (p *turtleParser) peekAfterSpace() byte {
	i := p.pos
	for i < len(p.input) && (p.input[i] == ' ' || p.input[i] == '\t') {
		i++
	}
	if i < len(p.input) {
		return p.input[i]
	}
	return 0
}

func (p *turtleParser) consume(c byte) bool {
	if !p.eof() && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *turtleParser) eof() bool { return p.pos >= len(p.input) }

func (p *turtleParser) hasKeyword(kw string) bool {
	if !strings.HasPrefix(p.input[p.pos:], kw) {
		return false
	}
	return p.isTermBoundary(p.pos + len(kw))
}

func (p *turtleParser) isTermBoundary(i int) bool {
	if i >= len(p.input) {
		return true
	}
	c := rune(p.input[i])
	return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '-' && c != ':'
}

func (p *turtleParser) readUntil(c byte) (string, error) {
	start := p.pos
	for !p.eof() {
		if p.input[p.pos] == c {
			s := p.input[start:p.pos]
			p.pos++
			return s, nil
		}
		p.pos++
	}
	return "", fmt.Errorf("expected %q", string(c))
}

func isPNChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-' || c > 0x7f || c == '%'
}

// unescapeLocal removes reserved-character escapes from the local part of a
// prefixed name.
func unescapeLocal(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
