// Package filter parses the term-filter expressions accepted by the pickup location search.
//
// An expression is a whitespace separated list of terms. A term is
// field:value, where value is a bare word, a double quoted string or a comma
// separated list of either, optionally wrapped in parentheses. A leading "!"
// excludes the listed values:
//
//	country:"United States" city:Seattle,Tacoma region:("WA", "OR") !city:Tacoma
//
// Words without a field are ignored, as are range terms (field:[a TO b] or
// field:(a TO b)), which never select facet terms.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnterminatedQuote = errors.New("unterminated quoted value")
	ErrUnterminatedList  = errors.New("unterminated value list")
	ErrEmptyField        = errors.New("term filter without field name")
)

// TermFilter accepts a location when its field equals one of the values.
// A negated filter accepts every other value.
type TermFilter struct {
	FieldName string
	Values    []string
	Negated   bool
}

// Matches compares the value with the listed values, ignoring case
func (f TermFilter) Matches(value string) bool {
	for _, v := range f.Values {
		if strings.EqualFold(v, value) {
			return !f.Negated
		}
	}
	return f.Negated
}

// Parse turns the expression into term filters. Field names are lower-cased.
func Parse(expr string) ([]TermFilter, error) {
	p := &parser{src: expr}
	var filters []TermFilter
	for {
		p.skipSpace()
		if p.eof() {
			return filters, nil
		}
		f, ok, err := p.term()
		if err != nil {
			return nil, fmt.Errorf("parse filter at %d: %w", p.pos, err)
		}
		if ok {
			filters = append(filters, f)
		}
	}
}

// HasTermFilter reports whether one of the filters targets the field, negated or not
func HasTermFilter(filters []TermFilter, field string) bool {
	for _, f := range filters {
		if strings.EqualFold(f.FieldName, field) {
			return true
		}
	}
	return false
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *parser) term() (TermFilter, bool, error) {
	start := p.pos
	for !p.eof() && p.peek() != ':' && !isSpace(p.peek()) {
		if p.peek() == '"' {
			// quoted free text, no field
			if _, err := p.quoted(); err != nil {
				return TermFilter{}, false, err
			}
			continue
		}
		p.pos++
	}
	if p.eof() || p.peek() != ':' {
		return TermFilter{}, false, nil
	}

	name := p.src[start:p.pos]
	negated := strings.HasPrefix(name, "!")
	field := strings.ToLower(strings.TrimPrefix(name, "!"))
	if field == "" {
		return TermFilter{}, false, ErrEmptyField
	}
	p.pos++ // ':'

	var (
		values []string
		err    error
	)
	switch {
	case !p.eof() && p.peek() == '[':
		p.skipRange()
		return TermFilter{}, false, nil
	case !p.eof() && p.peek() == '(':
		var isRange bool
		values, isRange, err = p.group()
		if isRange {
			return TermFilter{}, false, err
		}
	default:
		values, err = p.values()
	}
	if err != nil {
		return TermFilter{}, false, err
	}
	if len(values) == 0 {
		return TermFilter{}, false, nil
	}
	return TermFilter{FieldName: field, Values: values, Negated: negated}, true, nil
}

// values reads a comma separated list, stopping at whitespace
func (p *parser) values() ([]string, error) {
	var values []string
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if v != "" {
			values = append(values, v)
		}
		if p.eof() || p.peek() != ',' {
			return values, nil
		}
		p.pos++ // ','
	}
}

// group reads "(a, b)" as a value list. "(a TO b)" is a range and yields no values.
func (p *parser) group() (values []string, isRange bool, err error) {
	p.pos++ // '('
	for {
		p.skipSpace()
		if p.eof() {
			return nil, false, ErrUnterminatedList
		}
		switch p.peek() {
		case ')':
			p.pos++
			return values, false, nil
		case ',':
			p.pos++
			continue
		}

		v, err := p.value()
		if err != nil {
			return nil, false, err
		}
		if v == "TO" {
			p.skipRange()
			return nil, true, nil
		}
		if v != "" {
			values = append(values, v)
		}
	}
}

func (p *parser) value() (string, error) {
	if !p.eof() && p.peek() == '"' {
		return p.quoted()
	}
	start := p.pos
	for !p.eof() && p.peek() != ',' && p.peek() != ')' && !isSpace(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) quoted() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == '"':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", ErrUnterminatedQuote
}

func (p *parser) skipRange() {
	for !p.eof() && p.peek() != ']' && p.peek() != ')' {
		p.pos++
	}
	if !p.eof() {
		p.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
