// Package filter holds the pattern and value parsers shared by the CLI and
// the engine: filename regexes, size strings, and hex byte strings.
package filter

import (
	"fmt"
	"regexp"
)

// Patterns is a set of compiled filename patterns. A basename matches the
// set if any pattern matches it in full.
type Patterns struct {
	res []*regexp.Regexp
}

// CompilePatterns compiles the given regular expressions with full-match
// anchoring.
func CompilePatterns(exprs []string) (*Patterns, error) {
	p := &Patterns{}
	for _, expr := range exprs {
		re, err := regexp.Compile(`\A(?:` + expr + `)\z`)
		if err != nil {
			return nil, fmt.Errorf("invalid filename pattern %q: %w", expr, err)
		}
		p.res = append(p.res, re)
	}
	return p, nil
}

// MatchAny reports whether any pattern matches the basename in full.
func (p *Patterns) MatchAny(name string) bool {
	for _, re := range p.res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (p *Patterns) Len() int { return len(p.res) }
