// Package query compiles the free-text search box into a single matcher.
//
// A query is a list of space separated terms, OR'ed together. Double quotes
// group a phrase into one term. The keyword AND fuses the terms around it into
// one clause that requires every fused term, in any order:
//
//	run park             "run" or "park"
//	run AND park         "run" and "park"
//	"golden gate" bridge the phrase "golden gate" or "bridge"
//
// Fusion follows plain adjacency, not grouping: the running AND clause only
// ends at a term that has no AND on either side, so "a AND b c AND d" is one
// clause requiring a, b, c and d. A dangling AND at either end is dropped.
package query

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/mwantia/mystrava/pkg/text"
)

const (
	andKeyword = "AND"
	quote      = '"'
	separator  = ' '
)

// Predicate is an immutable compiled query. The zero value and the result of
// compiling a blank query match everything.
type Predicate struct {
	raw     string
	clauses [][]string
	re      *regexp2.Regexp
}

// Compile folds accents out of raw and builds its predicate. It never fails:
// whatever the input, the returned predicate is usable.
func Compile(raw string) *Predicate {
	p := &Predicate{raw: raw}

	p.clauses = fuse(tokenize(text.Fold(raw)))
	if len(p.clauses) == 0 {
		return p
	}

	re, err := regexp2.Compile(pattern(p.clauses), regexp2.IgnoreCase|regexp2.Singleline)
	if err != nil {
		// Terms are escaped, so this only happens on engine limits.
		p.clauses = nil
		return p
	}
	p.re = re
	return p
}

// Raw returns the query string the predicate was compiled from.
func (p *Predicate) Raw() string {
	if p == nil {
		return ""
	}
	return p.raw
}

// Clauses returns the OR'ed clauses, each one being the list of terms it
// requires.
func (p *Predicate) Clauses() [][]string {
	if p == nil {
		return nil
	}
	out := make([][]string, len(p.clauses))
	for i, c := range p.clauses {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// MatchesAll reports whether the predicate accepts any text.
func (p *Predicate) MatchesAll() bool {
	return p == nil || p.re == nil
}

// String returns the compiled pattern, empty for a match-everything predicate.
func (p *Predicate) String() string {
	if p.MatchesAll() {
		return ""
	}
	return p.re.String()
}

// Matches reports whether candidate, once folded, satisfies at least one
// clause. Matching is case-insensitive and a term may appear anywhere in the text.
func (p *Predicate) Matches(candidate string) bool {
	if p.MatchesAll() {
		return true
	}
	ok, err := p.re.MatchString(text.Fold(candidate))
	if err != nil {
		return false
	}
	return ok
}

// tokenize splits the query in a single pass. Quotes toggle phrase mode and
// never end up in a token.
func tokenize(s string) []string {
	var (
		tokens  []string
		current strings.Builder
		inQuote bool
	)

	for _, r := range s {
		switch {
		case r == quote:
			inQuote = !inQuote
		case r == separator && !inQuote:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// fuse groups tokens into clauses. A token is fused when the next token is
// AND, or when the previous one is AND and the token is not the second token
// of the query; that keeps a leading AND from fusing anything.
func fuse(tokens []string) [][]string {
	var (
		clauses [][]string
		current []string
	)

	n := len(tokens)
	for i, token := range tokens {
		if token == andKeyword {
			continue
		}

		fused := (i < n-1 && tokens[i+1] == andKeyword) || (i > 1 && tokens[i-1] == andKeyword)
		if fused {
			current = append(current, token)
			continue
		}

		if len(current) > 0 {
			clauses = append(clauses, current)
			current = nil
		}
		clauses = append(clauses, []string{token})
	}
	if len(current) > 0 {
		clauses = append(clauses, current)
	}

	return clauses
}

// pattern renders the clauses as one alternation. Conjunctive clauses use a
// lookahead per term so that term order in the text does not matter. They are
// anchored at the start of the text: each lookahead already scans all of it,
// and retrying them at every position makes a miss quadratic.
func pattern(clauses [][]string) string {
	alternatives := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		if len(clause) == 1 {
			alternatives = append(alternatives, regexp2.Escape(clause[0]))
			continue
		}

		var b strings.Builder
		b.WriteString("^")
		for _, term := range clause {
			b.WriteString("(?=.*")
			b.WriteString(regexp2.Escape(term))
			b.WriteString(")")
		}
		alternatives = append(alternatives, b.String())
	}
	return strings.Join(alternatives, "|")
}
