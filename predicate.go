package grove

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// WildcardName is the reserved reference literal that makes an Equal
// predicate accept any value. On a group or dataset name node it also
// switches the matcher into wildcard traversal (every descendant is a
// candidate); anywhere else it is simply always-true.
const WildcardName = "*"

// MatchKind identifies the comparison a predicate performs.
type MatchKind string

const (
	MatchEqual MatchKind = "equal"
	MatchRegex MatchKind = "regex"
	MatchOneOf MatchKind = "one_of"
	MatchAny   MatchKind = "any"
)

// MatchSpec is the declarative form of a predicate. It round-trips through
// descriptor encoding and is the identity used for builder deduplication.
type MatchSpec struct {
	Kind    MatchKind
	Value   Value   // MatchEqual
	Pattern string  // MatchRegex
	Values  []Value // MatchOneOf
}

// Key renders a stable identity string for deduplication.
func (m MatchSpec) Key() string {
	switch m.Kind {
	case MatchEqual:
		return "equal:" + valueString(m.Value)
	case MatchRegex:
		return "regex:" + m.Pattern
	case MatchOneOf:
		parts := make([]string, len(m.Values))
		for i, v := range m.Values {
			parts[i] = valueString(v)
		}
		return "one_of:" + strings.Join(parts, ",")
	default:
		return "any"
	}
}

// Predicate is a stateless, named comparison over a single Value. Instances
// are immutable after construction and safe to share across concurrent
// validation runs; per-call results are never stored on the predicate.
type Predicate interface {
	// Evaluate reports whether v satisfies the predicate. It has no side
	// effects and no observable state change on repeated calls.
	Evaluate(v Value) bool
	// Optional reports whether a node wrapping this predicate defaults to
	// optional. Only Anything forces this; everything else returns false.
	Optional() bool
	// Describe renders the predicate for reports.
	Describe() string
	// Spec returns the declarative form for persistence and deduplication.
	Spec() MatchSpec
}

// Equal returns a predicate satisfied when the observed value equals ref.
// The reference literal "*" is reserved and always succeeds.
func Equal(ref Value) Predicate {
	s, _ := ref.(string)
	return equalPred{ref: ref, wildcard: s == WildcardName}
}

type equalPred struct {
	ref      Value
	wildcard bool
}

func (p equalPred) Evaluate(v Value) bool {
	if p.wildcard {
		return true
	}
	return valueEqual(p.ref, v)
}
func (p equalPred) Optional() bool { return false }
func (p equalPred) Describe() string {
	if p.wildcard {
		return "wildcard"
	}
	return fmt.Sprintf("equal(%v)", p.ref)
}
func (p equalPred) Spec() MatchSpec { return MatchSpec{Kind: MatchEqual, Value: p.ref} }

// Regex returns a predicate satisfied when the observed value contains a
// match of pattern (search semantics, not full-match). An empty or invalid
// pattern is a construction error.
func Regex(pattern string) (Predicate, error) {
	if pattern == "" {
		return nil, errors.WithStack(ErrEmptyPattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "grove: invalid regex %q", pattern)
	}
	return regexPred{re: re}, nil
}

// MustRegex is like Regex but panics on a bad pattern. Intended for
// package-level schema declarations.
func MustRegex(pattern string) Predicate {
	p, err := Regex(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

type regexPred struct {
	re *regexp.Regexp
}

func (p regexPred) Evaluate(v Value) bool { return p.re.MatchString(valueString(v)) }
func (p regexPred) Optional() bool        { return false }
func (p regexPred) Describe() string      { return fmt.Sprintf("regex(%s)", p.re.String()) }
func (p regexPred) Spec() MatchSpec       { return MatchSpec{Kind: MatchRegex, Pattern: p.re.String()} }

// OneOf returns a predicate satisfied when the observed value equals any
// member of set.
func OneOf(set ...Value) Predicate {
	vals := make([]Value, len(set))
	copy(vals, set)
	return oneOfPred{set: vals}
}

type oneOfPred struct {
	set []Value
}

func (p oneOfPred) Evaluate(v Value) bool {
	for _, ref := range p.set {
		if valueEqual(ref, v) {
			return true
		}
	}
	return false
}
func (p oneOfPred) Optional() bool { return false }
func (p oneOfPred) Describe() string {
	parts := make([]string, len(p.set))
	for i, v := range p.set {
		parts[i] = valueString(v)
	}
	return fmt.Sprintf("one_of(%s)", strings.Join(parts, ", "))
}
func (p oneOfPred) Spec() MatchSpec {
	vals := make([]Value, len(p.set))
	copy(vals, p.set)
	return MatchSpec{Kind: MatchOneOf, Values: vals}
}

// Anything returns the always-true predicate. It is optional by construction:
// a required always-true check is meaningless and would silently report
// false passes, so the schema compiler rejects any attempt to constrain it.
func Anything() Predicate { return anyPred{} }

type anyPred struct{}

func (anyPred) Evaluate(v Value) bool { return true }
func (anyPred) Optional() bool        { return true }
func (anyPred) Describe() string      { return "anything" }
func (anyPred) Spec() MatchSpec       { return MatchSpec{Kind: MatchAny} }

// predicateFrom rebuilds a Predicate from its declarative form.
func predicateFrom(m MatchSpec) (Predicate, error) {
	switch m.Kind {
	case MatchEqual:
		return Equal(m.Value), nil
	case MatchRegex:
		return Regex(m.Pattern)
	case MatchOneOf:
		return OneOf(m.Values...), nil
	case MatchAny:
		return Anything(), nil
	default:
		return nil, errors.Newf("grove: unknown match kind %q", m.Kind)
	}
}

// isWildcard reports whether the predicate is the reserved Equal("*").
func isWildcard(p Predicate) bool {
	s := p.Spec()
	if s.Kind != MatchEqual {
		return false
	}
	v, ok := s.Value.(string)
	return ok && v == WildcardName
}
