package grove

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/treegrove/grove/internal/suggest"
)

// Validate walks the instance tree under root and checks it against the
// schema. It returns a fresh Report per call; failing predicates are data in
// the report, never errors. A non-nil error means the TreeStore could not be
// read (*StoreError), not that the data failed validation.
//
// Validate is safe to call concurrently on the same Schema as long as the
// TreeStore is not mutated underneath it.
func (s *Schema) Validate(ctx context.Context, store TreeStore, root Ref) (*Report, error) {
	start := time.Now()
	m := &matcher{store: store}
	if _, err := m.evalChildren(ctx, s.root, root, "/"); err != nil {
		observeValidation(time.Since(start), 0, 0, "error")
		return nil, err
	}
	failed := aggregate(s.nodes, m.outcomes)
	rep := &Report{
		runID:    uuid.NewString(),
		outcomes: m.outcomes,
		failed:   failed,
	}
	status := "pass"
	if len(failed) > 0 {
		status = "fail"
	}
	observeValidation(time.Since(start), len(m.outcomes), len(failed), status)
	slog.Debug("layout validation completed",
		"run_id", rep.runID,
		"nodes", len(s.nodes),
		"outcomes", len(m.outcomes),
		"fails", len(failed),
		"duration", time.Since(start))
	return rep, nil
}

// matcher carries the per-run state of one Validate call. The schema itself
// stays untouched; every record lands in outcomes.
type matcher struct {
	store    TreeStore
	outcomes []Outcome
}

// candidate is one instance-tree node offered to a validation node.
type candidate struct {
	name string
	ref  Ref
	path string
}

func (m *matcher) emit(n *node, path, code string, raw bool, hint string) {
	m.outcomes = append(m.outcomes, Outcome{
		NodeID: n.id,
		Path:   path,
		Code:   code,
		Raw:    raw,
		Passed: raw || n.optional,
		Detail: n.pred.Describe(),
		Hint:   hint,
	})
}

// evalChildren evaluates every child validator of n against the candidate
// ref. It reports whether all required children are satisfied.
func (m *matcher) evalChildren(ctx context.Context, n *node, ref Ref, path string) (bool, error) {
	ok := true
	for _, child := range n.children {
		sat, err := m.evalNode(ctx, child, ref, path)
		if err != nil {
			return false, err
		}
		ok = ok && sat
	}
	return ok, nil
}

// evalNode evaluates one validation node against the current instance node.
// The returned bool is the demoted satisfaction: an optional node is
// satisfied no matter what its raw outcomes were.
func (m *matcher) evalNode(ctx context.Context, n *node, ref Ref, path string) (bool, error) {
	switch n.kind {
	case KindGroup, KindDataset:
		return m.evalContainer(ctx, n, ref, path)
	case KindAttribute:
		return m.evalAttribute(ctx, n, ref, path)
	case KindProperty:
		return m.evalProperty(ctx, n, ref, path)
	default:
		// KindAttrValue is consumed by evalAttribute and never dispatched here.
		return true, nil
	}
}

func (m *matcher) evalContainer(ctx context.Context, n *node, ref Ref, path string) (bool, error) {
	cands, hint, err := m.containerCandidates(ctx, n, ref, path)
	if err != nil {
		return false, err
	}
	if len(cands) == 0 {
		// A constrained node judges absence by its bounds (max 0 is a
		// prohibition and must pass on an empty match set).
		if n.constrained() {
			return m.fold(n, joinPath(path, matchToken(n.pred)), 0), nil
		}
		m.emit(n, joinPath(path, matchToken(n.pred)), CodeMissing, false, hint)
		return n.optional, nil
	}
	passed := 0
	for _, c := range cands {
		raw := n.pred.Evaluate(c.name)
		m.emit(n, c.path, CodePredicate, raw, "")
		if !raw {
			continue
		}
		subtreeOK, err := m.evalChildren(ctx, n, c.ref, c.path)
		if err != nil {
			return false, err
		}
		if subtreeOK {
			passed++
		}
	}
	return m.fold(n, joinPath(path, matchToken(n.pred)), passed), nil
}

func (m *matcher) evalAttribute(ctx context.Context, n *node, ref Ref, path string) (bool, error) {
	attrs, err := m.store.Attributes(ctx, ref)
	if err != nil {
		return false, storeErr("attributes", path, err)
	}
	matched := make([]Attribute, 0, 1)
	for _, a := range attrs {
		if n.pred.Evaluate(a.Key) {
			matched = append(matched, a)
		}
	}
	if len(matched) == 0 {
		if n.constrained() {
			return m.fold(n, attrPath(path, matchToken(n.pred)), 0), nil
		}
		hint := ""
		if want, ok := equalName(n.pred); ok {
			hint = suggest.DidYouMean(want, attrKeys(attrs))
		}
		m.emit(n, attrPath(path, matchToken(n.pred)), CodeMissing, false, hint)
		return n.optional, nil
	}
	var valNode *node
	if len(n.children) == 1 {
		valNode = n.children[0]
	}
	passed := 0
	for _, a := range matched {
		m.emit(n, attrPath(path, a.Key), CodePredicate, true, "")
		ok := true
		if valNode != nil {
			raw := valNode.pred.Evaluate(a.Value)
			m.emit(valNode, attrPath(path, a.Key), CodePredicate, raw, "")
			if !raw && !valNode.optional {
				ok = false
			}
		}
		if ok {
			passed++
		}
	}
	return m.fold(n, attrPath(path, matchToken(n.pred)), passed), nil
}

func (m *matcher) evalProperty(ctx context.Context, n *node, ref Ref, path string) (bool, error) {
	info, err := m.store.Properties(ctx, ref)
	if err != nil {
		return false, storeErr("properties", path, err)
	}
	raw := n.pred.Evaluate(n.prop.Value(info))
	m.emit(n, path+"#"+string(n.prop), CodePredicate, raw, "")
	return raw || n.optional, nil
}

// fold turns the per-candidate pass count into the node's demoted
// satisfaction: with an occurrence constraint the count decides, otherwise
// any fully-passing candidate is enough (OR semantics, never AND).
func (m *matcher) fold(n *node, addr string, passed int) bool {
	if n.constrained() {
		met := true
		if n.minOcc >= 0 && passed < n.minOcc {
			met = false
		}
		if n.maxOcc >= 0 && passed > n.maxOcc {
			met = false
		}
		m.outcomes = append(m.outcomes, Outcome{
			NodeID: n.id,
			Path:   addr,
			Code:   CodeCardinality,
			Raw:    met,
			Passed: met || n.optional,
			Detail: fmt.Sprintf("%d passing candidate(s), want %s", passed, occurrenceBounds(n)),
		})
		return met || n.optional
	}
	return passed > 0 || n.optional
}

// containerCandidates resolves the instance nodes a group/dataset validator
// is matched against. A wildcard node enumerates every descendant of the
// matching kind; a named node looks up the addressed immediate child; any
// other predicate filters the immediate children.
func (m *matcher) containerCandidates(ctx context.Context, n *node, ref Ref, path string) ([]candidate, string, error) {
	if isWildcard(n.pred) {
		cands, err := m.descendants(ctx, n.kind, ref, path)
		return cands, "", err
	}
	entries, err := m.store.Children(ctx, ref)
	if err != nil {
		return nil, "", storeErr("children", path, err)
	}
	var cands []candidate
	var siblings []string
	for _, e := range entries {
		ok, err := m.kindMatches(ctx, n.kind, e.Ref, path)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			continue
		}
		siblings = append(siblings, e.Name)
		if n.pred.Evaluate(e.Name) {
			cands = append(cands, candidate{name: e.Name, ref: e.Ref, path: joinPath(path, e.Name)})
		}
	}
	hint := ""
	if len(cands) == 0 {
		if want, ok := equalName(n.pred); ok {
			hint = suggest.DidYouMean(want, siblings)
		}
	}
	return cands, hint, nil
}

// descendants walks the whole subtree under ref collecting every group or
// dataset, not just immediate children. A single conforming object anywhere
// under the wildcard is sufficient for the node to pass.
func (m *matcher) descendants(ctx context.Context, kind NodeKind, ref Ref, path string) ([]candidate, error) {
	entries, err := m.store.Children(ctx, ref)
	if err != nil {
		return nil, storeErr("children", path, err)
	}
	var out []candidate
	for _, e := range entries {
		childPath := joinPath(path, e.Name)
		ok, err := m.kindMatches(ctx, kind, e.Ref, childPath)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, candidate{name: e.Name, ref: e.Ref, path: childPath})
		}
		isGroup, err := m.store.IsGroup(ctx, e.Ref)
		if err != nil {
			return nil, storeErr("kind", childPath, err)
		}
		if isGroup {
			nested, err := m.descendants(ctx, kind, e.Ref, childPath)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
	}
	return out, nil
}

func (m *matcher) kindMatches(ctx context.Context, kind NodeKind, ref Ref, path string) (bool, error) {
	if kind == KindGroup {
		ok, err := m.store.IsGroup(ctx, ref)
		if err != nil {
			return false, storeErr("kind", path, err)
		}
		return ok, nil
	}
	ok, err := m.store.IsDataset(ctx, ref)
	if err != nil {
		return false, storeErr("kind", path, err)
	}
	return ok, nil
}

func joinPath(parent, name string) string {
	if parent == "/" || parent == "" {
		return "/" + name
	}
	return parent + "/" + name
}

func attrPath(parent, key string) string {
	if parent == "/" || parent == "" {
		return "/@" + key
	}
	return parent + "@" + key
}

// matchToken renders the addressed name of a node for paths where no
// concrete candidate exists.
func matchToken(p Predicate) string {
	spec := p.Spec()
	switch spec.Kind {
	case MatchEqual:
		return valueString(spec.Value)
	case MatchRegex:
		return "~" + spec.Pattern
	case MatchOneOf:
		return p.Describe()
	default:
		return WildcardName
	}
}

func equalName(p Predicate) (string, bool) {
	spec := p.Spec()
	if spec.Kind != MatchEqual {
		return "", false
	}
	s, ok := spec.Value.(string)
	if !ok || s == WildcardName {
		return "", false
	}
	return s, true
}

func attrKeys(attrs []Attribute) []string {
	keys := make([]string, len(attrs))
	for i, a := range attrs {
		keys[i] = a.Key
	}
	return keys
}

func occurrenceBounds(n *node) string {
	switch {
	case n.minOcc >= 0 && n.maxOcc >= 0 && n.minOcc == n.maxOcc:
		return fmt.Sprintf("exactly %d", n.minOcc)
	case n.minOcc >= 0 && n.maxOcc >= 0:
		return fmt.Sprintf("between %d and %d", n.minOcc, n.maxOcc)
	case n.minOcc >= 0:
		return fmt.Sprintf("at least %d", n.minOcc)
	default:
		return fmt.Sprintf("at most %d", n.maxOcc)
	}
}
