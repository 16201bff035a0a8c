package grove

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/treegrove/grove/i18n"
)

// Outcome codes. Failing a predicate is ordinary data, never an error; the
// code says which stage of matching produced the record.
const (
	CodePredicate   = "predicate"   // the node's predicate was evaluated against a candidate
	CodeMissing     = "missing"     // no candidate existed for the node
	CodeCardinality = "cardinality" // an occurrence constraint was checked
)

// Outcome is one record produced for a (validation node, candidate) pair
// during a single run. Outcomes are fresh per run and never mutated once
// emitted.
type Outcome struct {
	NodeID int    `json:"node_id"`
	Path   string `json:"path"`
	Code   string `json:"code"`
	// Raw is the un-demoted predicate result, kept for diagnostics.
	Raw bool `json:"raw"`
	// Passed is the reported result: Raw, forced to true when the node is
	// optional (demotion).
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

// Report is the caller-owned result of one Validate call.
type Report struct {
	runID    string
	outcomes []Outcome
	// failed holds one representative outcome per failing node, in schema
	// declaration order.
	failed []Outcome
}

// RunID identifies this validation run.
func (r *Report) RunID() string { return r.runID }

// Outcomes returns every raw record of the run, in emission order.
func (r *Report) Outcomes() []Outcome {
	out := make([]Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// Fails counts the nodes whose demoted, OR-folded result is false. A node
// whose parent never matched is not counted; the parent alone is.
func (r *Report) Fails() int { return len(r.failed) }

// Failures returns one representative outcome per failing node, in schema
// declaration order.
func (r *Report) Failures() []Outcome {
	out := make([]Outcome, len(r.failed))
	copy(out, r.failed)
	return out
}

// Render writes a human-readable dump of every failing node, in schema
// declaration order, with its addressed path and the predicate that failed.
func (r *Report) Render(w io.Writer) {
	if len(r.failed) == 0 {
		fmt.Fprintf(w, "valid: %d outcomes, 0 failures\n", len(r.outcomes))
		return
	}
	fmt.Fprintf(w, "invalid: %d failing node(s)\n", len(r.failed))
	for _, o := range r.failed {
		msg := i18n.T(o.Code, map[string]string{"expected": o.Detail})
		fmt.Fprintf(w, "  node#%d at %s: %s", o.NodeID, o.Path, msg)
		if o.Hint != "" {
			fmt.Fprintf(w, "; %s", o.Hint)
		}
		fmt.Fprintln(w)
	}
}

// String renders the report as Render would.
func (r *Report) String() string {
	b := &strings.Builder{}
	r.Render(b)
	return b.String()
}

// reportJSON is the wire form of a Report.
type reportJSON struct {
	RunID    string    `json:"run_id"`
	Fails    int       `json:"fails"`
	Failures []Outcome `json:"failures"`
	Outcomes []Outcome `json:"outcomes"`
}

// JSON serializes the report for machine consumers.
func (r *Report) JSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		RunID:    r.runID,
		Fails:    len(r.failed),
		Failures: r.failed,
		Outcomes: r.outcomes,
	})
}
