package grove

// aggregate folds the raw per-candidate outcomes into one verdict per node
// and returns a representative failing outcome for each failing node, in
// schema declaration order.
//
// Fold rules:
//   - predicate/missing outcomes OR together: any passing candidate passes
//     the node;
//   - cardinality outcomes OR together across the parent candidates that
//     evaluated the node, then AND with the predicate fold: an unmet count
//     fails the node even when individual candidates matched cleanly;
//   - demotion already happened at emission (Passed = Raw || optional), so
//     optional nodes can never fail here while their Raw stays inspectable;
//   - nodes with no outcomes were never reached (their ancestor already
//     failed or was absent) and are not counted.
func aggregate(nodes []*node, outcomes []Outcome) []Outcome {
	type fold struct {
		seen     bool
		hasMatch bool
		matchOK  bool
		cardOK   bool
		hasCard  bool
		// first failing outcome per cause, for diagnostics
		matchFail *Outcome
		cardFail  *Outcome
	}
	folds := make([]fold, len(nodes))
	for i := range outcomes {
		o := &outcomes[i]
		if o.NodeID < 0 || o.NodeID >= len(nodes) {
			continue
		}
		f := &folds[o.NodeID]
		f.seen = true
		if o.Code == CodeCardinality {
			f.hasCard = true
			f.cardOK = f.cardOK || o.Passed
			if !o.Passed && f.cardFail == nil {
				f.cardFail = o
			}
			continue
		}
		f.hasMatch = true
		f.matchOK = f.matchOK || o.Passed
		if !o.Passed && f.matchFail == nil {
			f.matchFail = o
		}
	}
	var failed []Outcome
	for id := range folds {
		f := &folds[id]
		if !f.seen {
			continue
		}
		// A node with only a cardinality record (constrained, zero
		// candidates) is judged by the count alone.
		ok := (!f.hasMatch || f.matchOK) && (!f.hasCard || f.cardOK)
		if ok {
			continue
		}
		switch {
		case f.hasCard && !f.cardOK && f.cardFail != nil:
			failed = append(failed, *f.cardFail)
		case f.matchFail != nil:
			failed = append(failed, *f.matchFail)
		}
	}
	return failed
}
