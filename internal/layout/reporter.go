package layout

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/axon-ml/axon/internal/expr"
)

// Reporter collects the annotation updates one operator inference function
// wants to commit. It is created fresh for each Call-node evaluation,
// seeded with the call's argument nodes (the call itself last) and their
// current layouts. Proposals are buffered: the engine merges them into its
// store only when the inference function reports success, so a failed call
// leaves every annotation untouched.
type Reporter struct {
	nodes   []expr.Node
	layouts []expr.ValueLayout

	proposals []proposal
}

type proposal struct {
	node   expr.Node
	layout expr.ValueLayout
}

func newReporter(nodes []expr.Node, layouts []expr.ValueLayout) *Reporter {
	return &Reporter{nodes: nodes, layouts: layouts}
}

// NumNodes returns the number of seeded nodes (arguments plus the call).
func (r *Reporter) NumNodes() int { return len(r.nodes) }

// Node returns the i-th seeded node. Index len-1 is the call itself.
func (r *Reporter) Node(i int) expr.Node { return r.nodes[i] }

// Layout returns the current annotation of the i-th seeded node.
func (r *Reporter) Layout(i int) expr.ValueLayout { return r.layouts[i] }

// Assign proposes an annotation for a node. Later proposals for the same
// node override earlier ones when committed in order.
func (r *Reporter) Assign(n expr.Node, l expr.ValueLayout) {
	r.proposals = append(r.proposals, proposal{node: n, layout: l})
}

// AssignIndex proposes an annotation for the i-th seeded node.
func (r *Reporter) AssignIndex(i int, l expr.ValueLayout) {
	r.Assign(r.nodes[i], l)
}

// validate checks every proposal's arity against its node's output count.
// Violations are aggregated so an operator author sees all of them at once.
func (r *Reporter) validate() error {
	var err error
	for _, p := range r.proposals {
		if want, got := expr.OutputCount(p.node), p.layout.Arity(); want != got {
			err = multierr.Append(err, fmt.Errorf(
				"layout arity mismatch on %s node: annotation carries %d layouts, node has %d outputs",
				expr.KindName(p.node), got, want))
		}
	}
	return err
}
