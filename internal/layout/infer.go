// Package layout implements the fixed-point layout-inference pass.
//
// The pass walks an expression graph in data-dependency order, consulting
// each call's operator for a registered inference function. Inference
// functions propose layout annotations through a Reporter; committed
// proposals may invalidate earlier conclusions, so the engine re-runs the
// traversal until a full round produces no modification.
//
// Termination relies on registered inference functions being monotone:
// a function must never revoke a previously assigned concrete layout.
// There is no iteration cap; a non-monotone function is a defect in the
// operator, not a recoverable condition here.
package layout

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/axon-ml/axon/internal/expr"
	"github.com/axon-ml/axon/internal/op"
)

// CapInferLayout is the registry capability key under which operators
// register their InferFunc.
const CapInferLayout = "FInferLayout"

// InferFunc is the pluggable per-operator layout-inference function.
//
// It receives the current annotations and checked types of the call's
// arguments followed by the call itself (so layouts[numArgs] is the call's
// own annotation), the call's static attributes, and a Reporter seeded with
// the same nodes. It returns true when inference succeeded and the
// Reporter's proposals should be committed; false leaves every annotation
// unchanged.
type InferFunc func(layouts []expr.ValueLayout, types []expr.Type, numArgs int, attrs expr.Attrs, r *Reporter) bool

// RegisterInferFunc attaches a layout-inference function to an operator.
func RegisterInferFunc(opName string, fn InferFunc) {
	op.Register(opName).SetAttr(CapInferLayout, fn)
}

// UnsupportedError reports a graph construct the pass does not implement.
// It aborts the entire pass: this is a deliberate limitation, not a silent
// no-op.
type UnsupportedError struct {
	Node expr.Node
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("layout inference: unsupported construct %s", expr.KindName(e.Node))
}

// Inferencer runs layout inference over one graph. All mutable state (the
// annotation store, round stamp, and modified flag) is private to the
// value, so independent Inferencers may run concurrently.
type Inferencer struct {
	st  *store
	log logr.Logger
}

// Option configures an Inferencer.
type Option func(*Inferencer)

// WithLogger routes engine diagnostics to the given logger.
func WithLogger(log logr.Logger) Option {
	return func(inf *Inferencer) { inf.log = log }
}

// WithSeed pre-populates the annotation store from a prior layout map.
// Seeded entries are stale, so the first round still re-derives them.
func WithSeed(seed map[expr.Node]expr.ValueLayout) Option {
	return func(inf *Inferencer) {
		for n, l := range seed {
			inf.st.entries[n] = &entry{layout: l, ts: 0}
		}
	}
}

// New creates an Inferencer with a fresh annotation store.
func New(opts ...Option) *Inferencer {
	inf := &Inferencer{st: newStore(), log: logr.Discard()}
	for _, o := range opts {
		o(inf)
	}
	return inf
}

// Infer runs the fixed-point pass from the given root and returns the same
// root with annotations committed to the internal store.
func (inf *Inferencer) Infer(root expr.Node) (expr.Node, error) {
	for round := 1; ; round++ {
		inf.st.modified = false
		if _, err := inf.visit(root); err != nil {
			return nil, err
		}
		if !inf.st.modified {
			inf.log.V(1).Info("layout inference converged", "rounds", round)
			return root, nil
		}
		inf.st.advance()
	}
}

// Layouts flattens the store into a mapping from node to its ordered
// concrete layout sequence.
func (inf *Inferencer) Layouts() map[expr.Node][]expr.Layout {
	out := make(map[expr.Node][]expr.Layout, len(inf.st.entries))
	for n, e := range inf.st.entries {
		out[n] = e.layout.Flatten()
	}
	return out
}

func (inf *Inferencer) visit(n expr.Node) (expr.ValueLayout, error) {
	switch n := n.(type) {
	case *expr.Var:
		l := inf.st.get(n)
		inf.st.touch(n)
		return l, nil
	case *expr.Function:
		// Parameter layouts are picked up through the Var case when the
		// body reaches them.
		return inf.visit(n.Body)
	case *expr.Call:
		return inf.visitCall(n)
	default:
		return nil, &UnsupportedError{Node: n}
	}
}

func (inf *Inferencer) visitCall(call *expr.Call) (expr.ValueLayout, error) {
	nodes := make([]expr.Node, 0, len(call.Args)+1)
	layouts := make([]expr.ValueLayout, 0, len(call.Args)+1)
	types := make([]expr.Type, 0, len(call.Args)+1)

	for _, arg := range call.Args {
		if inf.st.stale(arg) {
			if _, err := inf.visit(arg); err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, arg)
		layouts = append(layouts, inf.st.get(arg))
		types = append(types, arg.Type())
	}
	nodes = append(nodes, call)
	layouts = append(layouts, inf.st.get(call))
	types = append(types, call.Type())

	opRef, ok := call.Op.(*expr.OpRef)
	if !ok {
		return nil, &UnsupportedError{Node: call.Op}
	}

	if fn, ok := inferFuncFor(opRef.Name); ok {
		r := newReporter(nodes, layouts)
		if fn(layouts, types, len(call.Args), call.Attrs, r) {
			if err := inf.commit(opRef.Name, r); err != nil {
				return nil, err
			}
		} else {
			inf.log.V(2).Info("operator declined layout inference", "op", opRef.Name)
		}
	}

	// The call is freshly derived this round whether or not the operator
	// had anything to say.
	inf.st.touch(call)
	return inf.st.get(call), nil
}

func inferFuncFor(name string) (InferFunc, bool) {
	o, ok := op.Get(name)
	if !ok {
		return nil, false
	}
	return op.GetAttr[InferFunc](o, CapInferLayout)
}

func (inf *Inferencer) commit(opName string, r *Reporter) error {
	if err := r.validate(); err != nil {
		return fmt.Errorf("layout inference: operator %q: %w", opName, err)
	}
	for _, p := range r.proposals {
		inf.st.set(p.node, p.layout)
	}
	if len(r.proposals) > 0 {
		inf.log.V(2).Info("committed layout proposals", "op", opName, "count", len(r.proposals))
	}
	return nil
}

// InferLayout runs the fixed-point pass over the graph rooted at root.
// The returned node is root itself; layouts live in the engine's private
// store and are obtained through CollectLayoutInfo.
func InferLayout(root expr.Node, opts ...Option) (expr.Node, error) {
	return New(opts...).Infer(root)
}

// CollectLayoutInfo runs layout inference and flattens the resulting store
// into a mapping from node to its ordered layout sequence: a single-layout
// annotation becomes a one-element sequence, a tuple annotation its field
// sequence.
func CollectLayoutInfo(root expr.Node, opts ...Option) (map[expr.Node][]expr.Layout, error) {
	inf := New(opts...)
	if _, err := inf.Infer(root); err != nil {
		return nil, err
	}
	return inf.Layouts(), nil
}
