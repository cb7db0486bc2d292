package autodiff

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/axon-ml/axon/internal/tensor"
)

// DifferentiationResult carries the output of reverse-mode accumulation.
type DifferentiationResult struct {
	// Result holds the adjoints of the requested inputs, in request order.
	Result []*tensor.Tensor
	// Adjoints maps every reached tensor (intermediates included) to its
	// accumulated adjoint.
	Adjoints map[*tensor.Tensor]*tensor.Tensor
	// AdjointSummands maps a tensor to the individual per-edge summands of
	// its adjoint, keyed by the dependent tensor that contributed them.
	// For every tensor present, the summands add up to its Adjoints entry.
	AdjointSummands map[*tensor.Tensor]map[*tensor.Tensor]*tensor.Tensor
}

type diffConfig struct {
	inputs []*tensor.Tensor
	head   *tensor.Tensor
	fdiff  FDiff
	deps   map[*tensor.Tensor][]*tensor.Tensor
	log    logr.Logger
}

// DiffOption configures Differentiate.
type DiffOption func(*diffConfig)

// WithInputs requests adjoints for the given tensors, in order. Without
// this option the result covers every leaf of the dependency graph.
func WithInputs(inputs ...*tensor.Tensor) DiffOption {
	return func(c *diffConfig) { c.inputs = inputs }
}

// WithHead seeds the accumulation with the given adjoint of the output.
// Its shape must be prefix ++ output.Shape. Without it, the identity
// tensor of shape output.Shape ++ output.Shape is used.
func WithHead(head *tensor.Tensor) DiffOption {
	return func(c *diffConfig) { c.head = head }
}

// WithFDiff substitutes the per-edge differentiation function.
// DiffBuildingBlock is the default; RegistryDiff adds per-operator
// overrides from the registry.
func WithFDiff(fdiff FDiff) DiffOption {
	return func(c *diffConfig) { c.fdiff = fdiff }
}

// WithDependencies overrides the direct-dependency list of the given
// tensors. Tensors without an entry keep their intrinsic dependencies
// (InputTensors). Useful to treat a group of tensors as one supertensor;
// the fdiff function must then be adjusted accordingly.
func WithDependencies(deps map[*tensor.Tensor][]*tensor.Tensor) DiffOption {
	return func(c *diffConfig) { c.deps = deps }
}

// WithLogger routes engine diagnostics (skipped edges, visit counts) to
// the given logger.
func WithLogger(log logr.Logger) DiffOption {
	return func(c *diffConfig) { c.log = log }
}

// Differentiate performs reverse-mode automatic differentiation of output.
//
// The dependency DAG reachable from output is traversed in reverse
// topological order: a tensor is processed only once every dependent has
// contributed its adjoint. For each edge D -> N, fdiff(D, N, adjoints[D])
// yields one summand of N's adjoint; summands accumulate by elementwise
// addition, order-independently. A failing fdiff skips only that edge.
//
// Requested inputs the accumulation never reaches get an all-zero adjoint
// of the appropriate shape.
func Differentiate(output *tensor.Tensor, opts ...DiffOption) (*DifferentiationResult, error) {
	cfg := diffConfig{fdiff: DiffBuildingBlock, log: logr.Discard()}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.head != nil && !cfg.head.Shape.HasSuffix(output.Shape) {
		return nil, fmt.Errorf("differentiate: head shape %v does not end with output shape %v",
			cfg.head.Shape, output.Shape)
	}

	depsOf := func(t *tensor.Tensor) []*tensor.Tensor {
		if cfg.deps != nil {
			if d, ok := cfg.deps[t]; ok {
				return d
			}
		}
		return t.InputTensors()
	}

	// Reachable subgraph in first-visit order, plus per-node dependent
	// counts within it.
	order := []*tensor.Tensor{output}
	reachable := map[*tensor.Tensor]bool{output: true}
	pending := make(map[*tensor.Tensor]int)
	for i := 0; i < len(order); i++ {
		for _, dep := range depsOf(order[i]) {
			pending[dep]++
			if !reachable[dep] {
				reachable[dep] = true
				order = append(order, dep)
			}
		}
	}

	head := cfg.head
	if head == nil {
		var err error
		head, err = tensor.Identity(output.Name+".head", output.Shape)
		if err != nil {
			return nil, fmt.Errorf("differentiate: %w", err)
		}
	}

	res := &DifferentiationResult{
		Adjoints:        map[*tensor.Tensor]*tensor.Tensor{output: head},
		AdjointSummands: make(map[*tensor.Tensor]map[*tensor.Tensor]*tensor.Tensor),
	}

	queue := []*tensor.Tensor{output}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		adj := res.Adjoints[d]

		for _, n := range depsOf(d) {
			// adj is nil when every edge into d failed; d then contributes
			// nothing, but its dependencies must still be released.
			if adj != nil {
				summand, err := cfg.fdiff(d, n, adj)
				if err != nil {
					cfg.log.V(1).Info("skipping dependency edge", "output", d.Name, "input", n.Name, "reason", err.Error())
				} else {
					if res.AdjointSummands[n] == nil {
						res.AdjointSummands[n] = make(map[*tensor.Tensor]*tensor.Tensor)
					}
					res.AdjointSummands[n][d] = summand
					if prev, ok := res.Adjoints[n]; ok {
						sum, err := addTensors(n.Name, prev, summand)
						if err != nil {
							return nil, fmt.Errorf("differentiate: accumulating adjoint of %q: %w", n.Name, err)
						}
						res.Adjoints[n] = sum
					} else {
						res.Adjoints[n] = summand
					}
				}
			}
			pending[n]--
			if pending[n] == 0 {
				queue = append(queue, n)
			}
		}
	}

	inputs := cfg.inputs
	if len(inputs) == 0 {
		// Differentiate with respect to every leaf of the dependency graph.
		for _, t := range order {
			if len(depsOf(t)) == 0 {
				inputs = append(inputs, t)
			}
		}
	}

	prefix := head.Shape[:len(head.Shape)-output.Rank()]
	res.Result = make([]*tensor.Tensor, len(inputs))
	for i, in := range inputs {
		if adj, ok := res.Adjoints[in]; ok {
			res.Result[i] = adj
			continue
		}
		zero, err := tensor.Zeros(in.Name+".grad", prefix.Concat(in.Shape))
		if err != nil {
			return nil, fmt.Errorf("differentiate: %w", err)
		}
		res.Result[i] = zero
	}

	cfg.log.V(1).Info("differentiation finished",
		"tensors", len(order), "adjoints", len(res.Adjoints), "inputs", len(inputs))
	return res, nil
}

// addTensors builds the elementwise sum of two same-shaped tensors.
func addTensors(name string, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	if !a.Shape.Equal(b.Shape) {
		return nil, fmt.Errorf("summand shape %v does not match accumulated shape %v", b.Shape, a.Shape)
	}
	return tensor.Compute(name+".adjoint", a.Shape, func(axes []*tensor.Var) tensor.Expr {
		idx := make([]tensor.Expr, len(axes))
		for i, ax := range axes {
			idx[i] = ax
		}
		return tensor.Add(
			&tensor.Read{Tensor: a, Indices: idx},
			&tensor.Read{Tensor: b, Indices: idx},
		)
	})
}
