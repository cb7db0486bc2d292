package autodiff

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// ErrNotDirectDependency is wrapped by Jacobian when the input tensor is
// not an immediate dependency of the output. Transitive dependencies must
// go through full reverse-mode accumulation (Differentiate).
var ErrNotDirectDependency = fmt.Errorf("input is not a direct dependency of output")

// Jacobian returns the tensor of partial derivatives of output with
// respect to input, of shape output.Shape ++ input.Shape.
//
// input must be read directly by output's body. When optimize is set, the
// body is simplified by lifting nonzeroness conditions: the Kronecker
// deltas introduced for each read of input collapse reductions and
// provably-zero branches, shrinking downstream expressions without
// changing semantics.
func Jacobian(output, input *tensor.Tensor, optimize bool) (*tensor.Tensor, error) {
	if output.IsPlaceholder() {
		return nil, fmt.Errorf("jacobian: output %q is a placeholder with no body", output.Name)
	}
	direct := false
	for _, t := range output.InputTensors() {
		if t == input {
			direct = true
			break
		}
	}
	if !direct {
		return nil, fmt.Errorf("jacobian: %q with respect to %q: %w", output.Name, input.Name, ErrNotDirectDependency)
	}

	var deriveErr error
	jac, err := tensor.Compute(
		fmt.Sprintf("%s.jacobian.%s", output.Name, input.Name),
		output.Shape.Concat(input.Shape),
		func(axes []*tensor.Var) tensor.Expr {
			outAxes := axes[:output.Rank()]
			inAxes := axes[output.Rank():]

			// Re-express the output body in the Jacobian's leading axes.
			binding := make(map[*tensor.Var]tensor.Expr, len(output.Axes))
			for i, ax := range output.Axes {
				binding[ax] = outAxes[i]
			}
			body := tensor.Substitute(output.Body, binding)

			d, err := deriveExpr(body, readDelta(input, inAxes))
			if err != nil {
				deriveErr = err
				return tensor.Zero()
			}
			if optimize {
				d = tensor.Simplify(d)
			}
			return d
		})
	if err != nil {
		return nil, err
	}
	if deriveErr != nil {
		return nil, fmt.Errorf("jacobian: %w", deriveErr)
	}
	return jac, nil
}

// readDelta is the leaf rule for tensor differentiation: the derivative of
// input[i...] with respect to input[j...] is the Kronecker delta over the
// index tuples, expressed as a guarded select. Reads of any other tensor
// fall through to the constant rule.
func readDelta(input *tensor.Tensor, inAxes []*tensor.Var) leafRule {
	return func(e tensor.Expr) (tensor.Expr, bool, error) {
		r, ok := e.(*tensor.Read)
		if !ok || r.Tensor != input {
			return nil, false, nil
		}
		if len(r.Indices) != len(inAxes) {
			return nil, false, fmt.Errorf("read of %q has %d indices, expected %d", input.Name, len(r.Indices), len(inAxes))
		}
		if len(inAxes) == 0 {
			return tensor.One(), true, nil
		}
		cond := tensor.EQ(r.Indices[0], inAxes[0])
		for i := 1; i < len(inAxes); i++ {
			cond = tensor.And(cond, tensor.EQ(r.Indices[i], inAxes[i]))
		}
		return &tensor.Select{Cond: cond, Then: tensor.One(), Else: tensor.Zero()}, true, nil
	}
}
