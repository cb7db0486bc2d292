package autodiff

import (
	"fmt"

	"github.com/axon-ml/axon/internal/op"
	"github.com/axon-ml/axon/internal/tensor"
)

// FDiff is the type of a "local" differentiation function for reverse-mode
// AD: given an output tensor, one of its immediate dependencies, and the
// adjoint of the output (head), it returns one summand of the dependency's
// adjoint attributable to that single edge. DiffBuildingBlock is the
// reference implementation.
type FDiff func(output, input, head *tensor.Tensor) (*tensor.Tensor, error)

// CapDiffBuildingBlock is the registry capability key under which an
// operator registers an FDiff override for tensors it produces.
const CapDiffBuildingBlock = "FDiffBuildingBlock"

// RegisterDiffFunc attaches a differentiation building block to an
// operator; tensors tagged with that operator use it instead of the
// generic Jacobian contraction when differentiated through RegistryDiff.
func RegisterDiffFunc(opName string, fn FDiff) {
	op.Register(opName).SetAttr(CapDiffBuildingBlock, fn)
}

// DiffBuildingBlock differentiates output with respect to its direct
// dependency input and contracts the Jacobian with head on the left via
// tensor dot product over output's dimensions.
//
// head must have shape prefix ++ output.Shape for some (possibly empty)
// prefix; the result has shape prefix ++ input.Shape.
func DiffBuildingBlock(output, input, head *tensor.Tensor) (*tensor.Tensor, error) {
	if !head.Shape.HasSuffix(output.Shape) {
		return nil, fmt.Errorf("diff building block: head shape %v does not end with output shape %v",
			head.Shape, output.Shape)
	}
	prefix := head.Shape[:len(head.Shape)-output.Rank()]

	jac, err := Jacobian(output, input, true)
	if err != nil {
		return nil, err
	}

	return tensor.Compute(
		fmt.Sprintf("%s.grad.%s", output.Name, input.Name),
		prefix.Concat(input.Shape),
		func(axes []*tensor.Var) tensor.Expr {
			prefAxes := axes[:len(prefix)]
			inAxes := axes[len(prefix):]

			iters := make([]*tensor.IterVar, output.Rank())
			for i := range iters {
				iters[i] = &tensor.IterVar{
					Var:    tensor.NewVar(fmt.Sprintf("k%d", i)),
					Extent: output.Shape[i],
				}
			}

			headIdx := make([]tensor.Expr, 0, len(prefAxes)+len(iters))
			for _, ax := range prefAxes {
				headIdx = append(headIdx, ax)
			}
			for _, it := range iters {
				headIdx = append(headIdx, it.Var)
			}
			jacIdx := make([]tensor.Expr, 0, len(iters)+len(inAxes))
			for _, it := range iters {
				jacIdx = append(jacIdx, it.Var)
			}
			for _, ax := range inAxes {
				jacIdx = append(jacIdx, ax)
			}

			prod := tensor.Mul(
				&tensor.Read{Tensor: head, Indices: headIdx},
				&tensor.Read{Tensor: jac, Indices: jacIdx},
			)
			return tensor.Simplify(&tensor.Sum{Body: prod, Iters: iters})
		})
}

// RegistryDiff is an FDiff that consults the operator registry: when the
// output tensor is tagged with an operator carrying a registered
// differentiation building block, that override runs; otherwise it falls
// back to DiffBuildingBlock.
func RegistryDiff(output, input, head *tensor.Tensor) (*tensor.Tensor, error) {
	if output.Op != "" {
		if o, ok := op.Get(output.Op); ok {
			if fn, ok := op.GetAttr[FDiff](o, CapDiffBuildingBlock); ok {
				return fn(output, input, head)
			}
		}
	}
	return DiffBuildingBlock(output, input, head)
}
