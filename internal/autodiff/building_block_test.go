package autodiff

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-ml/axon/internal/tensor"
)

func TestDiffBuildingBlock_HeadShapeMismatch(t *testing.T) {
	x := tensor.Placeholder("x", tensor.Shape{3}, tensor.Float32)
	y := mustCompute(t, "y", tensor.Shape{3}, func(ax []*tensor.Var) tensor.Expr {
		return &tensor.Read{Tensor: x, Indices: []tensor.Expr{ax[0]}}
	})
	head := tensor.Placeholder("head", tensor.Shape{4}, tensor.Float32)

	_, err := DiffBuildingBlock(y, x, head)
	require.Error(t, err)
	assert.ErrorContains(t, err, "does not end with output shape")
}

func TestDiffBuildingBlock_Contraction(t *testing.T) {
	// y[i] = x[i]^2 with head h: grad[j] = sum_i h[i] * 2*x[i]*delta(i,j)
	//                                    = 2 * h[j] * x[j]
	x := tensor.Placeholder("x", tensor.Shape{3}, tensor.Float32)
	y := mustCompute(t, "y", tensor.Shape{3}, func(ax []*tensor.Var) tensor.Expr {
		r := &tensor.Read{Tensor: x, Indices: []tensor.Expr{ax[0]}}
		return tensor.Mul(r, r)
	})
	head := tensor.Placeholder("head", tensor.Shape{3}, tensor.Float32)

	grad, err := DiffBuildingBlock(y, x, head)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{3}, grad.Shape)

	xv := []float64{2, 3, 5}
	hv := []float64{1, 10, 100}
	got, err := tensor.Evaluate(grad, map[*tensor.Tensor][]float64{x: xv, head: hv})
	require.NoError(t, err)
	for j := range xv {
		assert.Equal(t, 2*hv[j]*xv[j], got[j], "grad[%d]", j)
	}
}

func TestDiffBuildingBlock_PrefixedHead(t *testing.T) {
	// A head with a leading batch dimension keeps that prefix on the
	// gradient.
	x := tensor.Placeholder("x", tensor.Shape{2}, tensor.Float32)
	y := mustCompute(t, "y", tensor.Shape{2}, func(ax []*tensor.Var) tensor.Expr {
		r := &tensor.Read{Tensor: x, Indices: []tensor.Expr{ax[0]}}
		return tensor.Mul(tensor.Imm(3), r)
	})
	head := tensor.Placeholder("head", tensor.Shape{4, 2}, tensor.Float32)

	grad, err := DiffBuildingBlock(y, x, head)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{4, 2}, grad.Shape)

	hv := make([]float64, 8)
	for i := range hv {
		hv[i] = float64(i + 1)
	}
	got, err := tensor.Evaluate(grad, map[*tensor.Tensor][]float64{
		x:    {9, 9},
		head: hv,
	})
	require.NoError(t, err)
	for i := range hv {
		assert.Equal(t, 3*hv[i], got[i], "grad flat index %d", i)
	}
}

func TestDiffBuildingBlock_ShapeLaw(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("gradient shape is head prefix ++ input shape", prop.ForAll(
		func(prefix []int, n int, m int) bool {
			x := tensor.Placeholder("x", tensor.Shape{m}, tensor.Float32)
			y, err := tensor.Compute("y", tensor.Shape{n}, func(ax []*tensor.Var) tensor.Expr {
				k := &tensor.IterVar{Var: tensor.NewVar("k"), Extent: m}
				return &tensor.Sum{
					Body:  &tensor.Read{Tensor: x, Indices: []tensor.Expr{k.Var}},
					Iters: []*tensor.IterVar{k},
				}
			})
			if err != nil {
				return false
			}
			head := tensor.Placeholder("head", tensor.Shape(prefix).Concat(tensor.Shape{n}), tensor.Float32)

			grad, err := DiffBuildingBlock(y, x, head)
			if err != nil {
				return false
			}
			return grad.Shape.Equal(tensor.Shape(prefix).Concat(tensor.Shape{m}))
		},
		gen.SliceOfN(2, gen.IntRange(1, 3)),
		gen.IntRange(1, 4),
		gen.IntRange(1, 4),
	))

	properties.Property("empty prefix yields gradient of the input shape", prop.ForAll(
		func(n int) bool {
			x := tensor.Placeholder("x", tensor.Shape{n}, tensor.Float32)
			y, err := tensor.Compute("y", tensor.Shape{n}, func(ax []*tensor.Var) tensor.Expr {
				r := &tensor.Read{Tensor: x, Indices: []tensor.Expr{ax[0]}}
				return tensor.Mul(r, r)
			})
			if err != nil {
				return false
			}
			head := tensor.Placeholder("head", tensor.Shape{n}, tensor.Float32)

			grad, err := DiffBuildingBlock(y, x, head)
			if err != nil {
				return false
			}
			return grad.Shape.Equal(tensor.Shape{n})
		},
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}

func TestRegistryDiff_Override(t *testing.T) {
	marker := tensor.Placeholder("marker", tensor.Shape{1}, tensor.Float32)
	RegisterDiffFunc("test.custom-grad", func(output, input, head *tensor.Tensor) (*tensor.Tensor, error) {
		return marker, nil
	})

	x := tensor.Placeholder("x", tensor.Shape{2}, tensor.Float32)
	y := mustCompute(t, "y", tensor.Shape{2}, func(ax []*tensor.Var) tensor.Expr {
		return &tensor.Read{Tensor: x, Indices: []tensor.Expr{ax[0]}}
	})
	y.Op = "test.custom-grad"
	head := tensor.Placeholder("head", tensor.Shape{2}, tensor.Float32)

	grad, err := RegistryDiff(y, x, head)
	require.NoError(t, err)
	assert.Same(t, marker, grad, "registered override must win")
}

func TestRegistryDiff_FallsBack(t *testing.T) {
	x := tensor.Placeholder("x", tensor.Shape{2}, tensor.Float32)
	y := mustCompute(t, "y", tensor.Shape{2}, func(ax []*tensor.Var) tensor.Expr {
		r := &tensor.Read{Tensor: x, Indices: []tensor.Expr{ax[0]}}
		return tensor.Mul(tensor.Imm(2), r)
	})
	head := tensor.Placeholder("head", tensor.Shape{2}, tensor.Float32)

	grad, err := RegistryDiff(y, x, head)
	require.NoError(t, err)

	got, err := tensor.Evaluate(grad, map[*tensor.Tensor][]float64{
		x:    {1, 1},
		head: {5, 7},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 14}, got)
}
