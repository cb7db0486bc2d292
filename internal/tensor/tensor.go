package tensor

import (
	"fmt"
)

// Tensor is a symbolic tensor: a named value with a static shape.
//
// A placeholder tensor stands for an external input and has no body.
// A computed tensor defines each element as a scalar expression of its
// output index variables (Axes). Identity is pointer identity; tensors
// are used directly as map keys by the analyses.
type Tensor struct {
	Name  string
	Shape Shape
	DType DataType

	// Op optionally tags the operator that produced this tensor
	// ("add", "mul", "conv2d", ...). The autodiff engine uses it to look
	// up per-operator differentiation overrides in the registry.
	Op string

	// Axes are the output index variables, one per shape dimension.
	// Nil for placeholders.
	Axes []*Var
	// Body defines the element at Axes. Nil for placeholders.
	Body Expr
}

// Placeholder creates an input tensor with no defining computation.
func Placeholder(name string, shape Shape, dtype DataType) *Tensor {
	return &Tensor{Name: name, Shape: shape.Clone(), DType: dtype}
}

// Compute creates a tensor defined by a scalar expression of its output
// indices. The callback receives one fresh index variable per dimension.
func Compute(name string, shape Shape, f func(axes []*Var) Expr) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("compute %q: %w", name, err)
	}
	axes := make([]*Var, len(shape))
	for i := range axes {
		axes[i] = NewVar(fmt.Sprintf("%s.i%d", name, i))
	}
	body := f(axes)
	if body == nil {
		return nil, fmt.Errorf("compute %q: nil body", name)
	}
	return &Tensor{
		Name:  name,
		Shape: shape.Clone(),
		DType: Float32,
		Axes:  axes,
		Body:  body,
	}, nil
}

// IsPlaceholder reports whether the tensor is an external input.
func (t *Tensor) IsPlaceholder() bool { return t.Body == nil }

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int { return len(t.Shape) }

// String returns a short description of the tensor.
func (t *Tensor) String() string {
	if t.IsPlaceholder() {
		return fmt.Sprintf("placeholder(%s, %v)", t.Name, t.Shape)
	}
	return fmt.Sprintf("compute(%s, %v)", t.Name, t.Shape)
}

// InputTensors returns the tensors read by the body, in first-appearance
// order with duplicates removed. These are the direct dependencies of the
// tensor; placeholders return nil.
func (t *Tensor) InputTensors() []*Tensor {
	if t.Body == nil {
		return nil
	}
	var inputs []*Tensor
	seen := make(map[*Tensor]bool)
	Walk(t.Body, func(e Expr) bool {
		if r, ok := e.(*Read); ok && !seen[r.Tensor] {
			seen[r.Tensor] = true
			inputs = append(inputs, r.Tensor)
		}
		return true
	})
	return inputs
}
