package expr

import (
	"fmt"
	"strings"

	"github.com/axon-ml/axon/internal/tensor"
)

// Type is the checked type of an expression-graph value.
type Type interface {
	fmt.Stringer
	typ()
}

// TensorType is the type of a tensor value with a static shape.
type TensorType struct {
	Shape tensor.Shape
	DType tensor.DataType
}

func (t *TensorType) typ() {}

func (t *TensorType) String() string {
	dims := make([]string, len(t.Shape))
	for i, d := range t.Shape {
		dims[i] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("Tensor[(%s), %s]", strings.Join(dims, ", "), t.DType)
}

// TupleType is the type of a tuple value.
type TupleType struct {
	Fields []Type
}

func (t *TupleType) typ() {}

func (t *TupleType) String() string {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.String()
	}
	return "(" + strings.Join(fields, ", ") + ")"
}

// FuncType is the type of a function value.
type FuncType struct {
	Params []Type
	Ret    Type
}

func (t *FuncType) typ() {}

func (t *FuncType) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), t.Ret)
}
