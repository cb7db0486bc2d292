// Copyright 2026 Axon Compiler Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for symbolic tensors in the Axon
// compiler framework.
//
// A Tensor is a named value with a static Shape, defined either as a
// Placeholder (an external input) or by Compute (a scalar expression of
// its output indices). Tensors are never executed by the analyses; the
// Evaluate helper interprets them for tests and diagnostics.
//
// Example:
//
//	x := tensor.Placeholder("x", tensor.Shape{2, 3}, tensor.Float32)
//	y, _ := tensor.Compute("y", tensor.Shape{2, 3}, func(i []*tensor.Var) tensor.Expr {
//	    return tensor.Mul(tensor.Read(x, i...), tensor.Imm(2))
//	})
package tensor

import (
	"github.com/axon-ml/axon/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Bool    DataType = tensor.Bool
)

// Tensor is a symbolic tensor value, identified by pointer.
type Tensor = tensor.Tensor

// Expr is a scalar index expression, the body language of computed tensors.
type Expr = tensor.Expr

// Var is a scalar variable with pointer identity.
type Var = tensor.Var

// IterVar is a bound reduction iterator with a fixed extent.
type IterVar = tensor.IterVar

// Select is a conditional scalar expression.
type Select = tensor.Select

// Sum reduces a body expression over bound iterators.
type Sum = tensor.Sum

// Placeholder creates an input tensor with no defining computation.
func Placeholder(name string, shape Shape, dtype DataType) *Tensor {
	return tensor.Placeholder(name, shape, dtype)
}

// Compute creates a tensor defined by a scalar expression of its output
// indices.
func Compute(name string, shape Shape, f func(axes []*Var) Expr) (*Tensor, error) {
	return tensor.Compute(name, shape, f)
}

// Zeros creates a tensor filled with zeros.
func Zeros(name string, shape Shape) (*Tensor, error) { return tensor.Zeros(name, shape) }

// Ones creates a tensor filled with ones.
func Ones(name string, shape Shape) (*Tensor, error) { return tensor.Ones(name, shape) }

// Identity creates the identity tensor of shape s ++ s.
func Identity(name string, s Shape) (*Tensor, error) { return tensor.Identity(name, s) }

// Evaluate interprets a symbolic tensor given flat row-major buffers for
// the placeholders it reads.
func Evaluate(t *Tensor, bindings map[*Tensor][]float64) ([]float64, error) {
	return tensor.Evaluate(t, bindings)
}

// Scalar expression constructors.

// Read accesses one element of a tensor.
func Read(t *Tensor, indices ...*Var) Expr {
	idx := make([]Expr, len(indices))
	for i, v := range indices {
		idx[i] = v
	}
	return &tensor.Read{Tensor: t, Indices: idx}
}

// ReadIdx accesses one element of a tensor with arbitrary index expressions.
func ReadIdx(t *Tensor, indices ...Expr) Expr {
	return &tensor.Read{Tensor: t, Indices: indices}
}

// Intrinsic invokes a scalar intrinsic (exp, log, sqrt, tanh, sigmoid).
func Intrinsic(fn string, args ...Expr) Expr {
	return &tensor.Call{Fn: fn, Args: args}
}

// Add returns a + b.
func Add(a, b Expr) Expr { return tensor.Add(a, b) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return tensor.Sub(a, b) }

// Mul returns a * b.
func Mul(a, b Expr) Expr { return tensor.Mul(a, b) }

// Div returns a / b.
func Div(a, b Expr) Expr { return tensor.Div(a, b) }

// EQ returns a == b.
func EQ(a, b Expr) Expr { return tensor.EQ(a, b) }

// And returns a && b.
func And(a, b Expr) Expr { return tensor.And(a, b) }

// Imm returns a float immediate.
func Imm(v float64) Expr { return tensor.Imm(v) }

// Int returns an integer immediate.
func Int(v int64) Expr { return tensor.Int(v) }

// NewVar creates a fresh scalar variable.
func NewVar(name string) *Var { return tensor.NewVar(name) }

// Simplify rewrites an expression into a cheaper equivalent one.
func Simplify(e Expr) Expr { return tensor.Simplify(e) }
