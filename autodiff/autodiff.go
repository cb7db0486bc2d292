// Copyright 2026 Axon Compiler Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides the public API for reverse-mode automatic
// differentiation over symbolic tensors.
//
// The building blocks are pure functions over the tensor graph:
//
//   - Derivative differentiates a scalar expression with respect to a
//     scalar variable.
//   - Jacobian differentiates a tensor with respect to one of its direct
//     dependencies; the result has shape output.Shape ++ input.Shape.
//   - DiffBuildingBlock contracts a Jacobian with an upstream adjoint
//     ("head") via tensor dot product, yielding one adjoint summand.
//   - Differentiate orchestrates full reverse-mode accumulation and
//     returns the adjoints with per-edge provenance.
//
// Example:
//
//	res, err := autodiff.Differentiate(z,
//	    autodiff.WithInputs(x, y),
//	    autodiff.WithHead(ones),
//	)
//	gradX := res.Result[0]
package autodiff

import (
	"github.com/axon-ml/axon/internal/autodiff"
	"github.com/axon-ml/axon/internal/tensor"
)

// DifferentiationResult carries the adjoints and their per-edge summands.
type DifferentiationResult = autodiff.DifferentiationResult

// FDiff is the per-edge differentiation function type.
type FDiff = autodiff.FDiff

// DiffOption configures Differentiate.
type DiffOption = autodiff.DiffOption

// CapDiffBuildingBlock is the registry capability key for FDiff overrides.
const CapDiffBuildingBlock = autodiff.CapDiffBuildingBlock

// ErrNotDirectDependency is wrapped by Jacobian when the input is not an
// immediate dependency of the output.
var ErrNotDirectDependency = autodiff.ErrNotDirectDependency

// Options.
var (
	WithInputs       = autodiff.WithInputs
	WithHead         = autodiff.WithHead
	WithFDiff        = autodiff.WithFDiff
	WithDependencies = autodiff.WithDependencies
	WithLogger       = autodiff.WithLogger
)

// Derivative returns the symbolic derivative of a scalar expression with
// respect to a scalar variable.
func Derivative(e tensor.Expr, v *tensor.Var) (tensor.Expr, error) {
	return autodiff.Derivative(e, v)
}

// Jacobian returns the tensor of partial derivatives of output with
// respect to its direct dependency input, of shape
// output.Shape ++ input.Shape.
func Jacobian(output, input *tensor.Tensor, optimize bool) (*tensor.Tensor, error) {
	return autodiff.Jacobian(output, input, optimize)
}

// DiffBuildingBlock differentiates output with respect to input and
// contracts the result with head on the left; head.Shape must be
// prefix ++ output.Shape, and the result has shape prefix ++ input.Shape.
func DiffBuildingBlock(output, input, head *tensor.Tensor) (*tensor.Tensor, error) {
	return autodiff.DiffBuildingBlock(output, input, head)
}

// RegistryDiff is an FDiff honoring per-operator overrides from the
// registry, falling back to DiffBuildingBlock.
func RegistryDiff(output, input, head *tensor.Tensor) (*tensor.Tensor, error) {
	return autodiff.RegistryDiff(output, input, head)
}

// RegisterDiffFunc attaches a differentiation building block override to
// an operator.
func RegisterDiffFunc(opName string, fn FDiff) { autodiff.RegisterDiffFunc(opName, fn) }

// Differentiate performs reverse-mode automatic differentiation of output.
func Differentiate(output *tensor.Tensor, opts ...DiffOption) (*DifferentiationResult, error) {
	return autodiff.Differentiate(output, opts...)
}
