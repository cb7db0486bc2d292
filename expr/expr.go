// Copyright 2026 Axon Compiler Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package expr provides the public API for the Axon expression graph: an
// immutable DAG of typed nodes with pointer identity, shared by every
// analysis pass.
//
// Example:
//
//	ty := &expr.TensorType{Shape: tensor.Shape{1, 64, 56, 56}, DType: tensor.Float32}
//	x := expr.NewVar("x", ty)
//	y := expr.NewCall(expr.NewOpRef("nn.conv2d"), []expr.Node{x, w}, attrs, ty)
package expr

import (
	"github.com/axon-ml/axon/internal/expr"
)

// Node is the interface implemented by every expression-graph node.
type Node = expr.Node

// Node kinds.
type (
	Var          = expr.Var
	GlobalVar    = expr.GlobalVar
	Constant     = expr.Constant
	OpRef        = expr.OpRef
	Call         = expr.Call
	Function     = expr.Function
	Tuple        = expr.Tuple
	TupleGetItem = expr.TupleGetItem
	Let          = expr.Let
	If           = expr.If
	Match        = expr.Match
	Clause       = expr.Clause
	Constructor  = expr.Constructor
	RefCreate    = expr.RefCreate
	RefRead      = expr.RefRead
	RefWrite     = expr.RefWrite
)

// Types.
type (
	Type       = expr.Type
	TensorType = expr.TensorType
	TupleType  = expr.TupleType
	FuncType   = expr.FuncType
)

// Attrs is the static attribute bag attached to Call nodes.
type Attrs = expr.Attrs

// Layout annotations.
type (
	Layout       = expr.Layout
	ValueLayout  = expr.ValueLayout
	TensorLayout = expr.TensorLayout
	TupleLayout  = expr.TupleLayout
)

// Undef is the undefined layout sentinel.
const Undef = expr.Undef

// Constructors.
var (
	NewVar          = expr.NewVar
	NewGlobalVar    = expr.NewGlobalVar
	NewConstant     = expr.NewConstant
	NewOpRef        = expr.NewOpRef
	NewCall         = expr.NewCall
	NewFunction     = expr.NewFunction
	NewTuple        = expr.NewTuple
	NewTupleGetItem = expr.NewTupleGetItem
	NewLet          = expr.NewLet
	NewIf           = expr.NewIf
	NewMatch        = expr.NewMatch
	NewConstructor  = expr.NewConstructor
	NewRefCreate    = expr.NewRefCreate
	NewRefRead      = expr.NewRefRead
	NewRefWrite     = expr.NewRefWrite
)

// FreeVars returns the variables occurring free in the expression, in
// first-appearance order.
func FreeVars(n Node) []*Var { return expr.FreeVars(n) }

// OutputCount returns the number of logical outputs of a node.
func OutputCount(n Node) int { return expr.OutputCount(n) }

// DefaultLayout builds the default (all-undefined) annotation for a node.
func DefaultLayout(n Node) ValueLayout { return expr.DefaultLayout(n) }
