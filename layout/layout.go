// Copyright 2026 Axon Compiler Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package layout provides the public API for the fixed-point
// layout-inference pass.
//
// The pass assigns a physical data layout to every value of an expression
// graph, driven by per-operator inference functions registered in the
// operator registry under CapInferLayout. It re-runs its traversal until a
// full round commits no modification; registered functions must be
// monotone (never revoke a concrete layout) for this to terminate.
//
// Example:
//
//	layout.RegisterInferFunc("nn.conv2d", inferConvLayout)
//	layouts, err := layout.CollectLayoutInfo(root)
package layout

import (
	"github.com/axon-ml/axon/internal/expr"
	"github.com/axon-ml/axon/internal/layout"
)

// InferFunc is the pluggable per-operator layout-inference function.
type InferFunc = layout.InferFunc

// Reporter collects the annotation updates one inference call proposes.
type Reporter = layout.Reporter

// Inferencer runs layout inference over one graph.
type Inferencer = layout.Inferencer

// Option configures an Inferencer.
type Option = layout.Option

// UnsupportedError reports a graph construct the pass does not implement;
// it aborts the entire pass.
type UnsupportedError = layout.UnsupportedError

// CapInferLayout is the registry capability key for InferFunc.
const CapInferLayout = layout.CapInferLayout

// New creates an Inferencer with a fresh annotation store.
func New(opts ...Option) *Inferencer { return layout.New(opts...) }

// WithLogger routes engine diagnostics to the given logger.
var WithLogger = layout.WithLogger

// WithSeed pre-populates the annotation store from a prior layout map.
var WithSeed = layout.WithSeed

// RegisterInferFunc attaches a layout-inference function to an operator.
func RegisterInferFunc(opName string, fn InferFunc) { layout.RegisterInferFunc(opName, fn) }

// InferLayout runs the fixed-point pass and returns the same root with
// annotations committed to the engine's internal store.
func InferLayout(root expr.Node, opts ...Option) (expr.Node, error) {
	return layout.InferLayout(root, opts...)
}

// CollectLayoutInfo runs layout inference and flattens the result into a
// mapping from node to its ordered layout sequence.
func CollectLayoutInfo(root expr.Node, opts ...Option) (map[expr.Node][]expr.Layout, error) {
	return layout.CollectLayoutInfo(root, opts...)
}
