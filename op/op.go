// Copyright 2026 Axon Compiler Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package op provides the public API for the operator capability registry.
//
// Operators are identified by name and carry optional capability
// attributes: function values that analyses look up by key and invoke if
// present. Absence of a capability is a valid, non-error state.
//
// Example:
//
//	op.Register("nn.conv2d").
//	    SetAttr(layout.CapInferLayout, inferConvLayout)
package op

import (
	"github.com/axon-ml/axon/internal/op"
)

// Op is a registered operator.
type Op = op.Op

// Register returns the operator with the given name, creating it on first
// use.
func Register(name string) *Op { return op.Register(name) }

// Get looks up a registered operator by name.
func Get(name string) (*Op, bool) { return op.Get(name) }

// GetAttr returns the capability registered under key if it has type T.
func GetAttr[T any](o *Op, key string) (T, bool) { return op.GetAttr[T](o, key) }
