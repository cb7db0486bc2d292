// Package autodiff implements reverse-mode automatic differentiation over
// symbolic tensor expressions.
//
// The building blocks are pure functions over the tensor graph: Derivative
// differentiates a scalar expression, Jacobian a tensor with respect to one
// of its direct dependencies, and DiffBuildingBlock contracts a Jacobian
// with an upstream adjoint. Differentiate orchestrates full reverse-mode
// accumulation over the dependency DAG.
package autodiff

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// leafRule handles the base case of structural differentiation: it returns
// the derivative of an expression that is itself the differentiation
// target, or ok=false to fall through to the generic rules.
type leafRule func(e tensor.Expr) (d tensor.Expr, ok bool, err error)

// Derivative returns the symbolic derivative of a scalar expression with
// respect to a scalar variable. The result is an expression, not a value.
func Derivative(e tensor.Expr, v *tensor.Var) (tensor.Expr, error) {
	return deriveExpr(e, func(x tensor.Expr) (tensor.Expr, bool, error) {
		if xv, ok := x.(*tensor.Var); ok && xv == v {
			return tensor.One(), true, nil
		}
		return nil, false, nil
	})
}

// deriveExpr applies the standard structural differentiation rules, asking
// leaf first at every node. Tensor reads and variables not claimed by the
// leaf rule are constants with derivative zero.
func deriveExpr(e tensor.Expr, leaf leafRule) (tensor.Expr, error) {
	if d, ok, err := leaf(e); err != nil {
		return nil, err
	} else if ok {
		return d, nil
	}

	switch e := e.(type) {
	case *tensor.Var, *tensor.IntImm, *tensor.FloatImm, *tensor.Read:
		return tensor.Zero(), nil

	case *tensor.Binary:
		switch e.Kind {
		case tensor.KindAdd, tensor.KindSub, tensor.KindMul, tensor.KindDiv:
		default:
			// Comparisons and logical connectives are piecewise constant.
			return tensor.Zero(), nil
		}
		da, err := deriveExpr(e.A, leaf)
		if err != nil {
			return nil, err
		}
		db, err := deriveExpr(e.B, leaf)
		if err != nil {
			return nil, err
		}
		switch e.Kind {
		case tensor.KindAdd:
			return tensor.Add(da, db), nil
		case tensor.KindSub:
			return tensor.Sub(da, db), nil
		case tensor.KindMul:
			return tensor.Add(tensor.Mul(da, e.B), tensor.Mul(e.A, db)), nil
		default: // KindDiv
			num := tensor.Sub(tensor.Mul(da, e.B), tensor.Mul(e.A, db))
			return tensor.Div(num, tensor.Mul(e.B, e.B)), nil
		}

	case *tensor.Select:
		// The condition is treated as locally constant.
		dt, err := deriveExpr(e.Then, leaf)
		if err != nil {
			return nil, err
		}
		de, err := deriveExpr(e.Else, leaf)
		if err != nil {
			return nil, err
		}
		return &tensor.Select{Cond: e.Cond, Then: dt, Else: de}, nil

	case *tensor.Call:
		return deriveCall(e, leaf)

	case *tensor.Sum:
		db, err := deriveExpr(e.Body, leaf)
		if err != nil {
			return nil, err
		}
		return &tensor.Sum{Body: db, Iters: e.Iters}, nil

	default:
		return nil, fmt.Errorf("derivative: unsupported expression kind %T", e)
	}
}

// deriveCall applies the chain rule through a scalar intrinsic.
func deriveCall(e *tensor.Call, leaf leafRule) (tensor.Expr, error) {
	if len(e.Args) != 1 {
		return nil, fmt.Errorf("derivative: intrinsic %q: want 1 argument, got %d", e.Fn, len(e.Args))
	}
	arg := e.Args[0]
	da, err := deriveExpr(arg, leaf)
	if err != nil {
		return nil, err
	}

	var outer tensor.Expr // d fn(x) / dx
	switch e.Fn {
	case "exp":
		outer = e
	case "log":
		outer = tensor.Div(tensor.One(), arg)
	case "sqrt":
		outer = tensor.Div(tensor.One(), tensor.Mul(tensor.Imm(2), e))
	case "tanh":
		outer = tensor.Sub(tensor.One(), tensor.Mul(e, e))
	case "sigmoid":
		outer = tensor.Mul(e, tensor.Sub(tensor.One(), e))
	default:
		return nil, fmt.Errorf("derivative: unknown intrinsic %q", e.Fn)
	}
	return tensor.Mul(outer, da), nil
}
