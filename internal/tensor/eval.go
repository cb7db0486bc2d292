package tensor

import (
	"fmt"
	"math"
)

// Evaluate computes the concrete values of a symbolic tensor, given flat
// row-major buffers for every placeholder it transitively reads. It exists
// for tests and diagnostics: the compiler proper never executes tensors,
// but gradient expressions are much easier to validate numerically.
func Evaluate(t *Tensor, bindings map[*Tensor][]float64) ([]float64, error) {
	ev := &evaluator{bindings: bindings, cache: make(map[*Tensor][]float64)}
	return ev.tensor(t)
}

// EvalExpr computes a single scalar expression under explicit variable
// bindings; tensors read by the expression resolve through bindings like
// in Evaluate.
func EvalExpr(e Expr, vars map[*Var]float64, bindings map[*Tensor][]float64) (float64, error) {
	ev := &evaluator{bindings: bindings, cache: make(map[*Tensor][]float64)}
	env := make(map[*Var]float64, len(vars))
	for k, v := range vars {
		env[k] = v
	}
	return ev.expr(e, env)
}

type evaluator struct {
	bindings map[*Tensor][]float64
	cache    map[*Tensor][]float64
}

func (ev *evaluator) tensor(t *Tensor) ([]float64, error) {
	if buf, ok := ev.cache[t]; ok {
		return buf, nil
	}
	if t.IsPlaceholder() {
		buf, ok := ev.bindings[t]
		if !ok {
			return nil, fmt.Errorf("evaluate: no binding for placeholder %q", t.Name)
		}
		if len(buf) != t.Shape.NumElements() {
			return nil, fmt.Errorf("evaluate: binding for %q has %d elements, shape %v needs %d",
				t.Name, len(buf), t.Shape, t.Shape.NumElements())
		}
		ev.cache[t] = buf
		return buf, nil
	}

	n := t.Shape.NumElements()
	strides := t.Shape.ComputeStrides()
	buf := make([]float64, n)
	env := make(map[*Var]float64, len(t.Axes))
	for flat := 0; flat < n; flat++ {
		rem := flat
		for d, ax := range t.Axes {
			env[ax] = float64(rem / strides[d])
			rem %= strides[d]
		}
		v, err := ev.expr(t.Body, env)
		if err != nil {
			return nil, fmt.Errorf("evaluate %q: %w", t.Name, err)
		}
		buf[flat] = v
	}
	ev.cache[t] = buf
	return buf, nil
}

func (ev *evaluator) expr(e Expr, env map[*Var]float64) (float64, error) {
	switch e := e.(type) {
	case *Var:
		v, ok := env[e]
		if !ok {
			return 0, fmt.Errorf("unbound variable %q", e.Name)
		}
		return v, nil
	case *IntImm:
		return float64(e.Value), nil
	case *FloatImm:
		return e.Value, nil
	case *Binary:
		a, err := ev.expr(e.A, env)
		if err != nil {
			return 0, err
		}
		b, err := ev.expr(e.B, env)
		if err != nil {
			return 0, err
		}
		switch e.Kind {
		case KindAdd:
			return a + b, nil
		case KindSub:
			return a - b, nil
		case KindMul:
			return a * b, nil
		case KindDiv:
			if b == 0 {
				return 0, fmt.Errorf("division by zero in %s", e)
			}
			return a / b, nil
		case KindEQ:
			return bool2f(a == b), nil
		case KindNE:
			return bool2f(a != b), nil
		case KindLT:
			return bool2f(a < b), nil
		case KindLE:
			return bool2f(a <= b), nil
		case KindAnd:
			return bool2f(a != 0 && b != 0), nil
		case KindOr:
			return bool2f(a != 0 || b != 0), nil
		default:
			return 0, fmt.Errorf("unknown binary kind %d", e.Kind)
		}
	case *Select:
		c, err := ev.expr(e.Cond, env)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return ev.expr(e.Then, env)
		}
		return ev.expr(e.Else, env)
	case *Call:
		if len(e.Args) != 1 {
			return 0, fmt.Errorf("intrinsic %q: want 1 argument, got %d", e.Fn, len(e.Args))
		}
		a, err := ev.expr(e.Args[0], env)
		if err != nil {
			return 0, err
		}
		switch e.Fn {
		case "exp":
			return math.Exp(a), nil
		case "log":
			return math.Log(a), nil
		case "sqrt":
			return math.Sqrt(a), nil
		case "tanh":
			return math.Tanh(a), nil
		case "sigmoid":
			return 1 / (1 + math.Exp(-a)), nil
		default:
			return 0, fmt.Errorf("unknown intrinsic %q", e.Fn)
		}
	case *Read:
		buf, err := ev.tensor(e.Tensor)
		if err != nil {
			return 0, err
		}
		if len(e.Indices) != e.Tensor.Rank() {
			return 0, fmt.Errorf("read %q: %d indices for rank %d", e.Tensor.Name, len(e.Indices), e.Tensor.Rank())
		}
		strides := e.Tensor.Shape.ComputeStrides()
		flat := 0
		for d, ix := range e.Indices {
			v, err := ev.expr(ix, env)
			if err != nil {
				return 0, err
			}
			i := int(v)
			if i < 0 || i >= e.Tensor.Shape[d] {
				return 0, fmt.Errorf("read %q: index %d out of range [0,%d) in dimension %d",
					e.Tensor.Name, i, e.Tensor.Shape[d], d)
			}
			flat += i * strides[d]
		}
		return buf[flat], nil
	case *Sum:
		return ev.sum(e, env, 0)
	default:
		return 0, fmt.Errorf("unknown expression kind %T", e)
	}
}

func (ev *evaluator) sum(e *Sum, env map[*Var]float64, depth int) (float64, error) {
	if depth == len(e.Iters) {
		return ev.expr(e.Body, env)
	}
	it := e.Iters[depth]
	total := 0.0
	for i := 0; i < it.Extent; i++ {
		env[it.Var] = float64(i)
		v, err := ev.sum(e, env, depth+1)
		if err != nil {
			return 0, err
		}
		total += v
	}
	delete(env, it.Var)
	return total, nil
}

func bool2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
