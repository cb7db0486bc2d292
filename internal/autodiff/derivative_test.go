package autodiff

import (
	"math"
	"testing"

	"github.com/axon-ml/axon/internal/tensor"
)

// evalDeriv numerically evaluates d e / d v at v = at.
func evalDeriv(t *testing.T, e tensor.Expr, v *tensor.Var, at float64) float64 {
	t.Helper()
	d, err := Derivative(e, v)
	if err != nil {
		t.Fatalf("Derivative: %v", err)
	}
	got, err := tensor.EvalExpr(d, map[*tensor.Var]float64{v: at}, nil)
	if err != nil {
		t.Fatalf("EvalExpr: %v", err)
	}
	return got
}

func TestDerivative_Arithmetic(t *testing.T) {
	v := tensor.NewVar("v")
	at := 1.5

	tests := []struct {
		name string
		e    tensor.Expr
		want float64
	}{
		{"self", v, 1},
		{"constant", tensor.Imm(42), 0},
		{"sum", tensor.Add(v, tensor.Imm(3)), 1},
		{"difference", tensor.Sub(tensor.Imm(3), v), -1},
		{"square", tensor.Mul(v, v), 2 * at},
		{"scaled", tensor.Mul(tensor.Imm(4), v), 4},
		{"reciprocal", tensor.Div(tensor.One(), v), -1 / (at * at)},
		{"comparison", tensor.EQ(v, tensor.Imm(1)), 0},
	}
	for _, tt := range tests {
		if got := evalDeriv(t, tt.e, v, at); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: d/dv = %g, want %g", tt.name, got, tt.want)
		}
	}
}

func TestDerivative_Intrinsics(t *testing.T) {
	v := tensor.NewVar("v")
	at := 0.7
	call := func(fn string) tensor.Expr {
		return &tensor.Call{Fn: fn, Args: []tensor.Expr{v}}
	}
	sig := 1 / (1 + math.Exp(-at))

	tests := []struct {
		fn   string
		want float64
	}{
		{"exp", math.Exp(at)},
		{"log", 1 / at},
		{"sqrt", 1 / (2 * math.Sqrt(at))},
		{"tanh", 1 - math.Tanh(at)*math.Tanh(at)},
		{"sigmoid", sig * (1 - sig)},
	}
	for _, tt := range tests {
		if got := evalDeriv(t, call(tt.fn), v, at); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("d %s(v)/dv = %g, want %g", tt.fn, got, tt.want)
		}
	}
}

func TestDerivative_ChainRule(t *testing.T) {
	v := tensor.NewVar("v")
	at := 0.3
	// d exp(v*v) / dv = 2v * exp(v*v)
	e := &tensor.Call{Fn: "exp", Args: []tensor.Expr{tensor.Mul(v, v)}}
	want := 2 * at * math.Exp(at*at)
	if got := evalDeriv(t, e, v, at); math.Abs(got-want) > 1e-12 {
		t.Errorf("chain rule: got %g, want %g", got, want)
	}
}

func TestDerivative_SelectBranches(t *testing.T) {
	v := tensor.NewVar("v")
	// relu-style: select(v < 0, 0, v*v)
	e := &tensor.Select{
		Cond: &tensor.Binary{Kind: tensor.KindLT, A: v, B: tensor.Zero()},
		Then: tensor.Zero(),
		Else: tensor.Mul(v, v),
	}
	if got := evalDeriv(t, e, v, 2); got != 4 {
		t.Errorf("positive branch derivative = %g, want 4", got)
	}
	if got := evalDeriv(t, e, v, -2); got != 0 {
		t.Errorf("negative branch derivative = %g, want 0", got)
	}
}

func TestDerivative_SumBody(t *testing.T) {
	v := tensor.NewVar("v")
	k := &tensor.IterVar{Var: tensor.NewVar("k"), Extent: 3}
	// d/dv sum_k (v * k) = sum_k k = 3
	e := &tensor.Sum{Body: tensor.Mul(v, k.Var), Iters: []*tensor.IterVar{k}}
	if got := evalDeriv(t, e, v, 10); got != 3 {
		t.Errorf("got %g, want 3", got)
	}
}

func TestDerivative_OtherVariablesAreConstant(t *testing.T) {
	v := tensor.NewVar("v")
	u := tensor.NewVar("u")
	d, err := Derivative(u, v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tensor.EvalExpr(d, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("d u / d v = %g, want 0", got)
	}
}

func TestDerivative_UnknownIntrinsic(t *testing.T) {
	v := tensor.NewVar("v")
	e := &tensor.Call{Fn: "erf", Args: []tensor.Expr{v}}
	if _, err := Derivative(e, v); err == nil {
		t.Fatal("want error for unknown intrinsic")
	}
}
