package tensor

import (
	"math"
	"testing"
)

func TestEvaluate_Placeholder(t *testing.T) {
	x := Placeholder("x", Shape{2, 2}, Float32)
	buf := []float64{1, 2, 3, 4}
	got, err := Evaluate(x, map[*Tensor][]float64{x: buf})
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		if got[i] != buf[i] {
			t.Fatalf("got %v, want %v", got, buf)
		}
	}
}

func TestEvaluate_MissingBinding(t *testing.T) {
	x := Placeholder("x", Shape{2}, Float32)
	if _, err := Evaluate(x, nil); err == nil {
		t.Fatal("want error for unbound placeholder")
	}
}

func TestEvaluate_BindingSizeMismatch(t *testing.T) {
	x := Placeholder("x", Shape{3}, Float32)
	if _, err := Evaluate(x, map[*Tensor][]float64{x: {1, 2}}); err == nil {
		t.Fatal("want error for short buffer")
	}
}

func TestEvaluate_Compute(t *testing.T) {
	a := Placeholder("a", Shape{2, 3}, Float32)
	b := Placeholder("b", Shape{2, 3}, Float32)
	c, err := Compute("c", Shape{2, 3}, func(ax []*Var) Expr {
		return Add(
			&Read{Tensor: a, Indices: []Expr{ax[0], ax[1]}},
			&Read{Tensor: b, Indices: []Expr{ax[0], ax[1]}},
		)
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Evaluate(c, map[*Tensor][]float64{
		a: {1, 2, 3, 4, 5, 6},
		b: {10, 20, 30, 40, 50, 60},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{11, 22, 33, 44, 55, 66}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: got %g, want %g", i, got[i], want[i])
		}
	}
}

func TestEvaluate_MatMul(t *testing.T) {
	a := Placeholder("a", Shape{2, 2}, Float32)
	b := Placeholder("b", Shape{2, 2}, Float32)
	c, err := Compute("c", Shape{2, 2}, func(ax []*Var) Expr {
		k := &IterVar{Var: NewVar("k"), Extent: 2}
		return &Sum{
			Body: Mul(
				&Read{Tensor: a, Indices: []Expr{ax[0], k.Var}},
				&Read{Tensor: b, Indices: []Expr{k.Var, ax[1]}},
			),
			Iters: []*IterVar{k},
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Evaluate(c, map[*Tensor][]float64{
		a: {1, 2, 3, 4},
		b: {5, 6, 7, 8},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{19, 22, 43, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: got %g, want %g", i, got[i], want[i])
		}
	}
}

func TestEvaluate_Identity(t *testing.T) {
	id, err := Identity("id", Shape{3})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Evaluate(id, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if got[i*3+j] != want {
				t.Errorf("id[%d,%d] = %g, want %g", i, j, got[i*3+j], want)
			}
		}
	}
}

func TestEvalExpr_Intrinsics(t *testing.T) {
	v := NewVar("v")
	env := map[*Var]float64{v: 0.5}
	tests := []struct {
		fn   string
		want float64
	}{
		{"exp", math.Exp(0.5)},
		{"log", math.Log(0.5)},
		{"sqrt", math.Sqrt(0.5)},
		{"tanh", math.Tanh(0.5)},
		{"sigmoid", 1 / (1 + math.Exp(-0.5))},
	}
	for _, tt := range tests {
		got, err := EvalExpr(&Call{Fn: tt.fn, Args: []Expr{v}}, env, nil)
		if err != nil {
			t.Fatalf("%s: %v", tt.fn, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s(0.5) = %g, want %g", tt.fn, got, tt.want)
		}
	}
}

func TestEvalExpr_Errors(t *testing.T) {
	v := NewVar("v")
	if _, err := EvalExpr(v, nil, nil); err == nil {
		t.Error("want error for unbound variable")
	}
	if _, err := EvalExpr(Div(One(), Zero()), nil, nil); err == nil {
		t.Error("want error for division by zero")
	}
	x := Placeholder("x", Shape{2}, Float32)
	oob := &Read{Tensor: x, Indices: []Expr{Int(5)}}
	if _, err := EvalExpr(oob, nil, map[*Tensor][]float64{x: {1, 2}}); err == nil {
		t.Error("want error for out-of-range read")
	}
	badArity := &Read{Tensor: x, Indices: []Expr{Int(0), Int(0)}}
	if _, err := EvalExpr(badArity, nil, map[*Tensor][]float64{x: {1, 2}}); err == nil {
		t.Error("want error for wrong index count")
	}
}
