package expr

import (
	"testing"

	"github.com/axon-ml/axon/internal/tensor"
)

func TestLayout_Defined(t *testing.T) {
	if Undef.Defined() {
		t.Error("Undef must not be defined")
	}
	if !Layout("NCHW").Defined() {
		t.Error("NCHW must be defined")
	}
	if got := Undef.String(); got != "undef" {
		t.Errorf("Undef.String() = %q", got)
	}
}

func TestTensorLayout_Equal(t *testing.T) {
	a := TensorLayout{Layout: "NCHW"}
	b := TensorLayout{Layout: "NCHW"}
	c := TensorLayout{Layout: "NHWC"}

	if !a.Equal(b) {
		t.Error("equal-valued tensor layouts must compare equal")
	}
	if a.Equal(c) {
		t.Error("NCHW must differ from NHWC")
	}
	if a.Equal(TupleLayout{Fields: []Layout{"NCHW"}}) {
		t.Error("tensor layout must differ from a 1-field tuple layout")
	}
}

func TestTupleLayout_Equal(t *testing.T) {
	a := TupleLayout{Fields: []Layout{"NCHW", Undef}}
	b := TupleLayout{Fields: []Layout{"NCHW", Undef}}
	c := TupleLayout{Fields: []Layout{"NCHW"}}

	if !a.Equal(b) {
		t.Error("field-wise equal tuple layouts must compare equal")
	}
	if a.Equal(c) {
		t.Error("tuple layouts of different arity must differ")
	}
}

func TestFlatten(t *testing.T) {
	if got := (TensorLayout{Layout: "NC"}).Flatten(); len(got) != 1 || got[0] != "NC" {
		t.Errorf("TensorLayout.Flatten() = %v", got)
	}
	got := (TupleLayout{Fields: []Layout{"A", "B", "C"}}).Flatten()
	if len(got) != 3 || got[1] != "B" {
		t.Errorf("TupleLayout.Flatten() = %v", got)
	}
}

func TestDefaultLayout(t *testing.T) {
	v := NewVar("v", &TensorType{Shape: tensor.Shape{2}, DType: tensor.Float32})
	if dl, ok := DefaultLayout(v).(TensorLayout); !ok || dl.Layout.Defined() {
		t.Errorf("tensor node default = %v, want undefined tensor layout", DefaultLayout(v))
	}

	tup := NewTuple([]Node{v, v})
	dl, ok := DefaultLayout(tup).(TupleLayout)
	if !ok || dl.Arity() != 2 {
		t.Fatalf("tuple node default = %v, want 2-field tuple layout", DefaultLayout(tup))
	}
	for _, f := range dl.Fields {
		if f.Defined() {
			t.Errorf("tuple default field %q must be undefined", f)
		}
	}
}
