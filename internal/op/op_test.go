package op

import "testing"

func TestRegister_Idempotent(t *testing.T) {
	a := Register("test.idempotent")
	b := Register("test.idempotent")
	if a != b {
		t.Fatal("repeated registration must return the same operator")
	}
	if a.Name() != "test.idempotent" {
		t.Errorf("Name() = %q", a.Name())
	}
}

func TestGet(t *testing.T) {
	Register("test.get")
	if _, ok := Get("test.get"); !ok {
		t.Error("registered operator not found")
	}
	if _, ok := Get("test.never-registered"); ok {
		t.Error("lookup of unknown operator must fail")
	}
}

func TestSetAttr_Chaining(t *testing.T) {
	o := Register("test.chain").
		SetAttr("a", 1).
		SetAttr("b", "two")

	if v, ok := o.Attr("a"); !ok || v != 1 {
		t.Errorf("Attr(a) = %v, %v", v, ok)
	}
	if v, ok := o.Attr("b"); !ok || v != "two" {
		t.Errorf("Attr(b) = %v, %v", v, ok)
	}
}

func TestSetAttr_Overwrite(t *testing.T) {
	o := Register("test.overwrite")
	o.SetAttr("k", 1)
	o.SetAttr("k", 2)
	if v, _ := o.Attr("k"); v != 2 {
		t.Errorf("Attr(k) = %v, want 2", v)
	}
}

func TestGetAttr_Typed(t *testing.T) {
	type inferFn func(int) int
	o := Register("test.typed").SetAttr("fn", inferFn(func(x int) int { return x + 1 }))

	fn, ok := GetAttr[inferFn](o, "fn")
	if !ok {
		t.Fatal("typed lookup failed")
	}
	if fn(1) != 2 {
		t.Error("retrieved capability misbehaves")
	}

	if _, ok := GetAttr[string](o, "fn"); ok {
		t.Error("lookup with the wrong type must fail")
	}
	if _, ok := GetAttr[inferFn](o, "missing"); ok {
		t.Error("lookup of a missing key must fail")
	}
}

func TestGetAttr_NilOp(t *testing.T) {
	if _, ok := GetAttr[int](nil, "anything"); ok {
		t.Error("nil operator must yield no capability")
	}
}
