package tensor

import (
	"fmt"
	"strings"
)

// Expr is a scalar index expression: the body language of computed tensors.
//
// Expressions form immutable trees. Variables are compared by pointer
// identity, everything else structurally (see ExprEqual).
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Var is a scalar variable, typically an output index of a computed tensor
// or a reduction iterator. Identity is pointer identity: two Vars with the
// same name are distinct variables.
type Var struct {
	Name string
}

// NewVar creates a fresh scalar variable.
func NewVar(name string) *Var { return &Var{Name: name} }

func (v *Var) isExpr()        {}
func (v *Var) String() string { return v.Name }

// IntImm is an integer immediate.
type IntImm struct {
	Value int64
}

func (e *IntImm) isExpr()        {}
func (e *IntImm) String() string { return fmt.Sprintf("%d", e.Value) }

// FloatImm is a floating-point immediate.
type FloatImm struct {
	Value float64
}

func (e *FloatImm) isExpr()        {}
func (e *FloatImm) String() string { return fmt.Sprintf("%g", e.Value) }

// BinaryKind enumerates binary operators.
type BinaryKind int

// Binary operator kinds.
const (
	KindAdd BinaryKind = iota
	KindSub
	KindMul
	KindDiv
	KindEQ
	KindNE
	KindLT
	KindLE
	KindAnd
	KindOr
)

func (k BinaryKind) String() string {
	switch k {
	case KindAdd:
		return "+"
	case KindSub:
		return "-"
	case KindMul:
		return "*"
	case KindDiv:
		return "/"
	case KindEQ:
		return "=="
	case KindNE:
		return "!="
	case KindLT:
		return "<"
	case KindLE:
		return "<="
	case KindAnd:
		return "&&"
	case KindOr:
		return "||"
	default:
		return "?"
	}
}

// Binary is a binary operation over two scalar expressions.
type Binary struct {
	Kind BinaryKind
	A, B Expr
}

func (e *Binary) isExpr() {}
func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.A, e.Kind, e.B)
}

// Select is a conditional expression: Cond ? Then : Else.
type Select struct {
	Cond, Then, Else Expr
}

func (e *Select) isExpr() {}
func (e *Select) String() string {
	return fmt.Sprintf("select(%s, %s, %s)", e.Cond, e.Then, e.Else)
}

// Call invokes a scalar intrinsic (exp, log, sqrt, tanh, sigmoid).
type Call struct {
	Fn   string
	Args []Expr
}

func (e *Call) isExpr() {}
func (e *Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Fn, strings.Join(args, ", "))
}

// Read accesses one element of a tensor at the given indices.
// Reads are the dependency edges of the tensor graph: a computed tensor
// directly depends on exactly the tensors its body reads.
type Read struct {
	Tensor  *Tensor
	Indices []Expr
}

func (e *Read) isExpr() {}
func (e *Read) String() string {
	idx := make([]string, len(e.Indices))
	for i, ix := range e.Indices {
		idx[i] = ix.String()
	}
	return fmt.Sprintf("%s[%s]", e.Tensor.Name, strings.Join(idx, ", "))
}

// IterVar is a bound reduction iterator with a fixed extent [0, Extent).
type IterVar struct {
	Var    *Var
	Extent int
}

// Sum reduces Body over all bound iterators.
type Sum struct {
	Body  Expr
	Iters []*IterVar
}

func (e *Sum) isExpr() {}
func (e *Sum) String() string {
	iters := make([]string, len(e.Iters))
	for i, it := range e.Iters {
		iters[i] = fmt.Sprintf("%s<%d", it.Var.Name, it.Extent)
	}
	return fmt.Sprintf("sum(%s; %s)", strings.Join(iters, ","), e.Body)
}

// Constructor helpers. These build plain nodes; simplification is a
// separate pass (see Simplify).

// Add returns a + b.
func Add(a, b Expr) Expr { return &Binary{Kind: KindAdd, A: a, B: b} }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return &Binary{Kind: KindSub, A: a, B: b} }

// Mul returns a * b.
func Mul(a, b Expr) Expr { return &Binary{Kind: KindMul, A: a, B: b} }

// Div returns a / b.
func Div(a, b Expr) Expr { return &Binary{Kind: KindDiv, A: a, B: b} }

// EQ returns a == b.
func EQ(a, b Expr) Expr { return &Binary{Kind: KindEQ, A: a, B: b} }

// And returns a && b.
func And(a, b Expr) Expr { return &Binary{Kind: KindAnd, A: a, B: b} }

// Imm returns a float immediate.
func Imm(v float64) Expr { return &FloatImm{Value: v} }

// Int returns an integer immediate.
func Int(v int64) Expr { return &IntImm{Value: v} }

// Zero and One are the shared arithmetic identities used throughout
// derivative construction.
func Zero() Expr { return &FloatImm{Value: 0} }
func One() Expr  { return &FloatImm{Value: 1} }

// Walk visits e and its children in pre-order. If fn returns false the
// children of the current node are skipped.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case *Binary:
		Walk(e.A, fn)
		Walk(e.B, fn)
	case *Select:
		Walk(e.Cond, fn)
		Walk(e.Then, fn)
		Walk(e.Else, fn)
	case *Call:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *Read:
		for _, ix := range e.Indices {
			Walk(ix, fn)
		}
	case *Sum:
		Walk(e.Body, fn)
	}
}

// Substitute returns e with every occurrence of the given variables
// replaced. Bound reduction iterators shadow outer bindings.
func Substitute(e Expr, binding map[*Var]Expr) Expr {
	if e == nil || len(binding) == 0 {
		return e
	}
	switch e := e.(type) {
	case *Var:
		if r, ok := binding[e]; ok {
			return r
		}
		return e
	case *IntImm, *FloatImm:
		return e
	case *Binary:
		return &Binary{Kind: e.Kind, A: Substitute(e.A, binding), B: Substitute(e.B, binding)}
	case *Select:
		return &Select{
			Cond: Substitute(e.Cond, binding),
			Then: Substitute(e.Then, binding),
			Else: Substitute(e.Else, binding),
		}
	case *Call:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = Substitute(a, binding)
		}
		return &Call{Fn: e.Fn, Args: args}
	case *Read:
		idx := make([]Expr, len(e.Indices))
		for i, ix := range e.Indices {
			idx[i] = Substitute(ix, binding)
		}
		return &Read{Tensor: e.Tensor, Indices: idx}
	case *Sum:
		inner := binding
		for _, it := range e.Iters {
			if _, shadowed := binding[it.Var]; shadowed {
				inner = make(map[*Var]Expr, len(binding))
				for k, v := range binding {
					inner[k] = v
				}
				for _, it := range e.Iters {
					delete(inner, it.Var)
				}
				break
			}
		}
		return &Sum{Body: Substitute(e.Body, inner), Iters: e.Iters}
	default:
		return e
	}
}

// ExprEqual reports structural equality of two expressions.
// Variables and tensors compare by identity.
func ExprEqual(a, b Expr) bool {
	if a == b {
		return true
	}
	switch a := a.(type) {
	case *Var:
		bv, ok := b.(*Var)
		return ok && a == bv
	case *IntImm:
		bi, ok := b.(*IntImm)
		return ok && a.Value == bi.Value
	case *FloatImm:
		bf, ok := b.(*FloatImm)
		return ok && a.Value == bf.Value
	case *Binary:
		bb, ok := b.(*Binary)
		return ok && a.Kind == bb.Kind && ExprEqual(a.A, bb.A) && ExprEqual(a.B, bb.B)
	case *Select:
		bs, ok := b.(*Select)
		return ok && ExprEqual(a.Cond, bs.Cond) && ExprEqual(a.Then, bs.Then) && ExprEqual(a.Else, bs.Else)
	case *Call:
		bc, ok := b.(*Call)
		if !ok || a.Fn != bc.Fn || len(a.Args) != len(bc.Args) {
			return false
		}
		for i := range a.Args {
			if !ExprEqual(a.Args[i], bc.Args[i]) {
				return false
			}
		}
		return true
	case *Read:
		br, ok := b.(*Read)
		if !ok || a.Tensor != br.Tensor || len(a.Indices) != len(br.Indices) {
			return false
		}
		for i := range a.Indices {
			if !ExprEqual(a.Indices[i], br.Indices[i]) {
				return false
			}
		}
		return true
	case *Sum:
		bs, ok := b.(*Sum)
		if !ok || len(a.Iters) != len(bs.Iters) {
			return false
		}
		for i := range a.Iters {
			if a.Iters[i].Var != bs.Iters[i].Var || a.Iters[i].Extent != bs.Iters[i].Extent {
				return false
			}
		}
		return ExprEqual(a.Body, bs.Body)
	default:
		return false
	}
}
