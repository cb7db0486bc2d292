// Package expr defines the immutable expression-graph representation the
// Axon analyses run over: a DAG of typed nodes with pointer identity.
//
// Nodes are shared: several parents may reference the same node, and every
// analysis keys its annotation maps by node identity, never by structure.
// The graph is read-only once built; passes own only their private
// annotation state.
package expr

import "fmt"

// Node is the interface implemented by every expression-graph node.
// Nodes carry the type assigned by the upstream type-inference pass.
type Node interface {
	// Type returns the checked type of the node's value.
	Type() Type
	node()
}

// baseNode carries the checked type shared by all node kinds.
type baseNode struct {
	ty Type
}

func (b *baseNode) Type() Type { return b.ty }
func (b *baseNode) node()      {}

// Var is a local variable.
type Var struct {
	baseNode
	Name string
}

// NewVar creates a variable with the given checked type.
func NewVar(name string, ty Type) *Var {
	return &Var{baseNode: baseNode{ty: ty}, Name: name}
}

// GlobalVar references a definition in the enclosing module.
type GlobalVar struct {
	baseNode
	Name string
}

// NewGlobalVar creates a global reference.
func NewGlobalVar(name string, ty Type) *GlobalVar {
	return &GlobalVar{baseNode: baseNode{ty: ty}, Name: name}
}

// Constant is an embedded constant value. The value itself is opaque to
// the analyses in this repository.
type Constant struct {
	baseNode
	Value any
}

// NewConstant creates a constant node.
func NewConstant(value any, ty Type) *Constant {
	return &Constant{baseNode: baseNode{ty: ty}, Value: value}
}

// OpRef names an operator from the registry. It appears as the callee of
// Call nodes.
type OpRef struct {
	baseNode
	Name string
}

// NewOpRef creates an operator reference.
func NewOpRef(name string) *OpRef {
	return &OpRef{Name: name}
}

// Call applies an operator (or function value) to ordered arguments, with
// a static attribute bag.
type Call struct {
	baseNode
	Op    Node
	Args  []Node
	Attrs Attrs
}

// NewCall creates a call node with the given checked result type.
func NewCall(op Node, args []Node, attrs Attrs, ty Type) *Call {
	return &Call{baseNode: baseNode{ty: ty}, Op: op, Args: args, Attrs: attrs}
}

// Function is a lambda with typed parameters.
type Function struct {
	baseNode
	Params []*Var
	Body   Node
}

// NewFunction creates a function node. Its type is derived from the
// parameter and body types.
func NewFunction(params []*Var, body Node) *Function {
	paramTypes := make([]Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type()
	}
	ty := &FuncType{Params: paramTypes, Ret: body.Type()}
	return &Function{baseNode: baseNode{ty: ty}, Params: params, Body: body}
}

// Tuple groups several values into one.
type Tuple struct {
	baseNode
	Fields []Node
}

// NewTuple creates a tuple node.
func NewTuple(fields []Node) *Tuple {
	types := make([]Type, len(fields))
	for i, f := range fields {
		types[i] = f.Type()
	}
	return &Tuple{baseNode: baseNode{ty: &TupleType{Fields: types}}, Fields: fields}
}

// TupleGetItem projects one field out of a tuple-typed value.
type TupleGetItem struct {
	baseNode
	Tuple Node
	Index int
}

// NewTupleGetItem creates a tuple projection node.
func NewTupleGetItem(tuple Node, index int, ty Type) *TupleGetItem {
	return &TupleGetItem{baseNode: baseNode{ty: ty}, Tuple: tuple, Index: index}
}

// Let binds a value to a variable within a body.
type Let struct {
	baseNode
	Var   *Var
	Value Node
	Body  Node
}

// NewLet creates a let binding.
func NewLet(v *Var, value, body Node) *Let {
	return &Let{baseNode: baseNode{ty: body.Type()}, Var: v, Value: value, Body: body}
}

// If is a conditional expression.
type If struct {
	baseNode
	Cond, Then, Else Node
}

// NewIf creates a conditional node.
func NewIf(cond, then, els Node) *If {
	return &If{baseNode: baseNode{ty: then.Type()}, Cond: cond, Then: then, Else: els}
}

// Clause is one arm of a Match node. Patterns are opaque here; the
// analyses in this repository reject Match nodes outright.
type Clause struct {
	Pattern any
	Body    Node
}

// Match is algebraic-data-type pattern matching.
type Match struct {
	baseNode
	Data    Node
	Clauses []Clause
}

// NewMatch creates a match node.
func NewMatch(data Node, clauses []Clause, ty Type) *Match {
	return &Match{baseNode: baseNode{ty: ty}, Data: data, Clauses: clauses}
}

// Constructor is an algebraic-data-type constructor reference.
type Constructor struct {
	baseNode
	Name string
}

// NewConstructor creates a constructor reference.
func NewConstructor(name string, ty Type) *Constructor {
	return &Constructor{baseNode: baseNode{ty: ty}, Name: name}
}

// RefCreate allocates a mutable reference cell.
type RefCreate struct {
	baseNode
	Value Node
}

// NewRefCreate creates a reference-cell allocation node.
func NewRefCreate(value Node, ty Type) *RefCreate {
	return &RefCreate{baseNode: baseNode{ty: ty}, Value: value}
}

// RefRead dereferences a reference cell.
type RefRead struct {
	baseNode
	Ref Node
}

// NewRefRead creates a dereference node.
func NewRefRead(ref Node, ty Type) *RefRead {
	return &RefRead{baseNode: baseNode{ty: ty}, Ref: ref}
}

// RefWrite stores into a reference cell.
type RefWrite struct {
	baseNode
	Ref, Value Node
}

// NewRefWrite creates a reference store node.
func NewRefWrite(ref, value Node, ty Type) *RefWrite {
	return &RefWrite{baseNode: baseNode{ty: ty}, Ref: ref, Value: value}
}

// KindName returns a short name for a node's kind, used in diagnostics.
func KindName(n Node) string {
	switch n.(type) {
	case *Var:
		return "Var"
	case *GlobalVar:
		return "GlobalVar"
	case *Constant:
		return "Constant"
	case *OpRef:
		return "OpRef"
	case *Call:
		return "Call"
	case *Function:
		return "Function"
	case *Tuple:
		return "Tuple"
	case *TupleGetItem:
		return "TupleGetItem"
	case *Let:
		return "Let"
	case *If:
		return "If"
	case *Match:
		return "Match"
	case *Constructor:
		return "Constructor"
	case *RefCreate:
		return "RefCreate"
	case *RefRead:
		return "RefRead"
	case *RefWrite:
		return "RefWrite"
	default:
		return fmt.Sprintf("%T", n)
	}
}

// OutputCount returns the number of logical outputs of a node: the field
// count for tuple-typed nodes, one otherwise.
func OutputCount(n Node) int {
	if tt, ok := n.Type().(*TupleType); ok {
		return len(tt.Fields)
	}
	return 1
}
