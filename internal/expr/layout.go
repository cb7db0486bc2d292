package expr

import "strings"

// Layout describes how a tensor's logical dimensions map onto physical
// memory ordering, as an axis string like "NCHW" or "NHWC". The empty
// string is the undefined layout: a valid sentinel value, not an absence.
type Layout string

// Undef is the undefined layout.
const Undef Layout = ""

// Defined reports whether the layout carries concrete axis information.
func (l Layout) Defined() bool { return l != Undef }

// String returns the axis string, or "undef" for the undefined layout.
func (l Layout) String() string {
	if !l.Defined() {
		return "undef"
	}
	return string(l)
}

// ValueLayout is the layout annotation of one graph value: a single layout
// for tensor-typed values, an ordered field sequence for tuples. Arity must
// match the node's output count.
type ValueLayout interface {
	// Arity returns the number of layouts carried (1 for TensorLayout).
	Arity() int
	// Equal compares annotations by value, never by identity.
	Equal(other ValueLayout) bool
	// Flatten returns the carried layouts as an ordered sequence.
	Flatten() []Layout
	valueLayout()
}

// TensorLayout annotates a single-output value.
type TensorLayout struct {
	Layout Layout
}

func (t TensorLayout) valueLayout() {}

// Arity of a tensor layout is always 1.
func (t TensorLayout) Arity() int { return 1 }

// Flatten returns the single carried layout.
func (t TensorLayout) Flatten() []Layout { return []Layout{t.Layout} }

// Equal compares by value.
func (t TensorLayout) Equal(other ValueLayout) bool {
	o, ok := other.(TensorLayout)
	return ok && o.Layout == t.Layout
}

func (t TensorLayout) String() string { return t.Layout.String() }

// TupleLayout annotates a tuple-typed value with one layout per field.
type TupleLayout struct {
	Fields []Layout
}

func (t TupleLayout) valueLayout() {}

// Arity returns the field count.
func (t TupleLayout) Arity() int { return len(t.Fields) }

// Flatten returns the field layouts directly.
func (t TupleLayout) Flatten() []Layout { return t.Fields }

// Equal compares field-wise by value.
func (t TupleLayout) Equal(other ValueLayout) bool {
	o, ok := other.(TupleLayout)
	if !ok || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i] != o.Fields[i] {
			return false
		}
	}
	return true
}

func (t TupleLayout) String() string {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.String()
	}
	return "(" + strings.Join(fields, ", ") + ")"
}

// DefaultLayout builds the default annotation for a node: undefined layouts
// shaped by the node's output count.
func DefaultLayout(n Node) ValueLayout {
	outputs := OutputCount(n)
	if outputs == 1 {
		if _, isTuple := n.Type().(*TupleType); !isTuple {
			return TensorLayout{Layout: Undef}
		}
	}
	fields := make([]Layout, outputs)
	for i := range fields {
		fields[i] = Undef
	}
	return TupleLayout{Fields: fields}
}
