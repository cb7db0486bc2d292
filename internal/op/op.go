// Package op implements the operator capability registry.
//
// Operators are identified by name. Each operator carries an open-ended
// set of capability attributes: named function values that analyses look
// up by key and invoke if present. Absence of a capability is a valid,
// non-error state — an analysis simply leaves the operator's annotations
// unchanged.
//
// The packages that consume capabilities define their own function types
// and keys (for example the layout package's InferFunc under
// "FInferLayout"), keeping this package free of upward dependencies.
package op

import "sync"

// Op is a registered operator. Values are shared and safe for concurrent
// capability lookup; registration is expected at init time.
type Op struct {
	name string

	mu    sync.RWMutex
	attrs map[string]any
}

// Name returns the operator identifier.
func (o *Op) Name() string { return o.name }

// SetAttr registers a capability attribute under the given key,
// overwriting any previous value. It returns the operator for chaining:
//
//	op.Register("nn.conv2d").
//	    SetAttr(layout.CapInferLayout, inferConvLayout)
func (o *Op) SetAttr(key string, value any) *Op {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attrs[key] = value
	return o
}

// Attr returns the raw capability value registered under key.
func (o *Op) Attr(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.attrs[key]
	return v, ok
}

// GetAttr returns the capability registered under key if it has type T.
func GetAttr[T any](o *Op, key string) (T, bool) {
	var zero T
	if o == nil {
		return zero, false
	}
	raw, ok := o.Attr(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Op)
)

// Register returns the operator with the given name, creating it on first
// use. Repeated registration of the same name returns the same Op, so
// independent packages can attach capabilities to one operator.
func Register(name string) *Op {
	registryMu.Lock()
	defer registryMu.Unlock()
	if o, ok := registry[name]; ok {
		return o
	}
	o := &Op{name: name, attrs: make(map[string]any)}
	registry[name] = o
	return o
}

// Get looks up a registered operator by name.
func Get(name string) (*Op, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	o, ok := registry[name]
	return o, ok
}
