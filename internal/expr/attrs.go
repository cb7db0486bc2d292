package expr

// Attrs is the static attribute bag attached to Call nodes: operator
// compile-time parameters such as strides, padding, or a target layout.
type Attrs map[string]any

// String returns a string attribute, or the empty string when missing or
// of another type.
func (a Attrs) String(key string) string {
	v, _ := a[key].(string)
	return v
}

// Int returns an integer attribute with a default for missing keys.
func (a Attrs) Int(key string, def int) int {
	if v, ok := a[key].(int); ok {
		return v
	}
	return def
}

// Ints returns an integer-slice attribute, or nil when missing.
func (a Attrs) Ints(key string) []int {
	v, _ := a[key].([]int)
	return v
}

// Layout returns a layout-valued attribute, or Undef when missing.
func (a Attrs) Layout(key string) Layout {
	switch v := a[key].(type) {
	case Layout:
		return v
	case string:
		return Layout(v)
	}
	return Undef
}
