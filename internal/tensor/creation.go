package tensor

// Creation helpers for the constant tensors the autodiff engine needs:
// all-zeros, all-ones, and the identity ("unit Jacobian") tensor.

// Zeros creates a tensor filled with zeros.
func Zeros(name string, shape Shape) (*Tensor, error) {
	return Compute(name, shape, func([]*Var) Expr { return Zero() })
}

// Ones creates a tensor filled with ones.
func Ones(name string, shape Shape) (*Tensor, error) {
	return Compute(name, shape, func([]*Var) Expr { return One() })
}

// Identity creates the identity tensor of shape s ++ s: 1 where the first
// half of the indices equals the second half, 0 elsewhere. It is the seed
// adjoint when differentiation starts from the output itself.
func Identity(name string, s Shape) (*Tensor, error) {
	return Compute(name, s.Concat(s), func(axes []*Var) Expr {
		n := len(s)
		if n == 0 {
			return One()
		}
		cond := EQ(axes[0], axes[n])
		for i := 1; i < n; i++ {
			cond = And(cond, EQ(axes[i], axes[n+i]))
		}
		return &Select{Cond: cond, Then: One(), Else: Zero()}
	})
}
