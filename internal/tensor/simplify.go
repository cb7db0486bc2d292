package tensor

// Simplify rewrites an expression into a cheaper equivalent one.
//
// The rules are aimed at the expressions the Jacobian transform produces:
// derivative bodies are full of literal zeros and ones and of Kronecker
// deltas of the form select(i == j, 1, 0). Beyond plain constant folding,
// the pass lifts nonzeroness conditions so that a delta inside a reduction
// eliminates the reduction iterator entirely.
func Simplify(e Expr) Expr {
	prev := e
	for i := 0; i < 8; i++ { // rewriting is contractive; a few rounds reach a fixpoint
		next := simplifyOnce(prev)
		if ExprEqual(next, prev) {
			return next
		}
		prev = next
	}
	return prev
}

func simplifyOnce(e Expr) Expr {
	switch e := e.(type) {
	case *Binary:
		return simplifyBinary(&Binary{Kind: e.Kind, A: simplifyOnce(e.A), B: simplifyOnce(e.B)})
	case *Select:
		return simplifySelect(&Select{
			Cond: simplifyOnce(e.Cond),
			Then: simplifyOnce(e.Then),
			Else: simplifyOnce(e.Else),
		})
	case *Call:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = simplifyOnce(a)
		}
		return &Call{Fn: e.Fn, Args: args}
	case *Read:
		idx := make([]Expr, len(e.Indices))
		for i, ix := range e.Indices {
			idx[i] = simplifyOnce(ix)
		}
		return &Read{Tensor: e.Tensor, Indices: idx}
	case *Sum:
		return simplifySum(&Sum{Body: simplifyOnce(e.Body), Iters: e.Iters})
	default:
		return e
	}
}

func isZero(e Expr) bool {
	switch e := e.(type) {
	case *FloatImm:
		return e.Value == 0
	case *IntImm:
		return e.Value == 0
	}
	return false
}

func isOne(e Expr) bool {
	switch e := e.(type) {
	case *FloatImm:
		return e.Value == 1
	case *IntImm:
		return e.Value == 1
	}
	return false
}

func floatValue(e Expr) (float64, bool) {
	switch e := e.(type) {
	case *FloatImm:
		return e.Value, true
	case *IntImm:
		return float64(e.Value), true
	}
	return 0, false
}

func simplifyBinary(e *Binary) Expr {
	a, b := e.A, e.B

	// Constant folding for arithmetic.
	if av, aok := floatValue(a); aok {
		if bv, bok := floatValue(b); bok {
			switch e.Kind {
			case KindAdd:
				return &FloatImm{Value: av + bv}
			case KindSub:
				return &FloatImm{Value: av - bv}
			case KindMul:
				return &FloatImm{Value: av * bv}
			case KindDiv:
				if bv != 0 {
					return &FloatImm{Value: av / bv}
				}
			}
		}
	}

	switch e.Kind {
	case KindAdd:
		if isZero(a) {
			return b
		}
		if isZero(b) {
			return a
		}
		// select(c, x, 0) + select(c, y, 0) -> select(c, x+y, 0)
		if sa, ok := a.(*Select); ok {
			if sb, ok := b.(*Select); ok && ExprEqual(sa.Cond, sb.Cond) && isZero(sa.Else) && isZero(sb.Else) {
				return simplifySelect(&Select{Cond: sa.Cond, Then: simplifyBinaryNew(KindAdd, sa.Then, sb.Then), Else: Zero()})
			}
		}
	case KindSub:
		if isZero(b) {
			return a
		}
	case KindMul:
		if isZero(a) || isZero(b) {
			return Zero()
		}
		if isOne(a) {
			return b
		}
		if isOne(b) {
			return a
		}
		// Distribute over a delta so the nonzeroness condition surfaces:
		// select(c, t, 0) * x -> select(c, t*x, 0)
		if sa, ok := a.(*Select); ok && isZero(sa.Else) {
			return simplifySelect(&Select{Cond: sa.Cond, Then: simplifyBinaryNew(KindMul, sa.Then, b), Else: Zero()})
		}
		if sb, ok := b.(*Select); ok && isZero(sb.Else) {
			return simplifySelect(&Select{Cond: sb.Cond, Then: simplifyBinaryNew(KindMul, a, sb.Then), Else: Zero()})
		}
	case KindDiv:
		if isZero(a) {
			return Zero()
		}
		if isOne(b) {
			return a
		}
	case KindAnd:
		// Fold conditions against literal booleans (encoded as 0/1).
		if isOne(a) {
			return b
		}
		if isOne(b) {
			return a
		}
		if isZero(a) || isZero(b) {
			return Zero()
		}
	case KindEQ:
		if ExprEqual(a, b) {
			return One()
		}
		if av, aok := floatValue(a); aok {
			if bv, bok := floatValue(b); bok && av != bv {
				return Zero()
			}
		}
	}
	return e
}

func simplifyBinaryNew(kind BinaryKind, a, b Expr) Expr {
	return simplifyBinary(&Binary{Kind: kind, A: a, B: b})
}

func simplifySelect(e *Select) Expr {
	if isOne(e.Cond) {
		return e.Then
	}
	if isZero(e.Cond) {
		return e.Else
	}
	if ExprEqual(e.Then, e.Else) {
		return e.Then
	}
	return e
}

// simplifySum lifts equality conditions out of a reduction: when the body
// is select(... && iter == k && ..., v, 0) and k does not mention iter, the
// only nonzero term is the one at iter = k, so the iterator is eliminated
// by substitution. Zero bodies collapse the whole reduction.
func simplifySum(e *Sum) Expr {
	if isZero(e.Body) {
		return Zero()
	}
	sel, ok := e.Body.(*Select)
	if !ok || !isZero(sel.Else) {
		return sumOrBody(e)
	}

	conds := flattenAnd(sel.Cond)
	iters := append([]*IterVar(nil), e.Iters...)

	changed := true
	for changed {
		changed = false
		for ci, c := range conds {
			bin, ok := c.(*Binary)
			if !ok || bin.Kind != KindEQ {
				continue
			}
			for ii, it := range iters {
				var pin Expr
				if bin.A == it.Var && !mentionsVar(bin.B, it.Var) {
					pin = bin.B
				} else if bin.B == it.Var && !mentionsVar(bin.A, it.Var) {
					pin = bin.A
				} else {
					continue
				}
				// Out-of-range constant pins make the whole sum zero.
				if iv, isInt := pin.(*IntImm); isInt && (iv.Value < 0 || iv.Value >= int64(it.Extent)) {
					return Zero()
				}
				binding := map[*Var]Expr{it.Var: pin}
				conds = append(conds[:ci], conds[ci+1:]...)
				for i := range conds {
					conds[i] = Substitute(conds[i], binding)
				}
				sel = &Select{Cond: sel.Cond, Then: Substitute(sel.Then, binding), Else: sel.Else}
				iters = append(iters[:ii], iters[ii+1:]...)
				changed = true
				break
			}
			if changed {
				break
			}
		}
	}

	body := simplifySelect(&Select{Cond: rebuildAnd(conds), Then: sel.Then, Else: Zero()})
	return sumOrBody(&Sum{Body: body, Iters: iters})
}

// sumOrBody drops the reduction wrapper when no iterators remain.
func sumOrBody(e *Sum) Expr {
	if len(e.Iters) == 0 {
		return e.Body
	}
	if isZero(e.Body) {
		return Zero()
	}
	return e
}

func flattenAnd(e Expr) []Expr {
	if bin, ok := e.(*Binary); ok && bin.Kind == KindAnd {
		return append(flattenAnd(bin.A), flattenAnd(bin.B)...)
	}
	return []Expr{e}
}

func rebuildAnd(conds []Expr) Expr {
	if len(conds) == 0 {
		return One()
	}
	out := conds[0]
	for _, c := range conds[1:] {
		out = &Binary{Kind: KindAnd, A: out, B: c}
	}
	return out
}

func mentionsVar(e Expr, v *Var) bool {
	found := false
	Walk(e, func(x Expr) bool {
		if xv, ok := x.(*Var); ok && xv == v {
			found = true
		}
		return !found
	})
	return found
}
