package expr

// FreeVars returns the variables that occur free in the expression, in
// first-appearance order. Function parameters and let bindings bind their
// variables within the corresponding bodies.
func FreeVars(n Node) []*Var {
	c := &freeVarCollector{bound: make(map[*Var]int), seen: make(map[*Var]bool)}
	c.visit(n)
	return c.free
}

type freeVarCollector struct {
	bound map[*Var]int // binding depth counters; >0 means bound
	seen  map[*Var]bool
	free  []*Var
}

func (c *freeVarCollector) bind(vs ...*Var) {
	for _, v := range vs {
		c.bound[v]++
	}
}

func (c *freeVarCollector) unbind(vs ...*Var) {
	for _, v := range vs {
		c.bound[v]--
	}
}

func (c *freeVarCollector) visit(n Node) {
	switch n := n.(type) {
	case *Var:
		if c.bound[n] == 0 && !c.seen[n] {
			c.seen[n] = true
			c.free = append(c.free, n)
		}
	case *Call:
		c.visit(n.Op)
		for _, a := range n.Args {
			c.visit(a)
		}
	case *Function:
		c.bind(n.Params...)
		c.visit(n.Body)
		c.unbind(n.Params...)
	case *Tuple:
		for _, f := range n.Fields {
			c.visit(f)
		}
	case *TupleGetItem:
		c.visit(n.Tuple)
	case *Let:
		c.visit(n.Value)
		c.bind(n.Var)
		c.visit(n.Body)
		c.unbind(n.Var)
	case *If:
		c.visit(n.Cond)
		c.visit(n.Then)
		c.visit(n.Else)
	case *Match:
		c.visit(n.Data)
		for _, cl := range n.Clauses {
			c.visit(cl.Body)
		}
	case *RefCreate:
		c.visit(n.Value)
	case *RefRead:
		c.visit(n.Ref)
	case *RefWrite:
		c.visit(n.Ref)
		c.visit(n.Value)
	}
}
