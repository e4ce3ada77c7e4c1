package expr

// Scope binds the expression vocabulary to live game state. The engine
// implements it; tests provide small fixed scopes.
//
// ResolveProperty receives the full dotted path (e.g. ["player", "hand",
// "count"]) and returns the resolved value, or ok=false when the path has
// no meaning in the current context. CallFunction receives already
// evaluated arguments.
type Scope interface {
	ResolveProperty(path []string) (Value, bool)
	CallFunction(name string, args []Value) (Value, bool)
}

// Eval evaluates a node against a scope. It never returns an error:
// unresolvable properties become Null, mismatched comparisons false, and
// non-numeric arithmetic operands zero. See the package comment for why.
func Eval(n Node, s Scope) Value {
	switch node := n.(type) {
	case Literal:
		return node.Value

	case Property:
		v, ok := s.ResolveProperty(node.Path)
		if !ok {
			return Null{}
		}
		return v

	case Compare:
		return Bool(compare(Eval(node.Left, s), Eval(node.Right, s), node.Op))

	case And:
		for _, operand := range node.Operands {
			if !Truthy(Eval(operand, s)) {
				return Bool(false)
			}
		}
		return Bool(true)

	case Or:
		for _, operand := range node.Operands {
			if Truthy(Eval(operand, s)) {
				return Bool(true)
			}
		}
		return Bool(false)

	case Not:
		return Bool(!Truthy(Eval(node.Operand, s)))

	case Call:
		args := make([]Value, len(node.Args))
		for i, arg := range node.Args {
			args[i] = Eval(arg, s)
		}
		v, ok := s.CallFunction(node.Fn, args)
		if !ok {
			return Null{}
		}
		return v

	case Add:
		return Int(intOrZero(Eval(node.Left, s)) + intOrZero(Eval(node.Right, s)))

	case Sub:
		return Int(intOrZero(Eval(node.Left, s)) - intOrZero(Eval(node.Right, s)))

	default:
		return Null{}
	}
}

// EvalCondition evaluates a node and coerces the result to a boolean.
func EvalCondition(n Node, s Scope) bool {
	if n == nil {
		return false
	}
	return Truthy(Eval(n, s))
}

func compare(left, right Value, op CompareOp) bool {
	switch op {
	case OpEq:
		return Equal(left, right)
	case OpNe:
		return !Equal(left, right)
	}

	// Ordered comparisons require matching kinds.
	if ln, ok := left.(Int); ok {
		rn, ok := right.(Int)
		if !ok {
			return false
		}
		return orderedCompare(int64(ln), int64(rn), op)
	}
	if ls, ok := left.(Str); ok {
		rs, ok := right.(Str)
		if !ok {
			return false
		}
		switch op {
		case OpLt:
			return ls < rs
		case OpGt:
			return ls > rs
		case OpLe:
			return ls <= rs
		case OpGe:
			return ls >= rs
		}
	}
	return false
}

func orderedCompare(a, b int64, op CompareOp) bool {
	switch op {
	case OpLt:
		return a < b
	case OpGt:
		return a > b
	case OpLe:
		return a <= b
	case OpGe:
		return a >= b
	default:
		return false
	}
}

func intOrZero(v Value) int64 {
	n, ok := AsInt(v)
	if !ok {
		return 0
	}
	return n
}
