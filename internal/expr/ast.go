package expr

import (
	"encoding/json"
	"fmt"
)

// Node is a sealed interface over the typed expression AST. Specs carry
// expressions as strings or JSON objects; both compile to this tree once
// at spec-validation time, so resolution never re-parses.
type Node interface {
	exprNode() // sealed
}

// Literal is a constant value.
type Literal struct {
	Value Value
}

func (Literal) exprNode() {}

// Property is a dotted path resolved against the evaluation scope,
// e.g. player.score_pile.count.
type Property struct {
	Path []string
}

func (Property) exprNode() {}

// CompareOp enumerates the comparison operators.
type CompareOp string

const (
	OpEq CompareOp = "=="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpGt CompareOp = ">"
	OpLe CompareOp = "<="
	OpGe CompareOp = ">="
)

// Compare is a binary comparison.
type Compare struct {
	Op    CompareOp
	Left  Node
	Right Node
}

func (Compare) exprNode() {}

// And is a boolean conjunction over two or more operands.
type And struct {
	Operands []Node
}

func (And) exprNode() {}

// Or is a boolean disjunction over two or more operands.
type Or struct {
	Operands []Node
}

func (Or) exprNode() {}

// Not negates its operand.
type Not struct {
	Operand Node
}

func (Not) exprNode() {}

// Call invokes a function from the fixed library (count, sum, has,
// has_icon, max, min, highest_age). Unknown functions evaluate to Null.
type Call struct {
	Fn   string
	Args []Node
}

func (Call) exprNode() {}

// Add is left-to-right integer addition.
type Add struct {
	Left  Node
	Right Node
}

func (Add) exprNode() {}

// Sub is left-to-right integer subtraction.
type Sub struct {
	Left  Node
	Right Node
}

func (Sub) exprNode() {}

// FromJSONAST decodes the JSON AST form of an expression:
//
//	{"op": "compare", "left": ..., "right": ..., "operator": ">="}
//	{"op": "and", "operands": [...]}
//	{"op": "call", "function": "count", "args": [...]}
//	{"op": "property", "path": "player.hand.count"}
//	{"op": "literal", "value": 5}
//	{"op": "add"/"subtract", "left": ..., "right": ...}
func FromJSONAST(data []byte) (Node, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromASTValue(raw)
}

func fromASTValue(raw any) (Node, error) {
	switch v := raw.(type) {
	case map[string]any:
		return fromASTObject(v)
	case string:
		// Nested string operands are textual sub-expressions.
		return Parse(v)
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("floats are not allowed in expressions: %v", v)
		}
		return Literal{Value: Int(int64(v))}, nil
	case bool:
		return Literal{Value: Bool(v)}, nil
	case nil:
		return Literal{Value: Null{}}, nil
	default:
		return nil, fmt.Errorf("unsupported AST operand type %T", raw)
	}
}

func fromASTObject(obj map[string]any) (Node, error) {
	op, _ := obj["op"].(string)
	switch op {
	case "literal":
		return literalNode(obj["value"])

	case "property":
		path, _ := obj["path"].(string)
		if path == "" {
			return nil, fmt.Errorf("property node missing path")
		}
		return Property{Path: splitPath(path)}, nil

	case "compare":
		left, err := fromASTValue(obj["left"])
		if err != nil {
			return nil, fmt.Errorf("compare left: %w", err)
		}
		right, err := fromASTValue(obj["right"])
		if err != nil {
			return nil, fmt.Errorf("compare right: %w", err)
		}
		operator, _ := obj["operator"].(string)
		if operator == "" {
			operator = "=="
		}
		cmpOp, ok := compareOps[operator]
		if !ok {
			return nil, fmt.Errorf("unknown comparison operator %q", operator)
		}
		return Compare{Op: cmpOp, Left: left, Right: right}, nil

	case "and", "or":
		rawOperands, _ := obj["operands"].([]any)
		operands := make([]Node, 0, len(rawOperands))
		for i, o := range rawOperands {
			n, err := fromASTValue(o)
			if err != nil {
				return nil, fmt.Errorf("%s operand %d: %w", op, i, err)
			}
			operands = append(operands, n)
		}
		if op == "and" {
			return And{Operands: operands}, nil
		}
		return Or{Operands: operands}, nil

	case "not":
		operand, err := fromASTValue(obj["operand"])
		if err != nil {
			return nil, fmt.Errorf("not operand: %w", err)
		}
		return Not{Operand: operand}, nil

	case "call":
		fn, _ := obj["function"].(string)
		if fn == "" {
			return nil, fmt.Errorf("call node missing function")
		}
		rawArgs, _ := obj["args"].([]any)
		args := make([]Node, 0, len(rawArgs))
		for i, a := range rawArgs {
			n, err := fromASTValue(a)
			if err != nil {
				return nil, fmt.Errorf("call arg %d: %w", i, err)
			}
			args = append(args, n)
		}
		return Call{Fn: fn, Args: args}, nil

	case "add", "subtract":
		left, err := fromASTValue(obj["left"])
		if err != nil {
			return nil, fmt.Errorf("%s left: %w", op, err)
		}
		right, err := fromASTValue(obj["right"])
		if err != nil {
			return nil, fmt.Errorf("%s right: %w", op, err)
		}
		if op == "add" {
			return Add{Left: left, Right: right}, nil
		}
		return Sub{Left: left, Right: right}, nil

	default:
		return nil, fmt.Errorf("unknown AST op %q", op)
	}
}

func literalNode(raw any) (Node, error) {
	switch v := raw.(type) {
	case string:
		return Literal{Value: Str(v)}, nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("floats are not allowed in expressions: %v", v)
		}
		return Literal{Value: Int(int64(v))}, nil
	case bool:
		return Literal{Value: Bool(v)}, nil
	case nil:
		return Literal{Value: Null{}}, nil
	default:
		return nil, fmt.Errorf("unsupported literal type %T", raw)
	}
}

var compareOps = map[string]CompareOp{
	"==": OpEq,
	"!=": OpNe,
	"<":  OpLt,
	">":  OpGt,
	"<=": OpLe,
	">=": OpGe,
}
