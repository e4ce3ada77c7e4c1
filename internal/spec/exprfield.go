package spec

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/splay/internal/expr"
)

// Expr is a deferred expression embedded in a spec element. In JSON it is
// either a textual expression string or a structured AST object; both
// forms compile to the same expr.Node. Compilation happens during spec
// validation so evaluation never sees a syntax error.
type Expr struct {
	// Src holds the textual form when the spec used one.
	Src string

	raw  json.RawMessage
	node expr.Node
}

// E builds a compiled Expr from a textual expression. It panics on a
// syntax error and is meant for hand-authored specs and tests.
func E(src string) Expr {
	return Expr{Src: src, node: expr.MustParse(src)}
}

// IsZero reports whether the expression is absent.
func (e Expr) IsZero() bool {
	return e.Src == "" && e.raw == nil && e.node == nil
}

// Compile parses the expression and caches the result. Calling it again
// is a no-op.
func (e *Expr) Compile() error {
	if e.node != nil {
		return nil
	}
	node, err := e.compile()
	if err != nil {
		return err
	}
	e.node = node
	return nil
}

// Node returns the compiled AST, compiling on the fly if Compile was
// never called. A malformed expression yields nil, which evaluates as an
// always-false condition.
func (e Expr) Node() expr.Node {
	if e.node != nil {
		return e.node
	}
	node, err := e.compile()
	if err != nil {
		return nil
	}
	return node
}

func (e Expr) compile() (expr.Node, error) {
	if e.raw != nil {
		return expr.FromJSONAST(e.raw)
	}
	if e.Src != "" {
		return expr.Parse(e.Src)
	}
	return nil, fmt.Errorf("empty expression")
}

func (e *Expr) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var src string
		if err := json.Unmarshal(data, &src); err != nil {
			return err
		}
		e.Src = src
		e.raw = nil
		e.node = nil
		return nil
	}
	e.raw = append(json.RawMessage(nil), data...)
	e.Src = ""
	e.node = nil
	return nil
}

func (e Expr) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(e.Src)
}
