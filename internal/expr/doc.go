// Package expr implements the minimal expression sub-language used by
// effect conditions and value computations.
//
// Expressions arrive in two forms: textual ("player.hand.count > 2 and
// has_icon('castle')") and a JSON AST ({"op": "compare", ...}). Both are
// compiled to the same typed Node tree, once, when a spec is validated.
// Evaluation happens against a Scope, which binds property paths and
// function calls to live game state without this package depending on it.
//
// Failure semantics are deliberately soft: an unresolvable property
// evaluates to Null, a type-mismatched comparison to false, and a
// non-numeric arithmetic operand to zero. Spec-authoring mistakes degrade
// to "condition not met" instead of aborting resolution; validation is
// where malformed expressions are meant to be caught.
package expr
