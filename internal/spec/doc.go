// Package spec defines the data model for a game specification: cards,
// zones, actions, turn structure, win conditions, and the step-based
// effect DSL that card and action behavior is authored in.
//
// A GameSpec is produced offline (hand-authored or compiled from rules
// text) and consumed read-only by the engine. Specs loaded from files are
// validated before use: reference resolution, per-kind payload presence,
// and expression compilation all happen in Validate, so resolution-time
// code never sees a malformed spec element.
//
// EffectStep is a tagged union: Kind selects exactly one of the per-kind
// payload pointers. The engine dispatches on Kind with an exhaustive
// switch, so adding a step kind without a handler is a compile-visible
// hole rather than a runtime lookup miss.
package spec
