// Package interpreter evaluates resolved programs.
//
// Evaluation is a pair of recursive functions, evaluateStatement and
// evaluateExpression, that receive the active environment as a parameter.
// Variable reads and writes use the binding distances registered through
// Resolve; expressions without a registered distance go straight to the
// global environment. A runtime failure surfaces as a *runtime.Error and
// aborts the current Interpret call without touching bindings made earlier.
package interpreter
