package interpreter

import "github.com/fcruzel/tlox/pkg/runtime"

// returnSignal unwinds a `return` to the nearest call boundary. It is never
// reported as an error.
type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}
