package interpreter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/fcruzel/tlox/pkg/runtime"
)

// Stringify renders a value the way `print` shows it.
func Stringify(val runtime.Value) string {
	return valueToString(val)
}

func valueToString(val runtime.Value) string {
	switch v := val.(type) {
	case nil, runtime.NilValue:
		return "nil"
	case runtime.BoolValue:
		return strconv.FormatBool(v.Val)
	case runtime.NumberValue:
		return formatNumber(v.Val)
	case runtime.StringValue:
		return v.Val
	case *runtime.FunctionValue:
		return fmt.Sprintf("<fn %s>", v.Name())
	case *runtime.NativeFunctionValue:
		return fmt.Sprintf("<native fn %s>", v.Name)
	case *runtime.ClassValue:
		return v.Name
	case *runtime.InstanceValue:
		return v.Class.Name + " instance"
	default:
		return fmt.Sprintf("<%s>", val.Kind())
	}
}

// formatNumber prints integral values without a fraction and everything else
// in the shortest form that round-trips.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
