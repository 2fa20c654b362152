package interpreter

import (
	"time"
	"unicode/utf8"

	"github.com/fcruzel/tlox/pkg/runtime"
)

func (i *Interpreter) installNatives() {
	natives := []*runtime.NativeFunctionValue{
		{
			Name:  "clock",
			Arity: 0,
			Impl: func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
				return runtime.NumberValue{Val: float64(time.Now().UnixNano()) / float64(time.Second)}, nil
			},
		},
		{
			Name:  "str",
			Arity: 1,
			Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
				return runtime.StringValue{Val: valueToString(args[0])}, nil
			},
		},
		{
			Name:  "len",
			Arity: 1,
			Impl: func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
				s, ok := args[0].(runtime.StringValue)
				if !ok {
					return nil, runtime.NewError(ctx.Token, "len expects a string.")
				}
				return runtime.NumberValue{Val: float64(utf8.RuneCountInString(s.Val))}, nil
			},
		},
	}
	for _, fn := range natives {
		i.global.Define(fn.Name, fn)
	}
}
