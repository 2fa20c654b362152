package interpreter

import (
	"fmt"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/runtime"
	"github.com/fcruzel/tlox/pkg/token"
)

func (i *Interpreter) evaluateCall(call *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return i.callValue(callee, args, call.Paren)
}

// callValue applies the call protocol: the callee must be a function, a
// native or a class, and the argument count must match exactly.
func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value, paren token.Token) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		if err := checkArity(paren, fn.Arity(), len(args)); err != nil {
			return nil, err
		}
		return i.invokeFunction(fn, args)
	case *runtime.NativeFunctionValue:
		if err := checkArity(paren, fn.Arity, len(args)); err != nil {
			return nil, err
		}
		return fn.Impl(&runtime.NativeCallContext{Token: paren}, args)
	case *runtime.ClassValue:
		if err := checkArity(paren, 0, len(args)); err != nil {
			return nil, err
		}
		return runtime.NewInstance(fn), nil
	default:
		return nil, runtime.NewError(paren, "Can only call functions and classes.")
	}
}

func checkArity(paren token.Token, want, got int) error {
	if want == got {
		return nil
	}
	return runtime.NewError(paren, fmt.Sprintf("Expected %d arguments but got %d.", want, got))
}

// invokeFunction runs fn's body in a fresh frame over its closure. A return
// signal stops unwinding here; falling off the end yields nil.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	localEnv := fn.Closure.Extend()
	for idx, param := range fn.Declaration.Params {
		localEnv.Define(param.Lexeme, args[idx])
	}
	if err := i.evaluateBlock(fn.Declaration.Body, localEnv); err != nil {
		if ret, ok := err.(returnSignal); ok {
			if ret.value == nil {
				return runtime.Nil, nil
			}
			return ret.value, nil
		}
		return nil, err
	}
	return runtime.Nil, nil
}

func (i *Interpreter) evaluateGet(n *ast.Get, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(n.Object, env)
	if err != nil {
		return nil, err
	}
	inst, ok := object.(*runtime.InstanceValue)
	if !ok {
		return nil, runtime.NewError(n.Name, "Only instances have properties.")
	}
	return inst.Get(n.Name)
}

func (i *Interpreter) evaluateSet(n *ast.Set, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(n.Object, env)
	if err != nil {
		return nil, err
	}
	inst, ok := object.(*runtime.InstanceValue)
	if !ok {
		return nil, runtime.NewError(n.Name, "Only instances have fields.")
	}
	value, err := i.evaluateExpression(n.Value, env)
	if err != nil {
		return nil, err
	}
	inst.Set(n.Name, value)
	return value, nil
}
