package runtime

import (
	"fmt"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/token"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindNativeFunction
	KindClass
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// Nil is the single nil value.
var Nil Value = NilValue{}

// FromLiteral converts a scanned literal (nil, bool, float64, string) into a
// runtime value.
func FromLiteral(lit any) Value {
	switch v := lit.(type) {
	case nil:
		return Nil
	case bool:
		return BoolValue{Val: v}
	case float64:
		return NumberValue{Val: v}
	case string:
		return StringValue{Val: v}
	default:
		panic(fmt.Sprintf("runtime: unsupported literal %T", lit))
	}
}

// Truthy maps a value to a condition: nil and false are falsy, everything
// else (0 and "" included) is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// Equal compares two values without coercion. Values of different kinds are
// never equal; callables, classes and instances compare by identity.
func Equal(a, b Value) bool {
	if a == nil {
		a = Nil
	}
	if b == nil {
		b = Nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case NilValue:
		return true
	case BoolValue:
		return av.Val == b.(BoolValue).Val
	case NumberValue:
		return av.Val == b.(NumberValue).Val
	case StringValue:
		return av.Val == b.(StringValue).Val
	default:
		return a == b
	}
}

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// FunctionValue is a user function or method closing over the frame that was
// active where it was declared.
type FunctionValue struct {
	Declaration *ast.FunctionStatement
	Closure     *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Name() string { return v.Declaration.Name.Lexeme }

func (v *FunctionValue) Arity() int { return len(v.Declaration.Params) }

// Bind returns a copy of the method whose closure gains a fresh frame binding
// `this` to instance. The shared method is left untouched.
func (v *FunctionValue) Bind(instance *InstanceValue) *FunctionValue {
	env := NewEnvironment(v.Closure)
	env.Define("this", instance)
	return &FunctionValue{Declaration: v.Declaration, Closure: env}
}

// NativeCallContext is handed to native functions.
type NativeCallContext struct {
	Token token.Token
}

type NativeFunc func(ctx *NativeCallContext, args []Value) (Value, error)

// NativeFunctionValue is a builtin implemented in Go. It is always used by
// pointer so that values stay comparable.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

//-----------------------------------------------------------------------------
// Classes and instances
//-----------------------------------------------------------------------------

type ClassValue struct {
	Name    string
	Methods map[string]*FunctionValue
}

func (v *ClassValue) Kind() Kind { return KindClass }

// FindMethod returns the unbound method called name.
func (v *ClassValue) FindMethod(name string) (*FunctionValue, bool) {
	m, ok := v.Methods[name]
	return m, ok
}

type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: make(map[string]Value)}
}

func (v *InstanceValue) Kind() Kind { return KindInstance }

// Get reads a property: fields shadow methods, and methods come back bound
// to this instance.
func (v *InstanceValue) Get(name token.Token) (Value, error) {
	if field, ok := v.Fields[name.Lexeme]; ok {
		return field, nil
	}
	if method, ok := v.Class.FindMethod(name.Lexeme); ok {
		return method.Bind(v), nil
	}
	return nil, NewError(name, fmt.Sprintf("Undefined property '%s'.", name.Lexeme))
}

// Set always writes to the instance's own fields.
func (v *InstanceValue) Set(name token.Token, value Value) {
	v.Fields[name.Lexeme] = value
}
