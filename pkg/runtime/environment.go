package runtime

import (
	"fmt"
	"sort"

	"github.com/fcruzel/tlox/pkg/token"
)

// Environment is one lexical frame of name -> value bindings. Frames are
// shared by pointer: a closure keeps its defining frame alive for as long as
// the closure itself is reachable.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Snapshot returns a copy of the bindings held directly by this frame.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Define inserts or overwrites a binding in this frame.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Has reports whether this frame (not its ancestors) binds name.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name token.Token) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name.Lexeme]; ok {
			return v, nil
		}
	}
	return nil, undefined(name)
}

// Assign updates an existing binding in the first frame where it appears.
// It never creates a binding.
func (e *Environment) Assign(name token.Token, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = value
			return nil
		}
	}
	return undefined(name)
}

// Ancestor returns the frame n links outward. The resolver guarantees the
// chain is long enough, so running off the end is a bug and panics.
func (e *Environment) Ancestor(n int) *Environment {
	env := e
	for i := 0; i < n; i++ {
		if env.parent == nil {
			panic(fmt.Sprintf("runtime: environment chain shorter than %d", n))
		}
		env = env.parent
	}
	return env
}

// GetAt reads name from the frame exactly n links outward.
func (e *Environment) GetAt(n int, name token.Token) (Value, error) {
	if v, ok := e.Ancestor(n).values[name.Lexeme]; ok {
		return v, nil
	}
	return nil, undefined(name)
}

// AssignAt writes name in the frame exactly n links outward.
func (e *Environment) AssignAt(n int, name token.Token, value Value) {
	e.Ancestor(n).values[name.Lexeme] = value
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates a new child scope of e.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

func undefined(name token.Token) *Error {
	return NewError(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}
