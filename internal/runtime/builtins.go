package runtime

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xirelogy/go-biscuit/internal/value"
)

// Variadic marks a builtin that accepts any number of arguments.
const Variadic = -1

// Spec describes a built-in native function.
type Spec struct {
	Name    string
	Arity   int
	Handler value.NativeFunction
}

var byName = map[string]Spec{}

// Register installs a built-in. Registering a name twice panics.
func Register(spec Spec) {
	if spec.Handler == nil {
		panic(fmt.Sprintf("builtin %s has nil handler", spec.Name))
	}
	if spec.Name == "" {
		panic("builtin with empty name")
	}
	if _, exists := byName[spec.Name]; exists {
		panic(fmt.Sprintf("builtin %s already registered", spec.Name))
	}
	byName[spec.Name] = spec
}

// LookupByName finds a builtin by its script-visible name.
func LookupByName(name string) (Spec, bool) {
	spec, ok := byName[name]
	return spec, ok
}

// All returns all registered builtins ordered by name.
func All() []Spec {
	out := make([]Spec, 0, len(byName))
	for _, spec := range byName {
		out = append(out, spec)
	}
	slices.SortFunc(out, func(a, b Spec) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Object wraps the builtin as a callable value that checks its arity.
func (s Spec) Object() value.Object {
	return value.NewNativeFunction(func(params *value.FnParams) value.FnResult {
		if s.Arity != Variadic && len(params.Args) != s.Arity {
			return params.Base.Errorf("%s expects %d argument(s), got %d", s.Name, s.Arity, len(params.Args))
		}
		return s.Handler(params)
	})
}
