package errorbuiltin

import (
	"github.com/xirelogy/go-biscuit/internal/runtime"
	"github.com/xirelogy/go-biscuit/internal/value"
)

func init() {
	runtime.Register(runtime.Spec{
		Name:    "error",
		Arity:   1,
		Handler: runError,
	})
}

// runError aborts the script with the given message.
func runError(params *value.FnParams) value.FnResult {
	msg, ok := value.Cast[string](params.Args[0])
	if !ok {
		return params.Base.Errorf("error expects String, got '%s'", params.Args[0].TypeName())
	}
	return params.Base.Errorf("%s", *msg)
}
