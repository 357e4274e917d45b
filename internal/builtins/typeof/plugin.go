package typeof

import (
	"github.com/xirelogy/go-biscuit/internal/runtime"
	"github.com/xirelogy/go-biscuit/internal/value"
)

func init() {
	runtime.Register(runtime.Spec{
		Name:    "typeof",
		Arity:   1,
		Handler: runTypeof,
	})
}

func runTypeof(params *value.FnParams) value.FnResult {
	return value.Produce(params.Base, value.String, params.Args[0].TypeName())
}
