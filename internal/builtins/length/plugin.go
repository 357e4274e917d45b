package length

import (
	"github.com/xirelogy/go-biscuit/internal/runtime"
	"github.com/xirelogy/go-biscuit/internal/value"
)

func init() {
	runtime.Register(runtime.Spec{
		Name:    "len",
		Arity:   1,
		Handler: runLen,
	})
}

// runLen reports the byte length of a String.
func runLen(params *value.FnParams) value.FnResult {
	s, ok := value.Cast[string](params.Args[0])
	if !ok {
		return params.Base.Errorf("len expects String, got '%s'", params.Args[0].TypeName())
	}
	return value.Produce(params.Base, value.U32, uint32(len(*s)))
}
