package str

import (
	"github.com/xirelogy/go-biscuit/internal/runtime"
	"github.com/xirelogy/go-biscuit/internal/value"
)

func init() {
	runtime.Register(runtime.Spec{
		Name:    "str",
		Arity:   1,
		Handler: runStr,
	})
}

func runStr(params *value.FnParams) value.FnResult {
	arg := params.Args[0]
	text, ok := value.ToString(arg)
	if !ok {
		return params.Base.Errorf("cannot convert '%s' to string", arg.TypeName())
	}
	return value.Produce(params.Base, value.String, text)
}
