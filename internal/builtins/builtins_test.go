package builtins_test

import (
	"testing"

	_ "github.com/xirelogy/go-biscuit/internal/builtins"
	"github.com/xirelogy/go-biscuit/internal/runtime"
	"github.com/xirelogy/go-biscuit/internal/value"
)

func callBuiltin(t *testing.T, name string, args ...value.Object) (value.FnResult, *value.Base, []string) {
	t.Helper()
	spec, ok := runtime.LookupByName(name)
	if !ok {
		t.Fatalf("builtin %s not registered", name)
	}
	var msgs []string
	base := &value.Base{ErrorFunc: func(m string) { msgs = append(msgs, m) }}
	fn := spec.Object()
	res := (*fn.Data.(*value.NativeFunction))(&value.FnParams{Base: base, Args: args})
	return res, base, msgs
}

func u32(v uint32) value.Object { return value.Bind(&v, value.U32) }

func str(s string) value.Object { return value.Bind(&s, value.String) }

func TestRegistryListsPlugins(t *testing.T) {
	var names []string
	for _, spec := range runtime.All() {
		names = append(names, spec.Name)
	}
	want := []string{"error", "len", "str", "typeof"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	runtime.Register(runtime.Spec{Name: "typeof", Arity: 1, Handler: func(*value.FnParams) value.FnResult { return value.FnOK }})
}

func TestTypeof(t *testing.T) {
	res, base, _ := callBuiltin(t, "typeof", u32(1))
	if res != value.FnOK {
		t.Fatalf("typeof failed")
	}
	if got := *base.ReturnValue.Data.(*string); got != "u32" {
		t.Fatalf("expected u32, got %s", got)
	}
	if base.Stack.Len() != 1 {
		t.Fatalf("expected result slot, got %d", base.Stack.Len())
	}
}

func TestStrAndLen(t *testing.T) {
	res, base, _ := callBuiltin(t, "str", u32(42))
	if res != value.FnOK || *base.ReturnValue.Data.(*string) != "42" {
		t.Fatalf("str(42) failed")
	}
	res, base, _ = callBuiltin(t, "len", str("héllo"))
	if res != value.FnOK || *base.ReturnValue.Data.(*uint32) != 6 {
		t.Fatalf("len expected 6 bytes")
	}
	res, _, msgs := callBuiltin(t, "len", u32(1))
	if res != value.FnError || len(msgs) != 1 || msgs[0] != "len expects String, got 'u32'" {
		t.Fatalf("unexpected len failure %v", msgs)
	}
}

func TestErrorAbortsWithMessage(t *testing.T) {
	res, base, msgs := callBuiltin(t, "error", str("boom"))
	if res != value.FnError || len(msgs) != 1 || msgs[0] != "boom" {
		t.Fatalf("expected boom, got %v", msgs)
	}
	if base.ReturnValue.IsValid() {
		t.Fatalf("expected return value cleared")
	}
}

func TestArityChecked(t *testing.T) {
	res, _, msgs := callBuiltin(t, "typeof")
	if res != value.FnError || msgs[0] != "typeof expects 1 argument(s), got 0" {
		t.Fatalf("unexpected arity failure %v", msgs)
	}
}
