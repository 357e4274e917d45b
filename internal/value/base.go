package value

import "fmt"

// Base is the state shared by every frame of one script execution.
type Base struct {
	ReturnValue Object
	Stack       ObjectStack
	ErrorFunc   func(message string)
}

// Error forwards message to the host error sink.
func (b *Base) Error(message string) {
	if b.ErrorFunc != nil {
		b.ErrorFunc(message)
	}
}

// Errorf clears the return value, reports a formatted error and returns FnError.
func (b *Base) Errorf(format string, args ...any) FnResult {
	b.ReturnValue = Object{}
	b.Error(fmt.Sprintf(format, args...))
	return FnError
}

// Produce appends a slot of typ holding v and makes it the return value.
func Produce[T any](b *Base, typ Type, v T) FnResult {
	obj := b.Stack.AppendObject(typ)
	if p, ok := obj.Data.(*T); ok {
		*p = v
	}
	b.ReturnValue = obj
	return FnOK
}
