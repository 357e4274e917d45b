package value

// NativeType is a Type backed by a Go value of type T. Embed it in a
// struct to add operators; by itself every operator is unsupported.
type NativeType[T any] struct {
	Unsupported
	TypeName string
}

// NewNativeType returns a plain-data type named name.
func NewNativeType[T any](name string) *NativeType[T] {
	return &NativeType[T]{TypeName: name}
}

func (t *NativeType[T]) Name() string { return t.TypeName }

func (t *NativeType[T]) Construct() any { return new(T) }

func (t *NativeType[T]) Destruct(data any) {
	var zero T
	*data.(*T) = zero
}

func (t *NativeType[T]) Copy(dst, src any) {
	*dst.(*T) = *src.(*T)
}

func (t *NativeType[T]) Move(dst, src any) {
	d, s := dst.(*T), src.(*T)
	*d = *s
	var zero T
	*s = zero
}

// Stringer is implemented by types whose values can be embedded in an
// interpolated string.
type Stringer interface {
	Stringify(obj Object) string
}

// BoolConverter is implemented by types that can be used as a condition.
type BoolConverter interface {
	ToBool(obj Object) bool
}

// ToString renders obj for string interpolation.
func ToString(obj Object) (string, bool) {
	if s, ok := obj.Type.(Stringer); ok {
		return s.Stringify(obj), true
	}
	return "", false
}

// ToBool converts obj to a condition value.
func ToBool(obj Object) (bool, bool) {
	if c, ok := obj.Type.(BoolConverter); ok {
		return c.ToBool(obj), true
	}
	return false, false
}
