package value

// FnResult is the outcome of every evaluation step.
type FnResult int

const (
	FnOK FnResult = iota
	FnReturn
	FnError
)

func (r FnResult) String() string {
	switch r {
	case FnOK:
		return "ok"
	case FnReturn:
		return "return"
	case FnError:
		return "error"
	default:
		return "unknown"
	}
}

// Type is the dynamic method table behind an Object. Data handed to these
// methods is always the pointer returned by Construct (or an equivalent
// pointer bound by the host).
type Type interface {
	Name() string
	Construct() any
	Destruct(data any)
	Copy(dst, src any)
	Move(dst, src any)
	UnaryOp(base *Base, op UnaryOp, obj Object) FnResult
	BinaryOp(base *Base, op BinaryOp, left, right Object) FnResult
	PropertyLookup(base *Base, obj Object, name string) FnResult
}

// Object is a typed reference to native storage. It does not own the
// storage; ownership comes from where the storage lives.
type Object struct {
	Data any
	Type Type

	slot     uint64 // stack slot id, 0 when not stack-owned
	readonly bool
}

// Bind wraps host-owned storage as an Object.
func Bind[T any](p *T, typ Type) Object {
	return Object{Data: p, Type: typ}
}

// BindReadOnly wraps storage that evaluation must never write through, such
// as a literal held by the syntax tree.
func BindReadOnly[T any](p *T, typ Type) Object {
	return Object{Data: p, Type: typ, readonly: true}
}

// Cast returns the storage of o as *T.
func Cast[T any](o Object) (*T, bool) {
	p, ok := o.Data.(*T)
	return p, ok
}

// IsValid reports whether o refers to anything.
func (o Object) IsValid() bool {
	return o.Type != nil
}

// SameSlot reports whether o and other refer to the same object stack slot.
func (o Object) SameSlot(other Object) bool {
	return o.slot != 0 && o.slot == other.slot
}

// StackOwned reports whether o lives in an object stack slot.
func (o Object) StackOwned() bool {
	return o.slot != 0
}

// ReadOnly reports whether o was bound with BindReadOnly.
func (o Object) ReadOnly() bool {
	return o.readonly
}

// TypeName returns the name of o's type, or "none" for an empty Object.
func (o Object) TypeName() string {
	if o.Type == nil {
		return "none"
	}
	return o.Type.Name()
}

// Is reports whether o has exactly the given type.
func (o Object) Is(typ Type) bool {
	return o.Type != nil && o.Type == typ
}
