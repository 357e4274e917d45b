package value

import "fmt"

// Boundary is a captured stack height.
type Boundary int

// ObjectStack owns the storage of temporaries and locals. Slots are
// appended at the end and removed as contiguous ranges; removing a range
// slides the slots above it down without moving their storage.
type ObjectStack struct {
	items    []Object
	nextSlot uint64
}

// End returns the current height as a Boundary.
func (s *ObjectStack) End() Boundary {
	return Boundary(len(s.items))
}

// Len reports the number of live slots.
func (s *ObjectStack) Len() int {
	return len(s.items)
}

// At returns the object in slot i.
func (s *ObjectStack) At(i int) Object {
	return s.items[i]
}

// AppendObject pushes a new slot holding freshly constructed storage of typ.
func (s *ObjectStack) AppendObject(typ Type) Object {
	s.nextSlot++
	obj := Object{Data: typ.Construct(), Type: typ, slot: s.nextSlot}
	s.items = append(s.items, obj)
	return obj
}

// Top returns the highest slot, or an empty Object when the stack is empty.
func (s *ObjectStack) Top() Object {
	if len(s.items) == 0 {
		return Object{}
	}
	return s.items[len(s.items)-1]
}

// IsTop reports whether obj is the highest slot.
func (s *ObjectStack) IsTop(obj Object) bool {
	return len(s.items) > 0 && s.items[len(s.items)-1].SameSlot(obj)
}

// Contains reports whether obj lives in one of the slots at or above from.
func (s *ObjectStack) Contains(obj Object, from Boundary) bool {
	if !obj.StackOwned() {
		return false
	}
	for i := len(s.items) - 1; i >= int(from) && i >= 0; i-- {
		if s.items[i].SameSlot(obj) {
			return true
		}
	}
	return false
}

// Reconstruct destructs the storage of obj's slot and replaces it with
// fresh storage of typ. The slot keeps its position and identity.
func (s *ObjectStack) Reconstruct(obj Object, typ Type) (Object, bool) {
	if !obj.StackOwned() {
		return Object{}, false
	}
	for i := len(s.items) - 1; i >= 0; i-- {
		item := s.items[i]
		if !item.SameSlot(obj) {
			continue
		}
		item.Type.Destruct(item.Data)
		item.Data = typ.Construct()
		item.Type = typ
		s.items[i] = item
		return item, true
	}
	return Object{}, false
}

// DeleteRange destructs the slots in [from, to) and slides later slots down.
func (s *ObjectStack) DeleteRange(from, to Boundary) {
	if from < 0 || to > Boundary(len(s.items)) || from > to {
		panic(fmt.Sprintf("object stack: invalid range [%d, %d) with %d slots", from, to, len(s.items)))
	}
	for i := from; i < to; i++ {
		item := s.items[i]
		item.Type.Destruct(item.Data)
	}
	n := copy(s.items[from:], s.items[to:])
	tail := int(from) + n
	clear(s.items[tail:])
	s.items = s.items[:tail]
}

// Truncate destructs every slot at or above from.
func (s *ObjectStack) Truncate(from Boundary) {
	if from >= Boundary(len(s.items)) {
		return
	}
	s.DeleteRange(from, s.End())
}
