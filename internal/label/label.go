package label

import "sync"

// Label is an interned string id. The zero Label means "no label".
type Label uint32

// Interner maps strings to stable Labels and back. It is safe for
// concurrent use; hosts may intern names while a script runs.
type Interner struct {
	mu    sync.RWMutex
	ids   map[string]Label
	names []string
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{
		ids:   make(map[string]Label),
		names: []string{""},
	}
}

// Insert returns the label for s, allocating one on first use.
// The empty string is interned like any other value.
func (in *Interner) Insert(s string) Label {
	in.mu.RLock()
	id, ok := in.ids[s]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[s]; ok {
		return id
	}
	id = Label(len(in.names))
	in.names = append(in.names, s)
	in.ids[s] = id
	return id
}

// Find returns the label for s without allocating.
func (in *Interner) Find(s string) (Label, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.ids[s]
	return id, ok
}

// View returns the string for id. Unknown ids (and the zero Label) yield "".
func (in *Interner) View(id Label) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) >= len(in.names) {
		return ""
	}
	return in.names[id]
}

// Len reports how many strings have been interned.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.names) - 1
}
