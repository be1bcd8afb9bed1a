package core

// Dispatcher binds one event so handlers for specific kinds can be tried
// against it in sequence. At most one kind matches.
type Dispatcher struct{ ev Event }

func NewDispatcher(ev Event) Dispatcher { return Dispatcher{ev: ev} }

func (d Dispatcher) Event() Event { return d.ev }

// Dispatch calls fn when the wrapped event is of kind T and stores fn's
// result in the handled flag. A non-matching event is left untouched.
// It reports whether fn was called.
func Dispatch[T Event](d Dispatcher, fn func(T) bool) bool {
	if d.ev == nil {
		return false
	}
	// A zero T is nil when T is an interface; the assertion alone decides.
	var want T
	if any(want) != nil && d.ev.Kind() != want.Kind() {
		return false
	}
	e, ok := d.ev.(T)
	if !ok {
		return false
	}
	e.SetHandled(fn(e))
	return true
}
