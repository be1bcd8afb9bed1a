package core

// Kind is the discriminant of an Event.
type Kind uint8

const (
	KindNone Kind = iota
	KindWindowClose
	KindWindowResize
	KindKey
	KindMouseButton
	KindMouseMove
	KindMouseScroll
)

func (k Kind) String() string {
	switch k {
	case KindWindowClose:
		return "WindowClose"
	case KindWindowResize:
		return "WindowResize"
	case KindKey:
		return "Key"
	case KindMouseButton:
		return "MouseButton"
	case KindMouseMove:
		return "MouseMove"
	case KindMouseScroll:
		return "MouseScroll"
	default:
		return "None"
	}
}

// Event is a window or input occurrence routed through the layer stack.
// Events are passed by pointer so the handled flag survives the chain.
// Kind must not dereference its receiver; Dispatch calls it on nil.
type Event interface {
	Kind() Kind
	Handled() bool
	SetHandled(bool)
}

// EventCallback receives every event a Window produces.
type EventCallback func(Event)

type eventState struct{ handled bool }

func (s *eventState) Handled() bool     { return s.handled }
func (s *eventState) SetHandled(h bool) { s.handled = h }

type WindowCloseEvent struct{ eventState }

func (*WindowCloseEvent) Kind() Kind { return KindWindowClose }

type WindowResizeEvent struct {
	eventState
	Width, Height uint32
}

func (*WindowResizeEvent) Kind() Kind { return KindWindowResize }

type KeyEvent struct {
	eventState
	Key    Key
	Action Action
	Mods   Mod
}

func (*KeyEvent) Kind() Kind { return KindKey }

// Down reports whether the key is pressed or repeating.
func (e *KeyEvent) Down() bool { return e.Action != ActionRelease }

type MouseButtonEvent struct {
	eventState
	Button MouseButton
	Down   bool
	Mods   Mod
}

func (*MouseButtonEvent) Kind() Kind { return KindMouseButton }

type MouseMoveEvent struct {
	eventState
	X, Y float64
}

func (*MouseMoveEvent) Kind() Kind { return KindMouseMove }

type MouseScrollEvent struct {
	eventState
	XOffset, YOffset float64
}

func (*MouseScrollEvent) Kind() Kind { return KindMouseScroll }

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyEnter
	KeyTab
	KeyW
	KeyA
	KeyS
	KeyD
	KeyP
	KeyQ
	KeyF1
)

type Action uint8

const (
	ActionRelease Action = iota
	ActionPress
	ActionRepeat
)

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)

type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonOther
)
