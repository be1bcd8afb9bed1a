package core

// Input mirrors key and mouse state from the events the application sees.
type Input struct {
	keys           map[Key]bool
	buttons        map[MouseButton]bool
	mouseX, mouseY float64
}

func NewInput() *Input {
	return &Input{keys: map[Key]bool{}, buttons: map[MouseButton]bool{}}
}

// Handle records ev without consuming it.
func (in *Input) Handle(ev Event) {
	switch e := ev.(type) {
	case *KeyEvent:
		in.keys[e.Key] = e.Down()
	case *MouseButtonEvent:
		in.buttons[e.Button] = e.Down
	case *MouseMoveEvent:
		in.mouseX, in.mouseY = e.X, e.Y
	}
}

func (in *Input) IsKeyDown(k Key) bool            { return in.keys[k] }
func (in *Input) IsButtonDown(b MouseButton) bool { return in.buttons[b] }
func (in *Input) Mouse() (float64, float64)       { return in.mouseX, in.mouseY }
