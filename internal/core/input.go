package core

// Action is a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone Action = iota
	ActionFlap        // Space/Up/W - the single action key (flap, start, restart)
	ActionQuit        // Q, Ctrl+C - close the game
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionFlap:
		return "Flap"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame carries the discrete press and release events observed since
// the previous simulation tick. Press and release are tracked separately
// because the flight lock only clears on a release.
type InputFrame struct {
	pressed  map[Action]bool
	released map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		pressed:  make(map[Action]bool),
		released: make(map[Action]bool),
	}
}

// Press records a press event for this frame.
func (f *InputFrame) Press(a Action) {
	if f.pressed == nil {
		f.pressed = make(map[Action]bool)
	}
	f.pressed[a] = true
}

// Release records a release event for this frame.
func (f *InputFrame) Release(a Action) {
	if f.released == nil {
		f.released = make(map[Action]bool)
	}
	f.released[a] = true
}

// Pressed reports whether the action was pressed this frame.
func (f InputFrame) Pressed(a Action) bool {
	return f.pressed[a]
}

// Released reports whether the action was released this frame.
func (f InputFrame) Released(a Action) bool {
	return f.released[a]
}

// Clear drops all recorded events, readying the frame for the next tick.
func (f *InputFrame) Clear() {
	for k := range f.pressed {
		delete(f.pressed, k)
	}
	for k := range f.released {
		delete(f.released, k)
	}
}
