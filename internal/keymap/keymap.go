// Package keymap resolves a physical keycode and the active layer stack
// to the bound Action, and maintains the layer stack itself.
package keymap

import "github.com/andrieee44/keyremapd/keycode"

// ActionKind tags which variant an Action holds.
type ActionKind int

const (
	// KeyAction emits the bound keycode mirroring the input's press/release.
	KeyAction ActionKind = iota

	// HomeRowAction is a tap/hold binding with permissive-hold semantics.
	HomeRowAction

	// OverloadAction is a tap/hold binding with pure-timing semantics.
	OverloadAction

	// LayerToAction pushes a layer onto the stack while the physical key
	// is held.
	LayerToAction

	// SocdAction declares this key as one side of an opposing pair.
	SocdAction

	// CommandAction spawns a shell command on press.
	CommandAction
)

// Action is a tagged variant over the six binding kinds a Keycode may
// carry in a layer.
type Action struct {
	Kind ActionKind

	// Key is the target of a KeyAction.
	Key keycode.Keycode

	// Tap and Hold are the two keycodes of a HomeRowAction or
	// OverloadAction.
	Tap, Hold keycode.Keycode

	// Layer is the layer name pushed by a LayerToAction.
	Layer string

	// Self and Opposing are the two sides of a SocdAction; Self is the
	// key this binding is attached to.
	Self, Opposing keycode.Keycode

	// Command is the shell command string of a CommandAction.
	Command string
}

// Layer is a named `Keycode -> Action` remap table. The names `base` and
// `game_mode` are reserved by convention; this package treats them as
// plain strings and leaves reservation enforcement to the config loader.
type Layer struct {
	Name     string
	Bindings map[keycode.Keycode]Action
}

// NewLayer builds an empty, named Layer.
func NewLayer(name string) *Layer {
	return &Layer{Name: name, Bindings: make(map[keycode.Keycode]Action)}
}

// Bind assigns an Action to a Keycode in the layer.
func (l *Layer) Bind(k keycode.Keycode, action Action) {
	l.Bindings[k] = action
}

// Stack is the ordered list of pushed layer names above base, plus the
// game_mode toggle. base is implicit at index 0 and is never pushed or
// popped; Resolve consults it directly.
type Stack struct {
	frames   []string
	gameMode bool
}

// Push adds name to the top of the stack, to be popped by Pop with the
// same name on release of the switch key.
func (s *Stack) Push(name string) {
	s.frames = append(s.frames, name)
}

// Pop removes the most recent frame pushed under name. It removes only
// the nearest matching frame, not all of them, so nested same-named
// LayerTo presses on different physical keys unwind correctly.
func (s *Stack) Pop(name string) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i] == name {
			s.frames = append(s.frames[:i], s.frames[i+1:]...)
			return
		}
	}
}

// SetGameMode toggles whether the game_mode layer is consulted ahead of
// the pushed stack. Calling it twice with the same value is equivalent
// to calling it once.
func (s *Stack) SetGameMode(on bool) {
	s.gameMode = on
}

// GameMode reports whether game_mode is currently active.
func (s *Stack) GameMode() bool {
	return s.gameMode
}

// Frames returns the pushed layer names, top of stack last.
func (s *Stack) Frames() []string {
	return s.frames
}

// Layers holds every named layer a config defines, plus the two
// reserved ones, by name.
type Layers struct {
	Base     *Layer
	ByName   map[string]*Layer
	GameMode *Layer
}

// NewLayers builds an empty Layers set with an empty base and game_mode
// layer.
func NewLayers() *Layers {
	return &Layers{
		Base:     NewLayer("base"),
		ByName:   make(map[string]*Layer),
		GameMode: NewLayer("game_mode"),
	}
}

// Resolve implements the Keymap Resolver's lookup order: game_mode (if
// active and bound), then the pushed stack top-to-bottom, then base,
// then the identity Key(k) action.
func Resolve(k keycode.Keycode, stack *Stack, layers *Layers) Action {
	var (
		action Action
		ok     bool
		i      int
		name   string
		layer  *Layer
	)

	if stack.GameMode() {
		if action, ok = layers.GameMode.Bindings[k]; ok {
			return action
		}
	}

	for i = len(stack.frames) - 1; i >= 0; i-- {
		name = stack.frames[i]

		layer, ok = layers.ByName[name]
		if !ok {
			continue
		}

		if action, ok = layer.Bindings[k]; ok {
			return action
		}
	}

	if action, ok = layers.Base.Bindings[k]; ok {
		return action
	}

	return Action{Kind: KeyAction, Key: k}
}
