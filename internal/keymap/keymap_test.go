package keymap_test

import (
	"testing"

	"github.com/andrieee44/keyremapd/internal/keymap"
	"github.com/andrieee44/keyremapd/keycode"
)

func TestResolveFallsBackToIdentity(t *testing.T) {
	var (
		layers = keymap.NewLayers()
		stack  = &keymap.Stack{}
	)

	got := keymap.Resolve(keycode.Q, stack, layers)
	want := keymap.Action{Kind: keymap.KeyAction, Key: keycode.Q}

	if got != want {
		t.Fatalf("Resolve(Q) = %+v, want %+v", got, want)
	}
}

func TestResolveBaseLayer(t *testing.T) {
	var (
		layers = keymap.NewLayers()
		stack  = &keymap.Stack{}
	)

	layers.Base.Bind(keycode.CapsLock, keymap.Action{Kind: keymap.LayerToAction, Layer: "nav"})

	got := keymap.Resolve(keycode.CapsLock, stack, layers)
	if got.Kind != keymap.LayerToAction || got.Layer != "nav" {
		t.Fatalf("Resolve(CapsLock) = %+v, want LayerTo(nav)", got)
	}
}

func TestResolvePrefersTopOfStackOverBase(t *testing.T) {
	var (
		layers = keymap.NewLayers()
		stack  = &keymap.Stack{}
		nav    = keymap.NewLayer("nav")
	)

	layers.Base.Bind(keycode.H, keymap.Action{Kind: keymap.KeyAction, Key: keycode.H})
	nav.Bind(keycode.H, keymap.Action{Kind: keymap.KeyAction, Key: keycode.Left})
	layers.ByName["nav"] = nav

	stack.Push("nav")

	got := keymap.Resolve(keycode.H, stack, layers)
	want := keymap.Action{Kind: keymap.KeyAction, Key: keycode.Left}

	if got != want {
		t.Fatalf("Resolve(H) with nav pushed = %+v, want %+v", got, want)
	}
}

func TestResolveGameModeBeatsEverything(t *testing.T) {
	var (
		layers = keymap.NewLayers()
		stack  = &keymap.Stack{}
		nav    = keymap.NewLayer("nav")
	)

	layers.Base.Bind(keycode.H, keymap.Action{Kind: keymap.KeyAction, Key: keycode.H})
	nav.Bind(keycode.H, keymap.Action{Kind: keymap.KeyAction, Key: keycode.Left})
	layers.ByName["nav"] = nav
	layers.GameMode.Bind(keycode.H, keymap.Action{Kind: keymap.KeyAction, Key: keycode.Down})

	stack.Push("nav")
	stack.SetGameMode(true)

	got := keymap.Resolve(keycode.H, stack, layers)
	want := keymap.Action{Kind: keymap.KeyAction, Key: keycode.Down}

	if got != want {
		t.Fatalf("Resolve(H) with game_mode active = %+v, want %+v", got, want)
	}
}

func TestStackPushPopRestoresPrevious(t *testing.T) {
	var stack keymap.Stack

	stack.Push("nav")
	stack.Push("nav")
	stack.Pop("nav")

	if got := stack.Frames(); len(got) != 1 {
		t.Fatalf("Frames() after one pop of two pushes = %v, want length 1", got)
	}

	stack.Pop("nav")

	if got := stack.Frames(); len(got) != 0 {
		t.Fatalf("Frames() after popping all = %v, want empty", got)
	}
}

func TestSetGameModeTwiceIsIdempotent(t *testing.T) {
	var stack keymap.Stack

	stack.SetGameMode(true)
	stack.SetGameMode(true)

	if !stack.GameMode() {
		t.Fatalf("GameMode() = false after two SetGameMode(true) calls, want true")
	}
}
