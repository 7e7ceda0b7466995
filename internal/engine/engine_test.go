//go:build linux

package engine

import (
	"testing"
	"time"

	"github.com/andrieee44/keyremapd/internal/config"
	"github.com/andrieee44/keyremapd/internal/dispatch"
	"github.com/andrieee44/keyremapd/internal/keymap"
	"github.com/andrieee44/keyremapd/internal/socd"
	"github.com/andrieee44/keyremapd/internal/taphold"
	"github.com/andrieee44/keyremapd/keycode"
	"github.com/andrieee44/keyremapd/linux/input"
)

func newTestEngine(tappingTerm, doubleTapWindow time.Duration) *Engine {
	var layers = keymap.NewLayers()

	return &Engine{
		deviceIdentity: "test",
		translator:     keycode.NewTranslator(),
		dispatcher:     dispatch.NewDispatcher("test"),
		cfg: &config.Effective{
			TappingTerm:     tappingTerm,
			DoubleTapWindow: doubleTapWindow,
			Layers:          layers,
			SocdPairs:       make(map[keycode.Keycode]*socd.Pair),
		},
		taphold: taphold.NewEngine(tappingTerm, doubleTapWindow),
	}
}

func keyEvent(code input.Code, press bool) input.Event {
	var value int32

	if press {
		value = 1
	}

	return input.Event{Type: input.EV_KEY, Code: uint16(code), Value: value}
}

func TestProcessDropsUnmappedCode(t *testing.T) {
	var e = newTestEngine(200*time.Millisecond, 0)

	if batch := e.process(input.Event{Type: input.EV_KEY, Code: 0xffff, Value: 1}); batch != nil {
		t.Fatalf("process(unmapped code) = %v, want nil", batch)
	}
}

func TestProcessDropsRepeatEvents(t *testing.T) {
	var e = newTestEngine(200*time.Millisecond, 0)

	if batch := e.process(keyEvent(input.KEY_A, true)); batch == nil {
		t.Fatalf("setup: first A press produced no batch")
	}

	if batch := e.process(input.Event{Type: input.EV_KEY, Code: uint16(input.KEY_A), Value: 2}); batch != nil {
		t.Fatalf("process(repeat) = %v, want nil", batch)
	}
}

func TestProcessIgnoresNonKeyEvents(t *testing.T) {
	var e = newTestEngine(200*time.Millisecond, 0)

	if batch := e.process(input.Event{Type: input.EV_SYN, Code: 0, Value: 0}); batch != nil {
		t.Fatalf("process(EV_SYN) = %v, want nil", batch)
	}
}

func TestProcessPlainKeyPassthrough(t *testing.T) {
	var (
		e     = newTestEngine(200*time.Millisecond, 0)
		batch = e.process(keyEvent(input.KEY_A, true))
	)

	if len(batch) != 1 || batch[0].Code != input.KEY_A || !batch[0].Press {
		t.Fatalf("process(A press) = %+v, want single KEY_A press", batch)
	}
}

func TestHomeRowResolvesToTapOnQuickRelease(t *testing.T) {
	var (
		e      = newTestEngine(200*time.Millisecond, 0)
		layers = e.cfg.Layers
	)

	layers.Base.Bind(keycode.F, keymap.Action{Kind: keymap.HomeRowAction, Tap: keycode.F, Hold: keycode.LeftCtrl})

	press := e.process(keyEvent(input.KEY_F, true))
	if len(press) != 0 {
		t.Fatalf("HomeRow press (Pending) = %+v, want no immediate emission", press)
	}

	release := e.process(keyEvent(input.KEY_F, false))
	if len(release) != 2 || release[0].Code != input.KEY_F || !release[0].Press || release[1].Press {
		t.Fatalf("HomeRow quick release = %+v, want tap press+release of F", release)
	}
}

func TestLayerToPushesAndPopsStack(t *testing.T) {
	var (
		e   = newTestEngine(200*time.Millisecond, 0)
		nav = keymap.NewLayer("nav")
	)

	nav.Bind(keycode.H, keymap.Action{Kind: keymap.KeyAction, Key: keycode.Left})
	e.cfg.Layers.ByName["nav"] = nav
	e.cfg.Layers.Base.Bind(keycode.CapsLock, keymap.Action{Kind: keymap.LayerToAction, Layer: "nav"})

	e.process(keyEvent(input.KEY_CAPSLOCK, true))

	batch := e.process(keyEvent(input.KEY_H, true))
	if len(batch) != 1 || batch[0].Code != input.KEY_LEFT {
		t.Fatalf("H under pushed nav layer = %+v, want KEY_LEFT press", batch)
	}

	e.process(keyEvent(input.KEY_CAPSLOCK, false))

	batch = e.process(keyEvent(input.KEY_H, true))
	if len(batch) != 1 || batch[0].Code != input.KEY_H {
		t.Fatalf("H after nav popped = %+v, want plain KEY_H press", batch)
	}
}

func TestSocdActionEmitsThroughSharedPair(t *testing.T) {
	var (
		e    = newTestEngine(200*time.Millisecond, 0)
		pair = socd.NewPair(keycode.W, keycode.S)
	)

	e.cfg.Layers.Base.Bind(keycode.W, keymap.Action{Kind: keymap.SocdAction, Self: keycode.W, Opposing: keycode.S})
	e.cfg.Layers.Base.Bind(keycode.S, keymap.Action{Kind: keymap.SocdAction, Self: keycode.S, Opposing: keycode.W})
	e.cfg.SocdPairs[keycode.W] = pair
	e.cfg.SocdPairs[keycode.S] = pair

	batch := e.process(keyEvent(input.KEY_W, true))
	if len(batch) != 1 || batch[0].Code != input.KEY_W || !batch[0].Press {
		t.Fatalf("W press = %+v, want KEY_W press", batch)
	}

	batch = e.process(keyEvent(input.KEY_S, true))
	if len(batch) != 2 || batch[0].Code != input.KEY_W || batch[0].Press || batch[1].Code != input.KEY_S || !batch[1].Press {
		t.Fatalf("S press while W held = %+v, want release W then press S", batch)
	}
}

func TestCommandActionIgnoresRelease(t *testing.T) {
	var e = newTestEngine(200*time.Millisecond, 0)

	e.cfg.Layers.Base.Bind(keycode.F13, keymap.Action{Kind: keymap.CommandAction, Command: "true"})

	e.process(keyEvent(input.KEY_F13, true))

	if batch := e.process(keyEvent(input.KEY_F13, false)); batch != nil {
		t.Fatalf("Command release = %+v, want nil", batch)
	}
}
