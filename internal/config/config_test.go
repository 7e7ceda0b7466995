package config_test

import (
	"strings"
	"testing"

	"github.com/andrieee44/keyremapd/internal/config"
	"github.com/andrieee44/keyremapd/internal/keymap"
	"github.com/andrieee44/keyremapd/keycode"
	"github.com/andrieee44/keyremapd/linux/input"
)

const validDoc = `
tapping_term_ms: 200
double_tap_window_ms: 150
base:
  A:
    home_row:
      tap: A
      hold: LEFT_CTRL
  CAPS_LOCK:
    layer_to: nav
  W:
    socd:
      opposing: S
  S:
    socd:
      opposing: W
layers:
  nav:
    H: LEFT
layers_extra_ignored_if_absent: {}
game_mode: {}
devices:
  usb:046d:c52b:0111:03:
    tapping_term_ms: 180
    base:
      A: A
`

func TestParseAcceptsValidDocument(t *testing.T) {
	if _, err := config.Parse([]byte(validDoc)); err != nil {
		t.Fatalf("Parse(valid) = %v, want nil error", err)
	}
}

func TestParseRejectsUnknownKeycode(t *testing.T) {
	var doc = `
tapping_term_ms: 200
double_tap_window_ms: 150
base:
  NOT_A_KEY: A
`

	if _, err := config.Parse([]byte(doc)); err == nil {
		t.Fatalf("Parse(unknown keycode) = nil error, want error")
	}
}

func TestParseRejectsAsymmetricSocd(t *testing.T) {
	var doc = `
tapping_term_ms: 200
double_tap_window_ms: 150
base:
  W:
    socd:
      opposing: S
  S: S
`

	err := mustErr(t, doc)
	if !strings.Contains(err.Error(), "symmetrically") {
		t.Fatalf("error = %v, want asymmetric socd complaint", err)
	}
}

func TestParseRejectsUndeclaredLayerTo(t *testing.T) {
	var doc = `
tapping_term_ms: 200
double_tap_window_ms: 150
base:
  CAPS_LOCK:
    layer_to: ghost
`

	err := mustErr(t, doc)
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("error = %v, want undeclared layer complaint", err)
	}
}

func TestParseRejectsOutOfRangeTiming(t *testing.T) {
	var doc = `
tapping_term_ms: 1200
double_tap_window_ms: 150
base: {}
`

	mustErr(t, doc)
}

func TestParseRejectsMalformedDeviceKey(t *testing.T) {
	var doc = `
tapping_term_ms: 200
double_tap_window_ms: 150
base: {}
devices:
  not-a-device-id:
    tapping_term_ms: 100
`

	mustErr(t, doc)
}

func TestBuildAppliesDeviceOverrideReplacingSection(t *testing.T) {
	var (
		snap, err = config.Parse([]byte(validDoc))
		eff       *config.Effective
	)

	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	eff = snap.Build("usb:046d:c52b:0111:03")

	if eff.TappingTerm.Milliseconds() != 180 {
		t.Fatalf("TappingTerm = %v, want 180ms", eff.TappingTerm)
	}

	action, ok := eff.Layers.Base.Bindings[keycode.A]
	if !ok || action.Kind != keymap.KeyAction {
		t.Fatalf("overridden base[A] = %+v, want replaced plain Key(A) binding", action)
	}
}

func TestBuildFallsBackToTopLevelForUnknownDevice(t *testing.T) {
	var (
		snap, err = config.Parse([]byte(validDoc))
		eff       *config.Effective
	)

	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	eff = snap.Build("usb:ffff:ffff:ffff:ff")

	if eff.TappingTerm.Milliseconds() != 200 {
		t.Fatalf("TappingTerm = %v, want top-level 200ms", eff.TappingTerm)
	}
}

func TestBuildWiresSocdPairToBothSides(t *testing.T) {
	var (
		snap, _ = config.Parse([]byte(validDoc))
		eff     = snap.Build("nonexistent")
	)

	w, wOk := eff.SocdPairs[keycode.W]
	s, sOk := eff.SocdPairs[keycode.S]

	if !wOk || !sOk || w != s {
		t.Fatalf("SocdPairs[W]=%v(%v) SocdPairs[S]=%v(%v), want identical shared pair", w, wOk, s, sOk)
	}
}

func TestDeviceIdentityFormat(t *testing.T) {
	var got = config.DeviceIdentity(input.ID{Bustype: 0x03, Vendor: 0x046d, Product: 0xc52b, Version: 0x0111})

	if got != "usb:046d:c52b:0111:03" {
		t.Fatalf("DeviceIdentity = %q, want usb:046d:c52b:0111:03", got)
	}
}

func mustErr(t *testing.T, doc string) error {
	t.Helper()

	_, err := config.Parse([]byte(doc))
	if err == nil {
		t.Fatalf("Parse(%q) = nil error, want error", doc)
	}

	return err
}
