// Package config parses and validates the YAML configuration document
// and derives the per-device effective configuration the Device Engine
// consumes.
package config

import (
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrieee44/keyremapd/internal/keymap"
	"github.com/andrieee44/keyremapd/internal/socd"
	"github.com/andrieee44/keyremapd/keycode"
	"github.com/andrieee44/keyremapd/linux/input"
)

// deviceIdentityPattern matches the syntax DeviceIdentity produces:
// usb:VVVV:PPPP:RRRR:BB, all lowercase hex.
var deviceIdentityPattern = regexp.MustCompile(`^usb:[0-9a-f]{4}:[0-9a-f]{4}:[0-9a-f]{4}:[0-9a-f]{2}$`)

// DeviceIdentity builds the opaque, reboot-stable string used to key
// per-device overrides from the identity EVIOCGID reports.
func DeviceIdentity(id input.ID) string {
	return fmt.Sprintf("usb:%04x:%04x:%04x:%02x", id.Vendor, id.Product, id.Version, id.Bustype)
}

// tapHold is the YAML shape of a home_row/overload binding.
type tapHold struct {
	Tap  string `yaml:"tap"`
	Hold string `yaml:"hold"`
}

// socdSpec is the YAML shape of a socd binding.
type socdSpec struct {
	Opposing string `yaml:"opposing"`
}

// yamlAction decodes either a bare scalar key name (a plain Key binding)
// or one of the tagged mappings for the other five action kinds.
type yamlAction struct {
	key      string
	HomeRow  *tapHold  `yaml:"home_row"`
	Overload *tapHold  `yaml:"overload"`
	LayerTo  string    `yaml:"layer_to"`
	Socd     *socdSpec `yaml:"socd"`
	Command  string    `yaml:"command"`
}

// UnmarshalYAML implements yaml.Unmarshaler so a bare scalar and a
// mapping both decode into the same Go type.
func (a *yamlAction) UnmarshalYAML(node *yaml.Node) error {
	var plain struct {
		HomeRow  *tapHold  `yaml:"home_row"`
		Overload *tapHold  `yaml:"overload"`
		LayerTo  string    `yaml:"layer_to"`
		Socd     *socdSpec `yaml:"socd"`
		Command  string    `yaml:"command"`
	}

	if node.Kind == yaml.ScalarNode {
		a.key = node.Value

		return nil
	}

	if err := node.Decode(&plain); err != nil {
		return fmt.Errorf("config.yamlAction.UnmarshalYAML: %w", err)
	}

	a.HomeRow, a.Overload, a.LayerTo, a.Socd, a.Command =
		plain.HomeRow, plain.Overload, plain.LayerTo, plain.Socd, plain.Command

	return nil
}

// layerBindings is a YAML key-name-to-action map, as used by base,
// game_mode, and each named layer.
type layerBindings map[string]yamlAction

// overrideSection is a per-device override: any field left nil/empty
// leaves the top-level section untouched; any field present replaces
// the corresponding top-level section wholesale, never merges it.
type overrideSection struct {
	TappingTermMs     *int                     `yaml:"tapping_term_ms"`
	DoubleTapWindowMs *int                     `yaml:"double_tap_window_ms"`
	Base              layerBindings            `yaml:"base"`
	Layers            map[string]layerBindings `yaml:"layers"`
	GameMode          layerBindings            `yaml:"game_mode"`
}

// document is the raw decoded shape of the top-level YAML config file.
type document struct {
	TappingTermMs     int                      `yaml:"tapping_term_ms"`
	DoubleTapWindowMs int                      `yaml:"double_tap_window_ms"`
	Base              layerBindings            `yaml:"base"`
	Layers            map[string]layerBindings `yaml:"layers"`
	GameMode          layerBindings            `yaml:"game_mode"`
	Devices           map[string]overrideSection `yaml:"devices"`
}

// Snapshot is a parsed and validated config document, immutable once
// returned by Parse.
type Snapshot struct {
	doc document
}

// Parse decodes and validates a YAML config document, enforcing every
// parser guarantee the core is allowed to assume: valid keycodes,
// layer names referenced by layer_to exist, SOCD pairs are symmetric,
// tapping_term_ms is positive and double_tap_window_ms non-negative (0
// turns double-tap-hold off), both under 1000ms, and device-identity keys
// are syntactically valid.
func Parse(data []byte) (*Snapshot, error) {
	var (
		doc document
		err error
	)

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("config.Parse: %w", err)
	}

	err = validateDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("config.Parse: %w", err)
	}

	return &Snapshot{doc: doc}, nil
}

func validateDocument(doc document) error {
	var (
		name     string
		override overrideSection
		err      error
	)

	err = validateTimings(doc.TappingTermMs, doc.DoubleTapWindowMs)
	if err != nil {
		return err
	}

	err = validateBindingSet(doc.Base, doc.Layers, doc.GameMode)
	if err != nil {
		return err
	}

	for name, override = range doc.Devices {
		if !deviceIdentityPattern.MatchString(name) {
			return fmt.Errorf("config.validateDocument: device key %q is not a valid device identity", name)
		}

		tappingTerm, doubleTapWindow := doc.TappingTermMs, doc.DoubleTapWindowMs
		if override.TappingTermMs != nil {
			tappingTerm = *override.TappingTermMs
		}

		if override.DoubleTapWindowMs != nil {
			doubleTapWindow = *override.DoubleTapWindowMs
		}

		err = validateTimings(tappingTerm, doubleTapWindow)
		if err != nil {
			return fmt.Errorf("config.validateDocument: device %q: %w", name, err)
		}

		base, layers, gameMode := doc.Base, doc.Layers, doc.GameMode
		if override.Base != nil {
			base = override.Base
		}

		if override.Layers != nil {
			layers = override.Layers
		}

		if override.GameMode != nil {
			gameMode = override.GameMode
		}

		err = validateBindingSet(base, layers, gameMode)
		if err != nil {
			return fmt.Errorf("config.validateDocument: device %q: %w", name, err)
		}
	}

	return nil
}

func validateTimings(tappingTermMs, doubleTapWindowMs int) error {
	if tappingTermMs <= 0 || tappingTermMs >= 1000 {
		return fmt.Errorf("config.validateTimings: tapping_term_ms %d must be positive and under 1000", tappingTermMs)
	}

	if doubleTapWindowMs < 0 || doubleTapWindowMs >= 1000 {
		return fmt.Errorf("config.validateTimings: double_tap_window_ms %d must be non-negative and under 1000", doubleTapWindowMs)
	}

	return nil
}

func validateBindingSet(base layerBindings, layers map[string]layerBindings, gameMode layerBindings) error {
	var (
		valid     = validKeycodes()
		layerTos  []string
		socdPairs = make(map[keycode.Keycode]keycode.Keycode)
		name      string
		bindings  layerBindings
		err       error
	)

	err = validateBindings(base, valid, &layerTos, socdPairs)
	if err != nil {
		return err
	}

	err = validateBindings(gameMode, valid, &layerTos, socdPairs)
	if err != nil {
		return err
	}

	for name, bindings = range layers {
		err = validateBindings(bindings, valid, &layerTos, socdPairs)
		if err != nil {
			return fmt.Errorf("layer %q: %w", name, err)
		}
	}

	for _, name = range layerTos {
		if _, ok := layers[name]; !ok {
			return fmt.Errorf("config.validateBindingSet: layer_to references undeclared layer %q", name)
		}
	}

	for self, opposing := range socdPairs {
		if socdPairs[opposing] != self {
			return fmt.Errorf(
				"config.validateBindingSet: socd pair (%s, %s) is not declared symmetrically", self, opposing,
			)
		}
	}

	return nil
}

func validateBindings(
	bindings layerBindings, valid map[keycode.Keycode]bool, layerTos *[]string, socdPairs map[keycode.Keycode]keycode.Keycode,
) error {
	var (
		name string
		a    yamlAction
	)

	for name, a = range bindings {
		if !valid[keycode.Keycode(name)] {
			return fmt.Errorf("config.validateBindings: %q is not a known keycode", name)
		}

		switch {
		case a.key != "":
			if !valid[keycode.Keycode(a.key)] {
				return fmt.Errorf("config.validateBindings: %q is not a known keycode", a.key)
			}
		case a.HomeRow != nil:
			if !valid[keycode.Keycode(a.HomeRow.Tap)] || !valid[keycode.Keycode(a.HomeRow.Hold)] {
				return fmt.Errorf("config.validateBindings: home_row on %q names an unknown keycode", name)
			}
		case a.Overload != nil:
			if !valid[keycode.Keycode(a.Overload.Tap)] || !valid[keycode.Keycode(a.Overload.Hold)] {
				return fmt.Errorf("config.validateBindings: overload on %q names an unknown keycode", name)
			}
		case a.LayerTo != "":
			*layerTos = append(*layerTos, a.LayerTo)
		case a.Socd != nil:
			if !valid[keycode.Keycode(a.Socd.Opposing)] {
				return fmt.Errorf("config.validateBindings: socd on %q names an unknown keycode", name)
			}

			socdPairs[keycode.Keycode(name)] = keycode.Keycode(a.Socd.Opposing)
		case a.Command != "":
			// any non-empty shell command is accepted as-is.
		default:
			return fmt.Errorf("config.validateBindings: %q has no recognized action", name)
		}
	}

	return nil
}

func validKeycodes() map[keycode.Keycode]bool {
	var (
		translator = keycode.NewTranslator()
		set        = make(map[keycode.Keycode]bool, translator.Len())
		k          keycode.Keycode
	)

	for _, k = range translator.All() {
		set[k] = true
	}

	return set
}

// Effective is the per-device config the Device Engine consumes directly.
// Build derives it by merging the top-level document with a device's
// override section, if any, replacing each overridden section wholesale
// rather than merging key-by-key.
type Effective struct {
	TappingTerm     time.Duration
	DoubleTapWindow time.Duration
	Layers          *keymap.Layers
	SocdPairs       map[keycode.Keycode]*socd.Pair
}

// Build derives the Effective config for one device identity from s.
func (s *Snapshot) Build(deviceIdentity string) *Effective {
	var (
		tappingTerm, doubleTapWindow = s.doc.TappingTermMs, s.doc.DoubleTapWindowMs
		base, gameMode               = s.doc.Base, s.doc.GameMode
		layers                       = s.doc.Layers
		override, ok                 = s.doc.Devices[deviceIdentity]
	)

	if ok {
		if override.TappingTermMs != nil {
			tappingTerm = *override.TappingTermMs
		}

		if override.DoubleTapWindowMs != nil {
			doubleTapWindow = *override.DoubleTapWindowMs
		}

		if override.Base != nil {
			base = override.Base
		}

		if override.Layers != nil {
			layers = override.Layers
		}

		if override.GameMode != nil {
			gameMode = override.GameMode
		}
	}

	return buildEffective(tappingTerm, doubleTapWindow, base, layers, gameMode)
}

func buildEffective(
	tappingTermMs, doubleTapWindowMs int, base layerBindings, layers map[string]layerBindings, gameMode layerBindings,
) *Effective {
	var (
		result    = keymap.NewLayers()
		socdPairs = make(map[keycode.Keycode]*socd.Pair)
		name      string
		bindings  layerBindings
	)

	bindLayer(result.Base, base, socdPairs)
	bindLayer(result.GameMode, gameMode, socdPairs)

	for name, bindings = range layers {
		layer := keymap.NewLayer(name)
		bindLayer(layer, bindings, socdPairs)
		result.ByName[name] = layer
	}

	return &Effective{
		TappingTerm:     time.Duration(tappingTermMs) * time.Millisecond,
		DoubleTapWindow: time.Duration(doubleTapWindowMs) * time.Millisecond,
		Layers:          result,
		SocdPairs:       socdPairs,
	}
}

func bindLayer(layer *keymap.Layer, bindings layerBindings, socdPairs map[keycode.Keycode]*socd.Pair) {
	var (
		name string
		a    yamlAction
		self keycode.Keycode
	)

	for name, a = range bindings {
		self = keycode.Keycode(name)

		switch {
		case a.key != "":
			layer.Bind(self, keymap.Action{Kind: keymap.KeyAction, Key: keycode.Keycode(a.key)})
		case a.HomeRow != nil:
			layer.Bind(self, keymap.Action{
				Kind: keymap.HomeRowAction,
				Tap:  keycode.Keycode(a.HomeRow.Tap),
				Hold: keycode.Keycode(a.HomeRow.Hold),
			})
		case a.Overload != nil:
			layer.Bind(self, keymap.Action{
				Kind: keymap.OverloadAction,
				Tap:  keycode.Keycode(a.Overload.Tap),
				Hold: keycode.Keycode(a.Overload.Hold),
			})
		case a.LayerTo != "":
			layer.Bind(self, keymap.Action{Kind: keymap.LayerToAction, Layer: a.LayerTo})
		case a.Socd != nil:
			opposing := keycode.Keycode(a.Socd.Opposing)

			pair, ok := socdPairs[self]
			if !ok {
				pair, ok = socdPairs[opposing]
			}

			if !ok {
				pair = socd.NewPair(self, opposing)
			}

			socdPairs[self] = pair
			socdPairs[opposing] = pair

			layer.Bind(self, keymap.Action{Kind: keymap.SocdAction, Self: self, Opposing: opposing})
		case a.Command != "":
			layer.Bind(self, keymap.Action{Kind: keymap.CommandAction, Command: a.Command})
		}
	}
}
