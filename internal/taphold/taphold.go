// Package taphold drives the per-key tap/hold state machines: HomeRow
// (permissive hold) and Overload (pure timing), including the
// double-tap-to-hold-tap-key edge case.
package taphold

import (
	"sort"
	"time"

	"github.com/andrieee44/keyremapd/keycode"
)

// Variant selects which resolution rule governs a Pending slot's
// interaction with other keys.
type Variant int

const (
	// HomeRow resolves to Hold immediately when any other key is
	// pressed while the slot is Pending.
	HomeRow Variant = iota

	// Overload only resolves on timeout or release; other key presses
	// pass through without forcing resolution.
	Overload
)

// Phase is the current state of a Slot's tap/hold resolution.
type Phase int

const (
	// Idle means no physical press is outstanding for this slot's key.
	Idle Phase = iota

	// Pending means the key is down and not yet resolved to tap or hold.
	Pending

	// ResolvedTap means the slot emitted its tap and awaits destruction.
	ResolvedTap

	// ResolvedHold means the slot emitted a hold press and awaits the
	// matching release.
	ResolvedHold

	// DoubleTapHold means a double-tap armed the slot to hold the tap
	// key itself until release.
	DoubleTapHold
)

// Emission is one logical press or release the engine should enqueue.
type Emission struct {
	Key   keycode.Keycode
	State keycode.State
}

// Slot is the per-physical-key ephemeral tap/hold state described in the
// data model: created on press of a tap/hold-bound key, destroyed on its
// release. With double-tap enabled, a release that produced a tap leaves
// an Idle slot behind instead, recording LastTapAt for the next press.
type Slot struct {
	Variant    Variant
	Tap        Keycode
	Hold       Keycode
	Phase      Phase
	PressedAt  time.Time
	LastTapAt  time.Time
	hasLastTap bool
}

// Keycode is a local alias so Slot's field doc comments read naturally;
// it is identical to keycode.Keycode.
type Keycode = keycode.Keycode

// Engine tracks one Slot per physical key currently down under a
// HomeRow/Overload binding (plus, with double-tap enabled, the Idle slots
// left by tap releases), and the shared timing parameters.
type Engine struct {
	tappingTerm     time.Duration
	doubleTapWindow time.Duration
	slots           map[keycode.Keycode]*Slot
}

// NewEngine builds an Engine from the config's tapping_term_ms and
// double_tap_window_ms. A zero doubleTapWindow disables double-tap-hold
// entirely.
func NewEngine(tappingTerm, doubleTapWindow time.Duration) *Engine {
	return &Engine{
		tappingTerm:     tappingTerm,
		doubleTapWindow: doubleTapWindow,
		slots:           make(map[keycode.Keycode]*Slot),
	}
}

// Press starts a new Pending slot for physicalKey bound to a HomeRow or
// Overload action, or — if a double-tap is armed for this key — resolves
// straight to DoubleTapHold. Any other currently-Pending HomeRow slots
// are forced to Hold first, in press order, per the ordering rule in
// the tap/hold design: the modifier press of a forced slot's hold must
// precede the emissions this press produces.
func (e *Engine) Press(physicalKey, tap, hold keycode.Keycode, variant Variant, now time.Time) []Emission {
	var (
		slot      *Slot
		emissions []Emission
		ok        bool
	)

	slot, ok = e.slots[physicalKey]
	if ok && slot.hasLastTap && now.Sub(slot.LastTapAt) <= e.doubleTapWindow && e.doubleTapWindow > 0 {
		emissions = append(emissions, e.forcePendingHomeRow(now)...)

		slot.Phase = DoubleTapHold
		slot.PressedAt = now
		emissions = append(emissions, Emission{Key: tap, State: keycode.Press})

		return emissions
	}

	emissions = append(emissions, e.forcePendingHomeRow(now)...)

	slot = &Slot{
		Variant:   variant,
		Tap:       tap,
		Hold:      hold,
		Phase:     Pending,
		PressedAt: now,
	}
	e.slots[physicalKey] = slot

	if e.tappingTerm <= 0 {
		emissions = append(emissions, e.resolveHold(physicalKey, slot)...)
	}

	return emissions
}

// OtherKeyPressed notifies the Engine that some key other than a
// Pending slot's own physical key was just pressed. Any HomeRow slots
// currently Pending are forced to Hold, in insertion (press) order.
// Overload slots are left untouched: they resolve only on timeout or
// release.
func (e *Engine) OtherKeyPressed(now time.Time) []Emission {
	return e.forcePendingHomeRow(now)
}

// Tick force-resolves every Pending slot whose tapping term has
// elapsed as of now, and returns the hold-press emissions produced.
// The Device Engine calls this once per loop tick after computing a
// deadline from NextDeadline.
func (e *Engine) Tick(now time.Time) []Emission {
	var (
		emissions []Emission
		keys      []keycode.Keycode
		key       keycode.Keycode
		slot      *Slot
	)

	for key, slot = range e.slots {
		if slot.Phase != Pending {
			continue
		}

		if now.Sub(slot.PressedAt) < e.tappingTerm {
			continue
		}

		keys = append(keys, key)
	}

	sortByPressOrder(keys, e.slots)

	for _, key = range keys {
		emissions = append(emissions, e.resolveHold(key, e.slots[key])...)
	}

	return emissions
}

// Release resolves the slot for physicalKey according to its current
// phase and destroys it, except that a Pending slot released with
// double-tap enabled is replaced by an Idle slot recording the tap time.
// It is a no-op if no slot exists for the key.
func (e *Engine) Release(physicalKey keycode.Keycode, now time.Time) []Emission {
	var (
		slot      *Slot
		emissions []Emission
		ok        bool
	)

	slot, ok = e.slots[physicalKey]
	if !ok {
		return nil
	}

	switch slot.Phase {
	case Pending:
		emissions = append(emissions,
			Emission{Key: slot.Tap, State: keycode.Press},
			Emission{Key: slot.Tap, State: keycode.Release},
		)

		if e.doubleTapWindow > 0 {
			e.slots[physicalKey] = &Slot{
				Tap:        slot.Tap,
				Hold:       slot.Hold,
				Variant:    slot.Variant,
				Phase:      Idle,
				LastTapAt:  now,
				hasLastTap: true,
			}
		} else {
			delete(e.slots, physicalKey)
		}
	case ResolvedHold:
		emissions = append(emissions, Emission{Key: slot.Hold, State: keycode.Release})
		delete(e.slots, physicalKey)
	case DoubleTapHold:
		emissions = append(emissions, Emission{Key: slot.Tap, State: keycode.Release})
		delete(e.slots, physicalKey)
	default:
		delete(e.slots, physicalKey)
	}

	return emissions
}

// NextDeadline reports the nearest Pending slot's timeout (its press time
// plus the tapping term), if any; now is not consulted. The Device Engine uses this to bound its blocking
// read so expired slots are force-resolved promptly instead of waiting
// for the next physical event.
func (e *Engine) NextDeadline(now time.Time) (time.Time, bool) {
	var (
		deadline time.Time
		have     bool
		slot     *Slot
	)

	for _, slot = range e.slots {
		if slot.Phase != Pending {
			continue
		}

		candidate := slot.PressedAt.Add(e.tappingTerm)
		if !have || candidate.Before(deadline) {
			deadline, have = candidate, true
		}
	}

	return deadline, have
}

func (e *Engine) forcePendingHomeRow(now time.Time) []Emission {
	var (
		emissions []Emission
		keys      []keycode.Keycode
		key       keycode.Keycode
	)

	for key, slot := range e.slots {
		if slot.Phase != Pending || slot.Variant != HomeRow {
			continue
		}

		keys = append(keys, key)
	}

	sortByPressOrder(keys, e.slots)

	for _, key = range keys {
		emissions = append(emissions, e.resolveHold(key, e.slots[key])...)
	}

	return emissions
}

// sortByPressOrder orders keys by ascending PressedAt, so forced
// resolutions happen in the order their slots were created, as required
// when multiple Pending slots are forced by the same triggering press.
func sortByPressOrder(keys []keycode.Keycode, slots map[keycode.Keycode]*Slot) {
	sort.Slice(keys, func(i, j int) bool {
		return slots[keys[i]].PressedAt.Before(slots[keys[j]].PressedAt)
	})
}

func (e *Engine) resolveHold(key keycode.Keycode, slot *Slot) []Emission {
	slot.Phase = ResolvedHold
	e.slots[key] = slot

	return []Emission{{Key: slot.Hold, State: keycode.Press}}
}
