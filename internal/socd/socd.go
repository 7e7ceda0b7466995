// Package socd resolves Simultaneous Opposite Cardinal Direction pairs
// under last-input priority: of two opposing keys, the side pressed most
// recently is the one that stays active on the virtual device.
package socd

import "github.com/andrieee44/keyremapd/keycode"

// Emission is one logical press or release the resolver wants written to
// the virtual device.
type Emission struct {
	Key   keycode.Keycode
	State keycode.State
}

// Pair holds the live state for one declared opposing pair. It is built
// at engine start (and rebuilt on reload) from the effective config's
// Socd bindings, indexed by both of its keys.
type Pair struct {
	A, B         keycode.Keycode
	aHeld, bHeld bool
	lastInput    keycode.Keycode
	active       keycode.Keycode
	hasActive    bool
}

// NewPair builds an idle pair for the two sides of a declared Socd(a, b)
// / Socd(b, a) binding.
func NewPair(a, b keycode.Keycode) *Pair {
	return &Pair{A: a, B: b}
}

// Press updates the pair state for a physical press of key k, which must
// be one of p.A or p.B, and returns the emissions required to keep the
// virtual device's active side in sync.
func (p *Pair) Press(k keycode.Keycode) []Emission {
	switch k {
	case p.A:
		p.aHeld = true
	case p.B:
		p.bHeld = true
	default:
		return nil
	}

	p.lastInput = k

	return p.reconcile()
}

// Release updates the pair state for a physical release of key k and
// returns the emissions required to keep the virtual device's active
// side in sync. last_input is left unchanged on release, per spec.
func (p *Pair) Release(k keycode.Keycode) []Emission {
	switch k {
	case p.A:
		p.aHeld = false
	case p.B:
		p.bHeld = false
	default:
		return nil
	}

	return p.reconcile()
}

// reconcile computes new_active from the current held flags and
// last_input, and emits a release of the old active side followed by a
// press of the new one whenever the active side changes.
func (p *Pair) reconcile() []Emission {
	var (
		newActive    keycode.Keycode
		hasNewActive bool
		emissions    []Emission
	)

	switch {
	case p.aHeld && p.bHeld:
		newActive, hasNewActive = p.lastInput, true
	case p.aHeld:
		newActive, hasNewActive = p.A, true
	case p.bHeld:
		newActive, hasNewActive = p.B, true
	default:
		hasNewActive = false
	}

	if hasNewActive == p.hasActive && (!hasNewActive || newActive == p.active) {
		return nil
	}

	if p.hasActive {
		emissions = append(emissions, Emission{Key: p.active, State: keycode.Release})
	}

	if hasNewActive {
		emissions = append(emissions, Emission{Key: newActive, State: keycode.Press})
	}

	p.active, p.hasActive = newActive, hasNewActive

	return emissions
}
