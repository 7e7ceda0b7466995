// Package engine implements the Device Engine: the per-device hot loop
// that reads physical key events, resolves them through the keymap,
// tap/hold, and SOCD layers, and re-emits the result on a virtual
// device.
package engine

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/andrieee44/keyremapd/internal/config"
	"github.com/andrieee44/keyremapd/internal/dispatch"
	"github.com/andrieee44/keyremapd/internal/keymap"
	"github.com/andrieee44/keyremapd/internal/socd"
	"github.com/andrieee44/keyremapd/internal/taphold"
	"github.com/andrieee44/keyremapd/keycode"
	"github.com/andrieee44/keyremapd/linux/input"
	"github.com/andrieee44/keyremapd/linux/uinput"
)

// idleTick bounds how long the engine ever blocks on a read with no
// Pending tap/hold slot outstanding, so control-channel messages are
// never delayed by more than one tick.
const idleTick = 20 * time.Millisecond

// ControlKind tags which variant a ControlMsg carries.
type ControlKind int

const (
	// ReloadConfig atomically swaps the engine's effective config at
	// the next loop boundary.
	ReloadConfig ControlKind = iota

	// SetGameMode toggles the game_mode layer.
	SetGameMode

	// Shutdown unwinds the engine: release every held virtual key,
	// ungrab, close both devices, and return.
	Shutdown
)

// ControlMsg is one message sent on an engine's control channel by the
// coordinator. Delivery is at-most-once and drained non-blocking once
// per loop tick.
type ControlMsg struct {
	Kind     ControlKind
	Config   *config.Effective
	GameMode bool
}

// Engine owns one grabbed physical device and its virtual counterpart
// for the lifetime of Run.
type Engine struct {
	deviceIdentity string
	phys           *input.Device
	virt           *uinput.Device
	translator     *keycode.Translator
	dispatcher     *dispatch.Dispatcher
	control        <-chan ControlMsg

	cfg     *config.Effective
	stack   keymap.Stack
	taphold *taphold.Engine
}

// New builds an Engine for one grabbed physical device, its paired
// virtual device, and an initial effective config.
func New(
	deviceIdentity string, phys *input.Device, virt *uinput.Device, translator *keycode.Translator,
	cfg *config.Effective, control <-chan ControlMsg,
) *Engine {
	return &Engine{
		deviceIdentity: deviceIdentity,
		phys:           phys,
		virt:           virt,
		translator:     translator,
		dispatcher:     dispatch.NewDispatcher(deviceIdentity),
		control:        control,
		cfg:            cfg,
		taphold:        taphold.NewEngine(cfg.TappingTerm, cfg.DoubleTapWindow),
	}
}

// Run grabs the physical device, processes events until a Shutdown
// control message arrives or the physical device is lost, then releases
// every held virtual key, ungrabs, and closes both devices. It always
// returns after a clean or unclean shutdown; the caller (the
// coordinator) is responsible for removing this engine's bookkeeping.
func (e *Engine) Run() error {
	var err error

	err = e.phys.Grab()
	if err != nil {
		return fmt.Errorf("engine.Engine.Run: %w", err)
	}

	defer e.shutdown()

	for {
		shutdown, err := e.tick()
		if err != nil {
			log.WithFields(log.Fields{"device": e.deviceIdentity}).Errorf("engine.Engine.Run: %v", err)

			return err
		}

		if shutdown {
			return nil
		}
	}
}

// tick runs one loop iteration: compute a deadline, drain ready
// physical events, force-resolve expired tap/hold slots, drain the
// control channel, and flush the emission buffer as one batch.
func (e *Engine) tick() (bool, error) {
	var (
		now       = time.Now()
		deadline  = now.Add(idleTick)
		batch     uinput.Batch
		shutdown  bool
		err       error
	)

	if next, ok := e.taphold.NextDeadline(now); ok && next.Before(deadline) {
		deadline = next
	}

	err = e.phys.SetReadDeadline(deadline)
	if err != nil {
		return false, fmt.Errorf("engine.Engine.tick: %w", err)
	}

	for {
		event, readErr := e.phys.ReadEvent()
		if readErr != nil {
			if errors.Is(readErr, os.ErrDeadlineExceeded) {
				break
			}

			return false, fmt.Errorf("engine.Engine.tick: %w", readErr)
		}

		batch = append(batch, e.process(event)...)
	}

	batch = append(batch, e.convertTapHold(e.taphold.Tick(time.Now()))...)

	shutdown = e.drainControl()

	if len(batch) > 0 {
		err = e.writeWithRetry(batch)
		if err != nil {
			return false, fmt.Errorf("engine.Engine.tick: %w", err)
		}
	}

	return shutdown, nil
}

// writeWithRetry flushes batch to the virtual device, retrying once on a
// transient error before treating the failure as device loss.
func (e *Engine) writeWithRetry(batch uinput.Batch) error {
	var err error

	err = e.virt.Write(batch)
	if err == nil {
		return nil
	}

	log.WithFields(log.Fields{"device": e.deviceIdentity}).Warnf("engine.Engine.writeWithRetry: %v, retrying once", err)

	err = e.virt.Write(batch)
	if err != nil {
		return fmt.Errorf("engine.Engine.writeWithRetry: retry failed, treating as device loss: %w", err)
	}

	return nil
}

// process translates one raw physical event into zero or more virtual
// emissions. Only key press/release events carry keymap meaning; every
// other event type (including EV_SYN) is a batch delimiter and produces
// no emission of its own.
func (e *Engine) process(event input.Event) uinput.Batch {
	var (
		kc     keycode.Keycode
		ok     bool
		action keymap.Action
		press  bool
	)

	if event.Type != input.EV_KEY {
		return nil
	}

	if event.Value == 2 {
		return nil
	}

	kc, ok = e.translator.In(keycode.OsCode(event.Code))
	if !ok {
		return nil
	}

	press = event.Value == 1
	action = keymap.Resolve(kc, &e.stack, e.cfg.Layers)

	return e.dispatchAction(kc, action, press)
}

func (e *Engine) dispatchAction(physicalKey keycode.Keycode, action keymap.Action, press bool) uinput.Batch {
	var now = time.Now()

	switch action.Kind {
	case keymap.HomeRowAction, keymap.OverloadAction:
		if press {
			variant := taphold.HomeRow
			if action.Kind == keymap.OverloadAction {
				variant = taphold.Overload
			}

			return e.convertTapHold(e.taphold.Press(physicalKey, action.Tap, action.Hold, variant, now))
		}

		return e.convertTapHold(e.taphold.Release(physicalKey, now))

	case keymap.LayerToAction:
		var batch uinput.Batch

		if press {
			batch = e.convertTapHold(e.taphold.OtherKeyPressed(now))
			e.stack.Push(action.Layer)
		} else {
			e.stack.Pop(action.Layer)
		}

		return batch

	case keymap.SocdAction:
		var (
			batch uinput.Batch
			pair  = e.cfg.SocdPairs[physicalKey]
		)

		if pair == nil {
			return nil
		}

		if press {
			batch = e.convertTapHold(e.taphold.OtherKeyPressed(now))
			batch = append(batch, e.convertSocd(pair.Press(physicalKey))...)
		} else {
			batch = e.convertSocd(pair.Release(physicalKey))
		}

		return batch

	case keymap.CommandAction:
		if press {
			batch := e.convertTapHold(e.taphold.OtherKeyPressed(now))
			e.dispatcher.Spawn(action.Command)

			return batch
		}

		return nil

	default:
		var batch uinput.Batch

		if press {
			batch = e.convertTapHold(e.taphold.OtherKeyPressed(now))
		}

		batch = append(batch, uinput.Batch{{Code: input.Code(e.translator.Out(action.Key)), Press: press}}...)

		return batch
	}
}

// drainControl applies every pending control message without blocking
// and reports whether a Shutdown message was observed. A closed control
// channel is treated the same as an explicit Shutdown.
func (e *Engine) drainControl() bool {
	for {
		select {
		case msg, ok := <-e.control:
			if !ok {
				log.WithFields(log.Fields{"device": e.deviceIdentity}).Infof("engine.Engine.drainControl: control channel closed, shutting down")

				return true
			}

			switch msg.Kind {
			case ReloadConfig:
				e.cfg = msg.Config
				e.taphold = taphold.NewEngine(msg.Config.TappingTerm, msg.Config.DoubleTapWindow)
			case SetGameMode:
				e.stack.SetGameMode(msg.GameMode)
			case Shutdown:
				return true
			}
		default:
			return false
		}
	}
}

// shutdown releases every virtual key still held, ungrabs the physical
// device, and closes both devices. It runs on every exit path from Run,
// including a crash of the read loop, so a held-key state never leaks
// past process lifetime.
func (e *Engine) shutdown() {
	var err error

	err = e.virt.ReleaseAll()
	if err != nil {
		log.WithFields(log.Fields{"device": e.deviceIdentity}).Warnf("engine.Engine.shutdown: release all: %v", err)
	}

	err = e.phys.Ungrab()
	if err != nil {
		log.WithFields(log.Fields{"device": e.deviceIdentity}).Warnf("engine.Engine.shutdown: ungrab: %v", err)
	}

	err = e.virt.Close()
	if err != nil {
		log.WithFields(log.Fields{"device": e.deviceIdentity}).Warnf("engine.Engine.shutdown: close virtual: %v", err)
	}

	err = e.phys.Close()
	if err != nil {
		log.WithFields(log.Fields{"device": e.deviceIdentity}).Warnf("engine.Engine.shutdown: close physical: %v", err)
	}
}

// convertTapHold adapts a Tap/Hold Emission slice to a uinput.Batch of
// (OsCode, press) pairs via the engine's translator.
func (e *Engine) convertTapHold(emissions []taphold.Emission) uinput.Batch {
	var batch = make(uinput.Batch, len(emissions))

	for i, em := range emissions {
		batch[i] = struct {
			Code  input.Code
			Press bool
		}{Code: input.Code(e.translator.Out(em.Key)), Press: em.State == keycode.Press}
	}

	return batch
}

// convertSocd adapts a SOCD resolver Emission slice the same way.
func (e *Engine) convertSocd(emissions []socd.Emission) uinput.Batch {
	var batch = make(uinput.Batch, len(emissions))

	for i, em := range emissions {
		batch[i] = struct {
			Code  input.Code
			Press bool
		}{Code: input.Code(e.translator.Out(em.Key)), Press: em.State == keycode.Press}
	}

	return batch
}
