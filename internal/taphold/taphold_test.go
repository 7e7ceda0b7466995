package taphold_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/andrieee44/keyremapd/internal/taphold"
	"github.com/andrieee44/keyremapd/keycode"
)

func at(ms int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
}

func TestPureTap(t *testing.T) {
	var engine *taphold.Engine

	engine = taphold.NewEngine(130*time.Millisecond, 0)

	if got := engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(0)); got != nil {
		t.Fatalf("Press@0 = %v, want nil", got)
	}

	got := engine.Release(keycode.A, at(50))
	want := []taphold.Emission{
		{Key: keycode.A, State: keycode.Press},
		{Key: keycode.A, State: keycode.Release},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Release@50 = %v, want %v", got, want)
	}
}

func TestPureHold(t *testing.T) {
	var engine *taphold.Engine

	engine = taphold.NewEngine(130*time.Millisecond, 0)

	engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(0))

	got := engine.Tick(at(130))
	want := []taphold.Emission{{Key: keycode.LeftSuper, State: keycode.Press}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tick@130 = %v, want %v", got, want)
	}

	got = engine.Release(keycode.A, at(200))
	want = []taphold.Emission{{Key: keycode.LeftSuper, State: keycode.Release}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Release@200 = %v, want %v", got, want)
	}
}

func TestPermissiveHoldForcesOnOtherKey(t *testing.T) {
	var engine *taphold.Engine

	engine = taphold.NewEngine(130*time.Millisecond, 0)

	engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(0))

	got := engine.OtherKeyPressed(at(40))
	want := []taphold.Emission{{Key: keycode.LeftSuper, State: keycode.Press}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("OtherKeyPressed@40 = %v, want %v", got, want)
	}

	got = engine.Release(keycode.A, at(100))
	want = []taphold.Emission{{Key: keycode.LeftSuper, State: keycode.Release}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Release@100 = %v, want %v", got, want)
	}
}

func TestOverloadDoesNotForceOnOtherKey(t *testing.T) {
	var engine *taphold.Engine

	engine = taphold.NewEngine(130*time.Millisecond, 0)

	engine.Press(keycode.A, keycode.A, keycode.LeftCtrl, taphold.Overload, at(0))

	if got := engine.OtherKeyPressed(at(40)); got != nil {
		t.Fatalf("OtherKeyPressed@40 = %v, want nil", got)
	}

	got := engine.Release(keycode.A, at(100))
	want := []taphold.Emission{
		{Key: keycode.A, State: keycode.Press},
		{Key: keycode.A, State: keycode.Release},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Release@100 = %v, want %v", got, want)
	}
}

func TestDoubleTapHold(t *testing.T) {
	var engine *taphold.Engine

	engine = taphold.NewEngine(130*time.Millisecond, 300*time.Millisecond)

	engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(0))

	got := engine.Release(keycode.A, at(50))
	want := []taphold.Emission{
		{Key: keycode.A, State: keycode.Press},
		{Key: keycode.A, State: keycode.Release},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Release@50 = %v, want %v", got, want)
	}

	got = engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(100))
	want = []taphold.Emission{{Key: keycode.A, State: keycode.Press}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Press@100 = %v, want %v", got, want)
	}

	got = engine.Release(keycode.A, at(500))
	want = []taphold.Emission{{Key: keycode.A, State: keycode.Release}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Release@500 = %v, want %v", got, want)
	}
}

func TestDoubleTapWindowBoundary(t *testing.T) {
	var engine *taphold.Engine

	engine = taphold.NewEngine(130*time.Millisecond, 300*time.Millisecond)

	engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(0))
	engine.Release(keycode.A, at(50))

	// double_tap_window_ms + 1 after the tap-producing release must not
	// engage DoubleTapHold: a fresh Pending slot starts instead.
	got := engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(50+300+1))
	if got != nil {
		t.Fatalf("Press@351 = %v, want nil (fresh Pending, not DoubleTapHold)", got)
	}
}

func TestTappingTermZeroResolvesImmediately(t *testing.T) {
	var engine *taphold.Engine

	engine = taphold.NewEngine(0, 0)

	got := engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(0))
	want := []taphold.Emission{{Key: keycode.LeftSuper, State: keycode.Press}}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Press@0 with zero tapping term = %v, want %v", got, want)
	}
}

func TestMultiplePendingsForcedInPressOrder(t *testing.T) {
	var engine *taphold.Engine

	engine = taphold.NewEngine(130*time.Millisecond, 0)

	engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.HomeRow, at(0))

	// Pressing S forces the Pending A to Hold before S starts its own
	// Pending slot, which the later other-key press then forces in turn.
	got := engine.Press(keycode.S, keycode.S, keycode.LeftAlt, taphold.HomeRow, at(10))
	got = append(got, engine.OtherKeyPressed(at(20))...)
	want := []taphold.Emission{
		{Key: keycode.LeftSuper, State: keycode.Press},
		{Key: keycode.LeftAlt, State: keycode.Press},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Press@10 then OtherKeyPressed@20 = %v, want %v", got, want)
	}
}

func TestNextDeadlineTracksNearestPending(t *testing.T) {
	var (
		engine   *taphold.Engine
		deadline time.Time
		ok       bool
	)

	engine = taphold.NewEngine(130*time.Millisecond, 0)

	if _, ok = engine.NextDeadline(at(0)); ok {
		t.Fatalf("NextDeadline with no slots = ok, want none")
	}

	engine.Press(keycode.A, keycode.A, keycode.LeftSuper, taphold.Overload, at(0))
	engine.Press(keycode.S, keycode.S, keycode.LeftAlt, taphold.Overload, at(10))

	deadline, ok = engine.NextDeadline(at(20))
	if !ok {
		t.Fatalf("NextDeadline = none, want the A slot's deadline")
	}

	if want := at(130); !deadline.Equal(want) {
		t.Fatalf("NextDeadline = %v, want %v", deadline, want)
	}
}
