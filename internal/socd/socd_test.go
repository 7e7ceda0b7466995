package socd_test

import (
	"reflect"
	"testing"

	"github.com/andrieee44/keyremapd/internal/socd"
	"github.com/andrieee44/keyremapd/keycode"
)

func TestPairLastInputPriority(t *testing.T) {
	var (
		pair   *socd.Pair
		got    []socd.Emission
		events []socd.Emission
	)

	pair = socd.NewPair(keycode.W, keycode.S)

	events = pair.Press(keycode.W)
	want := []socd.Emission{{Key: keycode.W, State: keycode.Press}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("Press(W) = %v, want %v", events, want)
	}

	events = pair.Press(keycode.S)
	want = []socd.Emission{
		{Key: keycode.W, State: keycode.Release},
		{Key: keycode.S, State: keycode.Press},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("Press(S) = %v, want %v", events, want)
	}

	got = pair.Release(keycode.S)
	want = []socd.Emission{
		{Key: keycode.S, State: keycode.Release},
		{Key: keycode.W, State: keycode.Press},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Release(S) = %v, want %v", got, want)
	}

	got = pair.Release(keycode.W)
	want = []socd.Emission{{Key: keycode.W, State: keycode.Release}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Release(W) = %v, want %v", got, want)
	}

}

func TestPairNoChangeEmitsNothing(t *testing.T) {
	var pair *socd.Pair

	pair = socd.NewPair(keycode.A, keycode.D)

	pair.Press(keycode.A)

	if got := pair.Press(keycode.A); got != nil {
		t.Fatalf("repeated Press(A) = %v, want nil", got)
	}
}

func TestPairIndependentOfOtherKeys(t *testing.T) {
	var pair *socd.Pair

	pair = socd.NewPair(keycode.A, keycode.D)

	if got := pair.Press(keycode.W); got != nil {
		t.Fatalf("Press(W) on unrelated pair = %v, want nil", got)
	}
}
