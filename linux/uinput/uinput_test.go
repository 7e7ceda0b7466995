//go:build linux

package uinput

import (
	"encoding/binary"
	"testing"

	"github.com/andrieee44/keyremapd/linux/input"
)

// These expected values are the literal UI_* ioctl request codes from the
// uinput.h kernel header; computing them via ioctl.IO/IOW must match.
func TestIoctlRequestCodesMatchKernelHeader(t *testing.T) {
	var cases = []struct {
		name string
		got  uint
		want uint
	}{
		{"UI_DEV_CREATE", uiDevCreate, 0x5501},
		{"UI_DEV_DESTROY", uiDevDestroy, 0x5502},
		{"UI_DEV_SETUP", uiDevSetup, 0x405c5503},
		{"UI_SET_EVBIT", uiSetEvBit, 0x40045564},
		{"UI_SET_KEYBIT", uiSetKeyBit, 0x40045565},
	}

	for _, tt := range cases {
		if tt.got != tt.want {
			t.Errorf("%s = 0x%x, want 0x%x", tt.name, tt.got, tt.want)
		}
	}
}

func TestAppendEventEncodesFields(t *testing.T) {
	var buf []byte

	buf = appendEvent(nil, input.EV_KEY, uint16(input.KEY_A), 1)

	if len(buf) != eventSize {
		t.Fatalf("len(buf) = %d, want %d", len(buf), eventSize)
	}

	if got := binary.LittleEndian.Uint16(buf[16:18]); got != input.EV_KEY {
		t.Errorf("type = %d, want %d", got, input.EV_KEY)
	}

	if got := binary.LittleEndian.Uint16(buf[18:20]); got != uint16(input.KEY_A) {
		t.Errorf("code = %d, want %d", got, input.KEY_A)
	}

	if got := int32(binary.LittleEndian.Uint32(buf[20:24])); got != 1 {
		t.Errorf("value = %d, want 1", got)
	}
}

func TestAppendEventAppendsToExistingBuffer(t *testing.T) {
	var buf []byte

	buf = appendEvent(buf, input.EV_KEY, uint16(input.KEY_A), 1)
	buf = appendEvent(buf, input.EV_SYN, input.SYN_REPORT, 0)

	if len(buf) != 2*eventSize {
		t.Fatalf("len(buf) = %d, want %d", len(buf), 2*eventSize)
	}
}

func TestPressValue(t *testing.T) {
	if pressValue(true) != 1 {
		t.Errorf("pressValue(true) = %d, want 1", pressValue(true))
	}

	if pressValue(false) != 0 {
		t.Errorf("pressValue(false) = %d, want 0", pressValue(false))
	}
}
