//go:build linux

package devwatch

import (
	"testing"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

func ptr(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(&buf[0])
}

func TestDispatchReportsOnlyEventNodes(t *testing.T) {
	var (
		w   = &Watcher{events: make(chan Event, 8)}
		buf = encodeRecord(unix.IN_CREATE, "event3")
	)

	buf = append(buf, encodeRecord(unix.IN_CREATE, "mice")...)
	buf = append(buf, encodeRecord(unix.IN_DELETE, "event3")...)

	go w.dispatch(buf)

	var got []Event

	for i := 0; i < 2; i++ {
		select {
		case ev := <-w.events:
			got = append(got, ev)
		case <-time.After(time.Second):
			t.Fatalf("dispatch: timed out waiting for event %d", i)
		}
	}

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2 (mice filtered out)", len(got))
	}

	if got[0].Path != "/dev/input/event3" || !got[0].Exists {
		t.Fatalf("got[0] = %+v, want event3 create", got[0])
	}

	if got[1].Path != "/dev/input/event3" || got[1].Exists {
		t.Fatalf("got[1] = %+v, want event3 delete", got[1])
	}
}

func encodeRecord(mask uint32, name string) []byte {
	var (
		nameLen = uint32(len(name) + 1)
		buf     = make([]byte, unix.SizeofInotifyEvent+int(nameLen))
		raw     = unix.InotifyEvent{Wd: 1, Mask: mask, Cookie: 0, Len: nameLen}
	)

	*(*unix.InotifyEvent)(ptr(buf)) = raw
	copy(buf[unix.SizeofInotifyEvent:], name)

	return buf
}
