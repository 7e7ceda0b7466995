//go:build linux

// Package uinput implements the userspace api in [uinput.h] in the Linux
// kernel: creating a virtual input device, advertising its capability
// mask, and writing batched key events to it.
//
// [uinput.h]: https://github.com/torvalds/linux/blob/master/include/uapi/linux/uinput.h
package uinput

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/andrieee44/keyremapd/linux/input"
	"github.com/andrieee44/keyremapd/linux/ioctl"
	"golang.org/x/sys/unix"
)

const maxNameSize = 80

// setup mirrors struct uinput_setup, the argument to [UI_DEV_SETUP].
type setup struct {
	ID           input.ID
	Name         [maxNameSize]byte
	FFEffectsMax uint32
}

var (
	// uiDevCreate is the ioctl request code that instantiates the
	// virtual device from the capabilities set so far.
	uiDevCreate = ioctl.IO('U', 1)

	// uiDevDestroy is the ioctl request code that tears down a created
	// virtual device.
	uiDevDestroy = ioctl.IO('U', 2)

	// uiDevSetup is the ioctl request code that writes device identity
	// and name before creation.
	uiDevSetup = ioctl.IOW('U', 3, setup{})

	// uiSetEvBit is the ioctl request code that enables one EV_* event
	// type's bit. Unlike most ioctls in this codebase, its argument is
	// passed by value, not by pointer, so it cannot go through
	// [ioctl.Any].
	uiSetEvBit = ioctl.IOW('U', 100, int32(0))

	// uiSetKeyBit is the ioctl request code that enables one KEY_* code
	// in the device's key bitmask. Also a by-value argument.
	uiSetKeyBit = ioctl.IOW('U', 101, int32(0))
)

// Device is a virtual input device created through /dev/uinput. It
// tracks which OsCodes it has emitted a press for but not yet released,
// so a shutdown path can release everything still held without the
// caller keeping its own bookkeeping.
type Device struct {
	file *os.File
	fd   uintptr
	mu   sync.Mutex
	held map[input.Code]bool
}

// Open creates a virtual keyboard named name advertising exactly the
// given evdev key codes, then instantiates it with UI_DEV_CREATE. The
// codes slice should cover every keycode the effective config can
// possibly produce, per the external-interface contract that the
// virtual device must advertise its full emitted-keycode capability
// mask at creation.
func Open(name string, codes []input.Code) (*Device, error) {
	var (
		dev  *Device
		file *os.File
		code input.Code
		s    setup
		err  error
	)

	file, err = os.OpenFile("/dev/uinput", os.O_WRONLY|os.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("uinput.Open: %w", err)
	}

	dev = &Device{
		file: file,
		fd:   file.Fd(),
		held: make(map[input.Code]bool),
	}

	err = ioctlValue(dev.fd, uiSetEvBit, uintptr(input.EV_KEY))
	if err != nil {
		file.Close()

		return nil, fmt.Errorf("uinput.Open: UI_SET_EVBIT: %w", err)
	}

	for _, code = range codes {
		err = ioctlValue(dev.fd, uiSetKeyBit, uintptr(code))
		if err != nil {
			file.Close()

			return nil, fmt.Errorf("uinput.Open: UI_SET_KEYBIT %d: %w", code, err)
		}
	}

	s.ID = input.ID{Bustype: input.BUS_VIRTUAL, Vendor: 0x1209, Product: 0x0001, Version: 1}
	copy(s.Name[:], name)

	err = ioctl.Any(dev.fd, uiDevSetup, &s)
	if err != nil {
		file.Close()

		return nil, fmt.Errorf("uinput.Open: UI_DEV_SETUP: %w", err)
	}

	err = ioctlValue(dev.fd, uiDevCreate, 0)
	if err != nil {
		file.Close()

		return nil, fmt.Errorf("uinput.Open: UI_DEV_CREATE: %w", err)
	}

	return dev, nil
}

// ioctlValue performs an ioctl whose argument is passed by value rather
// than by pointer, which [ioctl.Any] cannot express.
func ioctlValue(fd uintptr, req uint, val uintptr) error {
	var errno syscall.Errno

	_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), val)
	if errno != 0 {
		return errno
	}

	return nil
}

// Batch is an ordered set of press/release events to flush as one
// write, per the external interface's "every logical press/release must
// be followed by a synchronization event" rule: Write appends a single
// SYN_REPORT after the whole batch.
type Batch []struct {
	Code  input.Code
	Press bool
}

// Write flushes batch as one write syscall followed by a single
// SYN_REPORT, and updates the held-set so ReleaseAll can later restore
// a clean virtual keyboard state.
func (d *Device) Write(batch Batch) error {
	var (
		buf []byte
		i   int
		err error
	)

	if len(batch) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	buf = make([]byte, 0, (len(batch)+1)*eventSize)

	for i = 0; i < len(batch); i++ {
		buf = appendEvent(buf, input.EV_KEY, uint16(batch[i].Code), pressValue(batch[i].Press))
		d.held[batch[i].Code] = batch[i].Press
	}

	buf = appendEvent(buf, input.EV_SYN, input.SYN_REPORT, 0)

	_, err = d.file.Write(buf)
	if err != nil {
		return fmt.Errorf("uinput.Device.Write: %w", err)
	}

	return nil
}

// ReleaseAll writes a release for every code currently tracked as held,
// for use on shutdown and ungrab so no key is left stuck pressed on the
// virtual device.
func (d *Device) ReleaseAll() error {
	var (
		batch Batch
		code  input.Code
		down  bool
	)

	d.mu.Lock()
	for code, down = range d.held {
		if down {
			batch = append(batch, struct {
				Code  input.Code
				Press bool
			}{Code: code, Press: false})
		}
	}
	d.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	return d.Write(batch)
}

// Close destroys the virtual device and closes its file handle. Callers
// should call ReleaseAll first so the held-set invariant holds across
// shutdown.
func (d *Device) Close() error {
	var err error

	ioctlValue(d.fd, uiDevDestroy, 0)

	err = d.file.Close()
	if err != nil {
		return fmt.Errorf("uinput.Device.Close: %w", err)
	}

	return nil
}

const eventSize = 8 + 8 + 2 + 2 + 4

func appendEvent(buf []byte, eventType input.EventType, code uint16, value int32) []byte {
	var event [eventSize]byte

	binary.LittleEndian.PutUint16(event[16:18], uint16(eventType))
	binary.LittleEndian.PutUint16(event[18:20], code)
	binary.LittleEndian.PutUint32(event[20:24], uint32(value))

	return append(buf, event[:]...)
}

func pressValue(press bool) int32 {
	if press {
		return 1
	}

	return 0
}
