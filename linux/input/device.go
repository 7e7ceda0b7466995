//go:build linux

package input

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andrieee44/keyremapd/linux/ioctl"
	"golang.org/x/sys/unix"
)

// Device represents an evdev input device.
// It wraps the opened /dev/input/eventN file.
type Device struct {
	file *os.File
	fd   uintptr
	path string
}

// NewDevice opens the evdev device at the given path and returns a Device.
// The path is cleaned before opening, and the device file is opened
// in read-write mode. The caller is responsible for closing the device
// when no longer needed.
func NewDevice(path string) (*Device, error) {
	var (
		device *Device
		file   *os.File
		err    error
	)

	file, err = os.OpenFile(filepath.Clean(path), os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("input.NewDevice: %w", err)
	}

	device = &Device{
		file: file,
		path: path,
	}

	// SyscallConn rather than Fd: Fd switches the descriptor to blocking
	// mode, after which read deadlines no longer take effect.
	rawConn, err := file.SyscallConn()
	if err == nil {
		err = rawConn.Control(func(fd uintptr) { device.fd = fd })
	}

	if err != nil {
		file.Close()

		return nil, fmt.Errorf("input.NewDevice: %w", err)
	}

	return device, nil
}

// Devices scans /dev/input for event devices, opens each one, and
// returns a slice of Device pointers. If any device fails to open,
// an error is returned and no devices are returned.
func Devices() ([]*Device, error) {
	var (
		devices []*Device
		device  *Device
		paths   []string
		path    string
		err     error
	)

	paths, err = filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("input.Devices: %w", err)
	}

	devices = make([]*Device, 0, len(paths))
	for _, path = range paths {
		device, err = NewDevice(path)
		if err != nil {
			return nil, fmt.Errorf("input.Devices: %w", err)
		}

		devices = append(devices, device)
	}

	return devices, nil
}

// Path returns the /dev/input/eventN path this Device was opened from.
func (dev *Device) Path() string {
	return dev.path
}

// Name returns the human-readable name of the evdev device.
// It sends the [EVIOCGNAME] ioctl to read up to 256 bytes and
// converts the null-terminated result into a Go string.
func (dev *Device) Name() (string, error) {
	var (
		buf []byte
		err error
	)

	buf = make([]byte, 256)

	err = ioctl.Any(dev.fd, EVIOCGNAME(256), &buf[0])
	if err != nil {
		return "", fmt.Errorf("Device.Name: %w", err)
	}

	return unix.ByteSliceToString(buf), nil
}

// ID returns the bus/vendor/product/version identifier for this evdev
// device, via the EVIOCGID ioctl.
func (dev *Device) ID() (ID, error) {
	var (
		id  ID
		err error
	)

	err = ioctl.Any(dev.fd, EVIOCGID, &id)
	if err != nil {
		return ID{}, fmt.Errorf("Device.ID: %w", err)
	}

	return id, nil
}

// Events returns a slice of the event types the device supports, leaving
// out EV_REP.
func (dev *Device) Events() ([]EventType, error) {
	var (
		buf       []byte
		events    []EventType
		eventType EventType
		err       error
	)

	buf = make([]byte, (EV_MAX+7)/8)

	err = ioctl.Any(
		dev.fd,
		EVIOCGBIT(0, uint(len(buf))),
		&buf[0],
	)
	if err != nil {
		return nil, fmt.Errorf("Device.Events: %w", err)
	}

	events = make([]EventType, 0, EV_CNT)

	for eventType = range EventType(EV_CNT) {
		if !TestBit(buf, uint(eventType)) {
			continue
		}

		if eventType == EV_REP {
			continue
		}

		events = append(events, eventType)
	}

	return events, nil
}

// Codes returns all supported Code values for the given eventType.
func (dev *Device) Codes(eventType EventType) ([]Code, error) {
	var (
		buf            []byte
		codes          []Code
		maxCodes, code uint
		ok             bool
		err            error
	)

	maxCodes, ok = MaxCodes(eventType)
	if !ok {
		return nil, fmt.Errorf("Device.Codes: %w %d", ErrInvalidEventType, eventType)
	}

	buf = make([]byte, (maxCodes+7)/8)

	err = ioctl.Any(
		dev.fd,
		EVIOCGBIT(uint(eventType), uint(len(buf))),
		&buf[0],
	)
	if err != nil {
		return nil, fmt.Errorf("Device.Codes: %w", err)
	}

	codes = make([]Code, 0, maxCodes+1)

	for code = range maxCodes + 1 {
		if !TestBit(buf, code) {
			continue
		}

		codes = append(codes, Code(code))
	}

	return codes, nil
}

// Grab acquires exclusive access to the device via EVIOCGRAB: once
// grabbed, the kernel stops delivering this device's raw events to any
// other reader (compositor, console, other evdev client) for as long as
// the file descriptor stays open.
func (dev *Device) Grab() error {
	var (
		one uint32 = 1
		err error
	)

	err = ioctl.Any(dev.fd, EVIOCGRAB(), &one)
	if err != nil {
		return fmt.Errorf("Device.Grab: %w", err)
	}

	return nil
}

// Ungrab releases a grab acquired by Grab. It is safe to call even if
// the device was never grabbed.
func (dev *Device) Ungrab() error {
	var err error

	// evdev grabs on any non-NULL argument, so release passes NULL.
	err = ioctl.Any[uint32](dev.fd, EVIOCGRAB(), nil)
	if err != nil {
		return fmt.Errorf("Device.Ungrab: %w", err)
	}

	return nil
}

// eventSize is the on-wire size of a kernel input_event on a 64-bit
// system: two 8-byte timeval fields, then Type, Code (2 bytes each), then
// Value (4 bytes).
const eventSize = 8 + 8 + 2 + 2 + 4

// SetReadDeadline bounds the next ReadEvent call. Device Engines use
// this to implement the "wait for a readable event or for the nearest
// pending tap/hold timeout, whichever is first" poll in spec.md's
// Device Engine loop. A zero deadline disables the timeout.
func (dev *Device) SetReadDeadline(deadline time.Time) error {
	var err error

	err = dev.file.SetReadDeadline(deadline)
	if err != nil {
		return fmt.Errorf("Device.SetReadDeadline: %w", err)
	}

	return nil
}

// ReadEvent blocks until one raw input_event is available or the
// current read deadline elapses. On deadline expiry it returns
// os.ErrDeadlineExceeded, which callers treat as "no event this tick",
// not as device loss.
func (dev *Device) ReadEvent() (Event, error) {
	var (
		buf   [eventSize]byte
		event Event
		err   error
	)

	_, err = readFull(dev.file, buf[:])
	if err != nil {
		return Event{}, err
	}

	event.Sec = binary.LittleEndian.Uint64(buf[0:8])
	event.Usec = binary.LittleEndian.Uint64(buf[8:16])
	event.Type = binary.LittleEndian.Uint16(buf[16:18])
	event.Code = binary.LittleEndian.Uint16(buf[18:20])
	event.Value = int32(binary.LittleEndian.Uint32(buf[20:24]))

	return event, nil
}

// readFull reads exactly len(buf) bytes, the way a single input_event
// read always returns a whole record on evdev character devices.
func readFull(file *os.File, buf []byte) (int, error) {
	var (
		n, total int
		err      error
	)

	for total < len(buf) {
		n, err = file.Read(buf[total:])
		if err != nil {
			return total, err
		}

		total += n
	}

	return total, nil
}

// Close closes the evdev device by closing its underlying file handle.
func (dev *Device) Close() error {
	var err error

	err = dev.file.Close()
	if err != nil {
		return fmt.Errorf("Device.Close: %w", err)
	}

	return nil
}
