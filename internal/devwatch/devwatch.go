//go:build linux

// Package devwatch discovers /dev/input/event* nodes at startup and
// reports later additions and removals by watching the directory with
// inotify, the same raw golang.org/x/sys/unix style the linux/input and
// linux/uinput packages use for ioctl calls.
package devwatch

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	log "github.com/sirupsen/logrus"
)

const watchDir = "/dev/input"

// settleDelay absorbs the burst of inotify events udev produces while it
// is still chmod'ing a freshly created node; without it a newly seen
// path can fail to open with a permission error.
const settleDelay = 200 * time.Millisecond

// Event reports one node appearing or disappearing under /dev/input.
type Event struct {
	Path   string
	Exists bool
}

// Watcher owns one inotify file descriptor watching /dev/input.
type Watcher struct {
	fd      int
	wd      int
	events  chan Event
	closeCh chan struct{}
}

// New opens an inotify watch on /dev/input and returns the current set
// of event* node paths already present.
func New() (*Watcher, []string, error) {
	var (
		fd      int
		wd      int
		entries []string
		err     error
	)

	fd, err = unix.InotifyInit1(unix.IN_NONBLOCK)
	if err != nil {
		return nil, nil, fmt.Errorf("devwatch.New: %w", err)
	}

	wd, err = unix.InotifyAddWatch(fd, watchDir, unix.IN_CREATE|unix.IN_DELETE|unix.IN_MOVED_TO|unix.IN_MOVED_FROM)
	if err != nil {
		unix.Close(fd)

		return nil, nil, fmt.Errorf("devwatch.New: %w", err)
	}

	entries, err = filepath.Glob(filepath.Join(watchDir, "event*"))
	if err != nil {
		unix.Close(fd)

		return nil, nil, fmt.Errorf("devwatch.New: %w", err)
	}

	return &Watcher{fd: fd, wd: wd, events: make(chan Event, 16), closeCh: make(chan struct{})}, entries, nil
}

// Events returns the channel carrying future node add/remove reports.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run blocks reading inotify events until Close is called, translating
// each raw record for an "event*" entry into an Event. It is meant to
// run on its own goroutine.
func (w *Watcher) Run() {
	var buf = make([]byte, 4096)

	defer close(w.events)

	for {
		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				select {
				case <-w.closeCh:
					return
				case <-time.After(50 * time.Millisecond):
					continue
				}
			}

			log.Warnf("devwatch.Watcher.Run: %v", err)

			return
		}

		select {
		case <-w.closeCh:
			return
		default:
		}

		w.dispatch(buf[:n])
	}
}

func (w *Watcher) dispatch(buf []byte) {
	var offset int

	for offset+unix.SizeofInotifyEvent <= len(buf) {
		var (
			raw  = (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			name string
			end  = offset + unix.SizeofInotifyEvent + int(raw.Len)
		)

		if raw.Len > 0 {
			nameBytes := buf[offset+unix.SizeofInotifyEvent : end]
			if i := bytes.IndexByte(nameBytes, 0); i >= 0 {
				nameBytes = nameBytes[:i]
			}

			name = string(nameBytes)
		}

		offset = end

		if !strings.HasPrefix(name, "event") {
			continue
		}

		var (
			path   = filepath.Join(watchDir, name)
			exists = raw.Mask&(unix.IN_CREATE|unix.IN_MOVED_TO) != 0
		)

		if exists {
			time.Sleep(settleDelay)
		}

		w.events <- Event{Path: path, Exists: exists}
	}
}

// Close stops Run and releases the inotify descriptor.
func (w *Watcher) Close() error {
	close(w.closeCh)

	return unix.Close(w.fd)
}
