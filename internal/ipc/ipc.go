// Package ipc speaks a line-delimited JSON control protocol over a Unix
// domain socket, translating external reload/game-mode/shutdown
// requests into calls against a Handler the coordinator supplies.
package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/andrieee44/keyremapd/xdg"
)

// DefaultSocketPath returns $XDG_RUNTIME_DIR/keyremapd/control.sock,
// falling back to /tmp for an unset or relative $XDG_RUNTIME_DIR. It
// uses xdg.RuntimeDir rather than xdg.RuntimeFile because the latter
// opens (and creates) a regular file at the path, which would collide
// with the Unix domain socket Listen binds there.
func DefaultSocketPath() string {
	return filepath.Join(xdg.RuntimeDir(), "keyremapd", "control.sock")
}

// Request is one decoded line of the control protocol. Device is empty
// for a broadcast to every engine, or an identity string to target one.
type Request struct {
	Cmd    string `json:"cmd"`
	On     bool   `json:"on"`
	Device string `json:"device,omitempty"`
}

// Response is the single JSON line written back for every Request.
type Response struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Handler is the coordinator-side implementation the listener dispatches
// decoded requests to. device is "" for a broadcast.
type Handler interface {
	Reload(device string) error
	SetGameMode(device string, on bool) error
	Shutdown(device string) error
}

// Listener accepts control connections on a Unix domain socket and
// serves them until Close is called.
type Listener struct {
	ln      net.Listener
	handler Handler
}

// Listen removes any stale socket file at path, creates its parent
// directory, and binds a new Unix domain socket listener.
func Listen(path string, handler Handler) (*Listener, error) {
	var (
		ln  net.Listener
		err error
	)

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return nil, fmt.Errorf("ipc.Listen: %w", err)
	}

	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ipc.Listen: %w", err)
	}

	ln, err = net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc.Listen: %w", err)
	}

	return &Listener{ln: ln, handler: handler}, nil
}

// Serve accepts connections until the listener is closed, handling each
// on its own goroutine. It returns nil on a clean Close and the accept
// error otherwise.
func (l *Listener) Serve() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return fmt.Errorf("ipc.Listener.Serve: %w", err)
		}

		go l.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

func (l *Listener) handleConn(conn net.Conn) {
	var (
		scanner = bufio.NewScanner(conn)
		encoder = json.NewEncoder(conn)
	)

	defer conn.Close()

	for scanner.Scan() {
		var (
			req Request
			err error
		)

		err = json.Unmarshal(scanner.Bytes(), &req)
		if err != nil {
			l.reply(encoder, Response{Ok: false, Error: err.Error()})

			continue
		}

		err = l.dispatch(req)
		if err != nil {
			l.reply(encoder, Response{Ok: false, Error: err.Error()})

			continue
		}

		l.reply(encoder, Response{Ok: true})
	}
}

func (l *Listener) reply(encoder *json.Encoder, resp Response) {
	var err error

	err = encoder.Encode(resp)
	if err != nil {
		log.Warnf("ipc.Listener.reply: %v", err)
	}
}

func (l *Listener) dispatch(req Request) error {
	switch req.Cmd {
	case "reload":
		return l.handler.Reload(req.Device)
	case "game-mode":
		return l.handler.SetGameMode(req.Device, req.On)
	case "shutdown":
		return l.handler.Shutdown(req.Device)
	default:
		return fmt.Errorf("ipc.Listener.dispatch: unknown command %q", req.Cmd)
	}
}

