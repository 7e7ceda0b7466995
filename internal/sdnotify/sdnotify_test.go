//go:build linux

package sdnotify

import (
	"net"
	"path/filepath"
	"testing"
	"time"
)

func TestNotifyIsNoopWithoutSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	if err := Ready(); err != nil {
		t.Fatalf("Ready() with no NOTIFY_SOCKET = %v, want nil", err)
	}
}

func TestNotifySendsPayloadToSocket(t *testing.T) {
	var (
		path          = filepath.Join(t.TempDir(), "notify.sock")
		addr          = &net.UnixAddr{Name: path, Net: "unixgram"}
		listener, err = net.ListenUnixgram("unixgram", addr)
	)

	if err != nil {
		t.Fatalf("ListenUnixgram: %v", err)
	}
	defer listener.Close()

	t.Setenv("NOTIFY_SOCKET", path)

	if err = Status("starting up"); err != nil {
		t.Fatalf("Status: %v", err)
	}

	var buf = make([]byte, 256)

	listener.SetReadDeadline(time.Now().Add(time.Second))

	n, _, err := listener.ReadFromUnix(buf)
	if err != nil {
		t.Fatalf("ReadFromUnix: %v", err)
	}

	if got := string(buf[:n]); got != "STATUS=starting up" {
		t.Fatalf("payload = %q, want %q", got, "STATUS=starting up")
	}
}
