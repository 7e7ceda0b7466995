package dispatch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrieee44/keyremapd/internal/dispatch"
)

func TestSpawnRunsCommandAsynchronously(t *testing.T) {
	var (
		dir  string
		path string
		d    *dispatch.Dispatcher
	)

	dir = t.TempDir()
	path = filepath.Join(dir, "touched")

	d = dispatch.NewDispatcher("test-device")
	d.Spawn("touch " + path)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("expected %s to exist after Spawn, it does not", path)
}

func TestSpawnDoesNotBlockCaller(t *testing.T) {
	var d *dispatch.Dispatcher

	d = dispatch.NewDispatcher("test-device")

	start := time.Now()
	d.Spawn("sleep 2")
	elapsed := time.Since(start)

	if elapsed > 200*time.Millisecond {
		t.Fatalf("Spawn blocked for %v, want near-instant return", elapsed)
	}
}
