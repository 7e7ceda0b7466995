package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/andrieee44/keyremapd/internal/config"
	"github.com/andrieee44/keyremapd/internal/devwatch"
	"github.com/andrieee44/keyremapd/internal/engine"
	"github.com/andrieee44/keyremapd/internal/ipc"
	"github.com/andrieee44/keyremapd/internal/sdnotify"
	"github.com/andrieee44/keyremapd/keycode"
	"github.com/andrieee44/keyremapd/linux/input"
	"github.com/andrieee44/keyremapd/linux/uinput"
)

// resolveConfigFile expands a leading "$HOME" the same way the shell
// would, since go-flags performs no variable expansion on default tags.
func resolveConfigFile(path string) (string, error) {
	if !strings.HasPrefix(path, "$HOME") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolveConfigFile: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "$HOME")), nil
}

// coordinator owns the set of currently running per-device engines, the
// loaded config snapshot, and the control-plane listener that routes
// external commands to the right engine(s). It is the party the core
// device/keymap/tap-hold/SOCD packages leave unimplemented.
type coordinator struct {
	mu       sync.Mutex
	snapshot *config.Snapshot
	running  map[string]chan<- engine.ControlMsg
	watcher  *devwatch.Watcher
}

// run wires a coordinator up, loads the config, starts the device
// watcher and control-plane listener, and blocks until SIGINT or SIGTERM
// arrives; control-socket commands, shutdown included, never end it.
func run(configFile, socketPath string) error {
	var (
		data []byte
		snap *config.Snapshot
		err  error
	)

	data, err = os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("run: reading config: %w", err)
	}

	snap, err = config.Parse(data)
	if err != nil {
		return fmt.Errorf("run: parsing config: %w", err)
	}

	if socketPath == "" {
		socketPath = ipc.DefaultSocketPath()
	}

	c := &coordinator{snapshot: snap, running: make(map[string]chan<- engine.ControlMsg)}

	watcher, initial, err := devwatch.New()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	c.watcher = watcher

	listener, err := ipc.Listen(socketPath, c)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer listener.Close()

	go listener.Serve()
	go watcher.Run()

	for _, path := range initial {
		c.startDevice(path)
	}

	go c.watchHotplug()

	sdnotify.Ready()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	sdnotify.Stopping()
	c.shutdownAll()
	watcher.Close()

	return nil
}

func (c *coordinator) watchHotplug() {
	for ev := range c.watcher.Events() {
		if ev.Exists {
			c.startDevice(ev.Path)
		} else {
			c.stopDevice(ev.Path)
		}
	}
}

// startDevice opens, identifies, and grabs the physical device at path,
// builds its paired virtual device and effective config, and launches
// its engine goroutine. Devices that fail to open (permission, or a
// non-keyboard node with no EV_KEY capability) are skipped, not fatal.
func (c *coordinator) startDevice(path string) {
	var (
		phys *input.Device
		id   input.ID
		err  error
	)

	phys, err = input.NewDevice(path)
	if err != nil {
		log.Debugf("coordinator.startDevice: %s: %v", path, err)

		return
	}

	id, err = phys.ID()
	if err != nil {
		phys.Close()
		log.Warnf("coordinator.startDevice: %s: %v", path, err)

		return
	}

	codes, err := phys.Codes(input.EV_KEY)
	if err != nil || len(codes) == 0 {
		phys.Close()

		return
	}

	identity := config.DeviceIdentity(id)

	c.mu.Lock()
	if _, ok := c.running[identity]; ok {
		c.mu.Unlock()
		phys.Close()

		return
	}
	c.mu.Unlock()

	translator := keycode.NewTranslator()

	virt, err := uinput.Open("keyremapd virtual keyboard", emittableCodes(translator))
	if err != nil {
		phys.Close()
		log.Errorf("coordinator.startDevice: %s: opening virtual device: %v", path, err)

		return
	}

	control := make(chan engine.ControlMsg, 4)
	eff := c.snapshot.Build(identity)
	eng := engine.New(identity, phys, virt, translator, eff, control)

	c.mu.Lock()
	c.running[identity] = control
	c.mu.Unlock()

	go func() {
		err := eng.Run()
		if err != nil {
			log.Errorf("coordinator: engine for %s exited: %v", identity, err)
		}

		c.mu.Lock()
		delete(c.running, identity)
		c.mu.Unlock()
	}()
}

// stopDevice handles a hot-unplug event for path by logging it; it sends
// no control message. Engines key themselves by device identity rather
// than path, and the kernel has already removed the node by the time
// this fires, so there is nothing left to re-identify it with. The
// engine's own read loop observes the lost device and exits on its own.
func (c *coordinator) stopDevice(path string) {
	log.Debugf("coordinator.stopDevice: %s removed, its engine will exit on read error", path)
}

func (c *coordinator) shutdownAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, control := range c.running {
		control <- engine.ControlMsg{Kind: engine.Shutdown}
	}
}

func emittableCodes(translator *keycode.Translator) []input.Code {
	var (
		keys  = translator.All()
		codes = make([]input.Code, 0, len(keys))
	)

	for _, k := range keys {
		codes = append(codes, input.Code(translator.Out(k)))
	}

	return codes
}

// Reload implements ipc.Handler: it rebuilds each targeted engine's
// effective config from the coordinator's current snapshot and pushes
// it through that engine's control channel.
func (c *coordinator) Reload(device string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.forEach(device, func(identity string, control chan<- engine.ControlMsg) {
		control <- engine.ControlMsg{Kind: engine.ReloadConfig, Config: c.snapshot.Build(identity)}
	})
}

// SetGameMode implements ipc.Handler.
func (c *coordinator) SetGameMode(device string, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.forEach(device, func(_ string, control chan<- engine.ControlMsg) {
		control <- engine.ControlMsg{Kind: engine.SetGameMode, GameMode: on}
	})
}

// Shutdown implements ipc.Handler: it stops the targeted engine(s)
// without terminating the process. A broadcast shutdown request stops
// every engine but leaves the coordinator itself running so the control
// socket stays reachable; the daemon only exits on SIGINT/SIGTERM.
func (c *coordinator) Shutdown(device string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.forEach(device, func(_ string, control chan<- engine.ControlMsg) {
		control <- engine.ControlMsg{Kind: engine.Shutdown}
	})
}

func (c *coordinator) forEach(device string, fn func(identity string, control chan<- engine.ControlMsg)) error {
	if device != "" {
		control, ok := c.running[device]
		if !ok {
			return fmt.Errorf("coordinator: no running engine for device %q", device)
		}

		fn(device, control)

		return nil
	}

	for identity, control := range c.running {
		fn(identity, control)
	}

	return nil
}
