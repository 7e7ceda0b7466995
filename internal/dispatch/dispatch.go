// Package dispatch spawns shell commands for Command actions without
// blocking the Device Engine's hot path.
package dispatch

import (
	"os/exec"

	log "github.com/sirupsen/logrus"
)

// Dispatcher fires shell commands asynchronously. Spawn never blocks the
// caller: it launches the subprocess on a separate goroutine and does
// not wait for it to finish.
type Dispatcher struct {
	device string
}

// NewDispatcher builds a Dispatcher that tags its log lines with the
// originating device identity.
func NewDispatcher(device string) *Dispatcher {
	return &Dispatcher{device: device}
}

// Spawn runs `/bin/sh -c command` detached from the engine: standard
// streams are not connected, and the call returns immediately regardless
// of whether the command has started. A failure to start is logged and
// otherwise ignored, matching the "drop; continue" policy for command
// spawn failures.
func (d *Dispatcher) Spawn(command string) {
	go d.run(command)
}

func (d *Dispatcher) run(command string) {
	var (
		cmd *exec.Cmd
		err error
	)

	cmd = exec.Command("/bin/sh", "-c", command)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	err = cmd.Start()
	if err != nil {
		log.WithFields(log.Fields{
			"device":  d.device,
			"command": command,
		}).Warnf("dispatch.Spawn: %v", err)

		return
	}

	err = cmd.Wait()
	if err != nil {
		log.WithFields(log.Fields{
			"device":  d.device,
			"command": command,
		}).Debugf("dispatch.Spawn: command exited: %v", err)
	}
}
