package main

import (
	"fmt"

	"github.com/andrieee44/keyremapd/internal/config"
	"github.com/andrieee44/keyremapd/linux/input"
)

// listDevices prints every currently present /dev/input/event* node's
// path, name, and device identity, without opening any of them
// exclusively. It is meant for picking out a device-identity string to
// put in a config's devices section.
func listDevices() error {
	devices, err := input.Devices()
	if err != nil {
		return fmt.Errorf("listDevices: %w", err)
	}

	for _, device := range devices {
		printDevice(device)

		err = device.Close()
		if err != nil {
			fmt.Printf("%s\tclose: %v\n", device.Path(), err)
		}
	}

	return nil
}

func printDevice(device *input.Device) {
	var (
		name string
		id   input.ID
		err  error
	)

	name, err = device.Name()
	if err != nil {
		fmt.Printf("%s\t<unreadable: %v>\n", device.Path(), err)

		return
	}

	id, err = device.ID()
	if err != nil {
		fmt.Printf("%s\t%s\t<unreadable identity: %v>\n", device.Path(), name, err)

		return
	}

	fmt.Printf("%s\t%s\t%s\n", device.Path(), name, config.DeviceIdentity(id))
}
