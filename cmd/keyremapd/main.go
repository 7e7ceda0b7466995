// Command keyremapd is a userspace keyboard remapping daemon: it grabs
// physical keyboards exclusively, resolves every key through a layered,
// tap/hold-, and SOCD-aware keymap, and re-emits the result on a virtual
// uinput device.
package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

const version = "0.1.0"

var opts struct {
	Version bool `short:"v" long:"version" description:"Show the version"`
	Debug   bool `short:"d" long:"debug" description:"Show verbose debug information"`
}

// runCmd holds the flags for `keyremapd run`: load a config, grab every
// discovered keyboard, and serve the control socket until terminated.
var runCmd struct {
	ConfigFile string `short:"c" long:"config" description:"The config file" default:"$HOME/.config/keyremapd/config.yaml"`
	Socket     string `short:"s" long:"socket" description:"The control socket path (default $XDG_RUNTIME_DIR/keyremapd/control.sock)"`
}

// validateConfigCmd holds the flags for `keyremapd validate-config`:
// parse and validate a config file, reporting the first error found,
// without starting any engines.
var validateConfigCmd struct {
	Args struct {
		ConfigFile string `positional-arg-name:"config-file"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var (
		parser = flags.NewParser(&opts, flags.Default)
		err    error
	)

	_, err = parser.AddCommand(
		"run", "Grab devices and remap keys",
		"Load a config, grab every discovered keyboard, and serve the control socket until terminated.",
		&runCmd,
	)
	if err != nil {
		exitError(err, "failed to register run command")
	}

	_, err = parser.AddCommand(
		"devices", "List discovered input devices",
		"Enumerate /dev/input/event* nodes and print their name and identity, without grabbing anything.",
		&struct{}{},
	)
	if err != nil {
		exitError(err, "failed to register devices command")
	}

	_, err = parser.AddCommand(
		"validate-config", "Validate a config file",
		"Parse and validate a config file and report the first error found, without starting any engines.",
		&validateConfigCmd,
	)
	if err != nil {
		exitError(err, "failed to register validate-config command")
	}

	_, err = parser.Parse()
	if err != nil {
		os.Exit(1)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	log.SetOutput(os.Stdout)

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if parser.Active == nil {
		exitError(nil, "no command given; try run, devices, or validate-config")
	}

	err = dispatch(parser.Active.Name)
	if err != nil {
		exitError(err, "keyremapd exited with an error")
	}
}

func dispatch(command string) error {
	switch command {
	case "run":
		configFile, err := resolveConfigFile(runCmd.ConfigFile)
		if err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}

		return run(configFile, runCmd.Socket)
	case "devices":
		return listDevices()
	case "validate-config":
		return validateConfigFile(validateConfigCmd.Args.ConfigFile)
	default:
		return fmt.Errorf("dispatch: unknown command %q", command)
	}
}

func exitError(err error, msg string) {
	if err != nil {
		log.Errorf("%s: %v", msg, err)
	} else {
		log.Errorf("%s", msg)
	}

	os.Exit(1)
}
