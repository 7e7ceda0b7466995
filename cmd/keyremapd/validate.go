package main

import (
	"fmt"
	"os"

	"github.com/andrieee44/keyremapd/internal/config"
)

// validateConfigFile parses and validates the config document at path,
// reporting the first error found, without starting any engines.
func validateConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("validateConfigFile: %w", err)
	}

	_, err = config.Parse(data)
	if err != nil {
		return fmt.Errorf("validateConfigFile: %w", err)
	}

	fmt.Printf("%s: ok\n", path)

	return nil
}
