package config

import (
	"fmt"
	"os"
)

const starterTemplate = `name: %s
modules:
profiles:
  init:
    tasks: ['modules']
`

// WriteStarter writes a minimal configuration with an `init` profile that
// vendors every module. Content is appended if the file already exists.
func WriteStarter(path, projectName string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, starterTemplate, projectName); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
