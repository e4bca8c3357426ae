package vendoring

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ignoreFile appends entries to an ignore file, never writing a line that
// is already present.
type ignoreFile struct {
	path        string
	seen        map[string]bool
	needNewline bool
}

func loadIgnoreFile(path string) (*ignoreFile, error) {
	f := &ignoreFile{path: path, seen: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		f.seen[strings.TrimSpace(scanner.Text())] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f.needNewline = len(data) > 0 && data[len(data)-1] != '\n'
	return f, nil
}

// Add appends entry on its own line unless it is already listed.
func (f *ignoreFile) Add(entry string) error {
	if f.seen[entry] {
		return nil
	}

	out, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.path, err)
	}
	line := entry + "\n"
	if f.needNewline {
		line = "\n" + line
	}
	if _, err := out.WriteString(line); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	f.seen[entry] = true
	f.needNewline = false
	return nil
}
