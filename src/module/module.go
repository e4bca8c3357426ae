// Package module turns configuration entries into validated module
// descriptors consumed by the vendoring engine.
package module

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sofmeright/quack/src/config"
)

// DefaultBranch is cloned when a module does not name a branch.
const DefaultBranch = "master"

var (
	// ErrMissingRepository is returned when a module has no repository URI.
	ErrMissingRepository = errors.New("module does not specify a 'repository'")
	// ErrTagAndHexsha is returned when a module pins both a tag and a commit.
	ErrTagAndHexsha = errors.New("cannot be both tag & hexsha")
	// ErrInvalidName is returned for names that do not denote a path inside
	// the project root.
	ErrInvalidName = errors.New("module name must be a relative path inside the project")
)

// reservedDirs are project entries a module may never replace.
var reservedDirs = map[string]bool{".git": true, ".quack": true}

// CheckName reports whether name can be used as a destination path.
// Repository metadata and quack's private area are off limits at any depth
// for .git and at the top level for .quack.
func CheckName(name string) error {
	clean := filepath.Clean(name)
	if !filepath.IsLocal(name) || clean == "." {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	parts := strings.Split(filepath.ToSlash(clean), "/")
	if reservedDirs[parts[0]] {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	for _, part := range parts[1:] {
		if part == ".git" {
			return fmt.Errorf("%q: %w", name, ErrInvalidName)
		}
	}
	return nil
}

// Module describes one vendorable dependency.
type Module struct {
	Name       string
	Repository string
	Path       string // sub-directory of the checkout to extract; "" is the whole tree
	Branch     string
	Hexsha     string
	Tag        string
	IsFile     bool
}

// PinKind says what a module is checked out at.
type PinKind int

const (
	PinBranch PinKind = iota
	PinTag
	PinCommit
)

// FromConfig builds a Module from its configuration entry.
// Only the repository is required; everything else is defaulted.
func FromConfig(name string, cfg config.ModuleConfig) (*Module, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingRepository)
	}

	branch := cfg.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	return &Module{
		Name:       name,
		Repository: cfg.Repository,
		Path:       cfg.Path,
		Branch:     branch,
		Hexsha:     cfg.Hexsha,
		Tag:        cfg.Tag,
		IsFile:     cfg.IsFile,
	}, nil
}

// Validate reports whether the module can be vendored.
func (m *Module) Validate() error {
	if m.Tag != "" && m.Hexsha != "" {
		return fmt.Errorf("%s: %w", m.Name, ErrTagAndHexsha)
	}
	return nil
}

// Pin returns what the module is pinned to. Tag wins over hexsha; a module
// with both never reaches checkout because Validate rejects it.
func (m *Module) Pin() PinKind {
	switch {
	case m.Tag != "":
		return PinTag
	case m.Hexsha != "":
		return PinCommit
	default:
		return PinBranch
	}
}

// Destination is the project-relative path the module is copied to.
func (m *Module) Destination() string {
	return m.Name
}
