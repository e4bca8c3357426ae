// Package vcs provides the version-control primitives quack needs, built on
// go-git: transient module checkouts, repository init and teardown, and
// index-only untracking in the host repository.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

const (
	// MetadataDir is the per-repository metadata directory.
	MetadataDir = ".git"
	// ModulesFile is the submodule registration file at a repository root.
	ModulesFile = ".gitmodules"
)

// Checkout is a transient clone of a module repository.
type Checkout interface {
	// Name is the module name the checkout was registered under.
	Name() string
	// Dir is the checkout's working tree.
	Dir() string
	// CheckoutTag moves the working tree to the commit a tag points at.
	CheckoutTag(tag string) error
	// CheckoutCommit moves the working tree to a (possibly abbreviated) commit.
	CheckoutCommit(hexsha string) error
	// Revision is the commit the working tree is at.
	Revision() (string, error)
}

// Git implements the primitives with go-git.
type Git struct {
	auth authSource
}

// New creates a Git backend with credentials discovered from the environment.
func New() *Git {
	return &Git{auth: envAuth{}}
}

// Init creates dir if needed and initializes an empty repository in it.
// An existing repository is left untouched.
func (g *Git) Init(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	_, err := git.PlainInit(dir, false)
	if err != nil && !errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return fmt.Errorf("initializing repository in %s: %w", dir, err)
	}
	return nil
}

// IsRepository reports whether dir has its own repository metadata.
func (g *Git) IsRepository(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, MetadataDir))
	return err == nil
}

// RemoveMetadata deletes dir's repository metadata, keeping working files.
func (g *Git) RemoveMetadata(dir string) error {
	if err := os.RemoveAll(filepath.Join(dir, MetadataDir)); err != nil {
		return fmt.Errorf("removing repository metadata in %s: %w", dir, err)
	}
	return nil
}

// setAsideSuffix names the metadata directory while it is set aside.
const setAsideSuffix = ".quack-saved"

// SetAsideMetadata moves dir's repository metadata out of the way so a
// fresh repository can be initialized there. The returned function moves it
// back; the fresh metadata must be removed before calling it.
func (g *Git) SetAsideMetadata(dir string) (func() error, error) {
	current := filepath.Join(dir, MetadataDir)
	saved := current + setAsideSuffix
	if _, err := os.Lstat(saved); err == nil {
		return nil, fmt.Errorf("%s already exists, an earlier run was interrupted", saved)
	}
	if err := os.Rename(current, saved); err != nil {
		return nil, fmt.Errorf("setting aside repository metadata in %s: %w", dir, err)
	}
	return func() error {
		if err := os.Rename(saved, current); err != nil {
			return fmt.Errorf("restoring repository metadata in %s: %w", dir, err)
		}
		return nil
	}, nil
}

// ClearStaleModules removes submodule state left in the host repository by
// an interrupted earlier run.
func (g *Git) ClearStaleModules(root string) error {
	if err := os.RemoveAll(filepath.Join(root, MetadataDir, "modules")); err != nil {
		return fmt.Errorf("clearing stale submodule metadata: %w", err)
	}
	return nil
}

// AddSubmodule clones url at branch into dest and returns the checkout.
// Any directory already at dest is replaced.
func (g *Git) AddSubmodule(ctx context.Context, name, dest, url, branch string) (Checkout, error) {
	if err := os.RemoveAll(dest); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", dest, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	auth, err := g.auth.For(url)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:           url,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		Tags:          git.AllTags,
	})
	if err != nil {
		_ = os.RemoveAll(dest) // best-effort cleanup of a partial clone
		return nil, fmt.Errorf("cloning %s (%s): %w", url, branch, err)
	}

	return &submodule{name: name, dir: dest, repo: repo}, nil
}

// RemoveSubmodule deletes the checkout and every trace of its registration
// in the host repository at root.
func (g *Git) RemoveSubmodule(root string, co Checkout) error {
	if err := os.RemoveAll(co.Dir()); err != nil {
		return fmt.Errorf("removing checkout %s: %w", co.Dir(), err)
	}
	if err := os.RemoveAll(filepath.Join(root, MetadataDir, "modules", co.Name())); err != nil {
		return fmt.Errorf("removing submodule metadata for %s: %w", co.Name(), err)
	}
	return unregisterSubmodule(filepath.Join(root, ModulesFile), co.Name())
}

// Untrack removes path from the index of the repository at root without
// touching the working tree. It is a no-op when root is not a repository
// or path is not tracked.
func (g *Git) Untrack(root, path string) error {
	repo, err := git.PlainOpen(root)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil
		}
		return fmt.Errorf("opening repository %s: %w", root, err)
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}
	if _, err := idx.Remove(filepath.ToSlash(path)); err != nil {
		if errors.Is(err, index.ErrEntryNotFound) {
			return nil
		}
		return fmt.Errorf("untracking %s: %w", path, err)
	}
	if err := repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}
