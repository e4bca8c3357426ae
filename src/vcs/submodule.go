package vcs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

type submodule struct {
	name string
	dir  string
	repo *git.Repository
}

func (s *submodule) Name() string { return s.name }
func (s *submodule) Dir() string  { return s.dir }

func (s *submodule) CheckoutTag(tag string) error {
	ref, err := s.repo.Reference(plumbing.NewTagReferenceName(tag), true)
	if err != nil {
		return fmt.Errorf("tag %q not found: %w", tag, err)
	}

	hash := ref.Hash()
	// Annotated tags point at a tag object, lightweight tags at the commit.
	if tagObj, err := s.repo.TagObject(hash); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return fmt.Errorf("tag %q does not point at a commit: %w", tag, err)
		}
		hash = commit.Hash
	}

	return s.checkout(hash, "tags/"+tag)
}

func (s *submodule) CheckoutCommit(hexsha string) error {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(hexsha))
	if err != nil {
		return fmt.Errorf("commit %q not found: %w", hexsha, err)
	}
	return s.checkout(*hash, hexsha)
}

func (s *submodule) Revision() (string, error) {
	head, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func (s *submodule) checkout(hash plumbing.Hash, target string) error {
	wt, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("checking out %s: %w", target, err)
	}
	return nil
}

// unregisterSubmodule drops the named section from a .gitmodules file,
// deleting the file once no submodule is left.
func unregisterSubmodule(path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	modules := config.NewModules()
	if err := modules.Unmarshal(data); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if _, ok := modules.Submodules[name]; !ok {
		return nil
	}
	delete(modules.Submodules, name)

	if len(modules.Submodules) == 0 {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		return nil
	}

	out, err := modules.Marshal()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, out, 0o644)
}
