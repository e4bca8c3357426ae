package vendoring

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sofmeright/quack/src/config"
	"github.com/sofmeright/quack/src/module"
	"github.com/sofmeright/quack/src/output"
	"github.com/sofmeright/quack/src/vcs"
)

// fakeCheckout materializes a fixed file set and records checkouts.
type fakeCheckout struct {
	name, dir string
	tag       string
	commit    string
}

func (c *fakeCheckout) Name() string { return c.name }
func (c *fakeCheckout) Dir() string  { return c.dir }
func (c *fakeCheckout) CheckoutTag(tag string) error {
	c.tag = tag
	return nil
}
func (c *fakeCheckout) CheckoutCommit(hexsha string) error {
	c.commit = hexsha
	return nil
}
func (c *fakeCheckout) Revision() (string, error) { return "0123abcd", nil }

type fakeVCS struct {
	files     map[string]string
	added     []string
	removed   []string
	untracked []string
	fail      error
	last      *fakeCheckout
}

func (f *fakeVCS) ClearStaleModules(string) error { return nil }

func (f *fakeVCS) AddSubmodule(_ context.Context, name, dest, _, _ string) (vcs.Checkout, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	for rel, content := range f.files {
		path := filepath.Join(dest, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, err
		}
	}
	f.added = append(f.added, name)
	f.last = &fakeCheckout{name: name, dir: dest}
	return f.last, nil
}

func (f *fakeVCS) RemoveSubmodule(_ string, co vcs.Checkout) error {
	f.removed = append(f.removed, co.Name())
	return os.RemoveAll(co.Dir())
}

func (f *fakeVCS) Untrack(_ string, path string) error {
	f.untracked = append(f.untracked, path)
	return nil
}

func newTestEngine(t *testing.T, files map[string]string) (*Engine, *fakeVCS, *bytes.Buffer) {
	t.Helper()

	if files == nil {
		files = map[string]string{
			"README.md":       "lib\n",
			"src/lib.go":      "package lib\n",
			".git/HEAD":       "ref: refs/heads/master\n",
			".gitignore":      "*.o\n",
			"src/.gitkeep":    "",
			"src/.git/config": "",
		}
	}
	v := &fakeVCS{files: files}
	var buf bytes.Buffer
	p := &output.Printer{Writer: &buf}
	return New(t.TempDir(), v, p, output.DiscardLogger()), v, &buf
}

func modulesConfig(gitignore bool, modules ...config.NamedModule) *config.Config {
	return &config.Config{Modules: modules, Gitignore: gitignore}
}

func named(name string, mc config.ModuleConfig) config.NamedModule {
	if mc.Repository == "" {
		mc.Repository = "https://example.com/" + name + ".git"
	}
	return config.NamedModule{Name: name, Config: mc}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestFetchWholeTreeExcludesGitMetadata(t *testing.T) {
	e, v, out := newTestEngine(t, nil)
	cfg := modulesConfig(false, named("lib", config.ModuleConfig{}))

	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	dest := filepath.Join(e.Root, "lib")
	for _, rel := range []string{"README.md", "src/lib.go"} {
		if !exists(filepath.Join(dest, rel)) {
			t.Errorf("%s not vendored", rel)
		}
	}
	for _, rel := range []string{".git", ".gitignore", "src/.gitkeep", "src/.git"} {
		if exists(filepath.Join(dest, rel)) {
			t.Errorf("%s should have been excluded", rel)
		}
	}
	if exists(filepath.Join(e.Root, PrivateDir, "lib")) {
		t.Error("transient checkout left behind")
	}
	if len(v.removed) != 1 {
		t.Errorf("RemoveSubmodule calls = %v", v.removed)
	}

	want := "Cloning: https://example.com/lib.git\nCloned: lib (0123abcd)\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestFetchSubPathAndFile(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	cfg := modulesConfig(false,
		named("vendor/src", config.ModuleConfig{Path: "src"}),
		named("LIB_README.md", config.ModuleConfig{Path: "README.md", IsFile: true}),
	)

	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if data, err := os.ReadFile(filepath.Join(e.Root, "vendor", "src", "lib.go")); err != nil || string(data) != "package lib\n" {
		t.Errorf("vendor/src/lib.go = %q, %v", data, err)
	}
	if exists(filepath.Join(e.Root, "vendor", "src", "README.md")) {
		t.Error("files outside path copied")
	}
	if data, err := os.ReadFile(filepath.Join(e.Root, "LIB_README.md")); err != nil || string(data) != "lib\n" {
		t.Errorf("LIB_README.md = %q, %v", data, err)
	}
}

func TestFetchPinsTagAndCommit(t *testing.T) {
	e, v, out := newTestEngine(t, nil)

	cfg := modulesConfig(false, named("lib", config.ModuleConfig{Tag: "v1.2.0"}))
	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if v.last.tag != "v1.2.0" || v.last.commit != "" {
		t.Errorf("checkout = %+v, want tag v1.2.0", v.last)
	}
	if !strings.Contains(out.String(), "Cloned: lib (v1.2.0)") {
		t.Errorf("output = %q", out.String())
	}

	cfg = modulesConfig(false, named("lib", config.ModuleConfig{Hexsha: "deadbeef"}))
	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if v.last.commit != "deadbeef" || v.last.tag != "" {
		t.Errorf("checkout = %+v, want commit deadbeef", v.last)
	}
}

func TestFetchTagAndHexshaSkipped(t *testing.T) {
	e, v, out := newTestEngine(t, nil)
	cfg := modulesConfig(true,
		named("bad", config.ModuleConfig{Tag: "v1", Hexsha: "abc"}),
		named("good", config.ModuleConfig{}),
	)

	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasPrefix(out.String(), "bad: Cannot be both tag & hexsha.\n") {
		t.Errorf("output = %q", out.String())
	}
	if exists(filepath.Join(e.Root, "bad")) {
		t.Error("skipped module was vendored")
	}
	if len(v.added) != 1 || v.added[0] != "good" {
		t.Errorf("cloned = %v, want [good]", v.added)
	}
	data, _ := os.ReadFile(filepath.Join(e.Root, ".gitignore"))
	if string(data) != "good\n" {
		t.Errorf(".gitignore = %q, want only good", data)
	}
}

func TestFetchOnlyNamedModule(t *testing.T) {
	e, v, _ := newTestEngine(t, nil)
	cfg := modulesConfig(false, named("a", config.ModuleConfig{}), named("b", config.ModuleConfig{}))

	if err := e.Fetch(context.Background(), cfg, "b"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if exists(filepath.Join(e.Root, "a")) || !exists(filepath.Join(e.Root, "b")) {
		t.Error("modules:b touched the wrong module")
	}
	if len(v.added) != 1 {
		t.Errorf("cloned = %v", v.added)
	}
}

func TestFetchMissingPathSkipped(t *testing.T) {
	e, _, out := newTestEngine(t, nil)
	cfg := modulesConfig(false, named("lib", config.ModuleConfig{Path: "docs"}))

	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(out.String(), "docs folder does not exist. Skipped.\n") {
		t.Errorf("output = %q", out.String())
	}
	if exists(filepath.Join(e.Root, "lib")) {
		t.Error("destination created for a missing path")
	}
	if exists(filepath.Join(e.Root, PrivateDir, "lib")) {
		t.Error("transient checkout left behind")
	}
}

func TestFetchMissingRepositoryIsFatal(t *testing.T) {
	e, v, _ := newTestEngine(t, nil)
	cfg := modulesConfig(false,
		config.NamedModule{Name: "broken", Config: config.ModuleConfig{Branch: "main"}},
		named("later", config.ModuleConfig{}),
	)

	err := e.Fetch(context.Background(), cfg, "")
	if !errors.Is(err, module.ErrMissingRepository) {
		t.Fatalf("err = %v, want ErrMissingRepository", err)
	}
	if len(v.added) != 0 {
		t.Errorf("cloned after fatal error: %v", v.added)
	}
}

func TestFetchCloneFailure(t *testing.T) {
	e, v, _ := newTestEngine(t, nil)
	v.fail = errors.New("network down")

	err := e.Fetch(context.Background(), modulesConfig(false, named("lib", config.ModuleConfig{})), "")
	if err == nil || !strings.Contains(err.Error(), "lib: network down") {
		t.Fatalf("err = %v", err)
	}
}

func TestFetchIsIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	cfg := modulesConfig(true, named("lib", config.ModuleConfig{}))

	if err := os.MkdirAll(filepath.Join(e.Root, "lib", "stale"), 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := e.Fetch(context.Background(), cfg, ""); err != nil {
			t.Fatalf("Fetch #%d: %v", i, err)
		}
	}

	if exists(filepath.Join(e.Root, "lib", "stale")) {
		t.Error("previous destination content not replaced")
	}
	data, _ := os.ReadFile(filepath.Join(e.Root, ".gitignore"))
	if string(data) != "lib\n" {
		t.Errorf(".gitignore = %q, want a single entry", data)
	}
}

func TestFetchGitignoreAppendsOnOwnLine(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	if err := os.WriteFile(filepath.Join(e.Root, ".gitignore"), []byte("build/\nother"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := modulesConfig(true, named("other", config.ModuleConfig{}), named("lib", config.ModuleConfig{}))
	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(e.Root, ".gitignore"))
	if want := "build/\nother\nlib\n"; string(data) != want {
		t.Errorf(".gitignore = %q, want %q", data, want)
	}
}

func TestFetchRemovesLeftoverModulesFile(t *testing.T) {
	e, v, _ := newTestEngine(t, nil)
	if err := os.WriteFile(filepath.Join(e.Root, vcs.ModulesFile), []byte("[submodule \"x\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := e.Fetch(context.Background(), modulesConfig(false, named("lib", config.ModuleConfig{})), ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if exists(filepath.Join(e.Root, vcs.ModulesFile)) {
		t.Error(".gitmodules left behind")
	}
	if len(v.untracked) != 1 || v.untracked[0] != vcs.ModulesFile {
		t.Errorf("untracked = %v", v.untracked)
	}
}

func TestFetchNoModules(t *testing.T) {
	e, v, out := newTestEngine(t, nil)
	if err := e.Fetch(context.Background(), &config.Config{}, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if out.String() != "No modules found.\n" {
		t.Errorf("output = %q", out.String())
	}
	if len(v.added) != 0 || exists(filepath.Join(e.Root, PrivateDir)) {
		t.Error("work done without modules")
	}
}

func TestCleanThenFetchRestores(t *testing.T) {
	e, _, out := newTestEngine(t, nil)
	cfg := modulesConfig(false, named("a", config.ModuleConfig{}), named("b", config.ModuleConfig{Path: "README.md", IsFile: true}))

	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	out.Reset()

	if err := e.Clean(cfg, ""); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if exists(filepath.Join(e.Root, "a")) || exists(filepath.Join(e.Root, "b")) {
		t.Error("destinations not removed")
	}
	if out.String() != "Cleaned a\nCleaned b\n" {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := e.Clean(cfg, ""); err != nil {
		t.Fatalf("second Clean: %v", err)
	}
	if out.String() != "" {
		t.Errorf("clean of missing destinations printed %q", out.String())
	}

	if err := e.Fetch(context.Background(), cfg, ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !exists(filepath.Join(e.Root, "a", "README.md")) || !exists(filepath.Join(e.Root, "b")) {
		t.Error("fetch after clean did not restore modules")
	}
}

func TestCleanOnlyNamedModule(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	for _, name := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(e.Root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	cfg := modulesConfig(false, named("a", config.ModuleConfig{}), named("b", config.ModuleConfig{}))

	if err := e.Clean(cfg, "a"); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if exists(filepath.Join(e.Root, "a")) || !exists(filepath.Join(e.Root, "b")) {
		t.Error("-modules:a touched the wrong module")
	}
}

func TestCleanRejectsEscapingName(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	cfg := modulesConfig(false, named("..", config.ModuleConfig{}))

	if err := e.Clean(cfg, ""); !errors.Is(err, module.ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName", err)
	}
}

func TestFetchAndCleanRefuseRepositoryMetadata(t *testing.T) {
	e, v, _ := newTestEngine(t, nil)
	gitDir := filepath.Join(e.Root, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := modulesConfig(false, named(".git", config.ModuleConfig{}))

	if err := e.Fetch(context.Background(), cfg, ""); !errors.Is(err, module.ErrInvalidName) {
		t.Fatalf("Fetch err = %v, want ErrInvalidName", err)
	}
	if err := e.Clean(cfg, ""); !errors.Is(err, module.ErrInvalidName) {
		t.Fatalf("Clean err = %v, want ErrInvalidName", err)
	}
	if !exists(gitDir) || len(v.added) != 0 {
		t.Error("host repository metadata touched")
	}
}
