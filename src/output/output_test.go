package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinterLines(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}

	p.Cloning("https://example.com/lib.git")
	p.Cloned("lib", "v1.0.0")
	p.Skipped("%s folder does not exist. Skipped.", "docs")
	p.Cleaned("lib")
	p.Quack("sub")
	p.Executing("echo hi", "/work")
	p.Summary(3, 1)

	want := strings.Join([]string{
		"Cloning: https://example.com/lib.git",
		"Cloned: lib (v1.0.0)",
		"docs folder does not exist. Skipped.",
		"Cleaned lib",
		"Quack: sub",
		`Executing "echo hi" in /work...`,
		"3 task(s) completed with 1 dependencies.",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestUseColorRespectsEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if UseColor() {
		t.Error("NO_COLOR set but color enabled")
	}
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	if UseColor() {
		t.Error("TERM=dumb but color enabled")
	}
}

func TestNewPrinterWritesPlainWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	if p.Color {
		t.Error("NO_COLOR set but printer colors output")
	}
	p.Cleaned("lib")
	if buf.String() != "Cleaned lib\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSectionID(t *testing.T) {
	tests := map[string]string{
		"quack sub":   "quack_quack_sub",
		"quack a/b.c": "quack_quack_a_b.c",
		"":            "quack",
		"///":         "quack",
	}
	for in, want := range tests {
		if got := SectionID(in); got != want {
			t.Errorf("SectionID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		name      string
		gitlab    string
		github    string
		wantStart string
		wantEnd   string
	}{
		{"local", "", "", "", ""},
		{"gitlab", "true", "", "section_start:", "section_end:"},
		{"github", "", "true", "::group::quack sub\n", "::endgroup::\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GITLAB_CI", tt.gitlab)
			t.Setenv("GITHUB_ACTIONS", tt.github)

			var buf bytes.Buffer
			p := &Printer{Writer: &buf}
			end := p.Fold("quack sub")
			start := buf.String()
			buf.Reset()
			end()

			if tt.wantStart == "" {
				if start != "" || buf.Len() != 0 {
					t.Errorf("fold outside CI printed %q / %q", start, buf.String())
				}
				return
			}
			if !strings.Contains(start, tt.wantStart) || !strings.Contains(buf.String(), tt.wantEnd) {
				t.Errorf("fold = %q / %q", start, buf.String())
			}
		})
	}
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Modules", false)
	RowStatus(sec, "lib", "https://x/lib.git", "success", false)
	sec.Separator()
	sec.Close()

	out := buf.String()
	for _, want := range []string{"── Modules ", "│ lib             https://x/lib.git ✓", "├─", "└─"} {
		if !strings.Contains(out, want) {
			t.Errorf("section missing %q:\n%s", want, out)
		}
	}
}
