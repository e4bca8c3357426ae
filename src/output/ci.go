package output

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

// CI environment detection.

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

func IsGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// Collapsible log sections. Outside GitLab CI and GitHub Actions these
// print nothing.

var sectionIDUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// SectionID turns a label into an identifier GitLab accepts.
func SectionID(label string) string {
	id := strings.Trim(sectionIDUnsafe.ReplaceAllString(label, "_"), "_")
	if id == "" {
		return "quack"
	}
	return "quack_" + id
}

// SectionStartCollapsed starts a section that is collapsed by default.
func SectionStartCollapsed(w io.Writer, id, name string) {
	switch {
	case IsGitLabCI():
		ts := time.Now().Unix()
		fmt.Fprintf(w, "\033[0Ksection_start:%d:%s[collapsed=true]\r\033[0K%s\n", ts, id, name)
	case IsGitHubActions():
		fmt.Fprintf(w, "::group::%s\n", name)
	}
}

// SectionEnd closes a section opened with SectionStartCollapsed.
func SectionEnd(w io.Writer, id string) {
	switch {
	case IsGitLabCI():
		ts := time.Now().Unix()
		fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", ts, id)
	case IsGitHubActions():
		fmt.Fprintln(w, "::endgroup::")
	}
}

// Fold wraps everything written until the returned function is called in a
// collapsed CI log section.
func (p *Printer) Fold(name string) (end func()) {
	id := SectionID(name)
	SectionStartCollapsed(p.Writer, id, name)
	return func() { SectionEnd(p.Writer, id) }
}
