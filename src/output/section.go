package output

import (
	"fmt"
	"io"
	"strings"
)

const sectionWidth = 61 // inner width between │ and line end

// Section renders a box-drawing framed output section.
type Section struct {
	w     io.Writer
	name  string
	color bool
}

// NewSection creates a section and writes its header.
func NewSection(w io.Writer, name string, color bool) *Section {
	s := &Section{w: w, name: name, color: color}
	s.writeHeader()
	return s
}

// Row writes a content line inside the section frame.
func (s *Section) Row(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(s.w, "    │ %s\n", line)
}

// Separator writes a mid-section divider.
func (s *Section) Separator() {
	fmt.Fprintf(s.w, "    ├%s\n", strings.Repeat("─", sectionWidth))
}

// Close writes the section footer.
func (s *Section) Close() {
	fmt.Fprintf(s.w, "    └%s\n", strings.Repeat("─", sectionWidth))
}

// writeHeader renders: ── Name ────────────────────────
func (s *Section) writeHeader() {
	label := fmt.Sprintf("── %s ", s.name)

	fill := sectionWidth + 4 - len([]rune(label))
	if fill < 1 {
		fill = 1
	}

	header := label + strings.Repeat("─", fill)
	if s.color {
		header = styleCyan.Faint(true).Render(header)
	}
	fmt.Fprintf(s.w, "\n    %s\n", header)
}

// StatusIcon returns a status icon, colored when color is set.
func StatusIcon(status string, color bool) string {
	var icon string
	var style = styleAmber
	switch status {
	case "success":
		icon, style = "✓", styleGreen
	case "failed":
		icon, style = "✗", styleRed
	default:
		icon = "⊘"
	}
	if !color {
		return icon
	}
	return style.Render(icon)
}

// Dimmed returns dimmed text if color is enabled.
func Dimmed(text string, color bool) string {
	if !color {
		return text
	}
	return styleGray.Render(text)
}

// RowStatus writes a row with label, detail, and a status icon.
func RowStatus(sec *Section, label, detail, status string, color bool) {
	icon := StatusIcon(status, color)
	if detail != "" {
		sec.Row("%-16s%s %s", label, detail, icon)
	} else {
		sec.Row("%-16s%s", label, icon)
	}
}
