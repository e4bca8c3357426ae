// Package task parses profile task lines into typed operations.
//
// A task line is one of:
//
//	modules            fetch every module
//	modules:<name>     fetch one module
//	quack:<ref>        nested invocation (see package nested)
//	cmd:<text>         shell command in the project root
//
// Any of these may carry a leading "-". On module tasks it turns fetch into
// clean; on the other kinds it is accepted and has no further effect.
// Lines matching none of the forms are inert.
package task

import "strings"

// Kind is the operation a task line encodes.
type Kind int

const (
	KindUnknown Kind = iota
	KindModules
	KindQuack
	KindCmd
)

const (
	negationPrefix = "-"
	modulesWord    = "modules"
	modulesPrefix  = "modules:"
	quackPrefix    = "quack:"
	cmdPrefix      = "cmd:"
)

func (k Kind) String() string {
	switch k {
	case KindModules:
		return "modules"
	case KindQuack:
		return "quack"
	case KindCmd:
		return "cmd"
	default:
		return "unknown"
	}
}

// Task is one parsed task line.
type Task struct {
	Kind Kind
	// Arg is the module name for KindModules (empty means all modules),
	// the reference for KindQuack, the command text for KindCmd and the
	// whole line for KindUnknown.
	Arg     string
	Negated bool
}

// Parse classifies a task line. It never fails.
func Parse(line string) Task {
	t := Task{}

	body, negated := strings.CutPrefix(line, negationPrefix)
	t.Negated = negated

	switch {
	case body == modulesWord:
		t.Kind = KindModules
	case strings.HasPrefix(body, modulesPrefix):
		t.Kind = KindModules
		t.Arg = strings.TrimPrefix(body, modulesPrefix)
	case strings.HasPrefix(body, quackPrefix):
		t.Kind = KindQuack
		t.Arg = strings.TrimPrefix(body, quackPrefix)
	case strings.HasPrefix(body, cmdPrefix):
		t.Kind = KindCmd
		t.Arg = strings.TrimPrefix(body, cmdPrefix)
	default:
		t.Kind = KindUnknown
		t.Arg = body
	}

	return t
}

// Clean reports whether the task removes vendored output instead of fetching.
func (t Task) Clean() bool {
	return t.Kind == KindModules && t.Negated
}

// String renders the task in its canonical line form.
func (t Task) String() string {
	var b strings.Builder
	if t.Negated {
		b.WriteString(negationPrefix)
	}
	switch t.Kind {
	case KindModules:
		if t.Arg == "" {
			b.WriteString(modulesWord)
		} else {
			b.WriteString(modulesPrefix + t.Arg)
		}
	case KindQuack:
		b.WriteString(quackPrefix + t.Arg)
	case KindCmd:
		b.WriteString(cmdPrefix + t.Arg)
	default:
		b.WriteString(t.Arg)
	}
	return b.String()
}
