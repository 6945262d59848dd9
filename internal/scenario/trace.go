package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vango-dev/oz/internal/errors"
)

// Format selects how a trace is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", errors.New("E301").WithDetail("Unknown format " + strconv.Quote(s))
}

// Trace event names.
const (
	EventScenario = "scenario"
	EventWatch    = "watch"
	EventStep     = "step"
	EventChange   = "change"
	EventError    = "error"
	EventRead     = "read"
	EventDone     = "done"
)

// Line is one trace entry.
type Line struct {
	Event   string `json:"event"`
	Name    string `json:"name,omitempty"`
	Step    int    `json:"step,omitempty"`
	Op      string `json:"op,omitempty"`
	Path    string `json:"path,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Deep    bool   `json:"deep,omitempty"`
	Value   any    `json:"value,omitempty"`
	Old     any    `json:"old,omitempty"`
	Same    bool   `json:"same,omitempty"`
	Error   string `json:"error,omitempty"`
	Steps   int    `json:"steps,omitempty"`
	Changes int    `json:"changes,omitempty"`
}

type tracer struct {
	w      io.Writer
	format Format
	err    error
}

func (t *tracer) emit(l Line) {
	if t.err != nil {
		return
	}
	if t.format == FormatJSON {
		data, err := json.Marshal(l)
		if err != nil {
			t.err = err
			return
		}
		_, t.err = fmt.Fprintf(t.w, "%s\n", data)
		return
	}
	_, t.err = fmt.Fprintln(t.w, l.text())
}

// text renders l in the human-readable format.
func (l Line) text() string {
	switch l.Event {
	case EventScenario:
		return "scenario " + l.Name
	case EventWatch:
		s := fmt.Sprintf("watch %s = %s", l.Name, render(l.Value))
		if l.Deep {
			s += " (deep)"
		}
		return s
	case EventStep:
		s := fmt.Sprintf("step %d: %s", l.Step, l.Op)
		if l.Path != "" {
			s += " " + l.Path
		}
		if l.Detail != "" {
			s += " " + l.Detail
		}
		return s
	case EventChange:
		if l.Same {
			return fmt.Sprintf("  %s: %s", l.Name, render(l.Value))
		}
		return fmt.Sprintf("  %s: %s -> %s", l.Name, render(l.Old), render(l.Value))
	case EventError:
		return "  error: " + l.Error
	case EventRead:
		return "  = " + render(l.Value)
	case EventDone:
		return fmt.Sprintf("done: %d steps, %d changes", l.Steps, l.Changes)
	}
	return l.Event
}

// render prints a plain value as compact JSON.
func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
