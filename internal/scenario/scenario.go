package scenario

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/oz/internal/errors"
)

// Step operations.
const (
	OpSet     = "set"
	OpDelete  = "delete"
	OpPush    = "push"
	OpPop     = "pop"
	OpSplice  = "splice"
	OpAdd     = "add"
	OpRemove  = "remove"
	OpClear   = "clear"
	OpRead    = "read"
	OpResolve = "resolve"
	OpReject  = "reject"
)

var knownOps = map[string]bool{
	OpSet: true, OpDelete: true, OpPush: true, OpPop: true, OpSplice: true,
	OpAdd: true, OpRemove: true, OpClear: true, OpRead: true,
	OpResolve: true, OpReject: true,
}

// Scenario is a scripted session against a reactive document: an initial
// document, the watchers to install on it, and the mutations to apply.
type Scenario struct {
	// Name identifies the scenario in traces.
	Name string `yaml:"name"`

	// Description is free text.
	Description string `yaml:"description,omitempty"`

	// Document is the initial value passed to React. Mappings become
	// records unless written with one of the $-forms (see Build).
	Document any `yaml:"document"`

	// Watchers are installed in order before the first step.
	Watchers []Watcher `yaml:"watchers,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	file string
}

// Watcher watches the value at a path.
type Watcher struct {
	Name      string `yaml:"name,omitempty"`
	Path      string `yaml:"path"`
	Deep      bool   `yaml:"deep,omitempty"`
	Immediate bool   `yaml:"immediate,omitempty"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

// Label returns the watcher's name, or its path when it has none.
func (w Watcher) Label() string {
	if w.Name != "" {
		return w.Name
	}
	return w.Path
}

// Step is one operation on the document.
type Step struct {
	Op   string `yaml:"op"`
	Path string `yaml:"path,omitempty"`

	// Value is the operand of set, add, remove and resolve.
	Value any `yaml:"value,omitempty"`

	// Items are appended by push and inserted by splice.
	Items []any `yaml:"items,omitempty"`

	// Start and Count are the splice bounds. A nil Count removes through
	// the end.
	Start int  `yaml:"start,omitempty"`
	Count *int `yaml:"count,omitempty"`

	// Error is the rejection message of reject.
	Error string `yaml:"error,omitempty"`

	// Fails marks a step that is expected to be refused by the container.
	Fails bool `yaml:"fails,omitempty"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

// File returns the path the scenario was loaded from.
func (s *Scenario) File() string {
	return s.file
}

// Load reads and parses a scenario file. YAML and JSON are both accepted.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E201").
			WithDetail("Cannot read " + path).
			Wrap(err)
	}
	return Parse(data, path)
}

var lineRe = regexp.MustCompile(`line (\d+)`)

// Parse parses scenario data. file is used for error locations only.
func Parse(data []byte, file string) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.New("E202").WithDetail(file + " is empty")
		}
		e := errors.New("E202").WithDetail(err.Error())
		if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			e.WithLocation(file, line, 0)
		}
		return nil, e
	}
	s.file = file

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err == nil {
		s.locate(&root)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// locate copies node positions onto watchers and steps.
func (s *Scenario) locate(root *yaml.Node) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		items := doc.Content[i+1]
		if items.Kind != yaml.SequenceNode {
			continue
		}
		switch doc.Content[i].Value {
		case "steps":
			for j, n := range items.Content {
				if j < len(s.Steps) {
					s.Steps[j].Line, s.Steps[j].Column = n.Line, n.Column
				}
			}
		case "watchers":
			for j, n := range items.Content {
				if j < len(s.Watchers) {
					s.Watchers[j].Line, s.Watchers[j].Column = n.Line, n.Column
				}
			}
		}
	}
}

func (s *Scenario) validate() error {
	if s.Document == nil {
		return errors.New("E202").
			WithDetail("document is required").
			WithSuggestion("Add a top-level document: mapping")
	}
	for _, w := range s.Watchers {
		if w.Path == "" {
			return errors.New("E206").
				WithLocation(s.file, w.Line, w.Column).
				WithSuggestion(`Use path: "." to watch the whole document`)
		}
	}
	for i, step := range s.Steps {
		if !knownOps[step.Op] {
			return errors.New("E203").
				WithDetail("Step " + strconv.Itoa(i+1) + " has op " + strconv.Quote(step.Op)).
				WithLocation(s.file, step.Line, step.Column)
		}
	}
	return nil
}
