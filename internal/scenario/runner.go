package scenario

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/vango-dev/oz/internal/errors"
	"github.com/vango-dev/oz/pkg/reactive"
)

// DefaultStepTimeout bounds how long resolve and reject wait for the
// settlement to reach the runtime.
const DefaultStepTimeout = 5 * time.Second

// Runner executes scenarios against a runtime. It must be used from the
// goroutine that owns the runtime.
type Runner struct {
	rt          *reactive.Runtime
	tr          *tracer
	logger      *slog.Logger
	stepTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithFormat sets the trace format (default: text).
func WithFormat(f Format) Option {
	return func(r *Runner) {
		r.tr.format = f
	}
}

// WithLogger sets the logger (default: the runtime's logger).
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithStepTimeout bounds resolve and reject steps.
func WithStepTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.stepTimeout = d
	}
}

// NewRunner creates a runner that writes its trace to w.
func NewRunner(rt *reactive.Runtime, w io.Writer, opts ...Option) *Runner {
	r := &Runner{
		rt:          rt,
		tr:          &tracer{w: w, format: FormatText},
		logger:      rt.Logger(),
		stepTimeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes a finished run.
type Result struct {
	// Document is the tracked document after the last step.
	Document reactive.Observable

	// Steps is the number of steps applied.
	Steps int

	// Changes is the number of watcher handler calls.
	Changes int

	unwatch []reactive.Unsubscribe
}

// Stop removes the scenario's watchers.
func (res *Result) Stop() {
	for _, fn := range res.unwatch {
		fn()
	}
	res.unwatch = nil
}

type run struct {
	*Runner
	s        *Scenario
	b        *builder
	root     reactive.Observable
	res      *Result
	step     int
	promises map[*reactive.Deferred]*reactive.Promise
	adopted  int
}

type pathError struct {
	path string
	err  error
}

func (e *pathError) Error() string {
	return fmt.Sprintf("path %q: %v", e.path, e.err)
}

func (e *pathError) Unwrap() error { return e.err }

// Run reacts the scenario document, installs its watchers and applies its
// steps, writing one trace line per step, watcher change and read. The
// result is returned even when a step fails.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Result, error) {
	b := &builder{}
	root, ok := r.rt.React(b.Build(s.Document)).(reactive.Observable)
	if !ok {
		return nil, errors.New("E202").
			WithDetail("The document in " + s.file + " must be a mapping or a list")
	}

	x := &run{
		Runner:   r,
		s:        s,
		b:        b,
		root:     root,
		res:      &Result{Document: root},
		promises: make(map[*reactive.Deferred]*reactive.Promise),
	}
	x.adopt()

	r.tr.emit(Line{Event: EventScenario, Name: s.Name})
	for _, w := range s.Watchers {
		x.watch(w)
	}
	for i, st := range s.Steps {
		if err := x.apply(ctx, i+1, st); err != nil {
			return x.res, err
		}
		x.res.Steps++
	}
	r.tr.emit(Line{Event: EventDone, Steps: x.res.Steps, Changes: x.res.Changes})

	if r.tr.err != nil {
		return x.res, errors.Newf(errors.CategoryCLI, "write trace").Wrap(r.tr.err)
	}
	return x.res, nil
}

// adopt maps promises created while building values to the deferreds the
// runtime made for them.
func (x *run) adopt() {
	for _, p := range x.b.promises[x.adopted:] {
		if d, ok := x.rt.React(p).(*reactive.Deferred); ok {
			x.promises[d] = p
		}
	}
	x.adopted = len(x.b.promises)
}

func (x *run) snapshot(v any) any {
	return plain(reactive.Snapshot(v))
}

func (x *run) watch(w Watcher) {
	segs := splitPath(w.Path)
	getter := func() any {
		v, err := resolve(x.root, segs)
		if err != nil {
			return nil
		}
		return v
	}

	label := w.Label()
	// Old values are reported from the previous snapshot; a settled
	// deferred already snapshots to its resolved value.
	last := x.snapshot(x.rt.Isolate(getter))
	x.tr.emit(Line{
		Event: EventWatch,
		Name:  label,
		Path:  w.Path,
		Deep:  w.Deep,
		Value: last,
	})

	opts := []reactive.WatchOption{reactive.Name(label)}
	if w.Deep {
		opts = append(opts, reactive.Deep())
	}
	if w.Immediate {
		opts = append(opts, reactive.Immediate())
	}

	handler := func(newValue, oldValue any) {
		x.res.Changes++
		line := Line{Event: EventChange, Step: x.step, Name: label, Value: x.snapshot(newValue)}
		if o, ok := newValue.(reactive.Observable); ok && o == oldValue {
			line.Same = true
		} else {
			line.Old = last
		}
		last = line.Value
		x.tr.emit(line)
	}
	x.res.unwatch = append(x.res.unwatch, x.rt.Watch(getter, handler, opts...))
}

func (x *run) apply(ctx context.Context, n int, st Step) error {
	x.step = n
	x.logger.Debug("scenario step", "step", n, "op", st.Op, "path", st.Path)
	x.tr.emit(Line{Event: EventStep, Step: n, Op: st.Op, Path: st.Path, Detail: describe(st)})

	err := x.exec(ctx, st)
	x.adopt()

	if st.Fails {
		if err == nil {
			return errors.New("E205").
				WithDetail("Step " + strconv.Itoa(n) + " was expected to fail but succeeded").
				WithLocation(x.s.file, st.Line, st.Column)
		}
		x.tr.emit(Line{Event: EventError, Step: n, Error: err.Error()})
		return nil
	}
	if err == nil {
		return nil
	}

	code := "E205"
	var pe *pathError
	if stderrors.As(err, &pe) {
		code = "E204"
	}
	return errors.New(code).
		WithDetail("Step " + strconv.Itoa(n) + " (" + st.Op + ") failed").
		WithLocation(x.s.file, st.Line, st.Column).
		Wrap(err)
}

func (x *run) exec(ctx context.Context, st Step) error {
	switch st.Op {
	case OpSet:
		o, key, err := x.parent(st.Path)
		if err != nil {
			return err
		}
		return o.Set(key, x.b.Build(st.Value))

	case OpDelete:
		o, key, err := x.parent(st.Path)
		if err != nil {
			return err
		}
		return o.Delete(key)

	case OpPush:
		seq, err := x.sequence(st.Path)
		if err != nil {
			return err
		}
		seq.Push(x.items(st)...)
		return nil

	case OpPop:
		seq, err := x.sequence(st.Path)
		if err != nil {
			return err
		}
		v, ok := seq.Pop()
		if !ok {
			return &reactive.KeyError{Op: "pop", Kind: reactive.KindSequence, Key: seq.Len(), Err: reactive.ErrEmpty}
		}
		x.tr.emit(Line{Event: EventRead, Step: x.step, Value: x.snapshot(v)})
		return nil

	case OpSplice:
		seq, err := x.sequence(st.Path)
		if err != nil {
			return err
		}
		count := seq.Len()
		if st.Count != nil {
			count = *st.Count
		}
		seq.Splice(st.Start, count, x.items(st)...)
		return nil

	case OpAdd, OpRemove:
		v, err := x.value(st.Path)
		if err != nil {
			return err
		}
		set, ok := v.(*reactive.Set)
		if !ok {
			return x.wrongKind(st.Path, v, "set")
		}
		if st.Op == OpAdd {
			return set.Add(x.b.Build(st.Value))
		}
		return set.Remove(x.b.Build(st.Value))

	case OpClear:
		v, err := x.value(st.Path)
		if err != nil {
			return err
		}
		switch t := v.(type) {
		case *reactive.Mapping:
			t.Clear()
		case *reactive.Set:
			t.Clear()
		case *reactive.Sequence:
			t.Splice(0, t.Len())
		default:
			return x.wrongKind(st.Path, v, "mapping, set or sequence")
		}
		return nil

	case OpRead:
		v, err := x.value(st.Path)
		if err != nil {
			return err
		}
		x.tr.emit(Line{Event: EventRead, Step: x.step, Path: st.Path, Value: x.snapshot(v)})
		return nil

	case OpResolve, OpReject:
		return x.settle(ctx, st)
	}
	return fmt.Errorf("unknown op %q", st.Op)
}

// settle resolves or rejects the promise behind a deferred and waits for
// the settlement to be delivered through the runtime's task queue.
func (x *run) settle(ctx context.Context, st Step) error {
	v, err := x.value(st.Path)
	if err != nil {
		return err
	}
	d, ok := v.(*reactive.Deferred)
	if !ok {
		return x.wrongKind(st.Path, v, "deferred")
	}
	p, ok := x.promises[d]
	if !ok {
		return fmt.Errorf("deferred at %q was not created by this scenario", st.Path)
	}
	select {
	case <-d.Done():
		return fmt.Errorf("deferred at %q is already settled", st.Path)
	default:
	}

	if st.Op == OpResolve {
		p.Resolve(x.b.Build(st.Value))
	} else {
		p.Reject(stderrors.New(st.Error))
	}

	stepCtx, cancel := context.WithTimeout(ctx, x.stepTimeout)
	defer cancel()
	return x.rt.Step(stepCtx)
}

func (x *run) items(st Step) []any {
	items := make([]any, len(st.Items))
	for i, it := range st.Items {
		items[i] = x.b.Build(it)
	}
	return items
}

func (x *run) value(path string) (any, error) {
	v, err := resolve(x.root, splitPath(path))
	if err != nil {
		return nil, &pathError{path: path, err: err}
	}
	return v, nil
}

func (x *run) parent(path string) (reactive.Observable, any, error) {
	o, key, err := parent(x.root, path)
	if err != nil {
		return nil, nil, &pathError{path: path, err: err}
	}
	return o, key, nil
}

func (x *run) sequence(path string) (*reactive.Sequence, error) {
	v, err := x.value(path)
	if err != nil {
		return nil, err
	}
	seq, ok := v.(*reactive.Sequence)
	if !ok {
		return nil, x.wrongKind(path, v, "sequence")
	}
	return seq, nil
}

func (x *run) wrongKind(path string, v any, want string) error {
	kind := reactive.KindOf(v).String()
	if o, ok := v.(reactive.Observable); ok {
		kind = o.Kind().String()
	}
	return &pathError{path: path, err: fmt.Errorf("found a %s, want a %s", kind, want)}
}

// describe renders a step's operands for the trace.
func describe(st Step) string {
	switch st.Op {
	case OpSet:
		return "= " + render(plain(st.Value))
	case OpPush:
		return render(plain(st.Items))
	case OpSplice:
		count := "end"
		if st.Count != nil {
			count = strconv.Itoa(*st.Count)
		}
		s := strconv.Itoa(st.Start) + " " + count
		if len(st.Items) > 0 {
			s += " " + render(plain(st.Items))
		}
		return s
	case OpAdd, OpRemove, OpResolve:
		return render(plain(st.Value))
	case OpReject:
		return strconv.Quote(st.Error)
	}
	return ""
}
