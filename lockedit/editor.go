package lockedit

import (
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ImportsRegion is the name of the lock region reserved for the rendered imports.
const ImportsRegion = "imports"

// Key addresses lines of an Editor: a lock Name, a single Line or an explicit Range.
type Key interface {
	lockKey()
}

// Name addresses the lines owned by a lock region.
type Name string

// Line addresses a single line.
type Line int

func (Name) lockKey()  {}
func (Line) lockKey()  {}
func (Range) lockKey() {}

// Editor merges generated content into one file: a Buffer with the Locks over it and the Imports the
// generated content requires.
type Editor struct {
	path          string
	syntax        Syntax
	buffer        *Buffer
	locks         *Locks
	imports       *Imports
	importsAnchor string
}

// Option configures an Editor.
type Option func(*Editor)

// WithSyntax selects the comment and imports syntax. The default is Hash.
func WithSyntax(syntax Syntax) Option {
	return func(e *Editor) {
		e.syntax = syntax
	}
}

// New creates an empty Editor for path. Nothing is read until Load is called.
func New(path string, options ...Option) *Editor {
	e := &Editor{
		path:    path,
		syntax:  Hash,
		buffer:  NewBuffer(),
		locks:   NewLocks(),
		imports: NewImports(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Open creates an Editor for path and loads it.
func Open(path string, options ...Option) (*Editor, error) {
	e := New(path, options...)
	if err := e.Load(); err != nil {
		return nil, err
	}
	return e, nil
}

// Path of the file edited.
func (e *Editor) Path() string { return e.path }

// Syntax used for markers and imports.
func (e *Editor) Syntax() Syntax { return e.syntax }

// Len returns the number of lines.
func (e *Editor) Len() int { return e.buffer.Len() }

// Source returns the current text.
func (e *Editor) Source() string { return e.buffer.String() }

// Imports returns the aggregator rendered into the imports region on Save.
func (e *Editor) Imports() *Imports { return e.imports }

// Has returns whether a lock region called name exists.
func (e *Editor) Has(name string) bool { return e.locks.Contains(name) }

// Locks returns a copy of the lock regions.
func (e *Editor) Locks() map[string]Range { return e.locks.Snapshot() }

// SetImportsAnchor makes a freshly created imports region follow the region called name, when it exists,
// instead of being placed at line 0.
func (e *Editor) SetImportsAnchor(name string) {
	e.importsAnchor = name
}

// String implements fmt.Stringer.
func (e *Editor) String() string {
	return "Editor(" + e.path + ")"
}

// Load reads the file and recovers its lock regions from the sentinel markers.
// A file that doesn't exist is not an error: the editor starts empty.
func (e *Editor) Load() error {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			klog.V(2).Infof("%s doesn't exist yet, starting empty", e.path)
			return nil
		}
		return errors.Wrapf(err, "failed to read %q", e.path)
	}
	lines := SplitLines(string(data))
	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += "\n"
	}
	locks, err := InferLocks(e.syntax, lines)
	if err != nil {
		return errors.WithMessagef(err, "failed to load %q", e.path)
	}
	e.buffer = NewBuffer(lines...)
	e.locks = locks
	klog.V(2).Infof("loaded %s: %d lines, locks %v", e.path, e.buffer.Len(), locks.Names())
	return nil
}

// InferLocks scans lines for sentinel markers and returns the regions they delimit.
// Nested, unterminated, stray and malformed markers, and names used twice, are errors.
func InferLocks(syntax Syntax, lines []string) (*Locks, error) {
	header := syntax.Comment() + " " + lockBegin
	footer := syntax.Comment() + " " + lockEnd
	locks := NewLocks()
	name, start := "", -1
	for lineNo, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, header):
			if start >= 0 {
				return nil, errors.Wrapf(ErrMalformedMarker,
					"line %d: lock nested in lock %q opened at line %d", lineNo, name, start)
			}
			if !strings.HasSuffix(stripped, lockWarning) || len(stripped) <= len(header)+len(lockWarning) {
				return nil, errors.Wrapf(ErrMalformedMarker, "line %d: malformed lock header %q", lineNo, stripped)
			}
			name = stripped[len(header) : len(stripped)-len(lockWarning)]
			start = lineNo

		case stripped == footer:
			if start < 0 {
				return nil, errors.Wrapf(ErrMalformedMarker, "line %d: lock end without a lock begin", lineNo)
			}
			if locks.Contains(name) {
				return nil, errors.Wrapf(ErrMalformedMarker, "line %d: lock %q defined twice", lineNo, name)
			}
			_ = locks.Register(name, Span(start, lineNo+1), false)
			name, start = "", -1
		}
	}
	if start >= 0 {
		return nil, errors.Wrapf(ErrMalformedMarker, "lock %q opened at line %d never ended", name, start)
	}
	return locks, nil
}

// resolve converts key to the range it addresses.
func (e *Editor) resolve(key Key) (Range, error) {
	switch k := key.(type) {
	case Name:
		return e.locks.Lookup(string(k))
	case Line:
		return Span(int(k), int(k)+1), nil
	case Range:
		return k, nil
	}
	return Range{}, errors.Errorf("unknown key type %T", key)
}

// Get returns the lines addressed by key. For a Name it includes the sentinel markers.
func (e *Editor) Get(key Key) ([]string, error) {
	r, err := e.resolve(key)
	if err != nil {
		return nil, err
	}
	return e.buffer.Read(r)
}

// Content returns the lines of region name without its sentinel markers.
func (e *Editor) Content(name string) ([]string, error) {
	lines, err := e.Get(Name(name))
	if err != nil {
		return nil, err
	}
	header := e.syntax.Comment() + " " + lockBegin
	footer := e.syntax.Comment() + " " + lockEnd
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), header) {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == footer {
		lines = lines[:n-1]
	}
	return lines, nil
}

// Set replaces the lines addressed by key with lines.
//
// A Name not yet registered appends lines at the end of the buffer and registers them as a new region.
// A registered Name is replaced in place and its region resized; empty lines remove the region.
// A Line or Range may lie within a region, or fully cover regions (which are then dropped), but an edit
// crossing a single region boundary fails with ErrConflict. On error the editor is left unchanged.
func (e *Editor) Set(key Key, lines []string) error {
	if name, ok := key.(Name); ok {
		edit, err := e.locks.Lookup(string(name))
		if err != nil {
			n := e.buffer.Len()
			edit = Span(n, n)
		}
		return e.apply(edit, lines, string(name), true)
	}
	edit, err := e.resolve(key)
	if err != nil {
		return err
	}
	return e.apply(edit, lines, "", false)
}

// apply validates edit against the locks and only then mutates the buffer and the locks.
func (e *Editor) apply(edit Range, lines []string, name string, named bool) error {
	if err := e.buffer.check(edit); err != nil {
		return err
	}
	lines = terminateLines(lines)
	counts := e.locks.OverlapCounts(edit)
	if named {
		delete(counts, name)
	}
	for _, other := range slices.Sorted(maps.Keys(counts)) {
		if counts[other] == 1 {
			r, _ := e.locks.Lookup(other)
			return errors.Wrapf(ErrConflict, "%s: lines %s intersect lock %q at %s", e.path, edit, other, r)
		}
	}

	if err := e.buffer.Replace(edit, lines); err != nil {
		return err
	}
	for other := range counts {
		klog.V(2).Infof("%s: lock %q dropped, fully replaced by lines %s", e.path, other, edit)
		e.locks.Unregister(other)
	}
	e.locks.ShiftAll(edit, len(lines)-edit.Len())
	if named {
		if len(lines) == 0 {
			e.locks.Unregister(name)
		} else {
			_ = e.locks.Register(name, Span(edit.Start, edit.Start+len(lines)), false)
		}
	}
	return nil
}

// terminateLines makes every line end with exactly one "\n": a missing terminator is added and text
// holding several lines is split, so that markers always sit on lines of their own.
func terminateLines(lines []string) []string {
	if !slices.ContainsFunc(lines, func(line string) bool {
		return !strings.HasSuffix(line, "\n") || strings.Count(line, "\n") > 1
	}) {
		return lines
	}
	var out []string
	for _, line := range lines {
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		out = append(out, SplitLines(line)...)
	}
	return out
}

// Delete removes the lines addressed by key. Deleting a Name removes its region.
func (e *Editor) Delete(key Key) error {
	return e.Set(key, nil)
}

// AddLines appends free text at the end of the buffer.
func (e *Editor) AddLines(lines ...string) error {
	n := e.buffer.Len()
	return e.apply(Span(n, n), lines, "", false)
}

// InsertLines inserts free text before line at.
func (e *Editor) InsertLines(at int, lines ...string) error {
	return e.apply(Span(at, at), lines, "", false)
}

type lockOptions struct {
	headerIndent, footerIndent *string
	line                       int
	hasLine                    bool
}

// LockOption configures SetWithLock.
type LockOption func(*lockOptions)

// HeaderIndent sets the indentation of the opening marker, instead of using the indentation of the first line.
func HeaderIndent(indent string) LockOption {
	return func(o *lockOptions) { o.headerIndent = &indent }
}

// FooterIndent sets the indentation of the closing marker, instead of using the indentation of the last line.
func FooterIndent(indent string) LockOption {
	return func(o *lockOptions) { o.footerIndent = &indent }
}

// AtLine places a region created by SetWithLock before line n instead of at the end of the buffer.
// It has no effect on an existing region.
func AtLine(n int) LockOption {
	return func(o *lockOptions) {
		o.line = n
		o.hasLine = true
	}
}

// SetWithLock wraps lines in the sentinel markers of region name and writes them with Set.
//
// It returns true if the region didn't exist before: callers use it to emit one-time boilerplate
// right after the region. Content of an existing region is always fully overwritten.
func (e *Editor) SetWithLock(name string, lines []string, options ...LockOption) (bool, error) {
	var o lockOptions
	for _, option := range options {
		option(&o)
	}
	headerIndent, footerIndent := "", ""
	if len(lines) > 0 {
		headerIndent = indentOf(lines[0])
		footerIndent = indentOf(lines[len(lines)-1])
	}
	if o.headerIndent != nil {
		headerIndent = *o.headerIndent
	}
	if o.footerIndent != nil {
		footerIndent = *o.footerIndent
	}
	wrapped := Wrap(e.syntax, name, lines, headerIndent, footerIndent)

	fresh := !e.locks.Contains(name)
	if fresh && o.hasLine {
		return fresh, e.insertLocked(name, o.line, wrapped)
	}
	return fresh, e.Set(Name(name), wrapped)
}

// insertLocked inserts a new region before line at, which must not fall inside another region.
func (e *Editor) insertLocked(name string, at int, lines []string) error {
	for _, other := range e.locks.Names() {
		r, _ := e.locks.Lookup(other)
		if r.Start < at && at < r.Stop {
			return errors.Wrapf(ErrConflict, "%s: lock %q can't be inserted at line %d, inside lock %q at %s",
				e.path, name, at, other, r)
		}
	}
	return e.apply(Span(at, at), lines, name, true)
}

// flushImports renders the requested imports into the imports region.
func (e *Editor) flushImports() error {
	rendered := e.imports.Render(e.syntax)
	noIndent := []LockOption{HeaderIndent(""), FooterIndent("")}
	if e.locks.Contains(ImportsRegion) {
		_, err := e.SetWithLock(ImportsRegion, rendered, noIndent...)
		return err
	}
	if len(rendered) == 0 {
		return nil
	}

	at, anchored := 0, false
	if e.importsAnchor != "" {
		if r, err := e.locks.Lookup(e.importsAnchor); err == nil {
			at, anchored = r.Stop, true
		}
	}
	if _, err := e.SetWithLock(ImportsRegion, rendered, append(noIndent, AtLine(at))...); err != nil {
		return err
	}
	r, _ := e.locks.Lookup(ImportsRegion)
	if anchored {
		return e.InsertLines(r.Start, "\n")
	}
	if r.Stop < e.buffer.Len() {
		return e.InsertLines(r.Stop, "\n")
	}
	return nil
}

// Save renders the imports into their region and writes the file, creating parent directories as needed.
// The file is replaced atomically: a crash never leaves a partially written file behind.
func (e *Editor) Save() error {
	if err := e.flushImports(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %q", e.path)
	}
	if err := writeFileAtomic(e.path, []byte(e.buffer.String())); err != nil {
		return err
	}
	klog.V(1).Infof("saved %s (%d lines, %d locks)", e.path, e.buffer.Len(), e.locks.Len())
	return nil
}

// writeFileAtomic writes data to a temporary file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file for %q", path)
	}
	tmpPath := f.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return errors.Wrapf(err, "failed to write %q", tmpPath)
	}
	if err = f.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "failed to close %q", tmpPath)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return errors.Wrapf(err, "failed to set permissions of %q", tmpPath)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		cleanup()
		return errors.Wrapf(err, "failed to move %q to %q", tmpPath, path)
	}
	return nil
}
