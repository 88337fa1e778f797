package record

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
)

// ErrNoValue is returned by operations that need a current value when the
// record has never been assigned one.
var ErrNoValue = errors.New("record has no value")

type ValueKind int

const (
	Nothing ValueKind = iota
	Unknown
	Text
)

func (k ValueKind) String() string {
	switch k {
	case Nothing:
		return "nothing"
	case Unknown:
		return "unknown"
	case Text:
		return "text"
	}

	return "<invalid>"
}

// Value is one entry in a record's history. Values are never mutated after
// assignment.
type Value struct {
	Kind ValueKind
	Text string
	AsOf time.Time
}

// Record is a named node in a hierarchy of records. Each record keeps an
// append-only history of the values assigned to it; the newest entry is the
// current value.
type Record struct {
	name     string
	parent   *Record
	children []*Record
	history  []Value
}

func New(name string) *Record {
	return &Record{name: name}
}

func (r *Record) Name() string {
	return r.name
}

func (r *Record) Parent() *Record {
	return r.parent
}

// Children returns the records directly under r, in insertion order.
func (r *Record) Children() []*Record {
	out := make([]*Record, len(r.children))
	copy(out, r.children)

	return out
}

// PutUnder makes parent the single parent of r, detaching r from its
// current parent first.
func (r *Record) PutUnder(parent *Record) error {
	if parent == nil {
		return errors.New("nil parent record")
	}

	for p := parent; p != nil; p = p.parent {
		if p == r {
			return fmt.Errorf("record %q cannot be put under itself or its own descendant", r.name)
		}
	}

	r.detach()
	r.parent = parent
	parent.children = append(parent.children, r)

	return nil
}

func (r *Record) detach() {
	if r.parent == nil {
		return
	}

	siblings := r.parent.children
	if i := slices.Index(siblings, r); i >= 0 {
		r.parent.children = slices.Delete(siblings, i, i+1)
	}

	r.parent = nil
}

// Assign records a new value stamped with the current time. Assigning the
// same kind and text as the current value is a no-op, so the history only
// ever holds changes.
func (r *Record) Assign(kind ValueKind, text string) {
	if cur, ok := r.Current(); ok && cur.Kind == kind && cur.Text == text {
		return
	}

	r.history = append(r.history, Value{
		Kind: kind,
		Text: text,
		AsOf: time.Now(),
	})
}

// Current returns the newest value, if any.
func (r *Record) Current() (Value, bool) {
	if len(r.history) == 0 {
		return Value{}, false
	}

	return r.history[len(r.history)-1], true
}

// History returns every value assigned to r, oldest first.
func (r *Record) History() []Value {
	out := make([]Value, len(r.history))
	copy(out, r.history)

	return out
}

// CopySlice assigns the inclusive [start, end] slice of r's current text to
// dst as a new text value.
func (r *Record) CopySlice(dst *Record, start, end int) error {
	if dst == nil {
		return errors.New("nil destination record")
	}

	cur, ok := r.Current()
	if !ok {
		return ErrNoValue
	}

	if start < 0 || end < start || end >= len(cur.Text) {
		return fmt.Errorf("slice [%d, %d] out of bounds for value of length %d", start, end, len(cur.Text))
	}

	dst.Assign(Text, cur.Text[start:end+1])

	return nil
}

// Splice replaces deleteCount characters of the current text at index with
// insert, assigning the result as a new text value.
func (r *Record) Splice(index, deleteCount int, insert string) error {
	cur, ok := r.Current()
	if !ok {
		return ErrNoValue
	}

	if index < 0 || index > len(cur.Text) {
		return fmt.Errorf("splice index %d out of bounds for value of length %d", index, len(cur.Text))
	}
	if deleteCount < 0 || index+deleteCount > len(cur.Text) {
		return fmt.Errorf("cannot delete %d characters at index %d from value of length %d", deleteCount, index, len(cur.Text))
	}

	r.Assign(Text, cur.Text[:index]+insert+cur.Text[index+deleteCount:])

	return nil
}

// Find returns the first record named name in a depth-first walk starting
// at r, or nil if no such record exists.
func (r *Record) Find(name string) *Record {
	if r.name == name {
		return r
	}

	for _, c := range r.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}

	return nil
}
