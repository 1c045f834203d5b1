// Package eventiter implements resettable streams of events.Event: fixed,
// sequence, mapped, mutated (non-duplicable), from-iter, and scripted
// adapters.
package eventiter

import (
	"fmt"
	"log"

	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/timebase"
)

// EventIter is a resettable, infinite (or finite-then-None) stream of
// events.Event.
type EventIter interface {
	// Next returns the next event, or nil if the iterator is exhausted.
	Next() *events.Event
	// Reset rewinds the iterator to its initial state.
	Reset()
	// Duplicate returns a deep, independent clone.
	Duplicate() EventIter
	// SetTimeBase notifies the iterator of a (possibly new) beat time base.
	SetTimeBase(base timebase.BeatTime)
}

// EmptyEventIter always returns nil. It is also the sentinel substituted
// for a non-duplicable Mutated iterator (spec.md §7, ClonePanic).
type EmptyEventIter struct{}

// Next implements EventIter.
func (EmptyEventIter) Next() *events.Event { return nil }

// Reset implements EventIter.
func (EmptyEventIter) Reset() {}

// Duplicate implements EventIter.
func (EmptyEventIter) Duplicate() EventIter { return EmptyEventIter{} }

// SetTimeBase implements EventIter.
func (EmptyEventIter) SetTimeBase(timebase.BeatTime) {}

// Fixed cycles through a fixed vector of events. An empty vector always
// returns nil.
type Fixed struct {
	events []events.Event
	index  int
}

// NewFixed creates a Fixed event iterator over the given events.
func NewFixed(evs ...events.Event) *Fixed {
	return &Fixed{events: append([]events.Event(nil), evs...)}
}

// Next implements EventIter.
func (f *Fixed) Next() *events.Event {
	if len(f.events) == 0 {
		return nil
	}
	e := f.events[f.index]
	f.index = (f.index + 1) % len(f.events)
	return &e
}

// Reset implements EventIter.
func (f *Fixed) Reset() { f.index = 0 }

// Duplicate implements EventIter.
func (f *Fixed) Duplicate() EventIter {
	return &Fixed{events: append([]events.Event(nil), f.events...), index: f.index}
}

// SetTimeBase implements EventIter; Fixed carries no time-dependent state.
func (f *Fixed) SetTimeBase(timebase.BeatTime) {}

// Sequence is a Fixed iterator where each element represents one slot in a
// musical sequence; it cycles identically to Fixed.
type Sequence = Fixed

// NewSequence creates a Sequence (alias of Fixed) over the given events.
func NewSequence(evs ...events.Event) *Sequence { return NewFixed(evs...) }

// MapFn transforms one event into the next, pure and cloneable (it is
// invoked once per step, including once eagerly at construction/reset, so
// it must not depend on external mutable state).
type MapFn func(events.Event) events.Event

// Mapped emits events[i], then replaces events[i] with f(events[i]),
// advancing i modulo length. f is applied once to index 0 at construction
// and again on Reset.
type Mapped struct {
	f       MapFn
	initial []events.Event
	current []events.Event
	index   int
}

// NewMapped creates a Mapped iterator over evs, applying f once to index 0.
func NewMapped(evs []events.Event, f MapFn) *Mapped {
	initial := append([]events.Event(nil), evs...)
	m := &Mapped{f: f, initial: initial}
	m.applyInitial()
	return m
}

func (m *Mapped) applyInitial() {
	m.current = cloneEvents(m.initial)
	if len(m.current) > 0 {
		m.current[0] = m.f(m.current[0])
	}
	m.index = 0
}

// Next implements EventIter.
func (m *Mapped) Next() *events.Event {
	if len(m.current) == 0 {
		return nil
	}
	e := m.current[m.index].Clone()
	m.current[m.index] = m.f(m.current[m.index])
	m.index = (m.index + 1) % len(m.current)
	return &e
}

// Reset implements EventIter.
func (m *Mapped) Reset() { m.applyInitial() }

// Duplicate implements EventIter. f is assumed pure/cloneable per spec.
func (m *Mapped) Duplicate() EventIter {
	return &Mapped{
		f:       m.f,
		initial: cloneEvents(m.initial),
		current: cloneEvents(m.current),
		index:   m.index,
	}
}

// SetTimeBase implements EventIter; Mapped's transform has no time base of
// its own to refresh.
func (m *Mapped) SetTimeBase(timebase.BeatTime) {}

// NoteMapFn transforms a single note occupying a polyphonic slot, given
// its slot index; it is applied to every non-nil slot of a NoteEvents
// event, preserving slot indices. ParameterChange events pass through
// unchanged.
type NoteMapFn func(note events.NoteEvent, slotIndex int) events.NoteEvent

// MappedNote behaves like Mapped, but applies f per non-nil polyphonic
// slot instead of to the whole event.
type MappedNote struct {
	f       NoteMapFn
	initial []events.Event
	current []events.Event
	index   int
}

// NewMappedNote creates a MappedNote iterator over evs, applying f once to
// index 0's note slots.
func NewMappedNote(evs []events.Event, f NoteMapFn) *MappedNote {
	initial := append([]events.Event(nil), evs...)
	m := &MappedNote{f: f, initial: initial}
	m.applyInitial()
	return m
}

func (m *MappedNote) applyInitial() {
	m.current = cloneEvents(m.initial)
	if len(m.current) > 0 {
		m.current[0] = applyNoteMap(m.current[0], m.f)
	}
	m.index = 0
}

func applyNoteMap(e events.Event, f NoteMapFn) events.Event {
	if e.Kind != events.KindNoteEvents {
		return e
	}
	notes := make([]*events.NoteEvent, len(e.Notes))
	for i, n := range e.Notes {
		if n == nil {
			continue
		}
		mapped := f(*n, i)
		notes[i] = &mapped
	}
	return events.Event{Kind: events.KindNoteEvents, Notes: notes}
}

func cloneEvents(evs []events.Event) []events.Event {
	out := make([]events.Event, len(evs))
	for i, e := range evs {
		out[i] = e.Clone()
	}
	return out
}

// Next implements EventIter.
func (m *MappedNote) Next() *events.Event {
	if len(m.current) == 0 {
		return nil
	}
	e := m.current[m.index]
	m.current[m.index] = applyNoteMap(m.current[m.index], m.f)
	m.index = (m.index + 1) % len(m.current)
	return &e
}

// Reset implements EventIter.
func (m *MappedNote) Reset() { m.applyInitial() }

// Duplicate implements EventIter.
func (m *MappedNote) Duplicate() EventIter {
	return &MappedNote{
		f:       m.f,
		initial: cloneEvents(m.initial),
		current: cloneEvents(m.current),
		index:   m.index,
	}
}

// SetTimeBase implements EventIter.
func (m *MappedNote) SetTimeBase(timebase.BeatTime) {}

// MutateFn is a stateful transform applied in place to an event. Unlike
// MapFn, it may close over mutable state that need not be reproducible.
type MutateFn func(e *events.Event)

// Mutated behaves like Mapped but its closure is stateful and therefore
// not duplicable: Duplicate returns an EmptyEventIter sentinel rather than
// panicking or attempting a (meaningless) deep copy of the closure's
// captured state (spec.md §7 ClonePanic, §9 "Mutated (non-cloneable)
// emitters").
type Mutated struct {
	mutate  MutateFn
	initial []events.Event
	current []events.Event
	index   int
}

// NewMutated creates a Mutated iterator over evs, applying mutate once to
// index 0.
func NewMutated(evs []events.Event, mutate MutateFn) *Mutated {
	initial := cloneEvents(evs)
	m := &Mutated{mutate: mutate, initial: initial}
	m.applyInitial()
	return m
}

func (m *Mutated) applyInitial() {
	m.current = cloneEvents(m.initial)
	if len(m.current) > 0 {
		m.mutate(&m.current[0])
	}
	m.index = 0
}

// Next implements EventIter.
func (m *Mutated) Next() *events.Event {
	if len(m.current) == 0 {
		return nil
	}
	e := m.current[m.index].Clone()
	m.mutate(&m.current[m.index])
	m.index = (m.index + 1) % len(m.current)
	return &e
}

// Reset implements EventIter.
func (m *Mutated) Reset() { m.applyInitial() }

// Duplicate implements EventIter. Mutated iterators are not duplicable
// (their closures may hold irreproducible state); this returns an
// EmptyEventIter sentinel, the documented choice for spec.md's ClonePanic.
func (m *Mutated) Duplicate() EventIter {
	log.Printf("eventiter: Mutated is not duplicable, substituting EmptyEventIter")
	return EmptyEventIter{}
}

// SetTimeBase implements EventIter; the stateful closure has no time base
// of its own to refresh here.
func (m *Mutated) SetTimeBase(timebase.BeatTime) {}

// FromIter wraps a snapshot of an external/foreign iterator (next func);
// Reset restores the original snapshot function so playback can replay
// from the start.
type FromIter struct {
	newInner func() func() (*events.Event, bool)
	inner    func() (*events.Event, bool)
}

// NewFromIter wraps newInner, a factory that produces a fresh next-func
// snapshot each time it's called (so Reset/Duplicate can restart or clone
// the sequence it describes).
func NewFromIter(newInner func() func() (*events.Event, bool)) *FromIter {
	f := &FromIter{newInner: newInner}
	f.inner = newInner()
	return f
}

// Next implements EventIter.
func (f *FromIter) Next() *events.Event {
	e, ok := f.inner()
	if !ok {
		return nil
	}
	return e
}

// Reset implements EventIter.
func (f *FromIter) Reset() { f.inner = f.newInner() }

// Duplicate implements EventIter.
func (f *FromIter) Duplicate() EventIter {
	return &FromIter{newInner: f.newInner, inner: f.newInner()}
}

// SetTimeBase implements EventIter; FromIter has no time base of its own.
func (f *FromIter) SetTimeBase(timebase.BeatTime) {}

// ErrorSink receives adapter errors caught at the Scripted boundary.
type ErrorSink func(err error)

func defaultSink(err error) { log.Printf("eventiter: adapter error: %v", err) }

// Scripted adapts an external callback to the EventIter contract (spec.md
// §6 "EventIter adapter"). It recovers any panic raised by fn, reports it
// through sink, and degrades to nil (None) per the AdapterError policy.
type Scripted struct {
	fn   func() (events.Event, bool, error)
	sink ErrorSink
}

// NewScripted wraps fn (returning an event, whether it produced one, and
// an error) as an EventIter. A nil sink uses the package default.
func NewScripted(fn func() (events.Event, bool, error), sink ErrorSink) *Scripted {
	if sink == nil {
		sink = defaultSink
	}
	return &Scripted{fn: fn, sink: sink}
}

// Next implements EventIter.
func (s *Scripted) Next() (result *events.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.sink(panicToError(r))
			result = nil
		}
	}()
	e, ok, err := s.fn()
	if err != nil {
		s.sink(err)
		return nil
	}
	if !ok {
		return nil
	}
	return &e
}

// Reset implements EventIter; see SPEC_FULL.md §9 item 3 -- a Scripted
// iterator holds no re-entrant state of its own, so Reset is a no-op: the
// next Next() call is always a clean re-entry into fn.
func (s *Scripted) Reset() {}

// Duplicate implements EventIter; the callback is assumed to be a
// stateless closure (the stateful case is Mutated, which is explicitly
// non-duplicable).
func (s *Scripted) Duplicate() EventIter { return &Scripted{fn: s.fn, sink: s.sink} }

// SetTimeBase implements EventIter.
func (s *Scripted) SetTimeBase(timebase.BeatTime) {}

func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{r}
}

type panicError struct{ value interface{} }

func (p *panicError) Error() string {
	return fmt.Sprintf("eventiter: panic in scripted adapter: %v", p.value)
}
