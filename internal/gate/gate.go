// Package gate implements the predicate that decides whether a gated
// RhythmEvent actually fires: threshold, probability, or a scripted
// adapter callback.
package gate

import (
	"fmt"
	"log"

	"github.com/schollz/phrasekit/internal/pulse"
	"github.com/schollz/phrasekit/internal/timebase"
	"github.com/schollz/phrasekit/internal/xoshiro"
)

// Gate decides, for a given RhythmEvent, whether it should fire.
type Gate interface {
	// Run returns true if the event should trigger.
	Run(event *pulse.RhythmEvent) bool
	// SetTimeBase notifies the gate of a (possibly new) beat time base.
	SetTimeBase(base timebase.BeatTime)
	// Duplicate returns a deep, independent clone (including RNG state).
	Duplicate() Gate
	// Reset rewinds the gate to its initial state.
	Reset()
}

// ThresholdGate fires when event.Value > Threshold.
type ThresholdGate struct {
	Threshold float32
}

// NewThresholdGate creates a ThresholdGate with the default threshold (0).
func NewThresholdGate() *ThresholdGate { return &ThresholdGate{Threshold: 0} }

// WithThreshold returns a ThresholdGate with the given threshold.
func WithThreshold(threshold float32) *ThresholdGate { return &ThresholdGate{Threshold: threshold} }

// Run implements Gate.
func (g *ThresholdGate) Run(event *pulse.RhythmEvent) bool { return event.Value > g.Threshold }

// SetTimeBase implements Gate; ThresholdGate ignores time base changes.
func (g *ThresholdGate) SetTimeBase(timebase.BeatTime) {}

// Duplicate implements Gate.
func (g *ThresholdGate) Duplicate() Gate { return &ThresholdGate{Threshold: g.Threshold} }

// Reset implements Gate; ThresholdGate carries no state to reset.
func (g *ThresholdGate) Reset() {}

// ProbabilityGate fires definitely at value>=1, never at value<=0, and
// with probability `value` otherwise, drawing from a seedable xoshiro256++
// generator so runs are reproducible.
type ProbabilityGate struct {
	rng  *xoshiro.Rng
	seed *[32]byte
}

// NewProbabilityGate creates a ProbabilityGate. If seed is nil, the
// generator is seeded from system entropy (and Reset reseeds from fresh
// entropy again, losing reproducibility, as documented in spec.md §4.3).
func NewProbabilityGate(seed *[32]byte) *ProbabilityGate {
	g := &ProbabilityGate{seed: seed}
	g.reseed()
	return g
}

func (g *ProbabilityGate) reseed() {
	if g.seed != nil {
		g.rng = xoshiro.New(*g.seed)
	} else {
		g.rng = xoshiro.NewFromEntropy()
	}
}

// Run implements Gate.
func (g *ProbabilityGate) Run(event *pulse.RhythmEvent) bool {
	v := event.Value
	return v >= 1.0 || (v > 0.0 && float64(v) > g.rng.Float64())
}

// SetTimeBase implements Gate; ProbabilityGate ignores time base changes.
func (g *ProbabilityGate) SetTimeBase(timebase.BeatTime) {}

// Duplicate implements Gate. The clone copies the original's live RNG
// state, so both continue with the same sequence of draws from this point,
// and it keeps the same stored seed, so Reset on either restarts from it.
func (g *ProbabilityGate) Duplicate() Gate {
	cp := &ProbabilityGate{seed: g.seed}
	if g.rng != nil {
		rngCopy := *g.rng
		cp.rng = &rngCopy
	} else {
		cp.reseed()
	}
	return cp
}

// Reset implements Gate: re-seeds from the stored seed (or fresh entropy).
func (g *ProbabilityGate) Reset() { g.reseed() }

// ErrorSink receives adapter errors caught at the scripted-gate boundary
// (spec.md §7 AdapterError). A nil sink logs via the stdlib `log` package,
// the only logging mechanism this codebase's teacher ever uses.
type ErrorSink func(err error)

func defaultSink(err error) { log.Printf("gate: adapter error: %v", err) }

// Scripted adapts an external callback to the Gate contract (spec.md §6,
// "Gate adapter"). It recovers any panic raised by fn, reports it through
// sink, and degrades to false per the AdapterError policy (spec.md §7).
type Scripted struct {
	fn   func(event *pulse.RhythmEvent) (bool, error)
	sink ErrorSink
}

// NewScripted wraps fn as a Gate. A nil sink uses the package default
// (log.Printf).
func NewScripted(fn func(event *pulse.RhythmEvent) (bool, error), sink ErrorSink) *Scripted {
	if sink == nil {
		sink = defaultSink
	}
	return &Scripted{fn: fn, sink: sink}
}

// Run implements Gate.
func (s *Scripted) Run(event *pulse.RhythmEvent) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			s.sink(panicToError(r))
			result = false
		}
	}()
	ok, err := s.fn(event)
	if err != nil {
		s.sink(err)
		return false
	}
	return ok
}

// SetTimeBase implements Gate; the callback has no time base state of its
// own to refresh here (a richer adapter would forward it into the
// callback's context, as the scripting bindings out of scope for this
// module would).
func (s *Scripted) SetTimeBase(timebase.BeatTime) {}

// Duplicate implements Gate. Scripted callbacks are assumed stateless
// closures over their captured environment (the stateful case is modeled
// by eventiter.Mutated, which is explicitly non-duplicable); duplicating
// here just shares the same fn/sink.
func (s *Scripted) Duplicate() Gate { return &Scripted{fn: s.fn, sink: s.sink} }

// Reset implements Gate; see SPEC_FULL.md §9 item 3 -- a Scripted gate has
// no re-entrant state of its own, so Reset is a no-op.
func (s *Scripted) Reset() {}

func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{r}
}

type panicError struct{ value interface{} }

func (p *panicError) Error() string { return fmt.Sprintf("panic in scripted adapter: %v", p.value) }
