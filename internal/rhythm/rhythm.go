// Package rhythm composes a TimeBase, Pattern, Gate and EventIter into a
// sample-accurate, resettable stream of (sample_time, *Event) pairs.
package rhythm

import (
	"math"

	"github.com/schollz/phrasekit/internal/eventiter"
	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/gate"
	"github.com/schollz/phrasekit/internal/pattern"
	"github.com/schollz/phrasekit/internal/pulse"
	"github.com/schollz/phrasekit/internal/timebase"
)

// SampleTime is an absolute sample position.
type SampleTime = uint64

// Step is a beat-time or second-time step amount. Exactly one of the two
// fields is meaningful, selected by which constructor built the Rhythm.
type Step struct {
	Beat   timebase.BeatTimeStep
	Second timebase.SecondTimeStep
	isBeat bool
}

// BeatStep wraps a BeatTimeStep as a Step.
func BeatStep(s timebase.BeatTimeStep) Step { return Step{Beat: s, isBeat: true} }

// SecondStep wraps a SecondTimeStep as a Step.
func SecondStep(s timebase.SecondTimeStep) Step { return Step{Second: s, isBeat: false} }

func (s Step) samplesPerStep(base timebase.BeatTime) float64 {
	if s.isBeat {
		return s.Beat.SamplesPerStep(base)
	}
	sb, _ := timebase.NewSecondTime(base.SamplesPerSec)
	return s.Second.SamplesPerStep(sb)
}

func (s Step) toSamples(base timebase.BeatTime) float64 {
	if s.isBeat {
		return s.Beat.ToSamples(base)
	}
	sb, _ := timebase.NewSecondTime(base.SamplesPerSec)
	return s.Second.ToSamples(sb)
}

type pendingEntry struct {
	sampleTime SampleTime
	event      *events.Event
}

// Rhythm is the aggregate composition of a TimeBase + Pattern + Gate +
// EventIter over a musical step, per spec.md §4.5.
type Rhythm struct {
	base timebase.BeatTime
	step Step

	offset  Step
	pattern pattern.Pattern
	gate    gate.Gate
	iter    eventiter.EventIter

	repeatCount *uint64 // nil means infinite
	pulseStep   uint64

	currentSampleTime float64
	pending           []pendingEntry
	exhausted         bool

	maxLeavesSeen int
}

// New constructs a Rhythm. offset, p, g and it are taken by reference and
// owned exclusively by the returned Rhythm (spec.md §3 Ownership).
func New(base timebase.BeatTime, step Step, offset Step, p pattern.Pattern, g gate.Gate, it eventiter.EventIter) *Rhythm {
	r := &Rhythm{
		base:    base,
		step:    step,
		offset:  offset,
		pattern: p,
		gate:    g,
		iter:    it,
	}
	r.currentSampleTime = offset.toSamples(base)
	return r
}

// CurrentSampleTime returns the Rhythm's current playback position, in
// samples (as an integer floor of its internal f64 accumulator).
func (r *Rhythm) CurrentSampleTime() SampleTime {
	return SampleTime(math.Floor(r.currentSampleTime))
}

// SetRepeatCount limits the Rhythm to count+1 plays of its pattern period;
// nil means infinite (the default).
func (r *Rhythm) SetRepeatCount(count *uint64) {
	r.repeatCount = count
}

// SetTimeBase updates the Rhythm's time base. Per spec.md §9 Open Question
// #2, ongoing accumulated sample time is rescaled by the ratio of new to
// old samples-per-beat, so musical position (not raw sample position) is
// preserved across a tempo change.
func (r *Rhythm) SetTimeBase(base timebase.BeatTime) {
	oldSamplesPerBeat := r.base.SamplesPerBeat()
	newSamplesPerBeat := base.SamplesPerBeat()
	if oldSamplesPerBeat > 0 {
		ratio := newSamplesPerBeat / oldSamplesPerBeat
		r.currentSampleTime *= ratio
		for i := range r.pending {
			r.pending[i].sampleTime = SampleTime(float64(r.pending[i].sampleTime) * ratio)
		}
	}
	r.base = base
	r.pattern.SetTimeBase(base)
	r.gate.SetTimeBase(base)
	r.iter.SetTimeBase(base)
}

// Run advances the Rhythm by one (sample_time, event) pair. The third
// return value is false once the Rhythm is permanently exhausted
// (spec.md's ExhaustedPattern terminal state), distinct from an emitted
// rest (event == nil with ok == true).
func (r *Rhythm) Run() (sampleTime SampleTime, event *events.Event, ok bool) {
	if len(r.pending) == 0 {
		if r.exhausted {
			return 0, nil, false
		}
		if !r.fillPending() {
			r.exhausted = true
			return 0, nil, false
		}
	}

	head := r.pending[0]
	r.pending = r.pending[1:]
	return head.sampleTime, head.event, true
}

// fillPending pulls the next Pulse, expands it into RhythmEvents, gates
// and emits each, and enqueues the resulting (sample_time, event) pairs.
// Returns false if the pattern is exhausted and nothing was enqueued.
func (r *Rhythm) fillPending() bool {
	if r.pattern.IsEmpty() {
		return false
	}

	p := r.pattern.Run()
	leaves := pulse.Flatten(p)
	if len(leaves) > r.maxLeavesSeen {
		r.maxLeavesSeen = len(leaves)
	}
	if cap(r.pending) < len(leaves) {
		r.pending = make([]pendingEntry, 0, r.maxLeavesSeen)
	}

	for i := range leaves {
		ev := leaves[i]
		t := SampleTime(math.Floor(r.currentSampleTime))
		r.currentSampleTime += ev.StepTime * r.step.samplesPerStep(r.base)

		var out *events.Event
		if r.gate.Run(&ev) {
			next := r.iter.Next()
			out = next
		}
		r.pending = append(r.pending, pendingEntry{sampleTime: t, event: out})
	}

	r.advanceRepeat()
	return true
}

func (r *Rhythm) advanceRepeat() {
	period := uint64(r.pattern.Len())
	if period == 0 {
		return
	}
	r.pulseStep++
	if r.pulseStep == period {
		r.pulseStep = 0
		if r.repeatCount != nil {
			if *r.repeatCount == 0 {
				r.exhausted = true
				return
			}
			remaining := *r.repeatCount - 1
			r.repeatCount = &remaining
		}
	}
}

// Reset rewinds the Rhythm's pattern, gate, event iterator and pending
// buffer to their initial state, per spec.md §4.5.
func (r *Rhythm) Reset() {
	r.pattern.Reset()
	r.gate.Reset()
	r.iter.Reset()
	r.pending = r.pending[:0]
	r.pulseStep = 0
	r.exhausted = false
	r.currentSampleTime = r.offset.toSamples(r.base)
}

// Duplicate returns a deep, independent clone of the Rhythm, including RNG
// state held by a seeded Gate. If the Rhythm's EventIter is a Mutated
// iterator, the clone's iterator degrades to an EmptyEventIter per
// eventiter.Mutated.Duplicate's documented contract.
func (r *Rhythm) Duplicate() *Rhythm {
	dup := &Rhythm{
		base:              r.base,
		step:              r.step,
		offset:            r.offset,
		pattern:           r.pattern.Duplicate(),
		gate:              r.gate.Duplicate(),
		iter:              r.iter.Duplicate(),
		pulseStep:         r.pulseStep,
		currentSampleTime: r.currentSampleTime,
		exhausted:         r.exhausted,
		maxLeavesSeen:     r.maxLeavesSeen,
	}
	if r.repeatCount != nil {
		v := *r.repeatCount
		dup.repeatCount = &v
	}
	dup.pending = make([]pendingEntry, len(r.pending))
	copy(dup.pending, r.pending)
	return dup
}
