// Package phrase combines one or more rhythm.Rhythm to run together as a
// single, time-ordered event stream.
package phrase

import (
	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/rhythm"
	"github.com/schollz/phrasekit/internal/timebase"
)

// SampleTime is an absolute sample position.
type SampleTime = rhythm.SampleTime

type heldBack struct {
	sampleTime SampleTime
	event      *events.Event
}

// Visitor is called once per emitted (sample_time, event) pair. event is
// nil for a rest.
type Visitor func(sampleTime SampleTime, event *events.Event)

// Phrase combines and runs one or more Rhythms at the same time, allowing
// more complex patterns to be formed from simpler ones run together — for
// example a drum kit where each instrument's rhythm is defined separately
// and then combined into one pattern that plays the whole kit.
type Phrase struct {
	rhythms  []*rhythm.Rhythm
	heldBack []heldBack
}

// New combines the given rhythms into a Phrase. Each Rhythm is taken by
// reference and owned exclusively by the returned Phrase.
func New(rhythms ...*rhythm.Rhythm) *Phrase {
	return &Phrase{rhythms: append([]*rhythm.Rhythm(nil), rhythms...)}
}

// RunUntilTime runs every Rhythm in order until runSampleTime is reached,
// calling visitor for each emitted (sample_time, event) pair in the order
// encountered. Events held back from a prior call (because they overshot
// that call's runSampleTime) are visited first, in the order their owning
// Rhythm appears in the Phrase; events belonging to different Rhythms are
// never merged or sorted against each other by sample time.
func (p *Phrase) RunUntilTime(runSampleTime SampleTime, visitor Visitor) {
	// emit held back events first
	remaining := p.heldBack[:0]
	for _, hb := range p.heldBack {
		if hb.sampleTime < runSampleTime {
			visitor(hb.sampleTime, hb.event)
		} else {
			remaining = append(remaining, hb)
		}
	}
	p.heldBack = remaining

	// then all new ones
	for _, r := range p.rhythms {
		if r.CurrentSampleTime() >= runSampleTime {
			continue
		}
		for {
			sampleTime, event, ok := r.Run()
			if !ok {
				break
			}
			if sampleTime >= runSampleTime {
				// hold the last overshot event back for the next call
				p.heldBack = append(p.heldBack, heldBack{sampleTime, event})
				break
			}
			visitor(sampleTime, event)
		}
	}
}

// SetTimeBase propagates a time base change to every Rhythm in the
// Phrase.
func (p *Phrase) SetTimeBase(base timebase.BeatTime) {
	for _, r := range p.rhythms {
		r.SetTimeBase(base)
	}
}

// Reset rewinds every Rhythm and discards any held-back events.
func (p *Phrase) Reset() {
	p.heldBack = p.heldBack[:0]
	for _, r := range p.rhythms {
		r.Reset()
	}
}

// Duplicate returns a deep, independent clone of the Phrase, including a
// duplicate of the held-back buffer.
func (p *Phrase) Duplicate() *Phrase {
	dup := &Phrase{
		rhythms:  make([]*rhythm.Rhythm, len(p.rhythms)),
		heldBack: append([]heldBack(nil), p.heldBack...),
	}
	for i, r := range p.rhythms {
		dup.rhythms[i] = r.Duplicate()
	}
	return dup
}

// HeldBack returns a snapshot of the events currently held back for the
// next RunUntilTime call, for diagnostic/monitoring use.
func (p *Phrase) HeldBack() []SampleTime {
	out := make([]SampleTime, len(p.heldBack))
	for i, hb := range p.heldBack {
		out[i] = hb.sampleTime
	}
	return out
}
