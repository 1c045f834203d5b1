package phrase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/phrasekit/internal/eventiter"
	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/gate"
	"github.com/schollz/phrasekit/internal/pattern"
	"github.com/schollz/phrasekit/internal/rhythm"
	"github.com/schollz/phrasekit/internal/timebase"
)

func testBase(t *testing.T) timebase.BeatTime {
	t.Helper()
	bt, err := timebase.NewBeatTime(120, 4, 44100)
	require.NoError(t, err)
	return bt
}

func beatsStep(n float32) rhythm.Step {
	return rhythm.BeatStep(timebase.BeatTimeStep{Kind: timebase.Beats, Amount: n})
}

func noteEvent(n uint32) events.Event {
	return events.NewNoteEvents(&events.NoteEvent{Note: n, Velocity: 1.0})
}

func newRhythm(t *testing.T, pulses []float32, notes ...uint32) *rhythm.Rhythm {
	t.Helper()
	base := testBase(t)
	p := pattern.NewFixedPattern(pulses)
	g := gate.NewThresholdGate()
	evs := make([]events.Event, len(notes))
	for i, n := range notes {
		evs[i] = noteEvent(n)
	}
	it := eventiter.NewFixed(evs...)
	return rhythm.New(base, beatsStep(1), rhythm.Step{}, p, g, it)
}

func TestPhraseRunsAllRhythmsUpToBoundary(t *testing.T) {
	kick := newRhythm(t, []float32{1, 0, 1, 0}, 36)
	snare := newRhythm(t, []float32{0, 1, 0, 1}, 38)
	ph := New(kick, snare)

	var got []SampleTime
	ph.RunUntilTime(SampleTime(2*44100/2), func(st SampleTime, ev *events.Event) {
		got = append(got, st)
	})
	assert.NotEmpty(t, got)
	for _, st := range got {
		assert.Less(t, st, SampleTime(44100))
	}
}

func TestPhraseHeldBackEventsAreReEmittedOnNextCall(t *testing.T) {
	r := newRhythm(t, []float32{1}, 60)
	ph := New(r)

	samplesPerBeat := SampleTime(testBase(t).SamplesPerBeat())

	var firstCall []SampleTime
	ph.RunUntilTime(samplesPerBeat, func(st SampleTime, ev *events.Event) {
		firstCall = append(firstCall, st)
	})
	// first event at t=0 should be visited; the event at t=samplesPerBeat
	// overshoots and is held back, not visited yet.
	assert.Equal(t, []SampleTime{0}, firstCall)
	assert.Equal(t, []SampleTime{samplesPerBeat}, ph.HeldBack())

	var secondCall []SampleTime
	ph.RunUntilTime(samplesPerBeat*2, func(st SampleTime, ev *events.Event) {
		secondCall = append(secondCall, st)
	})
	assert.Contains(t, secondCall, samplesPerBeat)
}

func TestPhraseHeldBackOnlyContainsEntriesAtOrAfterBoundary(t *testing.T) {
	r := newRhythm(t, []float32{1}, 60)
	ph := New(r)

	samplesPerBeat := SampleTime(testBase(t).SamplesPerBeat())
	ph.RunUntilTime(samplesPerBeat, func(SampleTime, *events.Event) {})

	for _, st := range ph.HeldBack() {
		assert.GreaterOrEqual(t, st, samplesPerBeat)
	}
}

func TestPhraseDoesNotMergeRhythmsBySampleTimeAcrossRhythms(t *testing.T) {
	// two independent rhythms with interleaved sample times; the phrase
	// visits one rhythm fully before moving to the next, it never
	// merges their outputs into one globally sorted sequence.
	a := newRhythm(t, []float32{1, 1, 1}, 1, 2, 3)
	b := newRhythm(t, []float32{1, 1, 1}, 101, 102, 103)
	ph := New(a, b)

	var notes []uint32
	ph.RunUntilTime(SampleTime(testBase(t).SamplesPerBeat()*3), func(st SampleTime, ev *events.Event) {
		if ev != nil {
			notes = append(notes, ev.Notes[0].Note)
		}
	})
	require.Len(t, notes, 6)
	assert.Equal(t, []uint32{1, 2, 3, 101, 102, 103}, notes)
}

func TestPhraseResetRewindsAllRhythmsAndClearsHeldBack(t *testing.T) {
	r := newRhythm(t, []float32{1}, 60)
	ph := New(r)

	samplesPerBeat := SampleTime(testBase(t).SamplesPerBeat())
	ph.RunUntilTime(samplesPerBeat, func(SampleTime, *events.Event) {})
	require.NotEmpty(t, ph.HeldBack())

	ph.Reset()
	assert.Empty(t, ph.HeldBack())

	var got []SampleTime
	ph.RunUntilTime(samplesPerBeat, func(st SampleTime, ev *events.Event) {
		got = append(got, st)
	})
	assert.Equal(t, []SampleTime{0}, got)
}

func TestPhraseDuplicateIsIndependent(t *testing.T) {
	r := newRhythm(t, []float32{1}, 60, 61)
	ph := New(r)

	samplesPerBeat := SampleTime(testBase(t).SamplesPerBeat())
	ph.RunUntilTime(samplesPerBeat, func(SampleTime, *events.Event) {})

	dup := ph.Duplicate()
	assert.Equal(t, ph.HeldBack(), dup.HeldBack())

	// advance the original only
	ph.RunUntilTime(samplesPerBeat*3, func(SampleTime, *events.Event) {})

	var dupNotes []uint32
	dup.RunUntilTime(samplesPerBeat*2, func(st SampleTime, ev *events.Event) {
		if ev != nil {
			dupNotes = append(dupNotes, ev.Notes[0].Note)
		}
	})
	assert.Equal(t, []uint32{61}, dupNotes)
}
