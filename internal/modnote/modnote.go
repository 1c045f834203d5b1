// Package modnote applies scale/increment/random note modulation to a
// events.NoteEvent, adapted from the teacher's tracker-cell modulation
// engine to operate directly on the sequencing engine's event model.
package modnote

import (
	"math/rand"
	"time"

	"github.com/schollz/phrasekit/internal/events"
)

func timeSeed() int64 { return time.Now().UnixNano() }

// Settings configures how ApplyModulation perturbs a MIDI note value.
type Settings struct {
	// Seed selects how the rng is seeded for the IRandom draw: -1 (any
	// negative value) draws from the supplied rng without reseeding it, 0
	// reseeds it from wall-clock time on every application, 1+ reseeds it
	// with that fixed value, so the draw is reproducible.
	Seed int
	// IRandom is the random range added to the note, 0 disables it.
	IRandom int
	// Sub is subtracted from the note after randomization.
	Sub int
	// Add is added to the note after Sub.
	Add int
	// Increment, if > 0, enables ApplyIncrement: the external increment
	// counter (wrapped by Wrap) is added to the note before any other
	// step. Only whether Increment is > 0 matters; the counter's value,
	// not Increment's, is what gets added.
	Increment int
	// Wrap, if > 0, wraps the increment counter back into [0, Wrap).
	Wrap int
	// ScaleRoot is the scale's root note, 0-11 (C=0).
	ScaleRoot int
	// Scale selects a named scale from Scales; "all" or "" disables
	// quantization.
	Scale string
	// Probability is the percent chance (0-100) that modulation is
	// applied at all; 100 always applies it.
	Probability int
}

// NewSettings returns the defaults: no randomization, no scale
// quantization, modulation always applied.
func NewSettings() Settings {
	return Settings{
		Seed:        -1,
		Scale:       "all",
		Probability: 100,
	}
}

// Scale is a named musical scale: the set of semitone offsets within an
// octave that belong to it.
type Scale struct {
	Name  string
	Notes []int
}

// Scales are the built-in scale definitions available to Settings.Scale.
var Scales = map[string]Scale{
	"all":        {Name: "All Notes", Notes: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
	"major":      {Name: "Major", Notes: []int{0, 2, 4, 5, 7, 9, 11}},
	"minor":      {Name: "Minor", Notes: []int{0, 2, 3, 5, 7, 8, 10}},
	"dorian":     {Name: "Dorian", Notes: []int{0, 2, 3, 5, 7, 9, 10}},
	"mixolydian": {Name: "Mixolydian", Notes: []int{0, 2, 4, 5, 7, 9, 10}},
	"pentatonic": {Name: "Pentatonic", Notes: []int{0, 2, 4, 7, 9}},
	"blues":      {Name: "Blues", Notes: []int{0, 3, 5, 6, 7, 10}},
	"chromatic":  {Name: "Chromatic", Notes: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
}

// ScaleNames lists all available scale names.
func ScaleNames() []string {
	names := make([]string, 0, len(Scales))
	for name := range Scales {
		names = append(names, name)
	}
	return names
}

// ApplyIncrement adds an increment-counter-derived offset to a note.
// Called before ApplyModulation. counter<0 disables it entirely.
func ApplyIncrement(note int, counter int, increment int, wrap int) int {
	if counter <= -1 || increment <= 0 {
		return note
	}
	wrapped := counter
	if wrap > 0 && counter >= wrap {
		wrapped = counter % wrap
	}
	return note + wrapped
}

// ApplyModulation applies Settings to a note value using rng for any
// random draws. Order: probability gate, IRandom, Sub, Add, scale
// quantization.
func ApplyModulation(note int, s Settings, rng *rand.Rand) int {
	if s.Probability < 100 {
		roll := rng.Intn(100) + 1
		if roll > s.Probability {
			return note
		}
	}

	result := note
	if s.IRandom > 0 {
		switch {
		case s.Seed > 0:
			rng.Seed(int64(s.Seed))
		case s.Seed == 0:
			rng.Seed(timeSeed())
		}
		result += rng.Intn(s.IRandom + 1)
	}

	result -= s.Sub
	result += s.Add

	if s.Scale != "all" && s.Scale != "" {
		result = quantizeToScale(result, s.Scale, s.ScaleRoot)
	}
	return result
}

// NoteMapFn returns a per-slot note transform, assignable to
// eventiter.NoteMapFn, that rewrites a note's MIDI value by ApplyIncrement
// then ApplyModulation. counter holds the shared increment-counter state
// across calls (advanced once per invocation); pass nil to disable
// ApplyIncrement. rng supplies IRandom/probability draws.
func NoteMapFn(s Settings, rng *rand.Rand, counter *int) func(events.NoteEvent, int) events.NoteEvent {
	return func(n events.NoteEvent, _ int) events.NoteEvent {
		note := int(n.Note)
		if counter != nil {
			note = ApplyIncrement(note, *counter, s.Increment, s.Wrap)
			*counter++
		}
		note = ApplyModulation(note, s, rng)
		n.Note = clampNote(note)
		return n
	}
}

func clampNote(note int) uint32 {
	if note < 0 {
		return 0
	}
	if note > 127 {
		return 127
	}
	return uint32(note)
}

func quantizeToScale(note int, scaleName string, scaleRoot int) int {
	scale, ok := Scales[scaleName]
	if !ok {
		return note
	}

	if note < 0 {
		octaves := (-note / 12) + 1
		note += octaves * 12
	}

	octave := note / 12
	noteInOctave := note % 12
	transposed := (noteInOctave - scaleRoot + 12) % 12

	minDistance := 12
	closest := transposed
	for _, scaleNote := range scale.Notes {
		if d := abs(transposed - scaleNote); d < minDistance {
			minDistance = d
			closest = scaleNote
		}
	}

	final := (closest + scaleRoot) % 12
	return octave*12 + final
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
