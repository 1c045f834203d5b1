package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/schollz/phrasekit/internal/eventiter"
	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/gate"
	"github.com/schollz/phrasekit/internal/modnote"
	"github.com/schollz/phrasekit/internal/notename"
	"github.com/schollz/phrasekit/internal/pattern"
	"github.com/schollz/phrasekit/internal/phrase"
	"github.com/schollz/phrasekit/internal/rhythm"
	"github.com/schollz/phrasekit/internal/timebase"
)

func demoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "run the built-in four-on-the-floor + offset snare demo phrase and print its events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd)
		},
	}
	return cmd
}

func runDemo(cmd *cobra.Command) error {
	base, err := timebase.NewBeatTime(120, 4, 44100)
	if err != nil {
		return err
	}

	// The kick climbs a major-scale riff: each hit advances a step counter
	// (wrapping every 8 steps), adds it to the note, and snaps the result
	// onto the major scale, rather than repeating a single fixed note.
	kickSettings := modnote.NewSettings()
	kickSettings.Increment = 1
	kickSettings.Wrap = 8
	kickSettings.Scale = "major"
	kickCounter := 0
	kickNotes := []events.Event{events.NewNoteEvents(&events.NoteEvent{Note: 60, Velocity: 1})}
	kickIter := eventiter.NewMappedNote(kickNotes, modnote.NoteMapFn(kickSettings, rand.New(rand.NewSource(1)), &kickCounter))

	kick := rhythm.New(
		base,
		rhythm.BeatStep(timebase.BeatTimeStep{Kind: timebase.Beats, Amount: 1}),
		rhythm.Step{},
		pattern.NewFixedPattern([]float32{1, 1, 1, 1}),
		gate.NewThresholdGate(),
		kickIter,
	)

	snareInst := events.NextInstrumentID()
	snare := rhythm.New(
		base,
		rhythm.BeatStep(timebase.BeatTimeStep{Kind: timebase.Beats, Amount: 2}),
		rhythm.BeatStep(timebase.BeatTimeStep{Kind: timebase.Beats, Amount: 1}),
		pattern.NewFixedPattern([]float32{1}),
		gate.NewThresholdGate(),
		eventiter.NewFixed(events.NewNoteEvents(&events.NoteEvent{Instrument: &snareInst, Note: 38, Velocity: 1})),
	)

	ph := phrase.New(kick, snare)
	out := cmd.OutOrStdout()
	ph.RunUntilTime(88200, func(sampleTime phrase.SampleTime, ev *events.Event) {
		if ev == nil {
			return
		}
		for _, n := range ev.Notes {
			if n == nil {
				continue
			}
			fmt.Fprintf(out, "%8d  %s\n", sampleTime, notename.FromMIDI(n.Note))
		}
	})
	return nil
}
