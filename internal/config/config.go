// Package config loads a session's rhythms from JSON, the way the
// teacher's internal/storage package loads and saves a tracker session.
package config

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/phrasekit/internal/eventiter"
	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/gate"
	"github.com/schollz/phrasekit/internal/modnote"
	"github.com/schollz/phrasekit/internal/pattern"
	"github.com/schollz/phrasekit/internal/phrase"
	"github.com/schollz/phrasekit/internal/rhythm"
	"github.com/schollz/phrasekit/internal/timebase"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SessionConfig is the on-disk description of a phrase.Phrase: a shared
// tempo and a set of independently stepped rhythms.
type SessionConfig struct {
	BeatsPerMin   float32        `json:"bpm"`
	BeatsPerBar   uint32         `json:"beats_per_bar"`
	SamplesPerSec uint32         `json:"samples_per_sec"`
	Rhythms       []RhythmConfig `json:"rhythms"`
}

// RhythmConfig describes one rhythm.Rhythm: its step size, pattern, gate
// and the fixed note sequence it plays.
type RhythmConfig struct {
	Name string `json:"name"`

	// StepKind selects the unit for Step: "sixteenth", "eighth", "beat" or
	// "bar".
	StepKind string  `json:"step_kind"`
	Step     float32 `json:"step"`

	// Pattern is either a fixed pulse vector...
	Pulses []float32 `json:"pulses,omitempty"`
	// ...or a Euclidean rhythm specification.
	Euclidean *EuclideanConfig `json:"euclidean,omitempty"`

	// GateThreshold gates a pulse through when its value exceeds this.
	GateThreshold float32 `json:"gate_threshold"`
	// GateProbability, if non-nil, uses a seeded ProbabilityGate instead
	// of a ThresholdGate.
	GateProbability *uint32 `json:"gate_probability_seed,omitempty"`

	// Notes is the fixed sequence of MIDI note numbers played on each
	// gated pulse, cycling.
	Notes    []uint32 `json:"notes"`
	Velocity float32  `json:"velocity"`

	RepeatCount *uint64 `json:"repeat_count,omitempty"`

	// Modulation, if non-nil, wraps Notes in a modnote-driven transform
	// instead of playing them back unchanged.
	Modulation *ModulationConfig `json:"modulation,omitempty"`
}

// ModulationConfig configures a modnote.Settings note transform.
type ModulationConfig struct {
	Seed        int    `json:"seed"`
	IRandom     int    `json:"i_random"`
	Sub         int    `json:"sub"`
	Add         int    `json:"add"`
	Increment   int    `json:"increment"`
	Wrap        int    `json:"wrap"`
	ScaleRoot   int    `json:"scale_root"`
	Scale       string `json:"scale"`
	Probability int    `json:"probability"`
}

// EuclideanConfig describes a Bjorklund rhythm.
type EuclideanConfig struct {
	Pulses uint32 `json:"pulses"`
	Steps  uint32 `json:"steps"`
	Offset int    `json:"offset"`
}

// Load reads and parses a SessionConfig from path.
func Load(path string) (SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg SessionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SessionConfig{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as JSON to path.
func Save(path string, cfg SessionConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshaling session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// Build constructs a timebase.BeatTime and a phrase.Phrase from cfg.
func Build(cfg SessionConfig) (timebase.BeatTime, *phrase.Phrase, error) {
	base, err := timebase.NewBeatTime(cfg.BeatsPerMin, cfg.BeatsPerBar, cfg.SamplesPerSec)
	if err != nil {
		return timebase.BeatTime{}, nil, fmt.Errorf("config: invalid session time base: %w", err)
	}

	rhythms := make([]*rhythm.Rhythm, 0, len(cfg.Rhythms))
	for i, rc := range cfg.Rhythms {
		r, err := buildRhythm(base, rc)
		if err != nil {
			return timebase.BeatTime{}, nil, fmt.Errorf("config: rhythm %d (%q): %w", i, rc.Name, err)
		}
		rhythms = append(rhythms, r)
	}
	return base, phrase.New(rhythms...), nil
}

func buildRhythm(base timebase.BeatTime, rc RhythmConfig) (*rhythm.Rhythm, error) {
	kind, err := stepKind(rc.StepKind)
	if err != nil {
		return nil, err
	}
	step := rhythm.BeatStep(timebase.BeatTimeStep{Kind: kind, Amount: rc.Step})

	p, err := buildPattern(rc)
	if err != nil {
		return nil, err
	}

	var g gate.Gate
	if rc.GateProbability != nil {
		var seed [32]byte
		seed[0] = byte(*rc.GateProbability)
		seed[1] = byte(*rc.GateProbability >> 8)
		seed[2] = byte(*rc.GateProbability >> 16)
		seed[3] = byte(*rc.GateProbability >> 24)
		g = gate.NewProbabilityGate(&seed)
	} else {
		g = gate.WithThreshold(rc.GateThreshold)
	}

	if len(rc.Notes) == 0 {
		return nil, fmt.Errorf("rhythm needs at least one note")
	}
	velocity := rc.Velocity
	if velocity == 0 {
		velocity = 1.0
	}
	evs := make([]events.Event, len(rc.Notes))
	for i, n := range rc.Notes {
		evs[i] = events.NewNoteEvents(&events.NoteEvent{Note: n, Velocity: velocity})
	}

	var it eventiter.EventIter
	if mc := rc.Modulation; mc != nil {
		it = buildModulatedIter(evs, mc)
	} else {
		it = eventiter.NewFixed(evs...)
	}

	r := rhythm.New(base, step, rhythm.Step{}, p, g, it)
	if rc.RepeatCount != nil {
		r.SetRepeatCount(rc.RepeatCount)
	}
	return r, nil
}

// buildModulatedIter wraps evs in a modnote-driven MappedNote iterator per
// mc. A seed of 0 reseeds the transform's rng from wall-clock time on every
// build, matching modnote.Settings.Seed's own "0 means reseed" convention.
func buildModulatedIter(evs []events.Event, mc *ModulationConfig) eventiter.EventIter {
	settings := modnote.Settings{
		Seed:        mc.Seed,
		IRandom:     mc.IRandom,
		Sub:         mc.Sub,
		Add:         mc.Add,
		Increment:   mc.Increment,
		Wrap:        mc.Wrap,
		ScaleRoot:   mc.ScaleRoot,
		Scale:       mc.Scale,
		Probability: mc.Probability,
	}
	if settings.Scale == "" {
		settings.Scale = "all"
	}
	if settings.Probability == 0 {
		settings.Probability = 100
	}
	seed := int64(mc.Seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	counter := 0
	return eventiter.NewMappedNote(evs, modnote.NoteMapFn(settings, rand.New(rand.NewSource(seed)), &counter))
}

func buildPattern(rc RhythmConfig) (pattern.Pattern, error) {
	switch {
	case rc.Euclidean != nil:
		return pattern.NewEuclideanPattern(rc.Euclidean.Pulses, rc.Euclidean.Steps, rc.Euclidean.Offset), nil
	case len(rc.Pulses) > 0:
		return pattern.NewFixedPattern(rc.Pulses), nil
	default:
		return nil, fmt.Errorf("rhythm needs either pulses or a euclidean spec")
	}
}

func stepKind(name string) (timebase.BeatStepKind, error) {
	switch name {
	case "sixteenth", "":
		return timebase.Sixteenth, nil
	case "eighth":
		return timebase.Eighth, nil
	case "beat":
		return timebase.Beats, nil
	case "bar":
		return timebase.Bar, nil
	default:
		return 0, fmt.Errorf("unknown step_kind %q", name)
	}
}
