// Package pattern implements resettable streams of pulse.Pulse values:
// fixed vectors, Euclidean (Bjorklund) rhythms, an empty sentinel, and an
// adapter boundary for externally generated pulse streams (e.g. a
// mini-notation cycle parser).
package pattern

import (
	"github.com/schollz/phrasekit/internal/pulse"
	"github.com/schollz/phrasekit/internal/timebase"
)

// Pattern is a resettable stream of pulse.Pulse values.
type Pattern interface {
	// Run emits the next pulse. Must only be called when IsEmpty() is false.
	Run() pulse.Pulse
	// Len returns the repetition period, or 0 if empty/unbounded/unknown.
	Len() int
	// IsEmpty reports whether Len()==0 and no pulse will ever be produced.
	IsEmpty() bool
	// SetTimeBase notifies the pattern of a (possibly new) beat time base.
	SetTimeBase(base timebase.BeatTime)
	// Reset rewinds the pattern to its initial state.
	Reset()
	// Duplicate returns a deep, independent clone.
	Duplicate() Pattern
}

// FixedPattern cycles through a fixed vector of leaf pulse values.
type FixedPattern struct {
	pulses []float32
	step   int
}

// NewFixedPattern creates a FixedPattern over the given pulse values.
func NewFixedPattern(pulses []float32) *FixedPattern {
	cp := make([]float32, len(pulses))
	copy(cp, pulses)
	return &FixedPattern{pulses: cp}
}

// Run implements Pattern.
func (f *FixedPattern) Run() pulse.Pulse {
	v := f.pulses[f.step]
	f.step = (f.step + 1) % len(f.pulses)
	return pulse.Leaf(v)
}

// Len implements Pattern.
func (f *FixedPattern) Len() int {
	if len(f.pulses) == 0 {
		return 0
	}
	return len(f.pulses)
}

// IsEmpty implements Pattern.
func (f *FixedPattern) IsEmpty() bool { return len(f.pulses) == 0 }

// SetTimeBase implements Pattern; FixedPattern ignores time base changes.
func (f *FixedPattern) SetTimeBase(timebase.BeatTime) {}

// Reset implements Pattern.
func (f *FixedPattern) Reset() { f.step = 0 }

// Duplicate implements Pattern.
func (f *FixedPattern) Duplicate() Pattern {
	return &FixedPattern{pulses: append([]float32(nil), f.pulses...), step: f.step}
}

// Values returns a copy of the pattern's pulse value vector.
func (f *FixedPattern) Values() []float32 {
	return append([]float32(nil), f.pulses...)
}

// EmptyPattern never produces a pulse.
type EmptyPattern struct{}

// Run implements Pattern. Calling Run on an EmptyPattern is a programming
// error per spec; callers must check IsEmpty first.
func (EmptyPattern) Run() pulse.Pulse { panic("pattern: Run called on EmptyPattern") }

// Len implements Pattern.
func (EmptyPattern) Len() int { return 0 }

// IsEmpty implements Pattern.
func (EmptyPattern) IsEmpty() bool { return true }

// SetTimeBase implements Pattern.
func (EmptyPattern) SetTimeBase(timebase.BeatTime) {}

// Reset implements Pattern.
func (EmptyPattern) Reset() {}

// Duplicate implements Pattern.
func (EmptyPattern) Duplicate() Pattern { return EmptyPattern{} }

// Euclidean generates a Bjorklund rhythm: `pulses` hits distributed as
// evenly as possible among `steps`, then rotated right by `offset`.
//
// pulses >= steps yields all-true of length steps; pulses == 0 yields
// all-false of length steps (spec.md §4.2 edge cases).
func Euclidean(pulses, steps uint32, offset int) []bool {
	if pulses >= steps {
		out := make([]bool, steps)
		for i := range out {
			out[i] = true
		}
		return out
	}
	if pulses == 0 {
		return make([]bool, steps)
	}

	front := make([][]bool, pulses)
	for i := range front {
		front[i] = []bool{true}
	}
	last := make([][]bool, steps-pulses)
	for i := range last {
		last[i] = []bool{false}
	}

	groups := bjorklund(front, last)

	result := make([]bool, 0, steps)
	for _, g := range groups {
		result = append(result, g...)
	}

	n := int(steps)
	if offset > 0 {
		rotateRight(result, offset%n)
	} else if offset < 0 {
		rotateLeft(result, (-offset)%n)
	}
	return result
}

// bjorklund recombines groups of true and false singletons by pairwise
// concatenation of their suffixes until fewer than two "last" groups
// remain, mirroring the reference Bjorklund distribution algorithm.
func bjorklund(fgs, lgs [][]bool) [][]bool {
	for len(lgs) >= 2 {
		var next [][]bool
		for len(fgs) > 0 && len(lgs) > 0 {
			f := fgs[len(fgs)-1]
			l := lgs[len(lgs)-1]
			merged := append(append([]bool{}, f...), l...)
			next = append(next, merged)
			fgs = fgs[:len(fgs)-1]
			lgs = lgs[:len(lgs)-1]
		}
		fgs = append(fgs, lgs...)
		fgs, lgs = next, fgs
	}
	return append(fgs, lgs...)
}

func rotateRight(s []bool, n int) {
	if n == 0 || len(s) == 0 {
		return
	}
	n = n % len(s)
	reverse(s)
	reverse(s[:n])
	reverse(s[n:])
}

func rotateLeft(s []bool, n int) {
	if n == 0 || len(s) == 0 {
		return
	}
	rotateRight(s, len(s)-n%len(s))
}

func reverse(s []bool) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// NewEuclideanPattern builds a FixedPattern from the Bjorklund distribution.
func NewEuclideanPattern(pulses, steps uint32, offset int) *FixedPattern {
	hits := Euclidean(pulses, steps, offset)
	vals := make([]float32, len(hits))
	for i, h := range hits {
		if h {
			vals[i] = 1
		}
	}
	return NewFixedPattern(vals)
}

// PulseSpec is a single pulse value, as produced per-step by a CycleSource.
// Leaf values in [0,1] come from the parsed notation's emphasis, or 0 for
// rests; Children lets a source describe a subdivision directly.
type PulseSpec struct {
	Value    float32
	Children []PulseSpec
}

func (s PulseSpec) toPulse() pulse.Pulse {
	if len(s.Children) == 0 {
		return pulse.Leaf(s.Value)
	}
	children := make([]pulse.Pulse, len(s.Children))
	for i, c := range s.Children {
		children[i] = c.toPulse()
	}
	return pulse.Subdivision(children...)
}

// CycleSource is the seam a real mini-notation cycle parser (out of scope
// for this module) would implement: Next returns the next pulse spec, or
// ok=false when the source is exhausted.
type CycleSource interface {
	Next() (PulseSpec, bool)
	Len() int
	Reset()
	Duplicate() CycleSource
}

// CyclePattern adapts a CycleSource to the Pattern contract, per §6's
// "Pattern adapter" external interface.
type CyclePattern struct {
	source CycleSource
}

// NewCyclePattern wraps a CycleSource as a Pattern.
func NewCyclePattern(source CycleSource) *CyclePattern {
	return &CyclePattern{source: source}
}

// Run implements Pattern.
func (c *CyclePattern) Run() pulse.Pulse {
	spec, ok := c.source.Next()
	if !ok {
		return pulse.Leaf(0)
	}
	return spec.toPulse()
}

// Len implements Pattern.
func (c *CyclePattern) Len() int { return c.source.Len() }

// IsEmpty implements Pattern.
func (c *CyclePattern) IsEmpty() bool { return false }

// SetTimeBase implements Pattern; most cycle sources ignore it.
func (c *CyclePattern) SetTimeBase(timebase.BeatTime) {}

// Reset implements Pattern.
func (c *CyclePattern) Reset() { c.source.Reset() }

// Duplicate implements Pattern.
func (c *CyclePattern) Duplicate() Pattern {
	return &CyclePattern{source: c.source.Duplicate()}
}

// StaticCycleSource is a canned CycleSource backed by a fixed slice of
// pulse specs, cycling indefinitely. Useful for tests in place of a real
// mini-notation parser.
type StaticCycleSource struct {
	specs []PulseSpec
	step  int
}

// NewStaticCycleSource builds a StaticCycleSource over the given specs.
func NewStaticCycleSource(specs []PulseSpec) *StaticCycleSource {
	return &StaticCycleSource{specs: append([]PulseSpec(nil), specs...)}
}

// Next implements CycleSource.
func (s *StaticCycleSource) Next() (PulseSpec, bool) {
	if len(s.specs) == 0 {
		return PulseSpec{}, false
	}
	spec := s.specs[s.step]
	s.step = (s.step + 1) % len(s.specs)
	return spec, true
}

// Len implements CycleSource.
func (s *StaticCycleSource) Len() int { return len(s.specs) }

// Reset implements CycleSource.
func (s *StaticCycleSource) Reset() { s.step = 0 }

// Duplicate implements CycleSource.
func (s *StaticCycleSource) Duplicate() CycleSource {
	return &StaticCycleSource{specs: append([]PulseSpec(nil), s.specs...), step: s.step}
}
