package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toBools(vals []float32) []bool {
	out := make([]bool, len(vals))
	for i, v := range vals {
		out[i] = v > 0
	}
	return out
}

func TestFixedPatternRepeatsExactly(t *testing.T) {
	values := []float32{1, 0, 0.5}
	p := NewFixedPattern(values)

	const n = 4
	for rep := 0; rep < n; rep++ {
		for _, want := range values {
			got := p.Run()
			require.True(t, got.IsLeaf())
			assert.Equal(t, want, got.Value())
		}
	}
}

func TestFixedPatternResetRewinds(t *testing.T) {
	p := NewFixedPattern([]float32{1, 0})
	p.Run()
	p.Reset()
	assert.Equal(t, float32(1), p.Run().Value())
}

func TestFixedPatternDuplicateIsIndependent(t *testing.T) {
	p := NewFixedPattern([]float32{1, 0, 1})
	p.Run() // advance original to step 1
	dup := p.Duplicate()

	// advancing the original further must not affect the duplicate
	p.Run()
	assert.Equal(t, float32(0), dup.Run().Value())
}

func TestEmptyPatternIsEmpty(t *testing.T) {
	var p EmptyPattern
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 0, p.Len())
}

func TestEuclideanReferencePatterns(t *testing.T) {
	tests := []struct {
		name           string
		pulses, steps  uint32
		offset         int
		expectedString string
	}{
		{"1,4", 1, 4, 0, "x~~~"},
		{"3,8", 3, 8, 0, "x~~x~~x~"},
		{"5,8", 5, 8, 0, "x~xx~xx~"},
		{"3,8,3 rotated", 3, 8, 3, "~x~x~~x~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := Euclidean(tt.pulses, tt.steps, tt.offset)
			assert.Equal(t, parseHitString(tt.expectedString), hits)
		})
	}
}

func TestEuclideanEdgeCases(t *testing.T) {
	assert.Equal(t, []bool{true, true, true}, Euclidean(5, 3, 0))
	assert.Equal(t, []bool{false, false, false, false}, Euclidean(0, 4, 0))
}

func parseHitString(s string) []bool {
	out := make([]bool, 0, len(s))
	for _, r := range s {
		out = append(out, r == 'x')
	}
	return out
}

func TestCyclePatternWrapsSource(t *testing.T) {
	src := NewStaticCycleSource([]PulseSpec{
		{Value: 1},
		{Children: []PulseSpec{{Value: 1}, {Value: 0}}},
	})
	p := NewCyclePattern(src)

	first := p.Run()
	assert.True(t, first.IsLeaf())
	assert.Equal(t, float32(1), first.Value())

	second := p.Run()
	assert.False(t, second.IsLeaf())
	assert.Len(t, second.Children(), 2)

	p.Reset()
	assert.Equal(t, float32(1), p.Run().Value())
}

func TestCyclePatternDuplicateIndependence(t *testing.T) {
	src := NewStaticCycleSource([]PulseSpec{{Value: 1}, {Value: 0}})
	p := NewCyclePattern(src)
	p.Run()
	dup := p.Duplicate()
	p.Run()
	assert.Equal(t, float32(1), dup.Run().Value())
}
