package monitor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/phrasekit/internal/eventiter"
	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/gate"
	"github.com/schollz/phrasekit/internal/pattern"
	"github.com/schollz/phrasekit/internal/phrase"
	"github.com/schollz/phrasekit/internal/rhythm"
	"github.com/schollz/phrasekit/internal/timebase"
)

func newTestPhrase(t *testing.T) *phrase.Phrase {
	t.Helper()
	base, err := timebase.NewBeatTime(120, 4, 44100)
	require.NoError(t, err)
	p := pattern.NewFixedPattern([]float32{1, 0, 1, 0})
	g := gate.NewThresholdGate()
	it := eventiter.NewFixed(events.NewNoteEvents(&events.NoteEvent{Note: 60, Velocity: 1.0}))
	step := rhythm.BeatStep(timebase.BeatTimeStep{Kind: timebase.Sixteenth, Amount: 1})
	r := rhythm.New(base, step, rhythm.Step{}, p, g, it)
	return phrase.New(r)
}

func TestDescribeRest(t *testing.T) {
	assert.Equal(t, ".", describe(nil))
}

func TestDescribeNoteEvent(t *testing.T) {
	ev := events.NewNoteEvents(&events.NoteEvent{Note: 60, Velocity: 1.0})
	assert.Equal(t, "c-4", describe(&ev))
}

func TestDescribeParameterChange(t *testing.T) {
	ev := events.NewParameterChange(events.ParameterChangeEvent{Value: 0.25})
	assert.Equal(t, "param=0.250", describe(&ev))
}

func TestAdvancePopulatesHistoryUpToCap(t *testing.T) {
	m := New(newTestPhrase(t), 256, time.Millisecond, 44100)
	for i := 0; i < 200; i++ {
		m.advance()
	}
	assert.LessOrEqual(t, len(m.history), historySize)
	assert.NotEmpty(t, m.history)
}

func TestUpdateHandlesWindowSizeAndQuit(t *testing.T) {
	m := New(newTestPhrase(t), 256, time.Millisecond, 44100)

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	mm := updated.(*Model)
	assert.Equal(t, 80, mm.width)
	assert.Equal(t, 24, mm.height)
	assert.Nil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
}

func TestViewRendersHeaderAndHistory(t *testing.T) {
	m := New(newTestPhrase(t), 256, time.Millisecond, 44100)
	m.advance()
	out := m.View()
	assert.Contains(t, out, "phrasekit monitor")
	assert.Contains(t, out, "q to quit")
}

func TestLoopPositionWrapsWithinLoopSamples(t *testing.T) {
	m := New(newTestPhrase(t), 256, time.Millisecond, 1000)
	m.currentTime = 250
	assert.InDelta(t, 0.25, m.loopPosition(), 1e-9)

	m.currentTime = 1250
	assert.InDelta(t, 0.25, m.loopPosition(), 1e-9)
}

func TestLoopPositionIsZeroWhenDisabled(t *testing.T) {
	m := New(newTestPhrase(t), 256, time.Millisecond, 0)
	m.currentTime = 999
	assert.Equal(t, float64(0), m.loopPosition())
}
