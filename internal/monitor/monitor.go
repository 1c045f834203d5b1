// Package monitor renders a live, scrolling view of a running phrase.Phrase
// in the terminal, using the same bubbletea/lipgloss/termenv stack the
// teacher uses for its tracker UI.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/schollz/phrasekit/internal/events"
	"github.com/schollz/phrasekit/internal/notename"
	"github.com/schollz/phrasekit/internal/phrase"
)

const historySize = 16

// TickMsg drives the monitor's playback-advance loop at the engine's
// musical rate, mirroring the tracker's own input.TickMsg.
type TickMsg struct{}

// entry is one rendered line of recent playback history.
type entry struct {
	sampleTime phrase.SampleTime
	label      string
	isRest     bool
}

// Model is a bubbletea model that steps a phrase.Phrase forward by a fixed
// number of samples on every TickMsg and renders the most recent events.
type Model struct {
	ph             *phrase.Phrase
	samplesPerTick phrase.SampleTime
	currentTime    phrase.SampleTime
	tickInterval   time.Duration
	loopSamples    phrase.SampleTime

	progress progress.Model
	history  []entry
	ticks    uint64
	width    int
	height   int
}

// New returns a Model that advances ph by samplesPerTick samples every
// tickInterval of wall-clock time. loopSamples sizes the position bar
// (e.g. one bar's worth of samples); 0 disables the bar.
func New(ph *phrase.Phrase, samplesPerTick phrase.SampleTime, tickInterval time.Duration, loopSamples phrase.SampleTime) *Model {
	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40
	return &Model{
		ph:             ph,
		samplesPerTick: samplesPerTick,
		tickInterval:   tickInterval,
		loopSamples:    loopSamples,
		progress:       p,
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick(m.tickInterval)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width-10 > 0 {
			m.progress.Width = msg.Width - 10
		}
		return m, nil

	case TickMsg:
		m.advance()
		return m, tick(m.tickInterval)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) advance() {
	m.ticks++
	m.currentTime += m.samplesPerTick
	m.ph.RunUntilTime(m.currentTime, func(sampleTime phrase.SampleTime, ev *events.Event) {
		m.push(entry{sampleTime: sampleTime, label: describe(ev), isRest: ev == nil})
	})
}

func (m *Model) push(e entry) {
	m.history = append(m.history, e)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

func describe(ev *events.Event) string {
	if ev == nil {
		return "."
	}
	switch ev.Kind {
	case events.KindNoteEvents:
		var names []string
		for _, n := range ev.Notes {
			if n == nil {
				continue
			}
			names = append(names, notename.FromMIDI(n.Note))
		}
		return strings.Join(names, " ")
	case events.KindParameterChange:
		return fmt.Sprintf("param=%.3f", ev.Parameter.Value)
	default:
		return "?"
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	restStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hitColor, _ = colorful.Hex("#00FF87")
)

// loopPosition returns how far into the current loop the playhead is, in
// [0,1]. Returns 0 if no loop size was configured.
func (m *Model) loopPosition() float64 {
	if m.loopSamples == 0 {
		return 0
	}
	return float64(m.currentTime%m.loopSamples) / float64(m.loopSamples)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("phrasekit monitor — tick %d — sample %d", m.ticks, m.currentTime)))
	b.WriteString("\n\n")

	if m.loopSamples > 0 {
		b.WriteString(m.progress.ViewAs(m.loopPosition()))
		b.WriteString("\n\n")
	}

	profile := termenv.ColorProfile()
	termColor := profile.Color(hitColor.Hex())

	for _, e := range m.history {
		line := timeStyle.Render(fmt.Sprintf("%10d  ", e.sampleTime))
		if e.isRest {
			line += restStyle.Render(e.label)
		} else {
			line += termenv.String(e.label).Foreground(termColor).String()
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nq to quit\n")
	return b.String()
}
