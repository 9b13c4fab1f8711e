package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xlemi/tunenote/internal/pitch"
	"github.com/0xlemi/tunenote/internal/tuner"
)

const (
	// How long to keep showing a note after the signal drops
	noteHoldDuration = 500 * time.Millisecond

	// Half-width of the needle gauge in cells
	gaugeHalfWidth = 20
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	statusStyles = map[pitch.State]lipgloss.Style{
		pitch.StateReady:     lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
		pitch.StateListening: lipgloss.NewStyle().Foreground(lipgloss.Color("#8AB4F8")),
		pitch.StateNoSignal:  lipgloss.NewStyle().Foreground(lipgloss.Color("#8AB4F8")),
		pitch.StateInTune:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00")),
		pitch.StateFlat:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")),
		pitch.StateSharp:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")),
		pitch.StateError:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
	}

	// Note colors
	noteColors = map[string]string{
		"C": "#E8D6B0", // Beige
		"D": "#A020F0", // Purple
		"E": "#FFFF00", // Yellow
		"F": "#FFA500", // Orange
		"G": "#00FF00", // Green
		"A": "#FF0000", // Red
		"B": "#0000FF", // Blue
	}
)

// Controls is what the display drives: the capture device and the
// reference tone output
type Controls interface {
	Start() error
	Stop() error
	PlayString(number int) error
}

// Model represents the UI state
type Model struct {
	controls  Controls
	needleMax float64

	running  bool
	state    pitch.State
	status   string
	last     *tuner.Update // last update that carried a reading
	lastSeen time.Time
	needle   float64
	now      func() time.Time
	width    int
	height   int
}

// NewModel creates a new UI model
func NewModel(controls Controls, needleMax float64) Model {
	return Model{
		controls:  controls,
		needleMax: needleMax,
		state:     pitch.StateReady,
		status:    "Press space to start tuning",
		now:       time.Now,
	}
}

// Init initializes the UI model
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// TickMsg represents a timer tick
type TickMsg time.Time

// UpdateMsg carries one engine update
type UpdateMsg tuner.Update

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			return m.toggle(), nil
		case "1", "2", "3", "4", "5", "6":
			if err := m.controls.PlayString(int(key[0] - '0')); err != nil {
				m.state = pitch.StateError
				m.status = "Unable to play tone: " + err.Error()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		// Drop a held note once it is stale
		if m.last != nil && m.now().Sub(m.lastSeen) > noteHoldDuration {
			m.last = nil
			m.needle = 0
		}
		return m, tick()

	case UpdateMsg:
		if !m.running {
			return m, nil
		}
		u := tuner.Update(msg)
		m.state = u.Assessment.State
		m.needle = u.Assessment.NeedleDegrees
		switch {
		case u.Err != nil:
			m.status = "Unable to read microphone: " + u.Err.Error()
		case u.Reading != nil:
			m.status = u.Assessment.Label
			m.last = &u
			m.lastSeen = m.now()
		default:
			m.status = "Listening... play a note"
			if m.last != nil {
				m.needle = m.last.Assessment.NeedleDegrees
			}
		}
	}

	return m, nil
}

func (m Model) toggle() Model {
	if m.running {
		if err := m.controls.Stop(); err != nil {
			m.state = pitch.StateError
			m.status = "Unable to stop: " + err.Error()
			return m
		}
		m.running = false
		m.state = pitch.StateReady
		m.status = "Press space to start tuning"
		m.last = nil
		m.needle = 0
		return m
	}

	if err := m.controls.Start(); err != nil {
		m.state = pitch.StateError
		m.status = "Unable to access microphone: " + err.Error()
		return m
	}
	m.running = true
	m.state = pitch.StateListening
	m.status = "Listening... play a note"
	return m
}

// Returns a style for a natural note
func getNoteStyle(noteName string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(noteColors[noteName])).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(2, 4).
		MarginBottom(1)
}

// Get the next natural note (for sharp note colors)
func getNextNote(note string) string {
	switch note {
	case "C":
		return "D"
	case "D":
		return "E"
	case "E":
		return "F"
	case "F":
		return "G"
	case "G":
		return "A"
	case "A":
		return "B"
	default:
		return "C"
	}
}

// renderNote draws the note block; sharps are split between the colours of
// their two neighbouring naturals
func renderNote(n pitch.Note) string {
	if !strings.HasSuffix(n.Name, "#") {
		return getNoteStyle(n.Name).Render(n.String())
	}

	base := n.Name[:1]
	half := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		BorderTop(true).
		BorderBottom(true).
		PaddingTop(2).
		PaddingBottom(2)

	left := half.
		Background(lipgloss.Color(noteColors[base])).
		BorderLeft(true).
		BorderRight(false).
		PaddingLeft(2).
		PaddingRight(1)
	right := half.
		Background(lipgloss.Color(noteColors[getNextNote(base)])).
		BorderLeft(false).
		BorderRight(true).
		PaddingLeft(1).
		PaddingRight(2)

	return lipgloss.JoinHorizontal(lipgloss.Top, left.Render(base), right.Render(fmt.Sprintf("#%d", n.Octave)))
}

// gauge draws the needle as a marker on a horizontal scale
func gauge(deg, maxDeg float64) string {
	pos := 0
	if maxDeg > 0 {
		pos = int(math.Round(deg / maxDeg * gaugeHalfWidth))
	}
	pos = max(-gaugeHalfWidth, min(gaugeHalfWidth, pos))

	cells := []rune(strings.Repeat("─", 2*gaugeHalfWidth+1))
	cells[gaugeHalfWidth] = '┼'
	cells[gaugeHalfWidth+pos] = '▼'
	return "♭ " + string(cells) + " ♯"
}

// View renders the UI
func (m Model) View() string {
	s := titleStyle.Render("TuneNote - Chromatic Tuner")
	s += "\n"

	style, ok := statusStyles[m.state]
	if !ok {
		style = infoStyle
	}
	s += style.Render(m.status)
	s += "\n\n"

	if m.last != nil && m.last.Reading != nil {
		r := m.last.Reading
		s += renderNote(r.Note)
		s += "\n"

		info := fmt.Sprintf("Frequency: %.1f Hz | Cents: %+d", r.SourceHz, r.Cents)
		if m.last.String != nil {
			info += fmt.Sprintf(" | String %s", m.last.String)
		}
		s += infoStyle.Render(info)
	} else {
		s += infoStyle.Render("--")
	}

	s += "\n\n"
	s += gauge(m.needle, m.needleMax)
	s += "\n\n"
	s += infoStyle.Render("space start/stop • 1-6 play string • q quit")

	return s
}
