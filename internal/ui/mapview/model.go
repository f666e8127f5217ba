// Package mapview renders the store floor, the shopper's position, and
// the active route, and forwards typed commands to the guidance engine.
// It is a read-only mirror of engine state: everything it draws arrives
// over the event broker.
package mapview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/aisleguide/internal/grid"
	"github.com/zjrosen/aisleguide/internal/guide"
	"github.com/zjrosen/aisleguide/internal/keys"
	"github.com/zjrosen/aisleguide/internal/pubsub"
	"github.com/zjrosen/aisleguide/internal/speech"
	"github.com/zjrosen/aisleguide/internal/ui/styles"
)

// Config wires a map view.
type Config struct {
	// Ctx scopes the broker subscription; Cancel stops the guidance
	// engine when the user quits.
	Ctx    context.Context
	Cancel context.CancelFunc
	Broker *pubsub.Broker[any]

	Map       *grid.Map
	StoreName string
	Start     grid.Cell

	// Typed receives submitted command text. Nil when commands arrive
	// over the microphone instead; the input line is hidden then.
	Typed *speech.Typed
}

// Model is the bubbletea model for the floor map.
type Model struct {
	cfg      Config
	listener *pubsub.ContinuousListener[any]
	input    textinput.Model

	state    guide.State
	position grid.Cell
	route    []grid.Cell
	target   *grid.Product
	lastCue  string

	width  int
	height int
}

// New builds the model positioned at the start cell.
func New(cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "type a product name, or exit"
	input.CharLimit = 64
	input.Focus()

	return Model{
		cfg:      cfg,
		listener: pubsub.NewContinuousListener(cfg.Ctx, cfg.Broker),
		input:    input,
		state:    guide.StateIdle,
		position: cfg.Start,
	}
}

// Init starts the event stream and the input cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listener.Listen(), textinput.Blink)
}

// Update handles keys and engine events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Common.Quit), key.Matches(msg, keys.Common.Escape):
			// Stop the engine first so it unwinds its session.
			m.cfg.Cancel()
			return m, tea.Quit

		case key.Matches(msg, keys.Common.Submit):
			if m.cfg.Typed != nil {
				if text := strings.TrimSpace(m.input.Value()); text != "" {
					m.cfg.Typed.Submit(text)
				}
				m.input.Reset()
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case pubsub.Event[any]:
		return m.handleEngineEvent(msg)
	}

	return m, nil
}

// handleEngineEvent mirrors one engine event into view state. It always
// re-arms the listener; the stream ends only when the engine exits.
func (m Model) handleEngineEvent(ev pubsub.Event[any]) (tea.Model, tea.Cmd) {
	switch ev.Type {
	case guide.EventState:
		if payload, ok := ev.Payload.(guide.StateEvent); ok {
			m.state = payload.To
			if payload.To == guide.StateExited {
				return m, tea.Quit
			}
		}

	case guide.EventPosition:
		if payload, ok := ev.Payload.(guide.PositionEvent); ok {
			m.position = payload.Cell
		}

	case guide.EventCue:
		if payload, ok := ev.Payload.(guide.CueEvent); ok {
			m.lastCue = payload.Text
		}

	case guide.EventTarget:
		if payload, ok := ev.Payload.(guide.TargetEvent); ok {
			product := payload.Product
			m.target = &product
			m.route = payload.Path
		}

	case guide.EventArrived:
		m.target = nil
		m.route = nil
	}

	return m, m.listener.Listen()
}

// Floor map glyphs.
const (
	glyphUser   = "@"
	glyphShelf  = "#"
	glyphTarget = "X"
	glyphTrail  = "*"
	glyphFloor  = "."
)

// View renders the title, floor map, legend, status line, and input.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimaryColor)
	mutedStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	sections := []string{
		titleStyle.Render(m.cfg.StoreName),
		"",
		m.renderFloor(),
		"",
		m.renderLegend(),
		"",
		m.renderStatus(),
	}

	if m.cfg.Typed != nil {
		sections = append(sections, "", m.input.View())
	}
	sections = append(sections, "", mutedStyle.Render("enter: send command · ctrl+c: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderFloor draws the grid top-down so higher Y (the back of the
// store) appears at the top.
func (m Model) renderFloor() string {
	userStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.UserColor)
	shelfStyle := lipgloss.NewStyle().Foreground(styles.ShelfColor)
	targetStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.TargetColor)
	trailStyle := lipgloss.NewStyle().Foreground(styles.TrailColor)
	floorStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	trail := make(map[grid.Cell]struct{}, len(m.route))
	for _, c := range m.route {
		trail[c] = struct{}{}
	}

	var b strings.Builder
	for y := m.cfg.Map.Height() - 1; y >= 0; y-- {
		for x := 0; x < m.cfg.Map.Width(); x++ {
			cell := grid.Cell{X: x, Y: y}
			switch {
			case cell == m.position:
				b.WriteString(userStyle.Render(glyphUser))
			case m.target != nil && cell == m.target.Cell:
				b.WriteString(targetStyle.Render(glyphTarget))
			case m.cfg.Map.IsObstacle(cell):
				b.WriteString(shelfStyle.Render(glyphShelf))
			default:
				if _, onTrail := trail[cell]; onTrail {
					b.WriteString(trailStyle.Render(glyphTrail))
				} else {
					b.WriteString(floorStyle.Render(glyphFloor))
				}
			}
			b.WriteString(" ")
		}
		if y > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderLegend lists the products with their aisles.
func (m Model) renderLegend() string {
	nameStyle := lipgloss.NewStyle().Foreground(styles.TextDescriptionColor)
	aisleStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	parts := make([]string, 0, len(m.cfg.Map.Products()))
	for _, p := range m.cfg.Map.Products() {
		parts = append(parts, nameStyle.Render(p.Name)+aisleStyle.Render(" ("+p.Aisle+")"))
	}
	return strings.Join(parts, "  ")
}

// renderStatus shows the engine state, the active destination, and the
// last spoken cue.
func (m Model) renderStatus() string {
	stateStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.StatusSuccessColor)
	cueStyle := lipgloss.NewStyle().Foreground(styles.TextDescriptionColor)

	status := stateStyle.Render(m.state.String())
	if m.target != nil {
		status += cueStyle.Render(fmt.Sprintf(" · heading to %s (aisle %s)", m.target.Name, m.target.Aisle))
	}
	if m.lastCue != "" {
		status += "\n" + cueStyle.Render("♪ "+m.lastCue)
	}
	return status
}
