// Package tui is the interactive terminal version of the lookup form.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jjenkins/pincode/internal/logging"
	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/service"
	"github.com/jjenkins/pincode/internal/view"
)

const (
	defaultWidth = 80
	minCardWidth = 30
)

// lookupDoneMsg carries a finished lookup back into the update loop
type lookupDoneMsg struct {
	generation uint64
	code       model.PostalCode
	result     model.QueryResult
}

// Model is the bubbletea model of the lookup form
type Model struct {
	state    view.State
	looker   service.Looker
	recorder service.Recorder
	logger   *logging.Logger

	code   textinput.Model
	filter textinput.Model

	ctx    context.Context
	cancel context.CancelFunc

	width    int
	quitting bool
}

// New creates the form in the AwaitingInput phase. recorder may be nil.
func New(looker service.Looker, recorder service.Recorder, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.NopLogger()
	}

	code := textinput.New()
	code.Placeholder = "Pincode"
	code.CharLimit = service.PincodeLength
	code.Width = 10
	code.Focus()

	filter := textinput.New()
	filter.Placeholder = "Filter"
	filter.CharLimit = 100

	return Model{
		looker:   looker,
		recorder: recorder,
		logger:   logger,
		code:     code,
		filter:   filter,
		width:    defaultWidth,
	}
}

// State returns the current form state
func (m Model) State() view.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case lookupDoneMsg:
		return m.handleLookupDone(msg), nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.stopLookup()
			m.quitting = true
			return m, tea.Quit
		}

		switch m.state.Phase {
		case view.AwaitingInput:
			return m.updateAwaitingInput(msg)
		case view.Loading:
			if msg.Type == tea.KeyEsc {
				m.stopLookup()
				m.state = view.Cancel(m.state)
				m.code.Focus()
			}
			return m, nil
		case view.ResultsShown:
			return m.updateResults(msg)
		}
	}

	return m, nil
}

func (m Model) updateAwaitingInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		next, ok := view.Submit(m.state, m.code.Value())
		if !ok {
			return m, nil
		}
		m.state = next
		if next.Phase != view.Loading {
			return m, nil
		}

		m.code.Blur()
		m.ctx, m.cancel = context.WithCancel(context.Background())
		m.logger.Info("lookup started", "pincode", next.Code.String())
		return m, lookupCmd(m.ctx, m.looker, m.recorder, m.logger, next.Generation, next.Code)
	}

	var cmd tea.Cmd
	m.code, cmd = m.code.Update(msg)
	return m, cmd
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlN:
		m.state = view.Reset(m.state)
		m.filter.Reset()
		m.filter.Blur()
		m.code.SetValue(m.state.Input)
		m.code.Focus()
		return m, textinput.Blink
	}

	if !m.state.Result.IsSuccess() {
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.state = view.SetFilter(m.state, m.filter.Value())
	return m, cmd
}

func (m Model) handleLookupDone(msg lookupDoneMsg) Model {
	applied := m.state.Phase == view.Loading && m.state.Generation == msg.generation
	m.state = view.Complete(m.state, msg.generation, msg.result)
	if !applied {
		m.logger.Debug("stale lookup dropped", "pincode", msg.code.String())
		return m
	}

	m.stopLookup()

	if msg.result.Err != nil {
		m.logger.Warn("lookup failed", "pincode", msg.code.String(), "error", msg.result.Err.Error(), "kind", string(service.KindOf(msg.result.Err)))
	} else {
		m.logger.Info("lookup completed", "pincode", msg.code.String(), "outcome", string(msg.result.Outcome), "records", len(msg.result.Records))
	}

	if msg.result.IsSuccess() {
		m.filter.Reset()
		m.filter.Focus()
	}
	return m
}

func (m *Model) stopLookup() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// lookupCmd runs the lookup off the update loop and records it unless it
// was cancelled
func lookupCmd(ctx context.Context, looker service.Looker, recorder service.Recorder, logger *logging.Logger, generation uint64, code model.PostalCode) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result := looker.Lookup(ctx, code)

		if recorder != nil && ctx.Err() == nil {
			if err := recorder.Record(ctx, service.NewLookupRecord(code, result, time.Since(start))); err != nil {
				logger.Error("failed to record lookup", "pincode", code.String(), "error", err.Error())
			}
		}

		return lookupDoneMsg{
			generation: generation,
			code:       code,
			result:     result,
		}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	switch m.state.Phase {
	case view.AwaitingInput:
		b.WriteString(titleStyle.Render("Enter Pincode"))
		b.WriteString("\n")
		b.WriteString(m.code.View())
		b.WriteString("\n")
		if m.state.Error != "" {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(m.state.Error))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("enter: lookup • esc: quit"))

	case view.Loading:
		b.WriteString(titleStyle.Render("Pincode: " + m.state.Code.String()))
		b.WriteString("\n")
		b.WriteString("Loading...\n\n")
		b.WriteString(mutedStyle.Render("esc: cancel • ctrl+c: quit"))

	case view.ResultsShown:
		b.WriteString(titleStyle.Render("Pincode: " + m.state.Code.String()))
		b.WriteString("\n")
		if msg := m.state.Message(); msg != "" {
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		} else {
			b.WriteString(fmt.Sprintf("Message: Number of pincode(s) found: %d\n", m.state.Count()))
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
			if m.state.NoMatches() {
				b.WriteString(view.NoMatchesMessage)
				b.WriteString("\n")
			} else {
				b.WriteString(m.renderGrid())
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("type to filter • esc: new search • ctrl+c: quit"))
	}

	return b.String() + "\n"
}

// renderGrid lays the filtered post offices out as two columns of cards
func (m Model) renderGrid() string {
	cardWidth := m.width/2 - 4
	if cardWidth < minCardWidth {
		cardWidth = minCardWidth
	}

	var rows []string
	records := m.state.Filtered
	for i := 0; i < len(records); i += 2 {
		left := renderCard(records[i], cardWidth)
		if i+1 < len(records) {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, left, renderCard(records[i+1], cardWidth)))
		} else {
			rows = append(rows, left)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(p model.PostOffice, width int) string {
	lines := []string{
		labelStyle.Render("Name:") + " " + p.Name,
		labelStyle.Render("Branch Type:") + " " + p.BranchType,
		labelStyle.Render("Delivery Status:") + " " + p.DeliveryStatus,
		labelStyle.Render("District:") + " " + p.District,
		labelStyle.Render("Division:") + " " + p.Division,
	}
	return cardStyle.Width(width).Render(strings.Join(lines, "\n"))
}
