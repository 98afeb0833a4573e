// Package search runs natural-language photo searches.
//
// Model is a Bubble Tea sub-model with a two-state machine. Submit moves it
// from idle to searching and returns the request command. The matching
// result message moves it back to idle.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shutter/internal/logging"
	"github.com/five82/shutter/internal/notify"
	"github.com/five82/shutter/internal/photoapi"
)

const (
	placeholder    = "Try: 'Show me dogs' or 'Find flowers'"
	queryCharLimit = 256
)

// Model owns the query input, the current result set, and the busy flag.
type Model struct {
	ctx    context.Context
	client photoapi.Searcher
	logger *slog.Logger

	input    textinput.Model
	results  []string
	selected int
	busy     bool
}

// resultMsg carries the outcome of one search request.
type resultMsg struct {
	query   string
	results []string
	err     error
}

// New creates an idle search model. A nil ctx uses context.Background.
func New(ctx context.Context, client photoapi.Searcher, logger *slog.Logger) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = queryCharLimit
	ti.Prompt = "/ "
	return Model{
		ctx:    ctx,
		client: client,
		logger: logger.With("component", "search"),
		input:  ti,
	}
}

// Busy reports whether a search request is in flight.
func (m Model) Busy() bool { return m.busy }

// Query returns the raw text of the query input.
func (m Model) Query() string { return m.input.Value() }

// SetQuery replaces the query text.
func (m *Model) SetQuery(q string) { m.input.SetValue(q) }

// Results returns a copy of the current result set.
func (m Model) Results() []string {
	if len(m.results) == 0 {
		return nil
	}
	out := make([]string, len(m.results))
	copy(out, m.results)
	return out
}

// Selected returns the highlighted result, if any.
func (m Model) Selected() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.results) {
		return "", false
	}
	return m.results[m.selected], true
}

// SelectedIndex returns the index of the highlighted result.
func (m Model) SelectedIndex() int { return m.selected }

// MoveSelection shifts the highlight by delta, clamped to the result set.
func (m *Model) MoveSelection(delta int) {
	if len(m.results) == 0 {
		m.selected = 0
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.results)-1)
}

// Focus gives the query input the cursor.
func (m *Model) Focus() tea.Cmd { return m.input.Focus() }

// Blur removes the cursor from the query input.
func (m *Model) Blur() { m.input.Blur() }

// InputView renders the query input.
func (m Model) InputView() string { return m.input.View() }

// Submit validates the query and starts a search. It is a no-op while a
// search is already in flight.
func (m Model) Submit() (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, notify.Error("Please enter a search query")
	}

	m.results = nil
	m.selected = 0
	m.busy = true
	m.logger.Info("search started", "query", query)
	return m, m.searchCmd(query)
}

// Update handles search results and, while idle, edits to the query input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		return m.handleResult(msg)
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
	}
	// Keys and cursor blinks go to the input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResult(msg resultMsg) (Model, tea.Cmd) {
	m.busy = false
	m.selected = 0

	switch {
	case msg.err != nil && !errors.Is(msg.err, photoapi.ErrMalformedResponse):
		m.results = nil
		m.logger.Warn("search failed", "query", msg.query, "error", msg.err)
		return m, notify.Error("Search failed: " + photoapi.Explain(msg.err))
	case len(msg.results) == 0:
		m.results = nil
		if msg.err != nil {
			m.logger.Warn("search response unreadable", "query", msg.query, "error", msg.err)
		} else {
			m.logger.Info("search returned nothing", "query", msg.query)
		}
		return m, notify.Error("No photos found")
	default:
		m.results = msg.results
		m.logger.Info("search finished", "query", msg.query, "results", len(msg.results))
		return m, notify.Success(fmt.Sprintf("Found %d photos", len(msg.results)))
	}
}

func (m Model) searchCmd(query string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() (msg tea.Msg) {
		// Always report back so the busy flag is released.
		defer func() {
			if r := recover(); r != nil {
				msg = resultMsg{query: query, err: fmt.Errorf("search panicked: %v", r)}
			}
		}()
		if client == nil {
			return resultMsg{query: query, err: errors.New("search client unavailable")}
		}
		resp, err := client.Search(ctx, query)
		return resultMsg{query: query, results: resp.Results, err: err}
	}
}
