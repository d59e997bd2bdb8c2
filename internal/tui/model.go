// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is an interactive terminal browser over a corpus snapshot.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/pubscope/internal/browse"
	"github.com/pdiddy/pubscope/internal/corpus"
	"github.com/pdiddy/pubscope/internal/export"
	"github.com/pdiddy/pubscope/internal/insight"
	"github.com/pdiddy/pubscope/internal/search"
	"github.com/pdiddy/pubscope/pkg/types"
)

// SearchRecorder keeps the recent search history.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, query string) error
}

var (
	modes = []types.SearchMode{types.ModeIndexed, types.ModeWeighted, types.ModeFullText}
	sorts = []types.SortOption{types.SortYearDesc, types.SortYearAsc, types.SortCitations, types.SortRelevance}
)

// summaryMsg carries an AI summary back to Update.
type summaryMsg struct {
	ticket  insight.Ticket
	id      string
	summary types.AISummary
}

// Model is the Bubble Tea model of the browser.
type Model struct {
	snap     *corpus.Snapshot
	insight  *insight.Adapter
	tracker  *insight.Tracker
	history  SearchRecorder
	input    textinput.Model
	viewport viewport.Model

	query   browse.Query
	mode    int
	sort    int
	page    search.Page
	cursor  int
	summary *summaryMsg
	status  string
	ready   bool
}

// New creates a browser over snap showing the first page of the corpus.
// adapter may be nil, in which case summaries use the local heuristic;
// history may be nil.
func New(snap *corpus.Snapshot, adapter *insight.Adapter, history SearchRecorder) Model {
	if adapter == nil {
		adapter = insight.New(nil)
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Search publications and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		snap:     snap,
		insight:  adapter,
		tracker:  insight.NewTracker(),
		history:  history,
		input:    ti,
		viewport: viewport.New(0, 0),
	}
	m.run()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 3 + qh + 1
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.refresh()
		return m, nil

	case summaryMsg:
		if !m.tracker.Current(msg.ticket) {
			return m, nil
		}
		m.tracker.End(msg.ticket)
		m.summary = &msg
		m.status = "Summary ready (" + msg.summary.Source + ")"
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.query.Text = strings.TrimSpace(m.input.Value())
			m.query.Page = 1
			m.run()
			m.record()
			return m, nil
		case tea.KeyDown:
			m.move(1)
			return m, nil
		case tea.KeyUp:
			m.move(-1)
			return m, nil
		case tea.KeyPgDown:
			m.turn(1)
			return m, nil
		case tea.KeyPgUp:
			m.turn(-1)
			return m, nil
		case tea.KeyTab:
			m.mode = (m.mode + 1) % len(modes)
			m.query.Page = 1
			m.run()
			return m, nil
		case tea.KeyCtrlS:
			m.sort = (m.sort + 1) % len(sorts)
			m.query.Page = 1
			m.run()
			return m, nil
		case tea.KeyCtrlA:
			return m, m.summarize()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run executes the current query and resets the cursor.
func (m *Model) run() {
	m.query.Mode = modes[m.mode]
	m.query.Sort = sorts[m.sort]
	page, err := browse.Run(m.snap.Publications, m.snap.Index, m.query)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.page = page
	m.cursor = 0
	m.status = fmt.Sprintf("%d results", page.Total)
	if m.query.Text != "" {
		m.status = fmt.Sprintf("%d results for %q", page.Total, m.query.Text)
	}
	m.refresh()
}

func (m *Model) record() {
	if m.history == nil || m.query.Text == "" {
		return
	}
	if err := m.history.RecordSearch(context.Background(), m.query.Text); err != nil {
		m.status = "History: " + err.Error()
	}
}

func (m *Model) move(delta int) {
	if n := len(m.page.Items); n > 0 {
		m.cursor = (m.cursor + delta + n) % n
		m.refresh()
	}
}

func (m *Model) turn(delta int) {
	next := m.page.Page + delta
	if next < 1 || next > m.page.TotalPages {
		return
	}
	m.query.Page = next
	m.run()
}

// summarize starts a summary of the selected publication. A newer request
// makes older ones stale.
func (m *Model) summarize() tea.Cmd {
	p, ok := m.selected()
	if !ok {
		return nil
	}
	ticket, ctx := m.tracker.Begin(context.Background())
	m.status = "Summarizing " + p.ID + "..."
	adapter := m.insight
	return func() tea.Msg {
		return summaryMsg{ticket: ticket, id: p.ID, summary: adapter.Summarize(ctx, p.Abstract)}
	}
}

func (m Model) selected() (types.Publication, bool) {
	if m.cursor < 0 || m.cursor >= len(m.page.Items) {
		return types.Publication{}, false
	}
	return m.page.Items[m.cursor], true
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.render())
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("pubscope")
	info := dimStyle.Render(fmt.Sprintf("mode: %s  sort: %s  page %d/%d  (tab mode, ctrl+s sort, ctrl+a summarize, pgup/pgdn page)",
		m.query.Mode, m.query.Sort, m.page.Page, max(m.page.TotalPages, 1)))
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + info + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) render() string {
	if len(m.page.Items) == 0 {
		return "No results found."
	}
	var b strings.Builder
	offset := (m.page.Page - 1) * m.page.PageSize
	for i, p := range m.page.Items {
		line := fmt.Sprintf("%3d. %s (%d)", offset+i+1, p.Title, p.Year)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}

	p, _ := m.selected()
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n" + dimStyle.Render(export.FormatAuthors(p.Authors, export.AuthorLimit)))
	if doi := export.FormatDOI(p.DOI); doi != "" {
		b.WriteString("\n" + dimStyle.Render(doi))
	}
	if len(p.Topics) > 0 {
		b.WriteString("\nTopics: " + strings.Join(p.Topics, ", "))
	}
	b.WriteString("\n\n" + highlight(p.Abstract, m.query.Text))

	if m.summary != nil && m.summary.id == p.ID {
		var sb strings.Builder
		export.SummaryText(m.summary.summary, &sb)
		b.WriteString("\n\n" + sb.String())
	}
	return b.String()
}

// highlight emphasises query terms in text.
func highlight(text, query string) string {
	terms := search.Terms(query)
	if len(terms) == 0 {
		return text
	}
	words := strings.Fields(text)
	for i, w := range words {
		lw := strings.ToLower(w)
		for _, t := range terms {
			if strings.Contains(lw, t) {
				words[i] = highlightStyle.Render(w)
				break
			}
		}
	}
	return strings.Join(words, " ")
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
