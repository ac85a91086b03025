package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avrobertson/flappyneat/internal/storage"
)

const (
	maxScoreRows      = 50
	maxGenerationRows = 50
	tableHeight       = 12
)

// scoreboardTab selects which data set the table shows.
type scoreboardTab int

const (
	tabScores scoreboardTab = iota
	tabTraining
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Switch key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Switch, k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "scores/training"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var (
	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true).
			Padding(0, 1)
	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 1)
)

// ScoreboardModel is the Bubble Tea model for the scoreboard screen. It
// shows two tabs: human high scores and recent training generations.
type ScoreboardModel struct {
	store       *storage.Store
	tab         scoreboardTab
	scores      []storage.ScoreEntry
	generations []storage.GenerationEntry
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	loadErr     error
	quitting    bool
}

// NewScoreboardModel creates a scoreboard model and loads both data sets.
func NewScoreboardModel(store *storage.Store) ScoreboardModel {
	m := ScoreboardModel{
		store: store,
		keys:  DefaultScoreboardKeyMap(),
		help:  help.New(),
	}

	m.scores, m.loadErr = store.TopScores(maxScoreRows)
	if m.loadErr == nil {
		m.generations, m.loadErr = store.RecentGenerations(maxGenerationRows)
	}

	m.table = m.buildTable()
	return m
}

// buildTable assembles the table for the active tab.
func (m *ScoreboardModel) buildTable() table.Model {
	var columns []table.Column
	var rows []table.Row

	switch m.tab {
	case tabScores:
		columns = []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Score", Width: 10},
			{Title: "Date", Width: 18},
		}
		for i, e := range m.scores {
			rows = append(rows, table.Row{
				strconv.Itoa(i + 1),
				strconv.Itoa(e.Score),
				e.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
	case tabTraining:
		columns = []table.Column{
			{Title: "Gen", Width: 6},
			{Title: "Best", Width: 10},
			{Title: "Mean", Width: 10},
			{Title: "StdDev", Width: 10},
			{Title: "Score", Width: 7},
			{Title: "Frames", Width: 8},
		}
		for _, e := range m.generations {
			rows = append(rows, table.Row{
				strconv.Itoa(e.Generation),
				fmt.Sprintf("%.1f", e.Best),
				fmt.Sprintf("%.1f", e.Mean),
				fmt.Sprintf("%.1f", e.StdDev),
				strconv.Itoa(e.BestScore),
				strconv.Itoa(e.Frames),
			})
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("11"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	t.SetStyles(styles)
	return t
}

// Init implements tea.Model.
func (m ScoreboardModel) Init() tea.Cmd { return nil }

// Update handles messages.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Switch):
			if m.tab == tabScores {
				m.tab = tabTraining
			} else {
				m.tab = tabScores
			}
			m.table = m.buildTable()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}
	if m.loadErr != nil {
		return helpStyle.Render(fmt.Sprintf("cannot load records: %v", m.loadErr))
	}

	scoresTab := tabInactiveStyle.Render("Scores")
	trainingTab := tabInactiveStyle.Render("Training")
	if m.tab == tabScores {
		scoresTab = tabActiveStyle.Render("Scores")
	} else {
		trainingTab = tabActiveStyle.Render("Training")
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, scoresTab, trainingTab)

	body := m.table.View()
	if m.tab == tabScores && len(m.scores) == 0 {
		body = helpStyle.Render("No scores recorded yet.")
	}
	if m.tab == tabTraining && len(m.generations) == 0 {
		body = helpStyle.Render("No training runs recorded yet.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		frameStyle.Render(body),
		m.help.View(m.keys),
	)
}

// RunScoreboard starts the scoreboard program.
func RunScoreboard(store *storage.Store) error {
	p := tea.NewProgram(NewScoreboardModel(store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
