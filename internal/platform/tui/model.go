package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avrobertson/flappyneat/internal/core"
	"github.com/avrobertson/flappyneat/internal/game"
	"github.com/avrobertson/flappyneat/internal/storage"
)

// Model is the Bubble Tea model driving one game session. The same model
// runs both human play and best-genome replay: in replay mode the game
// carries a controller, no keys map to flaps, and the session ends when
// the bird dies.
type Model struct {
	game   *game.Game
	store  *storage.Store
	keys   *KeyMapper
	fps    int
	title  string
	replay bool

	input core.InputFrame
	// Terminals report key presses but not releases, so a release is
	// synthesized on the first tick that sees no repeat of the flap key.
	flapHeld   bool
	flapQueued bool

	quitting   bool
	scoreSaved bool
}

// NewModel creates a model for interactive human play.
func NewModel(g *game.Game, store *storage.Store, fps int, title string) Model {
	return Model{
		game:  g,
		store: store,
		keys:  NewKeyMapper(),
		fps:   fps,
		title: title,
		input: core.NewInputFrame(),
	}
}

// NewReplayModel creates a model that watches a controller-driven game.
func NewReplayModel(g *game.Game, fps int, title string) Model {
	m := NewModel(g, nil, fps, title)
	m.replay = true
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	if m.replay && m.game.AliveCount() == 0 {
		m.game.SpawnBirds(1)
	}
	return tickCmd(m.fps)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}
	if action == core.ActionFlap && !m.replay {
		m.flapQueued = true
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.flapQueued {
		m.input.Press(core.ActionFlap)
		m.flapHeld = true
		m.flapQueued = false
	} else if m.flapHeld {
		m.input.Release(core.ActionFlap)
		m.flapHeld = false
	}

	if err := m.game.Step(m.input); err != nil {
		m.quitting = true
		return m, tea.Quit
	}
	m.input.Clear()

	if m.game.Quit() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.replay && m.game.EpisodeOver() {
		m.quitting = true
		return m, tea.Quit
	}
	if !m.replay {
		m.persistScore()
	}

	return m, tickCmd(m.fps)
}

// persistScore saves the score once per run when the game ends.
func (m *Model) persistScore() {
	if m.game.State() != game.StateOver {
		m.scoreSaved = false
		return
	}
	if m.scoreSaved || m.store == nil {
		return
	}
	if b := m.game.Bird(); b != nil && b.Score() > 0 {
		//nolint:errcheck // Best-effort save, game continues regardless
		m.store.SaveScore(b.Score())
	}
	m.scoreSaved = true
}

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	hint := "space flap · q quit"
	if m.replay {
		hint = "q quit"
	}
	return RenderScreen(m.game.Screen(), m.title, hint)
}

// Run starts the Bubble Tea program with the given model.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
