package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/shadowcore/engine"
	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/meta"
	"github.com/nathoo/shadowcore/types"
)

// entry is one unstyled transcript line. Lines are styled at render time
// so a resize can re-wrap them.
type entry struct {
	text string
	kind lineKind
}

// Options configures the TUI.
type Options struct {
	SaveDir string
	UserID  string
}

// Model is the Bubble Tea model for the ShadowCore TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs
	meta   *meta.Handler

	viewport viewport.Model
	input    textinput.Model
	recall   *inputHistory

	transcript []entry

	width, height int
	ready         bool
	quitting      bool
	lastCmd       string
}

// introMsg carries the opening text.
type introMsg struct{ lines []string }

// shadowTurnMsg is sent from the combat scheduler after an enemy turn.
type shadowTurnMsg struct{}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs, opts Options) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = styleInputPrompt
	in.CharLimit = 256
	in.Focus()

	if opts.SaveDir == "" {
		opts.SaveDir = "."
	}
	if opts.UserID == "" {
		opts.UserID = "local"
	}
	return Model{
		engine: eng,
		defs:   defs,
		meta:   &meta.Handler{Engine: eng, SaveDir: opts.SaveDir, UserID: opts.UserID},
		input:  in,
		recall: newInputHistory(100),
	}
}

// Run starts the Bubble Tea program. Enemy turns that land while the
// player is idle reach the model through Program.Send.
func Run(ctx context.Context, eng *engine.Engine, defs *state.Defs, opts Options) error {
	p := tea.NewProgram(New(eng, defs, opts),
		tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	eng.Combat.SetObserver(func() { p.Send(shadowTurnMsg{}) })
	defer eng.Combat.SetObserver(nil)

	if _, err := p.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}

// Init produces the title, intro and opening scene.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		g := m.defs.Game
		title := g.Title
		if g.Version != "" {
			title += " v" + g.Version
		}
		if g.Author != "" {
			title += " by " + g.Author
		}
		lines := []string{title, ""}
		if g.Intro != "" {
			lines = append(lines, g.Intro, "")
		}
		return introMsg{lines: append(lines, m.engine.Step("look").Output...)}
	})
}

// Update handles key presses, resizes, the intro and shadow turns.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case introMsg:
		m.write(msg.lines...)
		return m, nil

	case shadowTurnMsg:
		if r := m.engine.Sync(); len(r.Output) > 0 {
			m.show(r)
		}
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	vpHeight := max(h-2, 1) // status bar + input line
	if !m.ready {
		m.viewport = viewport.New(w, vpHeight)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	} else {
		m.viewport.Width, m.viewport.Height = w, vpHeight
	}
	m.render()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "enter":
		next, cmd := m.submit()
		return next, cmd, true
	case "up":
		if prev, ok := m.recall.Prev(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil, true
	case "down":
		next, ok := m.recall.Next()
		if !ok {
			m.recall.ResetCursor()
		}
		m.input.SetValue(next)
		m.input.CursorEnd()
		return m, nil, true
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

// submit runs the input line as a meta-command or a game command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.recall.Push(input)
	m.recall.ResetCursor()
	m.echo(input)

	if meta.IsMeta(input) {
		r := m.meta.Handle(context.Background(), input)
		for _, line := range r.Lines {
			if r.Plain {
				m.write(line)
			} else {
				m.transcript = append(m.transcript, entry{text: "[" + line + "]", kind: kindSystem})
			}
		}
		if r.Look {
			m.show(m.engine.Step("look"))
		} else {
			m.write("")
		}
		if r.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch strings.ToLower(input) {
	case "again", "g":
		if m.lastCmd == "" {
			m.transcript = append(m.transcript, entry{text: "[Nothing to repeat.]", kind: kindSystem})
			m.write("")
			return m, nil
		}
		input = m.lastCmd
	default:
		m.lastCmd = input
	}

	m.show(m.engine.Step(input))
	return m, nil
}

func (m *Model) echo(input string) {
	m.transcript = append(m.transcript, entry{text: "> " + input, kind: kindInput})
}

// show appends a result, its trace lines and a separator.
func (m *Model) show(r types.Result) {
	m.write(r.Output...)
	m.write(m.meta.TraceLines(r)...)
	m.write("")
}

// write appends classified lines and re-renders.
func (m *Model) write(lines ...string) {
	for _, line := range lines {
		m.transcript = append(m.transcript, entry{text: line, kind: classifyLine(line)})
	}
	m.render()
}

// render wraps and styles the transcript at the current width.
func (m *Model) render() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)
	out := make([]string, len(m.transcript))
	for i, e := range m.transcript {
		if e.text != "" {
			out[i] = styleFor(e.kind).Render(wordWrap(e.text, width))
		}
	}
	m.viewport.SetContent(strings.Join(out, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap breaks text at spaces so no line exceeds width, keeping the
// first line's indentation. Single words longer than width are not split.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	var b strings.Builder
	col := len(text) - len(strings.TrimLeft(text, " "))
	b.WriteString(text[:col])
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
		case col+1+len(word) > width:
			b.WriteByte('\n')
			col = 0
		default:
			b.WriteByte(' ')
			col++
		}
		b.WriteString(word)
		col += len(word)
	}
	return b.String()
}

// View renders the transcript, status bar and input line.
func (m Model) View() string {
	switch {
	case m.quitting:
		return ""
	case !m.ready:
		return "Loading..."
	}
	return strings.Join([]string{m.viewport.View(), m.renderStatusBar(), m.input.View()}, "\n")
}

// viewportKeyMap keeps paging on PgUp/PgDn and frees Up/Down for recall.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
