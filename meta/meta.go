// Package meta implements the slash commands shared by the CLI and the TUI:
// saving, loading, history, state dumps and help.
package meta

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/nathoo/shadowcore/engine"
	"github.com/nathoo/shadowcore/types"
)

// HistoryLimit is how many past encounters /history shows.
const HistoryLimit = 10

// DefaultSlot is the save name used when none is given.
const DefaultSlot = "quicksave"

var slotName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Reply is the outcome of one meta-command.
type Reply struct {
	Lines []string
	// Plain lines are listings (help, history) rather than status notes.
	Plain bool
	Quit  bool
	// Look asks the front-end to describe the scene after the reply.
	Look bool
}

// Handler runs meta-commands against an engine.
type Handler struct {
	Engine  *engine.Engine
	SaveDir string
	UserID  string
	Trace   bool
}

// IsMeta reports whether input is a meta-command.
func IsMeta(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// Handle dispatches one meta-command.
func (h *Handler) Handle(ctx context.Context, input string) Reply {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return Reply{}
	}
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return Reply{Lines: []string{"Goodbye."}, Quit: true}
	case "/save":
		return h.save(arg)
	case "/load":
		return h.load(arg)
	case "/history":
		return h.history(ctx)
	case "/state":
		return Reply{Lines: h.state()}
	case "/help":
		return Reply{Lines: Help(), Plain: true}
	case "/trace":
		h.Trace = !h.Trace
		if h.Trace {
			return note("Trace output enabled.")
		}
		return note("Trace output disabled.")
	}
	return note(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
}

func note(line string) Reply {
	return Reply{Lines: []string{line}}
}

func (h *Handler) slotPath(name string) (string, string, error) {
	if name == "" {
		name = DefaultSlot
	}
	if !slotName.MatchString(name) {
		return "", "", fmt.Errorf("invalid save name %q", name)
	}
	return name, filepath.Join(h.SaveDir, name+".json"), nil
}

func (h *Handler) save(arg string) Reply {
	name, path, err := h.slotPath(arg)
	if err != nil {
		return note(fmt.Sprintf("Save failed: %v", err))
	}

	data, err := h.Engine.Save()
	if errors.Is(err, engine.ErrInCombat) {
		return note("You cannot save during combat.")
	}
	if err != nil {
		return note(fmt.Sprintf("Save failed: %v", err))
	}
	if err := os.MkdirAll(h.SaveDir, 0o755); err != nil {
		return note(fmt.Sprintf("Save failed: %v", err))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return note(fmt.Sprintf("Save failed: %v", err))
	}
	return note(fmt.Sprintf("Game saved to %s.", name))
}

func (h *Handler) load(arg string) Reply {
	name, path, err := h.slotPath(arg)
	if err != nil {
		return note(fmt.Sprintf("Load failed: %v", err))
	}
	if h.Engine.InCombat() {
		return note("You cannot load during combat.")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return note(fmt.Sprintf("Load failed: %v", err))
	}
	sd, err := h.Engine.Load(data)
	if err != nil {
		return note(fmt.Sprintf("Load failed: %v", err))
	}
	r := note(fmt.Sprintf("Game loaded from %s (turn %d).", name, sd.Turn))
	r.Look = true
	return r
}

func (h *Handler) history(ctx context.Context) Reply {
	rec := h.Engine.Recorder
	if rec == nil {
		return note("Combat history is not being kept.")
	}
	lister, ok := rec.Lister()
	if !ok {
		return note("Combat history cannot be read back.")
	}
	rec.Wait()

	records, err := lister.ListCombats(ctx, h.UserID, HistoryLimit)
	if err != nil {
		return note(fmt.Sprintf("History failed: %v", err))
	}
	if len(records) == 0 {
		return note("No encounters yet.")
	}
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, r.Line())
	}
	return Reply{Lines: lines, Plain: true}
}

func (h *Handler) state() []string {
	s := h.Engine.State
	p := s.Player
	out := []string{
		fmt.Sprintf("Turn: %d", s.TurnCount),
		fmt.Sprintf("Scene: %s (#%d)", s.SceneID, s.SceneIndex),
		fmt.Sprintf("Level %d, XP %d, LP %d, SP %d, HP %d/%d, Energy %d/%d, Trust %d",
			p.Level, p.Experience, p.LightPoints, p.ShadowPoints, p.Health, p.MaxHealth, p.Energy, p.MaxEnergy, s.Trust),
		fmt.Sprintf("RNG: seed %d, position %d", s.RNGSeed, h.Engine.RNG.Position()),
	}

	var flags []string
	for f, on := range s.Flags {
		if on {
			flags = append(flags, f)
		}
	}
	if len(flags) > 0 {
		sort.Strings(flags)
		out = append(out, "Flags: "+strings.Join(flags, ", "))
	}

	if v := h.Engine.Combat.View(); v.IsActive && v.Enemy != nil {
		out = append(out, fmt.Sprintf("Combat: %s %d/%d HP, turn %d, player turn %t",
			v.Enemy.ID, v.Enemy.CurrentHP, v.Enemy.MaxHP, v.Turn, v.IsPlayerTurn))
	}
	return out
}

// TraceLines renders the events of a result when tracing is on.
func (h *Handler) TraceLines(result types.Result) []string {
	if !h.Trace || len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
	}
	return lines
}

// Help lists meta-commands and game verbs.
func Help() []string {
	return []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /history      Show recent encounters",
		"  /state        Debug: dump current state",
		"  /trace        Toggle event trace output",
		"  /help         Show this help",
		"  /quit         Exit game",
		"",
		"On the road:",
		"  look (l)          Describe the scene",
		"  status (st)       Show your light, shadow and health",
		"  choose <n|words>  Attempt an option (or just type its number)",
		"  rest              Recover health and energy",
		"  encounter         Seek out a wandering shadow",
		"",
		"Facing a shadow:",
		"  illuminate (i)    Strike with light",
		"  reflect (r)       Heal and steady yourself",
		"  endure (e)        Brace and regain light",
		"  embrace (em)      Accept the shadow; it loses its next turn",
		"  pass (p)          Let the shadow act",
		"  surrender         Give up the encounter",
		"",
		"  again (g)         Repeat your last command",
	}
}
