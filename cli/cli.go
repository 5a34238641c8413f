// Package cli is the line-oriented front-end: it reads commands from a
// reader, which may be a terminal or a script, and prints the journey.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/shadowcore/engine"
	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/meta"
	"github.com/nathoo/shadowcore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	Meta      *meta.Handler
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (for script playback)

	lastCmd string
}

// New creates a CLI wired to the given engine, reading stdin and writing
// stdout. Saves go to saveDir; /history reads userID's encounters.
func New(eng *engine.Engine, defs *state.Defs, saveDir, userID string) *CLI {
	return &CLI{
		Engine: eng,
		Defs:   defs,
		Meta:   &meta.Handler{Engine: eng, SaveDir: saveDir, UserID: userID},
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run shows the intro and the opening scene, then reads one command per
// line until input ends, the player quits, or ctx is cancelled. During an
// encounter it waits for each shadow turn before prompting again.
func (c *CLI) Run(ctx context.Context) {
	if intro := c.Defs.Game.Intro; intro != "" {
		fmt.Fprintf(c.Out, "%s\n\n", intro)
	}
	c.show(c.Engine.Step("look"))

	lines := bufio.NewScanner(c.In)
	for ctx.Err() == nil {
		fmt.Fprint(c.Out, "> ")
		if !lines.Scan() {
			return
		}
		input := strings.TrimSpace(lines.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			fmt.Fprintln(c.Out, input)
		}

		if meta.IsMeta(input) {
			if quit := c.runMeta(ctx, input); quit {
				return
			}
			continue
		}

		input, ok := c.repeat(input)
		if !ok {
			fmt.Fprintln(c.Out, "Nothing to repeat.")
			continue
		}
		c.show(c.Engine.Step(input))
		c.awaitShadow(ctx)
	}
}

// repeat expands "again"/"g" to the previous game command.
func (c *CLI) repeat(input string) (string, bool) {
	switch strings.ToLower(input) {
	case "again", "g":
		return c.lastCmd, c.lastCmd != ""
	}
	c.lastCmd = input
	return input, true
}

func (c *CLI) runMeta(ctx context.Context, input string) bool {
	r := c.Meta.Handle(ctx, input)
	for _, line := range r.Lines {
		if r.Plain {
			fmt.Fprintln(c.Out, line)
		} else {
			fmt.Fprintf(c.Out, "[%s]\n", line)
		}
	}
	if r.Look {
		c.show(c.Engine.Step("look"))
	}
	return r.Quit
}

// awaitShadow blocks while a shadow turn is scheduled and prints each one
// as it lands.
func (c *CLI) awaitShadow(ctx context.Context) {
	for c.Engine.Combat.EnemyTurnPending() {
		if err := c.Engine.Combat.WaitEnemyTurn(ctx); err != nil {
			return
		}
		c.show(c.Engine.Sync())
	}
}

func (c *CLI) show(result types.Result) {
	for _, line := range result.Output {
		fmt.Fprintln(c.Out, line)
	}
	for _, line := range c.Meta.TraceLines(result) {
		fmt.Fprintf(c.Out, "[%s]\n", line)
	}
}
