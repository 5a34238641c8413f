package combat

import (
	"slices"

	"github.com/nathoo/shadowcore/types"
)

// appendLog records one entry at the current turn. Entries are never
// modified once written.
func (c *Combat) appendLog(actor types.Actor, action, effect string, value int, msg string) {
	c.log = append(c.log, types.LogEntry{
		Turn:      c.turn,
		Actor:     actor,
		Action:    action,
		Effect:    effect,
		Value:     value,
		Message:   msg,
		Timestamp: c.clock.Now(),
	})
}

// tail returns a copy of the last n entries.
func tail(log []types.LogEntry, n int) []types.LogEntry {
	if n <= 0 || len(log) <= n {
		return slices.Clone(log)
	}
	return slices.Clone(log[len(log)-n:])
}
