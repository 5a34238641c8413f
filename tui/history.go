// Package tui provides a Bubble Tea terminal UI for the ShadowCore engine.
package tui

// inputHistory is a fixed-size ring of submitted commands with a recall
// cursor for the Up and Down keys.
type inputHistory struct {
	ring   []string
	start  int // index of the oldest entry
	size   int
	cursor int // -1 when not recalling, else 0..size-1 counted from oldest
}

func newInputHistory(capacity int) *inputHistory {
	return &inputHistory{ring: make([]string, max(capacity, 1)), cursor: -1}
}

func (h *inputHistory) at(i int) string {
	return h.ring[(h.start+i)%len(h.ring)]
}

// Push records cmd. A repeat of the newest entry is dropped.
func (h *inputHistory) Push(cmd string) {
	if h.size > 0 && h.at(h.size-1) == cmd {
		return
	}
	if h.size < len(h.ring) {
		h.ring[(h.start+h.size)%len(h.ring)] = cmd
		h.size++
		return
	}
	h.ring[h.start] = cmd
	h.start = (h.start + 1) % len(h.ring)
}

// Prev steps back to an older entry, stopping at the oldest.
func (h *inputHistory) Prev() (string, bool) {
	if h.size == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = h.size - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.at(h.cursor), true
}

// Next steps forward. Past the newest entry it returns false and leaves
// recall mode.
func (h *inputHistory) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= h.size {
		h.cursor = -1
		return "", false
	}
	return h.at(h.cursor), true
}

// ResetCursor leaves recall mode.
func (h *inputHistory) ResetCursor() {
	h.cursor = -1
}

// Len reports how many entries are stored.
func (h *inputHistory) Len() int {
	return h.size
}
