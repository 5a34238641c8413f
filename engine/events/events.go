// Package events implements single-pass event handler dispatch.
// Handlers print lines but never emit further events.
package events

import (
	"github.com/nathoo/shadowcore/engine/rules"
	"github.com/nathoo/shadowcore/types"
)

// Dispatch runs content handlers against the emitted events. Single pass,
// no recursion. Returns the lines produced by matching handlers.
func Dispatch(events []types.Event, s *types.State, handlers []types.EventHandler) []string {
	var result []string

	for _, event := range events {
		for _, handler := range handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !rules.EvalAllConditions(handler.Conditions, s) {
				continue
			}
			if handler.Say != "" {
				result = append(result, handler.Say)
			}
		}
	}

	return result
}
