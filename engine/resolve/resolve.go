// Package resolve maps the object of a "choose" command to one of the
// current scene's choices, by number or by the words of its text.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/shadowcore/engine/parser"
	"github.com/nathoo/shadowcore/types"
)

// AmbiguityError indicates several choices matched the words given.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates no choice matched.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	if _, ok := parser.ChoiceNumber(e.Name); ok {
		return fmt.Sprintf("there is no option %s", e.Name)
	}
	return fmt.Sprintf("no option mentions %q", e.Name)
}

// Choice returns the 0-based index of the choice named by object. A number
// selects by position; anything else must match words of exactly one
// choice's text.
func Choice(choices []types.Choice, object string) (int, error) {
	object = strings.TrimSpace(object)
	if n, ok := parser.ChoiceNumber(object); ok {
		if n >= len(choices) {
			return 0, &NotFoundError{Name: object}
		}
		return n, nil
	}

	query := strings.Fields(strings.ToLower(object))
	if len(query) == 0 {
		return 0, &NotFoundError{Name: object}
	}

	// 1. Exact text match wins outright.
	for i, ch := range choices {
		if strings.EqualFold(ch.Text, object) {
			return i, nil
		}
	}

	// 2. Every query word appears in the choice text.
	var matches []int
	for i, ch := range choices {
		if matchesWords(ch.Text, query) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return 0, &NotFoundError{Name: object}
	case 1:
		return matches[0], nil
	default:
		candidates := make([]string, len(matches))
		for j, i := range matches {
			candidates[j] = fmt.Sprintf("%d. %s", i+1, choices[i].Text)
		}
		return 0, &AmbiguityError{Name: object, Candidates: candidates}
	}
}

// matchesWords reports whether every query word is a word of text,
// ignoring case and surrounding punctuation.
func matchesWords(text string, query []string) bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[strings.Trim(w, ".,;:!?'\"()")] = true
	}
	for _, q := range query {
		if !words[q] {
			return false
		}
	}
	return true
}
