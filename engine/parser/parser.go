// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/shadowcore/types"
)

var verbAliases = map[string]string{
	// Look
	"l":       "look",
	"scene":   "look",
	"where":   "look",
	"observe": "look",

	// Status
	"stats": "status",
	"st":    "status",
	"me":    "status",
	"sheet": "status",

	// Scene choices
	"c":      "choose",
	"pick":   "choose",
	"option": "choose",
	"select": "choose",
	"try":    "choose",

	// Combat: illuminate
	"i":      "illuminate",
	"ill":    "illuminate",
	"light":  "illuminate",
	"attack": "illuminate",
	"shine":  "illuminate",
	"strike": "illuminate",

	// Combat: reflect
	"r":       "reflect",
	"ref":     "reflect",
	"heal":    "reflect",
	"breathe": "reflect",

	// Combat: endure
	"e":      "endure",
	"end":    "endure",
	"guard":  "endure",
	"defend": "endure",
	"block":  "endure",
	"brace":  "endure",

	// Combat: embrace
	"em":     "embrace",
	"emb":    "embrace",
	"accept": "embrace",
	"hug":    "embrace",

	// Turn control
	"p":     "pass",
	"skip":  "pass",
	"wait":  "pass",
	"z":     "pass",
	"flee":  "surrender",
	"yield": "surrender",
	"quit":  "surrender",

	// Recovery / exploration
	"sleep":  "rest",
	"sit":    "rest",
	"camp":   "rest",
	"wander": "encounter",
	"seek":   "encounter",
	"hunt":   "encounter",
	"fight":  "encounter",
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Bare number: "2" → choose 2
	if len(words) == 1 {
		if _, err := strconv.Atoi(words[0]); err == nil {
			return types.Intent{Verb: "choose", Object: words[0]}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	return types.Intent{
		Verb:   verb,
		Object: strings.Join(rest, " "),
	}
}

// Action maps a combat verb to its action. ok is false for other verbs.
func Action(verb string) (types.Action, bool) {
	switch verb {
	case "illuminate":
		return types.ActionIlluminate, true
	case "reflect":
		return types.ActionReflect, true
	case "endure":
		return types.ActionEndure, true
	case "embrace":
		return types.ActionEmbrace, true
	}
	return "", false
}

// ChoiceNumber parses a 1-based choice number into a 0-based index.
func ChoiceNumber(object string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(object))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// expandMultiWordVerbs handles "end turn", "give up", "look around" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "end", "pass":
		if words[1] == "turn" {
			return append([]string{"pass"}, words[2:]...)
		}
	case "give":
		if words[1] == "up" {
			return append([]string{"surrender"}, words[2:]...)
		}
	case "look":
		if words[1] == "around" {
			return append([]string{"look"}, words[2:]...)
		}
	case "take":
		if words[1] == "a" && len(words) > 2 && words[2] == "rest" {
			return append([]string{"rest"}, words[3:]...)
		}
	case "go":
		if words[1] == "wandering" || words[1] == "exploring" {
			return append([]string{"encounter"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}
