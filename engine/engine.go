// Package engine provides the Step() orchestrator that wires together
// parsing, scene resolution, combat, effects and events into a single turn.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/shadowcore/engine/archetype"
	"github.com/nathoo/shadowcore/engine/combat"
	"github.com/nathoo/shadowcore/engine/dice"
	"github.com/nathoo/shadowcore/engine/effects"
	"github.com/nathoo/shadowcore/engine/events"
	"github.com/nathoo/shadowcore/engine/history"
	"github.com/nathoo/shadowcore/engine/parser"
	"github.com/nathoo/shadowcore/engine/resolve"
	"github.com/nathoo/shadowcore/engine/rules"
	"github.com/nathoo/shadowcore/engine/save"
	"github.com/nathoo/shadowcore/engine/scene"
	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/types"
)

// ErrInCombat is returned by operations that are refused during an
// encounter.
var ErrInCombat = errors.New("not possible during combat")

// FlagJourneyComplete is set once the last scene has been resolved.
const FlagJourneyComplete = "journey_complete"

const combatHint = "(illuminate, reflect, endure, embrace, pass, surrender)"

// Options configures a new Engine. Zero values select defaults.
type Options struct {
	Rules    combat.Rules
	Seed     int64
	Clock    combat.Clock
	Dice     dice.Source // scene rolls; defaults to the session RNG
	Recorder *history.Recorder
	Logger   *slog.Logger
}

// Engine holds the game definitions and mutable session state.
type Engine struct {
	Defs     *state.Defs
	State    *types.State
	RNG      *RNG
	Combat   *combat.Combat
	Registry *archetype.Registry
	Recorder *history.Recorder

	dice        dice.Source
	logger      *slog.Logger
	logSeen     int    // combat log entries already reported
	combatScene string // scene that triggered the current encounter, if any
	combatNext  string // where that scene leads after victory
}

// New creates a new engine from definitions. Built-in archetypes are
// registered first so content can replace them by ID.
func New(defs *state.Defs, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rulesCfg := opts.Rules
	if rulesCfg.Costs == nil {
		rulesCfg = combat.DefaultRules()
	}

	reg := archetype.NewRegistry()
	for _, def := range archetype.Builtin() {
		reg.RegisterDef(def)
	}
	for _, def := range defs.Shadows {
		reg.RegisterDef(def)
	}

	copts := []combat.Option{combat.WithLogger(logger)}
	if opts.Clock != nil {
		copts = append(copts, combat.WithClock(opts.Clock))
	}

	s := state.NewState(defs)
	s.RNGSeed = opts.Seed

	e := &Engine{
		Defs:     defs,
		State:    s,
		RNG:      NewRNG(opts.Seed),
		Combat:   combat.New(rulesCfg, copts...),
		Registry: reg,
		Recorder: opts.Recorder,
		dice:     opts.Dice,
		logger:   logger,
	}
	return e
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
}

// InCombat reports whether an encounter is running or waiting to be
// applied.
func (e *Engine) InCombat() bool {
	return e.Combat.IsActive()
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	// 0. Apply anything the enemy did since the last step.
	result := e.sync()

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Log the command.
	e.State.CommandLog = append(e.State.CommandLog, input)

	// 3. Empty input.
	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// 4. Route to combat or exploration.
	var r types.Result
	if e.InCombat() {
		r = e.stepCombat(intent)
	} else {
		r = e.stepExplore(intent)
	}
	result.Events = append(result.Events, r.Events...)
	result.Output = append(result.Output, r.Output...)

	// 5. Dispatch events (single pass).
	result.Output = append(result.Output, events.Dispatch(result.Events, e.State, e.Defs.Handlers)...)

	// 6. Track RNG position for save/load.
	e.State.RNGPosition = e.RNG.Position()

	// 7. Increment turn count.
	e.State.TurnCount++

	return result
}

// Sync reports combat log entries that have not been shown yet and, once
// an encounter has ended, writes it back to the session, records it and
// clears it. Front-ends call it after an enemy turn; it must run on the
// goroutine that calls Step.
func (e *Engine) Sync() types.Result {
	result := e.sync()
	result.Output = append(result.Output, events.Dispatch(result.Events, e.State, e.Defs.Handlers)...)
	return result
}

func (e *Engine) sync() types.Result {
	var result types.Result
	v := e.Combat.View()
	if !v.IsActive {
		return result
	}

	for _, entry := range v.Log[min(e.logSeen, len(v.Log)):] {
		result.Output = append(result.Output, entry.Message)
	}
	e.logSeen = len(v.Log)

	if !v.End.IsEnded {
		return result
	}

	sum, ok := e.Combat.Summary()
	if !ok {
		return result
	}
	evs, out := effects.ApplyCombat(e.State, v.Vitals, sum)
	result.Events = append(result.Events, evs...)
	result.Output = append(result.Output, out...)

	if e.Recorder != nil {
		e.Recorder.Record(sum)
	}
	e.Combat.ClearCombatEnd()
	e.logSeen = 0

	if sum.Victory && e.combatScene != "" {
		r := e.advance(e.combatNext)
		result.Events = append(result.Events, r.Events...)
		result.Output = append(result.Output, r.Output...)
	}
	e.combatScene, e.combatNext = "", ""
	return result
}

// Save serializes the session. It is refused during combat.
func (e *Engine) Save() ([]byte, error) {
	if e.InCombat() {
		return nil, ErrInCombat
	}
	e.State.RNGPosition = e.RNG.Position()
	return save.Save(e.State, e.Defs)
}

// Load replaces the session with saved data and restores the RNG to the
// saved position. It is refused during combat.
func (e *Engine) Load(data []byte) (*save.SaveData, error) {
	if e.InCombat() {
		return nil, ErrInCombat
	}
	sd, err := save.Load(data)
	if err != nil {
		return nil, fmt.Errorf("load save: %w", err)
	}
	if err := save.Check(sd, e.Defs); err != nil {
		return nil, err
	}
	save.ApplySave(e.State, sd)
	e.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	e.logger.Info("session loaded", "scene", sd.SceneID, "turn", sd.Turn)
	return sd, nil
}

// stepCombat handles a command while an encounter is active.
func (e *Engine) stepCombat(intent types.Intent) types.Result {
	var result types.Result

	switch intent.Verb {
	case "status":
		result.Output = e.combatStatus()
		return result
	case "look":
		result.Output = append(result.Output, e.combatStatus()[0], combatHint)
		return result
	case "surrender":
		if !e.Combat.Surrender() {
			result.Output = append(result.Output, "There is nothing to surrender to.")
			return result
		}
		return e.sync()
	}

	v := e.Combat.View()
	if v.EnemyTurnPending || !v.IsPlayerTurn {
		result.Output = append(result.Output, "The shadow is still moving. Wait for your turn.")
		return result
	}

	if intent.Verb == "pass" {
		e.Combat.EndTurn()
		return e.sync()
	}

	action, ok := parser.Action(intent.Verb)
	if !ok {
		result.Output = append(result.Output, "You are facing "+v.Enemy.Name+". "+combatHint)
		return result
	}
	if !e.Combat.CanUseAction(action) {
		cost := e.Combat.GetActionCost(action)
		result.Output = append(result.Output, fmt.Sprintf(
			"You cannot %s right now (costs %d light, %d shadow).",
			strings.ToLower(string(action)), cost.LP, cost.SP))
		return result
	}
	e.Combat.ExecuteAction(action)
	return e.sync()
}

// stepExplore handles a command outside combat.
func (e *Engine) stepExplore(intent types.Intent) types.Result {
	switch intent.Verb {
	case "look":
		return types.Result{Output: e.describeScene()}
	case "status":
		return types.Result{Output: e.status()}
	case "choose":
		return e.choose(intent.Object)
	case "rest":
		evs, out := effects.Rest(e.State)
		return types.Result{Events: evs, Output: out}
	case "encounter":
		return e.encounter()
	case "illuminate", "reflect", "endure", "embrace", "pass", "surrender":
		return types.Result{Output: []string{"There is nothing here to face."}}
	}
	return types.Result{Output: []string{"I don't understand that."}}
}

// choose attempts the current scene with the given 1-based choice.
func (e *Engine) choose(object string) types.Result {
	var result types.Result
	if state.GetFlag(e.State, FlagJourneyComplete) {
		result.Output = append(result.Output, "Your journey is complete. Use /load to revisit a save or /quit to exit.")
		return result
	}
	sc, ok := e.Defs.Scenes[e.State.SceneID]
	if !ok {
		result.Output = append(result.Output, "You are somewhere unknown.")
		return result
	}

	idx := -1
	if len(sc.Choices) > 0 {
		if strings.TrimSpace(object) == "" {
			result.Output = append(result.Output, "Choose which option?")
			result.Output = append(result.Output, e.choiceLines(sc)...)
			return result
		}
		n, err := resolve.Choice(sc.Choices, object)
		if err != nil {
			result.Output = append(result.Output, sentence(err.Error()))
			return result
		}
		if !rules.EvalAllConditions(sc.Choices[n].Requires, e.State) {
			result.Output = append(result.Output, "That path is closed to you for now.")
			return result
		}
		idx = n
	}

	mods := state.LevelModifiers(e.State.Player.Level)
	if cost := max(sc.EnergyCost-mods.CostReduction, 0); e.State.Player.Energy < cost {
		result.Output = append(result.Output, fmt.Sprintf("You are too tired (needs %d energy). Try resting.", cost))
		return result
	}

	roll := dice.RollWithBonus(e.source(), scene.EffectiveDC(sc, idx), mods.RollBonus)
	out, err := scene.Resolve(e.Registry, sc, roll.Success, roll.Roll, mods)
	if err != nil {
		e.logger.Error("resolve scene", "scene", sc.ID, "err", err)
		result.Output = append(result.Output, "The scene wavers and will not settle.")
		return result
	}

	if idx >= 0 {
		result.Output = append(result.Output, "> "+sc.Choices[idx].Text)
	}
	result.Output = append(result.Output, rollLine(roll))

	evs, lines, _ := effects.ApplyScene(e.State, out)
	result.Events = append(result.Events, evs...)
	result.Output = append(result.Output, lines...)

	next := e.nextScene(sc, idx)
	if out.TriggeredCombat {
		enemy, err := e.Registry.New(out.ShadowType, e.State.Player.Level)
		if err != nil {
			e.logger.Error("build shadow", "shadow", out.ShadowType, "err", err)
			result.Output = append(result.Output, "The shadow fails to take form.")
			return result
		}
		r := e.startCombat(enemy)
		if e.InCombat() {
			e.combatScene, e.combatNext = sc.ID, next
		}
		result.Events = append(result.Events, r.Events...)
		result.Output = append(result.Output, r.Output...)
		return result
	}

	r := e.advance(next)
	result.Events = append(result.Events, r.Events...)
	result.Output = append(result.Output, r.Output...)
	return result
}

// encounter starts a fight with a randomly chosen shadow.
func (e *Engine) encounter() types.Result {
	enemy, err := e.Registry.Random(e.RNG, e.State.Player.Level)
	if err != nil {
		e.logger.Warn("random encounter", "err", err)
		return types.Result{Output: []string{"Nothing stirs in the dark."}}
	}
	return e.startCombat(enemy)
}

func (e *Engine) startCombat(enemy types.Shadow) types.Result {
	p := e.State.Player
	if err := e.Combat.Start(enemy, p.Vitals, p.Level, e.State.SceneIndex); err != nil {
		e.logger.Warn("start combat", "enemy", enemy.ID, "err", err)
		return types.Result{Output: []string{"You are in no state to face a shadow. Try resting."}}
	}
	e.logSeen = 0
	result := e.sync()
	result.Output = append(result.Output, combatHint)
	result.Events = append(result.Events, types.Event{
		Type: "combat_started",
		Data: map[string]any{"enemy": enemy.ID, "hp": enemy.MaxHP},
	})
	return result
}

// nextScene returns where a resolved scene leads: the choice's target, the
// scene's target, or the following scene in journey order.
func (e *Engine) nextScene(sc types.SceneDef, idx int) string {
	if idx >= 0 && sc.Choices[idx].Next != "" {
		return sc.Choices[idx].Next
	}
	if sc.Next != "" {
		return sc.Next
	}
	if i := e.Defs.SceneIndex(sc.ID); i >= 0 && i+1 < len(e.Defs.Order) {
		return e.Defs.Order[i+1]
	}
	return ""
}

// advance moves to the next scene. An empty ID completes the journey.
func (e *Engine) advance(next string) types.Result {
	if _, ok := e.Defs.Scenes[next]; !ok {
		e.State.Flags[FlagJourneyComplete] = true
		return types.Result{
			Events: []types.Event{{Type: "journey_complete", Data: map[string]any{"trust": e.State.Trust}}},
			Output: []string{"", "Your journey is complete."},
		}
	}
	e.State.SceneID = next
	e.State.SceneIndex = max(e.Defs.SceneIndex(next), 0)
	return types.Result{
		Events: []types.Event{{Type: "scene_entered", Data: map[string]any{"scene": next}}},
		Output: append([]string{""}, e.describeScene()...),
	}
}

func (e *Engine) describeScene() []string {
	if state.GetFlag(e.State, FlagJourneyComplete) {
		return []string{"Your journey is complete. The lantern burns steady."}
	}
	sc, ok := e.Defs.Scenes[e.State.SceneID]
	if !ok {
		return []string{"You are somewhere unknown."}
	}
	out := []string{sc.Text}
	if len(sc.Choices) == 0 {
		return append(out, fmt.Sprintf("(choose to face it: DC %d)", scene.EffectiveDC(sc, -1)))
	}
	return append(out, e.choiceLines(sc)...)
}

func (e *Engine) choiceLines(sc types.SceneDef) []string {
	var out []string
	for i, ch := range sc.Choices {
		line := fmt.Sprintf("  %d. %s (DC %d)", i+1, ch.Text, scene.EffectiveDC(sc, i))
		if !rules.EvalAllConditions(ch.Requires, e.State) {
			line += " [locked]"
		}
		out = append(out, line)
	}
	return out
}

func (e *Engine) status() []string {
	p := e.State.Player
	return []string{
		fmt.Sprintf("Level %d (%d XP)  Light %d  Shadow %d", p.Level, p.Experience, p.LightPoints, p.ShadowPoints),
		fmt.Sprintf("Health %d/%d  Energy %d/%d  Trust %d", p.Health, p.MaxHealth, p.Energy, p.MaxEnergy, e.State.Trust),
	}
}

func (e *Engine) combatStatus() []string {
	v := e.Combat.View()
	if v.Enemy == nil {
		return e.status()
	}
	turn := "your turn"
	if !v.IsPlayerTurn {
		turn = "shadow's turn"
	}
	out := []string{
		fmt.Sprintf("%s: %d/%d HP. Turn %d, %s.", v.Enemy.Name, v.Enemy.CurrentHP, v.Enemy.MaxHP, v.Turn, turn),
		fmt.Sprintf("Light %d  Shadow %d  Health %d/%d  Energy %d/%d",
			v.Vitals.LightPoints, v.Vitals.ShadowPoints, v.Vitals.Health, v.Vitals.MaxHealth, v.Vitals.Energy, v.Vitals.MaxEnergy),
	}
	if v.Fortified {
		out = append(out, "You are fortified.")
	}
	return out
}

func (e *Engine) source() dice.Source {
	if e.dice != nil {
		return e.dice
	}
	return e.RNG
}

func rollLine(r dice.Result) string {
	verdict := "failure"
	if r.Success {
		verdict = "success"
	}
	if r.Bonus != 0 {
		return fmt.Sprintf("You roll %d (+%d) = %d against DC %d: %s.", r.Roll, r.Bonus, r.Total, r.DC, verdict)
	}
	return fmt.Sprintf("You roll %d against DC %d: %s.", r.Roll, r.DC, verdict)
}

// sentence capitalizes msg and ends it with a full stop unless it already
// closes with punctuation.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if !strings.ContainsAny(msg[len(msg)-1:], ".?!)") {
		msg += "."
	}
	return msg
}
