// Package combat is the encounter state machine: turn sequencing, action
// legality, damage and healing, victory and defeat detection, and the
// delayed enemy turn.
//
// All state changes happen under one mutex, so player calls and the enemy
// turn callback never interleave. The enemy turn carries a token that is
// checked before anything is applied; ending or clearing an encounter
// invalidates it.
package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/engine/status"
	"github.com/nathoo/shadowcore/types"
)

var (
	// ErrCombatActive is returned by Start while an encounter is running or
	// its end has not been cleared yet.
	ErrCombatActive = errors.New("combat already active")
	// ErrNoCombat is returned when an operation needs an encounter.
	ErrNoCombat = errors.New("no active combat")
)

// Combat owns at most one encounter at a time.
type Combat struct {
	mu       sync.Mutex
	rules    Rules
	clock    Clock
	logger   *slog.Logger
	observer func()

	active     bool
	enemy      *types.Shadow
	vitals     types.Vitals
	level      int
	sceneIndex int
	turn       int
	playerTurn bool
	playerFx   types.StatusEffects
	enemyFx    types.StatusEffects
	log        []types.LogEntry
	preferred  map[types.Action]int
	end        types.CombatEndStatus
	startRes   types.CombatResources

	token   uint64
	pending Timer
	idle    chan struct{} // closed when no enemy turn is pending
}

// Option configures a Combat.
type Option func(*Combat)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(cb *Combat) { cb.clock = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(cb *Combat) { cb.logger = l }
}

// New creates an idle Combat.
func New(rules Rules, opts ...Option) *Combat {
	c := &Combat{
		rules:  rules,
		clock:  RealClock(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetObserver registers f to be called after each enemy turn that ran on
// the scheduler. f is called without the lock held.
func (c *Combat) SetObserver(f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = f
}

// Start begins an encounter against enemy with a copy of the player's
// vitals. The player acts first on turn 1 with fresh status effects.
func (c *Combat) Start(enemy types.Shadow, vitals types.Vitals, level, sceneIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return ErrCombatActive
	}
	if enemy.MaxHP <= 0 {
		return fmt.Errorf("start combat: %s has no hit points", enemy.ID)
	}
	if vitals.Health <= 0 {
		return errors.New("start combat: player has no health")
	}
	state.Check(vitals)

	enemy.Abilities = slices.Clone(enemy.Abilities)
	if enemy.CurrentHP <= 0 || enemy.CurrentHP > enemy.MaxHP {
		enemy.CurrentHP = enemy.MaxHP
	}

	c.active = true
	c.enemy = &enemy
	c.vitals = vitals
	c.level = max(level, 1)
	c.sceneIndex = sceneIndex
	c.turn = 1
	c.playerTurn = true
	c.playerFx = status.New()
	c.enemyFx = status.New()
	c.log = nil
	c.preferred = map[types.Action]int{}
	c.end = types.CombatEndStatus{}
	c.startRes = types.CombatResources{LP: vitals.LightPoints, SP: vitals.ShadowPoints}

	c.appendLog(types.ActorSystem, "manifest", "start", 0,
		fmt.Sprintf("%s manifests before you.", enemy.Name))
	c.logger.Debug("combat started", "enemy", enemy.ID, "hp", enemy.CurrentHP, "level", c.level)
	return nil
}

// IsActive reports whether an encounter exists (running or ended but not
// yet cleared).
func (c *Combat) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// CanUseAction reports whether a is legal right now.
func (c *Combat) CanUseAction(a types.Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canUse(a)
}

// GetActionCost returns the static cost of a. Unknown actions cost nothing.
func (c *Combat) GetActionCost(a types.Action) types.ActionCost {
	return c.rules.Costs[a]
}

func (c *Combat) canUse(a types.Action) bool {
	if !c.awaitingPlayer() {
		return false
	}
	cost, ok := c.rules.Costs[a]
	if !ok {
		return false
	}
	return cost.LP <= c.vitals.LightPoints && cost.SP <= c.vitals.ShadowPoints
}

func (c *Combat) awaitingPlayer() bool {
	return c.active && !c.end.IsEnded && c.playerTurn && c.pending == nil
}

// ExecuteAction performs a player action. It returns false and changes
// nothing when the action is not legal.
func (c *Combat) ExecuteAction(a types.Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.canUse(a) {
		c.logger.Debug("action rejected", "action", a, "player_turn", c.playerTurn, "active", c.active)
		return false
	}

	cost := c.rules.Costs[a]
	state.ModifyLightPoints(&c.vitals, -cost.LP, string(a))
	state.ModifyShadowPoints(&c.vitals, -cost.SP, string(a))

	c.apply(a)
	c.preferred[a]++
	c.checkInvariants()

	if c.enemy.CurrentHP <= 0 {
		c.finish(types.EndVictory)
		return true
	}
	c.handOff()
	return true
}

// EndTurn passes the player's turn without acting.
func (c *Combat) EndTurn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.awaitingPlayer() {
		return false
	}
	status.BreakStreak(&c.playerFx)
	c.appendLog(types.ActorPlayer, "pass", "none", 0, "You let the moment pass.")
	c.handOff()
	return true
}

// Surrender ends the encounter as a defeat whoever's turn it is. It returns
// false if there is nothing to surrender.
func (c *Combat) Surrender() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active || c.end.IsEnded {
		return false
	}
	c.appendLog(types.ActorSystem, "surrender", "end", 0, "You step back from the shadow.")
	c.finish(types.EndSurrender)
	return true
}

// ClearCombatEnd tears down an ended encounter so a new one can start.
// It does nothing while an encounter is still running.
func (c *Combat) ClearCombatEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.end.IsEnded {
		return
	}
	c.cancelPending()
	c.active = false
	c.enemy = nil
	c.end = types.CombatEndStatus{}
}

// EndStatus returns the current end status.
func (c *Combat) EndStatus() types.CombatEndStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.end
}

// EnemyTurnPending reports whether an enemy turn is scheduled.
func (c *Combat) EnemyTurnPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// WaitEnemyTurn blocks until no enemy turn is pending or ctx is done.
func (c *Combat) WaitEnemyTurn(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.pending == nil {
			c.mu.Unlock()
			return nil
		}
		idle := c.idle
		c.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// View is a read-only copy of the encounter for display.
type View struct {
	IsActive         bool
	Enemy            *types.Shadow
	Resources        types.CombatResources
	Vitals           types.Vitals
	Turn             int
	IsPlayerTurn     bool
	PlayerEffects    types.StatusEffects
	EnemyEffects     types.StatusEffects
	Fortified        bool
	Log              []types.LogEntry
	PreferredActions map[types.Action]int
	End              types.CombatEndStatus
	EnemyTurnPending bool
}

// View returns a deep copy of the encounter.
func (c *Combat) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		IsActive:         c.active,
		Resources:        types.CombatResources{LP: c.vitals.LightPoints, SP: c.vitals.ShadowPoints},
		Vitals:           c.vitals,
		Turn:             c.turn,
		IsPlayerTurn:     c.playerTurn,
		PlayerEffects:    c.playerFx,
		EnemyEffects:     c.enemyFx,
		Fortified:        status.Fortified(c.playerFx, c.rules.FortifiedThreshold),
		Log:              slices.Clone(c.log),
		PreferredActions: maps.Clone(c.preferred),
		End:              c.end,
		EnemyTurnPending: c.pending != nil,
	}
	if c.enemy != nil {
		e := *c.enemy
		e.Abilities = slices.Clone(c.enemy.Abilities)
		v.Enemy = &e
	}
	return v
}

// Summary returns the persistence snapshot of an ended encounter.
func (c *Combat) Summary() (types.CombatSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.end.IsEnded || c.enemy == nil {
		return types.CombatSummary{}, false
	}
	s := types.CombatSummary{
		EnemyID:          c.enemy.ID,
		EnemyName:        c.enemy.Name,
		Victory:          c.end.Victory,
		Reason:           c.end.Reason,
		TurnsTaken:       c.turn,
		FinalPlayerHP:    c.vitals.Health,
		FinalEnemyHP:     c.enemy.CurrentHP,
		ResourcesAtStart: c.startRes,
		ResourcesAtEnd:   types.CombatResources{LP: c.vitals.LightPoints, SP: c.vitals.ShadowPoints},
		ActionsUsed:      maps.Clone(c.preferred),
		CombatLog:        tail(c.log, c.rules.LogTail),
		PlayerLevel:      c.level,
		SceneIndex:       c.sceneIndex,
	}
	if c.end.Victory {
		s.Insight = c.enemy.TherapeuticInsight
		s.Reward = c.enemy.VictoryReward
	}
	return s, true
}

// handOff gives control to the enemy.
func (c *Combat) handOff() {
	c.playerTurn = false
	c.schedule()
}

func (c *Combat) schedule() {
	c.token++
	tok := c.token
	if c.pending == nil {
		c.idle = make(chan struct{})
	}
	c.pending = c.clock.AfterFunc(c.rules.EnemyDelay, func() { c.runEnemyTurn(tok) })
}

// cancelPending stops a scheduled enemy turn and invalidates its token.
func (c *Combat) cancelPending() {
	c.token++
	if c.pending == nil {
		return
	}
	c.pending.Stop()
	c.pending = nil
	close(c.idle)
}

func (c *Combat) runEnemyTurn(tok uint64) {
	c.mu.Lock()
	if tok != c.token || c.pending == nil || !c.active || c.end.IsEnded {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	close(c.idle)

	c.enemyTurn()
	c.checkInvariants()

	obs := c.observer
	c.mu.Unlock()

	if obs != nil {
		obs()
	}
}

// finish marks the encounter decided. Victory and defeat add no log entry
// so the last entry is the action that decided it.
func (c *Combat) finish(reason types.EndReason) {
	c.cancelPending()
	c.playerTurn = false
	c.end = types.CombatEndStatus{
		IsEnded: true,
		Victory: reason == types.EndVictory,
		Reason:  reason,
	}
	c.logger.Info("combat ended",
		"enemy", c.enemy.ID,
		"reason", reason,
		"turns", c.turn,
		"player_hp", c.vitals.Health,
		"enemy_hp", c.enemy.CurrentHP,
	)
}

func (c *Combat) checkInvariants() {
	state.Check(c.vitals)
	if c.enemy != nil && (c.enemy.CurrentHP < 0 || c.enemy.CurrentHP > c.enemy.MaxHP) {
		panic("combat: enemy HP out of range")
	}
	if !status.Valid(c.playerFx) || !status.Valid(c.enemyFx) {
		panic("combat: status effects out of range")
	}
}
