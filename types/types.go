// Package types defines the shared data structures for the ShadowCore engine.
// This package contains only type definitions, with no logic.
package types

import "time"

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
}

// Event is emitted after a state change worth observing.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single engine step.
type Result struct {
	Events []Event
	Output []string
}

// Action is a player combat action.
type Action string

const (
	ActionIlluminate Action = "ILLUMINATE"
	ActionReflect    Action = "REFLECT"
	ActionEndure     Action = "ENDURE"
	ActionEmbrace    Action = "EMBRACE"
)

// Actor identifies who produced a combat log entry.
type Actor string

const (
	ActorPlayer Actor = "PLAYER"
	ActorShadow Actor = "SHADOW"
	ActorSystem Actor = "SYSTEM"
)

// Vitals are the numeric resources shared by the session and the combat
// encounter. They are mutated only through the modifier operations in
// engine/state.
type Vitals struct {
	LightPoints  int `json:"light_points"`
	ShadowPoints int `json:"shadow_points"`
	Health       int `json:"health"`
	MaxHealth    int `json:"max_health"`
	Energy       int `json:"energy"`
	MaxEnergy    int `json:"max_energy"`
}

// PlayerResources is the player's complete resource sheet.
type PlayerResources struct {
	Vitals
	Level      int `json:"level"`
	Experience int `json:"experience"`
}

// ResourceKind names one modifiable resource.
type ResourceKind string

const (
	ResourceLight      ResourceKind = "light"
	ResourceShadow     ResourceKind = "shadow"
	ResourceHealth     ResourceKind = "health"
	ResourceEnergy     ResourceKind = "energy"
	ResourceExperience ResourceKind = "experience"
)

// ResourceChange records one modifier operation: what was asked for and
// what actually happened after clamping.
type ResourceChange struct {
	Kind      ResourceKind
	Requested int
	Applied   int
	Before    int
	After     int
	Reason    string
}

// CombatResources is the two-currency purse tracked by an encounter.
type CombatResources struct {
	LP int `json:"lp"`
	SP int `json:"sp"`
}

// ActionCost is the resource price of a combat action.
type ActionCost struct {
	LP int `yaml:"lp" json:"lp,omitempty"`
	SP int `yaml:"sp" json:"sp,omitempty"`
}

// StatusEffects is the fixed set of modifiers active on one side of an
// encounter.
type StatusEffects struct {
	DamageMultiplier    float64 // outgoing damage scale, default 1.0
	DamageReduction     float64 // incoming damage scale, default 1.0
	HealingBlocked      int     // turns remaining
	LPGenerationBlocked int     // turns remaining
	SkipNextTurn        bool
	ConsecutiveEndures  int
}

// AbilityKind selects how a shadow ability affects the player side.
type AbilityKind string

const (
	AbilityStrike       AbilityKind = "strike"
	AbilityBlockHealing AbilityKind = "block_healing"
	AbilityBlockLight   AbilityKind = "block_light"
	AbilityStun         AbilityKind = "stun"
	AbilityEmpower      AbilityKind = "empower"
	AbilitySap          AbilityKind = "sap"
	AbilityDrain        AbilityKind = "drain"
)

// Ability is one shadow ability with its cooldown bookkeeping.
type Ability struct {
	ID              string
	Name            string
	Kind            AbilityKind
	Power           int     // damage or points moved
	Duration        int     // turns, for block effects
	Multiplier      float64 // for empower / sap
	CooldownTurns   int
	CurrentCooldown int
	Message         string
}

// VictoryReward is granted to the player when a shadow is defeated.
type VictoryReward struct {
	LP int `json:"lp"`
	XP int `json:"xp"`
}

// ShadowDef is the content definition of an enemy archetype.
type ShadowDef struct {
	ID         string
	Name       string
	Type       string
	MaxHP      int
	HPPerLevel int
	Attack     int
	Weight     int // random encounter weight
	Abilities  []Ability
	Insight    string
	Reward     VictoryReward
}

// Shadow is a live enemy manifestation inside one encounter.
type Shadow struct {
	ID                 string
	Name               string
	Type               string
	CurrentHP          int
	MaxHP              int
	Attack             int
	Abilities          []Ability
	TherapeuticInsight string
	VictoryReward      VictoryReward
}

// LogEntry is one append-only combat log record.
type LogEntry struct {
	Turn      int       `json:"turn"`
	Actor     Actor     `json:"actor"`
	Action    string    `json:"action"`
	Effect    string    `json:"effect"`
	Value     int       `json:"value,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// EndReason explains why an encounter ended.
type EndReason string

const (
	EndVictory   EndReason = "victory"
	EndDefeat    EndReason = "defeat"
	EndSurrender EndReason = "surrender"
)

// CombatEndStatus is set the moment an encounter is decided.
type CombatEndStatus struct {
	IsEnded bool
	Victory bool
	Reason  EndReason
}

// CombatSummary is the read-only snapshot handed to history persistence
// when an encounter ends.
type CombatSummary struct {
	EnemyID          string          `json:"enemy_id"`
	EnemyName        string          `json:"enemy_name"`
	Victory          bool            `json:"victory"`
	Reason           EndReason       `json:"reason"`
	TurnsTaken       int             `json:"turns_taken"`
	FinalPlayerHP    int             `json:"final_player_hp"`
	FinalEnemyHP     int             `json:"final_enemy_hp"`
	ResourcesAtStart CombatResources `json:"resources_at_start"`
	ResourcesAtEnd   CombatResources `json:"resources_at_end"`
	ActionsUsed      map[Action]int  `json:"actions_used"`
	CombatLog        []LogEntry      `json:"combat_log"`
	PlayerLevel      int             `json:"player_level"`
	SceneIndex       int             `json:"scene_index"`
	Insight          string          `json:"insight,omitempty"`
	Reward           VictoryReward   `json:"reward"`
}

// SceneType classifies a scene.
type SceneType string

const (
	SceneCombat      SceneType = "combat"
	SceneSocial      SceneType = "social"
	SceneSkill       SceneType = "skill"
	SceneExploration SceneType = "exploration"
	SceneJournal     SceneType = "journal"
)

// Condition is a predicate over the session: player resources, trust or
// flags.
type Condition struct {
	Type  string // "min_level", "min_light", "min_shadow", "min_energy", "min_trust", "flag_set", "not"
	Value int
	Flag  string     // for flag_set
	Inner *Condition // for Not(): the negated inner condition
}

// EventHandler prints a line when a matching event fires and its
// conditions hold.
type EventHandler struct {
	EventType  string
	Conditions []Condition
	Say        string
}

// Choice is one option offered by a scene.
type Choice struct {
	Text     string
	DC       int // 0 means use the scene DC
	Next     string
	Requires []Condition
}

// SceneDef is the content definition of a narrative scene.
type SceneDef struct {
	ID           string
	Type         SceneType
	DC           int
	Text         string
	SuccessText  string
	FailureText  string
	Choices      []Choice
	ShadowType   string
	LPReward     int
	SPPenalty    int
	EnergyCost   int
	EnergyReward int
	XPReward     int
	TrustChange  int
	Next         string
	SourceOrder  int
}

// LevelModifiers are level-derived bonuses supplied to the scene resolver.
type LevelModifiers struct {
	RollBonus       int
	CostReduction   int
	TrustMultiplier float64
}

// ResourceChanges are LP/SP deltas produced by a scene.
type ResourceChanges struct {
	LPChange int
	SPChange int
}

// EnergyChanges are energy deltas produced by a scene.
type EnergyChanges struct {
	EnergyCost   int
	EnergyReward int
}

// ExperienceChanges describe XP awarded by a scene.
type ExperienceChanges struct {
	XPGained int
	Reason   string
}

// TrustModifiers describe the trust change produced by a scene.
type TrustModifiers struct {
	Change     int
	Multiplier float64
}

// SceneOutcome is the transient result of resolving a scene roll.
type SceneOutcome struct {
	SceneID           string
	Success           bool
	Roll              int
	TriggeredCombat   bool
	ShadowType        string
	ResourceChanges   ResourceChanges
	EnergyChanges     EnergyChanges
	ExperienceChanges ExperienceChanges
	TrustModifiers    TrustModifiers
	Text              string
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Start   string // first scene ID
	Intro   string
}

// State is the complete mutable session state outside of combat.
type State struct {
	Player      PlayerResources
	SceneID     string
	SceneIndex  int
	Trust       int
	Flags       map[string]bool
	TurnCount   int
	RNGSeed     int64
	RNGPosition int64
	CommandLog  []string
}
