package combat

import (
	"errors"
	"fmt"
	"time"

	"github.com/nathoo/shadowcore/engine/status"
	"github.com/nathoo/shadowcore/types"
)

// Rules are the tunable balance numbers for an encounter. The composition
// rules are fixed in code; only magnitudes live here.
type Rules struct {
	Costs map[types.Action]types.ActionCost `yaml:"costs"`

	IlluminateDamage int `yaml:"illuminate_damage"`
	LevelDamageBonus int `yaml:"level_damage_bonus"`

	ReflectHeal  int `yaml:"reflect_heal"`
	ReflectLight int `yaml:"reflect_light"`

	EndureReduction    float64 `yaml:"endure_reduction"`
	FortifiedReduction float64 `yaml:"fortified_reduction"`
	FortifiedThreshold int     `yaml:"fortified_threshold"`
	EndureLight        int     `yaml:"endure_light"`
	EndureEnergy       int     `yaml:"endure_energy"`

	EmbraceDamage int     `yaml:"embrace_damage"`
	EmbraceWeaken float64 `yaml:"embrace_weaken"`

	EnemyDelay time.Duration `yaml:"enemy_delay"`
	LogTail    int           `yaml:"log_tail"`
}

// DefaultRules returns the standard balance.
func DefaultRules() Rules {
	return Rules{
		Costs: map[types.Action]types.ActionCost{
			types.ActionIlluminate: {LP: 2},
			types.ActionReflect:    {SP: 1},
			types.ActionEndure:     {},
			types.ActionEmbrace:    {SP: 3},
		},
		IlluminateDamage:   4,
		LevelDamageBonus:   1,
		ReflectHeal:        4,
		ReflectLight:       2,
		EndureReduction:    0.5,
		FortifiedReduction: 0.25,
		FortifiedThreshold: 3,
		EndureLight:        1,
		EndureEnergy:       2,
		EmbraceDamage:      3,
		EmbraceWeaken:      0.8,
		EnemyDelay:         1200 * time.Millisecond,
		LogTail:            50,
	}
}

// Validate reports every out-of-range value.
func (r Rules) Validate() error {
	var errs []error
	for _, a := range Actions() {
		c, ok := r.Costs[a]
		if !ok {
			errs = append(errs, fmt.Errorf("costs: missing %s", a))
			continue
		}
		if c.LP < 0 || c.SP < 0 {
			errs = append(errs, fmt.Errorf("costs: %s has a negative cost", a))
		}
	}
	for name, v := range map[string]int{
		"illuminate_damage":  r.IlluminateDamage,
		"level_damage_bonus": r.LevelDamageBonus,
		"reflect_heal":       r.ReflectHeal,
		"reflect_light":      r.ReflectLight,
		"endure_light":       r.EndureLight,
		"endure_energy":      r.EndureEnergy,
		"embrace_damage":     r.EmbraceDamage,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	for name, v := range map[string]float64{
		"endure_reduction":    r.EndureReduction,
		"fortified_reduction": r.FortifiedReduction,
		"embrace_weaken":      r.EmbraceWeaken,
	} {
		if v < status.MinMultiplier || v > status.MaxMultiplier {
			errs = append(errs, fmt.Errorf("%s must be within [%.1f, %.1f]", name, status.MinMultiplier, status.MaxMultiplier))
		}
	}
	if r.FortifiedThreshold < 1 {
		errs = append(errs, errors.New("fortified_threshold must be at least 1"))
	}
	if r.EnemyDelay < 0 {
		errs = append(errs, errors.New("enemy_delay must not be negative"))
	}
	if r.LogTail < 1 {
		errs = append(errs, errors.New("log_tail must be at least 1"))
	}
	return errors.Join(errs...)
}

// Actions returns the player actions in menu order.
func Actions() []types.Action {
	return []types.Action{
		types.ActionIlluminate,
		types.ActionReflect,
		types.ActionEndure,
		types.ActionEmbrace,
	}
}
