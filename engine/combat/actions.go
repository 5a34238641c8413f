package combat

import (
	"fmt"
	"strings"

	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/engine/status"
	"github.com/nathoo/shadowcore/types"
)

// apply resolves the effect of a paid-for player action.
func (c *Combat) apply(a types.Action) {
	switch a {
	case types.ActionIlluminate:
		status.BreakStreak(&c.playerFx)
		base := c.rules.IlluminateDamage + c.rules.LevelDamageBonus*(c.level-1)
		dmg := c.damageEnemy(base)
		c.appendLog(types.ActorPlayer, string(a), "damage", dmg,
			fmt.Sprintf("Your light strikes %s for %d.", c.enemy.Name, dmg))

	case types.ActionReflect:
		status.BreakStreak(&c.playerFx)
		var parts []string
		healed := 0
		if status.CanHeal(c.playerFx) {
			healed = state.ModifyHealth(&c.vitals, c.rules.ReflectHeal, "reflect").Applied
			parts = append(parts, fmt.Sprintf("you recover %d health", healed))
		} else {
			parts = append(parts, "healing is blocked")
		}
		if status.CanGenerateLight(c.playerFx) {
			gained := state.ModifyLightPoints(&c.vitals, c.rules.ReflectLight, "reflect").Applied
			parts = append(parts, fmt.Sprintf("gain %d light", gained))
		} else {
			parts = append(parts, "your light is blocked")
		}
		c.appendLog(types.ActorPlayer, string(a), "heal", healed,
			"You turn inward: "+strings.Join(parts, ", ")+".")

	case types.ActionEndure:
		status.Endure(&c.playerFx, c.rules.EndureReduction, c.rules.FortifiedReduction, c.rules.FortifiedThreshold)
		if status.CanGenerateLight(c.playerFx) {
			state.ModifyLightPoints(&c.vitals, c.rules.EndureLight, "endure")
		}
		state.ModifyPlayerEnergy(&c.vitals, c.rules.EndureEnergy, "endure")
		effect, msg := "guard", "You steady yourself and endure."
		if status.Fortified(c.playerFx, c.rules.FortifiedThreshold) {
			effect, msg = "fortified", "You stand fortified; the shadow's blows soften."
		}
		c.appendLog(types.ActorPlayer, string(a), effect, c.playerFx.ConsecutiveEndures, msg)

	case types.ActionEmbrace:
		status.BreakStreak(&c.playerFx)
		dmg := c.damageEnemy(c.rules.EmbraceDamage)
		c.enemyFx.SkipNextTurn = true
		status.Scale(&c.enemyFx, c.rules.EmbraceWeaken)
		c.appendLog(types.ActorPlayer, string(a), "embrace", dmg,
			fmt.Sprintf("You embrace %s. It falters, taking %d.", c.enemy.Name, dmg))
	}
}

// damageEnemy applies base damage through the status formula and returns
// what was dealt.
func (c *Combat) damageEnemy(base int) int {
	dmg := status.IncomingDamage(base, c.playerFx, c.enemyFx)
	dealt := min(dmg, c.enemy.CurrentHP)
	c.enemy.CurrentHP -= dealt
	return dealt
}
