package combat

import (
	"fmt"

	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/engine/status"
	"github.com/nathoo/shadowcore/types"
)

// enemyTurn runs one enemy turn. It is called with the lock held and only
// while the encounter is running.
func (c *Combat) enemyTurn() {
	if status.BeginTurn(&c.enemyFx) {
		c.appendLog(types.ActorShadow, "hesitate", "skipped", 0,
			fmt.Sprintf("%s hesitates.", c.enemy.Name))
		c.tickCooldowns(-1)
	} else {
		idx := c.pickAbility()
		c.useAbility(idx)
		c.tickCooldowns(idx)
	}

	if c.vitals.Health <= 0 {
		c.finish(types.EndDefeat)
		return
	}

	c.turn++
	c.playerTurn = true
	if status.BeginTurn(&c.playerFx) {
		// A stun costs the player this turn's light, not the turn itself.
		status.BlockLight(&c.playerFx, 1)
		c.appendLog(types.ActorSystem, "dazed", "light_blocked", 1, "You are lost in the fog; your light will not answer this turn.")
	}
}

// pickAbility returns the index of the first ability off cooldown, or -1
// for the basic attack.
func (c *Combat) pickAbility() int {
	for i, ab := range c.enemy.Abilities {
		if ab.CurrentCooldown == 0 {
			return i
		}
	}
	return -1
}

// tickCooldowns lowers every cooldown by one, then puts the ability just
// used (if any) on its full cooldown.
func (c *Combat) tickCooldowns(used int) {
	for i := range c.enemy.Abilities {
		if c.enemy.Abilities[i].CurrentCooldown > 0 {
			c.enemy.Abilities[i].CurrentCooldown--
		}
	}
	if used >= 0 {
		ab := &c.enemy.Abilities[used]
		ab.CurrentCooldown = max(ab.CooldownTurns, 0)
	}
}

func (c *Combat) useAbility(idx int) {
	if idx < 0 {
		dmg := c.damagePlayer(c.enemy.Attack)
		c.appendLog(types.ActorShadow, "attack", "damage", dmg,
			fmt.Sprintf("%s lashes out for %d.", c.enemy.Name, dmg))
		return
	}

	ab := c.enemy.Abilities[idx]
	dmg := 0
	value := 0
	switch ab.Kind {
	case types.AbilityStrike:
		dmg = c.damagePlayer(ab.Power)
		value = dmg
	case types.AbilityBlockHealing:
		dmg = c.damagePlayer(ab.Power)
		status.BlockHealing(&c.playerFx, ab.Duration)
		value = ab.Duration
	case types.AbilityBlockLight:
		dmg = c.damagePlayer(ab.Power)
		status.BlockLight(&c.playerFx, ab.Duration)
		value = ab.Duration
	case types.AbilityStun:
		dmg = c.damagePlayer(ab.Power)
		c.playerFx.SkipNextTurn = true
		value = dmg
	case types.AbilityEmpower:
		status.Scale(&c.enemyFx, ab.Multiplier)
		dmg = c.damagePlayer(ab.Power)
		value = dmg
	case types.AbilitySap:
		status.Scale(&c.playerFx, ab.Multiplier)
		dmg = c.damagePlayer(ab.Power)
		value = dmg
	case types.AbilityDrain:
		drained := -state.ModifyLightPoints(&c.vitals, -ab.Power, ab.ID).Applied
		state.ModifyShadowPoints(&c.vitals, drained, ab.ID)
		value = drained
	default:
		dmg = c.damagePlayer(c.enemy.Attack)
		value = dmg
	}

	msg := ab.Message
	if msg == "" {
		msg = fmt.Sprintf("%s uses %s.", c.enemy.Name, abilityName(ab))
	}
	if dmg > 0 {
		msg = fmt.Sprintf("%s (%d damage)", msg, dmg)
	}
	c.appendLog(types.ActorShadow, ab.ID, string(ab.Kind), value, msg)
}

// damagePlayer applies base damage to the player through the status
// formula and returns what was dealt.
func (c *Combat) damagePlayer(base int) int {
	dmg := status.IncomingDamage(base, c.enemyFx, c.playerFx)
	return -state.ModifyHealth(&c.vitals, -dmg, c.enemy.ID).Applied
}

func abilityName(ab types.Ability) string {
	if ab.Name != "" {
		return ab.Name
	}
	return ab.ID
}
