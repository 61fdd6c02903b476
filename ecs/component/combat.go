package component

import "github.com/milk9111/sentinel/combat"

// CombatComponent holds per-skill cooldowns and the running wind-up.
var CombatComponent = NewComponent[combat.State]()

// ProjectileComponent marks an in-flight projectile entity.
var ProjectileComponent = NewComponent[combat.Projectile]()
