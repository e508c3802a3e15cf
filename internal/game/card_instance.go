package game

import (
	"github.com/pokefree/tcg-server-go/internal/cards"
)

// CardInstance is a card in play. InstanceID is the immutable identity; the
// template it points at (CardID) changes on evolution while the instance
// survives. All mutators return a copy.
//
// Damage counters are strictly derived (MaxHP - CurrentHP) and never stored.
type CardInstance struct {
	InstanceID     string
	CardID         string
	Position       Position
	CurrentHP      int
	MaxHP          int
	AttachedEnergy []string // card ids
	StatusEffects  []cards.StatusCondition
	EvolutionChain []string // prior card ids, oldest last

	// PoisonDamageAmount is only meaningful while POISONED is present.
	// Legal values are 10 and 20.
	PoisonDamageAmount int

	// EvolvedAtTurn is the turn this instance last evolved, 0 if never.
	EvolvedAtTurn int

	// ParalysisClearsAtTurn is the turn paralysis wears off, 0 if not set.
	ParalysisClearsAtTurn int
}

// DamageCounters returns the damage currently marked on the Pokémon.
func (c CardInstance) DamageCounters() int {
	return c.MaxHP - c.CurrentHP
}

// IsKnockedOut reports whether the Pokémon has no HP left.
func (c CardInstance) IsKnockedOut() bool {
	return c.CurrentHP <= 0
}

// HasStatus reports whether the given special condition is present.
func (c CardInstance) HasStatus(status cards.StatusCondition) bool {
	for _, s := range c.StatusEffects {
		if s == status {
			return true
		}
	}
	return false
}

// clone deep-copies the slices so mutators never alias the receiver.
func (c CardInstance) clone() CardInstance {
	out := c
	out.AttachedEnergy = append([]string(nil), c.AttachedEnergy...)
	out.StatusEffects = append([]cards.StatusCondition(nil), c.StatusEffects...)
	out.EvolutionChain = append([]string(nil), c.EvolutionChain...)
	return out
}

// WithPosition returns a copy at the given position.
func (c CardInstance) WithPosition(pos Position) CardInstance {
	out := c.clone()
	out.Position = pos
	return out
}

// WithStatus returns a copy with the condition added. Adding a condition that
// is already present is a no-op (set semantics).
func (c CardInstance) WithStatus(status cards.StatusCondition) CardInstance {
	if c.HasStatus(status) {
		return c.clone()
	}
	out := c.clone()
	out.StatusEffects = append(out.StatusEffects, status)
	return out
}

// WithoutStatus returns a copy with the condition removed, along with its
// bookkeeping fields.
func (c CardInstance) WithoutStatus(status cards.StatusCondition) CardInstance {
	out := c.clone()
	filtered := out.StatusEffects[:0]
	for _, s := range out.StatusEffects {
		if s != status {
			filtered = append(filtered, s)
		}
	}
	out.StatusEffects = filtered
	switch status {
	case cards.StatusPoisoned:
		out.PoisonDamageAmount = 0
	case cards.StatusParalyzed:
		out.ParalysisClearsAtTurn = 0
	}
	return out
}

// WithStatusesCleared returns a copy with every special condition and its
// bookkeeping removed.
func (c CardInstance) WithStatusesCleared() CardInstance {
	out := c.clone()
	out.StatusEffects = nil
	out.PoisonDamageAmount = 0
	out.ParalysisClearsAtTurn = 0
	return out
}

// WithDamage returns a copy with amount damage applied, clamped at 0 HP.
func (c CardInstance) WithDamage(amount int) CardInstance {
	out := c.clone()
	out.CurrentHP -= amount
	if out.CurrentHP < 0 {
		out.CurrentHP = 0
	}
	return out
}

// WithHealing returns a copy with amount damage removed, clamped at MaxHP.
func (c CardInstance) WithHealing(amount int) CardInstance {
	out := c.clone()
	out.CurrentHP += amount
	if out.CurrentHP > out.MaxHP {
		out.CurrentHP = out.MaxHP
	}
	return out
}

// WithEnergyAttached returns a copy with the energy card attached.
func (c CardInstance) WithEnergyAttached(cardID string) CardInstance {
	out := c.clone()
	out.AttachedEnergy = append(out.AttachedEnergy, cardID)
	return out
}

// WithEnergyRemoved returns a copy with the listed energy cards detached.
// Energy ids not attached are ignored.
func (c CardInstance) WithEnergyRemoved(cardIDs []string) CardInstance {
	remove := make(map[string]int, len(cardIDs))
	for _, id := range cardIDs {
		remove[id]++
	}
	out := c.clone()
	kept := out.AttachedEnergy[:0]
	for _, id := range out.AttachedEnergy {
		if remove[id] > 0 {
			remove[id]--
			continue
		}
		kept = append(kept, id)
	}
	out.AttachedEnergy = kept
	return out
}

// HasEnergyAttached reports whether the given energy card id is attached.
func (c CardInstance) HasEnergyAttached(cardID string) bool {
	for _, id := range c.AttachedEnergy {
		if id == cardID {
			return true
		}
	}
	return false
}
