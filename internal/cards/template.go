package cards

// CardTemplate is the static, catalog-level definition of a card. Templates
// are immutable reference data; runtime state (damage, attached energy,
// status) lives on the game-side card instance that points back at a template
// by card id.
type CardTemplate struct {
	CardID      string
	Name        string
	Category    Category
	Description string

	// Pokémon-only fields
	Stage       Stage
	EvolvesFrom string // card id of the pre-evolution, empty for basics
	HP          int
	Type        EnergyType
	Weakness    EnergyType // empty when none
	Resistance  EnergyType // empty when none
	RetreatCost int
	Attacks     []Attack
	Abilities   []Ability
	Rules       []CardRule

	// Trainer-only fields
	TrainerEffects []TrainerEffect

	// Energy-only fields
	ProvidesEnergy EnergyType
}

// IsPokemon reports whether the template describes a Pokémon card.
func (t *CardTemplate) IsPokemon() bool { return t.Category == CategoryPokemon }

// IsBasicEnergy reports whether the template describes an energy card.
func (t *CardTemplate) IsBasicEnergy() bool { return t.Category == CategoryEnergy }

// RuleOfType returns the highest-priority rule of the given type, if any.
func (t *CardTemplate) RuleOfType(ruleType CardRuleType) (CardRule, bool) {
	best := CardRule{}
	found := false
	for _, r := range t.Rules {
		if r.Type != ruleType {
			continue
		}
		if !found || r.Priority > best.Priority {
			best = r
			found = true
		}
	}
	return best, found
}

// HasRule reports whether the template carries a rule of the given type.
func (t *CardTemplate) HasRule(ruleType CardRuleType) bool {
	_, ok := t.RuleOfType(ruleType)
	return ok
}

// Attack is a static attack definition on a Pokémon template.
type Attack struct {
	Name       string
	Cost       []EnergyType
	BaseDamage int
	Text       string
	Effects    []AttackEffect
}

// Ability is a static ability definition on a Pokémon template.
type Ability struct {
	AbilityID   string
	Name        string
	Text        string
	OncePerTurn bool
	Effects     []AbilityEffect
}
