package cards

import "fmt"

// EnergyType identifies the energy color of a card or attack cost slot.
type EnergyType string

const (
	EnergyGrass     EnergyType = "GRASS"
	EnergyFire      EnergyType = "FIRE"
	EnergyWater     EnergyType = "WATER"
	EnergyLightning EnergyType = "LIGHTNING"
	EnergyPsychic   EnergyType = "PSYCHIC"
	EnergyFighting  EnergyType = "FIGHTING"
	EnergyDarkness  EnergyType = "DARKNESS"
	EnergyMetal     EnergyType = "METAL"
	EnergyColorless EnergyType = "COLORLESS"
)

// Category distinguishes the three top-level card kinds.
type Category string

const (
	CategoryPokemon Category = "POKEMON"
	CategoryTrainer Category = "TRAINER"
	CategoryEnergy  Category = "ENERGY"
)

// StatusCondition is a special condition that can be attached to an in-play
// Pokémon. Several may apply simultaneously; there is no explicit "none"
// marker, absence of a condition is expressed by absence from the set.
type StatusCondition string

const (
	StatusAsleep    StatusCondition = "ASLEEP"
	StatusBurned    StatusCondition = "BURNED"
	StatusConfused  StatusCondition = "CONFUSED"
	StatusParalyzed StatusCondition = "PARALYZED"
	StatusPoisoned  StatusCondition = "POISONED"
)

// EnergySource identifies where an effect takes energy cards from.
type EnergySource string

const (
	SourceHand    EnergySource = "HAND"
	SourceDiscard EnergySource = "DISCARD"
	SourceDeck    EnergySource = "DECK"
	SourceSelf    EnergySource = "SELF"
)

// EffectTarget identifies who or what an effect applies to.
type EffectTarget string

const (
	TargetSelf           EffectTarget = "SELF"
	TargetOwnActive      EffectTarget = "OWN_ACTIVE"
	TargetOwnPokemon     EffectTarget = "OWN_POKEMON"
	TargetOpponentActive EffectTarget = "OPPONENT_ACTIVE"
)

// Stage is the evolution stage of a Pokémon card (0 = basic).
type Stage int

const (
	StageBasic Stage = iota
	StageOne
	StageTwo
)

func (s Stage) String() string {
	switch s {
	case StageBasic:
		return "BASIC"
	case StageOne:
		return "STAGE_1"
	case StageTwo:
		return "STAGE_2"
	}
	return fmt.Sprintf("STAGE_%d", int(s))
}
