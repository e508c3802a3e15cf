package cards

// ConditionType discriminates the condition variants that can gate an effect.
type ConditionType string

const (
	ConditionAlways            ConditionType = "ALWAYS"
	ConditionCoinFlipSuccess   ConditionType = "COIN_FLIP_SUCCESS"
	ConditionCoinFlipFailure   ConditionType = "COIN_FLIP_FAILURE"
	ConditionSelfHasDamage     ConditionType = "SELF_HAS_DAMAGE"
	ConditionOpponentHasDamage ConditionType = "OPPONENT_HAS_DAMAGE"
	ConditionSelfHasEnergyType ConditionType = "SELF_HAS_ENERGY_TYPE"
	ConditionSelfMinimumDamage ConditionType = "SELF_MINIMUM_DAMAGE"
	ConditionSelfMinimumEnergy ConditionType = "SELF_MINIMUM_ENERGY"
	ConditionSelfHasStatus     ConditionType = "SELF_HAS_STATUS"
	ConditionOpponentHasStatus ConditionType = "OPPONENT_HAS_STATUS"
)

// Condition gates an effect against the current game state. The meaning of
// the parameter fields depends on Type: Amount carries minimum-damage or
// minimum-energy thresholds, Energy the required attached energy type and
// Status the required special condition.
type Condition struct {
	Type   ConditionType
	Amount int
	Energy EnergyType
	Status StatusCondition
}
