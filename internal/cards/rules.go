package cards

// CardRuleType identifies a static, always-on card rule.
type CardRuleType string

const (
	RuleCannotRetreat          CardRuleType = "CANNOT_RETREAT"
	RuleFreeRetreat            CardRuleType = "FREE_RETREAT"
	RuleDamageImmunity         CardRuleType = "DAMAGE_IMMUNITY"
	RuleDamageReduction        CardRuleType = "DAMAGE_REDUCTION"
	RuleStatusImmunity         CardRuleType = "STATUS_IMMUNITY"
	RuleExtraPrizeCards        CardRuleType = "EXTRA_PRIZE_CARDS"
	RuleNoPrizeCards           CardRuleType = "NO_PRIZE_CARDS"
	RuleOncePerGame            CardRuleType = "ONCE_PER_GAME"
	RuleEnergyCostModification CardRuleType = "ENERGY_COST_MODIFICATION"
)

// RulePriority orders simultaneous rule application when several rules could
// apply to the same decision point. Higher wins.
type RulePriority int

const (
	PriorityLowest  RulePriority = 1
	PriorityLow     RulePriority = 2
	PriorityMedium  RulePriority = 3
	PriorityHigh    RulePriority = 4
	PriorityHighest RulePriority = 5
)

// CardRule is a static always-on modifier or restriction carried by a card
// template. Parameter fields are meaningful per Type: Amount carries the
// damage-reduction value, prize-card delta or energy-cost delta; Status the
// condition a STATUS_IMMUNITY rule protects against; Energy the energy type
// an ENERGY_COST_MODIFICATION rule adjusts.
type CardRule struct {
	Type     CardRuleType
	Priority RulePriority
	Amount   int
	Status   StatusCondition
	Energy   EnergyType
}
