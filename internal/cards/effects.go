package cards

// Effect variants are modeled as small concrete structs behind per-pipeline
// marker interfaces. Handlers dispatch with type switches; a variant carries
// only the parameters that are meaningful for it.

// TrainerEffectType identifies a trainer effect variant.
type TrainerEffectType string

const (
	TrainerDiscardHand     TrainerEffectType = "DISCARD_HAND"
	TrainerDiscardFromHand TrainerEffectType = "DISCARD_FROM_HAND"
	TrainerRetrieveEnergy  TrainerEffectType = "RETRIEVE_ENERGY"
	TrainerSearchDeck      TrainerEffectType = "SEARCH_DECK"
	TrainerHeal            TrainerEffectType = "HEAL"
	TrainerRemoveEnergy    TrainerEffectType = "REMOVE_ENERGY"
	TrainerCureStatus      TrainerEffectType = "CURE_STATUS"
	TrainerSwitchPokemon   TrainerEffectType = "SWITCH_POKEMON"
	TrainerDrawCards       TrainerEffectType = "DRAW_CARDS"
	TrainerShuffleDeck     TrainerEffectType = "SHUFFLE_DECK"
)

// TrainerEffect is the tagged-variant interface for trainer card effects.
type TrainerEffect interface {
	TrainerEffectType() TrainerEffectType
	Conditions() []Condition
}

// DiscardHandEffect discards the player's entire hand as a cost.
type DiscardHandEffect struct {
	Require []Condition
}

func (DiscardHandEffect) TrainerEffectType() TrainerEffectType { return TrainerDiscardHand }
func (e DiscardHandEffect) Conditions() []Condition            { return e.Require }

// DiscardFromHandEffect discards a chosen number of cards from hand.
type DiscardFromHandEffect struct {
	Count   int
	Require []Condition
}

func (DiscardFromHandEffect) TrainerEffectType() TrainerEffectType { return TrainerDiscardFromHand }
func (e DiscardFromHandEffect) Conditions() []Condition            { return e.Require }

// RetrieveEnergyEffect returns energy cards from the discard pile to hand.
type RetrieveEnergyEffect struct {
	Count   int
	Energy  EnergyType // empty = any energy
	Require []Condition
}

func (RetrieveEnergyEffect) TrainerEffectType() TrainerEffectType { return TrainerRetrieveEnergy }
func (e RetrieveEnergyEffect) Conditions() []Condition            { return e.Require }

// SearchDeckEffect searches the deck for up to Count cards matching Selector.
type SearchDeckEffect struct {
	Count    int
	Selector Category   // empty = any card
	Energy   EnergyType // restricts energy searches to a color
	Require  []Condition
}

func (SearchDeckEffect) TrainerEffectType() TrainerEffectType { return TrainerSearchDeck }
func (e SearchDeckEffect) Conditions() []Condition            { return e.Require }

// HealEffect removes damage from a target Pokémon.
type HealEffect struct {
	Amount  int
	Target  EffectTarget
	Require []Condition
}

func (HealEffect) TrainerEffectType() TrainerEffectType { return TrainerHeal }
func (e HealEffect) Conditions() []Condition            { return e.Require }

// RemoveEnergyEffect discards attached energy from a target Pokémon.
type RemoveEnergyEffect struct {
	Count   int
	Target  EffectTarget
	Require []Condition
}

func (RemoveEnergyEffect) TrainerEffectType() TrainerEffectType { return TrainerRemoveEnergy }
func (e RemoveEnergyEffect) Conditions() []Condition            { return e.Require }

// CureStatusEffect removes special conditions from a target Pokémon. An empty
// Status cures all conditions.
type CureStatusEffect struct {
	Status  StatusCondition
	Target  EffectTarget
	Require []Condition
}

func (CureStatusEffect) TrainerEffectType() TrainerEffectType { return TrainerCureStatus }
func (e CureStatusEffect) Conditions() []Condition            { return e.Require }

// SwitchPokemonEffect swaps the active Pokémon with a benched one.
type SwitchPokemonEffect struct {
	Require []Condition
}

func (SwitchPokemonEffect) TrainerEffectType() TrainerEffectType { return TrainerSwitchPokemon }
func (e SwitchPokemonEffect) Conditions() []Condition            { return e.Require }

// DrawCardsEffect draws Count cards from the deck.
type DrawCardsEffect struct {
	Count   int
	Require []Condition
}

func (DrawCardsEffect) TrainerEffectType() TrainerEffectType { return TrainerDrawCards }
func (e DrawCardsEffect) Conditions() []Condition            { return e.Require }

// ShuffleDeckEffect shuffles the player's deck.
type ShuffleDeckEffect struct {
	Require []Condition
}

func (ShuffleDeckEffect) TrainerEffectType() TrainerEffectType { return TrainerShuffleDeck }
func (e ShuffleDeckEffect) Conditions() []Condition            { return e.Require }

// AbilityEffectType identifies an ability effect variant.
type AbilityEffectType string

const (
	AbilityEnergyAcceleration AbilityEffectType = "ENERGY_ACCELERATION"
	AbilityHeal               AbilityEffectType = "HEAL"
	AbilityDrawCards          AbilityEffectType = "DRAW_CARDS"
	AbilitySearchDeck         AbilityEffectType = "SEARCH_DECK"
	AbilityApplyStatus        AbilityEffectType = "APPLY_STATUS"
)

// AbilityEffect is the tagged-variant interface for Pokémon ability effects.
type AbilityEffect interface {
	AbilityEffectType() AbilityEffectType
	Conditions() []Condition
}

// EnergyAccelerationEffect attaches energy from Source to a target Pokémon.
type EnergyAccelerationEffect struct {
	Source     EnergySource
	Energy     EnergyType // empty = any energy
	Count      int
	Target     EffectTarget
	TargetType EnergyType // restricts eligible targets to a Pokémon type
	Require    []Condition
}

func (EnergyAccelerationEffect) AbilityEffectType() AbilityEffectType {
	return AbilityEnergyAcceleration
}
func (e EnergyAccelerationEffect) Conditions() []Condition { return e.Require }

// AbilityHealEffect removes damage from a target Pokémon.
type AbilityHealEffect struct {
	Amount  int
	Target  EffectTarget
	Require []Condition
}

func (AbilityHealEffect) AbilityEffectType() AbilityEffectType { return AbilityHeal }
func (e AbilityHealEffect) Conditions() []Condition            { return e.Require }

// AbilityDrawEffect draws Count cards.
type AbilityDrawEffect struct {
	Count   int
	Require []Condition
}

func (AbilityDrawEffect) AbilityEffectType() AbilityEffectType { return AbilityDrawCards }
func (e AbilityDrawEffect) Conditions() []Condition            { return e.Require }

// AbilitySearchEffect searches the deck like the trainer variant.
type AbilitySearchEffect struct {
	Count    int
	Selector Category
	Energy   EnergyType
	Require  []Condition
}

func (AbilitySearchEffect) AbilityEffectType() AbilityEffectType { return AbilitySearchDeck }
func (e AbilitySearchEffect) Conditions() []Condition            { return e.Require }

// AbilityStatusEffect applies a special condition to a target Pokémon.
type AbilityStatusEffect struct {
	Status  StatusCondition
	Target  EffectTarget
	Require []Condition
}

func (AbilityStatusEffect) AbilityEffectType() AbilityEffectType { return AbilityApplyStatus }
func (e AbilityStatusEffect) Conditions() []Condition            { return e.Require }

// AttackEffectType identifies an attack effect variant.
type AttackEffectType string

const (
	AttackDamage            AttackEffectType = "DAMAGE"
	AttackCoinFlipDamage    AttackEffectType = "COIN_FLIP_DAMAGE"
	AttackApplyStatus       AttackEffectType = "APPLY_STATUS"
	AttackDiscardEnergyCost AttackEffectType = "DISCARD_ENERGY_COST"
	AttackSelfDamage        AttackEffectType = "SELF_DAMAGE"
	AttackDamagePrevention  AttackEffectType = "DAMAGE_PREVENTION"
	AttackDamageReduction   AttackEffectType = "DAMAGE_REDUCTION"
	AttackHealSelf          AttackEffectType = "HEAL_SELF"
)

// AttackEffect is the tagged-variant interface for attack effects.
type AttackEffect interface {
	AttackEffectType() AttackEffectType
	Conditions() []Condition
}

// DamageEffect deals flat damage to the defending Pokémon.
type DamageEffect struct {
	Amount  int
	Require []Condition
}

func (DamageEffect) AttackEffectType() AttackEffectType { return AttackDamage }
func (e DamageEffect) Conditions() []Condition          { return e.Require }

// CoinFlipDamageEffect deals damage governed by the attack's coin-flip
// configuration, parsed from the attack text.
type CoinFlipDamageEffect struct {
	Amount  int
	Require []Condition
}

func (CoinFlipDamageEffect) AttackEffectType() AttackEffectType { return AttackCoinFlipDamage }
func (e CoinFlipDamageEffect) Conditions() []Condition          { return e.Require }

// AttackStatusEffect applies a special condition to the defending Pokémon.
// PoisonAmount applies only with StatusPoisoned; legal values are 10 and 20.
type AttackStatusEffect struct {
	Status       StatusCondition
	PoisonAmount int
	Require      []Condition
}

func (AttackStatusEffect) AttackEffectType() AttackEffectType { return AttackApplyStatus }
func (e AttackStatusEffect) Conditions() []Condition          { return e.Require }

// DiscardEnergyCostEffect discards attached energy from the attacker as part
// of the attack's cost.
type DiscardEnergyCostEffect struct {
	Count   int
	Energy  EnergyType // empty = any energy
	Require []Condition
}

func (DiscardEnergyCostEffect) AttackEffectType() AttackEffectType { return AttackDiscardEnergyCost }
func (e DiscardEnergyCostEffect) Conditions() []Condition          { return e.Require }

// SelfDamageEffect deals recoil damage to the attacker.
type SelfDamageEffect struct {
	Amount  int
	Require []Condition
}

func (SelfDamageEffect) AttackEffectType() AttackEffectType { return AttackSelfDamage }
func (e SelfDamageEffect) Conditions() []Condition          { return e.Require }

// DamagePreventionEffect prevents all damage to the attacker for a number of
// turns (usually one: "during your opponent's next turn").
type DamagePreventionEffect struct {
	DurationTurns int
	Require       []Condition
}

func (DamagePreventionEffect) AttackEffectType() AttackEffectType { return AttackDamagePrevention }
func (e DamagePreventionEffect) Conditions() []Condition          { return e.Require }

// DamageReductionEffect reduces damage dealt to the attacker by Amount for a
// number of turns.
type DamageReductionEffect struct {
	Amount        int
	DurationTurns int
	Require       []Condition
}

func (DamageReductionEffect) AttackEffectType() AttackEffectType { return AttackDamageReduction }
func (e DamageReductionEffect) Conditions() []Condition          { return e.Require }

// HealSelfEffect removes damage from the attacker.
type HealSelfEffect struct {
	Amount  int
	Require []Condition
}

func (HealSelfEffect) AttackEffectType() AttackEffectType { return AttackHealSelf }
func (e HealSelfEffect) Conditions() []Condition          { return e.Require }
