// Package coinflip models the game's source of randomness: parsing attack
// text into a flip configuration, producing uniform flips, and tracking the
// two-party approval barrier that gates effect application.
package coinflip

import (
	"crypto/rand"
	"fmt"

	"github.com/pokefree/tcg-server-go/internal/cards"
)

// Result is the outcome of a single flip.
type Result string

const (
	Heads Result = "HEADS"
	Tails Result = "TAILS"
)

// CountPolicy controls how many flips a configuration requires.
type CountPolicy string

const (
	// CountFixed flips exactly Count times.
	CountFixed CountPolicy = "FIXED"
	// CountUntilTails flips until the first tails.
	CountUntilTails CountPolicy = "UNTIL_TAILS"
	// CountVariable flips a number of times determined outside the
	// configuration, e.g. once per attached energy.
	CountVariable CountPolicy = "VARIABLE"
)

// DamagePolicy controls how flip results feed the damage computation.
type DamagePolicy string

const (
	// DamageBase applies the attack's base damage regardless of results.
	DamageBase DamagePolicy = "BASE_DAMAGE"
	// DamageMultiplyByHeads multiplies base damage by the heads count.
	DamageMultiplyByHeads DamagePolicy = "MULTIPLY_BY_HEADS"
	// DamageStatusEffectOnly applies full damage always; the flip gates a
	// secondary status effect instead.
	DamageStatusEffectOnly DamagePolicy = "STATUS_EFFECT_ONLY"
)

// Context distinguishes what a flip sequence is resolving.
type Context string

const (
	ContextAttack      Context = "ATTACK"
	ContextStatusCheck Context = "STATUS_CHECK"
	ContextFirstPlayer Context = "FIRST_PLAYER"
)

// Status is the lifecycle state of a flip sequence.
type Status string

const (
	StatusInProgress       Status = "IN_PROGRESS"
	StatusAwaitingApproval Status = "AWAITING_APPROVAL"
	StatusSettled          Status = "SETTLED"
)

// Configuration describes how many flips are required and how results map to
// damage.
type Configuration struct {
	CountPolicy CountPolicy
	Count       int // flips for FIXED, resolved count for VARIABLE
	Damage      DamagePolicy
}

// State is the accumulated flip state stored on the game state. Values are
// immutable; mutators return copies.
type State struct {
	Status  Status
	Context Context
	Config  Configuration
	Results []Result

	// AttackIndex references the attack being resolved for ATTACK context.
	AttackIndex int
	// TargetInstanceID and CheckedStatus reference the Pokémon and the
	// condition under test for STATUS_CHECK context.
	TargetInstanceID string
	CheckedStatus    cards.StatusCondition

	// Per-player approval flags. Both must be set before a completed flip
	// sequence is settled and its effects applied. This is a barrier, not a
	// lock: either player may observe intermediate results.
	Player1Approved bool
	Player2Approved bool
}

// NewAttackState starts a flip sequence for the attack at attackIndex.
func NewAttackState(config Configuration, attackIndex int) *State {
	return &State{
		Status:      StatusInProgress,
		Context:     ContextAttack,
		Config:      config,
		AttackIndex: attackIndex,
	}
}

// NewStatusCheckState starts a between-turns status-check flip for the given
// Pokémon and condition.
func NewStatusCheckState(instanceID string, status cards.StatusCondition) *State {
	return &State{
		Status:  StatusInProgress,
		Context: ContextStatusCheck,
		Config: Configuration{
			CountPolicy: CountFixed,
			Count:       1,
			Damage:      DamageStatusEffectOnly,
		},
		TargetInstanceID: instanceID,
		CheckedStatus:    status,
	}
}

// NewFirstPlayerState starts the single pre-game flip that decides who takes
// the first turn.
func NewFirstPlayerState() *State {
	return &State{
		Status:  StatusInProgress,
		Context: ContextFirstPlayer,
		Config: Configuration{
			CountPolicy: CountFixed,
			Count:       1,
			Damage:      DamageStatusEffectOnly,
		},
	}
}

func (s State) clone() State {
	out := s
	out.Results = append([]Result(nil), s.Results...)
	return out
}

// HeadsCount returns how many heads have been flipped.
func (s State) HeadsCount() int {
	n := 0
	for _, r := range s.Results {
		if r == Heads {
			n++
		}
	}
	return n
}

// TailsCount returns how many tails have been flipped.
func (s State) TailsCount() int {
	return len(s.Results) - s.HeadsCount()
}

// IsComplete reports whether enough results have been recorded. VARIABLE
// completion depends on the resolved Count having been set by the resolver.
func (s State) IsComplete() bool {
	switch s.Config.CountPolicy {
	case CountUntilTails:
		return s.TailsCount() >= 1
	case CountFixed, CountVariable:
		return s.Config.Count > 0 && len(s.Results) >= s.Config.Count
	}
	return false
}

// IsSettled reports whether the sequence is complete and both players have
// approved, i.e. attached effects may now be applied.
func (s State) IsSettled() bool {
	return s.IsComplete() && s.Player1Approved && s.Player2Approved
}

// WithResult returns a copy with the flip result appended. Appending to an
// already complete sequence is an error.
func (s State) WithResult(r Result) (State, error) {
	if s.IsComplete() {
		return State{}, fmt.Errorf("coin flip sequence already complete")
	}
	out := s.clone()
	out.Results = append(out.Results, r)
	if out.IsComplete() {
		out.Status = StatusAwaitingApproval
	}
	return out, nil
}

// WithApproval returns a copy with the given player's approval recorded.
// playerNumber is 1 or 2. Approval order is unconstrained.
func (s State) WithApproval(playerNumber int) (State, error) {
	out := s.clone()
	switch playerNumber {
	case 1:
		out.Player1Approved = true
	case 2:
		out.Player2Approved = true
	default:
		return State{}, fmt.Errorf("invalid player number %d", playerNumber)
	}
	if out.IsSettled() {
		out.Status = StatusSettled
	}
	return out, nil
}

// Flip produces one uniform coin flip.
func Flip() (Result, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random byte: %w", err)
	}
	if b[0]&1 == 0 {
		return Heads, nil
	}
	return Tails, nil
}

// DamageForResults computes attack damage from a completed flip sequence.
func DamageForResults(config Configuration, baseDamage int, results []Result) int {
	switch config.Damage {
	case DamageMultiplyByHeads:
		heads := 0
		for _, r := range results {
			if r == Heads {
				heads++
			}
		}
		return baseDamage * heads
	case DamageBase, DamageStatusEffectOnly:
		return baseDamage
	}
	return baseDamage
}

// Succeeded reports whether a flip sequence counts as a success for
// condition gating: at least one heads.
func Succeeded(results []Result) bool {
	for _, r := range results {
		if r == Heads {
			return true
		}
	}
	return false
}
