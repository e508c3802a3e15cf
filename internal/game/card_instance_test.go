package game

import (
	"testing"

	"github.com/pokefree/tcg-server-go/internal/cards"
)

func TestCardInstance_DamageCountersDerived(t *testing.T) {
	instance := CardInstance{InstanceID: "i1", CardID: "c1", CurrentHP: 40, MaxHP: 60}

	if got := instance.DamageCounters(); got != 20 {
		t.Errorf("Expected 20 damage counters, got %d", got)
	}

	damaged := instance.WithDamage(50)
	if damaged.CurrentHP != 0 {
		t.Errorf("Expected HP clamped at 0, got %d", damaged.CurrentHP)
	}
	if !damaged.IsKnockedOut() {
		t.Error("Expected instance at 0 HP to be knocked out")
	}
	if instance.CurrentHP != 40 {
		t.Errorf("Expected original instance untouched, got HP %d", instance.CurrentHP)
	}
}

func TestCardInstance_HealingClampedAtMax(t *testing.T) {
	instance := CardInstance{CurrentHP: 40, MaxHP: 60}
	healed := instance.WithHealing(100)
	if healed.CurrentHP != 60 {
		t.Errorf("Expected healing clamped at max HP 60, got %d", healed.CurrentHP)
	}
}

func TestCardInstance_StatusSetSemantics(t *testing.T) {
	instance := CardInstance{InstanceID: "i1"}

	withStatus := instance.WithStatus(cards.StatusPoisoned).WithStatus(cards.StatusPoisoned)
	if len(withStatus.StatusEffects) != 1 {
		t.Errorf("Expected one POISONED entry, got %v", withStatus.StatusEffects)
	}

	cleared := withStatus.WithoutStatus(cards.StatusPoisoned)
	if cleared.HasStatus(cards.StatusPoisoned) {
		t.Error("Expected POISONED removed")
	}
}

func TestCardInstance_WithoutStatusClearsBookkeeping(t *testing.T) {
	instance := CardInstance{
		StatusEffects:         []cards.StatusCondition{cards.StatusPoisoned, cards.StatusParalyzed},
		PoisonDamageAmount:    20,
		ParalysisClearsAtTurn: 5,
	}

	cured := instance.WithoutStatus(cards.StatusPoisoned)
	if cured.PoisonDamageAmount != 0 {
		t.Errorf("Expected poison amount reset, got %d", cured.PoisonDamageAmount)
	}
	if cured.ParalysisClearsAtTurn != 5 {
		t.Error("Expected paralysis bookkeeping untouched")
	}

	all := instance.WithStatusesCleared()
	if len(all.StatusEffects) != 0 || all.PoisonDamageAmount != 0 || all.ParalysisClearsAtTurn != 0 {
		t.Errorf("Expected everything cleared, got %+v", all)
	}
}

func TestCardInstance_EnergyRemovalLeavesReceiver(t *testing.T) {
	instance := CardInstance{AttachedEnergy: []string{"e1", "e2", "e3"}}

	removed := instance.WithEnergyRemoved([]string{"e2", "missing"})
	if len(removed.AttachedEnergy) != 2 {
		t.Errorf("Expected 2 energy left, got %v", removed.AttachedEnergy)
	}
	if removed.HasEnergyAttached("e2") {
		t.Error("Expected e2 detached")
	}
	if len(instance.AttachedEnergy) != 3 {
		t.Errorf("Expected receiver unchanged, got %v", instance.AttachedEnergy)
	}
}
