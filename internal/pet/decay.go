package pet

import (
	"time"

	"pixelpet/internal/clock"
)

// Decay returns the pet's stats after the time elapsed up to now. It does not
// modify p.
func Decay(p PetState, now time.Time) PetStats {
	stats, _ := DecayStep(p, now)
	return stats
}

// DecayStep is Decay plus the fractional remainders to store back on the pet
// so that frequent small ticks lose nothing to integer truncation.
//
// Elapsed time for each stat is measured from the later of its last-action
// timestamp and p.LastDecay, so applying the result and advancing LastDecay
// to now makes a second call with the same now a no-op.
func DecayStep(p PetState, now time.Time) (PetStats, StatCarry) {
	stats := p.PetStats.Clamp()
	carry := p.DecayCarry

	stats.Hunger, carry.Hunger = drain(stats.Hunger, carry.Hunger, p.hoursSince(p.LastFed, now)*HungerDecayRate)
	stats.Happiness, carry.Happiness = drain(stats.Happiness, carry.Happiness, p.hoursSince(p.LastPlayed, now)*HappinessDecayRate)
	stats.Hygiene, carry.Hygiene = drain(stats.Hygiene, carry.Hygiene, p.hoursSince(p.LastCleaned, now)*HygieneDecayRate)

	sleptHours := p.hoursSince(p.LastSlept, now)
	if p.IsSleeping {
		stats.Energy, carry.Energy = restore(stats.Energy, carry.Energy, sleptHours*EnergyRecoveryRate)
	} else {
		stats.Energy, carry.Energy = drain(stats.Energy, carry.Energy, sleptHours*EnergyDecayRate)
	}

	// Health only moves through nudges, once per step that covers new time
	if now.UnixMilli() > p.LastDecay.Millis() {
		if stats.Hunger < CriticalStatThreshold || stats.Hygiene < CriticalStatThreshold {
			stats.Health = max(stats.Health-HealthPenalty, MinStat)
		}
		if stats.Happiness > ThrivingHappiness && stats.Hunger > ThrivingHunger {
			stats.Health = min(stats.Health+HealthRecovery, MaxStat)
		}
	}

	return stats, carry
}

// ApplyDecay advances the pet to now: stats decay, the checkpoint moves
// forward and the mood is recomputed.
func (p *PetState) ApplyDecay(now time.Time) {
	p.PetStats, p.DecayCarry = DecayStep(*p, now)
	if now.After(p.LastDecay.Time) {
		p.LastDecay = clock.At(now)
	}
	p.Mood = MoodOf(*p)
}

// hoursSince returns the hours between the later of last and the decay
// checkpoint, and now. Clock skew never yields negative time.
func (p PetState) hoursSince(last clock.Timestamp, now time.Time) float64 {
	from := clock.Later(last, p.LastDecay)
	if from.IsZero() {
		return 0
	}
	if h := now.Sub(from.Time).Hours(); h > 0 {
		return h
	}
	return 0
}

// drain subtracts loss from value, keeping the fractional part in carry.
func drain(value int, carry, loss float64) (int, float64) {
	carry += loss
	whole := int(carry)
	carry -= float64(whole)
	value -= whole
	if value <= MinStat {
		return MinStat, 0
	}
	return value, carry
}

// restore adds gain to value, keeping the fractional part in carry.
func restore(value int, carry, gain float64) (int, float64) {
	carry += gain
	whole := int(carry)
	carry -= float64(whole)
	value += whole
	if value >= MaxStat {
		return MaxStat, 0
	}
	return value, carry
}
