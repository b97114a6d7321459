package pet

import (
	"math"
	"time"
)

// Patterns summarizes the recent interaction log.
type Patterns struct {
	Counts     map[InteractionType]int // over the last RecentWindow interactions
	HoursSince float64                 // since the newest interaction, 0 when there is none
}

// AnalyzePatterns counts each interaction type among the most recent
// RecentWindow entries.
func (m *Memory) AnalyzePatterns(now time.Time) Patterns {
	recent := m.Interactions
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}

	p := Patterns{Counts: make(map[InteractionType]int)}
	for _, in := range recent {
		p.Counts[in.Type]++
	}
	if last, ok := m.LastInteraction(); ok {
		p.HoursSince = math.Max(0, last.Timestamp.HoursSince(now))
	}
	return p
}

// Relationship scores how well the pet has been looked after lately, in
// [0, 100]. It is derived on demand and never stored.
func (gs *GameState) Relationship(now time.Time) float64 {
	p := gs.Pet
	patterns := gs.Memory.AnalyzePatterns(now)
	c := patterns.Counts

	score := 50.0
	score += 0.3 * float64(p.Happiness-50)
	score += 0.2 * float64(p.Health-50)
	score += 0.1 * float64(p.Hunger-50)
	score += 2 * float64(c[InteractionPet])
	score += 1.5 * float64(c[InteractionPlay])
	score += float64(c[InteractionTalk])
	score -= 3 * math.Max(0, float64(10-c[InteractionFeed]))
	score -= 2 * patterns.HoursSince
	score += math.Min(10, 0.5*float64(gs.Memory.Vocabulary.TotalWordsLearned))

	return math.Max(0, math.Min(100, score))
}

// RelationshipDescription returns a text description of a relationship score
func RelationshipDescription(score float64) string {
	switch {
	case score >= 80:
		return "Best Friends"
	case score >= 60:
		return "Close"
	case score >= 40:
		return "Friendly"
	case score >= 20:
		return "Distant"
	default:
		return "Strangers"
	}
}
