package pet

import "strings"

// MoodOf derives the pet's mood from its flags and stats. The first matching
// rule wins.
func MoodOf(p PetState) Mood {
	switch {
	case p.IsSick:
		return MoodSick
	case p.IsSleeping:
		return MoodSleepy
	case p.Hunger < HungryMoodThreshold:
		return MoodHungry
	case p.Happiness > 80 && p.Health > 70:
		return MoodEcstatic
	case p.Happiness > 60 && p.Health > 50:
		return MoodHappy
	case p.Happiness > 40:
		return MoodContent
	case p.Happiness > 20:
		return MoodNeutral
	case p.Happiness > 10:
		return MoodSad
	default:
		return MoodAngry
	}
}

var moodEmoji = map[Mood]string{
	MoodEcstatic: "🤩",
	MoodHappy:    "😄",
	MoodContent:  "🙂",
	MoodNeutral:  "😐",
	MoodSad:      "😢",
	MoodAngry:    "😠",
	MoodSick:     "🤒",
	MoodSleepy:   "😴",
	MoodHungry:   "😋",
}

// Emoji returns the face shown for the mood.
func (m Mood) Emoji() string {
	if e, ok := moodEmoji[m]; ok {
		return e
	}
	return "🙂"
}

// Label returns the mood with a capitalized first letter.
func (m Mood) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// need pairs a stat value with how it is shown when it runs low.
type need struct {
	value int
	emoji string
	label string
}

// criticalNeed returns the lowest stat when it is below 30.
func criticalNeed(p PetState) (need, bool) {
	needs := []need{
		{p.Health, "💊", "needs medicine"},
		{p.Energy, "🛌", "tired"},
		{p.Hunger, "🍖", "hungry"},
		{p.Happiness, "🎾", "bored"},
		{p.Hygiene, "🛁", "dirty"},
	}
	lowest := needs[0]
	for _, n := range needs[1:] {
		if n.value < lowest.value {
			lowest = n
		}
	}
	return lowest, lowest.value < 30
}

// GetStatus returns the status emoji(s) for the pet: the mood face plus the
// most critical need, if any.
func GetStatus(p PetState) string {
	status := p.Mood.Emoji()
	if n, ok := criticalNeed(p); ok {
		status += n.emoji
	}
	return status
}

// GetStatusWithLabel returns status with text labels for the UI
func GetStatusWithLabel(p PetState) string {
	label := p.Mood.Label()
	if p.IsSleeping {
		label = "Sleeping"
	}
	if n, ok := criticalNeed(p); ok {
		label += " (" + n.label + ")"
	}
	return GetStatus(p) + " " + label
}
