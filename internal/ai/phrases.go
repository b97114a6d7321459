package ai

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"pixelpet/internal/pet"
)

//go:embed phrases.yaml
var defaultPhrases []byte

// MoodTable holds the variants for each mood.
type MoodTable map[pet.Mood][]string

// Condition compares one stat against a bound. Exactly one of Below and
// Above is expected to be set.
type Condition struct {
	Stat  string `yaml:"stat"`
	Below *int   `yaml:"below"`
	Above *int   `yaml:"above"`
}

// Holds reports whether the condition is true for stats.
func (c Condition) Holds(stats pet.PetStats) bool {
	v, ok := statValue(stats, c.Stat)
	if !ok {
		return false
	}
	if c.Below != nil && v >= *c.Below {
		return false
	}
	if c.Above != nil && v <= *c.Above {
		return false
	}
	return true
}

// Trigger kinds with special handling. The zero kind answers Yes or No
// depending on When.
const (
	TriggerName   = "name"
	TriggerStatus = "status"
)

// Trigger is a keyword rule for free-text replies.
type Trigger struct {
	Keywords []string  `yaml:"keywords"`
	Kind     string    `yaml:"kind"`
	When     Condition `yaml:"when"`
	Yes      string    `yaml:"yes"`
	No       string    `yaml:"no"`
	Context  string    `yaml:"context"`
}

// StatusRule maps a set of conditions to a status comment.
type StatusRule struct {
	When    []Condition `yaml:"when"`
	Message string      `yaml:"message"`
}

// Phrases is every canned line the generator can say.
type Phrases struct {
	Greetings MoodTable `yaml:"greetings"`
	Feed      MoodTable `yaml:"feed"`
	Play      MoodTable `yaml:"play"`
	Pet       MoodTable `yaml:"pet"`
	Thoughts  MoodTable `yaml:"thoughts"`

	NamedFood string            `yaml:"named_food"`
	NamedGame string            `yaml:"named_game"`
	Qualities map[string]string `yaml:"qualities"`

	Absence struct {
		Long  string `yaml:"long"`
		Short string `yaml:"short"`
	} `yaml:"absence"`

	LearnedCallouts  []string `yaml:"learned_callouts"`
	FrequentCallouts []string `yaml:"frequent_callouts"`
	Acknowledgements []string `yaml:"acknowledgements"`
	Defaults         []string `yaml:"defaults"`

	Memories struct {
		Food       string `yaml:"food"`
		Game       string `yaml:"game"`
		BestFriend string `yaml:"best_friend"`
	} `yaml:"memories"`

	Triggers []Trigger         `yaml:"triggers"`
	Status   []StatusRule      `yaml:"status"`
	Actions  map[string]string `yaml:"actions"`
}

// LoadPhrases parses a phrase file and checks that every mood table covers
// every mood.
func LoadPhrases(data []byte) (*Phrases, error) {
	var p Phrases
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse phrases: %w", err)
	}

	tables := map[string]MoodTable{
		"greetings": p.Greetings,
		"feed":      p.Feed,
		"play":      p.Play,
		"pet":       p.Pet,
		"thoughts":  p.Thoughts,
	}
	for name, table := range tables {
		for _, mood := range pet.Moods {
			if len(table[mood]) == 0 {
				return nil, fmt.Errorf("phrases: %s has no lines for mood %q", name, mood)
			}
		}
	}
	if len(p.Defaults) == 0 || len(p.Acknowledgements) == 0 ||
		len(p.LearnedCallouts) == 0 || len(p.FrequentCallouts) == 0 {
		return nil, errors.New("phrases: missing reply lists")
	}
	if len(p.Status) == 0 {
		return nil, errors.New("phrases: no status rules")
	}
	return &p, nil
}

var (
	defaultOnce sync.Once
	defaultSet  *Phrases
)

// DefaultPhrases returns the built-in phrase set.
func DefaultPhrases() *Phrases {
	defaultOnce.Do(func() {
		p, err := LoadPhrases(defaultPhrases)
		if err != nil {
			panic(err)
		}
		defaultSet = p
	})
	return defaultSet
}

func statValue(s pet.PetStats, name string) (int, bool) {
	switch name {
	case "hunger":
		return s.Hunger, true
	case "happiness":
		return s.Happiness, true
	case "health":
		return s.Health, true
	case "energy":
		return s.Energy, true
	case "hygiene":
		return s.Hygiene, true
	}
	return 0, false
}
