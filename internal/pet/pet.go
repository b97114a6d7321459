package pet

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"pixelpet/internal/clock"
	"pixelpet/internal/vocab"
)

// Testable time and id functions
var (
	TimeNow = func() time.Time { return time.Now().UTC() }
	NewID   = uuid.NewString
)

// Mood is the single label summarizing how the pet feels.
type Mood string

const (
	MoodEcstatic Mood = "ecstatic"
	MoodHappy    Mood = "happy"
	MoodContent  Mood = "content"
	MoodNeutral  Mood = "neutral"
	MoodSad      Mood = "sad"
	MoodAngry    Mood = "angry"
	MoodSick     Mood = "sick"
	MoodSleepy   Mood = "sleepy"
	MoodHungry   Mood = "hungry"
)

// Moods lists every mood in display order.
var Moods = []Mood{
	MoodEcstatic, MoodHappy, MoodContent, MoodNeutral, MoodSad,
	MoodAngry, MoodSick, MoodSleepy, MoodHungry,
}

// InteractionType names a logged action.
type InteractionType string

const (
	InteractionFeed     InteractionType = "feed"
	InteractionPlay     InteractionType = "play"
	InteractionPet      InteractionType = "pet"
	InteractionClean    InteractionType = "clean"
	InteractionSleep    InteractionType = "sleep"
	InteractionWake     InteractionType = "wake"
	InteractionMedicine InteractionType = "medicine"
	InteractionTalk     InteractionType = "talk"
	InteractionCustom   InteractionType = "custom"
)

// PetStats are the five needs. Higher is better for every one of them.
type PetStats struct {
	Hunger    int `json:"hunger"`
	Happiness int `json:"happiness"`
	Health    int `json:"health"`
	Energy    int `json:"energy"`
	Hygiene   int `json:"hygiene"`
}

// Clamp forces every stat into [MinStat, MaxStat].
func (s PetStats) Clamp() PetStats {
	return PetStats{
		Hunger:    clamp(s.Hunger),
		Happiness: clamp(s.Happiness),
		Health:    clamp(s.Health),
		Energy:    clamp(s.Energy),
		Hygiene:   clamp(s.Hygiene),
	}
}

// StatCarry holds the fractional decay that has not yet moved a whole point.
type StatCarry struct {
	Hunger    float64 `json:"hunger,omitempty"`
	Happiness float64 `json:"happiness,omitempty"`
	Energy    float64 `json:"energy,omitempty"`
	Hygiene   float64 `json:"hygiene,omitempty"`
}

// PetState is the creature itself.
type PetState struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	BirthDate   clock.Timestamp `json:"birthDate"`
	LastFed     clock.Timestamp `json:"lastFed"`
	LastPlayed  clock.Timestamp `json:"lastPlayed"`
	LastSlept   clock.Timestamp `json:"lastSlept"`
	LastCleaned clock.Timestamp `json:"lastCleaned"`
	PetStats
	IsSleeping bool   `json:"isSleeping"`
	IsSick     bool   `json:"isSick"`
	Stage      string `json:"stage"`
	Mood       Mood   `json:"mood"`
	Gender     string `json:"gender"`

	// Decay bookkeeping: the instant decay was last applied and the
	// sub-point remainders it left behind.
	LastDecay  clock.Timestamp `json:"lastDecay"`
	DecayCarry StatCarry       `json:"decayCarry"`
}

// UnmarshalJSON accepts fractional stats, as written by saves that decay
// stats continuously, and rounds them to whole points.
func (p *PetState) UnmarshalJSON(data []byte) error {
	type plain PetState
	doc := struct {
		*plain
		Hunger    float64 `json:"hunger"`
		Happiness float64 `json:"happiness"`
		Health    float64 `json:"health"`
		Energy    float64 `json:"energy"`
		Hygiene   float64 `json:"hygiene"`
	}{
		plain:     (*plain)(p),
		Hunger:    float64(p.Hunger),
		Happiness: float64(p.Happiness),
		Health:    float64(p.Health),
		Energy:    float64(p.Energy),
		Hygiene:   float64(p.Hygiene),
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	p.PetStats = PetStats{
		Hunger:    roundStat(doc.Hunger),
		Happiness: roundStat(doc.Happiness),
		Health:    roundStat(doc.Health),
		Energy:    roundStat(doc.Energy),
		Hygiene:   roundStat(doc.Hygiene),
	}
	return nil
}

// roundStat rounds v to the nearest point inside [MinStat, MaxStat].
func roundStat(v float64) int {
	return clamp(int(math.Round(math.Max(-1, math.Min(v, MaxStat+1)))))
}

// Interaction is one entry of the care log.
type Interaction struct {
	ID        string          `json:"id"`
	Type      InteractionType `json:"type"`
	Timestamp clock.Timestamp `json:"timestamp"`
	Value     *int            `json:"value,omitempty"`
	Note      string          `json:"note,omitempty"`
}

// Speaker identifies who said a conversation line.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerPet  Speaker = "pet"
)

// ConversationEntry is one line of conversation.
type ConversationEntry struct {
	ID        string          `json:"id"`
	Speaker   Speaker         `json:"speaker"`
	Message   string          `json:"message"`
	Timestamp clock.Timestamp `json:"timestamp"`
	WordsUsed []string        `json:"wordsUsed"`
}

// Memory is everything the pet remembers about its owner.
type Memory struct {
	Interactions        []Interaction       `json:"interactions"`
	FavoriteFoods       []string            `json:"favoriteFoods"`
	FavoriteGames       []string            `json:"favoriteGames"`
	Vocabulary          vocab.Vocabulary    `json:"vocabulary"`
	ConversationHistory []ConversationEntry `json:"conversationHistory"`
}

// LastInteraction returns the newest interaction, if any.
func (m *Memory) LastInteraction() (Interaction, bool) {
	if len(m.Interactions) == 0 {
		return Interaction{}, false
	}
	return m.Interactions[len(m.Interactions)-1], true
}

// GameStats are cumulative counters for the whole game.
type GameStats struct {
	TotalInteractions int             `json:"totalInteractions"`
	WordsLearned      int             `json:"wordsLearned"`
	ConversationsHad  int             `json:"conversationsHad"`
	ItemsCollected    int             `json:"itemsCollected"`
	LastSave          clock.Timestamp `json:"lastSave"`
}

// GameState is the root aggregate and the unit of persistence.
type GameState struct {
	Pet           PetState     `json:"pet"`
	Memory        Memory       `json:"memory"`
	Inventory     []CustomItem `json:"inventory"`
	UnlockedItems []string     `json:"unlockedItems"`
	GameStats     GameStats    `json:"gameStats"`
}

// NewGameState creates a fresh game with the default pet born at now.
func NewGameState(now time.Time) *GameState {
	born := clock.At(now)
	p := PetState{
		ID:          NewID(),
		Name:        DefaultPetName,
		BirthDate:   born,
		LastFed:     born,
		LastPlayed:  born,
		LastSlept:   born,
		LastCleaned: born,
		PetStats: PetStats{
			Hunger:    DefaultHunger,
			Happiness: DefaultHappiness,
			Health:    DefaultHealth,
			Energy:    DefaultEnergy,
			Hygiene:   DefaultHygiene,
		},
		Stage:     StageAdult,
		Gender:    GenderMale,
		LastDecay: born,
	}
	p.Mood = MoodOf(p)

	return &GameState{
		Pet: p,
		Memory: Memory{
			Interactions:        []Interaction{},
			FavoriteFoods:       []string{},
			FavoriteGames:       []string{},
			Vocabulary:          vocab.Vocabulary{Words: []vocab.LearnedWord{}, FavoriteWords: []string{}},
			ConversationHistory: []ConversationEntry{},
		},
		Inventory:     []CustomItem{},
		UnlockedItems: []string{},
		GameStats:     GameStats{LastSave: born},
	}
}

// Clone returns a deep copy that shares no memory with gs.
func (gs *GameState) Clone() *GameState {
	out := *gs

	if gs.Memory.Interactions != nil {
		out.Memory.Interactions = make([]Interaction, len(gs.Memory.Interactions))
		for i, in := range gs.Memory.Interactions {
			if in.Value != nil {
				v := *in.Value
				in.Value = &v
			}
			out.Memory.Interactions[i] = in
		}
	}
	out.Memory.FavoriteFoods = cloneStrings(gs.Memory.FavoriteFoods)
	out.Memory.FavoriteGames = cloneStrings(gs.Memory.FavoriteGames)
	out.Memory.Vocabulary = gs.Memory.Vocabulary.Clone()
	if gs.Memory.ConversationHistory != nil {
		out.Memory.ConversationHistory = make([]ConversationEntry, len(gs.Memory.ConversationHistory))
		for i, c := range gs.Memory.ConversationHistory {
			c.WordsUsed = cloneStrings(c.WordsUsed)
			out.Memory.ConversationHistory[i] = c
		}
	}

	if gs.Inventory != nil {
		out.Inventory = make([]CustomItem, len(gs.Inventory))
		for i, item := range gs.Inventory {
			out.Inventory[i] = item.clone()
		}
	}
	out.UnlockedItems = cloneStrings(gs.UnlockedItems)
	return &out
}

// cloneStrings copies s, keeping nil and empty distinct.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

func clamp(v int) int {
	return max(MinStat, min(v, MaxStat))
}

// Helper functions
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
