package pet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrInvalidSave is returned when a save document cannot be used.
var ErrInvalidSave = errors.New("invalid save document")

// requiredKeys must be present as JSON objects in every save document.
var requiredKeys = []string{"pet", "memory"}

// Encode serializes the game compactly for storage.
func Encode(gs *GameState) ([]byte, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("encode game state: %w", err)
	}
	return data, nil
}

// Export serializes the game as indented text for the user to keep.
func Export(gs *GameState) (string, error) {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export game state: %w", err)
	}
	return string(data), nil
}

// Decode parses a save document. The result has its invariants forced and
// is normalized, but no time has been applied to it.
func Decode(data []byte) (*GameState, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	for _, key := range requiredKeys {
		raw, ok := probe[key]
		if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
			return nil, fmt.Errorf("%w: missing %q object", ErrInvalidSave, key)
		}
	}

	var gs GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	gs.ForceInvariants()
	gs.Normalize()
	return &gs, nil
}

// ForceInvariants resets the attributes that never change after creation.
func (gs *GameState) ForceInvariants() {
	if gs.Pet.Stage != StageAdult || gs.Pet.Gender != GenderMale {
		log.Printf("Forcing stage/gender from %q/%q", gs.Pet.Stage, gs.Pet.Gender)
	}
	gs.Pet.Stage = StageAdult
	gs.Pet.Gender = GenderMale
}

// Normalize repairs a decoded game so every bound holds: stats in range,
// logs within their caps, no nil collections.
func (gs *GameState) Normalize() {
	p := &gs.Pet
	if p.ID == "" {
		p.ID = NewID()
	}
	p.Name = truncate(strings.TrimSpace(p.Name), MaxNameLength)
	if p.Name == "" {
		p.Name = DefaultPetName
	}
	p.PetStats = p.PetStats.Clamp()
	p.Mood = MoodOf(*p)

	m := &gs.Memory
	if m.Interactions == nil {
		m.Interactions = []Interaction{}
	}
	if over := len(m.Interactions) - MaxInteractions; over > 0 {
		m.Interactions = m.Interactions[over:]
	}
	if m.ConversationHistory == nil {
		m.ConversationHistory = []ConversationEntry{}
	}
	if over := len(m.ConversationHistory) - MaxConversations; over > 0 {
		m.ConversationHistory = m.ConversationHistory[over:]
	}
	for i := range m.ConversationHistory {
		if m.ConversationHistory[i].WordsUsed == nil {
			m.ConversationHistory[i].WordsUsed = []string{}
		}
	}
	m.FavoriteFoods = capFavorites(m.FavoriteFoods)
	m.FavoriteGames = capFavorites(m.FavoriteGames)
	m.Vocabulary.Normalize()

	if gs.Inventory == nil {
		gs.Inventory = []CustomItem{}
	}
	for i := range gs.Inventory {
		item := &gs.Inventory[i]
		item.Name = truncate(item.Name, MaxItemNameLength)
		if item.ID == "" {
			item.ID = NewID()
		}
	}
	if gs.UnlockedItems == nil {
		gs.UnlockedItems = []string{}
	}
}

// Restore decodes a stored document and brings it up to now, ready for
// display.
func Restore(data []byte, now time.Time) (*GameState, error) {
	gs, err := Decode(data)
	if err != nil {
		return nil, err
	}
	gs.Tick(now)
	return gs, nil
}

func capFavorites(list []string) []string {
	if list == nil {
		return []string{}
	}
	if over := len(list) - MaxFavoriteThings; over > 0 {
		return list[over:]
	}
	return list
}
