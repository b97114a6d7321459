package pet

import (
	"log"
	"regexp"
	"strings"
	"time"

	"pixelpet/internal/clock"
)

// Every action below mutates the game in place and recomputes the mood
// before returning. Policy (can a sleeping pet eat?) is left to callers.

// Feed raises hunger by amount and remembers the food by name.
func (gs *GameState) Feed(now time.Time, amount int, name string) {
	p := &gs.Pet
	p.Hunger = clamp(p.Hunger + amount)
	p.Health = min(p.Health+FeedHealthIncrease, MaxStat)
	p.LastFed = clock.At(now)
	gs.AddInteraction(now, InteractionFeed, &amount, name)
	if name != "" {
		gs.Memory.FavoriteFoods = remember(gs.Memory.FavoriteFoods, name)
	}
	gs.refreshMood()
}

// Play raises happiness by amount at the cost of energy and remembers the
// game by name.
func (gs *GameState) Play(now time.Time, amount int, name string) {
	p := &gs.Pet
	p.Happiness = clamp(p.Happiness + amount)
	p.Energy = max(p.Energy-PlayEnergyDecrease, MinStat)
	p.LastPlayed = clock.At(now)
	gs.AddInteraction(now, InteractionPlay, &amount, name)
	if name != "" {
		gs.Memory.FavoriteGames = remember(gs.Memory.FavoriteGames, name)
	}
	gs.refreshMood()
}

// Pat is the pet() action.
func (gs *GameState) Pat(now time.Time) {
	p := &gs.Pet
	p.Happiness = min(p.Happiness+PetHappinessIncrease, MaxStat)
	p.Health = min(p.Health+PetHealthIncrease, MaxStat)
	gs.AddInteraction(now, InteractionPet, nil, "")
	gs.refreshMood()
}

// Clean resets hygiene to full.
func (gs *GameState) Clean(now time.Time) {
	p := &gs.Pet
	p.Hygiene = MaxStat
	p.Happiness = min(p.Happiness+CleanHappinessIncrease, MaxStat)
	p.LastCleaned = clock.At(now)
	p.DecayCarry.Hygiene = 0
	gs.AddInteraction(now, InteractionClean, nil, "")
	gs.refreshMood()
}

// ToggleSleep puts the pet to bed or wakes it up and returns the new state.
func (gs *GameState) ToggleSleep(now time.Time) bool {
	p := &gs.Pet
	p.IsSleeping = !p.IsSleeping
	p.LastSlept = clock.At(now)
	p.DecayCarry.Energy = 0

	kind := InteractionWake
	if p.IsSleeping {
		kind = InteractionSleep
	}
	gs.AddInteraction(now, kind, nil, "")
	log.Printf("Pet is now sleeping: %t", p.IsSleeping)
	gs.refreshMood()
	return p.IsSleeping
}

// GiveMedicine heals the pet and cures sickness. It does not check whether
// the pet was sick.
func (gs *GameState) GiveMedicine(now time.Time) {
	p := &gs.Pet
	p.Health = min(p.Health+MedicineEffect, MaxStat)
	p.IsSick = false
	gs.AddInteraction(now, InteractionMedicine, nil, "")
	gs.refreshMood()
}

// Rename sets a new name, truncated to MaxNameLength. Blank names are
// ignored.
func (gs *GameState) Rename(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	gs.Pet.Name = truncate(name, MaxNameLength)
	return true
}

// AddItem puts a new unlocked item into the inventory.
func (gs *GameState) AddItem(t ItemTemplate) CustomItem {
	item := CustomItem{
		ID:        NewID(),
		Name:      truncate(strings.TrimSpace(t.Name), MaxItemNameLength),
		Type:      t.Type,
		PixelData: t.PixelData,
		Color:     t.Color,
		Effect:    t.Effect.clone(),
		Unlocked:  true,
	}
	gs.Inventory = append(gs.Inventory, item)
	gs.UnlockedItems = append(gs.UnlockedItems, item.ID)
	gs.GameStats.ItemsCollected++
	log.Printf("Added item %q (%s)", item.Name, item.ID)
	return item.clone()
}

// UseItem applies an inventory item's effect. Unknown ids are ignored.
func (gs *GameState) UseItem(now time.Time, id string) (CustomItem, bool) {
	for i := range gs.Inventory {
		item := &gs.Inventory[i]
		if item.ID != id {
			continue
		}
		gs.Pet.PetStats = item.Effect.Apply(gs.Pet.PetStats)
		item.UseCount++
		gs.AddInteraction(now, InteractionCustom, nil, item.ID)
		gs.refreshMood()
		return item.clone(), true
	}
	return CustomItem{}, false
}

// FindItem looks up an inventory item by id or, failing that, by name.
func (gs *GameState) FindItem(key string) (CustomItem, bool) {
	for _, item := range gs.Inventory {
		if item.ID == key {
			return item.clone(), true
		}
	}
	for _, item := range gs.Inventory {
		if strings.EqualFold(item.Name, key) {
			return item.clone(), true
		}
	}
	return CustomItem{}, false
}

// LearnWords feeds text to the vocabulary and counts new words in the game
// stats.
func (gs *GameState) LearnWords(now time.Time, text, context string) []string {
	learned := gs.Memory.Vocabulary.Ingest(text, context, now)
	gs.GameStats.WordsLearned += len(learned)
	return learned
}

// Tick applies decay up to now.
func (gs *GameState) Tick(now time.Time) {
	gs.Pet.ApplyDecay(now)
}

// AddInteraction appends to the interaction log, evicting the oldest entry
// past MaxInteractions.
func (gs *GameState) AddInteraction(now time.Time, kind InteractionType, value *int, note string) Interaction {
	in := Interaction{
		ID:        NewID(),
		Type:      kind,
		Timestamp: clock.At(now),
		Note:      note,
	}
	if value != nil {
		v := *value
		in.Value = &v
	}

	m := &gs.Memory
	m.Interactions = append(m.Interactions, in)
	if over := len(m.Interactions) - MaxInteractions; over > 0 {
		m.Interactions = append([]Interaction(nil), m.Interactions[over:]...)
	}
	gs.GameStats.TotalInteractions++
	return in
}

var wordPattern = regexp.MustCompile(`\w+`)

// AddConversation appends a line to the conversation log, evicting the
// oldest entry past MaxConversations.
func (gs *GameState) AddConversation(now time.Time, speaker Speaker, message string) ConversationEntry {
	words := wordPattern.FindAllString(strings.ToLower(message), -1)
	if words == nil {
		words = []string{}
	}
	entry := ConversationEntry{
		ID:        NewID(),
		Speaker:   speaker,
		Message:   message,
		Timestamp: clock.At(now),
		WordsUsed: words,
	}

	m := &gs.Memory
	m.ConversationHistory = append(m.ConversationHistory, entry)
	if over := len(m.ConversationHistory) - MaxConversations; over > 0 {
		m.ConversationHistory = append([]ConversationEntry(nil), m.ConversationHistory[over:]...)
	}
	return entry
}

func (gs *GameState) refreshMood() {
	gs.Pet.Mood = MoodOf(gs.Pet)
}

// remember moves name to the end of list, keeping the newest
// MaxFavoriteThings distinct names.
func remember(list []string, name string) []string {
	out := make([]string, 0, len(list)+1)
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	out = append(out, name)
	if over := len(out) - MaxFavoriteThings; over > 0 {
		out = out[over:]
	}
	return out
}
