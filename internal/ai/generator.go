// Package ai composes the pet's speech: canned lines picked by mood, keyword
// replies to free text and learned words spliced into both.
package ai

import (
	"math/rand"
	"strings"
	"time"

	"pixelpet/internal/pet"
	"pixelpet/internal/vocab"
)

// Animation hints attached to responses.
const (
	AnimationEat   = "eat"
	AnimationPlay  = "play"
	AnimationHappy = "happy"
)

// Gate probabilities.
const (
	GreetingCalloutChance = 0.3
	FrequentCalloutChance = 0.3
	ThoughtCalloutChance  = 0.3
	FoodMemoryChance      = 0.3
	GameMemoryChance      = 0.3
	BestFriendChance      = 0.2
	AcknowledgeChance     = 0.5

	SpliceNameChance     = 0.4
	SpliceFavoriteChance = 0.3
	SpliceContextChance  = 0.3
	SpliceMoodChance     = 0.25
)

// Thresholds used when composing lines.
const (
	LongAbsenceHours     = 24
	ShortAbsenceHours    = 8
	RecentWordWindow     = 24 * time.Hour
	FrequentWordUses     = 3
	ThoughtCalloutWords  = 5
	BestFriendScore      = 80
	FavoriteSpliceWindow = 3
	SpliceMinLength      = 20
)

// Rand is the source of randomness. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Response is one thing the pet says.
type Response struct {
	Message      string   `json:"message"`
	Mood         pet.Mood `json:"mood"`
	Animation    string   `json:"animation,omitempty"`
	LearnedWords []string `json:"learnedWords,omitempty"`
}

// Generator picks and decorates lines. It is not safe for concurrent use.
type Generator struct {
	phrases *Phrases
	rand    Rand
}

// New returns a generator over the built-in phrases. A nil r uses a
// time-seeded source.
func New(r Rand) *Generator {
	return NewWithPhrases(DefaultPhrases(), r)
}

// NewWithPhrases returns a generator over a custom phrase set.
func NewWithPhrases(p *Phrases, r Rand) *Generator {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{phrases: p, rand: r}
}

// Greeting welcomes the owner back.
func (g *Generator) Greeting(gs *pet.GameState, now time.Time) Response {
	mood := gs.Pet.Mood
	v := &gs.Memory.Vocabulary

	if g.chance(GreetingCalloutChance) {
		if msg, ok := g.wordCallout(v, now); ok {
			return Response{Message: msg, Mood: mood}
		}
	}

	var away float64
	if last, ok := gs.Memory.LastInteraction(); ok {
		away = last.Timestamp.HoursSince(now)
	}
	relationship := gs.Relationship(now)

	var msg string
	switch {
	case away > LongAbsenceHours:
		msg = g.phrases.Absence.Long + g.pick(g.phrases.Greetings[mood])
	case away > ShortAbsenceHours:
		msg = g.phrases.Absence.Short + g.pick(g.phrases.Greetings[mood])
	case relationship > 80:
		msg = g.pick(g.phrases.Greetings[pet.MoodEcstatic])
	case relationship > 50:
		msg = g.pick(g.phrases.Greetings[pet.MoodHappy])
	case relationship < 20:
		msg = g.pick(g.phrases.Greetings[pet.MoodAngry])
	default:
		msg = g.pick(g.phrases.Greetings[mood])
	}
	return Response{Message: g.splice(msg, v, mood, "greeting"), Mood: mood}
}

// Feed reacts to a meal. A named food is mentioned with a quality that
// depends on how full the pet now is.
func (g *Generator) Feed(gs *pet.GameState, food string) Response {
	mood := gs.Pet.Mood
	msg := g.pick(g.phrases.Feed[mood])
	if food != "" {
		quality := g.phrases.Qualities["food_low"]
		if gs.Pet.Hunger > 80 {
			quality = g.phrases.Qualities["food_high"]
		}
		msg = fill(g.phrases.NamedFood, "{base}", msg, "{name}", food, "{quality}", quality)
	}
	return Response{
		Message:   g.splice(msg, &gs.Memory.Vocabulary, mood, "food"),
		Mood:      mood,
		Animation: AnimationEat,
	}
}

// Play reacts to a game.
func (g *Generator) Play(gs *pet.GameState, game string) Response {
	mood := gs.Pet.Mood
	msg := g.pick(g.phrases.Play[mood])
	if game != "" {
		quality := g.phrases.Qualities["game_low"]
		if gs.Pet.Happiness > 70 {
			quality = g.phrases.Qualities["game_high"]
		}
		msg = fill(g.phrases.NamedGame, "{base}", msg, "{name}", game, "{quality}", quality)
	}
	return Response{
		Message:   g.splice(msg, &gs.Memory.Vocabulary, mood, "play"),
		Mood:      mood,
		Animation: AnimationPlay,
	}
}

// Pet reacts to being petted.
func (g *Generator) Pet(gs *pet.GameState) Response {
	mood := gs.Pet.Mood
	msg := g.pick(g.phrases.Pet[mood])
	return Response{
		Message:   g.splice(msg, &gs.Memory.Vocabulary, mood, "pet"),
		Mood:      mood,
		Animation: AnimationHappy,
	}
}

// RandomThought is something the pet says unprompted.
func (g *Generator) RandomThought(gs *pet.GameState, now time.Time) Response {
	mood := gs.Pet.Mood
	m := &gs.Memory
	v := &m.Vocabulary

	if len(v.Words) > ThoughtCalloutWords && g.chance(ThoughtCalloutChance) {
		if msg, ok := g.wordCallout(v, now); ok {
			return Response{Message: msg, Mood: mood}
		}
	}
	if len(m.FavoriteFoods) > 0 && g.chance(FoodMemoryChance) {
		msg := fill(g.phrases.Memories.Food, "{name}", g.pick(m.FavoriteFoods))
		return Response{Message: g.splice(msg, v, mood, "food"), Mood: mood}
	}
	if len(m.FavoriteGames) > 0 && g.chance(GameMemoryChance) {
		msg := fill(g.phrases.Memories.Game, "{name}", g.pick(m.FavoriteGames))
		return Response{Message: g.splice(msg, v, mood, "play"), Mood: mood}
	}
	if gs.Relationship(now) > BestFriendScore && g.chance(BestFriendChance) {
		return Response{Message: g.splice(g.phrases.Memories.BestFriend, v, mood, ""), Mood: mood}
	}

	msg := g.pick(g.phrases.Thoughts[mood])
	return Response{Message: g.splice(msg, v, mood, ""), Mood: mood}
}

// Status describes the pet's most pressing condition.
func (g *Generator) Status(gs *pet.GameState) Response {
	mood := gs.Pet.Mood
	return Response{
		Message: g.splice(g.statusLine(gs.Pet.PetStats), &gs.Memory.Vocabulary, mood, ""),
		Mood:    mood,
	}
}

// Reply answers a free-text utterance. learned lists the words that were new
// in it.
func (g *Generator) Reply(gs *pet.GameState, input string, learned []string) Response {
	mood := gs.Pet.Mood
	v := &gs.Memory.Vocabulary
	lower := strings.ToLower(input)
	respond := func(msg string) Response {
		return Response{Message: msg, Mood: mood, LearnedWords: learned}
	}

	for _, t := range g.phrases.Triggers {
		if !containsAny(lower, t.Keywords) {
			continue
		}
		switch t.Kind {
		case TriggerName:
			if v.UserName == "" {
				continue
			}
			return respond(fill(t.Yes, "{name}", v.UserName))
		case TriggerStatus:
			return respond(g.Status(gs).Message)
		default:
			msg := t.No
			if t.When.Holds(gs.Pet.PetStats) {
				msg = t.Yes
			}
			return respond(g.splice(msg, v, mood, t.Context))
		}
	}

	if len(learned) > 0 && g.chance(AcknowledgeChance) {
		word := g.pick(learned)
		return respond(fill(g.pick(g.phrases.Acknowledgements), "{word}", word))
	}

	return respond(g.splice(g.pick(g.phrases.Defaults), v, mood, ""))
}

// Action returns the fixed line for a simple action: clean, sleep, wake or
// medicine.
func (g *Generator) Action(gs *pet.GameState, action string) Response {
	return Response{Message: g.phrases.Actions[action], Mood: gs.Pet.Mood}
}

// Renamed announces the pet's new name.
func (g *Generator) Renamed(gs *pet.GameState) Response {
	return Response{
		Message: fill(g.phrases.Actions["rename"], "{name}", gs.Pet.Name),
		Mood:    gs.Pet.Mood,
	}
}

// ItemAdded thanks the owner for a new item.
func (g *Generator) ItemAdded(gs *pet.GameState, item pet.CustomItem) Response {
	return Response{
		Message: fill(g.phrases.Actions["item_added"], "{name}", item.Name),
		Mood:    gs.Pet.Mood,
	}
}

// ItemUsed announces an item being used.
func (g *Generator) ItemUsed(gs *pet.GameState, item pet.CustomItem) Response {
	return Response{
		Message:   fill(g.phrases.Actions["item_used"], "{name}", item.Name),
		Mood:      gs.Pet.Mood,
		Animation: AnimationHappy,
	}
}

func (g *Generator) statusLine(stats pet.PetStats) string {
	for _, rule := range g.phrases.Status {
		matched := true
		for _, c := range rule.When {
			if !c.Holds(stats) {
				matched = false
				break
			}
		}
		if matched {
			return rule.Message
		}
	}
	return ""
}

// wordCallout mentions a word learned in the last day or, failing that and
// with some luck, a word the owner uses a lot.
func (g *Generator) wordCallout(v *vocab.Vocabulary, now time.Time) (string, bool) {
	if len(v.Words) == 0 {
		return "", false
	}
	if recent := v.RecentWords(now, RecentWordWindow); len(recent) > 0 {
		w := recent[g.rand.Intn(len(recent))]
		return fill(g.pick(g.phrases.LearnedCallouts), "{word}", w.Word, "{sentiment}", string(w.Sentiment)), true
	}
	if frequent := v.FrequentWords(FrequentWordUses); len(frequent) > 0 && g.chance(FrequentCalloutChance) {
		w := frequent[g.rand.Intn(len(frequent))]
		return fill(g.pick(g.phrases.FrequentCallouts), "{word}", w.Word), true
	}
	return "", false
}

// splice may work one learned word into msg. Each source of candidates is
// gated independently, then one candidate is chosen uniformly.
func (g *Generator) splice(msg string, v *vocab.Vocabulary, mood pet.Mood, context string) string {
	if len(v.Words) == 0 {
		return msg
	}

	var candidates []string
	if v.UserName != "" && g.chance(SpliceNameChance) {
		candidates = append(candidates, v.UserName)
	}
	if n := len(v.FavoriteWords); n > 0 && g.chance(SpliceFavoriteChance) {
		candidates = append(candidates, v.FavoriteWords[g.rand.Intn(min(FavoriteSpliceWindow, n))])
	}
	if context != "" {
		if words := v.WordsWithContext(context); len(words) > 0 && g.chance(SpliceContextChance) {
			candidates = append(candidates, words[g.rand.Intn(len(words))].Word)
		}
	}
	if words := v.WordsBySentiment(moodSentiment(mood)); len(words) > 0 && g.chance(SpliceMoodChance) {
		candidates = append(candidates, words[g.rand.Intn(len(words))].Word)
	}
	if len(candidates) == 0 {
		return msg
	}

	return insertWord(msg, g.pick(candidates))
}

// insertWord puts word before the last '!' or '?' of msg, or appends it to
// long messages without one.
func insertWord(msg, word string) string {
	if i := strings.LastIndexAny(msg, "!?"); i >= 0 {
		return msg[:i] + ", " + word + msg[i:]
	}
	if len([]rune(msg)) > SpliceMinLength {
		return msg + " " + word + "!"
	}
	return msg
}

// moodSentiment is the word sentiment that suits a mood.
func moodSentiment(m pet.Mood) vocab.Sentiment {
	switch m {
	case pet.MoodHappy, pet.MoodEcstatic:
		return vocab.SentimentPositive
	case pet.MoodSad, pet.MoodAngry:
		return vocab.SentimentNegative
	}
	return vocab.SentimentNeutral
}

func (g *Generator) chance(p float64) bool {
	return g.rand.Float64() < p
}

func (g *Generator) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[g.rand.Intn(len(list))]
}

func fill(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
