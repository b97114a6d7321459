package vocab

import (
	"log"
	"sort"
	"strings"
	"time"

	"pixelpet/internal/clock"
)

const (
	// MaxFavoriteWords is the length cap of Vocabulary.FavoriteWords.
	MaxFavoriteWords = 10
	// MaxWords bounds how many words the store keeps. Learning past it prunes
	// the least used word that is not a favorite.
	MaxWords = 500
	// DefaultContext tags words learned from conversation.
	DefaultContext = "conversation"
)

// LearnedWord is a single token the pet has picked up.
type LearnedWord struct {
	Word       string          `json:"word"`
	LearnedAt  clock.Timestamp `json:"learnedAt"`
	UsageCount int             `json:"usageCount"`
	Context    []string        `json:"context"`
	Sentiment  Sentiment       `json:"sentiment"`
	Category   Category        `json:"category"`
}

// HasContext reports whether the word was seen under tag.
func (w LearnedWord) HasContext(tag string) bool {
	for _, c := range w.Context {
		if c == tag {
			return true
		}
	}
	return false
}

// Vocabulary is the pet's learned word store. Words are kept in discovery
// order.
type Vocabulary struct {
	Words             []LearnedWord `json:"words"`
	TotalWordsLearned int           `json:"totalWordsLearned"`
	FavoriteWords     []string      `json:"favoriteWords"`
	UserName          string        `json:"userName,omitempty"`

	// Forgotten holds words pruned from Words. They already count toward
	// TotalWordsLearned.
	Forgotten []string `json:"forgotten,omitempty"`
}

// Ingest tokenizes text and learns every token. Unseen tokens are classified
// and returned; known tokens get their usage count bumped and context added.
// A forgotten word comes back into Words but is not reported again.
func (v *Vocabulary) Ingest(text, context string, now time.Time) []string {
	if context == "" {
		context = DefaultContext
	}

	var learned []string
	for _, token := range Tokenize(text) {
		if i := v.index(token); i >= 0 {
			w := &v.Words[i]
			w.UsageCount++
			if !w.HasContext(context) {
				w.Context = append(w.Context, context)
			}
			continue
		}

		relearned := v.remember(token)
		category, sentiment := Classify(token)
		v.Words = append(v.Words, LearnedWord{
			Word:       token,
			LearnedAt:  clock.At(now),
			UsageCount: 1,
			Context:    []string{context},
			Sentiment:  sentiment,
			Category:   category,
		})
		if !relearned {
			learned = append(learned, token)
		}
	}

	v.TotalWordsLearned += len(learned)
	v.recomputeFavorites()
	for len(v.Words) > MaxWords {
		v.prune()
	}
	return learned
}

// SetUserName records what the user calls themselves. Blank names are ignored.
func (v *Vocabulary) SetUserName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	v.UserName = name
	return true
}

// Lookup finds a learned word, ignoring case.
func (v *Vocabulary) Lookup(word string) (LearnedWord, bool) {
	if i := v.index(word); i >= 0 {
		return v.Words[i], true
	}
	return LearnedWord{}, false
}

// WordsByCategory returns the learned words in category.
func (v *Vocabulary) WordsByCategory(category Category) []LearnedWord {
	return v.filter(func(w LearnedWord) bool { return w.Category == category })
}

// WordsBySentiment returns the learned words with sentiment.
func (v *Vocabulary) WordsBySentiment(sentiment Sentiment) []LearnedWord {
	return v.filter(func(w LearnedWord) bool { return w.Sentiment == sentiment })
}

// WordsWithContext returns the learned words seen under tag.
func (v *Vocabulary) WordsWithContext(tag string) []LearnedWord {
	return v.filter(func(w LearnedWord) bool { return w.HasContext(tag) })
}

// RecentWords returns the words learned within window before now.
func (v *Vocabulary) RecentWords(now time.Time, window time.Duration) []LearnedWord {
	return v.filter(func(w LearnedWord) bool { return now.Sub(w.LearnedAt.Time) < window })
}

// FrequentWords returns the words used more than minUses times.
func (v *Vocabulary) FrequentWords(minUses int) []LearnedWord {
	return v.filter(func(w LearnedWord) bool { return w.UsageCount > minUses })
}

// Clone returns a deep copy.
func (v Vocabulary) Clone() Vocabulary {
	out := v
	if v.Words != nil {
		out.Words = make([]LearnedWord, len(v.Words))
		for i, w := range v.Words {
			w.Context = cloneStrings(w.Context)
			out.Words[i] = w
		}
	}
	out.FavoriteWords = cloneStrings(v.FavoriteWords)
	out.Forgotten = cloneStrings(v.Forgotten)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

// Normalize repairs a decoded vocabulary: nil slices become empty and the
// favorites list is rebuilt from usage counts.
func (v *Vocabulary) Normalize() {
	if v.Words == nil {
		v.Words = []LearnedWord{}
	}
	for i := range v.Words {
		w := &v.Words[i]
		w.Word = strings.ToLower(w.Word)
		if w.UsageCount < 1 {
			w.UsageCount = 1
		}
		if w.Context == nil {
			w.Context = []string{}
		}
	}
	if v.TotalWordsLearned < len(v.Words) {
		v.TotalWordsLearned = len(v.Words)
	}
	v.recomputeFavorites()
}

func (v *Vocabulary) index(word string) int {
	word = strings.ToLower(word)
	for i := range v.Words {
		if v.Words[i].Word == word {
			return i
		}
	}
	return -1
}

func (v *Vocabulary) filter(keep func(LearnedWord) bool) []LearnedWord {
	var out []LearnedWord
	for _, w := range v.Words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

// recomputeFavorites keeps the top words by usage; ties keep discovery order.
func (v *Vocabulary) recomputeFavorites() {
	ranked := make([]LearnedWord, len(v.Words))
	copy(ranked, v.Words)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].UsageCount > ranked[j].UsageCount
	})
	if len(ranked) > MaxFavoriteWords {
		ranked = ranked[:MaxFavoriteWords]
	}
	v.FavoriteWords = make([]string, len(ranked))
	for i, w := range ranked {
		v.FavoriteWords[i] = w.Word
	}
}

// prune drops the least used non-favorite word, oldest first on ties.
func (v *Vocabulary) prune() {
	favorite := make(map[string]bool, len(v.FavoriteWords))
	for _, w := range v.FavoriteWords {
		favorite[w] = true
	}

	victim := -1
	for i, w := range v.Words {
		if favorite[w.Word] {
			continue
		}
		if victim < 0 || w.UsageCount < v.Words[victim].UsageCount {
			victim = i
		}
	}
	if victim < 0 {
		victim = 0
	}

	log.Printf("Vocabulary full, forgetting %q", v.Words[victim].Word)
	v.Forgotten = append(v.Forgotten, v.Words[victim].Word)
	v.Words = append(v.Words[:victim], v.Words[victim+1:]...)
}

// remember drops word from Forgotten and reports whether it was there.
func (v *Vocabulary) remember(word string) bool {
	for i, w := range v.Forgotten {
		if w == word {
			v.Forgotten = append(v.Forgotten[:i], v.Forgotten[i+1:]...)
			return true
		}
	}
	return false
}
