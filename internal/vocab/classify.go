// Package vocab implements the pet's word learning: tokenizing free text,
// classifying tokens with fixed keyword tables and keeping the learned
// vocabulary.
package vocab

import (
	"strings"
	"unicode"
)

// Category is the semantic bucket a word falls into.
type Category string

const (
	CategoryGreeting Category = "greeting"
	CategoryFood     Category = "food"
	CategoryEmotion  Category = "emotion"
	CategoryAction   Category = "action"
	CategoryName     Category = "name"
	CategoryPraise   Category = "praise"
	CategoryScolding Category = "scolding"
	CategoryQuestion Category = "question"
	CategoryOther    Category = "other"
)

// Sentiment is the emotional charge of a word.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Keyword tables. Matching is by substring except for QuestionWords, which
// match by prefix.
var (
	GreetingWords = []string{"hello", "hi", "hey", "good morning", "good evening", "yo", "sup", "greetings"}
	FoodWords     = []string{"food", "eat", "hungry", "meal", "snack", "treat", "yummy", "delicious", "tasty"}
	PraiseWords   = []string{"good", "great", "awesome", "amazing", "wonderful", "excellent", "perfect", "love", "like", "best"}
	ScoldingWords = []string{"bad", "wrong", "no", "stop", "dont", "never", "hate", "stupid", "dumb"}
	QuestionWords = []string{"what", "why", "how", "when", "where", "who", "which"}
	EmotionWords  = []string{"happy", "sad", "angry", "excited", "tired", "bored", "scared", "worried"}
	ActionWords   = []string{"play", "feed", "pet", "clean", "sleep", "wake", "go", "come", "run", "walk"}

	positiveEmotions = []string{"happy", "excited", "joy", "love"}
	negativeEmotions = []string{"sad", "angry", "scared", "worried"}
)

type categoryRule struct {
	category Category
	words    []string
	prefix   bool
}

// categoryRules is checked in order; the first hit wins.
var categoryRules = []categoryRule{
	{CategoryGreeting, GreetingWords, false},
	{CategoryFood, FoodWords, false},
	{CategoryPraise, PraiseWords, false},
	{CategoryScolding, ScoldingWords, false},
	{CategoryQuestion, QuestionWords, true},
	{CategoryEmotion, EmotionWords, false},
	{CategoryAction, ActionWords, false},
}

// Classify returns the category and sentiment of a single token.
func Classify(token string) (Category, Sentiment) {
	return ClassifyCategory(token), ClassifySentiment(token)
}

// ClassifyCategory resolves the category of token.
func ClassifyCategory(token string) Category {
	lower := strings.ToLower(token)
	for _, rule := range categoryRules {
		if rule.prefix {
			if hasAnyPrefix(lower, rule.words) {
				return rule.category
			}
			continue
		}
		if containsAny(lower, rule.words) {
			return rule.category
		}
	}
	return CategoryOther
}

// ClassifySentiment resolves the sentiment of token.
func ClassifySentiment(token string) Sentiment {
	lower := strings.ToLower(token)
	switch {
	case containsAny(lower, PraiseWords):
		return SentimentPositive
	case containsAny(lower, ScoldingWords):
		return SentimentNegative
	case containsAny(lower, EmotionWords):
		if containsAny(lower, positiveEmotions) {
			return SentimentPositive
		}
		if containsAny(lower, negativeEmotions) {
			return SentimentNegative
		}
	}
	return SentimentNeutral
}

// Tokenize lowercases text, drops everything but letters, digits,
// apostrophes and whitespace, and returns the remaining tokens longer than
// one character.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, text)

	var tokens []string
	for _, field := range strings.Fields(cleaned) {
		if len([]rune(field)) > 1 {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, words []string) bool {
	for _, w := range words {
		if strings.HasPrefix(s, w) {
			return true
		}
	}
	return false
}
