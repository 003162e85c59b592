package lexicon

import (
	"strings"

	"go-mindgarden/types"
)

// Mode selects how a pattern is compared against normalized input.
type Mode string

const (
	// ModeToken matches a whole token after punctuation stripping.
	ModeToken Mode = "token"
	// ModeSubstring matches anywhere in the lower-cased text, including inside words.
	ModeSubstring Mode = "substring"
	// ModeExact matches only when the whole trimmed text equals the pattern.
	ModeExact Mode = "exact"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeToken, ModeSubstring, ModeExact:
		return true
	}
	return false
}

// Rule is one ordered lexicon entry.
type Rule struct {
	Pattern string
	Mode    Mode
	Emotion types.Emotion
}

// Intent is a canned conversational pattern with a fixed reply.
type Intent struct {
	Name     string
	Mode     Mode
	Patterns []string
	Reply    string
}

// DialogueText holds the fixed utterances of the dialogue engine.
type DialogueText struct {
	Opening      string
	TipOffer     string
	Affirmatives []string
	Negatives    []string
	Tips         string
	Decline      string
	CatchAll     string
}

// Ruleset is the parsed rule table. It is read-only after loading.
type Ruleset struct {
	Lexicon            []Rule
	Utterance          []Rule
	Intents            []Intent
	Replies            map[types.Emotion][]string
	Dialogue           DialogueText
	Suggestions        map[types.Emotion][]string
	SuggestionFallback string
}

var punctuation = strings.NewReplacer(".", "", ",", "", "!", "", "?", "", "'", "")

// Input is text prepared once for every match mode.
type Input struct {
	Text   string
	Tokens []string
	set    map[string]struct{}
}

// NewInput lower-cases and trims text, and splits a punctuation-stripped copy into tokens.
func NewInput(text string) Input {
	lower := strings.ToLower(strings.TrimSpace(text))
	tokens := strings.Fields(punctuation.Replace(lower))
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return Input{Text: lower, Tokens: tokens, set: set}
}

func (in Input) Matches(pattern string, mode Mode) bool {
	switch mode {
	case ModeToken:
		_, ok := in.set[pattern]
		return ok
	case ModeSubstring:
		return strings.Contains(in.Text, pattern)
	case ModeExact:
		return in.Text == pattern
	}
	return false
}

// First walks rules in order and returns the first one that matches.
func First(rules []Rule, in Input) (Rule, bool) {
	for _, r := range rules {
		if in.Matches(r.Pattern, r.Mode) {
			return r, true
		}
	}
	return Rule{}, false
}

// FirstIntent returns the first intent with any matching pattern.
func FirstIntent(intents []Intent, in Input) (Intent, bool) {
	for _, it := range intents {
		for _, p := range it.Patterns {
			if in.Matches(p, it.Mode) {
				return it, true
			}
		}
	}
	return Intent{}, false
}
