package suggestions

import (
	"go-mindgarden/lexicon"
	"go-mindgarden/types"
)

// Engine maps an emotion to an ordered list of coping suggestions.
type Engine struct {
	table    map[types.Emotion][]string
	fallback string
}

func New(rs *lexicon.Ruleset) *Engine {
	return &Engine{table: rs.Suggestions, fallback: rs.SuggestionFallback}
}

// For never returns an empty list: emotions without an entry get the fallback.
// The returned slice is a copy.
func (e *Engine) For(emotion types.Emotion) []string {
	list, ok := e.table[emotion]
	if !ok || len(list) == 0 {
		return []string{e.fallback}
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
