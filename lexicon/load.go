package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"go-mindgarden/types"
)

//go:embed rules.yaml
var defaultRules []byte

var (
	defaultSet  *Ruleset
	defaultOnce sync.Once
)

// Default returns the embedded rule table, parsed once.
func Default() *Ruleset {
	defaultOnce.Do(func() {
		rs, err := Parse(defaultRules)
		if err != nil {
			panic(fmt.Sprintf("embedded rules.yaml is invalid: %v", err))
		}
		defaultSet = rs
	})
	return defaultSet
}

// Load reads a rule table from path. An empty path yields the embedded table.
func Load(path string) (*Ruleset, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rs, nil
}

type ruleGroup struct {
	Emotion  string   `yaml:"emotion"`
	Mode     string   `yaml:"mode"`
	Keywords []string `yaml:"keywords"`
}

type intentDoc struct {
	Name     string   `yaml:"name"`
	Mode     string   `yaml:"mode"`
	Patterns []string `yaml:"patterns"`
	Reply    string   `yaml:"reply"`
}

type rulesDoc struct {
	Lexicon   []ruleGroup         `yaml:"lexicon"`
	Utterance []ruleGroup         `yaml:"utterance"`
	Intents   []intentDoc         `yaml:"intents"`
	Replies   map[string][]string `yaml:"replies"`
	Dialogue  struct {
		Opening      string   `yaml:"opening"`
		TipOffer     string   `yaml:"tipOffer"`
		Affirmatives []string `yaml:"affirmatives"`
		Negatives    []string `yaml:"negatives"`
		Tips         string   `yaml:"tips"`
		Decline      string   `yaml:"decline"`
		CatchAll     string   `yaml:"catchAll"`
	} `yaml:"dialogue"`
	Suggestions struct {
		Fallback string              `yaml:"fallback"`
		Table    map[string][]string `yaml:"table"`
	} `yaml:"suggestions"`
}

// Parse decodes and validates a rule table.
func Parse(data []byte) (*Ruleset, error) {
	var doc rulesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	lex, err := flatten("lexicon", doc.Lexicon, ModeToken)
	if err != nil {
		return nil, err
	}
	utt, err := flatten("utterance", doc.Utterance, ModeSubstring)
	if err != nil {
		return nil, err
	}

	intents := make([]Intent, 0, len(doc.Intents))
	for i, it := range doc.Intents {
		mode := Mode(it.Mode)
		if it.Mode == "" {
			mode = ModeSubstring
		}
		if !mode.IsValid() {
			return nil, fmt.Errorf("intent %d (%s): unknown mode %q", i, it.Name, it.Mode)
		}
		if it.Name == "" || strings.TrimSpace(it.Reply) == "" || len(it.Patterns) == 0 {
			return nil, fmt.Errorf("intent %d (%s): name, patterns and reply are required", i, it.Name)
		}
		intents = append(intents, Intent{
			Name:     it.Name,
			Mode:     mode,
			Patterns: normalizeAll(it.Patterns),
			Reply:    it.Reply,
		})
	}

	replies, err := emotionTable("replies", doc.Replies)
	if err != nil {
		return nil, err
	}
	suggestions, err := emotionTable("suggestions", doc.Suggestions.Table)
	if err != nil {
		return nil, err
	}

	d := doc.Dialogue
	dialogue := DialogueText{
		Opening:      d.Opening,
		TipOffer:     d.TipOffer,
		Affirmatives: normalizeAll(d.Affirmatives),
		Negatives:    normalizeAll(d.Negatives),
		Tips:         d.Tips,
		Decline:      d.Decline,
		CatchAll:     d.CatchAll,
	}
	if dialogue.TipOffer == "" || dialogue.Tips == "" || dialogue.Decline == "" || dialogue.CatchAll == "" {
		return nil, fmt.Errorf("dialogue: tipOffer, tips, decline and catchAll are required")
	}
	if strings.TrimSpace(doc.Suggestions.Fallback) == "" {
		return nil, fmt.Errorf("suggestions: fallback is required")
	}

	return &Ruleset{
		Lexicon:            lex,
		Utterance:          utt,
		Intents:            intents,
		Replies:            replies,
		Dialogue:           dialogue,
		Suggestions:        suggestions,
		SuggestionFallback: doc.Suggestions.Fallback,
	}, nil
}

// flatten expands keyword groups into ordered rules, preserving group order
// and keyword order within each group.
func flatten(section string, groups []ruleGroup, defaultMode Mode) ([]Rule, error) {
	var rules []Rule
	for i, g := range groups {
		e, ok := types.ParseEmotion(g.Emotion)
		if !ok {
			return nil, fmt.Errorf("%s group %d: unknown emotion %q", section, i, g.Emotion)
		}
		mode := defaultMode
		if g.Mode != "" {
			mode = Mode(g.Mode)
		}
		if !mode.IsValid() {
			return nil, fmt.Errorf("%s group %d: unknown mode %q", section, i, g.Mode)
		}
		for _, kw := range normalizeAll(g.Keywords) {
			rules = append(rules, Rule{Pattern: kw, Mode: mode, Emotion: e})
		}
	}
	return rules, nil
}

func emotionTable(section string, raw map[string][]string) (map[types.Emotion][]string, error) {
	out := make(map[types.Emotion][]string, len(raw))
	for k, v := range raw {
		e, ok := types.ParseEmotion(k)
		if !ok {
			return nil, fmt.Errorf("%s: unknown emotion %q", section, k)
		}
		if len(v) == 0 {
			return nil, fmt.Errorf("%s: %s has no entries", section, e)
		}
		out[e] = v
	}
	return out, nil
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
