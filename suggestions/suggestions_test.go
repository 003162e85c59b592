package suggestions

import (
	"testing"

	"go-mindgarden/lexicon"
	"go-mindgarden/types"
)

func TestFor_CoversEveryEmotion(t *testing.T) {
	t.Parallel()

	e := New(lexicon.Default())
	for _, em := range types.AllEmotions {
		if got := e.For(em); len(got) == 0 {
			t.Fatalf("For(%s) is empty", em)
		}
	}
}

func TestFor_FallbackForUnlistedEmotion(t *testing.T) {
	t.Parallel()

	e := New(lexicon.Default())
	for _, em := range []types.Emotion{types.Grateful, types.Confident, types.Neutral} {
		got := e.For(em)
		if len(got) != 1 || got[0] != "Take care of yourself and consider professional support if needed" {
			t.Fatalf("For(%s)=%v", em, got)
		}
	}
}

func TestFor_DeterministicAndCopied(t *testing.T) {
	t.Parallel()

	e := New(lexicon.Default())
	a := e.For(types.Stressed)
	if len(a) != 3 || a[0] != "Practice progressive muscle relaxation" {
		t.Fatalf("stressed=%v", a)
	}
	a[0] = "mutated"

	b := e.For(types.Stressed)
	if b[0] != "Practice progressive muscle relaxation" {
		t.Fatalf("table mutated through returned slice: %v", b)
	}
}
