package types

import "testing"

func TestSentimentOf(t *testing.T) {
	t.Parallel()

	cases := map[Emotion]Sentiment{
		Happy: Positive, Calm: Positive, Excited: Positive, Content: Positive, Love: Positive,
		Sad: Negative, Anxious: Negative, Frustrated: Negative, Stressed: Negative,
		Grateful: NeutralPolarity, Confident: NeutralPolarity, Neutral: NeutralPolarity,
	}
	if len(cases) != len(AllEmotions) {
		t.Fatalf("cases=%d, emotions=%d", len(cases), len(AllEmotions))
	}
	for e, want := range cases {
		if got := SentimentOf(e); got != want {
			t.Fatalf("SentimentOf(%s)=%s, want %s", e, got, want)
		}
	}
}

func TestParseEmotion(t *testing.T) {
	t.Parallel()

	if e, ok := ParseEmotion("  LOVE "); !ok || e != Love {
		t.Fatalf("ParseEmotion=%s,%v", e, ok)
	}
	if _, ok := ParseEmotion("bliss"); ok {
		t.Fatalf("bliss should not parse")
	}
}

func TestConversationStateZeroValueIsIdle(t *testing.T) {
	t.Parallel()

	var s ConversationState
	if s.Awaiting() {
		t.Fatalf("zero state should not be awaiting")
	}
}
