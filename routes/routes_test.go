package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"go-mindgarden/db"
	"go-mindgarden/dialogue"
	"go-mindgarden/handlers"
	"go-mindgarden/lexicon"
	"go-mindgarden/metrics"
	"go-mindgarden/nlp"
	"go-mindgarden/suggestions"
	"go-mindgarden/types"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics.Init()

	rs := lexicon.Default()
	classifier := nlp.NewClassifier(rs, suggestions.New(rs))
	engine := dialogue.NewEngine(rs, classifier, dialogue.NewRoundRobin())
	sessions := dialogue.NewSessions(engine, dialogue.NewMemoryStateStore())
	return SetupRouter(classifier, sessions, db.NewMemoryStore())
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestAnalyzeText(t *testing.T) {
	r := newTestRouter()

	w := do(t, r, http.MethodPost, "/api/mindgarden/analyze/text", map[string]string{
		"userId": "u1",
		"text":   "I feel really stressed and overwhelmed today",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var result types.AnalysisResult
	decode(t, w, &result)
	if result.Emotion != types.Stressed || result.Sentiment != types.Negative || result.UserID != "u1" {
		t.Fatalf("result=%+v", result)
	}
	if len(result.Suggestions) != 3 {
		t.Fatalf("Suggestions=%v", result.Suggestions)
	}
}

func TestAnalyzeText_BlankIsRejected(t *testing.T) {
	r := newTestRouter()

	for _, body := range []interface{}{map[string]string{"userId": "u1", "text": "   "}, nil} {
		w := do(t, r, http.MethodPost, "/api/mindgarden/analyze/text", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status=%d, want 400", w.Code)
		}
		if !strings.Contains(w.Body.String(), "error") {
			t.Fatalf("body=%s", w.Body.String())
		}
	}
}

func TestAnalyzeVoice(t *testing.T) {
	r := newTestRouter()

	w := do(t, r, http.MethodPost, "/api/mindgarden/analyze/voice", map[string]interface{}{
		"userId":          "u1",
		"transcript":      "I love this song",
		"durationSeconds": 4.2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var v types.VoiceAnalysis
	decode(t, w, &v)
	if v.Emotion != types.Love || v.Spoken != "You sound love" || v.Duration != 4.2 {
		t.Fatalf("voice=%+v", v)
	}
}

func TestHistoryAndMood(t *testing.T) {
	r := newTestRouter()

	texts := []string{"what a great day", "so lonely tonight", "nothing to report", "feeling calm", "I am happy", "wow", "bad news"}
	for _, text := range texts {
		if w := do(t, r, http.MethodPost, "/api/mindgarden/analyze/text", map[string]string{"userId": "u1", "text": text}); w.Code != http.StatusOK {
			t.Fatalf("analyze %q status=%d", text, w.Code)
		}
	}

	w := do(t, r, http.MethodGet, "/api/mindgarden/history?userId=u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var history struct {
		Analyses []types.AnalysisResult `json:"analyses"`
	}
	decode(t, w, &history)
	if len(history.Analyses) != db.DefaultHistoryLimit {
		t.Fatalf("history len=%d, want %d", len(history.Analyses), db.DefaultHistoryLimit)
	}
	if history.Analyses[0].Text != "bad news" {
		t.Fatalf("newest=%q, want bad news", history.Analyses[0].Text)
	}

	if w := do(t, r, http.MethodGet, "/api/mindgarden/history?userId=u1&limit=zero", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status=%d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/mindgarden/history", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing user status=%d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/mindgarden/mood?userId=u1", nil)
	var mood types.MoodSummary
	decode(t, w, &mood)
	// great, calm, happy, wow(excited) are positive; lonely, bad negative; one neutral.
	if mood.Total != 7 || mood.Positive != 4 || mood.Negative != 2 || mood.Neutral != 1 {
		t.Fatalf("mood=%+v", mood)
	}
	if mood.PositivityScore != 57 {
		t.Fatalf("PositivityScore=%d, want 57", mood.PositivityScore)
	}
}

func TestSuggestions(t *testing.T) {
	r := newTestRouter()

	w := do(t, r, http.MethodGet, "/api/mindgarden/suggestions/Anxious", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body struct {
		Emotion     types.Emotion `json:"emotion"`
		Suggestions []string      `json:"suggestions"`
	}
	decode(t, w, &body)
	if body.Emotion != types.Anxious || len(body.Suggestions) != 3 {
		t.Fatalf("body=%+v", body)
	}

	if w := do(t, r, http.MethodGet, "/api/mindgarden/suggestions/bliss", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown emotion status=%d, want 400", w.Code)
	}
}

func TestChatFlow(t *testing.T) {
	r := newTestRouter()
	tips := lexicon.Default().Dialogue.Tips

	w := do(t, r, http.MethodPost, "/api/mindgarden/chat", map[string]string{"message": "today was terrible"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var first handlers.ChatResponse
	decode(t, w, &first)
	if first.ConversationID == "" || first.UserTurn.Sender != types.SenderUser || first.BotTurn.EmotionContext != types.Sad {
		t.Fatalf("first=%+v", first)
	}

	w = do(t, r, http.MethodPost, "/api/mindgarden/chat", map[string]string{"conversationId": first.ConversationID, "message": "yes"})
	var second handlers.ChatResponse
	decode(t, w, &second)
	if second.BotTurn.Content != tips || second.ConversationID != first.ConversationID {
		t.Fatalf("second=%+v", second)
	}

	w = do(t, r, http.MethodGet, "/api/mindgarden/chat/"+first.ConversationID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("transcript status=%d", w.Code)
	}
	var transcript struct {
		Turns []types.ChatTurn `json:"turns"`
	}
	decode(t, w, &transcript)
	// opening, user, bot, user, bot
	if len(transcript.Turns) != 5 || transcript.Turns[0].Intent != dialogue.IntentOpening {
		t.Fatalf("turns=%+v", transcript.Turns)
	}

	if w := do(t, r, http.MethodDelete, "/api/mindgarden/chat/"+first.ConversationID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/mindgarden/chat/"+first.ConversationID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("deleted transcript status=%d, want 404", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/mindgarden/chat", map[string]string{"message": ""}); w.Code != http.StatusBadRequest {
		t.Fatalf("blank message status=%d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter()

	if w := do(t, r, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/", nil); !strings.Contains(w.Body.String(), "Mindgarden") {
		t.Fatalf("welcome body=%s", w.Body.String())
	}
	do(t, r, http.MethodPost, "/api/mindgarden/analyze/text", map[string]string{"userId": "u1", "text": "calm"})
	w := do(t, r, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "mindgarden_classifications_total") {
		t.Fatalf("metrics status=%d", w.Code)
	}
}

func TestChat_CountsTipOfferFromTurnState(t *testing.T) {
	r := newTestRouter()
	offered := metrics.TipOffersTotal.WithLabelValues("offered")
	accepted := metrics.TipOffersTotal.WithLabelValues("accepted")
	beforeOffered, beforeAccepted := testutil.ToFloat64(offered), testutil.ToFloat64(accepted)

	w := do(t, r, http.MethodPost, "/api/mindgarden/chat", map[string]string{"message": "today was terrible"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var first handlers.ChatResponse
	decode(t, w, &first)
	if got := testutil.ToFloat64(offered) - beforeOffered; got != 1 {
		t.Fatalf("offered delta=%v, want 1", got)
	}

	w = do(t, r, http.MethodPost, "/api/mindgarden/chat", map[string]string{
		"conversationId": first.ConversationID,
		"message":        "yes",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := testutil.ToFloat64(offered) - beforeOffered; got != 1 {
		t.Fatalf("accepting must not count another offer, delta=%v", got)
	}
	if got := testutil.ToFloat64(accepted) - beforeAccepted; got != 1 {
		t.Fatalf("accepted delta=%v, want 1", got)
	}
}
