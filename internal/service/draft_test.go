package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/circuitbreaker"
)

func draftRequest() model.DraftRequest {
	return model.DraftRequest{
		Archetype:     "tiny_win",
		SensoryDetail: "The kettle clicked off at 5am",
		Conflict:      "I wanted to stay in bed",
		TurningPoint:  "I wrote one sentence instead of a whole post",
		Lesson:        "Small starts beat perfect plans",
		CallToAction:  "What is your one sentence today?",
	}
}

func TestTemplateDraftRespectsLimits(t *testing.T) {
	req := draftRequest()
	req.Conflict = strings.Repeat("long conflict ", 40)

	d := TemplateDraft(req)
	assert.Equal(t, DraftSourceTemplate, d.Source)
	assert.LessOrEqual(t, utf8.RuneCountInString(d.Post), MaxPostLength)
	assert.True(t, strings.HasSuffix(d.Post, "…"))
	assertDraftBounds(t, d)
	assert.True(t, strings.HasPrefix(d.Caption, "Small starts beat perfect plans."))
	assert.Contains(t, d.Hashtags, "#smallwins")
}

func assertDraftBounds(t *testing.T, d *model.DraftResponse) {
	t.Helper()
	post, caption := utf8.RuneCountInString(d.Post), utf8.RuneCountInString(d.Caption)
	assert.GreaterOrEqual(t, post, MinPostLength)
	assert.LessOrEqual(t, post, MaxPostLength)
	assert.GreaterOrEqual(t, caption, MinCaptionLength)
	assert.LessOrEqual(t, caption, MaxCaptionLength)
}

func TestTemplateDraftPadsShortBeats(t *testing.T) {
	d := TemplateDraft(model.DraftRequest{Archetype: "vow", SensoryDetail: "Rain", Conflict: "Tired", TurningPoint: "Walked", Lesson: "Go anyway!"})
	assert.True(t, strings.HasPrefix(d.Post, "Here is my promise. Rain. Tired. Walked. Go anyway! Saying it out loud makes it real."))
	assert.True(t, strings.HasPrefix(d.Caption, "Go anyway! Here is my promise."))
	assertDraftBounds(t, d)

	for _, archetype := range []string{"contrast", "tiny_win", "failure", "vow", "unknown"} {
		d := TemplateDraft(model.DraftRequest{Archetype: archetype, Lesson: "Start small"})
		assertDraftBounds(t, d)
	}
}

func TestComposerUsesAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/story-draft", r.URL.Path)
		var req model.DraftRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tiny_win", req.Archetype)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"post":         strings.Repeat("a", 300),
			"reel_caption": strings.Repeat("c", 70),
			"hashtags":     []string{"#one"},
		})
	}))
	defer srv.Close()

	c := NewDraftComposer(NewHTTPDraftAgent(srv.URL, time.Second), nil, zap.NewNop())
	d := c.Compose(context.Background(), draftRequest())

	assert.Equal(t, DraftSourceAgent, d.Source)
	assert.Equal(t, MaxPostLength, utf8.RuneCountInString(d.Post))
	assert.Equal(t, strings.Repeat("c", 70), d.Caption)
	assert.Equal(t, []string{"#one"}, d.Hashtags)
}

func TestComposerRejectsShortAgentOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"post":         "Too short to post.",
			"reel_caption": "Start small.",
			"hashtags":     []string{"#one"},
		})
	}))
	defer srv.Close()

	c := NewDraftComposer(NewHTTPDraftAgent(srv.URL, time.Second), nil, zap.NewNop())
	d := c.Compose(context.Background(), draftRequest())

	assert.Equal(t, DraftSourceTemplate, d.Source)
	assertDraftBounds(t, d)
}

func TestComposerFallsBackAndOpensBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute, HalfOpenMaxRequests: 1})
	c := NewDraftComposer(NewHTTPDraftAgent(srv.URL, time.Second), breaker, zap.NewNop())

	for i := 0; i < 4; i++ {
		d := c.Compose(context.Background(), draftRequest())
		assert.Equal(t, DraftSourceTemplate, d.Source)
	}
	assert.Equal(t, int32(2), calls.Load(), "open breaker stops calling the agent")
	assert.Equal(t, circuitbreaker.StateOpen, breaker.GetState())
}

func TestComposerWithoutAgent(t *testing.T) {
	c := NewDraftComposer(nil, nil, zap.NewNop())
	assert.Equal(t, DraftSourceTemplate, c.Compose(context.Background(), draftRequest()).Source)
}
