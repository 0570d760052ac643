package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/circuitbreaker"
	"sprintcoach/pkg/metrics"
	"sprintcoach/pkg/trace"
)

const (
	MinPostLength    = 150
	MaxPostLength    = 220
	MinCaptionLength = 60
	MaxCaptionLength = 90

	DraftSourceAgent    = "agent"
	DraftSourceTemplate = "template"
)

// DraftAgent turns story beats into a post, caption and hashtags.
type DraftAgent interface {
	Compose(ctx context.Context, req model.DraftRequest) (*model.DraftResponse, error)
}

// HTTPDraftAgent calls an external agent service at POST {baseURL}/story-draft.
type HTTPDraftAgent struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPDraftAgent(baseURL string, timeout time.Duration) *HTTPDraftAgent {
	return &HTTPDraftAgent{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *HTTPDraftAgent) Compose(ctx context.Context, req model.DraftRequest) (*model.DraftResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/story-draft", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if traceID := trace.FromContext(ctx); traceID != "" {
		httpReq.Header.Set(trace.HeaderName, traceID)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("draft agent unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("draft agent returned status %d", resp.StatusCode)
	}

	var out struct {
		Post        string   `json:"post"`
		ReelCaption string   `json:"reel_caption"`
		Hashtags    []string `json:"hashtags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode draft agent response: %w", err)
	}
	if strings.TrimSpace(out.Post) == "" {
		return nil, errors.New("draft agent returned an empty post")
	}
	return &model.DraftResponse{Post: out.Post, Caption: out.ReelCaption, Hashtags: out.Hashtags}, nil
}

// DraftComposer prefers the agent and falls back to the local template when it is absent,
// failing, or the breaker is open.
type DraftComposer struct {
	agent   DraftAgent
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewDraftComposer(agent DraftAgent, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) *DraftComposer {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig())
	}
	return &DraftComposer{agent: agent, breaker: breaker, logger: logger}
}

func (c *DraftComposer) Compose(ctx context.Context, req model.DraftRequest) *model.DraftResponse {
	if c.agent != nil {
		var resp *model.DraftResponse
		start := time.Now()
		err := c.breaker.Execute(func() error {
			var err error
			resp, err = c.agent.Compose(ctx, req)
			if err != nil {
				return err
			}
			return checkDraftMinimums(resp)
		})
		status := "success"
		if err != nil {
			status = "error"
			if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
				status = "open"
			}
		}
		metrics.RecordDraftAgentLatency(status, time.Since(start))
		if err == nil {
			resp.Post = truncate(resp.Post, MaxPostLength)
			resp.Caption = truncate(resp.Caption, MaxCaptionLength)
			if len(resp.Hashtags) == 0 {
				resp.Hashtags = hashtagsFor(req.Archetype)
			}
			resp.Source = DraftSourceAgent
			return resp
		}
		c.logger.Warn("draft agent failed, using template", zap.String("status", status), zap.Error(err))
	}
	return TemplateDraft(req)
}

var archetypeOpeners = map[string]string{
	"contrast": "I used to think one way. Then this happened.",
	"tiny_win": "A small win worth sharing.",
	"failure":  "I got this one wrong.",
	"vow":      "Here is my promise.",
}

// archetypeFillers pad template drafts that come out shorter than the minimums.
var archetypeFillers = map[string][]string{
	"contrast": {"The gap between the two was smaller than I expected.", "Seeing both sides changed how I work.", "Maybe you are closer to the other side than you think."},
	"tiny_win": {"It did not look like much from the outside.", "Small steps add up faster than big plans.", "Tomorrow I get to do it again."},
	"failure":  {"It stung more than I want to admit.", "Owning the mistake was the first real step.", "Next time I will catch it sooner."},
	"vow":      {"Saying it out loud makes it real.", "I will share how it goes, good or bad.", "Hold me to it."},
}

var defaultFillers = []string{"This one stayed with me all week.", "Writing it down helped me see it clearly.", "Maybe it helps you too."}

func fillersFor(archetype string) []string {
	if f, ok := archetypeFillers[archetype]; ok {
		return f
	}
	return defaultFillers
}

// pad appends filler sentences, cycling as needed, until s is at least n runes long.
func pad(s string, n int, fillers []string) string {
	for i := 0; utf8.RuneCountInString(s) < n; i++ {
		f := fillers[i%len(fillers)]
		if s == "" {
			s = f
		} else {
			s += " " + f
		}
	}
	return s
}

func checkDraftMinimums(d *model.DraftResponse) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(d.Post)); n < MinPostLength {
		return fmt.Errorf("draft agent post too short: %d chars", n)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(d.Caption)); n < MinCaptionLength {
		return fmt.Errorf("draft agent caption too short: %d chars", n)
	}
	return nil
}

var archetypeHashtags = map[string][]string{
	"contrast": {"#mindset", "#growth", "#perspective"},
	"tiny_win": {"#smallwins", "#progress", "#consistency"},
	"failure":  {"#lessonslearned", "#resilience", "#growth"},
	"vow":      {"#commitment", "#goals", "#accountability"},
}

func hashtagsFor(archetype string) []string {
	tags, ok := archetypeHashtags[archetype]
	if !ok {
		tags = []string{"#story", "#growth"}
	}
	return append([]string(nil), tags...)
}

// TemplateDraft composes a draft locally from the story beats.
func TemplateDraft(req model.DraftRequest) *model.DraftResponse {
	opener := archetypeOpeners[req.Archetype]
	parts := []string{opener, sentence(req.SensoryDetail), sentence(req.Conflict), sentence(req.TurningPoint), sentence(req.Lesson)}
	if req.CallToAction != "" {
		parts = append(parts, sentence(req.CallToAction))
	}
	fillers := fillersFor(req.Archetype)
	post := pad(strings.Join(nonEmpty(parts), " "), MinPostLength, fillers)
	caption := pad(strings.Join(nonEmpty([]string{sentence(req.Lesson), opener}), " "), MinCaptionLength, fillers)
	return &model.DraftResponse{
		Post:     truncate(post, MaxPostLength),
		Caption:  truncate(caption, MaxCaptionLength),
		Hashtags: hashtagsFor(req.Archetype),
		Source:   DraftSourceTemplate,
	}
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s[len(s)-1:], ".!?") {
		s += "."
	}
	return s
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// truncate cuts s to at most n runes, ending with an ellipsis when shortened.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
