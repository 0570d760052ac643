package service

import (
	"context"

	"github.com/google/uuid"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/rbac"
)

const defaultPromptWeight = 1

// DefaultPrompts are the global prompts seeded by the admin CLI.
var DefaultPrompts = []model.PromptInput{
	{Kind: model.PromptKindMotivational, Text: model.DefaultMotivationalPrompt, Weight: 10},
	{Kind: model.PromptKindMotivational, Text: "Show up today. Momentum beats motivation.", Weight: 5},
	{Kind: model.PromptKindMotivational, Text: "Deep work first, everything else second.", Weight: 5},
	{Kind: model.PromptKindMotivational, Text: "One more rep. One more post. One more call.", Weight: 3},
}

type PromptService struct {
	prompts PromptStore
	cache   DashboardCache
}

func NewPromptService(prompts PromptStore, cache DashboardCache) *PromptService {
	if cache == nil {
		cache = noopCache{}
	}
	return &PromptService{prompts: prompts, cache: cache}
}

func (s *PromptService) List(ctx context.Context, userID uuid.UUID, kind string) ([]model.Prompt, error) {
	ps, err := s.prompts.ListVisible(ctx, userID, kind)
	return ps, translate(err)
}

// Create stores a prompt owned by the user, or a global one when in.Global is set and role allows it.
func (s *PromptService) Create(ctx context.Context, userID uuid.UUID, role string, in model.PromptInput) (*model.Prompt, error) {
	p := &model.Prompt{Kind: in.Kind, Text: in.Text, Weight: in.Weight}
	if p.Weight <= 0 {
		p.Weight = defaultPromptWeight
	}
	if in.Global {
		if err := rbac.CheckPermission(role, rbac.PermissionPromptsGlobal); err != nil {
			return nil, ErrForbidden
		}
	} else {
		p.UserID = &userID
	}
	if err := s.prompts.Create(ctx, p); err != nil {
		return nil, translate(err)
	}
	// Other users pick up a new global prompt when their cached dashboards expire.
	s.cache.Invalidate(ctx, userID)
	return p, nil
}

func (s *PromptService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	if err := s.prompts.DeleteOwn(ctx, userID, id); err != nil {
		return translate(err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// SeedDefaults inserts any missing default global prompt and reports how many were added.
func (s *PromptService) SeedDefaults(ctx context.Context) (int, error) {
	added := 0
	for _, p := range DefaultPrompts {
		ok, err := s.prompts.CreateGlobalIfMissing(ctx, p.Kind, p.Text, p.Weight)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}
