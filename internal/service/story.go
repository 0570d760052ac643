package service

import (
	"context"

	"github.com/google/uuid"

	"sprintcoach/internal/model"
)

type StoryService struct {
	stories  StoryStore
	cal      *Calendar
	composer *DraftComposer
}

func NewStoryService(stories StoryStore, cal *Calendar, composer *DraftComposer) *StoryService {
	return &StoryService{stories: stories, cal: cal, composer: composer}
}

func (s *StoryService) List(ctx context.Context, userID uuid.UUID, f model.StoryFilter) ([]model.Story, error) {
	ss, err := s.stories.List(ctx, userID, f)
	return ss, translate(err)
}

func (s *StoryService) Get(ctx context.Context, userID uuid.UUID, id int64) (*model.Story, error) {
	st, err := s.stories.Get(ctx, userID, id)
	return st, translate(err)
}

func (s *StoryService) Create(ctx context.Context, userID uuid.UUID, in model.StoryInput) (*model.Story, error) {
	date, err := s.cal.OrToday(ctx, userID, in.Date)
	if err != nil {
		return nil, err
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	st := &model.Story{
		UserID:        userID,
		Date:          date,
		Title:         in.Title,
		Archetype:     in.Archetype,
		SensoryDetail: in.SensoryDetail,
		Conflict:      in.Conflict,
		TurningPoint:  in.TurningPoint,
		Lesson:        in.Lesson,
		Draft:         in.Draft,
		Tags:          tags,
		Status:        model.StoryStatusDraft,
	}
	if err := s.stories.Create(ctx, st); err != nil {
		return nil, translate(err)
	}
	return st, nil
}

func (s *StoryService) Update(ctx context.Context, userID uuid.UUID, id int64, p model.StoryPatch) (*model.Story, error) {
	st, err := s.stories.Update(ctx, userID, id, p)
	return st, translate(err)
}

func (s *StoryService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	return translate(s.stories.Delete(ctx, userID, id))
}

func (s *StoryService) Stats(ctx context.Context, userID uuid.UUID) (model.StoryStats, error) {
	st, err := s.stories.Stats(ctx, userID)
	return st, translate(err)
}

func (s *StoryService) Draft(ctx context.Context, req model.DraftRequest) *model.DraftResponse {
	return s.composer.Compose(ctx, req)
}
