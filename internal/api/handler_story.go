package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sprintcoach/internal/model"
)

func (h *Handler) ListStories(c *gin.Context) {
	f := model.StoryFilter{
		Search:    c.Query("q"),
		Archetype: c.Query("archetype"),
		Status:    c.Query("status"),
	}
	stories, err := h.svc.Stories.List(c.Request.Context(), currentUser(c), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

func (h *Handler) GetStory(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	story, err := h.svc.Stories.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

func (h *Handler) CreateStory(c *gin.Context) {
	var in model.StoryInput
	if !h.bind(c, &in) {
		return
	}
	story, err := h.svc.Stories.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"story": story})
}

func (h *Handler) UpdateStory(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var p model.StoryPatch
	if !h.bind(c, &p) {
		return
	}
	story, err := h.svc.Stories.Update(c.Request.Context(), currentUser(c), id, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

func (h *Handler) DeleteStory(c *gin.Context) {
	h.deleteByID(c, h.svc.Stories.Delete)
}

func (h *Handler) StoryStats(c *gin.Context) {
	stats, err := h.svc.Stories.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DraftStory composes a post and caption; it never fails once the request is valid.
func (h *Handler) DraftStory(c *gin.Context) {
	var req model.DraftRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Stories.Draft(c.Request.Context(), req))
}
