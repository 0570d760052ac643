package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/logger"
)

// Prompts

func (h *Handler) ListPrompts(c *gin.Context) {
	prompts, err := h.svc.Prompts.List(c.Request.Context(), currentUser(c), c.Query("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

func (h *Handler) CreatePrompt(c *gin.Context) {
	var in model.PromptInput
	if !h.bind(c, &in) {
		return
	}
	p, err := h.svc.Prompts.Create(c.Request.Context(), currentUser(c), currentRole(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prompt": p})
}

func (h *Handler) DeletePrompt(c *gin.Context) {
	h.deleteByID(c, h.svc.Prompts.Delete)
}

// Events

func (h *Handler) ListEvents(c *gin.Context) {
	limit, ok := h.intQuery(c, "limit")
	if !ok {
		return
	}
	events, err := h.svc.Events.Recent(c.Request.Context(), currentUser(c), c.Query("name"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) RecordEvent(c *gin.Context) {
	var in model.EventInput
	if !h.bind(c, &in) {
		return
	}
	e, err := h.svc.Events.Record(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": e})
}

// Reports & export

func (h *Handler) Report(c *gin.Context) {
	rep, err := h.svc.Reports.Report(c.Request.Context(), currentUser(c), c.DefaultQuery("range", "7days"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) Export(c *gin.Context) {
	exp, err := h.svc.Export.Export(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sprintcoach-export.json"`)
	c.JSON(http.StatusOK, exp)
}

// Admin

func (h *Handler) FailedOutboxEvents(c *gin.Context) {
	limit, ok := h.intQuery(c, "limit")
	if !ok {
		return
	}
	events, err := h.svc.Outbox.Failed(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

func (h *Handler) RequeueOutboxEvent(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Outbox.Requeue(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("Outbox event requeued",
		zap.Int64("event_id", id),
		zap.String("admin_id", currentUser(c).String()),
	)
	c.JSON(http.StatusOK, gin.H{"status": "requeued", "event_id": id})
}

func (h *Handler) RequeueFailedOutboxEvents(c *gin.Context) {
	n, err := h.svc.Outbox.RequeueFailed(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("Failed outbox events requeued",
		zap.Int64("count", n),
		zap.String("admin_id", currentUser(c).String()),
	)
	c.JSON(http.StatusOK, gin.H{"status": "requeued", "count": n})
}
