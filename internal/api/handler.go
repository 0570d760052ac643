package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/internal/service"
)

// Services bundles the application services the HTTP layer dispatches to.
type Services struct {
	Auth      *service.AuthService
	Calendar  *service.Calendar
	Dashboard *service.DashboardService
	Tracker   *service.TrackerService
	Sales     *service.SalesService
	Stories   *service.StoryService
	Prompts   *service.PromptService
	Events    *service.EventService
	Reports   *service.ReportService
	Export    *service.ExportService
	Outbox    *service.OutboxService
}

type Handler struct {
	svc    Services
	logger *zap.Logger
}

func NewHandler(svc Services, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) fail(c *gin.Context, err error) {
	respondError(c, h.logger, err)
}

// bind decodes the JSON body into dst and writes the 400 response on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, err)
		return false
	}
	return true
}

func (h *Handler) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.fail(c, service.Invalid("invalid "+name))
		return 0, false
	}
	return id, true
}

// dateParam parses a YYYY-MM-DD path or query value; an empty value yields the zero date.
func (h *Handler) dateParam(c *gin.Context, raw string) (model.Date, bool) {
	if raw == "" {
		return model.Date{}, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		h.fail(c, service.Invalid("invalid date "+strconv.Quote(raw)))
		return model.Date{}, false
	}
	return d, true
}

func (h *Handler) optionalIDQuery(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.fail(c, service.Invalid("invalid "+name))
		return nil, false
	}
	return &id, true
}

func (h *Handler) intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.fail(c, service.Invalid("invalid "+name))
		return 0, false
	}
	return n, true
}

func (h *Handler) deleteByID(c *gin.Context, del func(ctx context.Context, userID uuid.UUID, id int64) error) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
