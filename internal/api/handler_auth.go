package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/logger"
)

func (h *Handler) Register(c *gin.Context) {
	var in model.RegisterInput
	if !h.bind(c, &in) {
		return
	}

	u, err := h.svc.Auth.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("User registered", zap.String("user_id", u.ID.String()))
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

func (h *Handler) Login(c *gin.Context) {
	var in model.LoginInput
	if !h.bind(c, &in) {
		return
	}

	sess, err := h.svc.Auth.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.svc.Auth.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.svc.Auth.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var in model.ProfileInput
	if !h.bind(c, &in) {
		return
	}

	p, err := h.svc.Auth.UpdateProfile(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}
