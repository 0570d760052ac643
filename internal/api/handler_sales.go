package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sprintcoach/internal/model"
	"sprintcoach/pkg/logger"
)

// Leads

func (h *Handler) ListLeads(c *gin.Context) {
	leads, err := h.svc.Sales.ListLeads(c.Request.Context(), currentUser(c), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (h *Handler) GetLead(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	lead, err := h.svc.Sales.GetLead(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

func (h *Handler) CreateLead(c *gin.Context) {
	var in model.LeadInput
	if !h.bind(c, &in) {
		return
	}
	lead, err := h.svc.Sales.CreateLead(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lead": lead})
}

func (h *Handler) UpdateLead(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var p model.LeadPatch
	if !h.bind(c, &p) {
		return
	}
	lead, err := h.svc.Sales.UpdateLead(c.Request.Context(), currentUser(c), id, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

func (h *Handler) SetLeadStatus(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var in model.LeadStatusInput
	if !h.bind(c, &in) {
		return
	}
	lead, err := h.svc.Sales.SetLeadStatus(c.Request.Context(), currentUser(c), id, in.Status)
	if err != nil {
		h.fail(c, err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("Lead status changed",
		zap.Int64("lead_id", id),
		zap.String("status", in.Status),
	)
	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

func (h *Handler) DeleteLead(c *gin.Context) {
	h.deleteByID(c, h.svc.Sales.DeleteLead)
}

// Outreach

func (h *Handler) ListOutreach(c *gin.Context) {
	leadID, ok := h.optionalIDQuery(c, "lead_id")
	if !ok {
		return
	}
	r, ok := h.dateRange(c)
	if !ok {
		return
	}
	logs, err := h.svc.Sales.ListOutreach(c.Request.Context(), currentUser(c), leadID, r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outreach": logs})
}

func (h *Handler) LogOutreach(c *gin.Context) {
	var in model.OutreachInput
	if !h.bind(c, &in) {
		return
	}
	o, err := h.svc.Sales.LogOutreach(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"outreach": o})
}

func (h *Handler) DeleteOutreach(c *gin.Context) {
	h.deleteByID(c, h.svc.Sales.DeleteOutreach)
}

func (h *Handler) Funnel(c *gin.Context) {
	weeks, ok := h.intQuery(c, "weeks")
	if !ok {
		return
	}
	funnel, err := h.svc.Sales.Funnel(c.Request.Context(), currentUser(c), weeks)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": funnel})
}

// Deals

func (h *Handler) ListDeals(c *gin.Context) {
	deals, err := h.svc.Sales.ListDeals(c.Request.Context(), currentUser(c), c.Query("status"), c.DefaultQuery("time", "all"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

func (h *Handler) GetDeal(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	deal, err := h.svc.Sales.GetDeal(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deal": deal})
}

func (h *Handler) CreateDeal(c *gin.Context) {
	var in model.DealInput
	if !h.bind(c, &in) {
		return
	}
	deal, err := h.svc.Sales.CreateDeal(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"deal": deal})
}

func (h *Handler) UpdateDeal(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var p model.DealPatch
	if !h.bind(c, &p) {
		return
	}
	deal, err := h.svc.Sales.UpdateDeal(c.Request.Context(), currentUser(c), id, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deal": deal})
}

func (h *Handler) DeleteDeal(c *gin.Context) {
	h.deleteByID(c, h.svc.Sales.DeleteDeal)
}

func (h *Handler) Revenue(c *gin.Context) {
	stats, err := h.svc.Sales.Revenue(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
