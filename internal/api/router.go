package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sprintcoach/pkg/otel"
	"sprintcoach/pkg/rbac"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	// Ready maps a dependency name to its health check.
	Ready map[string]Pinger
}

func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otel.GinMiddleware())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		for name, p := range cfg.Ready {
			if err := p.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	v1 := r.Group("/v1")
	v1.Use(AuthMiddleware(cfg.JWTSecret))
	{
		v1.GET("/me", h.Me)
		v1.GET("/profile", h.GetProfile)
		v1.PUT("/profile", h.UpdateProfile)

		read := v1.Group("", RequirePermission(rbac.PermissionTrackerRead))
		write := v1.Group("", RequirePermission(rbac.PermissionTrackerWrite))

		read.GET("/dashboard", h.Dashboard)

		read.GET("/habits", h.ListHabits)
		write.POST("/habits", h.CreateHabit)
		write.PATCH("/habits/:id", h.UpdateHabit)
		write.POST("/habits/:id/toggle", h.ToggleHabit)
		write.DELETE("/habits/:id", h.DeleteHabit)
		write.PUT("/habits/:id/logs/:date", h.LogHabit)
		read.GET("/habit-logs", h.ListHabitLogs)

		read.GET("/days/:date", h.GetDay)
		write.PUT("/days/:date", h.UpsertDay)

		read.GET("/content", h.ListContent)
		write.POST("/content", h.CreateContent)
		write.DELETE("/content/:id", h.DeleteContent)

		read.GET("/deepwork", h.ListDeepwork)
		write.POST("/deepwork", h.CreateDeepwork)
		write.DELETE("/deepwork/:id", h.DeleteDeepwork)

		read.GET("/social-reps", h.ListSocialReps)
		write.POST("/social-reps", h.AddSocialReps)
		write.PUT("/social-reps", h.SetSocialReps)

		read.GET("/workouts", h.ListWorkouts)
		write.POST("/workouts", h.CreateWorkout)
		write.DELETE("/workouts/:id", h.DeleteWorkout)

		read.GET("/sleep", h.ListSleep)
		write.PUT("/sleep/:date", h.UpsertSleep)

		read.GET("/leads", h.ListLeads)
		write.POST("/leads", h.CreateLead)
		read.GET("/leads/:id", h.GetLead)
		write.PATCH("/leads/:id", h.UpdateLead)
		write.PUT("/leads/:id/status", h.SetLeadStatus)
		write.DELETE("/leads/:id", h.DeleteLead)

		read.GET("/outreach", h.ListOutreach)
		write.POST("/outreach", h.LogOutreach)
		write.DELETE("/outreach/:id", h.DeleteOutreach)
		read.GET("/funnel", h.Funnel)

		read.GET("/deals", h.ListDeals)
		write.POST("/deals", h.CreateDeal)
		read.GET("/deals/:id", h.GetDeal)
		write.PATCH("/deals/:id", h.UpdateDeal)
		write.DELETE("/deals/:id", h.DeleteDeal)
		read.GET("/revenue", h.Revenue)

		read.GET("/stories", h.ListStories)
		write.POST("/stories", h.CreateStory)
		read.GET("/stories/stats", h.StoryStats)
		write.POST("/stories/draft", h.DraftStory)
		read.GET("/stories/:id", h.GetStory)
		write.PATCH("/stories/:id", h.UpdateStory)
		write.DELETE("/stories/:id", h.DeleteStory)

		read.GET("/events", h.ListEvents)
		write.POST("/events", h.RecordEvent)

		prompts := v1.Group("/prompts", RequirePermission(rbac.PermissionPromptsOwn))
		prompts.GET("", h.ListPrompts)
		prompts.POST("", h.CreatePrompt)
		prompts.DELETE("/:id", h.DeletePrompt)

		read.GET("/reports", h.Report)
		read.GET("/export", h.Export)

		admin := v1.Group("/admin", RequirePermission(rbac.PermissionOutboxReplay))
		admin.GET("/outbox/failed", h.FailedOutboxEvents)
		admin.POST("/outbox/requeue-failed", h.RequeueFailedOutboxEvents)
		admin.POST("/outbox/:id/requeue", h.RequeueOutboxEvent)
	}

	return r
}
