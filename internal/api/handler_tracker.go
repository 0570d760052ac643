package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sprintcoach/internal/model"
	"sprintcoach/internal/util"
)

func (h *Handler) Dashboard(c *gin.Context) {
	date, ok := h.dateParam(c, c.Query("date"))
	if !ok {
		return
	}

	d, err := h.svc.Dashboard.Get(c.Request.Context(), currentUser(c), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// dateRange resolves ?from=&to= in the caller's zone.
func (h *Handler) dateRange(c *gin.Context) (util.DateRange, bool) {
	r, err := h.svc.Calendar.ParseRange(c.Request.Context(), currentUser(c), c.Query("from"), c.Query("to"))
	if err != nil {
		h.fail(c, err)
		return util.DateRange{}, false
	}
	return r, true
}

// Habits

func (h *Handler) ListHabits(c *gin.Context) {
	habits, err := h.svc.Tracker.ListHabits(c.Request.Context(), currentUser(c), c.Query("active") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

func (h *Handler) CreateHabit(c *gin.Context) {
	var in model.HabitInput
	if !h.bind(c, &in) {
		return
	}

	habit, err := h.svc.Tracker.CreateHabit(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"habit": habit})
}

func (h *Handler) UpdateHabit(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var p model.HabitPatch
	if !h.bind(c, &p) {
		return
	}

	habit, err := h.svc.Tracker.UpdateHabit(c.Request.Context(), currentUser(c), id, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

func (h *Handler) ToggleHabit(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	habit, err := h.svc.Tracker.ToggleHabit(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

func (h *Handler) DeleteHabit(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Tracker.DeleteHabit(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) LogHabit(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	date, ok := h.dateParam(c, c.Param("date"))
	if !ok {
		return
	}
	var in model.HabitLogInput
	if !h.bind(c, &in) {
		return
	}

	l, err := h.svc.Tracker.LogHabit(c.Request.Context(), currentUser(c), id, date, in.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit_log": l})
}

func (h *Handler) ListHabitLogs(c *gin.Context) {
	r, ok := h.dateRange(c)
	if !ok {
		return
	}
	habitID, ok := h.optionalIDQuery(c, "habit_id")
	if !ok {
		return
	}

	logs, err := h.svc.Tracker.ListHabitLogs(c.Request.Context(), currentUser(c), r, habitID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit_logs": logs})
}

// Days

func (h *Handler) GetDay(c *gin.Context) {
	date, ok := h.dateParam(c, c.Param("date"))
	if !ok {
		return
	}

	v, err := h.svc.Tracker.Day(c.Request.Context(), currentUser(c), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) UpsertDay(c *gin.Context) {
	date, ok := h.dateParam(c, c.Param("date"))
	if !ok {
		return
	}
	var in model.DayInput
	if !h.bind(c, &in) {
		return
	}

	d, err := h.svc.Tracker.UpsertDay(c.Request.Context(), currentUser(c), date, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": d})
}

// Content

func (h *Handler) ListContent(c *gin.Context) {
	r, ok := h.dateRange(c)
	if !ok {
		return
	}
	items, err := h.svc.Tracker.ListContent(c.Request.Context(), currentUser(c), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": items})
}

func (h *Handler) CreateContent(c *gin.Context) {
	var in model.ContentInput
	if !h.bind(c, &in) {
		return
	}
	item, err := h.svc.Tracker.CreateContent(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"content": item})
}

func (h *Handler) DeleteContent(c *gin.Context) {
	h.deleteByID(c, h.svc.Tracker.DeleteContent)
}

// Deep work

func (h *Handler) ListDeepwork(c *gin.Context) {
	r, ok := h.dateRange(c)
	if !ok {
		return
	}
	items, err := h.svc.Tracker.ListDeepwork(c.Request.Context(), currentUser(c), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deepwork": items})
}

func (h *Handler) CreateDeepwork(c *gin.Context) {
	var in model.DeepworkInput
	if !h.bind(c, &in) {
		return
	}
	item, err := h.svc.Tracker.CreateDeepwork(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"deepwork": item})
}

func (h *Handler) DeleteDeepwork(c *gin.Context) {
	h.deleteByID(c, h.svc.Tracker.DeleteDeepwork)
}

// Social reps

func (h *Handler) ListSocialReps(c *gin.Context) {
	r, ok := h.dateRange(c)
	if !ok {
		return
	}
	items, err := h.svc.Tracker.ListSocialReps(c.Request.Context(), currentUser(c), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"social_reps": items})
}

// AddSocialReps increments the date's count; SetSocialReps replaces it.
func (h *Handler) AddSocialReps(c *gin.Context) {
	var in model.SocialRepsAddInput
	if !h.bind(c, &in) {
		return
	}
	reps, err := h.svc.Tracker.AddSocialReps(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"social_reps": reps})
}

func (h *Handler) SetSocialReps(c *gin.Context) {
	var in model.SocialRepsInput
	if !h.bind(c, &in) {
		return
	}
	reps, err := h.svc.Tracker.SetSocialReps(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"social_reps": reps})
}

// Workouts

func (h *Handler) ListWorkouts(c *gin.Context) {
	r, ok := h.dateRange(c)
	if !ok {
		return
	}
	items, err := h.svc.Tracker.ListWorkouts(c.Request.Context(), currentUser(c), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workouts": items})
}

func (h *Handler) CreateWorkout(c *gin.Context) {
	var in model.WorkoutInput
	if !h.bind(c, &in) {
		return
	}
	item, err := h.svc.Tracker.CreateWorkout(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workout": item})
}

func (h *Handler) DeleteWorkout(c *gin.Context) {
	h.deleteByID(c, h.svc.Tracker.DeleteWorkout)
}

// Sleep

func (h *Handler) ListSleep(c *gin.Context) {
	r, ok := h.dateRange(c)
	if !ok {
		return
	}
	items, err := h.svc.Tracker.ListSleep(c.Request.Context(), currentUser(c), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sleep": items})
}

func (h *Handler) UpsertSleep(c *gin.Context) {
	date, ok := h.dateParam(c, c.Param("date"))
	if !ok {
		return
	}
	var in model.SleepInput
	if !h.bind(c, &in) {
		return
	}
	s, err := h.svc.Tracker.UpsertSleep(c.Request.Context(), currentUser(c), date, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sleep": s})
}
