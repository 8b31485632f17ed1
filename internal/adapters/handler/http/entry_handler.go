package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

// EntryHandler serves the per-day completion marks of a habit.
type EntryHandler struct {
	svc *services.TrackerService
}

func NewEntryHandler(svc *services.TrackerService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

type markRequest struct {
	Date string `json:"date" binding:"required"`
}

type setStatusRequest struct {
	Date   string `json:"date" binding:"required"`
	Status string `json:"status" binding:"required"`
}

type markResponse struct {
	Habit  *domain.Habit           `json:"habit"`
	Date   string                  `json:"date"`
	Status domain.CompletionStatus `json:"status"`
}

func (h *EntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits/:id")
	{
		habits.POST("/toggle", h.Toggle)
		habits.POST("/cycle", h.Cycle)
		habits.PUT("/status", h.SetStatus)
		habits.GET("/dates", h.Dates)
	}
}

func (h *EntryHandler) respond(c *gin.Context, habit *domain.Habit, date string, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if d, err := domain.NormalizeDate(date); err == nil {
		date = d
	}
	c.JSON(http.StatusOK, markResponse{
		Habit:  habit,
		Date:   date,
		Status: habit.Status(date),
	})
}

func (h *EntryHandler) Toggle(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.svc.Toggle(c.Param("id"), req.Date)
	h.respond(c, habit, req.Date, err)
}

func (h *EntryHandler) Cycle(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.svc.CycleStatus(c.Param("id"), req.Date)
	h.respond(c, habit, req.Date, err)
}

func (h *EntryHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := domain.ParseCompletionStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	habit, err := h.svc.SetStatus(c.Param("id"), req.Date, status)
	h.respond(c, habit, req.Date, err)
}

// Dates lists the completed days of a habit. With ?date= it answers whether
// that single day is completed.
func (h *EntryHandler) Dates(c *gin.Context) {
	id := c.Param("id")

	if date := c.Query("date"); date != "" {
		done, err := h.svc.IsCompletedOn(id, date)
		if err != nil {
			respondError(c, err)
			return
		}
		date, _ = domain.NormalizeDate(date)
		c.JSON(http.StatusOK, gin.H{"date": date, "completed": done})
		return
	}

	dates, err := h.svc.CompletedDates(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}
