package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

type HabitHandler struct {
	svc *services.TrackerService
}

func NewHabitHandler(svc *services.TrackerService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Goal        int    `json:"goal"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Notes       string `json:"notes"`
}

type updateHabitRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Goal        *int    `json:"goal"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Notes       *string `json:"notes"`
}

func (r updateHabitRequest) patch() (domain.HabitPatch, error) {
	patch := domain.HabitPatch{
		Name:        r.Name,
		Description: r.Description,
		Goal:        r.Goal,
		Color:       r.Color,
		Icon:        r.Icon,
		Notes:       r.Notes,
	}
	if r.Category != nil {
		category, err := domain.ParseCategory(*r.Category)
		if err != nil {
			return patch, err
		}
		patch.Category = &category
	}
	if r.Priority != nil {
		priority, err := domain.ParsePriority(*r.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	return patch, nil
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("", h.List)
		habits.POST("", h.Create)
		habits.GET("/:id", h.Get)
		habits.PATCH("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
	}
}

func (h *HabitHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State().Habits)
}

func (h *HabitHandler) Get(c *gin.Context) {
	habit, err := h.svc.Habit(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Create(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := domain.CategoryOther
	if req.Category != "" {
		parsed, err := domain.ParseCategory(req.Category)
		if err != nil {
			respondError(c, err)
			return
		}
		category = parsed
	}

	settings := domain.HabitSettings{
		Description: req.Description,
		Goal:        req.Goal,
		Color:       req.Color,
		Icon:        req.Icon,
		Notes:       req.Notes,
	}
	if req.Priority != "" {
		priority, err := domain.ParsePriority(req.Priority)
		if err != nil {
			respondError(c, err)
			return
		}
		settings.Priority = priority
	}

	habit, err := h.svc.AddHabit(req.Name, category, settings)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch, err := req.patch()
	if err != nil {
		respondError(c, err)
		return
	}

	habit, err := h.svc.UpdateHabit(c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	if err := h.svc.RemoveHabit(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
