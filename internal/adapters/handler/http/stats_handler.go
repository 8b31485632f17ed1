package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

type StatsHandler struct {
	svc *services.TrackerService
}

func NewStatsHandler(svc *services.TrackerService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/state", h.GetState)
	r.GET("/stats", h.GetStats)
	r.GET("/stats/progress", h.GetProgress)
}

func (h *StatsHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State())
}

func (h *StatsHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Statistics())
}

func (h *StatsHandler) GetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Progress())
}
