package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

type InstagramHandler struct {
	svc *services.InstagramService
}

func NewInstagramHandler(svc *services.InstagramService) *InstagramHandler {
	return &InstagramHandler{svc: svc}
}

type instagramRequest struct {
	Date      string `json:"date" binding:"required"`
	Followers *int   `json:"followers" binding:"required"`
	Following *int   `json:"following"`
	Posts     *int   `json:"posts"`
	Notes     string `json:"notes"`
}

func (r instagramRequest) input() services.InstagramInput {
	return services.InstagramInput{
		Date:      r.Date,
		Followers: *r.Followers,
		Following: r.Following,
		Posts:     r.Posts,
		Notes:     r.Notes,
	}
}

func (h *InstagramHandler) RegisterRoutes(router *gin.RouterGroup) {
	ig := router.Group("/instagram")
	{
		ig.GET("", h.List)
		ig.POST("", h.Create)
		ig.DELETE("", h.Clear)
		ig.GET("/stats", h.Stats)
		ig.GET("/export", h.Export)
		ig.POST("/import", h.Import)
		ig.PATCH("/:id", h.Update)
		ig.DELETE("/:id", h.Delete)
	}
}

func (h *InstagramHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Entries())
}

func (h *InstagramHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

func (h *InstagramHandler) Create(c *gin.Context) {
	var req instagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.svc.AddEntry(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *InstagramHandler) Update(c *gin.Context) {
	var req instagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.svc.UpdateEntry(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *InstagramHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InstagramHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InstagramHandler) Export(c *gin.Context) {
	payload, filename, err := h.svc.Export()
	if err != nil {
		respondError(c, err)
		return
	}
	sendAttachment(c, filename, payload)
}

func (h *InstagramHandler) Import(c *gin.Context) {
	payload, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Import(c.Request.Context(), payload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Entries())
}
