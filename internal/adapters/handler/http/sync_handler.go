package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tracker/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

// Flusher writes out any save still waiting in the debounce window.
type Flusher interface {
	Flush(ctx context.Context) error
}

type SyncHandler struct {
	store   *services.SyncStore
	flusher Flusher
}

// NewSyncHandler builds the sync endpoints. flusher may be nil.
func NewSyncHandler(store *services.SyncStore, flusher Flusher) *SyncHandler {
	return &SyncHandler{store: store, flusher: flusher}
}

// syncStatusResponse adds the token subject when the request was
// authenticated.
type syncStatusResponse struct {
	domain.SyncStatus
	AuthenticatedAs string `json:"authenticatedAs,omitempty"`
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	s := router.Group("/sync")
	{
		s.GET("/status", h.Status)
		s.POST("/force", h.Force)
	}
}

func (h *SyncHandler) Status(c *gin.Context) {
	resp := syncStatusResponse{SyncStatus: h.store.Status()}
	if userID, ok := middleware.GetUserID(c); ok {
		resp.AuthenticatedAs = userID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SyncHandler) Force(c *gin.Context) {
	ctx := c.Request.Context()

	if h.flusher != nil {
		if err := h.flusher.Flush(ctx); err != nil && !errors.Is(err, domain.ErrRemoteSync) {
			respondError(c, err)
			return
		}
	}

	if err := h.store.ForceSync(ctx); err != nil {
		if errors.Is(err, domain.ErrRemoteSync) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "status": h.store.Status()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Status())
}
