package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

const maxImportBytes = 5 << 20

var errImportNotJSON = errors.New("import file must be a .json file")

// DataHandler covers snapshot export/import and whole-state maintenance.
type DataHandler struct {
	svc *services.TrackerService
}

func NewDataHandler(svc *services.TrackerService) *DataHandler {
	return &DataHandler{svc: svc}
}

func (h *DataHandler) RegisterRoutes(router *gin.RouterGroup) {
	data := router.Group("/data")
	{
		data.GET("/export", h.Export)
		data.POST("/import", h.Import)
		data.POST("/refresh", h.Refresh)
		data.POST("/reset", h.Reset)
	}
}

func (h *DataHandler) Export(c *gin.Context) {
	payload, filename, err := h.svc.Export()
	if err != nil {
		respondError(c, err)
		return
	}
	sendAttachment(c, filename, payload)
}

func (h *DataHandler) Import(c *gin.Context) {
	payload, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Import(payload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.State())
}

func (h *DataHandler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.State())
}

func (h *DataHandler) Reset(c *gin.Context) {
	if err := h.svc.ResetToDefaults(c.Request.Context()); err != nil && !errors.Is(err, domain.ErrRemoteSync) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.State())
}

func sendAttachment(c *gin.Context, filename string, payload []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", payload)
}

// readUpload accepts either a multipart "file" field or the raw request body.
func readUpload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing upload: %w", err)
		}
		if !strings.EqualFold(filepath.Ext(header.Filename), ".json") {
			return nil, errImportNotJSON
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(payload) == 0 {
		return nil, errors.New("empty import payload")
	}
	return payload, nil
}
