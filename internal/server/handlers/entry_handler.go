package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/export"
	"github.com/mbodj/packhouse/internal/repository"
	"github.com/mbodj/packhouse/internal/service/packlog"
	"github.com/mbodj/packhouse/internal/service/reporting"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EntryHandler exposes the packing log over HTTP: form submission, listing,
// aggregates, and the workbook download.
type EntryHandler struct {
	packlogSvc   *packlog.Service
	reportingSvc *reporting.Service
	logger       *zap.Logger
}

// NewEntryHandler constructs the HTTP handler adapter.
func NewEntryHandler(packlogSvc *packlog.Service, reportingSvc *reporting.Service, logger *zap.Logger) *EntryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryHandler{packlogSvc: packlogSvc, reportingSvc: reportingSvc, logger: logger}
}

// Create ingests a submitted packing-log form. Invalid input names the
// failing field; on any failure the submitted values are echoed back so the
// caller can redisplay the form without losing what was typed.
func (h *EntryHandler) Create(c *gin.Context) {
	var form models.EntryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.packlogSvc.Submit(c.Request.Context(), form)
	if err != nil {
		var fieldErr *packlog.FieldError
		switch {
		case errors.As(err, &fieldErr):
			h.logger.Warn("entry rejected", zap.String("field", fieldErr.Field), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error(), "field": fieldErr.Field, "form": form})
		case errors.Is(err, repository.ErrStorageUnavailable):
			h.logger.Error("entry not persisted", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record store unavailable, entry not saved", "form": form})
		default:
			h.logger.Error("failed to submit entry", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save entry", "form": form})
		}
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// List returns every stored entry in insertion order.
func (h *EntryHandler) List(c *gin.Context) {
	entries, err := h.packlogSvc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list entries", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Summary returns the aggregate totals over the whole log.
func (h *EntryHandler) Summary(c *gin.Context) {
	summary, err := h.reportingSvc.Summarize(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to summarize entries", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record store unavailable"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Export streams the two-sheet workbook as a download.
func (h *EntryHandler) Export(c *gin.Context) {
	entries, summary, err := h.reportingSvc.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load entries for export", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record store unavailable"})
		return
	}

	data, err := export.Workbook(entries, summary)
	if err != nil {
		h.logger.Error("failed to build workbook", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("packing_log_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
