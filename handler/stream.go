package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"stream-service/dto"
	"stream-service/errs"
	"stream-service/middleware"
	"stream-service/service"
)

type StreamHandler struct {
	svc service.StreamService
}

func NewStreamHandler(svc service.StreamService) *StreamHandler {
	return &StreamHandler{svc: svc}
}

// Manage is the single stream-management endpoint, dispatched on the
// action field. Every failure is serialized uniformly as {error: message}
// with status 400; only the text differs between categories.
func (h *StreamHandler) Manage(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.ErrUnauthorized.Error()})
		return
	}

	var req dto.StreamManagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case "create":
		resp, err := h.svc.Create(ctx, identity, req.Title)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)

	case "end":
		if err := h.svc.End(ctx, identity, req.StreamID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	case "getViewerToken":
		resp, err := h.svc.ViewerToken(ctx, identity, req.StreamID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)

	case "rejoin":
		resp, err := h.svc.Rejoin(ctx, identity)
		if errors.Is(err, errs.ErrNoActiveStream) {
			c.JSON(http.StatusOK, gin.H{"noActiveStream": true})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}

// ListActive serves stream discovery, newest first.
func (h *StreamHandler) ListActive(c *gin.Context) {
	streams, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, streams)
}
