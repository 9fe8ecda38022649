package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stream-service/errs"
	"stream-service/middleware"
	"stream-service/service"
)

type CoachHandler struct {
	svc service.CoachVideoService
}

func NewCoachHandler(svc service.CoachVideoService) *CoachHandler {
	return &CoachHandler{svc: svc}
}

// Upload accepts a multipart form with the video file and its metadata,
// stores the object, then records the row.
func (h *CoachHandler) Upload(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.ErrUnauthorized.Error()})
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	video, err := h.svc.Upload(
		c.Request.Context(),
		identity,
		c.PostForm("title"),
		c.PostForm("description"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *CoachHandler) List(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.ErrUnauthorized.Error()})
		return
	}

	videos, err := h.svc.List(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, videos)
}

// ListLive serves viewers the currently simulated-live videos.
func (h *CoachHandler) ListLive(c *gin.Context) {
	videos, err := h.svc.ListLive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *CoachHandler) GoLive(c *gin.Context) {
	h.setLive(c, true)
}

func (h *CoachHandler) EndLive(c *gin.Context) {
	h.setLive(c, false)
}

func (h *CoachHandler) setLive(c *gin.Context, live bool) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.ErrUnauthorized.Error()})
		return
	}

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	if live {
		err = h.svc.GoLive(c.Request.Context(), identity, videoID)
	} else {
		err = h.svc.EndLive(c.Request.Context(), identity, videoID)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CoachHandler) Delete(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.ErrUnauthorized.Error()})
		return
	}

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity, videoID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
