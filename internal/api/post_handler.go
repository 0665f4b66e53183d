package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"threadmerge/internal/logger"
	"threadmerge/internal/models"
	"threadmerge/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{postService: s}
}

func (h *PostHandler) GetPostDetails(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid post ID"})
		return
	}

	post, err := h.postService.GetPostDetails(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Can't find post with id #%d", postID)})
			return
		}
		logger.Log.Error("failed to get post details", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) GetStatus(c *gin.Context) {
	status, err := h.postService.GetDatabaseStatus(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to get database status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *PostHandler) ClearDatabase(c *gin.Context) {
	if err := h.postService.ClearAllData(c.Request.Context()); err != nil {
		logger.Log.Error("failed to clear database", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.Status(http.StatusOK)
}
