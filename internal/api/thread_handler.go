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

type ThreadHandler struct {
	threadService service.ThreadService
}

func NewThreadHandler(s service.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: s}
}

func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var newThread models.NewThread
	if err := c.ShouldBindJSON(&newThread); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	thread, err := h.threadService.CreateThread(c.Request.Context(), newThread)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOwnerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Can't find user with nickname: " + newThread.Author})
		case errors.Is(err, models.ErrThreadConflict):
			c.JSON(http.StatusConflict, gin.H{"message": "Thread already exists"})
		default:
			logger.Log.Error("failed to create thread", "author", newThread.Author, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, thread)
}

func (h *ThreadHandler) CreatePosts(c *gin.Context) {
	threadID, ok := parseThreadID(c)
	if !ok {
		return
	}

	var newPosts []models.NewPost
	if err := c.ShouldBindJSON(&newPosts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if len(newPosts) == 0 {
		c.JSON(http.StatusCreated, []*models.Post{})
		return
	}

	createdPosts, err := h.threadService.CreatePosts(c.Request.Context(), threadID, newPosts)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Can't find thread with id: %d", threadID)})
		case errors.Is(err, models.ErrOwnerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "One or more post authors not found"})
		default:
			logger.Log.Error("failed to create posts", "thread_id", threadID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, createdPosts)
}

func (h *ThreadHandler) GetThreadDetails(c *gin.Context) {
	threadID, ok := parseThreadID(c)
	if !ok {
		return
	}

	thread, err := h.threadService.GetThreadDetails(c.Request.Context(), threadID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Can't find thread with id: %d", threadID)})
			return
		}
		logger.Log.Error("failed to get thread details", "thread_id", threadID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, thread)
}

func (h *ThreadHandler) GetThreadPosts(c *gin.Context) {
	threadID, ok := parseThreadID(c)
	if !ok {
		return
	}

	limitStr := c.Query("limit")
	sinceStr := c.Query("since")
	descStr := c.DefaultQuery("desc", "false")

	limit := 100
	if limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	var since int
	if sinceStr != "" {
		parsed, err := strconv.Atoi(sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid since parameter"})
			return
		}
		since = parsed
	}

	desc, err := strconv.ParseBool(descStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid desc parameter"})
		return
	}

	posts, err := h.threadService.GetThreadPosts(c.Request.Context(), threadID, limit, since, desc)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Can't find thread with id: %d", threadID)})
			return
		}
		logger.Log.Error("failed to get thread posts", "thread_id", threadID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	c.JSON(http.StatusOK, posts)
}

func parseThreadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid thread ID"})
		return 0, false
	}
	return id, true
}
