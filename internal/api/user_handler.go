package api

import (
	"errors"
	"fmt"
	"net/http"

	"threadmerge/internal/logger"
	"threadmerge/internal/models"
	"threadmerge/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{userService: s}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	nickname := c.Param("nickname")

	var newUser models.User
	if err := c.ShouldBindJSON(&newUser); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	newUser.Nickname = nickname

	createdUser, conflictUsers, err := h.userService.CreateUser(c.Request.Context(), newUser)
	if err != nil && !errors.Is(err, models.ErrUserConflict) {
		logger.Log.Error("failed to create user", "nickname", nickname, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if len(conflictUsers) > 0 || errors.Is(err, models.ErrUserConflict) {
		c.JSON(http.StatusConflict, conflictUsers)
		return
	}

	c.JSON(http.StatusCreated, createdUser)
}

func (h *UserHandler) GetUserProfile(c *gin.Context) {
	nickname := c.Param("nickname")

	user, err := h.userService.GetUserByNickname(c.Request.Context(), nickname)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Can't find user with nickname: %s", nickname)})
			return
		}
		logger.Log.Error("failed to get user profile", "nickname", nickname, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, user)
}
