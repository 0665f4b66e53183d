package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"threadmerge/internal/logger"
	"threadmerge/internal/models"
	"threadmerge/internal/service"

	"github.com/gin-gonic/gin"
)

// ActorHeader carries the nickname of the user performing a merge.
const ActorHeader = "X-Actor"

type Messages interface {
	T(key string) string
	Tf(key string, args ...any) string
}

type MergeHandler struct {
	mergeService service.MergeService
	userService  service.UserService
	messages     Messages
}

func NewMergeHandler(ms service.MergeService, us service.UserService, messages Messages) *MergeHandler {
	return &MergeHandler{mergeService: ms, userService: us, messages: messages}
}

type mergeBody struct {
	IDs   []int64 `json:"ids" binding:"required,min=1"`
	Merge bool    `json:"merge"`
}

// PreviewMerge answers GET /thread/:id/merge?ids=2,3 with the thread as it
// would look after the merge.
func (h *MergeHandler) PreviewMerge(c *gin.Context) {
	destinationID, ok := parseThreadID(c)
	if !ok {
		return
	}

	ids, err := parseIDList(c.Query("ids"))
	if err != nil || len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": h.messages.T("merge.error.invalid_request")})
		return
	}

	h.merge(c, destinationID, ids, false)
}

// MergeThreads answers POST /thread/:id/merge. The merge is committed only
// when the body asks for it.
func (h *MergeHandler) MergeThreads(c *gin.Context) {
	destinationID, ok := parseThreadID(c)
	if !ok {
		return
	}

	var body mergeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": h.messages.T("api.error.bad_request")})
		return
	}

	h.merge(c, destinationID, body.IDs, body.Merge)
}

func (h *MergeHandler) merge(c *gin.Context, destinationID int64, sourceIDs []int64, commit bool) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	thread, err := h.mergeService.Merge(c.Request.Context(), models.MergeRequest{
		DestinationID: destinationID,
		SourceIDs:     sourceIDs,
		Actor:         actor,
		Commit:        commit,
	})
	if err != nil && !(thread != nil && errors.Is(err, models.ErrMergeNotification)) {
		h.writeMergeError(c, destinationID, err)
		return
	}
	if err != nil {
		// The merge is durable; only a listener failed.
		logger.Log.Warn("merge committed with notification failure", "thread_id", destinationID, "error", err)
	}

	c.JSON(http.StatusOK, thread)
}

func (h *MergeHandler) writeMergeError(c *gin.Context, destinationID int64, err error) {
	var commitErr *models.MergeCommitError
	switch {
	case errors.As(err, &commitErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": commitErr.Message, "phase": commitErr.Phase})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": h.messages.Tf("thread.error.not_found", strconv.FormatInt(destinationID, 10))})
	case errors.Is(err, models.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"message": h.messages.T("merge.error.permission_denied")})
	case errors.Is(err, models.ErrEmptyDestination):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": h.messages.T("merge.error.empty_destination")})
	case errors.Is(err, models.ErrInvalidMergeRequest):
		c.JSON(http.StatusBadRequest, gin.H{"message": h.messages.T("merge.error.invalid_request")})
	default:
		logger.Log.Error("merge failed", "thread_id", destinationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": h.messages.T("api.error.internal")})
	}
}

func (h *MergeHandler) actor(c *gin.Context) (*models.User, bool) {
	nickname := strings.TrimSpace(c.GetHeader(ActorHeader))
	if nickname == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing " + ActorHeader + " header"})
		return nil, false
	}

	user, err := h.userService.GetUserByNickname(c.Request.Context(), nickname)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": h.messages.Tf("user.error.not_found", nickname)})
			return nil, false
		}
		logger.Log.Error("failed to resolve merge actor", "nickname", nickname, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": h.messages.T("api.error.internal")})
		return nil, false
	}
	return user, true
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
