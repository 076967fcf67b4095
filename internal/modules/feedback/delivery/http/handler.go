package http

import (
	"errors"
	"strconv"

	"anoa.com/newtongame/internal/modules/feedback/dto"
	feedbackService "anoa.com/newtongame/internal/modules/feedback/service"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/ratelimit"
	"anoa.com/newtongame/pkg/response"
	"anoa.com/newtongame/pkg/validator"
	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	service feedbackService.FeedbackService
}

func NewFeedbackHandler(service feedbackService.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateFeedbackRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	feedback, err := h.service.CreateFeedback(c.Request.Context(), userID, req.Note)
	if err != nil {
		var limitErr *ratelimit.ExceededError
		if errors.As(err, &limitErr) {
			secs := int(limitErr.RetryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
		}
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Feedback Added!", "feedback": feedback})
}

func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	notes, err := h.service.ListFeedback(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"feedback": notes})
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.DeleteFeedbackRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ResponseError(c, apperror.InvalidInput("id must be a positive integer"))
		return
	}

	if err := h.service.DeleteFeedback(c.Request.Context(), userID, req.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Note deleted"})
}
