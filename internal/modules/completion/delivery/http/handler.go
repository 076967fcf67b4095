package http

import (
	"anoa.com/newtongame/internal/modules/completion/dto"
	completionService "anoa.com/newtongame/internal/modules/completion/service"
	"anoa.com/newtongame/pkg/response"
	"anoa.com/newtongame/pkg/validator"
	"github.com/gin-gonic/gin"
)

type CompletionHandler struct {
	service completionService.CompletionService
}

func NewCompletionHandler(service completionService.CompletionService) *CompletionHandler {
	return &CompletionHandler{service: service}
}

func (h *CompletionHandler) SaveCompletion(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SaveCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	gameType, err := completionService.ParseMilestone(req.GameType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var quizScore *float64
	if gameType == completionService.GameQuiz {
		score, err := validator.ParseFloat("quizScore", req.QuizScore)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		quizScore = &score
	}

	result, err := h.service.ReportMilestone(c.Request.Context(), userID, gameType, quizScore)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	message := "Completion saved"
	if gameType == completionService.GameQuiz && !result.QuizCompleted {
		message = "Quiz score below passing threshold"
	}

	response.OK(c, gin.H{
		"message":       message,
		"quizCompleted": result.QuizCompleted,
		"completion":    result.Completion,
	})
}

func (h *CompletionHandler) GetCompletion(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	snapshot, err := h.service.GetCompletion(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"completion": snapshot})
}
