package http

import (
	"anoa.com/newtongame/internal/modules/gameprogress/dto"
	gameProgressService "anoa.com/newtongame/internal/modules/gameprogress/service"
	"anoa.com/newtongame/pkg/response"
	"anoa.com/newtongame/pkg/validator"
	"github.com/gin-gonic/gin"
)

type GameProgressHandler struct {
	service gameProgressService.GameProgressService
}

func NewGameProgressHandler(service gameProgressService.GameProgressService) *GameProgressHandler {
	return &GameProgressHandler{service: service}
}

func (h *GameProgressHandler) SaveGameScore(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SaveGameScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	in, err := parseSubmission(req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.SubmitGameScore(c.Request.Context(), userID, in)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{
		"message":      "Game score saved",
		"bestScore":    result.BestScore,
		"pointsToAdd":  result.PointsToAdd,
		"wasNewRecord": result.WasNewRecord,
	})
}

func (h *GameProgressHandler) GetGameScore(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.GetGameScoreQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	gameType, err := gameProgressService.NormalizeGameType(query.GameType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	level, err := validator.ParseIntString("level", query.Level)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	score, err := h.service.GetGameScore(c.Request.Context(), userID, gameType, level)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"score": score})
}

func (h *GameProgressHandler) ListGameScores(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	scores, err := h.service.ListGameScores(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"scores": scores})
}

// parseSubmission checks fields in request order so the first problem is reported.
func parseSubmission(req dto.SaveGameScoreRequest) (dto.GameScoreSubmission, error) {
	gameType, err := gameProgressService.NormalizeGameType(req.GameType)
	if err != nil {
		return dto.GameScoreSubmission{}, err
	}
	level, err := validator.ParseInt("level", req.Level)
	if err != nil {
		return dto.GameScoreSubmission{}, err
	}
	score, err := validator.ParseInt("score", req.Score)
	if err != nil {
		return dto.GameScoreSubmission{}, err
	}

	return dto.GameScoreSubmission{
		GameType:  gameType,
		Level:     level,
		Score:     score,
		Completed: req.Completed,
	}, nil
}
