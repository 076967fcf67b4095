package http

import (
	"anoa.com/newtongame/internal/modules/points/dto"
	pointsService "anoa.com/newtongame/internal/modules/points/service"
	"anoa.com/newtongame/pkg/response"
	"anoa.com/newtongame/pkg/validator"
	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	service pointsService.PointsService
}

func NewPointsHandler(service pointsService.PointsService) *PointsHandler {
	return &PointsHandler{service: service}
}

func (h *PointsHandler) SavePoints(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SavePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	amount, err := validator.ParseInt("points", req.Points)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	recorded, err := h.service.RecordPoints(c.Request.Context(), userID, amount)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Points saved", "points": recorded})
}

func (h *PointsHandler) GetPoints(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	summary, err := h.service.TotalOrMaxPoints(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"points": summary})
}
