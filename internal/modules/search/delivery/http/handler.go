package http

import (
	"anoa.com/newtongame/internal/modules/search/dto"
	searchService "anoa.com/newtongame/internal/modules/search/service"
	"anoa.com/newtongame/pkg/response"
	"anoa.com/newtongame/pkg/validator"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service searchService.SearchService
}

func NewSearchHandler(service searchService.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) SearchPlayers(c *gin.Context) {
	var query dto.SearchPlayersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	players, err := h.service.SearchPlayers(c.Request.Context(), query.Query, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"players": players})
}
