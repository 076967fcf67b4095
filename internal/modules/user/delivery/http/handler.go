package http

import (
	"fmt"

	"anoa.com/newtongame/internal/modules/user/dto"
	userService "anoa.com/newtongame/internal/modules/user/service"
	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/response"
	"anoa.com/newtongame/pkg/validator"
	"github.com/gin-gonic/gin"
)

const maxAvatarSize = 5 << 20

type AuthHandler struct {
	service userService.AuthService
}

func NewAuthHandler(service userService.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var input dto.SignUpInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{
		"message":   "Done Creating Account!",
		"username":  resp.Username,
		"token":     resp.AccessToken,
		"tokenType": resp.TokenType,
		"expiresAt": resp.ExpiresIn,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{
		"message":   "Logged In Successfully!",
		"username":  resp.Username,
		"token":     resp.AccessToken,
		"tokenType": resp.TokenType,
		"expiresAt": resp.ExpiresIn,
	})
}

func (h *AuthHandler) CheckSession(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{
		"authenticated": true,
		"username":      user.Username,
		"avatarUrl":     user.AvatarURL,
	})
}

// Logout is stateless: tokens simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK(c, gin.H{"message": "Logged out Successfully!"})
}

func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.ResponseError(c, apperror.InvalidInput("avatar is required"))
		return
	}
	if fileHeader.Size > maxAvatarSize {
		response.ResponseError(c, apperror.InvalidInput(fmt.Sprintf("avatar must be at most %d MB", maxAvatarSize>>20)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, apperror.InvalidInput("avatar could not be read"))
		return
	}
	defer file.Close()

	url, err := h.service.UpdateAvatar(c.Request.Context(), userID, dto.AvatarFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, gin.H{"avatarUrl": url})
}
