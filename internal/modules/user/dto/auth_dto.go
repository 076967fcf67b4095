package dto

import "io"

// AvatarFile is an uploaded avatar image.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type SignUpInput struct {
	Username  string `json:"username" form:"username"`
	Password1 string `json:"password1" form:"password1"`
	Password2 string `json:"password2" form:"password2"`
}

type LoginInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type AuthResponse struct {
	Username    string `json:"username"`
	AccessToken string `json:"token"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresAt"`
}
