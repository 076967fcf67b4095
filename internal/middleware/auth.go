package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"anoa.com/newtongame/pkg/apperror"
	"anoa.com/newtongame/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

// RequireAuth resolves the caller from a Bearer token, or the "token" query
// parameter for WebSocket clients, and stores their id under "user_id".
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.resolve(c)
		if !ok {
			response.Abort(c, apperror.New(http.StatusUnauthorized, "Authentication required", apperror.ErrUnauthorized))
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context) (string, bool) {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return "", false
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
