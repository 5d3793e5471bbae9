// Package handlers implements the control-plane HTTP surface: a
// public status/random read path and a bearer-guarded admin path.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/coldkeep/fortunad/internal/auth"
	"github.com/coldkeep/fortunad/internal/models"
)

// AdminCredential is the single configured admin login: a username
// and a bcrypt hash, no user table.
type AdminCredential struct {
	Username     string
	PasswordHash string
}

// Login authenticates against the single configured admin credential
// and returns a bearer token.
func Login(cred AdminCredential, issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid login payload: " + err.Error()})
			return
		}

		if req.Username != cred.Username {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid username or password"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid username or password"})
			return
		}

		token, err := issuer.GenerateJWT(req.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, models.LoginResponse{Token: token})
	}
}

// RequireAuth is middleware that checks for a valid Bearer JWT signed
// by issuer.
func RequireAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(h, "Bearer ")
		claims, err := issuer.ParseAndVerify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token: " + err.Error()})
			return
		}
		c.Set("admin_subject", claims.Subject)
		c.Next()
	}
}
