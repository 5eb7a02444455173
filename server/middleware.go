package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	errs "github.com/techagentng/relayhub/errors"
	"github.com/techagentng/relayhub/models"
	"github.com/techagentng/relayhub/server/response"
	jwtPackage "github.com/techagentng/relayhub/services/jwt"
	"gorm.io/gorm"
)

// respondAndAbort writes the envelope and stops the handler chain.
func respondAndAbort(c *gin.Context, message string, status int, data interface{}, err error) {
	response.JSON(c, message, status, data, err)
	c.Abort()
}

// Authorize validates the bearer token and loads the caller's identity
// into the request context.
func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := getTokenFromHeader(c)
		if accessToken == "" {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthenticated)
			return
		}

		user, err := s.userFromToken(accessToken)
		if err != nil {
			respondAndAbort(c, "", errs.Status(err), nil, err)
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// userFromToken resolves an access token to a user record. Shared by
// the HTTP middleware and the websocket handshake.
func (s *Server) userFromToken(accessToken string) (*models.User, error) {
	claims, err := jwtPackage.ValidateAndGetClaims(accessToken, s.Config.JWTSecret)
	if err != nil {
		return nil, errs.ErrUnauthenticated
	}

	idClaim, ok := claims["id"].(string)
	if !ok {
		return nil, errs.ErrUnauthenticated
	}
	userID, err := uuid.Parse(idClaim)
	if err != nil {
		return nil, errs.ErrUnauthenticated
	}

	user, err := s.UserRepository.FindUserByID(userID)
	if err != nil {
		if errs.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUnauthenticated
		}
		return nil, errs.ErrInternalServerError
	}
	return user, nil
}

func getTokenFromHeader(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

// GetUserFromContext returns the authenticated user set by Authorize.
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	if userI, exists := c.Get("user"); exists {
		if user, ok := userI.(*models.User); ok {
			return user, nil
		}
	}
	return nil, errs.ErrUnauthenticated
}
