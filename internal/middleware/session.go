package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/services"
)

const sessionCookie = "reelrank_session"

// Session resolves the caller's session from the signed session
// cookie, minting a fresh session when the cookie is absent, expired
// or tampered with. A session is an anonymous interaction lifetime,
// not a login, so an invalid token is never a 401 here.
func Session(sessionService *services.SessionService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
			if claims, err := sessionService.ValidateToken(token); err == nil {
				c.Set("session_id", claims.SessionID)
				c.Next()
				return
			} else {
				logger.WithError(err).Debug("Session token rejected, issuing a new session")
			}
		}

		sessionID, token, err := sessionService.NewSession()
		if err != nil {
			logger.WithError(err).Error("Failed to create session")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "SESSION_CREATION_FAILED",
					"message": "Failed to create session",
				},
			})
			c.Abort()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
		c.Set("session_id", sessionID)
		c.Next()
	}
}

// SessionFromContext returns the session id set by the Session
// middleware.
func SessionFromContext(c *gin.Context) uuid.UUID {
	value, exists := c.Get("session_id")
	if !exists {
		return uuid.Nil
	}
	sessionID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return sessionID
}
