package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// RejectRevokedSession checks the JWT's JTI against the logout deny-list in Redis.
// A Redis failure lets the request through; the token signature was already verified.
func RejectRevokedSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		revoked, err := authService.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Warn().Err(err).Str("jti", claims.ID).Msg("Revocation check failed")
		}
		if revoked {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionRevoked)
			return
		}

		c.Next()
	}
}
