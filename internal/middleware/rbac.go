package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/response"
)

// RequirePermission checks that the JWT contains the required permission code.
// Superusers pass every check.
func RequirePermission(permissionCode string) gin.HandlerFunc {
	return RequireAnyPermission(permissionCode)
}

// RequireAnyPermission checks that the JWT contains at least one of the specified permissions.
func RequireAnyPermission(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.Superuser {
			c.Next()
			return
		}
		for _, code := range codes {
			if slices.Contains(claims.Permissions, code) {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// RequireServidor only lets through users linked to a staff profile.
func RequireServidor() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if claims.ServidorID == nil && !claims.Superuser {
			response.AbortFail(c, http.StatusForbidden, response.ErrServidorOnly)
			return
		}
		c.Next()
	}
}

// RequireComissao only lets through members of the disciplinary committee.
func RequireComissao() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if !claims.Comissao && !claims.Superuser {
			response.AbortFail(c, http.StatusForbidden, response.ErrComissaoOnly)
			return
		}
		c.Next()
	}
}
