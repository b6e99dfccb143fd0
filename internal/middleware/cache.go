package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as publicly cacheable for maxAge. Immutable is
// for content addressed by a unique name, such as uploaded files.
func CacheControl(maxAge time.Duration, immutable bool) gin.HandlerFunc {
	value := "public, max-age=" + strconv.Itoa(int(maxAge/time.Second))
	if immutable {
		value += ", immutable"
	}
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// NoStore keeps student and staff records out of browser and proxy caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
