package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "laundry-api/internal/transport/http/response"
)

// ConcurrencyLimit sheds requests once max are in flight, protecting the
// database pool. It does not queue.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, resp.Message("server busy"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
