package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies so a single oversized payload cannot
// exhaust memory. Reads past the cap fail inside the JSON binder.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = 1 << 20
	}

	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
