package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every response uses the same envelope: a success flag, an optional message,
// and optional payload fields (user, users, token, accountCreatedOn).

// RespondFailure writes an expected validation/business failure.
func RespondFailure(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// RespondMessage writes a success envelope that carries only a message.
func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": true,
		"message": message,
	})
}

// RespondInternal is the single translation point for unanticipated faults.
// The fixed message never leaks internal state beyond the error description.
func RespondInternal(ctx *gin.Context, err error) {
	body := gin.H{
		"success": false,
		"message": "Internal Server Error",
	}

	if err != nil {
		body["error"] = err.Error()
	}

	ctx.JSON(http.StatusInternalServerError, body)
}
