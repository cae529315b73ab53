package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limbo-app/limbo/internal/board"
)

// httpStatus maps a board error kind to its HTTP status code
func httpStatus(kind board.Kind) int {
	switch kind {
	case board.KindValidation:
		return http.StatusBadRequest
	case board.KindNotFound:
		return http.StatusNotFound
	case board.KindForbidden:
		return http.StatusForbidden
	case board.KindGone:
		return http.StatusGone
	case board.KindConflict:
		return http.StatusConflict
	case board.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeError renders a core error as a JSON error response. Internal
// failure details stay out of the response body.
func writeError(c *gin.Context, err error) {
	kind := board.KindOf(err)
	message := err.Error()
	if kind == board.KindInternal {
		message = "internal failure"
	}
	c.JSON(httpStatus(kind), gin.H{
		"error":   kind.String(),
		"message": message,
	})
}
