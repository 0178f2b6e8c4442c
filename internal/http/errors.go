package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// WriteError aborts the request with the uniform error body.
func WriteError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}
