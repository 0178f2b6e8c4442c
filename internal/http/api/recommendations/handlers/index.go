package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Descriptor identifies the service at its root URL.
type Descriptor struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Paths   string `json:"paths"`
}

// Index returns a handler that always answers with d.
func Index(d Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d)
	}
}
