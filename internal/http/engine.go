// Package http holds the gin engine and the middleware shared by every route.
package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// EngineOptions configures NewEngine.
type EngineOptions struct {
	MaxBodyBytes int64
	AllowOrigins []string
}

// NewEngine returns a gin engine with request ids, logging, recovery, CORS
// and body limits installed. Unknown routes and undefined verbs answer with
// the uniform error body.
func NewEngine(opts EngineOptions) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.RedirectTrailingSlash = false

	engine.Use(
		RequestID(),
		RequestLogger(),
		Recovery(),
		CORS(opts.AllowOrigins),
		BodyLimit(opts.MaxBodyBytes),
	)

	engine.NoRoute(func(c *gin.Context) {
		WriteError(c, http.StatusNotFound, fmt.Sprintf("The requested URL %s was not found on the server.", c.Request.URL.Path))
	})
	engine.NoMethod(func(c *gin.Context) {
		WriteError(c, http.StatusMethodNotAllowed, fmt.Sprintf("The method %s is not allowed for the requested URL.", c.Request.Method))
	})
	return engine
}
