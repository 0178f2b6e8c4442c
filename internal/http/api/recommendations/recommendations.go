package recommendations

import (
	"github.com/gin-gonic/gin"
	"github.com/shopcart-labs/recommendations/internal/http/api/recommendations/handlers"
)

const (
	// BasePath is the collection URL of the resource.
	BasePath = "/recommendations"
	// ServiceName is reported by the root descriptor.
	ServiceName = "Recommendation REST API Service"
	// ServiceVersion is reported by the root descriptor.
	ServiceVersion = "1.0"
)

// Store is everything the routes need from persistence.
type Store interface {
	handlers.RecommendationStore
	handlers.Pinger
}

// RegisterRoutes registers the root descriptor, health check and recommendation routes.
func RegisterRoutes(r *gin.Engine, s Store) {
	if r == nil || s == nil {
		return
	}

	r.GET("/", handlers.Index(handlers.Descriptor{
		Name:    ServiceName,
		Version: ServiceVersion,
		Paths:   BasePath,
	}))

	healthHandler := handlers.NewHealthHandler(s)
	r.GET("/healthz", healthHandler.Healthz)

	recHandler := handlers.NewRecommendationHandler(s, BasePath)
	recs := r.Group(BasePath)
	recs.GET("", recHandler.List)
	recs.POST("", recHandler.Create)
	recs.GET("/:id", recHandler.Get)
	recs.PUT("/:id", recHandler.Update)
	recs.DELETE("/:id", recHandler.Delete)
	recs.PUT("/:id/activate", recHandler.Activate)
}
