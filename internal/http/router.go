// README: HTTP router registration.
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"carpool/internal/http/handlers"
	"carpool/internal/http/middleware"
	"carpool/internal/infra"
	"carpool/internal/modules/carpool"
	"carpool/internal/modules/plans"
)

type RouterDeps struct {
	Carpool *carpool.Service
	Plans   *plans.Service
	// Verifier enables Firebase ID-token auth on the API group when set.
	Verifier infra.TokenVerifier
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery(), cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	api := r.Group("/api/v1")
	if deps.Verifier != nil {
		api.Use(middleware.Auth(deps.Verifier))
	}

	carpoolHandler := handlers.NewCarpoolHandler(deps.Carpool, deps.Plans)
	api.POST("/carpool", carpoolHandler.Calculate)
	api.GET("/plans", carpoolHandler.LatestPlan)

	return r
}
