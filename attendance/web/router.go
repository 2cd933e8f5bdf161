package web

import (
	"net/http"

	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/attendance/web/handlers/attendance"
	"fieldtrack.com/fieldtrack/attendance/web/handlers/distance"
	"fieldtrack.com/fieldtrack/attendance/web/handlers/roster"
	"fieldtrack.com/fieldtrack/web/middlewares"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Aggregator *core.Aggregator
	Distances  *core.DistanceEngine
	Roster     *core.RosterScanner
}

// NewRouter builds the HTTP surface. Everything under /api needs a token
// signed with jwtSecret.
func NewRouter(services Services, jwtSecret []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		attendance.Register(protected, services.Aggregator)
		distance.Register(protected, services.Distances)
		roster.Register(protected, services.Roster)
	}

	return r
}
