package attendance

import (
	"fieldtrack.com/fieldtrack/attendance/core"
	"github.com/gin-gonic/gin"
)

type Endpoint struct {
	agg *core.Aggregator
}

func Register(r *gin.RouterGroup, agg *core.Aggregator) {
	endpoint := &Endpoint{agg: agg}
	r.POST("/attendance", endpoint.Record)
	r.GET("/attendance", endpoint.ForDay)
	r.GET("/attendance/all", endpoint.All)
	r.GET("/attendance/range", endpoint.Range)
	r.GET("/attendance/filtered", endpoint.Filtered)
	r.GET("/attendance/user", endpoint.ByEmail)
	r.GET("/attendance/with-distances", endpoint.WithDistances)
	r.GET("/attendance/summary", endpoint.Summary)
	r.GET("/attendance/first-entry", endpoint.FirstEntry)
}
