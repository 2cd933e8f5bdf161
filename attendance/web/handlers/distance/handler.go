package distance

import (
	"net/http"
	"time"

	"fieldtrack.com/fieldtrack/attendance/core"
	common "fieldtrack.com/fieldtrack/attendance/web/common"
	"fieldtrack.com/fieldtrack/utils"
	web "fieldtrack.com/fieldtrack/web/common"
	"fieldtrack.com/fieldtrack/web/middlewares"
	"github.com/gin-gonic/gin"
)

type Endpoint struct {
	engine *core.DistanceEngine
}

func Register(r *gin.RouterGroup, engine *core.DistanceEngine) {
	endpoint := &Endpoint{engine: engine}
	r.POST("/distance", endpoint.Save)
	r.GET("/distance", endpoint.Get)
}

// SaveDistanceDTO carries the client's own tally for a day. TotalDistance
// is a number of metres or a display string such as "5 km 200 m".
type SaveDistanceDTO struct {
	Date                  web.DateOnly    `json:"date"`
	TotalDistance         any             `json:"totalDistance"`
	PointToPointDistances []core.LegInput `json:"pointToPointDistances"`
}

func (ep *Endpoint) Save(c *gin.Context) {
	var dto SaveDistanceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}
	if dto.Date.IsZero() {
		common.WriteError(c, &core.ValidationError{Field: "date", Message: "is required"})
		return
	}

	summary, err := ep.engine.SaveDailyDistance(
		c.Request.Context(),
		middlewares.UserID(c),
		dto.Date.Format(utils.DateLayout),
		dto.TotalDistance,
		dto.PointToPointDistances,
	)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(summary))
}

func (ep *Endpoint) Get(c *gin.Context) {
	day, err := common.QueryDate(c, "date", time.Time{})
	if err != nil {
		common.WriteError(c, err)
		return
	}

	summary, err := ep.engine.GetDailyDistance(c.Request.Context(), middlewares.UserID(c), utils.DateKey(day))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(summary))
}
