package attendance

import (
	"net/http"
	"time"

	"fieldtrack.com/fieldtrack/attendance/core"
	common "fieldtrack.com/fieldtrack/attendance/web/common"
	web "fieldtrack.com/fieldtrack/web/common"
	"fieldtrack.com/fieldtrack/web/middlewares"
	"github.com/gin-gonic/gin"
)

func (ep *Endpoint) ForDay(c *gin.Context) {
	day, err := common.QueryDate(c, "date", time.Time{})
	if err != nil {
		common.WriteError(c, err)
		return
	}

	events, err := ep.agg.GetEventsForDay(c.Request.Context(), middlewares.UserID(c), day)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(events))
}

func (ep *Endpoint) All(c *gin.Context) {
	events, err := ep.agg.ListAllEvents(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(events))
}

func (ep *Endpoint) Range(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	events, err := ep.agg.GetEventsInclusive(c.Request.Context(), middlewares.UserID(c), start, end)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(events))
}

// Filtered lists every event of the users in a region.
func (ep *Endpoint) Filtered(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		common.WriteError(c, &core.ValidationError{Field: "state", Message: "is required"})
		return
	}
	start, err := common.QueryDate(c, "startDate", time.Time{})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	end, err := common.OptionalQueryDate(c, "endDate")
	if err != nil {
		common.WriteError(c, err)
		return
	}

	events, err := ep.agg.RegionEvents(c.Request.Context(), state, start, end)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(events))
}

func (ep *Endpoint) ByEmail(c *gin.Context) {
	events, err := ep.agg.EventsByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(events))
}

func (ep *Endpoint) WithDistances(c *gin.Context) {
	day, err := common.QueryDate(c, "date", time.Time{})
	if err != nil {
		common.WriteError(c, err)
		return
	}

	ctx := c.Request.Context()
	events, err := ep.agg.GetEventsForDay(ctx, middlewares.UserID(c), day)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	annotated, err := ep.agg.AttachDistances(ctx, events)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(annotated))
}

func (ep *Endpoint) Summary(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	holidays, err := core.ParseHolidays(c.Query("holidays"))
	if err != nil {
		common.WriteError(c, err)
		return
	}

	summary, err := ep.agg.ComputeSummary(c.Request.Context(), middlewares.UserID(c), start, end, holidays)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(summary))
}

func (ep *Endpoint) FirstEntry(c *gin.Context) {
	first, err := ep.agg.IsFirstEntryToday(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(FirstEntryDTO{IsFirstEntry: first}))
}

// dateRange reads the required startDate and endDate parameters, writing
// the error response itself when either is bad.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := common.QueryDate(c, "startDate", time.Time{})
	if err != nil {
		common.WriteError(c, err)
		return time.Time{}, time.Time{}, false
	}
	end, err := common.QueryDate(c, "endDate", time.Time{})
	if err != nil {
		common.WriteError(c, err)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
