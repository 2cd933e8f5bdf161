package roster

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/attendance/model"
	common "fieldtrack.com/fieldtrack/attendance/web/common"
	"fieldtrack.com/fieldtrack/utils"
	web "fieldtrack.com/fieldtrack/web/common"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type dayQuery func(ctx context.Context, day time.Time) ([]model.User, error)

// day adapts a per-day user query. The date defaults to today.
func (ep *Endpoint) day(query dayQuery) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, err := common.QueryDate(c, "date", ep.scanner.Now())
		if err != nil {
			common.WriteError(c, err)
			return
		}

		users, err := query(c.Request.Context(), day)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, web.NewSearchResponse(users))
	}
}

func (ep *Endpoint) Classify(c *gin.Context) {
	day, err := common.QueryDate(c, "date", ep.scanner.Now())
	if err != nil {
		common.WriteError(c, err)
		return
	}

	res, err := ep.scanner.Classify(c.Request.Context(), day)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

func (ep *Endpoint) visitCounts(c *gin.Context) (time.Time, []core.VisitCount, bool) {
	from, err := common.QueryDate(c, "startDate", ep.scanner.Now())
	if err != nil {
		common.WriteError(c, err)
		return time.Time{}, nil, false
	}
	to, err := common.OptionalQueryDate(c, "endDate")
	if err != nil {
		common.WriteError(c, err)
		return time.Time{}, nil, false
	}

	rows, err := ep.scanner.UserVisitCounts(c.Request.Context(), from, to)
	if err != nil {
		common.WriteError(c, err)
		return time.Time{}, nil, false
	}
	return from, rows, true
}

func (ep *Endpoint) Visits(c *gin.Context) {
	_, rows, ok := ep.visitCounts(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(rows))
}

// ExportVisits streams the visit counts as an xlsx workbook.
func (ep *Endpoint) ExportVisits(c *gin.Context) {
	from, rows, ok := ep.visitCounts(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := core.WriteVisitReport(&buf, rows); err != nil {
		common.WriteError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="visits-%s.xlsx"`, utils.DateKey(from)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (ep *Endpoint) Activity(c *gin.Context) {
	month, err := common.QueryMonth(c, "month", ep.scanner.Now())
	if err != nil {
		common.WriteError(c, err)
		return
	}

	res, err := ep.scanner.RegionActivity(c.Request.Context(), c.Query("state"), month)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}
