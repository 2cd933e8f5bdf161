package roster

import (
	"fieldtrack.com/fieldtrack/attendance/core"
	"github.com/gin-gonic/gin"
)

type Endpoint struct {
	scanner *core.RosterScanner
}

func Register(r *gin.RouterGroup, scanner *core.RosterScanner) {
	endpoint := &Endpoint{scanner: scanner}
	r.GET("/roster/without-check-in", endpoint.day(scanner.UsersWithoutCheckIn))
	r.GET("/roster/without-check-out", endpoint.day(scanner.UsersWithoutCheckOut))
	r.GET("/roster/on-leave", endpoint.day(scanner.UsersOnLeave))
	r.GET("/roster/without-attendance", endpoint.day(scanner.UsersWithoutAnyAttendance))
	r.GET("/roster/classification", endpoint.Classify)
	r.GET("/roster/visits", endpoint.Visits)
	r.GET("/roster/visits/export", endpoint.ExportVisits)
	r.GET("/roster/activity", endpoint.Activity)
}
