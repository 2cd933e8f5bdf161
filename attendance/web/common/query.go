package common

import (
	"fmt"
	"strings"
	"time"

	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/utils"
	"github.com/gin-gonic/gin"
)

// QueryDate reads a yyyy-MM-dd query parameter. An absent parameter
// yields fallback, or a validation error when fallback is zero.
func QueryDate(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		if fallback.IsZero() {
			return time.Time{}, &core.ValidationError{Field: name, Message: "is required"}
		}
		return utils.StartOfDay(fallback), nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: name, Message: err.Error()}
	}
	return t, nil
}

// QueryMonth reads a yyyy-MM query parameter as the first of that month.
func QueryMonth(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		f := fallback.UTC()
		return time.Date(f.Year(), f.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation("2006-01", raw, time.UTC)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: name, Message: fmt.Sprintf("invalid month %q: expected yyyy-MM", raw)}
	}
	return t, nil
}

// OptionalQueryDate is QueryDate for a parameter that may be left out, in
// which case the zero time is returned.
func OptionalQueryDate(c *gin.Context, name string) (time.Time, error) {
	if strings.TrimSpace(c.Query(name)) == "" {
		return time.Time{}, nil
	}
	return QueryDate(c, name, time.Time{})
}
