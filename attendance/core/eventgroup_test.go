package core

import (
	"testing"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupEvents(t *testing.T) {
	ts := func(day, hour int) time.Time { return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC) }
	events := &memEvents{}
	events.add("u2", "Visit", ts(5, 11), model.Location{})
	events.add("u1", model.PurposeCheckOut, ts(5, 18), model.Location{})
	events.add("u1", model.PurposeCheckIn, ts(5, 9), model.Location{})
	events.add("u1", "Visit", ts(4, 10), model.Location{})

	groups := GroupEvents(events.events)
	require.Len(t, groups, 3)

	assert.Equal(t, "2024-03-04", groups[0].Date)
	assert.Equal(t, "u1", groups[1].UserID)
	assert.Equal(t, "u2", groups[2].UserID)

	day := groups[1]
	require.Len(t, day.Events, 2)
	assert.Equal(t, model.PurposeCheckIn, day.Events[0].Purpose)
	assert.Equal(t, model.PurposeCheckOut, day.Events[1].Purpose)
	assert.Equal(t, 0, day.VisitCount())
	assert.Equal(t, 1, groups[2].VisitCount())
	assert.Equal(t, 0, (&EventGroup{}).VisitCount())
}
