package core

import (
	"testing"

	"fieldtrack.com/fieldtrack/attendance/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatRoster(t *testing.T) {
	rc := &RosterClassification{
		Date:          "2024-03-05",
		CheckedIn:     []model.User{{FullName: "Asha"}, {FullName: "Ravi"}},
		NotCheckedIn:  []model.User{{FullName: "Meena", Region: "kerala"}},
		NotCheckedOut: []model.User{{Email: "ravi@example.com"}},
	}

	want := "Attendance roster for 2024-03-05\n" +
		"Checked in: 2\n" +
		"Not checked in: 1\n" +
		"  • Meena (kerala)\n" +
		"Not checked out: 1\n" +
		"  • ravi@example.com\n" +
		"On leave: 0\n" +
		"No attendance: 0"
	assert.Equal(t, want, FormatRoster(rc))
}
