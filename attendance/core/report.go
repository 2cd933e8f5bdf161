package core

import (
	"fmt"
	"strings"

	"fieldtrack.com/fieldtrack/attendance/model"
)

// FormatRoster renders a classification as a plain-text chat message.
func FormatRoster(rc *RosterClassification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attendance roster for %s\n", rc.Date)
	section(&b, "Checked in", rc.CheckedIn, false)
	section(&b, "Not checked in", rc.NotCheckedIn, true)
	section(&b, "Not checked out", rc.NotCheckedOut, true)
	section(&b, "On leave", rc.OnLeave, true)
	section(&b, "No attendance", rc.Absent, true)
	return strings.TrimRight(b.String(), "\n")
}

func section(b *strings.Builder, title string, users []model.User, list bool) {
	fmt.Fprintf(b, "%s: %d\n", title, len(users))
	if !list {
		return
	}
	for _, u := range users {
		name := u.FullName
		if name == "" {
			name = u.Email
		}
		if u.Region != "" {
			fmt.Fprintf(b, "  • %s (%s)\n", name, u.Region)
		} else {
			fmt.Fprintf(b, "  • %s\n", name)
		}
	}
}
