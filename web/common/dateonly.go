package common

import (
	"encoding/json"
	"time"

	"fieldtrack.com/fieldtrack/utils"
)

// DateOnly is a yyyy-MM-dd calendar date at midnight UTC.
type DateOnly struct {
	time.Time
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	// b is a quoted string like `"2025-10-29"`
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := utils.ParseDate(s)
	if err != nil {
		return err
	}

	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(utils.DateLayout))
}

func (d DateOnly) String() string {
	return d.Format(utils.DateLayout)
}
