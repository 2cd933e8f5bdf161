package attendance

import "encoding/json"

// RecordAttendanceDTO is the JSON form of an attendance submission. Location
// may be a {"lat","lng"} object or a string holding either that object or
// "lat,lng". Image is a base64 data URL.
type RecordAttendanceDTO struct {
	Location   json.RawMessage `json:"location" binding:"required"`
	Purpose    string          `json:"purpose" binding:"required"`
	SubPurpose string          `json:"subPurpose"`
	Feedback   string          `json:"feedback"`
	Image      string          `json:"image" binding:"required"`
}

func (d *RecordAttendanceDTO) location() string {
	var s string
	if err := json.Unmarshal(d.Location, &s); err == nil {
		return s
	}
	return string(d.Location)
}

type FirstEntryDTO struct {
	IsFirstEntry bool `json:"isFirstEntry"`
}
