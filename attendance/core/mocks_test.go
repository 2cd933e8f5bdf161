package core

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
	"github.com/stretchr/testify/require"
)

type memEvents struct {
	mu        sync.Mutex
	events    []model.AttendanceEvent
	insertErr error
	listErr   error
}

func (m *memEvents) InsertEvent(_ context.Context, e *model.AttendanceEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func (m *memEvents) ListEvents(_ context.Context, q EventQuery) ([]model.AttendanceEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.AttendanceEvent
	for _, e := range m.events {
		if len(q.UserIDs) > 0 && !slices.Contains(q.UserIDs, e.UserID) {
			continue
		}
		if !q.From.IsZero() && e.Timestamp.Before(q.From) {
			continue
		}
		if !q.Before.IsZero() && !e.Timestamp.Before(q.Before) {
			continue
		}
		if !q.Through.IsZero() && e.Timestamp.After(q.Through) {
			continue
		}
		if q.DateFrom != "" && e.Date < q.DateFrom {
			continue
		}
		if q.DateTo != "" && e.Date > q.DateTo {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// add stores an event of purpose for user at ts.
func (m *memEvents) add(userID, purpose string, ts time.Time, loc model.Location) {
	m.events = append(m.events, model.AttendanceEvent{
		ID:        userID + ts.Format(time.RFC3339Nano),
		UserID:    userID,
		Timestamp: ts.UTC(),
		Date:      ts.UTC().Format("2006-01-02"),
		Location:  loc,
		Purpose:   purpose,
	})
}

type memDistances struct {
	mu   sync.Mutex
	rows map[string]model.DistanceSummary
	err  error
}

func (m *memDistances) UpsertDistance(_ context.Context, s *model.DistanceSummary) (*model.DistanceSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string]model.DistanceSummary{}
	}
	key := s.UserID + "|" + s.Date
	saved := *s
	if existing, ok := m.rows[key]; ok {
		saved.ID = existing.ID
	}
	m.rows[key] = saved
	return &saved, nil
}

func (m *memDistances) FindDistance(_ context.Context, userID, date string) (*model.DistanceSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.rows[userID+"|"+date]; ok {
		return &s, nil
	}
	return nil, nil
}

type memUsers struct {
	users []model.User
}

func (m *memUsers) ListUsers(_ context.Context, q UserQuery) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if len(q.IDs) > 0 && !slices.Contains(q.IDs, u.ID) {
			continue
		}
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		if q.Region != "" && u.Region != q.Region {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}


func (m *memUsers) FindUserByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i], nil
		}
	}
	return nil, nil
}

func (m *memUsers) SaveUser(_ context.Context, u *model.User) error {
	m.users = append(m.users, *u)
	return nil
}

type fakeMedia struct {
	uploads [][]byte
	err     error
}

func (f *fakeMedia) Upload(_ context.Context, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, data)
	return "https://media.example.com/evidence.jpg", nil
}

type fakeGeocoder struct {
	name string
	err  error
}

func (f *fakeGeocoder) ReverseGeocode(context.Context, model.Location) (string, error) {
	return f.name, f.err
}

// fakeMatrix answers every pair with the configured rows, or "<i+1> km".
type fakeMatrix struct {
	rows  []model.PairDistance
	err   error
	calls int
}

func (f *fakeMatrix) PairwiseDistances(_ context.Context, origins, _ []model.Location) ([]model.PairDistance, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.rows != nil {
		return f.rows, nil
	}
	rows := make([]model.PairDistance, len(origins))
	for i := range rows {
		rows[i] = model.PairDistance{Status: "OK", DistanceText: string(rune('1'+i)) + " km"}
	}
	return rows, nil
}

type fakeAlerter struct {
	errors []string
}

func (f *fakeAlerter) Info(string) error { return nil }

func (f *fakeAlerter) Error(msg string) error {
	f.errors = append(f.errors, msg)
	return nil
}

var errBoom = errors.New("boom")

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 8), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// hugeHeaderPNG is a valid PNG signature and IHDR that claims a 60000x60000
// RGBA canvas, with no pixel data behind it.
func hugeHeaderPNG() []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(kind string, data []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(data)))
		buf.Write(n[:])
		body := append([]byte(kind), data...)
		buf.Write(body)
		binary.BigEndian.PutUint32(n[:], crc32.ChecksumIEEE(body))
		buf.Write(n[:])
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 60000)
	binary.BigEndian.PutUint32(ihdr[4:8], 60000)
	ihdr[8], ihdr[9] = 8, 6
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}
