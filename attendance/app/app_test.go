package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/attendance/model"
	"fieldtrack.com/fieldtrack/config"
	"fieldtrack.com/fieldtrack/infrastructure/communication"
	"fieldtrack.com/fieldtrack/infrastructure/filesystem"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingS3 struct {
	keys []string
}

func (l *listingS3) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func (l *listingS3) ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, k := range l.keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func openTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:         "sqlite",
			DSN:            fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			MaxConnections: 1,
			LogLevel:       "silent",
		},
		Media:  config.MediaConfig{MaxImageKB: 10},
		Maps:   config.MapsConfig{BaseURL: "http://127.0.0.1:0", Timeout: time.Second},
		Roster: config.RosterConfig{ExcludedEmails: []string{"boss@example.com"}},
	}
	a, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	require.NoError(t, a.Migrate(context.Background()))
	return a
}

func TestOpenWiresServices(t *testing.T) {
	a := openTestApp(t)

	assert.IsType(t, communication.Discard{}, a.Alerter)
	assert.Nil(t, a.Aggregator.Geocoder)
	assert.Equal(t, 10*1024, a.Aggregator.MaxImageBytes)
	assert.Equal(t, []string{"boss@example.com"}, a.Roster.ExcludedEmails)

	_, err := a.Aggregator.Media.Upload(context.Background(), []byte{1}, "image/jpeg")
	assert.ErrorIs(t, err, ErrMediaNotConfigured)
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Database: config.DatabaseConfig{Driver: "oracle", DSN: "x"}})
	assert.Error(t, err)
}

func TestOrphanedMedia(t *testing.T) {
	a := openTestApp(t)
	ctx := context.Background()

	_, err := a.OrphanedMedia(ctx)
	assert.ErrorIs(t, err, ErrMediaNotConfigured)

	a.Media = filesystem.NewS3MediaStore(&listingS3{keys: []string{
		"attendance/2024/03/kept.jpg",
		"attendance/2024/03/orphan.jpg",
	}}, "evidence", "ap-south-1", "https://cdn.example.com")

	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	require.NoError(t, a.Store.InsertEvent(ctx, &model.AttendanceEvent{
		ID: uuid.NewString(), UserID: "u1", Timestamp: now, Date: "2024-03-05", Purpose: model.PurposeCheckIn,
		ImageURL: "https://cdn.example.com/attendance/2024/03/kept.jpg", CreatedAt: now,
	}))

	orphans, err := a.OrphanedMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"attendance/2024/03/orphan.jpg"}, orphans)
}

func TestRosterThroughApp(t *testing.T) {
	a := openTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Store.SaveUser(ctx, &model.User{ID: "u1", Email: "asha@example.com", FullName: "Asha", Role: model.RoleUser}))

	rc, err := a.Roster.Classify(ctx, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, rc.NotCheckedIn, 1)
	assert.Contains(t, core.FormatRoster(rc), "Asha")
}
