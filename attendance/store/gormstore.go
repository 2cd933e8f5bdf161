package store

import (
	"context"
	"errors"
	"fmt"

	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/attendance/model"
	dbcore "fieldtrack.com/fieldtrack/core"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps events, distance summaries and users in a relational
// database through a shared DatabaseManager.
type GormStore struct {
	dm *dbcore.DatabaseManager
}

func NewGormStore(dm *dbcore.DatabaseManager) *GormStore {
	return &GormStore{dm: dm}
}

// Migrate creates or updates the tables and indexes.
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&model.AttendanceEvent{},
		&model.DistanceSummary{},
		&model.User{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", m, err)
		}
	}
	return nil
}

func (s *GormStore) InsertEvent(ctx context.Context, event *model.AttendanceEvent) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Create(event).Error
	})
}

func (s *GormStore) ListEvents(ctx context.Context, q core.EventQuery) ([]model.AttendanceEvent, error) {
	var events []model.AttendanceEvent
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		query := db.Model(&model.AttendanceEvent{})
		if len(q.UserIDs) > 0 {
			query = query.Where("user_id IN ?", q.UserIDs)
		}
		if !q.From.IsZero() {
			query = query.Where("timestamp >= ?", q.From.UTC())
		}
		if !q.Before.IsZero() {
			query = query.Where("timestamp < ?", q.Before.UTC())
		}
		if !q.Through.IsZero() {
			query = query.Where("timestamp <= ?", q.Through.UTC())
		}
		if q.DateFrom != "" {
			query = query.Where("date >= ?", q.DateFrom)
		}
		if q.DateTo != "" {
			query = query.Where("date <= ?", q.DateTo)
		}
		return query.Order("timestamp ASC").Order("id ASC").Find(&events).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpsertDistance inserts the summary or, when one already exists for the
// same user and date, overwrites its totals in the same statement.
func (s *GormStore) UpsertDistance(ctx context.Context, summary *model.DistanceSummary) (*model.DistanceSummary, error) {
	var saved model.DistanceSummary
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_distance", "point_to_point_distances", "updated_at"}),
		}).Create(summary).Error
		if err != nil {
			return err
		}
		return db.Where("user_id = ? AND date = ?", summary.UserID, summary.Date).First(&saved).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert distance: %w", err)
	}
	return &saved, nil
}

func (s *GormStore) FindDistance(ctx context.Context, userID, date string) (*model.DistanceSummary, error) {
	var summary model.DistanceSummary
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ? AND date = ?", userID, date).First(&summary).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find distance: %w", err)
	}
	return &summary, nil
}

func (s *GormStore) ListUsers(ctx context.Context, q core.UserQuery) ([]model.User, error) {
	var users []model.User
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		query := db.Model(&model.User{})
		if len(q.IDs) > 0 {
			query = query.Where("id IN ?", q.IDs)
		}
		if q.Role != "" {
			query = query.Where("role = ?", q.Role)
		}
		if q.Region != "" {
			query = query.Where("region = ?", q.Region)
		}
		return query.Order("email ASC").Find(&users).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *GormStore) findUser(ctx context.Context, where string, arg string) (*model.User, error) {
	var user model.User
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where(where, arg).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// SaveUser inserts the user or updates the profile with the same ID.
func (s *GormStore) SaveUser(ctx context.Context, user *model.User) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "phone_number", "reporting_manager", "region", "role"}),
		}).Create(user).Error
	})
}
