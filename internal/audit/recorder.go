package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event is what callers hand to the recorder; the recorder owns
// serialization and persistence.
type Event struct {
	UserID    *uint
	Action    string
	Status    string
	IPAddress string
	UserAgent string
	Details   map[string]any
}

// Recorder appends auth events to the audit trail. Record never returns
// an error: a failed audit write must not fail the operation it
// describes, so failures are logged and swallowed.
type Recorder interface {
	Record(ctx context.Context, event Event)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	ForUser(ctx context.Context, userID uint, limit int) ([]Entry, error)
}

type store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(db *gorm.DB, log *zap.Logger) Recorder {
	return &store{db: db, log: log}
}

func (s *store) Record(ctx context.Context, event Event) {
	entry := Entry{
		UserID:    event.UserID,
		Action:    event.Action,
		Status:    event.Status,
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
	}

	if len(event.Details) > 0 {
		encoded, err := json.Marshal(event.Details)
		if err != nil {
			s.log.Warn("failed to encode audit details",
				zap.String("action", event.Action),
				zap.Error(err))
		} else {
			detail := string(encoded)
			entry.Details = &detail
		}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error("failed to write audit entry",
			zap.String("action", event.Action),
			zap.String("status", event.Status),
			zap.Error(err))
	}
}

func (s *store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []Entry
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (s *store) ForUser(ctx context.Context, userID uint, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
