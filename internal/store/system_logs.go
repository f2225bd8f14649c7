package store

import (
	"time"

	"github.com/internal-chat/backend/internal/models"
	"gorm.io/gorm"
)

// logRetention is how long error logs stay queryable before the sweep
// removes them.
const logRetention = 30 * 24 * time.Hour

// SystemLogStore manages the error-log table the slog handler writes to.
type SystemLogStore struct {
	db        *gorm.DB
	retention time.Duration
}

func NewSystemLogStore(db *gorm.DB) *SystemLogStore {
	return &SystemLogStore{db: db, retention: logRetention}
}

// PurgeExpired deletes log rows older than the retention window.
func (s *SystemLogStore) PurgeExpired(now time.Time) (int64, error) {
	res := s.db.Where("created_at < ?", now.Add(-s.retention)).Delete(&models.SystemLog{})
	return res.RowsAffected, res.Error
}
