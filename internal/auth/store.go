package auth

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

// ErrStaleRotation means the row's current token changed between read and
// write: a concurrent caller won the rotation and this one must log in again.
var ErrStaleRotation = errors.New("stale rotation")

// Store persists the per-user refresh-token rotation slot. Rotation is a
// find-then-write round trip, so callers serialize it per user through
// LockUser; the write itself additionally carries an optimistic guard on the
// expected current token value.
//
// The lock map holds one mutex per user ever locked and is never evicted. A
// mutex is a few words, so even millions of users cost megabytes; eviction
// would need its own synchronization for no practical gain.
type Store struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, locks: make(map[uint]*sync.Mutex)}
}

// LockUser acquires the rotation lock for one user and returns the unlock
// function.
func (s *Store) LockUser(userID uint) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// FindByPresented resolves the row a presented refresh value belongs to,
// matching either the current or the immediately prior token. A value two or
// more generations old matches nothing.
func (s *Store) FindByPresented(token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := s.db.Where("token = ? OR old_token = ?", token, token).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByUser returns the user's rotation slot regardless of expiry or device.
func (s *Store) FindByUser(userID uint) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := s.db.First(&row, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) Create(row *models.RefreshToken) error {
	return s.db.Create(row).Error
}

// Update rewrites the slot only if its current token still equals previous.
func (s *Store) Update(row *models.RefreshToken, previous string) error {
	res := s.db.Model(&models.RefreshToken{}).
		Where("id = ? AND token = ?", row.ID, previous).
		Updates(map[string]interface{}{
			"token":      row.Token,
			"old_token":  row.OldToken,
			"user_agent": row.UserAgent,
			"expires_at": row.ExpiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRotation
	}
	return nil
}

// DeleteByUser removes the user's slot. Used on theft detection and when the
// owning user is deleted.
func (s *Store) DeleteByUser(userID uint) error {
	return s.db.Delete(&models.RefreshToken{}, "id = ?", userID).Error
}

// Live reports whether the row matches the presented device and has not
// expired.
func Live(row *models.RefreshToken, userAgent string, now time.Time) bool {
	return row.UserAgent == userAgent && row.ExpiresAt.After(now)
}
