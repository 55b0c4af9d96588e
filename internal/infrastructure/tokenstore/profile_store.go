package tokenstore

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// ProfileEntry is one string-keyed value of a client profile
type ProfileEntry struct {
	Profile   string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProfileEntry) TableName() string {
	return "profile_entries"
}

// ProfileStore keeps the pair in the profile database, the analogue of browser local storage
type ProfileStore struct {
	db      *gorm.DB
	profile string
	logger  *zap.Logger
}

// NewProfileStore creates a GORM-backed token store. The profile_entries table must exist.
func NewProfileStore(db *gorm.DB, profile string, logger *zap.Logger) *ProfileStore {
	return &ProfileStore{db: db, profile: profile, logger: logger.Named("tokenstore.profile")}
}

// Set implements domain.TokenStore
func (s *ProfileStore) Set(pair domain.TokenPair) {
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.upsert(tx, KeyAccessToken, pair.AccessToken, now); err != nil {
			return err
		}
		if pair.RefreshToken == "" {
			return tx.Where("profile = ? AND name = ?", s.profile, KeyRefreshToken).Delete(&ProfileEntry{}).Error
		}
		return s.upsert(tx, KeyRefreshToken, pair.RefreshToken, now)
	})
	if err != nil {
		s.logger.Error("failed to persist tokens", zap.String("profile", s.profile), zap.Error(err))
	}
}

func (s *ProfileStore) upsert(tx *gorm.DB, name, value string, now time.Time) error {
	entry := &ProfileEntry{Profile: s.profile, Name: name, Value: value, UpdatedAt: now}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
}

// Get implements domain.TokenStore
func (s *ProfileStore) Get() (domain.TokenPair, bool) {
	var entries []ProfileEntry
	err := s.db.Where("profile = ? AND name IN ?", s.profile, []string{KeyAccessToken, KeyRefreshToken}).Find(&entries).Error
	if err != nil {
		s.logger.Error("failed to read tokens", zap.String("profile", s.profile), zap.Error(err))
		return domain.TokenPair{}, false
	}

	var pair domain.TokenPair
	for _, e := range entries {
		switch e.Name {
		case KeyAccessToken:
			pair.AccessToken = e.Value
		case KeyRefreshToken:
			pair.RefreshToken = e.Value
		}
	}
	if pair.IsZero() {
		return domain.TokenPair{}, false
	}
	return pair, true
}

// Clear implements domain.TokenStore
func (s *ProfileStore) Clear() {
	err := s.db.Where("profile = ? AND name IN ?", s.profile, []string{KeyAccessToken, KeyRefreshToken}).Delete(&ProfileEntry{}).Error
	if err != nil {
		s.logger.Error("failed to clear tokens", zap.String("profile", s.profile), zap.Error(err))
	}
}

var _ domain.TokenStore = (*ProfileStore)(nil)
