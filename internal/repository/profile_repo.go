package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wavelength/matchops/internal/db"
)

// ProfileRepository provides data access for the approval pipeline.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// ListByStatus returns profiles in the given workflow state, newest first.
func (r *ProfileRepository) ListByStatus(ctx context.Context, status string) ([]db.Profile, error) {
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

// SetStatus transitions one profile between workflow states.
func (r *ProfileRepository) SetStatus(ctx context.Context, profileID, status string) error {
	res := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("profile_id = ?", profileID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetStatus returns one profile's current workflow state.
func (r *ProfileRepository) GetStatus(ctx context.Context, profileID string) (string, error) {
	var profile db.Profile
	if err := r.db.WithContext(ctx).Select("status").First(&profile, "profile_id = ?", profileID).Error; err != nil {
		return "", err
	}
	return profile.Status, nil
}

// Counts returns how many profiles sit in each approval state.
func (r *ProfileRepository) Counts(ctx context.Context) (pending, approved int64, err error) {
	if err = r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("status = ?", db.ProfileStatusPending).
		Count(&pending).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("status = ?", db.ProfileStatusApproved).
		Count(&approved).Error; err != nil {
		return 0, 0, err
	}
	return pending, approved, nil
}
