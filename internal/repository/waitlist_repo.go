package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wavelength/matchops/internal/db"
	"github.com/wavelength/matchops/internal/utils/pagination"
)

// WaitlistRepository provides data access for waitlist review.
type WaitlistRepository struct {
	db *gorm.DB
}

// NewWaitlistRepository creates a new repository bound to the given DB connection.
func NewWaitlistRepository(database *gorm.DB) *WaitlistRepository {
	return &WaitlistRepository{db: database}
}

// List returns waitlist entries filtered by gender, ordered by
// created_at DESC then user_id DESC, with cursor-based pagination.
func (r *WaitlistRepository) List(
	ctx context.Context,
	gender string,
	paginationToken *string,
	limit int,
) ([]db.WaitlistEntry, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&db.WaitlistEntry{}).
		Order("created_at DESC, user_id DESC").
		Limit(limit + 1)

	if gender != "" && gender != "all" {
		query = query.Where("gender = ?", gender)
	}

	if cursor.UserID != "" && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND user_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	var entries []db.WaitlistEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(entries) > limit {
		last := entries[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:      last.UserID,
			UpdatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		entries = entries[:limit]
	}

	return entries, nextToken, nil
}

// SetRemovalFlag marks an entry for removal or clears the flag.
// Clearing writes NULL rather than false: the reviewed-and-kept state
// and the never-reviewed state are deliberately the same.
func (r *WaitlistRepository) SetRemovalFlag(ctx context.Context, userID string, value *bool) error {
	res := r.db.WithContext(ctx).
		Model(&db.WaitlistEntry{}).
		Where("user_id = ?", userID).
		Update("should_be_removed", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WaitlistStats are the sidebar counters of the review workflow.
type WaitlistStats struct {
	Total   int64 `json:"total"`
	Removed int64 `json:"removed"`
	Female  int64 `json:"female"`
	Male    int64 `json:"male"`
}

// Stats returns entry counts for the review dashboard.
func (r *WaitlistRepository) Stats(ctx context.Context) (WaitlistStats, error) {
	var stats WaitlistStats

	if err := r.db.WithContext(ctx).Model(&db.WaitlistEntry{}).
		Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := r.db.WithContext(ctx).Model(&db.WaitlistEntry{}).
		Where("should_be_removed = ?", true).
		Count(&stats.Removed).Error; err != nil {
		return stats, err
	}
	if err := r.db.WithContext(ctx).Model(&db.WaitlistEntry{}).
		Where("gender = ?", "female").
		Count(&stats.Female).Error; err != nil {
		return stats, err
	}
	err := r.db.WithContext(ctx).Model(&db.WaitlistEntry{}).
		Where("gender = ?", "male").
		Count(&stats.Male).Error
	return stats, err
}
