package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wavelength/matchops/internal/db"
	"github.com/wavelength/matchops/internal/utils/pagination"
)

// RatingFilter narrows user listings by attractiveness state.
type RatingFilter string

const (
	RatingAny      RatingFilter = "all"
	RatingRated    RatingFilter = "rated"
	RatingNotRated RatingFilter = "not rated"
)

// UserRepository provides data access for user metadata and contacts.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID returns one user's metadata.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*db.UserMetadata, error) {
	var user db.UserMetadata
	if err := r.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users filtered by gender and rating state, ordered by
// updated_at DESC then user_id DESC, with cursor-based pagination.
func (r *UserRepository) List(
	ctx context.Context,
	gender string,
	rating RatingFilter,
	paginationToken *string,
	limit int,
) ([]db.UserMetadata, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&db.UserMetadata{}).
		Order("updated_at DESC, user_id DESC").
		Limit(limit + 1)

	if gender != "" && gender != "both" && gender != "all" {
		query = query.Where("gender = ?", gender)
	}
	switch rating {
	case RatingRated:
		query = query.Where("attractiveness IS NOT NULL")
	case RatingNotRated:
		query = query.Where("attractiveness IS NULL")
	}

	if cursor.UserID != "" && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(updated_at < ? OR (updated_at = ? AND user_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	var users []db.UserMetadata
	if err := query.Find(&users).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(users) > limit {
		last := users[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:      last.UserID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		users = users[:limit]
	}

	return users, nextToken, nil
}

// SetAttractiveness records an operator's 1–10 rating.
func (r *UserRepository) SetAttractiveness(ctx context.Context, userID string, score int) error {
	res := r.db.WithContext(ctx).
		Model(&db.UserMetadata{}).
		Where("user_id = ?", userID).
		Update("attractiveness", score)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetRemovalFlag marks or unmarks a user for removal.
func (r *UserRepository) SetRemovalFlag(ctx context.Context, userID string, remove bool) error {
	res := r.db.WithContext(ctx).
		Model(&db.UserMetadata{}).
		Where("user_id = ?", userID).
		Update("should_be_removed", remove)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRemoved returns users flagged for removal.
func (r *UserRepository) ListRemoved(ctx context.Context) ([]db.UserMetadata, error) {
	var users []db.UserMetadata
	err := r.db.WithContext(ctx).
		Where("should_be_removed = ?", true).
		Order("updated_at DESC").
		Find(&users).Error
	return users, err
}

// ExistingIDs returns which of the given IDs are still present,
// used to tell deleted users apart from live ones in bulk.
func (r *UserRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}
	var found []string
	err := r.db.WithContext(ctx).
		Model(&db.UserMetadata{}).
		Where("user_id IN ?", ids).
		Pluck("user_id", &found).Error
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// UpdateImages replaces one of the image lists. column must be one of
// profile_images, collage_images, instagram_images.
func (r *UserRepository) UpdateImages(ctx context.Context, userID, column string, images db.StringList) error {
	res := r.db.WithContext(ctx).
		Model(&db.UserMetadata{}).
		Where("user_id = ?", userID).
		Update(column, images)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetContacts returns contact rows for the given user IDs, in the
// order the IDs were supplied. IDs without a contact row are skipped.
func (r *UserRepository) GetContacts(ctx context.Context, ids []string) ([]db.UserContact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []db.UserContact
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]db.UserContact, len(rows))
	for _, c := range rows {
		byID[c.UserID] = c
	}
	ordered := make([]db.UserContact, 0, len(rows))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// GenderByUser returns a user_id → gender lookup for funnel filters.
func (r *UserRepository) GenderByUser(ctx context.Context) (map[string]string, error) {
	var users []db.UserMetadata
	if err := r.db.WithContext(ctx).Select("user_id", "gender").Find(&users).Error; err != nil {
		return nil, err
	}
	lookup := make(map[string]string, len(users))
	for _, u := range users {
		lookup[u.UserID] = u.Gender
	}
	return lookup, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
