package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wavelength/matchops/internal/db"
	"github.com/wavelength/matchops/internal/matching"
)

// fetchBatchSize caps per-query row counts when materializing the
// full action log; the hosted backend rejects unbounded selects.
const fetchBatchSize = 1000

// ActionRepository provides data access for the match action log.
type ActionRepository struct {
	db *gorm.DB
}

// NewActionRepository creates a new repository bound to the given DB connection.
func NewActionRepository(database *gorm.DB) *ActionRepository {
	return &ActionRepository{db: database}
}

// UpsertAction inserts or updates the reaction actor → target for one
// day. The composite PK (actor_id, target_id, action_day) gives the
// last-write-wins guarantee for duplicate upstream writes.
func (r *ActionRepository) UpsertAction(ctx context.Context, a *db.MatchAction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}, {Name: "action_day"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind", "viewed", "viewed_at", "know_more_count", "updated_at"}),
		}).
		Create(a).Error
}

// FetchActionLog materializes the resolver's input: every decided
// action (kind not NULL) as a matching.Action. Rows where the user
// has not decided are "no action" and never reach the resolver.
// Fetched in keyed batches to keep result sets bounded.
func (r *ActionRepository) FetchActionLog(ctx context.Context) ([]matching.Action, error) {
	var out []matching.Action

	lastActor, lastTarget, lastDay := "", "", ""
	for {
		var rows []db.MatchAction
		q := r.db.WithContext(ctx).
			Where("kind IS NOT NULL").
			Order("actor_id, target_id, action_day").
			Limit(fetchBatchSize)
		if lastActor != "" {
			q = q.Where("(actor_id, target_id, action_day) > (?, ?, ?)", lastActor, lastTarget, lastDay)
		}
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			out = append(out, matching.Action{
				ActorID:  row.ActorID,
				TargetID: row.TargetID,
				Day:      matching.Day(row.ActionDay),
				Kind:     matching.ActionKind(derefKind(row.Kind)),
			})
		}

		last := rows[len(rows)-1]
		lastActor, lastTarget, lastDay = last.ActorID, last.TargetID, last.ActionDay
		if len(rows) < fetchBatchSize {
			break
		}
	}

	return out, nil
}

// FetchAllRows returns the raw action rows, including undecided ones,
// for funnel and trend reporting.
func (r *ActionRepository) FetchAllRows(ctx context.Context) ([]db.MatchAction, error) {
	var rows []db.MatchAction
	err := r.db.WithContext(ctx).
		Order("actor_id, target_id, action_day").
		Find(&rows).Error
	return rows, err
}

// CountByDay returns per-day totals for trend reporting, ascending.
func (r *ActionRepository) CountByDay(ctx context.Context) ([]DayCount, error) {
	var counts []DayCount
	err := r.db.WithContext(ctx).
		Model(&db.MatchAction{}).
		Select("action_day AS day, COUNT(*) AS actions, COUNT(*) FILTER (WHERE kind = 'liked') AS likes").
		Group("action_day").
		Order("action_day").
		Scan(&counts).Error
	return counts, err
}

// DayCount is one row of the per-day action trend.
type DayCount struct {
	Day     string `json:"day"`
	Actions int64  `json:"actions"`
	Likes   int64  `json:"likes"`
}

func derefKind(k *string) string {
	if k == nil {
		return ""
	}
	return *k
}
