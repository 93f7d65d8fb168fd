package db

import (
	"time"
)

// StringList is stored as a JSON array column. Supabase kept image
// URL lists as jsonb; the serializer keeps that shape.
type StringList []string

// UserMetadata is the operator-facing profile record for one app user.
type UserMetadata struct {
	UserID               string `gorm:"primaryKey;size:64"`
	Name                 string `gorm:"size:128"`
	Gender               string `gorm:"size:16;index"`
	Age                  int
	City                 string `gorm:"size:64"`
	Religion             string `gorm:"size:64"`
	WorkExp              string `gorm:"size:255"`
	Education            string `gorm:"size:255"`
	ProfessionalTier     int    `gorm:"index"`
	Attractiveness       *int
	ShouldBeRemoved      bool `gorm:"default:false;index"`
	HasAppropriatePhotos *bool
	ProfileImages        StringList `gorm:"serializer:json"`
	CollageImages        StringList `gorm:"serializer:json"`
	InstagramImages      StringList `gorm:"serializer:json"`
	CreatedAt            time.Time  `gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime"`
}

func (UserMetadata) TableName() string { return "user_metadata" }

// UserContact holds reachability data kept separate from profile
// metadata, mirroring the upstream split.
type UserContact struct {
	UserID    string    `gorm:"primaryKey;size:64"`
	Email     string    `gorm:"size:128;index"`
	Phone     string    `gorm:"size:32"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserContact) TableName() string { return "user_contacts" }

// MatchAction is one actor's recorded reaction toward a target on a
// calendar day. One row per (actor, target, day); an upsert on the
// composite PK gives the last-write-wins guarantee for duplicate
// writes from upstream.
//
// Kind is nullable: a row can exist before the user decides (the app
// creates the card when the recommendation is shown). A NULL kind is
// "no action" and is excluded from the resolver's input; it is not
// the same state as an explicit pass.
//
// Indexes:
//   - idx_target_kind_day(target_id, kind, action_day)
//     Optimizes reverse-like lookups for the funnel report.
type MatchAction struct {
	ActorID       string  `gorm:"primaryKey;size:64"`
	TargetID      string  `gorm:"primaryKey;size:64;index:idx_target_kind_day,priority:1"`
	ActionDay     string  `gorm:"primaryKey;size:10"`
	Kind          *string `gorm:"size:16;index:idx_target_kind_day,priority:2"`
	Viewed        bool    `gorm:"default:false"`
	ViewedAt      *time.Time
	KnowMoreCount int       `gorm:"default:0"`
	Rank          int       `gorm:"default:0"`
	OriginPhase   string    `gorm:"size:32"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime;index:idx_target_kind_day,priority:3,sort:desc"`
}

func (MatchAction) TableName() string { return "match_actions" }

// JSONMap is stored as a JSON object column, used for free-form
// message metadata.
type JSONMap map[string]any

// Chat types recorded on sessions. Onboarding is the intake
// conversation; search is the in-app matchmaking chat.
const (
	ChatTypeOnboarding = "onboarding"
	ChatTypeSearch     = "search"
)

// ChatSession is one conversation a user had with the assistant.
type ChatSession struct {
	ID         string `gorm:"primaryKey;size:64"`
	UserID     string `gorm:"size:64;index:idx_user_chat_type,priority:1"`
	ChatType   string `gorm:"size:32;index:idx_user_chat_type,priority:2"`
	Summary    string
	HasSummary bool      `gorm:"default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessage is one turn inside a session. ImageURLs and Metadata
// mirror the jsonb columns of the upstream schema.
type ChatMessage struct {
	ID          string     `gorm:"primaryKey;size:64"`
	SessionID   string     `gorm:"size:64;index"`
	Role        string     `gorm:"size:16"`
	Message     string     `gorm:"type:text"`
	MessageType string     `gorm:"size:16;default:text"`
	ImageURLs   StringList `gorm:"serializer:json"`
	Metadata    JSONMap    `gorm:"serializer:json"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// WaitlistEntry is a signup awaiting review before getting a full
// profile. ShouldBeRemoved is a nullable bool on purpose: reviewers
// clear the flag back to NULL when undoing, and only an explicit TRUE
// counts as removed.
type WaitlistEntry struct {
	UserID            string `gorm:"primaryKey;size:64"`
	FullName          string `gorm:"size:128"`
	WhatsappNumber    string `gorm:"size:32"`
	Gender            string `gorm:"size:16;index"`
	City              string `gorm:"size:64"`
	Area              string `gorm:"size:64"`
	RelationshipType  string `gorm:"size:64"`
	RelationshipWhy   string `gorm:"type:text"`
	InterestingFact   string `gorm:"type:text"`
	AdditionalContext string `gorm:"type:text"`
	ProfessionalTier  *int
	Qualified         *bool
	ShouldBeRemoved   *bool     `gorm:"index"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (WaitlistEntry) TableName() string { return "waitlist_metadata" }

// Profile statuses for the human approval workflow.
const (
	ProfileStatusPending  = "msg_human_approval_required"
	ProfileStatusApproved = "msg_human_approved"
)

// Profile is a curated pairing moving through the approval pipeline.
type Profile struct {
	ProfileID      string `gorm:"primaryKey;size:64"`
	MaleUserID     string `gorm:"size:64;index"`
	FemaleUserID   string `gorm:"size:64;index"`
	Status         string `gorm:"size:64;index;default:msg_human_approval_required"`
	MaleResponse   *bool
	FemaleResponse *bool
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string { return "profiles" }
