package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo users,
// a multi-day action log, and a few approval-pipeline profiles.
//
// Behavior:
//  1. Clears existing data in all tables.
//  2. Creates 20 users (10 male, 10 female) with contacts and images.
//  3. Generates ~200 actions spread over the last 14 days with ~60%
//     likes, and every 3rd pair gets a reciprocal like on a later day
//     so the match report has something to find.
//  4. Creates 6 profiles split between pending and approved.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{
		"chat_messages", "chat_sessions", "waitlist_metadata",
		"match_actions", "profiles", "user_contacts", "user_metadata",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	// --- Users (10 male, 10 female) ---
	for i := 1; i <= 20; i++ {
		gender := "male"
		tier := r.Intn(3) + 1
		if i > 10 {
			gender = "female"
		}

		userID := fmt.Sprintf("user-%03d", i)
		user := UserMetadata{
			UserID:           userID,
			Name:             fmt.Sprintf("Demo User %d", i),
			Gender:           gender,
			Age:              23 + r.Intn(12),
			City:             "Bangalore",
			ProfessionalTier: tier,
			ProfileImages: StringList{
				fmt.Sprintf("https://storage.example.com/chat-images/public/%s-1.jpeg", userID),
				fmt.Sprintf("https://storage.example.com/chat-images/public/%s-2.jpeg", userID),
			},
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		contact := UserContact{
			UserID: userID,
			Email:  fmt.Sprintf("user%d@example.com", i),
			Phone:  fmt.Sprintf("+91900000%04d", i),
		}
		if err := db.Create(&contact).Error; err != nil {
			return fmt.Errorf("failed to seed contact: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Actions over the last 14 days ---
	kinds := []string{"liked", "liked", "liked", "disliked", "passed"}
	counter := 0
	for actor := 1; actor <= 20; actor++ {
		for j := 0; j < 10; j++ {
			target := r.Intn(20) + 1
			if actor == target {
				continue
			}
			// opposite gender only
			if (actor <= 10) == (target <= 10) {
				continue
			}

			daysAgo := r.Intn(14)
			day := time.Now().UTC().AddDate(0, 0, -daysAgo).Format("2006-01-02")
			kind := kinds[r.Intn(len(kinds))]

			action := MatchAction{
				ActorID:       fmt.Sprintf("user-%03d", actor),
				TargetID:      fmt.Sprintf("user-%03d", target),
				ActionDay:     day,
				Kind:          &kind,
				Viewed:        true,
				KnowMoreCount: r.Intn(3),
				Rank:          j + 1,
				OriginPhase:   "discovery",
			}
			if err := upsertAction(db, &action); err != nil {
				return fmt.Errorf("failed to seed action: %w", err)
			}

			// guarantee a reciprocal like on a later day for every 3rd pair
			if counter%3 == 0 && daysAgo > 0 {
				laterDay := time.Now().UTC().AddDate(0, 0, -daysAgo+1).Format("2006-01-02")
				liked := "liked"
				recip := MatchAction{
					ActorID:     fmt.Sprintf("user-%03d", target),
					TargetID:    fmt.Sprintf("user-%03d", actor),
					ActionDay:   laterDay,
					Kind:        &liked,
					Viewed:      true,
					OriginPhase: "discovery",
				}
				if err := upsertAction(db, &recip); err != nil {
					return fmt.Errorf("failed to seed reciprocal action: %w", err)
				}
			}
			counter++
		}
	}
	log.Printf("Seeded %d actions.", counter)

	// --- Approval pipeline profiles ---
	for i := 0; i < 6; i++ {
		status := ProfileStatusPending
		if i%2 == 0 {
			status = ProfileStatusApproved
		}
		profile := Profile{
			ProfileID:    uuid.NewString(),
			MaleUserID:   fmt.Sprintf("user-%03d", r.Intn(10)+1),
			FemaleUserID: fmt.Sprintf("user-%03d", r.Intn(10)+11),
			Status:       status,
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}

	// --- Onboarding chats for the first few users ---
	for i := 1; i <= 5; i++ {
		userID := fmt.Sprintf("user-%03d", i)
		session := ChatSession{
			ID:         uuid.NewString(),
			UserID:     userID,
			ChatType:   ChatTypeOnboarding,
			Summary:    fmt.Sprintf("Intake conversation with %s", userID),
			HasSummary: true,
		}
		if err := db.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to seed chat session: %w", err)
		}

		messages := []ChatMessage{
			{ID: uuid.NewString(), SessionID: session.ID, Role: "assistant", Message: "Welcome! Tell me a bit about yourself."},
			{ID: uuid.NewString(), SessionID: session.ID, Role: "user", Message: fmt.Sprintf("Hi, I'm demo user %d from Bangalore.", i)},
			{ID: uuid.NewString(), SessionID: session.ID, Role: "assistant", Message: "Great, what are you looking for?"},
		}
		if err := db.Create(&messages).Error; err != nil {
			return fmt.Errorf("failed to seed chat messages: %w", err)
		}
	}

	// --- Waitlist signups awaiting review ---
	for i := 1; i <= 8; i++ {
		gender := "male"
		if i%2 == 0 {
			gender = "female"
		}
		tier := r.Intn(3) + 1
		entry := WaitlistEntry{
			UserID:           fmt.Sprintf("wait-%03d", i),
			FullName:         fmt.Sprintf("Waitlist User %d", i),
			WhatsappNumber:   fmt.Sprintf("+91800000%04d", i),
			Gender:           gender,
			City:             "Bangalore",
			RelationshipType: "long-term",
			ProfessionalTier: &tier,
		}
		if err := db.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to seed waitlist entry: %w", err)
		}
	}

	return nil
}

func upsertAction(db *gorm.DB, a *MatchAction) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}, {Name: "action_day"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "updated_at"}),
	}).Create(a).Error
}

// SeedMinimalTestData inserts a small, deterministic dataset for tests.
func SeedMinimalTestData(db *gorm.DB) error {
	for _, table := range []string{
		"chat_messages", "chat_sessions", "waitlist_metadata",
		"match_actions", "profiles", "user_contacts", "user_metadata",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	users := []UserMetadata{
		{UserID: "user-a", Name: "Asha", Gender: "female", Age: 27, ProfessionalTier: 1},
		{UserID: "user-b", Name: "Bharat", Gender: "male", Age: 29, ProfessionalTier: 2},
		{UserID: "user-c", Name: "Chetan", Gender: "male", Age: 31, ProfessionalTier: 3},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	contacts := []UserContact{
		{UserID: "user-a", Email: "asha@test.com"},
		{UserID: "user-b", Email: "bharat@test.com"},
		{UserID: "user-c", Email: "chetan@test.com"},
	}
	if err := db.Create(&contacts).Error; err != nil {
		return err
	}

	liked, passed := "liked", "passed"
	actions := []MatchAction{
		{ActorID: "user-a", TargetID: "user-b", ActionDay: "2025-06-01", Kind: &liked, Viewed: true},
		{ActorID: "user-b", TargetID: "user-a", ActionDay: "2025-06-01", Kind: &liked, Viewed: true}, // mutual with above
		{ActorID: "user-c", TargetID: "user-a", ActionDay: "2025-06-02", Kind: &liked, Viewed: true},
		{ActorID: "user-a", TargetID: "user-c", ActionDay: "2025-06-03", Kind: &passed, Viewed: true}, // confirms c's prior like
	}
	if err := db.Create(&actions).Error; err != nil {
		return err
	}

	profiles := []Profile{
		{ProfileID: "profile-1", MaleUserID: "user-b", FemaleUserID: "user-a", Status: ProfileStatusPending},
		{ProfileID: "profile-2", MaleUserID: "user-c", FemaleUserID: "user-a", Status: ProfileStatusApproved},
	}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}

	// user-a has an onboarding session with messages and an empty
	// search session; user-b has no chats at all.
	sessions := []ChatSession{
		{ID: "session-1", UserID: "user-a", ChatType: ChatTypeOnboarding, Summary: "Asha's intake chat", HasSummary: true,
			CreatedAt: time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)},
		{ID: "session-2", UserID: "user-a", ChatType: ChatTypeSearch,
			CreatedAt: time.Date(2025, 5, 25, 10, 0, 0, 0, time.UTC)},
	}
	if err := db.Create(&sessions).Error; err != nil {
		return err
	}

	chatMessages := []ChatMessage{
		{ID: "msg-1", SessionID: "session-1", Role: "assistant", Message: "Welcome! Tell me about yourself.",
			CreatedAt: time.Date(2025, 5, 20, 10, 0, 1, 0, time.UTC)},
		{ID: "msg-2", SessionID: "session-1", Role: "user", Message: "Hi, I'm Asha.",
			ImageURLs: StringList{"https://storage.example.com/chat-images/public/user-a-1.jpeg"},
			Metadata:  JSONMap{"source": "app"},
			CreatedAt: time.Date(2025, 5, 20, 10, 0, 2, 0, time.UTC)},
	}
	if err := db.Create(&chatMessages).Error; err != nil {
		return err
	}

	removed := true
	tier := 2
	waitlist := []WaitlistEntry{
		{UserID: "wait-a", FullName: "Waiting Anu", Gender: "female", City: "Bangalore", ProfessionalTier: &tier,
			CreatedAt: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)},
		{UserID: "wait-b", FullName: "Waiting Bala", Gender: "male", City: "Mumbai",
			CreatedAt: time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)},
		{UserID: "wait-c", FullName: "Waiting Chitra", Gender: "female", City: "Delhi", ShouldBeRemoved: &removed,
			CreatedAt: time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)},
	}
	return db.Create(&waitlist).Error
}
