package matching

import (
	"fmt"
	"time"
)

// ActionKind is one user's recorded reaction toward another user.
// An absent record is "no action" and is deliberately NOT a kind:
// explicit passes and missing rows are different states everywhere
// in this package.
type ActionKind string

const (
	ActionLiked    ActionKind = "liked"
	ActionDisliked ActionKind = "disliked"
	ActionPassed   ActionKind = "passed"
)

// Valid reports whether k is a known reaction.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionLiked, ActionDisliked, ActionPassed:
		return true
	}
	return false
}

// Day is a calendar date in ISO YYYY-MM-DD form. ISO dates order
// correctly under plain string comparison, which keeps map keys and
// day ordering cheap. Day is the resolution granularity for all
// "same day" and "earlier day" comparisons; finer timestamps are
// never used for tie-breaking.
type Day string

const dayLayout = "2006-01-02"

// DayOf truncates a timestamp to its UTC calendar date.
func DayOf(t time.Time) Day {
	return Day(t.UTC().Format(dayLayout))
}

// ParseDay validates an ISO date string.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("malformed day %q: %w", s, err)
	}
	return Day(s), nil
}

func (d Day) Before(o Day) bool { return d < o }
func (d Day) IsZero() bool      { return d == "" }

// Time returns the UTC midnight instant of the day.
func (d Day) Time() time.Time {
	t, _ := time.Parse(dayLayout, string(d))
	return t
}

// Action is one observed reaction: actor reacted to target on a day.
// At most one Action per (actor, target, day) survives flattening;
// the latest write for that key wins if duplicates occur upstream.
type Action struct {
	ActorID  string     `json:"actor_id"`
	TargetID string     `json:"target_id"`
	Day      Day        `json:"day"`
	Kind     ActionKind `json:"kind"`
}

// DirectedKey identifies the actor→target direction of an action.
type DirectedKey struct {
	Actor  string
	Target string
}

// PairKey is the unordered combination of two user identifiers,
// normalized so that A < B. Always build it through NewPairKey; the
// typed key exists precisely to rule out (u1,u2) vs (u2,u1) mix-ups.
type PairKey struct {
	A string
	B string
}

// NewPairKey builds the canonical key for two users.
func NewPairKey(x, y string) PairKey {
	if x > y {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// MatchType names the rule that confirmed a pair.
type MatchType string

const (
	// MatchLikeLike: both sides liked each other on the same day.
	MatchLikeLike MatchType = "Like+Like"
	// MatchLikePassedPrior: a pass reciprocating a like the other side
	// made on a strictly earlier day, whether or not the earlier liker
	// also acted today.
	MatchLikePassedPrior MatchType = "Like+Passed-prior"
	// MatchPassedLikePrior: actor passed today, target liked today and
	// the actor had liked the target on an earlier day.
	MatchPassedLikePrior MatchType = "Passed+Like-prior"
	// MatchLikePreviousLike: actor liked today, target took no action
	// today but had liked the actor on an earlier day.
	MatchLikePreviousLike MatchType = "Like+Previous-Like"
)

// MatchEvent is one confirmed pair. UserA < UserB. Created once by
// the resolver for a given day, never mutated.
type MatchEvent struct {
	UserA    string    `json:"user_a"`
	UserB    string    `json:"user_b"`
	MatchDay Day       `json:"match_day"`
	Type     MatchType `json:"match_type"`
}

// Pair returns the event's unordered pair key.
func (e MatchEvent) Pair() PairKey {
	return NewPairKey(e.UserA, e.UserB)
}

// Report is the memoized result of a full resolver run. It is an
// explicit value the caller stores and expires; the resolver itself
// holds no ambient cache state.
type Report struct {
	ComputedAt time.Time    `json:"computed_at"`
	Events     []MatchEvent `json:"events"`
}

// Expired reports whether the result is older than ttl at instant now.
func (r Report) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(r.ComputedAt) > ttl
}
