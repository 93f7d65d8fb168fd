package matching

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedAction marks a validation failure in the input log.
// The whole run aborts rather than skipping the record: dropping a
// day would leave the confirmed-pair state inconsistent for every
// later day.
var ErrMalformedAction = errors.New("malformed action")

// Resolve runs the full inference over an action log: it validates
// the log, builds the historical like index, then walks the distinct
// days in ascending order, confirming pairs day by day. A pair
// confirmed on one day is permanently excluded from later days.
//
// The computation is pure and deterministic: two runs over the same
// log produce identical event sets in identical order.
func Resolve(actions []Action) ([]MatchEvent, error) {
	if err := validate(actions); err != nil {
		return nil, err
	}

	history := BuildLikeHistory(actions)

	// Flatten to one action per (actor, target, day); duplicates are
	// not an error, the latest write wins.
	byDay := make(map[Day]map[DirectedKey]ActionKind)
	for _, a := range actions {
		if byDay[a.Day] == nil {
			byDay[a.Day] = make(map[DirectedKey]ActionKind)
		}
		byDay[a.Day][DirectedKey{Actor: a.ActorID, Target: a.TargetID}] = a.Kind
	}

	days := make([]Day, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	confirmed := make(map[PairKey]bool)
	var events []MatchEvent
	for _, day := range days {
		events = append(events, resolveDay(day, byDay[day], history, confirmed)...)
	}
	return events, nil
}

func validate(actions []Action) error {
	for i, a := range actions {
		if a.Day.IsZero() {
			return fmt.Errorf("%w: action %d (%s→%s) has no day", ErrMalformedAction, i, a.ActorID, a.TargetID)
		}
		if _, err := ParseDay(string(a.Day)); err != nil {
			return fmt.Errorf("%w: action %d (%s→%s): %v", ErrMalformedAction, i, a.ActorID, a.TargetID, err)
		}
		if a.ActorID == "" || a.TargetID == "" {
			return fmt.Errorf("%w: action %d is missing a user id", ErrMalformedAction, i)
		}
		if a.ActorID == a.TargetID {
			return fmt.Errorf("%w: action %d: %s reacted to themselves", ErrMalformedAction, i, a.ActorID)
		}
		if !a.Kind.Valid() {
			return fmt.Errorf("%w: action %d has unknown kind %q", ErrMalformedAction, i, a.Kind)
		}
	}
	return nil
}
