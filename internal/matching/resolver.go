package matching

import "sort"

// resolveDay evaluates one calendar day and returns the pairs newly
// confirmed on it. sameDay holds the flattened actor→target actions
// for the day, history the earliest-like index over the full log, and
// confirmed the pairs matched on earlier days. Confirmed pairs are
// added to the set as they are found, so a pair can never be emitted
// twice regardless of which of its two directions is visited first.
func resolveDay(day Day, sameDay map[DirectedKey]ActionKind, history map[DirectedKey]Day, confirmed map[PairKey]bool) []MatchEvent {
	// Sorted keys keep the run deterministic: the report is cached and
	// re-run on demand, and two runs over the same log must agree.
	keys := make([]DirectedKey, 0, len(sameDay))
	for k := range sameDay {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Actor != keys[j].Actor {
			return keys[i].Actor < keys[j].Actor
		}
		return keys[i].Target < keys[j].Target
	})

	var events []MatchEvent
	for _, key := range keys {
		pair := NewPairKey(key.Actor, key.Target)
		if confirmed[pair] {
			continue
		}

		action1 := sameDay[key]
		action2, reciprocalToday := sameDay[DirectedKey{Actor: key.Target, Target: key.Actor}]

		var matchType MatchType
		var matched bool

		if reciprocalToday {
			// Case A: both sides acted today.
			switch {
			case action1 == ActionLiked && action2 == ActionLiked:
				matchType, matched = MatchLikeLike, true

			case action1 == ActionLiked && action2 == ActionPassed:
				// The pass only confirms against a like the target made
				// strictly before today: a same-day like cannot justify a
				// same-day pass retroactively.
				matched = likedBefore(history, key.Target, key.Actor, day)
				matchType = MatchLikePassedPrior

			case action1 == ActionPassed && action2 == ActionLiked:
				matched = likedBefore(history, key.Actor, key.Target, day)
				matchType = MatchPassedLikePrior
			}
		} else {
			// Case B: only this direction acted today. A like or a pass
			// confirms only against a strictly earlier like from the
			// target; a dislike never confirms anything.
			switch action1 {
			case ActionLiked:
				matched = likedBefore(history, key.Target, key.Actor, day)
				matchType = MatchLikePreviousLike
			case ActionPassed:
				matched = likedBefore(history, key.Target, key.Actor, day)
				matchType = MatchLikePassedPrior
			}
		}

		if !matched {
			continue
		}

		confirmed[pair] = true
		events = append(events, MatchEvent{
			UserA:    pair.A,
			UserB:    pair.B,
			MatchDay: day,
			Type:     matchType,
		})
	}

	return events
}

// likedBefore reports whether actor liked target on a day strictly
// earlier than day.
func likedBefore(history map[DirectedKey]Day, actor, target string, day Day) bool {
	first, ok := history[DirectedKey{Actor: actor, Target: target}]
	return ok && first.Before(day)
}
