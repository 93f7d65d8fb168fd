package matching

// BuildLikeHistory derives the historical like index from the full
// action log: (actor, target) → earliest day the actor liked the
// target. Later likes from the same actor to the same target never
// move the entry forward. An empty log yields an empty map.
func BuildLikeHistory(actions []Action) map[DirectedKey]Day {
	history := make(map[DirectedKey]Day)
	for _, a := range actions {
		if a.Kind != ActionLiked {
			continue
		}
		key := DirectedKey{Actor: a.ActorID, Target: a.TargetID}
		if first, ok := history[key]; !ok || a.Day.Before(first) {
			history[key] = a.Day
		}
	}
	return history
}
