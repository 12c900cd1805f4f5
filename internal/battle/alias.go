package battle

// Resolve follows alias chains until it reaches an id with no further
// mapping and returns that canonical id. An id absent from the map resolves
// to itself.
//
// A cycle in the alias map is a programmer error - nothing in the data
// model can produce one, since the merge coordinator rejects any merge
// whose resolved target equals its resolved source. The guard below stops
// resolution at the last id visited before a repeat rather than looping
// forever, so a corrupted map degrades to a stable (if meaningless) answer
// instead of hanging replay.
//
// Pure lookup, never blocks, O(chain length).
func Resolve(id string, aliases map[string]string) string {
	if len(aliases) == 0 {
		return id
	}

	seen := make(map[string]struct{}, 4)
	cur := id
	for {
		next, ok := aliases[cur]
		if !ok {
			return cur
		}
		if _, repeat := seen[next]; repeat || next == cur {
			// Malformed map. Stop before revisiting.
			return cur
		}
		seen[cur] = struct{}{}
		cur = next
	}
}

// WithAlias returns a copy of aliases extended with mergedID -> targetID.
// The input map is never mutated: the merge coordinator evaluates the
// candidate map off-transaction and must be able to throw it away on abort.
func WithAlias(aliases map[string]string, mergedID, targetID string) map[string]string {
	out := make(map[string]string, len(aliases)+1)
	for k, v := range aliases {
		out[k] = v
	}
	out[mergedID] = targetID
	return out
}
