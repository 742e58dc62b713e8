package model

// priorityRank maps priorities to numeric ranks. Lower rank means higher
// priority.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank returns the numeric rank of p and whether p is a known priority.
func (p Priority) Rank() (int, bool) {
	r, ok := priorityRank[p]
	return r, ok
}

// FilterByMaxPriority returns recommendations at or above maxPriority, in
// their original order. For example, PriorityHigh returns critical and high
// recommendations. Recommendations with unrecognized priorities are excluded.
func FilterByMaxPriority(recs []Recommendation, maxPriority Priority) []Recommendation {
	maxRank, ok := maxPriority.Rank()
	if !ok {
		return nil
	}
	result := []Recommendation{}
	for _, r := range recs {
		rank, ok := r.Priority.Rank()
		if !ok {
			continue
		}
		if rank <= maxRank {
			result = append(result, r)
		}
	}
	return result
}
