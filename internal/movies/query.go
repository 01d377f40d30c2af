package movies

import "sort"

// Index returns the position of id in list, or -1.
func Index(list []Record, id int64) int {
	for i := range list {
		if list[i].MovieID == id {
			return i
		}
	}
	return -1
}

// Find returns the record for id.
func Find(list []Record, id int64) (Record, bool) {
	if i := Index(list, id); i >= 0 {
		return list[i], true
	}
	return Record{}, false
}

// Has reports whether id is in the collection.
func Has(list []Record, id int64) bool {
	return Index(list, id) >= 0
}

// IDsByStatus returns the set of ids whose status is one of statuses. With
// no statuses every id is returned.
func IDsByStatus(list []Record, statuses ...Status) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(list))
	for _, r := range list {
		if len(statuses) == 0 || containsStatus(statuses, r.Status) {
			ids[r.MovieID] = struct{}{}
		}
	}
	return ids
}

// FilterByStatus returns the records with status, newest addedAt first.
// Records with equal addedAt keep their collection order.
func FilterByStatus(list []Record, status Status) []Record {
	out := make([]Record, 0, len(list))
	for _, r := range list {
		if r.Status == status {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AddedAt > out[j].AddedAt
	})
	return out
}

// CountByStatus tallies records per status.
func CountByStatus(list []Record) map[Status]int {
	counts := map[Status]int{StatusWatchlist: 0, StatusWatched: 0}
	for _, r := range list {
		counts[r.Status]++
	}
	return counts
}

func containsStatus(statuses []Status, status Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
