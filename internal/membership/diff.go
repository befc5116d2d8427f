package membership

import "sort"

// Status is the tri-state lifecycle of a membership row. Rows are never
// physically deleted; assignment flips them between active and inactive.
type Status int

const (
	StatusDeleted  Status = -1
	StatusInactive Status = 0
	StatusActive   Status = 1
)

// Member is one existing membership row, whatever its state.
type Member struct {
	UserID int64
	Status Status
}

// Diff is the outcome of comparing a group's existing rows with a desired
// member set. Notify carries only the users whose membership flipped.
type Diff struct {
	Changed    bool
	Notify     []int64
	Reactivate []int64
	Insert     []int64
}

func sortedDistinct(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Compute diffs a group's existing rows against the desired member set.
// Changed compares the sorted distinct active sets structurally, so applying
// the same set twice reports no change. Users already holding a row, active
// or not, are reactivated; the rest are inserted.
func Compute(existing []Member, desired []int64) Diff {
	next := sortedDistinct(desired)

	current := make([]int64, 0, len(existing))
	hasRow := make(map[int64]struct{}, len(existing))
	for _, m := range existing {
		hasRow[m.UserID] = struct{}{}
		if m.Status == StatusActive {
			current = append(current, m.UserID)
		}
	}
	current = sortedDistinct(current)

	d := Diff{Changed: !equalIDs(current, next)}

	for _, id := range next {
		if _, ok := hasRow[id]; ok {
			d.Reactivate = append(d.Reactivate, id)
		} else {
			d.Insert = append(d.Insert, id)
		}
	}

	if d.Changed {
		inNext := make(map[int64]struct{}, len(next))
		for _, id := range next {
			inNext[id] = struct{}{}
		}
		inCurrent := make(map[int64]struct{}, len(current))
		for _, id := range current {
			inCurrent[id] = struct{}{}
		}
		for _, id := range current {
			if _, ok := inNext[id]; !ok {
				d.Notify = append(d.Notify, id)
			}
		}
		for _, id := range next {
			if _, ok := inCurrent[id]; !ok {
				d.Notify = append(d.Notify, id)
			}
		}
		d.Notify = sortedDistinct(d.Notify)
	}

	return d
}
