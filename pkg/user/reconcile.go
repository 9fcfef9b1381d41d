package user

import "strings"

// RoleDiff is the change that turns a current role set into a desired one.
type RoleDiff struct {
	ToAdd    []string
	ToRemove []string
}

// Empty reports whether the sets already match.
func (d RoleDiff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Reconcile compares role names ignoring case. ToRemove keeps the order of
// current and ToAdd the order of desired; duplicates are dropped.
func Reconcile(current, desired []string) RoleDiff {
	have := foldSet(current)
	want := foldSet(desired)

	diff := RoleDiff{ToAdd: []string{}, ToRemove: []string{}}
	seen := make(map[string]struct{}, len(current)+len(desired))
	for _, name := range current {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, keep := want[key]; !keep {
			diff.ToRemove = append(diff.ToRemove, name)
		}
	}
	for _, name := range desired {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, held := have[key]; !held {
			diff.ToAdd = append(diff.ToAdd, name)
		}
	}
	return diff
}

func foldSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}
