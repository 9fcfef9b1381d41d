package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		current    []string
		desired    []string
		wantAdd    []string
		wantRemove []string
	}{
		{"no change", []string{"Admin", "User"}, []string{"User", "Admin"}, []string{}, []string{}},
		{"add only", []string{"User"}, []string{"User", "Admin"}, []string{"Admin"}, []string{}},
		{"remove only", []string{"User", "Admin"}, []string{"User"}, []string{}, []string{"Admin"}},
		{"swap", []string{"User"}, []string{"Admin"}, []string{"Admin"}, []string{"User"}},
		{"ignores case", []string{"admin"}, []string{"ADMIN", "Editor"}, []string{"Editor"}, []string{}},
		{"drops duplicates", []string{}, []string{"Editor", "editor"}, []string{"Editor"}, []string{}},
		{"empty desired", []string{"User"}, nil, []string{}, []string{"User"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := Reconcile(tt.current, tt.desired)
			assert.Equal(t, tt.wantAdd, diff.ToAdd)
			assert.Equal(t, tt.wantRemove, diff.ToRemove)
		})
	}
}

func TestReconcileProperties(t *testing.T) {
	sets := [][]string{
		{},
		{"User"},
		{"Admin", "User"},
		{"Admin", "Editor", "Viewer"},
		{"viewer", "Auditor"},
	}

	for _, current := range sets {
		for _, desired := range sets {
			diff := Reconcile(current, desired)

			have := foldSet(current)
			for _, name := range diff.ToAdd {
				_, held := have[strings.ToLower(name)]
				assert.False(t, held, "added role %q is already held", name)
			}
			for _, name := range diff.ToRemove {
				_, held := have[strings.ToLower(name)]
				assert.True(t, held, "removed role %q is not held", name)
			}

			result := foldSet(current)
			for _, name := range diff.ToRemove {
				delete(result, strings.ToLower(name))
			}
			for _, name := range diff.ToAdd {
				result[strings.ToLower(name)] = struct{}{}
			}
			assert.Equal(t, foldSet(desired), result, "current=%v desired=%v", current, desired)
		}
	}
}
