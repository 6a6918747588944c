package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdered_SortedAndUnique(t *testing.T) {
	ordered := Ordered()
	require.NotEmpty(t, ordered)
	seen := map[string]bool{}
	for i, m := range ordered {
		assert.False(t, seen[m.ID], "duplicate migration id %s", m.ID)
		seen[m.ID] = true
		assert.NotEmpty(t, m.UpSQL)
		if i > 0 {
			assert.Less(t, ordered[i-1].ID, m.ID)
		}
	}
}

func TestPending(t *testing.T) {
	ordered := Ordered()

	assert.Len(t, Pending(nil), len(ordered))

	pending := Pending(map[string]bool{ordered[0].ID: true})
	require.Len(t, pending, len(ordered)-1)
	assert.Equal(t, ordered[1].ID, pending[0].ID)

	all := map[string]bool{}
	for _, m := range ordered {
		all[m.ID] = true
	}
	assert.Empty(t, Pending(all))
}
