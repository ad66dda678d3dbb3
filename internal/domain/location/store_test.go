package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore()
	acc := 12.5
	fix := Fix{Lat: 52.52, Lon: 13.405, Accuracy: &acc, Timestamp: 1700000000000}

	prev, existed := store.Update("p1", fix)
	assert.Nil(t, prev)
	assert.False(t, existed)

	got, ok := store.Get("p1")
	require.True(t, ok)
	assert.Equal(t, fix, got)
}

func TestStore_UpdateReturnsPrevious(t *testing.T) {
	store := NewStore()

	first := Fix{Lat: 1, Lon: 2, Timestamp: 100}
	second := Fix{Lat: 3, Lon: 4, Timestamp: 200}

	store.Update("p1", first)
	prev, existed := store.Update("p1", second)

	require.True(t, existed)
	assert.Equal(t, first, *prev)

	got, ok := store.Get("p1")
	require.True(t, ok)
	assert.Equal(t, second, got)
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore()

	_, ok := store.Get("nobody")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Count())
}

func TestStore_Snapshot(t *testing.T) {
	store := NewStore()
	store.Update("p1", Fix{Lat: 1, Lon: 1, Timestamp: 1})
	store.Update("p2", Fix{Lat: 2, Lon: 2, Timestamp: 2})

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, 2, store.Count())

	seen := map[shared.PlayerID]bool{}
	for _, entry := range snapshot {
		seen[entry.PlayerID] = true
		assert.False(t, entry.UpdatedAt.IsZero())
	}
	assert.True(t, seen["p1"])
	assert.True(t, seen["p2"])
}

func TestFix_Validate(t *testing.T) {
	neg := -1.0

	cases := []struct {
		name    string
		fix     Fix
		wantErr bool
	}{
		{"valid", Fix{Lat: 45, Lon: 90, Timestamp: 1}, false},
		{"lat too high", Fix{Lat: 91, Lon: 0}, true},
		{"lon too low", Fix{Lat: 0, Lon: -181}, true},
		{"negative accuracy", Fix{Lat: 0, Lon: 0, Accuracy: &neg}, true},
		{"negative timestamp", Fix{Lat: 0, Lon: 0, Timestamp: -5}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fix.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, shared.KindInvalidInput, shared.Kind(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
