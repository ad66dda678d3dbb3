package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

func TestHolder_ReplaceReturnsPrevious(t *testing.T) {
	holder := NewHolder()

	first := holder.Current()
	assert.Nil(t, first.TeamA)
	assert.Nil(t, first.TeamB)

	a := shared.PlayerID("p1")
	prev := holder.Replace(Selection{TeamA: &a, SelectedAt: time.Now()})
	assert.Nil(t, prev.TeamA)

	b := shared.PlayerID("p2")
	prev = holder.Replace(Selection{TeamB: &b, SelectedAt: time.Now()})
	require.NotNil(t, prev.TeamA)
	assert.Equal(t, a, *prev.TeamA)

	current := holder.Current()
	assert.Nil(t, current.TeamA)
	require.NotNil(t, current.TeamB)
	assert.Equal(t, b, *current.TeamB)
}

func TestSelection_TargetOf(t *testing.T) {
	a := shared.PlayerID("p1")
	b := shared.PlayerID("p2")
	sel := Selection{TeamA: &a, TeamB: &b}

	require.NotNil(t, sel.TargetOf(shared.CategoryA))
	assert.Equal(t, a, *sel.TargetOf(shared.CategoryA))
	require.NotNil(t, sel.TargetOf(shared.CategoryB))
	assert.Equal(t, b, *sel.TargetOf(shared.CategoryB))

	empty := Selection{}
	assert.Nil(t, empty.TargetOf(shared.CategoryA))
}

func TestSelection_Targets(t *testing.T) {
	a := shared.PlayerID("p1")
	sel := Selection{TeamA: &a}

	targets := sel.Targets()
	assert.Len(t, targets, 1)
	assert.Equal(t, a, targets[shared.CategoryA])
}
