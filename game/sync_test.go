package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/accessbattle/model"
)

func TestSyncRoundTrip(t *testing.T) {
	g := newTurnGame(t)
	require.NoError(t, g.Execute(1, "bs 3,1,1"))
	require.NoError(t, g.Execute(2, "vc 4,1"))
	require.NoError(t, g.Execute(1, "fw 1,2,1"))
	require.NoError(t, g.Execute(2, "er 0,7,4,6,1"))
	require.NoError(t, g.Execute(1, "mv 3,1,3,3"))
	src := g.Sync()

	replica := newGame()
	var updates []Update
	replica.Subscribe(func(u Update) { updates = append(updates, u) })
	require.NoError(t, replica.ApplySync(src))

	assert.Equal(t, src, replica.Sync())
	assert.Equal(t, model.PhasePlayer2Turn, replica.Phase())
	assert.True(t, replica.Player(2).DidVirusCheck)
	assert.True(t, replica.Player(2).Did404NotFound)
	assert.False(t, replica.Player(1).DidVirusCheck)
	assert.Equal(t, "mv 3,1,3,3", replica.LastExecutedCommand())
	require.Len(t, updates, 1)
	assert.True(t, updates[0].PhaseChanged)
	assert.Equal(t, src, updates[0].Sync)

	// the replica computes the same movement ranges
	assert.ElementsMatch(t, g.ReachableFields(model.Position{X: 3, Y: 3}), replica.ReachableFields(model.Position{X: 3, Y: 3}))
}

func TestApplySyncRefusesBrokenSnapshots(t *testing.T) {
	good := newTurnGame(t).Sync()
	tests := map[string]func(s *model.GameSync){
		"no such field": func(s *model.GameSync) {
			s.FieldsWithCards = append(s.FieldsWithCards, model.FieldSync{X: 7, Y: 11, Kind: model.KindLink, Owner: 1})
		},
		"twice": func(s *model.GameSync) {
			s.FieldsWithCards = append(s.FieldsWithCards, s.FieldsWithCards[0])
		},
		"owner": func(s *model.GameSync) {
			s.FieldsWithCards = append(s.FieldsWithCards, model.FieldSync{X: 3, Y: 3, Kind: model.KindLink, Owner: 3})
		},
		"ninth card": func(s *model.GameSync) {
			s.FieldsWithCards = append(s.FieldsWithCards, model.FieldSync{X: 3, Y: 3, Kind: model.KindVirus, Owner: 1})
		},
		"second firewall": func(s *model.GameSync) {
			s.FieldsWithCards = append(s.FieldsWithCards, model.FieldSync{X: 3, Y: 3, Kind: model.KindFirewall, Owner: 2})
		},
	}
	for name, broken := range tests {
		t.Run(name, func(t *testing.T) {
			s := good
			s.FieldsWithCards = append([]model.FieldSync(nil), good.FieldsWithCards...)
			broken(&s)

			replica := newGame()
			before := replica.Sync()
			assert.Error(t, replica.ApplySync(s))
			assert.Equal(t, before, replica.Sync())
		})
	}
}

func TestMaskedSyncAppliesToReplica(t *testing.T) {
	g := newTurnGame(t)
	require.NoError(t, g.Execute(1, "vc 4,6"))
	view := g.Sync().ForPlayer(1, g.Layout())

	unknown := 0
	for _, f := range view.FieldsWithCards {
		switch {
		case f.Owner == 1:
			assert.NotEqual(t, model.KindUnknown, f.Kind)
		case f.X == 4 && f.Y == 6:
			assert.Equal(t, model.KindVirus, f.Kind, "revealed")
		case f.Kind == model.KindUnknown:
			unknown++
		default:
			assert.Equal(t, model.KindFirewall, f.Kind)
		}
	}
	assert.Equal(t, model.PlayerCards-1, unknown)

	replica := newGame()
	require.NoError(t, replica.ApplySync(view))
	assert.Equal(t, view, replica.Sync())
}

func TestMaskedViewHidesDeploymentSources(t *testing.T) {
	g := newGame()
	require.True(t, g.Start())
	require.NoError(t, g.Execute(2, "mv 4,9,0,7"))

	view := g.Sync().ForPlayer(1, g.Layout())
	var stack []int
	for _, f := range view.FieldsWithCards {
		if f.Owner == 2 && f.Kind != model.KindFirewall {
			assert.Equal(t, model.KindUnknown, f.Kind)
			if f.Y == 9 {
				stack = append(stack, f.X)
			}
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, stack)
	assert.Equal(t, "mv ?,?,0,7", view.LastExecutedCommand)

	replica := newGame()
	require.NoError(t, replica.ApplySync(view))
	assert.Equal(t, view, replica.Sync())
}

func TestMaskedViewHidesTheSwapFlag(t *testing.T) {
	g := newTurnGame(t)
	require.NoError(t, g.Execute(1, "mv 3,1,3,2"))
	require.NoError(t, g.Execute(2, "er 0,7,4,6,1"))

	assert.Equal(t, "er 0,7,4,6", g.Sync().ForPlayer(1, g.Layout()).LastExecutedCommand)
	assert.Equal(t, "er 0,7,4,6,1", g.Sync().ForPlayer(2, g.Layout()).LastExecutedCommand)
	assert.Equal(t, 2, g.Sync().LastCommandPlayer)
}
