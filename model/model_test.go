package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, 8, l.Cols)
	assert.Equal(t, 12, l.Rows)
	assert.Equal(t, 8, l.GridRows)
	assert.Equal(t, 10, l.BoardRows)
	assert.Equal(t, DefaultLinkSlot, l.LinkSlots)

	b := NewBoard(l)
	cases := []struct {
		pos     Position
		typ     FieldType
		owner   int
		special SpecialKind
	}{
		{Position{0, 0}, FieldDeployment, 1, SpecialNone},
		{Position{3, 0}, FieldExit, 1, SpecialNone},
		{Position{3, 1}, FieldDeployment, 1, SpecialNone},
		{Position{3, 2}, FieldMain, 0, SpecialNone},
		{Position{4, 6}, FieldDeployment, 2, SpecialNone},
		{Position{4, 7}, FieldExit, 2, SpecialNone},
		{Position{7, 8}, FieldStack, 1, SpecialNone},
		{Position{0, 9}, FieldStack, 2, SpecialNone},
		{Position{0, 10}, FieldSpecial, 1, SpecialLineBoost},
		{Position{1, 11}, FieldSpecial, 2, SpecialFirewall},
		{Position{2, 10}, FieldSpecial, 1, SpecialVirusCheck},
		{Position{3, 11}, FieldSpecial, 2, SpecialError404},
		{Position{4, 10}, FieldServer, 1, SpecialNone},
		{Position{5, 10}, FieldServer, 2, SpecialNone},
	}
	for _, c := range cases {
		f := b.FieldAt(c.pos)
		require.NotNil(t, f, c.pos.String())
		assert.Equal(t, c.typ.Name(), f.Type.Name(), c.pos.String())
		assert.Equal(t, c.owner, f.Owner, c.pos.String())
		assert.Equal(t, c.special, f.Special, c.pos.String())
	}
	assert.Nil(t, b.FieldAt(Position{7, 11}))
	assert.Nil(t, b.FieldAt(Position{8, 0}))
	assert.Nil(t, b.FieldAt(Position{0, -1}))
}

func TestLayoutHalves(t *testing.T) {
	l := DefaultLayout()
	assert.True(t, l.OnHalf(1, Position{0, 3}))
	assert.False(t, l.OnHalf(1, Position{0, 4}))
	assert.True(t, l.OnHalf(2, Position{0, 4}))
	assert.False(t, l.OnHalf(2, Position{0, 8}), "stacks are not on a half")
	assert.True(t, l.OnBoard(Position{7, 9}))
	assert.False(t, l.OnBoard(Position{4, 10}))
	assert.False(t, l.OnGrid(Position{0, 8}))
}

func TestReadLayoutRejects(t *testing.T) {
	valid := string(defaultLayoutData)
	tests := map[string]string{
		"ragged row":   strings.Replace(valid, "...dd... ", "...dd.... ", 1),
		"unknown cell": strings.Replace(valid, "...dd... ", "...dq... ", 1),
		"deployment":   strings.Replace(valid, "...dd... ", "...d.... ", 1),
		"no server":    strings.Replace(valid, "bfve12--", "bfve-2--", 1),
		"two boosts":   strings.Replace(valid, "BFVE----", "BFVEB---", 1),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			require.NotEqual(t, valid, data)
			_, err := ReadLayout(strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestStackAndDeploymentOrder(t *testing.T) {
	b := NewBoard(DefaultLayout())
	stack := b.StackFieldsFor(2)
	require.Len(t, stack, PlayerCards)
	for i, f := range stack {
		assert.Equal(t, Position{i, 9}, f.Pos)
	}
	var deployment []Position
	for _, f := range b.DeploymentFieldsFor(1) {
		deployment = append(deployment, f.Pos)
	}
	assert.Equal(t, []Position{{0, 0}, {1, 0}, {2, 0}, {3, 1}, {4, 1}, {5, 0}, {6, 0}, {7, 0}}, deployment)
	assert.Len(t, b.ExitFieldsFor(2), 2)
	assert.Equal(t, Position{5, 10}, b.ServerFieldFor(2).Pos)
	assert.Equal(t, Position{1, 10}, b.SpecialFieldFor(1, SpecialFirewall).Pos)
}

func TestPlaceCardKeepsLocationInSync(t *testing.T) {
	b := NewBoard(DefaultLayout())
	c := NewOnlineCard(1, KindLink)

	b.PlaceCard(Position{0, 8}, c)
	assert.Equal(t, c, b.CardAt(Position{0, 8}))
	b.PlaceCard(Position{0, 0}, c)
	assert.Nil(t, b.CardAt(Position{0, 8}))
	assert.Equal(t, b.FieldAt(Position{0, 0}), c.Location)

	other := NewOnlineCard(2, KindVirus)
	assert.Panics(t, func() { b.PlaceCard(Position{0, 0}, other) })
	assert.Panics(t, func() { b.PlaceCard(Position{7, 11}, other) })
	assert.Nil(t, other.Location)

	b.PlaceCard(Position{1, 0}, other)
	b.Swap(c.Location, other.Location)
	assert.Equal(t, Position{1, 0}, c.Location.Pos)
	assert.Equal(t, Position{0, 0}, other.Location.Pos)
	assert.Equal(t, other, b.CardAt(Position{0, 0}))

	occupied := b.Occupied()
	require.Len(t, occupied, 2)
	assert.Equal(t, Position{0, 0}, occupied[0].Pos)

	b.Clear()
	assert.Empty(t, b.Occupied())
	assert.Nil(t, c.Location)
}

func TestCardKinds(t *testing.T) {
	assert.Equal(t, KindFirewall, NewFirewallCard(1).Kind())
	assert.False(t, NewFirewallCard(1).IsOnline())
	assert.Equal(t, KindVirus, NewOnlineCard(2, KindVirus).Kind())
	assert.Equal(t, byte('?'), KindUnknown.Letter())
	assert.Equal(t, 2, Opponent(1))
	assert.Equal(t, 1, Opponent(2))
}

func TestForPlayerHidesFaceDownOpponentCards(t *testing.T) {
	gs := GameSync{FieldsWithCards: []FieldSync{
		{X: 0, Y: 0, Kind: KindLink, Owner: 1},
		{X: 0, Y: 7, Kind: KindVirus, Owner: 2},
		{X: 1, Y: 7, Kind: KindLink, Owner: 2, FaceUp: true},
		{X: 1, Y: 11, Kind: KindFirewall, Owner: 2},
	}}

	p1 := gs.ForPlayer(1, DefaultLayout())
	assert.Equal(t, []CardKind{KindLink, KindUnknown, KindLink, KindFirewall}, kinds(p1))
	p2 := gs.ForPlayer(2, DefaultLayout())
	assert.Equal(t, []CardKind{KindUnknown, KindVirus, KindLink, KindFirewall}, kinds(p2))
	assert.Equal(t, gs, gs.ForPlayer(0, DefaultLayout()))
	assert.Equal(t, KindVirus, gs.FieldsWithCards[1].Kind, "source untouched")
}

func TestForPlayerPacksHiddenStackCards(t *testing.T) {
	// player 2 moved the card of virus slot (4,9) to (0,7)
	gs := GameSync{LastCommandPlayer: 2, LastExecutedCommand: "mv 4,9,0,7"}
	for x := 0; x < 8; x++ {
		gs.FieldsWithCards = append(gs.FieldsWithCards, FieldSync{X: x, Y: 8, Kind: KindLink, Owner: 1})
	}
	gs.FieldsWithCards = append(gs.FieldsWithCards, FieldSync{X: 0, Y: 7, Kind: KindVirus, Owner: 2})
	for x := 0; x < 8; x++ {
		kind := KindLink
		if x >= 4 {
			kind = KindVirus
		}
		if x != 4 {
			gs.FieldsWithCards = append(gs.FieldsWithCards, FieldSync{X: x, Y: 9, Kind: kind, Owner: 2})
		}
	}

	view := gs.ForPlayer(1, DefaultLayout())
	var stack []int
	for _, f := range view.FieldsWithCards {
		if f.Owner == 2 {
			assert.Equal(t, KindUnknown, f.Kind)
			if f.Y == 9 {
				stack = append(stack, f.X)
			}
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, stack)
	assert.Equal(t, "mv ?,?,0,7", view.LastExecutedCommand)
	assert.Len(t, view.FieldsWithCards, len(gs.FieldsWithCards))

	own := gs.ForPlayer(2, DefaultLayout())
	assert.Equal(t, "mv 4,9,0,7", own.LastExecutedCommand)
	assert.NotContains(t, own.FieldsWithCards, FieldSync{X: 4, Y: 9, Kind: KindVirus, Owner: 2})
}

func TestForPlayerRedactsOpponentCommands(t *testing.T) {
	tests := map[string]string{
		"dp LLVVLVLV":  "dp",
		"mv 0,0,5,8":   "mv 0,0,?,?",
		"mv 3, 1, 3,2": "mv 3,1,3,2",
		"mv 3,7,5,10":  "mv 3,7,5,10",
		"er 0,0,1,0,1": "er 0,0,1,0",
		"er 0,0,1,0,0": "er 0,0,1,0",
		"vc 4,6":       "vc 4,6",
		"fw 1,2,1":     "fw 1,2,1",
		"bs 3,1,0":     "bs 3,1,0",
	}
	for command, want := range tests {
		gs := GameSync{LastCommandPlayer: 1, LastExecutedCommand: command}
		assert.Equal(t, want, gs.ForPlayer(2, DefaultLayout()).LastExecutedCommand, command)
		assert.Equal(t, command, gs.ForPlayer(1, DefaultLayout()).LastExecutedCommand, command)
	}
}

func kinds(gs GameSync) []CardKind {
	var ks []CardKind
	for _, f := range gs.FieldsWithCards {
		ks = append(ks, f.Kind)
	}
	return ks
}

func TestPhaseNames(t *testing.T) {
	assert.Equal(t, PhasePlayer2Turn, TurnPhase(2))
	assert.True(t, PhasePlayer1Turn.IsTurn())
	assert.False(t, PhaseDeployment.IsTurn())
	assert.True(t, PhaseAborted.Terminal())
	assert.NotEqual(t, PhaseInit.Name(), PhaseDeployment.Name())
}
