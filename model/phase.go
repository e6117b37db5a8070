package model

import "fmt"

type Phase int

const (
	PhaseWaitingForPlayers Phase = iota
	PhasePlayerJoining
	PhaseInit
	PhaseDeployment
	PhasePlayer1Turn
	PhasePlayer2Turn
	PhaseGameOver
	PhaseAborted
)

func (p Phase) Name() string {
	switch p {
	case PhaseWaitingForPlayers:
		return "WAITING_FOR_PLAYERS"
	case PhasePlayerJoining:
		return "PLAYER_JOINING"
	case PhaseInit:
		return "INIT"
	case PhaseDeployment:
		return "DEPLOYMENT"
	case PhasePlayer1Turn:
		return "PLAYER1_TURN"
	case PhasePlayer2Turn:
		return "PLAYER2_TURN"
	case PhaseGameOver:
		return "GAME_OVER"
	case PhaseAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("n/a:%d", p)
	}
}

func (p Phase) String() string {
	return p.Name()
}

func (p Phase) IsTurn() bool {
	return p == PhasePlayer1Turn || p == PhasePlayer2Turn
}

// Terminal phases accept no commands; only a restart leaves them.
func (p Phase) Terminal() bool {
	return p == PhaseGameOver || p == PhaseAborted
}

func TurnPhase(player int) Phase {
	if player == 2 {
		return PhasePlayer2Turn
	}
	return PhasePlayer1Turn
}
