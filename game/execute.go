package game

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/accessbattle/model"
)

// Execute runs one command for player. A nil result means the command was
// applied; every rule violation is a *Rejection and leaves the game as it
// was.
func (g *Game) Execute(player int, command string) error {
	g.mu.Lock()
	defer g.unlockAndNotify()
	return g.execute(player, command)
}

// ExecuteCommand runs command for the player whose turn it is.
func (g *Game) ExecuteCommand(command string) bool {
	g.mu.Lock()
	defer g.unlockAndNotify()
	return g.execute(g.currentPlayer, command) == nil
}

func (g *Game) execute(player int, command string) error {
	fields := log.Fields{"player": player, "command": command}
	c, err := ParseCommand(command)
	if err == nil {
		err = g.dispatch(player, c)
	}
	if err != nil {
		fields["code"] = RejectionCode(err)
		g.log.WithFields(fields).Warnf("command rejected: %v", err)
		return err
	}

	seq := g.seq
	g.lastCommand = strings.TrimSpace(command)
	g.lastPlayer = player
	switch {
	case g.winningPlayer != 0:
		g.setPhase(model.PhaseGameOver)
	case g.phase.IsTurn():
		g.setPhase(model.TurnPhase(model.Opponent(g.currentPlayer)))
	case g.phase == model.PhaseDeployment:
		g.advanceDeployment()
	}
	if g.seq == seq {
		g.changed(false)
	}
	g.log.WithFields(fields).Debug("command executed")
	return nil
}

func (g *Game) dispatch(player int, c Command) error {
	if player != 1 && player != 2 {
		return reject(CodeUnknownPlayer, "no player %d", player)
	}
	switch {
	case g.phase == model.PhaseDeployment:
		if c.Verb != VerbMove && c.Verb != VerbDeploy {
			return reject(CodePhase, "%s is not allowed during deployment", c.Verb)
		}
	case g.phase.IsTurn():
		if c.Verb == VerbDeploy {
			return reject(CodePhase, "deployment is over")
		}
		if player != g.currentPlayer {
			return reject(CodeNotYourTurn, "it is player %d's turn", g.currentPlayer)
		}
	default:
		return reject(CodePhase, "no commands in phase %s", g.phase.Name())
	}

	switch c.Verb {
	case VerbMove:
		return g.move(player, c)
	case VerbDeploy:
		return g.deploy(player, c)
	case VerbBoost:
		return g.boost(player, c)
	case VerbFirewall:
		return g.firewall(player, c)
	case VerbVirusCheck:
		return g.virusCheck(player, c)
	case VerbError404:
		return g.error404(player, c)
	}
	return reject(CodeMalformed, "unknown command %q", c.Verb)
}

// advanceDeployment starts the turns once both sides are deployed. Until
// then the current player passes to whoever still has fields to fill.
func (g *Game) advanceDeployment() {
	done1, done2 := g.deployed(1), g.deployed(2)
	switch {
	case done1 && done2:
		g.setPhase(model.TurnPhase(g.firstMover()))
	case g.deployed(g.currentPlayer):
		g.currentPlayer = model.Opponent(g.currentPlayer)
	}
}

func (g *Game) deployed(player int) bool {
	for _, f := range g.board.DeploymentFieldsFor(player) {
		if f.Card == nil || f.Card.Owner != player {
			return false
		}
	}
	return true
}

// checkRange rejects coordinates outside the grid and stack rows.
func (g *Game) checkRange(positions ...model.Position) error {
	for _, p := range positions {
		if !g.layout.OnBoard(p) {
			return reject(CodeOutOfRange, "%v is outside the board", p)
		}
	}
	return nil
}
