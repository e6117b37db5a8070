package game

import (
	"fmt"

	"github.com/zucenko/accessbattle/model"
)

// Sync returns a full snapshot of the game.
func (g *Game) Sync() model.GameSync {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() model.GameSync {
	occupied := g.board.Occupied()
	fields := make([]model.FieldSync, 0, len(occupied))
	for _, f := range occupied {
		fs := model.FieldSync{X: f.Pos.X, Y: f.Pos.Y, Kind: f.Card.Kind(), Owner: f.Card.Owner}
		if f.Card.IsOnline() {
			fs.FaceUp = f.Card.Online.FaceUp
			fs.HasBoost = f.Card.Online.HasBoost
		}
		fields = append(fields, fs)
	}
	return model.GameSync{
		Seq:                 g.seq,
		Phase:               g.phase,
		CurrentPlayer:       g.currentPlayer,
		WinningPlayer:       g.winningPlayer,
		Player1:             playerSync(g.players[0]),
		Player2:             playerSync(g.players[1]),
		FieldsWithCards:     fields,
		LastExecutedCommand: g.lastCommand,
		LastCommandPlayer:   g.lastPlayer,
	}
}

func playerSync(p model.PlayerState) model.PlayerSync {
	return model.PlayerSync{
		Number:         p.Number,
		Name:           p.Name,
		DidVirusCheck:  p.DidVirusCheck,
		Did404NotFound: p.Did404NotFound,
	}
}

// ApplySync replaces the state of the game with a snapshot, as a replica of
// a remote game does. Phase side effects do not run: the snapshot already
// carries their outcome. A snapshot that cannot be laid out on this board is
// refused and the game stays untouched.
func (g *Game) ApplySync(sync model.GameSync) error {
	g.mu.Lock()
	defer g.unlockAndNotify()
	if err := g.checkSync(sync); err != nil {
		return err
	}

	g.board.Clear()
	var used [2]int
	for _, fs := range sync.FieldsWithCards {
		p := model.Position{X: fs.X, Y: fs.Y}
		if fs.Kind == model.KindFirewall {
			g.board.PlaceCard(p, g.firewalls[fs.Owner-1])
			continue
		}
		card := g.online[fs.Owner-1][used[fs.Owner-1]]
		used[fs.Owner-1]++
		card.Online.Kind = fs.Kind
		card.Online.FaceUp = fs.FaceUp
		card.Online.HasBoost = fs.HasBoost
		g.board.PlaceCard(p, card)
	}

	phaseChanged := g.phase != sync.Phase
	g.phase = sync.Phase
	g.currentPlayer = sync.CurrentPlayer
	g.winningPlayer = sync.WinningPlayer
	for i, ps := range []model.PlayerSync{sync.Player1, sync.Player2} {
		if ps.Name != "" {
			g.players[i].Name = ps.Name
		}
		g.players[i].DidVirusCheck = ps.DidVirusCheck
		g.players[i].Did404NotFound = ps.Did404NotFound
	}
	g.lastCommand = sync.LastExecutedCommand
	g.lastPlayer = sync.LastCommandPlayer
	g.seq = sync.Seq
	g.emit(phaseChanged)
	return nil
}

func (g *Game) checkSync(sync model.GameSync) error {
	seen := map[model.Position]bool{}
	var online, firewalls [2]int
	for _, fs := range sync.FieldsWithCards {
		p := model.Position{X: fs.X, Y: fs.Y}
		if g.board.FieldAt(p) == nil {
			return fmt.Errorf("sync: no field at %v", p)
		}
		if seen[p] {
			return fmt.Errorf("sync: field %v listed twice", p)
		}
		seen[p] = true
		if fs.Owner != 1 && fs.Owner != 2 {
			return fmt.Errorf("sync: card on %v has owner %d", p, fs.Owner)
		}
		if fs.Kind == model.KindFirewall {
			firewalls[fs.Owner-1]++
		} else {
			online[fs.Owner-1]++
		}
	}
	for i := range online {
		if online[i] > model.PlayerCards || firewalls[i] > 1 {
			return fmt.Errorf("sync: player %d has %d online cards and %d firewalls", i+1, online[i], firewalls[i])
		}
	}
	return nil
}
