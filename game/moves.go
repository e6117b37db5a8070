package game

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/accessbattle/model"
)

// down, up, left, right
var directions = [4]model.Position{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}

func (g *Game) move(player int, c Command) error {
	from, to := c.pos(0), c.pos(2)
	f2 := g.board.FieldAt(to)
	if err := g.checkRange(from); err != nil {
		return err
	}
	if f2 == nil || (!g.layout.OnBoard(to) && f2.Type != model.FieldServer) {
		return reject(CodeOutOfRange, "%v is outside the board", to)
	}
	f1 := g.board.FieldAt(from)
	card := f1.Card
	if card == nil {
		return reject(CodeIllegalMove, "no card on %v", from)
	}
	if card.Owner != player {
		return reject(CodeOwnership, "player %d cannot move cards of the opponent", player)
	}

	if f1.Type == model.FieldStack {
		if g.phase != model.PhaseDeployment {
			return reject(CodePhase, "cards leave the stack only during deployment")
		}
		if f2.Card != nil || f2.Type != model.FieldDeployment || f2.Owner != player {
			return reject(CodeIllegalMove, "stack cards go to an empty own deployment field")
		}
		g.board.PlaceCard(to, card)
		return nil
	}
	if f2.Type == model.FieldStack {
		if g.phase != model.PhaseDeployment {
			return reject(CodeIllegalMove, "cards reach the stack only when captured")
		}
		if f2.Card != nil || f2.Owner != player || f1.Type != model.FieldDeployment || f1.Owner != player {
			return reject(CodeIllegalMove, "only deployed cards go back to an empty own stack field")
		}
		g.board.PlaceCard(to, card)
		return nil
	}
	if g.phase == model.PhaseDeployment {
		return reject(CodePhase, "cards move across the board only after deployment")
	}
	if !card.IsOnline() {
		return reject(CodeIllegalMove, "firewalls do not move")
	}
	if !containsField(g.reachable(f1), f2) {
		return reject(CodeIllegalMove, "%v is not reachable from %v", to, from)
	}

	if f2.Type == model.FieldServer {
		card.Online.FaceUp = true
		card.Online.HasBoost = false
		g.log.WithFields(log.Fields{"player": player, "kind": card.Kind().Name()}).Info("card entered the server")
		g.placeOnStack(player, card)
		return nil
	}
	if target := f2.Card; target != nil {
		if !target.IsOnline() || target.Owner == player {
			return reject(CodeIllegalMove, "only online cards of the opponent can be captured")
		}
		target.Online.FaceUp = true
		target.Online.HasBoost = false
		g.log.WithFields(log.Fields{"player": player, "kind": target.Kind().Name()}).Info("card captured")
		g.placeOnStack(player, target)
	}
	g.board.PlaceCard(to, card)
	return nil
}

// ReachableFields lists where the online card at pos may move, for its owner.
func (g *Game) ReachableFields(pos model.Position) []model.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := g.board.FieldAt(pos)
	if f == nil {
		return nil
	}
	fields := g.reachable(f)
	positions := make([]model.Position, 0, len(fields))
	for _, r := range fields {
		positions = append(positions, r.Pos)
	}
	return positions
}

// reachable is the movement range of the card on from: its orthogonal
// neighbours, and with a boost one more step through every empty, non-exit
// neighbour.
func (g *Game) reachable(from *model.Field) []*model.Field {
	card := from.Card
	if card == nil || !card.IsOnline() || !from.Type.OnGrid() {
		return nil
	}
	fields := g.neighbours(from, card.Owner)
	if !card.Online.HasBoost {
		return fields
	}
	var extra []*model.Field
	for _, f := range fields {
		if f.Card != nil || f.Type == model.FieldExit || !f.Type.OnGrid() {
			continue
		}
		extra = append(extra, g.neighbours(f, card.Owner)...)
	}
	for _, f := range extra {
		if !containsField(fields, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (g *Game) neighbours(from *model.Field, player int) []*model.Field {
	candidates := make([]*model.Field, 0, 5)
	for _, d := range directions {
		p := model.Position{X: from.Pos.X + d.X, Y: from.Pos.Y + d.Y}
		if g.layout.OnGrid(p) {
			candidates = append(candidates, g.board.FieldAt(p))
		}
	}
	// standing on the opponent's exit opens the way into the opponent's server
	if from.Type == model.FieldExit && from.Owner != player {
		candidates = append(candidates, g.board.ServerFieldFor(from.Owner))
	}

	fields := make([]*model.Field, 0, len(candidates))
	for _, f := range candidates {
		switch {
		case f == nil, f.Type == model.FieldStack:
		case f.Card != nil && (f.Card.Owner == player || !f.Card.IsOnline()):
		case f.Type == model.FieldExit && f.Owner == player:
		default:
			fields = append(fields, f)
		}
	}
	return fields
}

// placeOnStack moves a captured card, or one that entered a server, onto the
// stack of player. Revealed viruses fill the virus slots first, everything
// else the link slots first.
func (g *Game) placeOnStack(player int, card *model.Card) {
	stack := g.board.StackFieldsFor(player)
	links, viruses := stack[:g.layout.LinkSlots], stack[g.layout.LinkSlots:]
	slot := -1
	if card.Online.FaceUp && card.Online.Kind == model.KindVirus {
		slot = firstEmpty(viruses, g.layout.LinkSlots)
	}
	if slot < 0 {
		slot = firstEmpty(links, 0)
	}
	if slot < 0 {
		slot = firstEmpty(viruses, g.layout.LinkSlots)
	}
	if slot < 0 {
		// the game ends long before a stack can fill up
		panic(fmt.Sprintf("stack of player %d is full", player))
	}
	g.board.PlaceCard(stack[slot].Pos, card)
	g.checkStacks()
}

func firstEmpty(fields []*model.Field, offset int) int {
	for i, f := range fields {
		if f.Card == nil {
			return i + offset
		}
	}
	return -1
}

// checkStacks records the first winner: four viruses on a stack lose the
// game for its owner, four links win it.
func (g *Game) checkStacks() {
	for p := 1; p <= 2 && g.winningPlayer == 0; p++ {
		links, viruses := 0, 0
		for _, f := range g.board.StackFieldsFor(p) {
			if f.Card == nil || !f.Card.IsOnline() {
				continue
			}
			switch f.Card.Online.Kind {
			case model.KindLink:
				links++
			case model.KindVirus:
				viruses++
			}
		}
		switch {
		case viruses >= model.VirusPerPlayer:
			g.winningPlayer = model.Opponent(p)
		case links >= model.LinksPerPlayer:
			g.winningPlayer = p
		}
	}
}

func containsField(fields []*model.Field, f *model.Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
