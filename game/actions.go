package game

import (
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/accessbattle/model"
)

// deploy lays out all eight online cards of player on the deployment fields
// in deployment order, replacing any placement done so far.
func (g *Game) deploy(player int, c Command) error {
	fields := g.board.DeploymentFieldsFor(player)
	if len(c.Deployment) != len(fields) {
		return reject(CodeMalformed, "deployment needs %d cards, got %d", len(fields), len(c.Deployment))
	}
	byKind := map[model.CardKind][]*model.Card{}
	for _, card := range g.online[player-1] {
		f := card.Location
		if f == nil || f.Owner != player || (f.Type != model.FieldStack && f.Type != model.FieldDeployment) {
			return reject(CodeIllegalMove, "card of player %d is not available for deployment", player)
		}
		byKind[card.Online.Kind] = append(byKind[card.Online.Kind], card)
	}
	for _, f := range fields {
		if f.Card != nil && f.Card.Owner != player {
			return reject(CodeIllegalMove, "deployment field %v is taken", f.Pos)
		}
	}

	for _, card := range g.online[player-1] {
		card.Location.Card = nil
		card.Location = nil
	}
	for i, kind := range c.Deployment {
		cards := byKind[kind]
		g.board.PlaceCard(fields[i].Pos, cards[0])
		byKind[kind] = cards[1:]
	}
	return nil
}

func (g *Game) boost(player int, c Command) error {
	p := c.pos(0)
	if err := g.checkRange(p); err != nil {
		return err
	}
	card, err := g.ownOnlineCard(player, p)
	if err != nil {
		return err
	}
	boosted := g.boostedCard(player)
	if c.flag() {
		if boosted != nil {
			return reject(CodeBoost, "player %d already boosts the card on %v", player, boosted.Location.Pos)
		}
		card.Online.HasBoost = true
		return nil
	}
	if boosted != card {
		return reject(CodeBoost, "card on %v has no boost", p)
	}
	card.Online.HasBoost = false
	return nil
}

func (g *Game) boostedCard(player int) *model.Card {
	for _, card := range g.online[player-1] {
		if card.Online.HasBoost {
			return card
		}
	}
	return nil
}

func (g *Game) firewall(player int, c Command) error {
	p := c.pos(0)
	if err := g.checkRange(p); err != nil {
		return err
	}
	f := g.board.FieldAt(p)
	fw := g.firewalls[player-1]
	parking := g.board.SpecialFieldFor(player, model.SpecialFirewall)

	if !c.flag() {
		if f.Card != fw {
			return reject(CodeFirewall, "no firewall of player %d on %v", player, p)
		}
		g.board.PlaceCard(parking.Pos, fw)
		return nil
	}
	if fw.Location != parking {
		return reject(CodeFirewall, "firewall of player %d is already placed", player)
	}
	if f.Card != nil {
		return reject(CodeInvalidTarget, "%v is not empty", p)
	}
	if (f.Type != model.FieldMain && f.Type != model.FieldDeployment) || !g.layout.OnHalf(player, p) {
		return reject(CodeInvalidTarget, "firewall cannot be placed on %v", p)
	}
	g.board.PlaceCard(p, fw)
	return nil
}

func (g *Game) virusCheck(player int, c Command) error {
	p := c.pos(0)
	if err := g.checkRange(p); err != nil {
		return err
	}
	state := &g.players[player-1]
	if state.DidVirusCheck {
		return reject(CodeActionUsed, "player %d already used the virus check", player)
	}
	f := g.board.FieldAt(p)
	if !f.Type.OnGrid() || f.Card == nil || !f.Card.IsOnline() || f.Card.Owner == player {
		return reject(CodeInvalidTarget, "no online card of the opponent on %v", p)
	}
	f.Card.Online.FaceUp = true
	state.DidVirusCheck = true
	g.log.WithFields(log.Fields{"player": player, "kind": f.Card.Kind().Name()}).Info("virus check")
	return nil
}

func (g *Game) error404(player int, c Command) error {
	p1, p2 := c.pos(0), c.pos(2)
	if err := g.checkRange(p1, p2); err != nil {
		return err
	}
	state := &g.players[player-1]
	if state.Did404NotFound {
		return reject(CodeActionUsed, "player %d already used error 404", player)
	}
	if p1 == p2 {
		return reject(CodeInvalidTarget, "error 404 needs two different cards")
	}
	c1, err := g.ownOnlineCard(player, p1)
	if err != nil {
		return err
	}
	c2, err := g.ownOnlineCard(player, p2)
	if err != nil {
		return err
	}
	if c.flag() {
		g.board.Swap(c1.Location, c2.Location)
	}
	state.Did404NotFound = true
	return nil
}

// ownOnlineCard returns the online card of player on the grid field p.
func (g *Game) ownOnlineCard(player int, p model.Position) (*model.Card, error) {
	f := g.board.FieldAt(p)
	if f.Card == nil || !f.Card.IsOnline() || !f.Type.OnGrid() {
		return nil, reject(CodeInvalidTarget, "no online card on %v", p)
	}
	if f.Card.Owner != player {
		return nil, reject(CodeOwnership, "card on %v belongs to the opponent", p)
	}
	return f.Card, nil
}
