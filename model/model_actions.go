package model

import (
	"fmt"
	"sort"
)

func NewBoard(layout *Layout) *Board {
	matrix := make([][]*Field, 0, layout.Cols)
	for c := 0; c < layout.Cols; c++ {
		matrix = append(matrix, make([]*Field, layout.Rows))
	}
	for _, cell := range layout.Cells {
		matrix[cell.Pos.X][cell.Pos.Y] = &Field{
			Pos:     cell.Pos,
			Type:    cell.Type,
			Special: cell.Special,
			Owner:   cell.Owner,
		}
	}
	return &Board{Layout: layout, Fields: matrix}
}

// FieldAt returns nil for positions without a field.
func (b *Board) FieldAt(p Position) *Field {
	if p.X < 0 || p.X >= len(b.Fields) || p.Y < 0 || p.Y >= len(b.Fields[p.X]) {
		return nil
	}
	return b.Fields[p.X][p.Y]
}

func (b *Board) CardAt(p Position) *Card {
	f := b.FieldAt(p)
	if f == nil {
		return nil
	}
	return f.Card
}

// PlaceCard relocates card onto the field at p. The target must exist and be
// empty; anything else is a programming error.
func (b *Board) PlaceCard(p Position, card *Card) {
	f := b.FieldAt(p)
	if f == nil {
		panic(fmt.Sprintf("place card: no field at %v", p))
	}
	if f.Card == card {
		return
	}
	if f.Card != nil {
		panic(fmt.Sprintf("place card: field %v already holds a card", p))
	}
	if card.Location != nil {
		card.Location.Card = nil
	}
	f.Card = card
	card.Location = f
}

// Swap exchanges the cards of two fields, either of which may be empty.
func (b *Board) Swap(f1, f2 *Field) {
	f1.Card, f2.Card = f2.Card, f1.Card
	if f1.Card != nil {
		f1.Card.Location = f1
	}
	if f2.Card != nil {
		f2.Card.Location = f2
	}
}

func (b *Board) Clear() {
	for _, col := range b.Fields {
		for _, f := range col {
			if f != nil && f.Card != nil {
				f.Card.Location = nil
				f.Card = nil
			}
		}
	}
}

// Occupied lists every field holding a card, row by row.
func (b *Board) Occupied() []*Field {
	var fields []*Field
	for y := 0; y < b.Layout.Rows; y++ {
		for x := 0; x < b.Layout.Cols; x++ {
			if f := b.Fields[x][y]; f != nil && f.Card != nil {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

func (b *Board) fieldsOf(player int, ft FieldType) []*Field {
	var fields []*Field
	for _, col := range b.Fields {
		for _, f := range col {
			if f != nil && f.Type == ft && f.Owner == player {
				fields = append(fields, f)
			}
		}
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Pos.X != fields[j].Pos.X {
			return fields[i].Pos.X < fields[j].Pos.X
		}
		return fields[i].Pos.Y < fields[j].Pos.Y
	})
	return fields
}

// StackFieldsFor returns the player's stack slots; the first
// Layout.LinkSlots are reserved for links, the rest for viruses.
func (b *Board) StackFieldsFor(player int) []*Field {
	return b.fieldsOf(player, FieldStack)
}

// DeploymentFieldsFor returns the player's deployment fields in deployment
// order (left to right).
func (b *Board) DeploymentFieldsFor(player int) []*Field {
	return b.fieldsOf(player, FieldDeployment)
}

func (b *Board) ExitFieldsFor(player int) []*Field {
	return b.fieldsOf(player, FieldExit)
}

func (b *Board) ServerFieldFor(player int) *Field {
	fields := b.fieldsOf(player, FieldServer)
	if len(fields) == 0 {
		return nil
	}
	return fields[0]
}

func (b *Board) SpecialFieldFor(player int, sk SpecialKind) *Field {
	for _, f := range b.fieldsOf(player, FieldSpecial) {
		if f.Special == sk {
			return f
		}
	}
	return nil
}

func (c *Card) Kind() CardKind {
	if c.Online == nil {
		return KindFirewall
	}
	return c.Online.Kind
}

func (c *Card) IsOnline() bool {
	return c.Online != nil
}

func NewOnlineCard(owner int, kind CardKind) *Card {
	return &Card{Owner: owner, Online: &OnlineCard{Kind: kind}}
}

func NewFirewallCard(owner int) *Card {
	return &Card{Owner: owner}
}
