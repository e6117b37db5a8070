package model

type Position struct {
	X, Y int
}

type FieldType int

const (
	FieldMain FieldType = iota
	FieldStack
	FieldDeployment
	FieldExit
	FieldSpecial
	FieldServer
)

type SpecialKind int

const (
	SpecialNone SpecialKind = iota
	SpecialLineBoost
	SpecialFirewall
	SpecialVirusCheck
	SpecialError404
)

type CardKind int

const (
	KindUnknown CardKind = iota
	KindLink
	KindVirus
	KindFirewall
)

// OnlineCard is the capability carried by Link and Virus cards.
type OnlineCard struct {
	Kind     CardKind
	FaceUp   bool
	HasBoost bool
}

// Card is either an online card (Online != nil) or a firewall card.
type Card struct {
	Owner    int
	Location *Field
	Online   *OnlineCard
}

type Field struct {
	Pos     Position
	Type    FieldType
	Special SpecialKind
	Owner   int
	Card    *Card
}

type PlayerState struct {
	Number         int
	Name           string
	DidVirusCheck  bool
	Did404NotFound bool
}

type Board struct {
	Layout *Layout
	// Fields is column major, Fields[x][y]; nil where the layout has no field.
	Fields [][]*Field
}
