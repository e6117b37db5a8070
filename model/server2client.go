package model

import (
	"sort"
	"strconv"
	"strings"
)

type ServerMessage struct {
	Setup   []Setup
	Results []CommandResult
	Syncs   []GameSync
}

type Setup struct {
	SessionId string
	PlayerKey int
	// Layout is the board the session plays on.
	Layout *Layout
}

type CommandResult struct {
	Id      uint64
	Command string
	Success bool
	Code    string
	Message string
}

type PlayerSync struct {
	Number         int
	Name           string
	DidVirusCheck  bool
	Did404NotFound bool
}

type FieldSync struct {
	X, Y     int
	Kind     CardKind
	Owner    int
	FaceUp   bool
	HasBoost bool
}

// GameSync is an immutable point-in-time snapshot of a game. Fields without
// a card are not listed.
type GameSync struct {
	Seq                 uint64
	Phase               Phase
	CurrentPlayer       int
	WinningPlayer       int
	Player1             PlayerSync
	Player2             PlayerSync
	FieldsWithCards     []FieldSync
	LastExecutedCommand string
	// LastCommandPlayer is the player who ran LastExecutedCommand.
	LastCommandPlayer int
}

// ForPlayer returns the view sent to one player. The opponent's face-down
// cards lose their kind, and so does anything that gives it away: the stack
// slot a hidden card sits on, stack coordinates in the opponent's last
// command, its deployment string and the swap flag of its error 404.
// Player 0 gets the full view.
func (gs GameSync) ForPlayer(player int, layout *Layout) GameSync {
	view := gs
	view.FieldsWithCards = make([]FieldSync, 0, len(gs.FieldsWithCards))
	if player == 0 {
		view.FieldsWithCards = append(view.FieldsWithCards, gs.FieldsWithCards...)
		return view
	}

	stackOwner, slots := layout.stackSlots()
	taken := map[Position]bool{}
	var hidden []FieldSync
	for _, f := range gs.FieldsWithCards {
		p := Position{X: f.X, Y: f.Y}
		if f.Owner != player && !f.FaceUp && f.Kind != KindFirewall {
			f.Kind = KindUnknown
			if _, ok := stackOwner[p]; ok {
				hidden = append(hidden, f)
				continue
			}
		}
		taken[p] = true
		view.FieldsWithCards = append(view.FieldsWithCards, f)
	}
	// hidden stack cards fill the free slots from the left
	for _, f := range hidden {
		for _, p := range slots[stackOwner[Position{X: f.X, Y: f.Y}]] {
			if !taken[p] {
				taken[p] = true
				f.X, f.Y = p.X, p.Y
				break
			}
		}
		view.FieldsWithCards = append(view.FieldsWithCards, f)
	}
	sort.Slice(view.FieldsWithCards, func(i, j int) bool {
		a, b := view.FieldsWithCards[i], view.FieldsWithCards[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	if gs.LastCommandPlayer != 0 && gs.LastCommandPlayer != player {
		view.LastExecutedCommand = redactCommand(gs.LastExecutedCommand, stackOwner)
	}
	return view
}

// redactCommand strips what a command tells about the kinds of its author's
// hidden cards.
func redactCommand(command string, stackOwner map[Position]int) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command
	}
	keyword := fields[0]
	args := strings.Split(strings.Join(fields[1:], ""), ",")
	switch keyword {
	case "dp":
		return keyword
	case "mv":
		if len(args) != 4 {
			return keyword
		}
		for i := 0; i < len(args); i += 2 {
			x, errX := strconv.Atoi(args[i])
			y, errY := strconv.Atoi(args[i+1])
			if _, ok := stackOwner[Position{X: x, Y: y}]; ok || errX != nil || errY != nil {
				args[i], args[i+1] = "?", "?"
			}
		}
		return keyword + " " + strings.Join(args, ",")
	case "er":
		if len(args) != 5 {
			return keyword
		}
		return keyword + " " + strings.Join(args[:4], ",")
	}
	return command
}

func (gs GameSync) PlayerSync(player int) PlayerSync {
	if player == 2 {
		return gs.Player2
	}
	return gs.Player1
}
