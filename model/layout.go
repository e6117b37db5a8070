package model

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

//go:embed data/board.txt
var defaultLayoutData []byte

const (
	PlayerCards     = 8
	LinksPerPlayer  = 4
	VirusPerPlayer  = 4
	DefaultLinkSlot = 4
)

type CellSpec struct {
	Pos     Position
	Type    FieldType
	Special SpecialKind
	Owner   int
}

// Layout is the named table of board constants: field types, owners,
// special-action cells and the server cells reached from the exits.
type Layout struct {
	Cols, Rows int
	// GridRows is the height of the playable grid, rows 0..GridRows-1.
	GridRows int
	// BoardRows covers the grid plus the stack rows below it; command
	// coordinates are addressed inside it.
	BoardRows int
	// LinkSlots is the number of leading stack slots reserved for links.
	LinkSlots int
	Cells     []CellSpec
}

var (
	defaultLayoutOnce sync.Once
	defaultLayout     *Layout
)

func DefaultLayout() *Layout {
	defaultLayoutOnce.Do(func() {
		l, err := ReadLayout(bytes.NewReader(defaultLayoutData))
		if err != nil {
			panic(fmt.Sprintf("embedded board layout: %v", err))
		}
		defaultLayout = l
	})
	return defaultLayout
}

func ReadLayout(reader io.Reader) (*Layout, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	l := &Layout{LinkSlots: DefaultLinkSlot}
	row := 0
	gridDone, boardDone := false, false
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		// anything after the first blank is a comment
		line := strings.Fields(s)[0]
		if l.Cols == 0 {
			l.Cols = len(line)
		} else if len(line) != l.Cols {
			return nil, fmt.Errorf("layout row %d: %d cells, want %d", row, len(line), l.Cols)
		}
		onGrid, onBoard := true, true
		for col, char := range line {
			cell := CellSpec{Pos: Position{X: col, Y: row}}
			switch char {
			case '-':
				onGrid, onBoard = false, false
				continue
			case '.':
				cell.Type = FieldMain
			case 'd', 'D':
				cell.Type = FieldDeployment
			case 'x', 'X':
				cell.Type = FieldExit
			case 's', 'S':
				cell.Type = FieldStack
			case '1', '2':
				cell.Type = FieldServer
				cell.Owner = int(char - '0')
			case 'b', 'B':
				cell.Type, cell.Special = FieldSpecial, SpecialLineBoost
			case 'f', 'F':
				cell.Type, cell.Special = FieldSpecial, SpecialFirewall
			case 'v', 'V':
				cell.Type, cell.Special = FieldSpecial, SpecialVirusCheck
			case 'e', 'E':
				cell.Type, cell.Special = FieldSpecial, SpecialError404
			default:
				return nil, fmt.Errorf("layout row %d col %d: unknown cell %q", row, col, char)
			}
			if cell.Owner == 0 && cell.Type != FieldMain {
				cell.Owner = 1
				if char >= 'A' && char <= 'Z' {
					cell.Owner = 2
				}
			}
			if !cell.Type.OnGrid() {
				onGrid = false
				if cell.Type != FieldStack {
					onBoard = false
				}
			}
			l.Cells = append(l.Cells, cell)
		}
		if onGrid && !gridDone {
			l.GridRows++
		} else {
			gridDone = true
		}
		if onBoard && !boardDone {
			l.BoardRows++
		} else {
			boardDone = true
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	l.Rows = row
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks that the table describes a playable board for two.
func (l *Layout) Validate() error {
	if l.GridRows == 0 || l.GridRows > l.BoardRows || l.BoardRows > l.Rows {
		return fmt.Errorf("layout has no playable grid")
	}
	for _, c := range l.Cells {
		if c.Pos.X < 0 || c.Pos.X >= l.Cols || c.Pos.Y < 0 || c.Pos.Y >= l.Rows {
			return fmt.Errorf("layout cell %v outside %dx%d", c.Pos, l.Cols, l.Rows)
		}
	}
	for p := 1; p <= 2; p++ {
		counts := map[FieldType]int{}
		specials := map[SpecialKind]int{}
		for _, c := range l.Cells {
			if c.Owner != p {
				continue
			}
			counts[c.Type]++
			if c.Type == FieldSpecial {
				specials[c.Special]++
			}
		}
		if counts[FieldDeployment] != PlayerCards {
			return fmt.Errorf("player %d: %d deployment fields, want %d", p, counts[FieldDeployment], PlayerCards)
		}
		if counts[FieldStack] != PlayerCards {
			return fmt.Errorf("player %d: %d stack fields, want %d", p, counts[FieldStack], PlayerCards)
		}
		if counts[FieldExit] == 0 {
			return fmt.Errorf("player %d: no exit field", p)
		}
		if counts[FieldServer] != 1 {
			return fmt.Errorf("player %d: %d server fields, want 1", p, counts[FieldServer])
		}
		for _, sk := range []SpecialKind{SpecialLineBoost, SpecialFirewall, SpecialVirusCheck, SpecialError404} {
			if specials[sk] != 1 {
				return fmt.Errorf("player %d: %d special fields of kind %d, want 1", p, specials[sk], sk)
			}
		}
	}
	return nil
}

// stackSlots maps every stack cell to its owner and lists each owner's
// slots left to right.
func (l *Layout) stackSlots() (map[Position]int, map[int][]Position) {
	owner := map[Position]int{}
	slots := map[int][]Position{}
	for _, c := range l.Cells {
		if c.Type == FieldStack {
			owner[c.Pos] = c.Owner
			slots[c.Owner] = append(slots[c.Owner], c.Pos)
		}
	}
	for _, s := range slots {
		sort.Slice(s, func(i, j int) bool { return s[i].X < s[j].X })
	}
	return owner, slots
}

// OnGrid reports whether pos lies inside the playable grid.
func (l *Layout) OnGrid(pos Position) bool {
	return pos.X >= 0 && pos.X < l.Cols && pos.Y >= 0 && pos.Y < l.GridRows
}

// OnBoard reports whether pos lies on the grid or the stack rows.
func (l *Layout) OnBoard(pos Position) bool {
	return pos.X >= 0 && pos.X < l.Cols && pos.Y >= 0 && pos.Y < l.BoardRows
}

// OnHalf reports whether pos lies on the player's own half of the grid.
func (l *Layout) OnHalf(player int, pos Position) bool {
	if !l.OnGrid(pos) {
		return false
	}
	if player == 1 {
		return pos.Y < l.GridRows/2
	}
	return pos.Y >= l.GridRows/2
}
