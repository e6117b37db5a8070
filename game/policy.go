package game

import (
	"fmt"
	"math/rand"
	"strings"
)

// FirstMover picks the player who opens the turn phase once deployment is
// complete.
type FirstMover func() int

func FixedFirstMover(player int) FirstMover {
	return func() int { return player }
}

func RandomFirstMover() FirstMover {
	return func() int { return rand.Intn(2) + 1 }
}

func ParseFirstMover(s string) (FirstMover, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1":
		return FixedFirstMover(1), nil
	case "2":
		return FixedFirstMover(2), nil
	case "random":
		return RandomFirstMover(), nil
	default:
		return nil, fmt.Errorf("unknown first mover %q", s)
	}
}
