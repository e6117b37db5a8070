package game

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/zucenko/accessbattle/model"
)

type Verb string

const (
	VerbMove       Verb = "mv"
	VerbBoost      Verb = "bs"
	VerbDeploy     Verb = "dp"
	VerbFirewall   Verb = "fw"
	VerbVirusCheck Verb = "vc"
	VerbError404   Verb = "er"
)

var arity = map[Verb]int{
	VerbMove:       4,
	VerbBoost:      3,
	VerbFirewall:   3,
	VerbVirusCheck: 2,
	VerbError404:   5,
}

// Command is a parsed command string. Coordinates are 0-based.
type Command struct {
	Verb Verb
	Args []int
	// Deployment holds the card kinds of a dp command in deployment order.
	Deployment []model.CardKind
}

func (c Command) pos(i int) model.Position {
	return model.Position{X: c.Args[i], Y: c.Args[i+1]}
}

// flag returns the trailing 0/1 argument of bs, fw and er.
func (c Command) flag() bool {
	return c.Args[len(c.Args)-1] == 1
}

// ParseCommand checks the grammar only; positions are checked against the
// board when the command is executed.
func ParseCommand(s string) (Command, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return Command{}, reject(CodeMalformed, "missing arguments in %q", s)
	}
	c := Command{Verb: Verb(s[:i])}
	rest := strings.TrimSpace(s[i:])

	if c.Verb == VerbDeploy {
		return parseDeployment(c, rest)
	}
	n, ok := arity[c.Verb]
	if !ok {
		return Command{}, reject(CodeMalformed, "unknown command %q", c.Verb)
	}
	split := strings.Split(rest, ",")
	if len(split) != n {
		return Command{}, reject(CodeMalformed, "%s takes %d arguments, got %d", c.Verb, n, len(split))
	}
	for _, a := range split {
		v, err := strconv.ParseUint(strings.TrimSpace(a), 10, 16)
		if err != nil {
			return Command{}, reject(CodeMalformed, "bad argument %q", a)
		}
		c.Args = append(c.Args, int(v))
	}
	if c.Verb != VerbMove && c.Verb != VerbVirusCheck && c.Args[n-1] > 1 {
		return Command{}, reject(CodeOutOfRange, "%s flag must be 0 or 1", c.Verb)
	}
	return c, nil
}

func parseDeployment(c Command, rest string) (Command, error) {
	links, viruses := 0, 0
	for _, r := range rest {
		switch unicode.ToUpper(r) {
		case 'L':
			c.Deployment = append(c.Deployment, model.KindLink)
			links++
		case 'V':
			c.Deployment = append(c.Deployment, model.KindVirus)
			viruses++
		default:
			if !unicode.IsSpace(r) {
				return Command{}, reject(CodeMalformed, "bad deployment card %q", r)
			}
		}
	}
	if links != model.LinksPerPlayer || viruses != model.VirusPerPlayer {
		return Command{}, reject(CodeMalformed, "deployment needs %d links and %d viruses, got %d and %d",
			model.LinksPerPlayer, model.VirusPerPlayer, links, viruses)
	}
	return c, nil
}

func FormatMove(from, to model.Position) string {
	return "mv " + strconv.Itoa(from.X) + "," + strconv.Itoa(from.Y) + "," + strconv.Itoa(to.X) + "," + strconv.Itoa(to.Y)
}

func FormatDeployment(kinds []model.CardKind) string {
	b := make([]byte, 0, len(kinds))
	for _, k := range kinds {
		b = append(b, k.Letter())
	}
	return "dp " + string(b)
}
