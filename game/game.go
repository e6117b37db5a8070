// Package game is the authoritative AccessBattle engine: the phase state
// machine, the text command interpreter with its legality rules and the
// GameSync snapshots used to replicate a game to remote parties.
//
// A Game serializes every operation behind one mutex. Observers are called
// after the mutex is released, in mutation order, each with a snapshot taken
// while it was held. One goroutine delivers at a time and no lock is held
// during delivery, so an observer may read the game, e.g. through View.
package game

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/accessbattle/model"
)

// Update is handed to observers after every successful mutation.
type Update struct {
	Sync         model.GameSync
	PhaseChanged bool
}

type Observer func(Update)

type Option func(*Game)

func WithLogger(l log.FieldLogger) Option {
	return func(g *Game) { g.log = l }
}

func WithFirstMover(fm FirstMover) Option {
	return func(g *Game) { g.firstMover = fm }
}

func WithLayout(l *model.Layout) Option {
	return func(g *Game) { g.layout = l }
}

func WithHostName(name string) Option {
	return func(g *Game) { g.players[0].Name = name }
}

type Game struct {
	mu sync.Mutex

	log        log.FieldLogger
	firstMover FirstMover
	layout     *model.Layout
	board      *model.Board
	players    [2]model.PlayerState
	online     [2][]*model.Card
	firewalls  [2]*model.Card

	phase         model.Phase
	currentPlayer int
	winningPlayer int
	pendingName   string
	lastCommand   string
	lastPlayer    int
	seq           uint64

	observers  []Observer
	pending    []Update
	delivering bool
}

// New builds the board and both players' cards and leaves the game waiting
// for an opponent.
func New(opts ...Option) *Game {
	g := &Game{
		log:        log.StandardLogger(),
		firstMover: FixedFirstMover(1),
		layout:     model.DefaultLayout(),
		players: [2]model.PlayerState{
			{Number: 1, Name: "Player 1"},
			{Number: 2, Name: "Player 2"},
		},
		phase: model.PhaseWaitingForPlayers,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.board = model.NewBoard(g.layout)
	for p := 1; p <= 2; p++ {
		cards := make([]*model.Card, 0, model.PlayerCards)
		for i := 0; i < model.LinksPerPlayer; i++ {
			cards = append(cards, model.NewOnlineCard(p, model.KindLink))
		}
		for i := 0; i < model.VirusPerPlayer; i++ {
			cards = append(cards, model.NewOnlineCard(p, model.KindVirus))
		}
		g.online[p-1] = cards
		g.firewalls[p-1] = model.NewFirewallCard(p)
	}
	g.reset()
	return g
}

func (g *Game) Subscribe(o Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, o)
}

// unlockAndNotify queues the updates collected while the game lock was held
// and releases it. If no other goroutine is delivering, this one drains the
// queue without holding any lock. Updates queued meanwhile by other callers
// are delivered by the same loop, so observers see mutation order.
func (g *Game) unlockAndNotify() {
	if g.delivering || len(g.pending) == 0 {
		g.mu.Unlock()
		return
	}
	g.delivering = true
	for {
		batch := g.pending
		observers := g.observers
		g.pending = nil
		if len(batch) == 0 {
			g.delivering = false
			g.mu.Unlock()
			return
		}
		g.mu.Unlock()
		for _, u := range batch {
			for _, o := range observers {
				o(u)
			}
		}
		g.mu.Lock()
	}
}

func (g *Game) changed(phaseChanged bool) {
	g.seq++
	g.emit(phaseChanged)
}

func (g *Game) emit(phaseChanged bool) {
	if len(g.observers) == 0 {
		return
	}
	g.pending = append(g.pending, Update{Sync: g.snapshot(), PhaseChanged: phaseChanged})
}

// setPhase runs the side effects of entering p before the change is
// published.
func (g *Game) setPhase(p model.Phase) {
	if g.phase == p {
		return
	}
	g.phase = p
	switch p {
	case model.PhaseInit:
		g.reset()
	case model.PhaseDeployment:
		g.currentPlayer = 1
	case model.PhasePlayer1Turn:
		g.currentPlayer = 1
	case model.PhasePlayer2Turn:
		g.currentPlayer = 2
	}
	g.log.WithFields(log.Fields{
		"phase":  p.Name(),
		"player": g.currentPlayer,
		"winner": g.winningPlayer,
	}).Info("phase changed")
	g.changed(true)
}

// reset clears the board and puts every card back to its starting place:
// links on the first stack slots, viruses on the rest, the firewall on its
// special field.
func (g *Game) reset() {
	g.winningPlayer = 0
	g.lastCommand = ""
	g.lastPlayer = 0
	g.board.Clear()
	for p := 1; p <= 2; p++ {
		g.players[p-1].DidVirusCheck = false
		g.players[p-1].Did404NotFound = false
		stack := g.board.StackFieldsFor(p)
		for i, c := range g.online[p-1] {
			c.Online.Kind = model.KindLink
			if i >= model.LinksPerPlayer {
				c.Online.Kind = model.KindVirus
			}
			c.Online.FaceUp = false
			c.Online.HasBoost = false
			g.board.PlaceCard(stack[i].Pos, c)
		}
		g.board.PlaceCard(g.board.SpecialFieldFor(p, model.SpecialFirewall).Pos, g.firewalls[p-1])
	}
}

func (g *Game) start() {
	g.setPhase(model.PhaseInit)
	g.setPhase(model.PhaseDeployment)
}

// BeginJoinPlayer registers a second participant that still has to accept.
func (g *Game) BeginJoinPlayer(name string) bool {
	g.mu.Lock()
	defer g.unlockAndNotify()
	if g.phase != model.PhaseWaitingForPlayers {
		g.log.WithField("name", name).Warnf("join refused in phase %s", g.phase.Name())
		return false
	}
	g.pendingName = name
	g.setPhase(model.PhasePlayerJoining)
	return true
}

// JoinPlayer completes the handshake started by BeginJoinPlayer. Declining
// frees the slot and the game waits again; accepting starts deployment.
func (g *Game) JoinPlayer(name string, accept bool) bool {
	g.mu.Lock()
	defer g.unlockAndNotify()
	if g.phase != model.PhasePlayerJoining || name != g.pendingName {
		g.log.WithField("name", name).Warnf("join answer refused in phase %s", g.phase.Name())
		return false
	}
	g.pendingName = ""
	if !accept {
		g.setPhase(model.PhaseWaitingForPlayers)
		return true
	}
	g.players[1].Name = name
	g.start()
	return true
}

// Start begins a local game or a rematch.
func (g *Game) Start() bool {
	g.mu.Lock()
	defer g.unlockAndNotify()
	if g.phase != model.PhaseWaitingForPlayers && !g.phase.Terminal() {
		return false
	}
	g.start()
	return true
}

// Abort ends a game that is still in progress, e.g. on a disconnect.
func (g *Game) Abort() bool {
	g.mu.Lock()
	defer g.unlockAndNotify()
	if g.phase.Terminal() {
		return false
	}
	g.setPhase(model.PhaseAborted)
	return true
}

func (g *Game) Phase() model.Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) CurrentPlayer() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentPlayer
}

func (g *Game) WinningPlayer() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winningPlayer
}

func (g *Game) LastExecutedCommand() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastCommand
}

func (g *Game) Player(n int) model.PlayerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players[n-1]
}

func (g *Game) Layout() *model.Layout {
	return g.layout
}

// View runs fn against the board while holding the game lock. fn must not
// keep references to fields or cards.
func (g *Game) View(fn func(b *model.Board)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.board)
}
