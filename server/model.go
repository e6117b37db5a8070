package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/accessbattle/game"
	"github.com/zucenko/accessbattle/model"
)

type GameServer struct {
	Config       Config
	GameSessions []*GameSession
	GameRequests chan GameRequest
	ListRequests chan chan []SessionInfo
	Upgrader     *websocket.Upgrader
	Log          log.FieldLogger

	firstMover game.FirstMover
	layout     *model.Layout
}

type GameSessionState int

const (
	GS_NEW GameSessionState = iota
	GS_PLAY
	GS_ERR
	GS_OVER
)

// GameSession hosts one game between two websocket players. Everything but
// the state and the seat count is owned by its Loop goroutine.
type GameSession struct {
	Id                    string
	Game                  *game.Game
	PlayerSessions        []*PlayerSession
	Errors                chan *PlayerSession
	Events                chan PlayerEvent
	PlayerConnectRequests chan PlayerConnectRequest
	Done                  chan struct{}
	log                   log.FieldLogger

	mu    sync.Mutex
	state GameSessionState
	seats int
}

type PlayerSessionState int

const (
	PS_NEW PlayerSessionState = iota + 1
	PS_PLAY
	PS_OVER
	PS_ERR
	PS_ERR_SEC
)

type PlayerSession struct {
	State       PlayerSessionState
	Id          int
	Name        string
	GameSession *GameSession
	Conn        *websocket.Conn
	GameOver    chan struct{}
	// quit is closed by the session loop when it lets go of the player.
	quit chan struct{}

	MessagesToSend chan model.ServerMessage

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPing    time.Time
	DebugPings       int
}

// SessionInfo is the public listing entry of a game session.
type SessionInfo struct {
	Id      string   `json:"id"`
	State   string   `json:"state"`
	Phase   string   `json:"phase"`
	Players []string `json:"players"`
}
