package server

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/accessbattle/game"
	"github.com/zucenko/accessbattle/model"
)

const writeWait = 10 * time.Second

// JoinCommand names the result of a join answer.
const JoinCommand = "join"

func NewGameServer(cfg Config) (*GameServer, error) {
	fm, err := cfg.FirstMoverPolicy()
	if err != nil {
		return nil, err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}
	return &GameServer{
		Config:       cfg,
		GameSessions: make([]*GameSession, 0),
		GameRequests: make(chan GameRequest),
		ListRequests: make(chan chan []SessionInfo),
		Upgrader:     &websocket.Upgrader{CheckOrigin: cfg.checkOrigin()},
		Log:          log.StandardLogger(),
		firstMover:   fm,
		layout:       layout,
	}, nil
}

// HandleHttpCall connects a websocket player to a game session and blocks
// until the session lets go of the player.
func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	timeout := s.Config.RequestTimeout
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		id := way.Param(r.Context(), "id")
		logger := s.Log.WithFields(log.Fields{"name": name, "game": id})
		if name == "" {
			logger.Warn("HandleHttpCall - missing player name")
			w.WriteHeader(HTTP_BAD_REQUEST)
			return
		}
		logger.Info("HandleHttpCall - connection received")

		gcas := make(chan GameContextAwaiting, 1)
		select {
		case s.GameRequests <- GameRequest{Id: id, Name: name, GameContextAwaiting: gcas}:
		case <-time.After(timeout):
			logger.Warn("GameRequests TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}

		var gca GameContextAwaiting
		select {
		case gca = <-gcas:
			logger.Debugf("HandleHttpCall GameContextAwaiting <- code:%d", gca.ResponseCode)
			if gca.ResponseCode != GAME_READY {
				w.WriteHeader(gca.ResponseCode.ToHttp())
				return
			}
		case <-time.After(timeout):
			logger.Warn("HandleHttpCall GameContextAwaiting <- TIMEOUTED")
			go func() {
				if gca := <-gcas; gca.GameSession != nil {
					gca.GameSession.release()
				}
			}()
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		gs := gca.GameSession
		logger = logger.WithField("game", gs.Id)

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// the upgrader already answered the request
			logger.Warnf("HandleHttpCall websocket upgrade err %v", err)
			gs.release()
			return
		}
		defer con.Close()

		gameOver := make(chan struct{})
		select {
		case gs.PlayerConnectRequests <- PlayerConnectRequest{Con: con, Name: name, GameOver: gameOver}:
		case <-gs.Done:
			logger.Warn("HandleHttpCall session ended before connect")
			gs.release()
			return
		case <-time.After(timeout):
			logger.Warn("HandleHttpCall PlayerConnectRequests TIMEOUTED")
			gs.release()
			return
		}

		<-gameOver
		logger.Info("HandleHttpCall player released")
	}
}

// HandleList answers the JSON listing of the running sessions.
func (s *GameServer) HandleList() http.HandlerFunc {
	timeout := s.Config.RequestTimeout
	return func(w http.ResponseWriter, r *http.Request) {
		infos := make(chan []SessionInfo, 1)
		select {
		case s.ListRequests <- infos:
		case <-time.After(timeout):
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		select {
		case list := <-infos:
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(list); err != nil {
				s.Log.Warnf("HandleList encode %v", err)
			}
		case <-time.After(timeout):
			w.WriteHeader(HTTP_TIMEOUT)
		}
	}
}

func (s *GameServer) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(HTTP_SUCCESS)
		_, _ = w.Write([]byte("ok"))
	}
}

// Loop owns the session list; run it in its own goroutine.
func (s *GameServer) Loop() {
	s.Log.Info("GameServer.Loop starting")
	for {
		select {
		case gameReq := <-s.GameRequests:
			s.prune()
			gameReq.GameContextAwaiting <- s.findSession(gameReq)
		case infos := <-s.ListRequests:
			s.prune()
			list := make([]SessionInfo, 0, len(s.GameSessions))
			for _, gs := range s.GameSessions {
				list = append(list, gs.Info())
			}
			infos <- list
		}
	}
}

func (s *GameServer) findSession(req GameRequest) GameContextAwaiting {
	if req.Id != "" {
		for _, gs := range s.GameSessions {
			if gs.Id != req.Id {
				continue
			}
			if !gs.reserve() {
				return GameContextAwaiting{ResponseCode: GAME_FULL}
			}
			return GameContextAwaiting{ResponseCode: GAME_READY, GameSession: gs}
		}
		return GameContextAwaiting{ResponseCode: GAME_NOT_FOUND}
	}
	for _, gs := range s.GameSessions {
		if gs.reserve() {
			return GameContextAwaiting{ResponseCode: GAME_READY, GameSession: gs}
		}
	}
	gs := s.newGameSession(req.Name)
	gs.reserve()
	s.GameSessions = append(s.GameSessions, gs)
	go gs.Loop()
	return GameContextAwaiting{ResponseCode: GAME_READY, GameSession: gs}
}

func (s *GameServer) newGameSession(host string) *GameSession {
	id := uuid.NewString()
	logger := s.Log.WithField("game", id)
	logger.WithField("host", host).Info("create GameSession")
	gs := &GameSession{
		Id: id,
		Game: game.New(
			game.WithLogger(logger),
			game.WithFirstMover(s.firstMover),
			game.WithLayout(s.layout),
			game.WithHostName(host),
		),
		PlayerSessions:        make([]*PlayerSession, 0, 2),
		Errors:                make(chan *PlayerSession),
		Events:                make(chan PlayerEvent),
		PlayerConnectRequests: make(chan PlayerConnectRequest),
		Done:                  make(chan struct{}),
		log:                   logger,
		state:                 GS_NEW,
	}
	gs.Game.Subscribe(gs.broadcast)
	return gs
}

// prune forgets sessions whose loop has ended.
func (s *GameServer) prune() {
	kept := s.GameSessions[:0]
	for _, gs := range s.GameSessions {
		select {
		case <-gs.Done:
			s.Log.WithField("game", gs.Id).Info("GameSession removed")
		default:
			kept = append(kept, gs)
		}
	}
	s.GameSessions = kept
}

func (gs *GameSession) reserve() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.state != GS_NEW || gs.seats >= 2 {
		return false
	}
	gs.seats++
	return true
}

func (gs *GameSession) release() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.seats > 0 {
		gs.seats--
	}
}

func (gs *GameSession) State() GameSessionState {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.state
}

func (gs *GameSession) setState(state GameSessionState) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.state = state
}

func (gs *GameSession) Info() SessionInfo {
	gs.mu.Lock()
	seats, state := gs.seats, gs.state
	gs.mu.Unlock()
	players := []string{gs.Game.Player(1).Name}
	if seats > 1 {
		players = append(players, gs.Game.Player(2).Name)
	}
	return SessionInfo{
		Id:      gs.Id,
		State:   state.Name(),
		Phase:   gs.Game.Phase().Name(),
		Players: players,
	}
}

func (gs *GameSession) Loop() {
	gs.log.Info("GameSession.Loop start")
	defer close(gs.Done)
	for {
		select {
		case pcr := <-gs.PlayerConnectRequests:
			gs.connect(pcr)
		case ps := <-gs.Errors:
			if gs.lost(ps) {
				gs.log.Info("GameSession.Loop ended")
				return
			}
		case pe := <-gs.Events:
			gs.handle(pe)
		}
	}
}

func (gs *GameSession) connect(pcr PlayerConnectRequest) {
	if len(gs.PlayerSessions) >= 2 {
		gs.log.WithField("name", pcr.Name).Warn("GameSession full, refusing player")
		close(pcr.GameOver)
		return
	}
	ps := gs.addPlayer(pcr)
	ps.MessagesToSend <- ps.MakeGameSetupMessage()
	if ps.Id == 1 {
		ps.State = PS_PLAY
		gs.send(ps, model.ServerMessage{Syncs: []model.GameSync{gs.Game.Sync().ForPlayer(ps.Id, gs.Game.Layout())}})
		return
	}
	if !gs.Game.BeginJoinPlayer(ps.Name) {
		gs.remove(ps)
	}
}

func (gs *GameSession) handle(pe PlayerEvent) {
	ps := pe.Player
	if ps.State == PS_OVER || ps.State == PS_ERR {
		return
	}
	logger := gs.log.WithField("player", ps.Id)
	cm := pe.Message
	if cm.Join {
		result := model.CommandResult{Id: cm.Id, Command: JoinCommand, Success: ps.Id == 2 && gs.Game.JoinPlayer(ps.Name, cm.Accept)}
		if !result.Success {
			result.Message = "no join in progress"
		}
		gs.send(ps, model.ServerMessage{Results: []model.CommandResult{result}})
		switch {
		case !result.Success:
		case cm.Accept:
			ps.State = PS_PLAY
			logger.Info("join accepted")
		default:
			logger.Info("join declined")
			gs.remove(ps)
		}
		return
	}

	result := model.CommandResult{Id: cm.Id, Command: cm.Command, Success: true}
	if err := gs.Game.Execute(ps.Id, cm.Command); err != nil {
		result.Success = false
		result.Code = string(game.RejectionCode(err))
		result.Message = err.Error()
	}
	gs.send(ps, model.ServerMessage{Results: []model.CommandResult{result}})
}

// lost handles a broken player connection and reports whether the session is
// over. A joining player that drops out only frees the seat again.
func (gs *GameSession) lost(ps *PlayerSession) bool {
	if ps.State == PS_OVER {
		return false
	}
	logger := gs.log.WithField("player", ps.Id)
	if ps.Id == 2 && gs.Game.Phase() == model.PhasePlayerJoining {
		logger.Warn("joining player lost")
		gs.Game.JoinPlayer(ps.Name, false)
		gs.remove(ps)
		return false
	}

	logger.Warn("killing GS")
	gs.Game.Abort()
	if gs.State() != GS_OVER {
		gs.setState(GS_ERR)
	}
	for _, other := range gs.PlayerSessions {
		if other == ps {
			other.State = PS_ERR
		} else {
			other.State = PS_ERR_SEC
		}
		close(other.quit)
	}
	return true
}

func (gs *GameSession) remove(ps *PlayerSession) {
	ps.State = PS_OVER
	close(ps.quit)
	kept := gs.PlayerSessions[:0]
	for _, other := range gs.PlayerSessions {
		if other != ps {
			kept = append(kept, other)
		}
	}
	gs.PlayerSessions = kept
	gs.release()
}

// broadcast is the game observer; it runs on the session loop, which is the
// only caller of the game's mutating methods.
func (gs *GameSession) broadcast(u game.Update) {
	if u.PhaseChanged {
		switch u.Sync.Phase {
		case model.PhaseDeployment:
			gs.setState(GS_PLAY)
		case model.PhaseGameOver:
			gs.log.WithField("winner", u.Sync.WinningPlayer).Info("game over")
			gs.setState(GS_OVER)
		}
	}
	for _, ps := range gs.PlayerSessions {
		gs.send(ps, model.ServerMessage{Syncs: []model.GameSync{u.Sync.ForPlayer(ps.Id, gs.Game.Layout())}})
	}
}

func (gs *GameSession) send(ps *PlayerSession, mes model.ServerMessage) {
	select {
	case ps.MessagesToSend <- mes:
	default:
		gs.log.WithField("player", ps.Id).Warn("dropping message, MessagesToSend FULL")
	}
}

func (gs *GameSession) addPlayer(pcr PlayerConnectRequest) *PlayerSession {
	conn := pcr.Con
	ps := &PlayerSession{
		State:          PS_NEW,
		Id:             len(gs.PlayerSessions) + 1,
		Name:           pcr.Name,
		GameSession:    gs,
		Conn:           conn,
		GameOver:       pcr.GameOver,
		quit:           make(chan struct{}),
		MessagesToSend: make(chan model.ServerMessage, 32),
	}
	gs.log.WithFields(log.Fields{"player": ps.Id, "name": ps.Name}).Info("GameSession.addPlayer")
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			ps.DebugLastPing = time.Now()
			ps.DebugPings++
			var ne net.Error
			if err == websocket.ErrCloseSent {
				return nil
			} else if errors.As(err, &ne) && ne.Timeout() {
				return nil
			}
			return err
		})
	// start processing input from the player
	go ps.LoopChannelRead()
	// start sending to the player
	go ps.LoopChannelWrite()
	gs.PlayerSessions = append(gs.PlayerSessions, ps)
	return ps
}

func (ps *PlayerSession) MakeGameSetupMessage() model.ServerMessage {
	return model.ServerMessage{
		Setup: []model.Setup{{
			SessionId: ps.GameSession.Id,
			PlayerKey: ps.Id,
			Layout:    ps.GameSession.Game.Layout(),
		}},
	}
}

// report hands a broken connection to the session loop unless the session
// already let go of the player.
func (ps *PlayerSession) report() {
	select {
	case ps.GameSession.Errors <- ps:
	case <-ps.quit:
	case <-ps.GameSession.Done:
	}
}

func (ps *PlayerSession) LoopChannelRead() {
	logger := ps.GameSession.log.WithField("player", ps.Id)
	logger.Debug("LoopChannelRead STARTED")
	defer logger.Debug("LoopChannelRead ENDED")
	for {
		_, r, err := ps.Conn.NextReader()
		if err != nil {
			select {
			case <-ps.quit:
				logger.Debug("LoopChannelRead closed by the session")
			default:
				logger.Infof("LoopChannelRead err reading message from Conn %v", err)
				ps.report()
			}
			return
		}
		cm := model.ClientMessage{}
		if err := gob.NewDecoder(r).Decode(&cm); err != nil {
			logger.Warnf("LoopChannelRead cant decode %v", err)
			ps.report()
			return
		}
		ps.DebugLastMessage = time.Now()
		ps.DebugInMessages++

		select {
		case ps.GameSession.Events <- PlayerEvent{Player: ps, Message: cm}:
		case <-ps.quit:
			return
		case <-ps.GameSession.Done:
			return
		}
	}
}

// LoopChannelWrite only consumes; once quit is closed it flushes what is
// queued and releases the player's http handler.
func (ps *PlayerSession) LoopChannelWrite() {
	logger := ps.GameSession.log.WithField("player", ps.Id)
	defer close(ps.GameOver)
	for {
		select {
		case mes := <-ps.MessagesToSend:
			if err := ps.write(mes); err != nil {
				logger.Warnf("PlayerSession.LoopChannelWrite %v", err)
				ps.report()
				return
			}
		case <-ps.quit:
			for {
				select {
				case mes := <-ps.MessagesToSend:
					if err := ps.write(mes); err != nil {
						return
					}
				default:
					_ = ps.Conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
					return
				}
			}
		}
	}
}

func (ps *PlayerSession) write(mes model.ServerMessage) error {
	if err := ps.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}
	w, err := ps.Conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return fmt.Errorf("cant get writer: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(mes); err != nil {
		return fmt.Errorf("cant encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cant flush: %w", err)
	}
	ps.DebugOutMessages++
	return nil
}
