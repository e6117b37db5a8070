// Package client connects to an AccessBattle server and keeps a local replica
// of the remote game up to date from the snapshots the server pushes.
package client

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/accessbattle/game"
	"github.com/zucenko/accessbattle/model"
	"nhooyr.io/websocket"
)

const readLimit = 1 << 20

var ErrClosed = errors.New("client closed")

type Option func(*Client)

func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// Client is one player's connection. Game is a replica on the server's
// board: read it freely, but commands go through Send.
type Client struct {
	Game *game.Game

	conn    *websocket.Conn
	log     log.FieldLogger
	ctx     context.Context
	cancel  context.CancelFunc
	setup   chan model.Setup
	results chan model.CommandResult
	updates chan game.Update
	changed chan struct{}
	done    chan struct{}
	sendMu  sync.Mutex
	lastId  uint64

	mu        sync.Mutex
	player    int
	sessionId string
	synced    bool
	err       error

	// owned by readLoop
	lastSeq uint64
}

// Dial connects to url, e.g. ws://host:8080/play?name=alice, and returns
// once the server assigned a seat.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(readLimit)

	c := &Client{
		conn:    conn,
		log:     log.StandardLogger(),
		setup:   make(chan model.Setup, 1),
		results: make(chan model.CommandResult, 16),
		updates: make(chan game.Update, 64),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	go c.readLoop()

	select {
	case s := <-c.setup:
		c.log.WithFields(log.Fields{"game": s.SessionId, "player": s.PlayerKey}).Info("seated")
		return c, nil
	case <-c.done:
		c.cancel()
		return nil, c.Err()
	case <-ctx.Done():
		c.Close()
		return nil, ctx.Err()
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			c.fail(fmt.Errorf("read: %w", err))
			return
		}
		var mes model.ServerMessage
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&mes); err != nil {
			c.fail(fmt.Errorf("decode: %w", err))
			return
		}
		for _, s := range mes.Setup {
			if err := c.seat(s); err != nil {
				c.fail(err)
				return
			}
			select {
			case c.setup <- s:
			default:
			}
		}
		for _, sync := range mes.Syncs {
			c.apply(sync)
		}
		for _, r := range mes.Results {
			select {
			case c.results <- r:
			default:
				c.log.WithField("command", r.Command).Warn("client results FULL, dropping")
			}
		}
	}
}

// seat builds the replica on the board the server plays on.
func (c *Client) seat(s model.Setup) error {
	if c.Game != nil {
		return nil
	}
	layout := s.Layout
	if layout == nil {
		layout = model.DefaultLayout()
	} else if err := layout.Validate(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	c.Game = game.New(game.WithLogger(c.log), game.WithLayout(layout))
	c.Game.Subscribe(func(u game.Update) {
		select {
		case c.updates <- u:
		default:
			c.log.Warn("client updates FULL, dropping")
		}
		select {
		case c.changed <- struct{}{}:
		default:
		}
	})
	c.mu.Lock()
	c.player, c.sessionId = s.PlayerKey, s.SessionId
	c.mu.Unlock()
	return nil
}

// apply ignores snapshots older than the one already applied.
func (c *Client) apply(sync model.GameSync) {
	if c.Game == nil {
		c.log.WithField("seq", sync.Seq).Warn("sync before setup ignored")
		return
	}
	if c.isSynced() && sync.Seq <= c.lastSeq {
		c.log.WithField("seq", sync.Seq).Debug("stale sync ignored")
		return
	}
	if err := c.Game.ApplySync(sync); err != nil {
		c.log.Warnf("apply sync: %v", err)
		return
	}
	c.lastSeq = sync.Seq
	c.mu.Lock()
	c.synced = true
	c.mu.Unlock()
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// Send submits a command and waits for the server's verdict.
func (c *Client) Send(ctx context.Context, command string) (model.CommandResult, error) {
	return c.request(ctx, model.ClientMessage{Command: command})
}

// Join answers the server's join handshake.
func (c *Client) Join(ctx context.Context, accept bool) (model.CommandResult, error) {
	return c.request(ctx, model.ClientMessage{Join: true, Accept: accept})
}

func (c *Client) request(ctx context.Context, cm model.ClientMessage) (model.CommandResult, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.lastId++
	cm.Id = c.lastId
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cm); err != nil {
		return model.CommandResult{}, fmt.Errorf("encode: %w", err)
	}
	if err := c.conn.Write(ctx, websocket.MessageBinary, buf.Bytes()); err != nil {
		return model.CommandResult{}, fmt.Errorf("write: %w", err)
	}
	for {
		select {
		case r := <-c.results:
			if r.Id != cm.Id {
				// answer to a request that gave up waiting
				c.log.WithFields(log.Fields{"id": r.Id, "command": r.Command}).Debug("late result dropped")
				continue
			}
			return r, nil
		case <-c.done:
			return model.CommandResult{}, c.Err()
		case <-ctx.Done():
			return model.CommandResult{}, ctx.Err()
		}
	}
}

// WaitFor blocks until an applied snapshot satisfies cond. Queued
// snapshots are checked in order, and the replica itself after every
// change, so snapshots dropped from a full queue are not missed.
func (c *Client) WaitFor(ctx context.Context, cond func(model.GameSync) bool) (model.GameSync, error) {
	for {
		if s, ok := c.current(cond); ok {
			return s, nil
		}
		select {
		case u := <-c.updates:
			if cond(u.Sync) {
				return u.Sync, nil
			}
		case <-c.changed:
		case <-c.done:
			// the last snapshots may still be queued
			for {
				select {
				case u := <-c.updates:
					if cond(u.Sync) {
						return u.Sync, nil
					}
				default:
					if s, ok := c.current(cond); ok {
						return s, nil
					}
					return model.GameSync{}, c.Err()
				}
			}
		case <-ctx.Done():
			return model.GameSync{}, ctx.Err()
		}
	}
}

func (c *Client) current(cond func(model.GameSync) bool) (model.GameSync, bool) {
	if !c.isSynced() {
		return model.GameSync{}, false
	}
	s := c.Game.Sync()
	return s, cond(s)
}

// WaitPhase is WaitFor on the phase.
func (c *Client) WaitPhase(ctx context.Context, phase model.Phase) (model.GameSync, error) {
	return c.WaitFor(ctx, func(s model.GameSync) bool { return s.Phase == phase })
}

func (c *Client) isSynced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synced
}

func (c *Client) Player() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

func (c *Client) SessionId() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionId
}

// Done is closed when the connection is gone.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection ended, or nil while it is up.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		select {
		case <-c.done:
			return ErrClosed
		default:
		}
	}
	return c.err
}

func (c *Client) Close() error {
	c.cancel()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
