package model

// ClientMessage carries either a game command or, with Join set, the joining
// player's answer to the join handshake.
type ClientMessage struct {
	// Id is echoed in the CommandResult answering this message.
	Id      uint64
	Command string
	Join    bool
	Accept  bool
}
