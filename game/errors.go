package game

import (
	"errors"
	"fmt"
)

// Code is a machine-readable reason for a rejected command.
type Code string

const (
	CodeMalformed     Code = "MALFORMED"
	CodeOutOfRange    Code = "OUT_OF_RANGE"
	CodeUnknownPlayer Code = "UNKNOWN_PLAYER"
	CodePhase         Code = "PHASE_DISALLOWS_COMMAND"
	CodeNotYourTurn   Code = "NOT_YOUR_TURN"
	CodeOwnership     Code = "NOT_OWN_CARD"
	CodeIllegalMove   Code = "ILLEGAL_MOVE"
	CodeInvalidTarget Code = "INVALID_TARGET"
	CodeActionUsed    Code = "ACTION_ALREADY_USED"
	CodeBoost         Code = "BOOST_CONFLICT"
	CodeFirewall      Code = "FIREWALL_CONFLICT"
)

// Rejection is returned for every rule violation. A rejected command never
// changes the game.
type Rejection struct {
	Code    Code
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func reject(code Code, format string, args ...interface{}) error {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

// RejectionCode returns the code of a rejection, or "" for any other error.
func RejectionCode(err error) Code {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Code
	}
	return ""
}
