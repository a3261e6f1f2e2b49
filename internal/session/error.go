package session

import "errors"

var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrTeamNotFound      = errors.New("team not found")
	ErrBoardNotFound     = errors.New("board not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session expired")
	ErrOffline           = errors.New("board store is unreachable")
	ErrUnavailable       = errors.New("board store request failed")
	ErrUnlockPending     = errors.New("finish the pending unlock first")
	ErrNoPendingUnlock   = errors.New("no unlock is pending")
	ErrConflict          = errors.New("board changed since it was loaded")
	ErrNotTeamBoard      = errors.New("board has no teams")
)
