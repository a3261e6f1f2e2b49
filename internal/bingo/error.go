package bingo

import "errors"

// Board generation.
var (
	ErrEmptyCatalog      = errors.New("task catalog is empty")
	ErrInsufficientTasks = errors.New("not enough tasks to fill the board")
	ErrInvalidMineCount  = errors.New("mine count must leave room for the center tile")
	ErrInvalidGridSize   = errors.New("grid size must be between 3 and 15")
	ErrInvalidTeams      = errors.New("invalid team roster")
	ErrInvalidConfig     = errors.New("invalid board configuration")
)

// Claims and unlocks.
var (
	ErrTileOutOfRange     = errors.New("tile index out of range")
	ErrTileNotVisible     = errors.New("tile is not visible")
	ErrAlreadyClaimed     = errors.New("tile already claimed")
	ErrNotAuthorized      = errors.New("not authorized to claim tiles")
	ErrNotEligible        = errors.New("tile is not eligible for unlock")
	ErrTooManySelections  = errors.New("too many tiles selected")
	ErrDuplicateSelection = errors.New("tile selected more than once")
)
