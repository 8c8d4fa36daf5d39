package model

import "errors"

var (
	ErrOutOfBounds = errors.New("invalid move, out of bounds")
	ErrNoPiece     = errors.New("no piece at from square")
	ErrWrongTurn   = errors.New("piece does not belong to the side to move")
	ErrIllegalMove = errors.New("invalid move, not legal")
	ErrInvalidFEN  = errors.New("invalid fen")

	ErrGameOver      = errors.New("game is over")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNotInGame     = errors.New("player not in game")
	ErrGameFull      = errors.New("game is full")
	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("game already exists")
	ErrAlreadyQueued = errors.New("player already in queue")
)
