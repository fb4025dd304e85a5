package apperror

import "errors"

var (
	ErrInvalidMove        = errors.New("invalid movement")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrGameFinished       = errors.New("game is already finished")
	ErrGameNotFound       = errors.New("game not found")
	ErrGameBusy           = errors.New("game is busy, retry")
)
