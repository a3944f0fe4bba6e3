package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GameError is a rule violation the caller can fix: bad names, unknown
// players or matches, draws on finished matches and the like.
type GameError struct {
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func NewGameError(format string, args ...any) *GameError {
	return &GameError{Message: fmt.Sprintf(format, args...)}
}

// IsGameError reports whether err carries a GameError
func IsGameError(err error) bool {
	var ge *GameError
	return errors.As(err, &ge)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
