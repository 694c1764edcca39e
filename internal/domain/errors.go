package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrDataUnavailable = errors.New("no data available")
)

// GenresRequiredError is returned when a user without history asks for
// recommendations without naming any genres.
type GenresRequiredError struct {
	Suggestions []string
}

func (e *GenresRequiredError) Error() string {
	return fmt.Sprintf("user has no history: genres are required (%d suggestions)", len(e.Suggestions))
}

func IsGenresRequired(err error) bool {
	var target *GenresRequiredError
	return errors.As(err, &target)
}
