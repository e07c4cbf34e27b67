package member

import "errors"

var (
	ErrInvalidGuildID    = errors.New("invalid guild id")
	ErrNoAuthorizedUsers = errors.New("no authorized users")
)
