package discord

import "errors"

var (
	ErrGuildNotFound     = errors.New("bot is not a member of the guild")
	ErrMissingPermission = errors.New("bot is missing the create instant invite permission")
)
